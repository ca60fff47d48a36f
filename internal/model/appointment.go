package model

import (
	"fmt"
	"time"
)

type AppointmentType string

const (
	AppointmentTypeCheckup      AppointmentType = "checkup"
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow-up"
	AppointmentTypeProcedure    AppointmentType = "procedure"
)

// AppointmentTypes lists every known appointment type
var AppointmentTypes = []AppointmentType{
	AppointmentTypeCheckup,
	AppointmentTypeConsultation,
	AppointmentTypeFollowUp,
	AppointmentTypeProcedure,
}

func (t AppointmentType) Valid() bool {
	_, ok := AppointmentTypeConfig[t]
	return ok
}

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// AppointmentStatuses lists every known appointment status
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

func (s AppointmentStatus) Valid() bool {
	for _, known := range AppointmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID        string            `db:"id" json:"id"`
	PatientID string            `db:"patient_id" json:"patient_id"`
	DoctorID  string            `db:"doctor_id" json:"doctor_id"`
	Type      AppointmentType   `db:"type" json:"type"`
	StartTime time.Time         `db:"start_time" json:"start_time"`
	EndTime   time.Time         `db:"end_time" json:"end_time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
}

// Duration is the appointment length
func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Validate checks the end-after-start invariant and the enumerations
func (a Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("appointment ID is required")
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("appointment %s: end time %s is not after start time %s",
			a.ID, a.EndTime.Format(time.RFC3339), a.StartTime.Format(time.RFC3339))
	}
	if !a.Type.Valid() {
		return fmt.Errorf("appointment %s: unknown type %q", a.ID, a.Type)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("appointment %s: unknown status %q", a.ID, a.Status)
	}
	return nil
}

// PopulatedAppointment carries the resolved patient and doctor records.
// Either may be nil when the reference cannot be resolved.
type PopulatedAppointment struct {
	Appointment
	Patient *Patient `json:"patient"`
	Doctor  *Doctor  `json:"doctor"`
}

// AppointmentFilters narrows an appointment listing. A non-zero StartDate and
// EndDate take precedence over Date.
type AppointmentFilters struct {
	DoctorID  string
	Date      time.Time
	StartDate time.Time
	EndDate   time.Time
	Type      AppointmentType
	Status    AppointmentStatus
}

// HasRange reports whether both range bounds are set
func (f AppointmentFilters) HasRange() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// AppointmentTypeInfo is the display metadata of an appointment type
type AppointmentTypeInfo struct {
	Type            AppointmentType `json:"type"`
	Label           string          `json:"label"`
	Color           string          `json:"color"`
	DefaultDuration int             `json:"default_duration"`
}

var AppointmentTypeConfig = map[AppointmentType]AppointmentTypeInfo{
	AppointmentTypeCheckup:      {Type: AppointmentTypeCheckup, Label: "General Checkup", Color: "#3b82f6", DefaultDuration: 30},
	AppointmentTypeConsultation: {Type: AppointmentTypeConsultation, Label: "Consultation", Color: "#10b981", DefaultDuration: 60},
	AppointmentTypeFollowUp:     {Type: AppointmentTypeFollowUp, Label: "Follow-up", Color: "#f59e0b", DefaultDuration: 30},
	AppointmentTypeProcedure:    {Type: AppointmentTypeProcedure, Label: "Procedure", Color: "#8b5cf6", DefaultDuration: 90},
}

// TypeInfo returns the display metadata for t, falling back to a neutral
// entry for unknown types.
func TypeInfo(t AppointmentType) AppointmentTypeInfo {
	if info, ok := AppointmentTypeConfig[t]; ok {
		return info
	}
	return AppointmentTypeInfo{Type: t, Label: string(t), Color: "#6b7280", DefaultDuration: 30}
}
