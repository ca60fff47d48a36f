package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the read side of the appointment data service.
	// Date bounds are inclusive and apply to the appointment start time.
	AppointmentRepository interface {
		ListByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error)
		ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error)
		ListByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error)
		Get(ctx context.Context, id string) (*model.Appointment, error)
	}

	DoctorRepository interface {
		List(ctx context.Context) ([]model.Doctor, error)
		Get(ctx context.Context, id string) (*model.Doctor, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id string) (*model.Patient, error)
	}

	// Store bundles the three repositories of one data source
	Store interface {
		Appointments() AppointmentRepository
		Doctors() DoctorRepository
		Patients() PatientRepository
		Close() error
	}
)

// DayBounds returns the first and last instant of date's calendar day,
// 00:00:00.000 and 23:59:59.999 in date's location.
func DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), date.Location())
	return start, end
}

// InRange reports whether t lies in [start, end], both inclusive
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
