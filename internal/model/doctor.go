package model

import (
	"fmt"
	"time"
)

type Specialty string

const (
	SpecialtyCardiology      Specialty = "cardiology"
	SpecialtyPediatrics      Specialty = "pediatrics"
	SpecialtyGeneralPractice Specialty = "general-practice"
	SpecialtyOrthopedics     Specialty = "orthopedics"
	SpecialtyDermatology     Specialty = "dermatology"
)

var Specialties = []Specialty{
	SpecialtyCardiology,
	SpecialtyPediatrics,
	SpecialtyGeneralPractice,
	SpecialtyOrthopedics,
	SpecialtyDermatology,
}

// WorkingHours is a daily window in "HH:MM" form
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Bounds resolves the window on the calendar day of date
func (w WorkingHours) Bounds(date time.Time) (time.Time, time.Time, error) {
	start, err := clockOn(date, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := clockOn(date, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func clockOn(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid working hours %q: %w", hhmm, err)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// WeeklySchedule maps weekdays to working hours. Days without an entry are off.
type WeeklySchedule map[DayOfWeek]WorkingHours

type Doctor struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Specialty    Specialty      `db:"specialty" json:"specialty"`
	Email        string         `db:"email" json:"email"`
	Phone        string         `db:"phone" json:"phone"`
	WorkingHours WeeklySchedule `db:"-" json:"working_hours"`
}

// DisplayName renders the selector label, e.g. "Dr. Sarah Chen - cardiology"
func (d Doctor) DisplayName() string {
	return fmt.Sprintf("Dr. %s - %s", d.Name, d.Specialty)
}

// HoursOn returns the working hours for the weekday of date
func (d Doctor) HoursOn(date time.Time) (WorkingHours, bool) {
	h, ok := d.WorkingHours[DayOf(date.Weekday())]
	return h, ok
}

// Works reports whether [start, end) lies inside the doctor's hours of that day
func (d Doctor) Works(start, end time.Time) bool {
	h, ok := d.HoursOn(start)
	if !ok {
		return false
	}
	from, to, err := h.Bounds(start)
	if err != nil {
		return false
	}
	return !start.Before(from) && !end.After(to)
}
