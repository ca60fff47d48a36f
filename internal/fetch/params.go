package fetch

import (
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// Params selects the appointments a Fetcher loads. A complete range takes
// precedence over Date.
type Params struct {
	DoctorID  string    `json:"doctor_id"`
	Date      time.Time `json:"date"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func DayParams(doctorID string, date time.Time) Params {
	return Params{DoctorID: doctorID, Date: date}
}

// WeekParams covers the Monday..Sunday week containing date
func WeekParams(doctorID string, date time.Time) Params {
	start := calendar.WeekStart(date)
	return Params{DoctorID: doctorID, StartDate: start, EndDate: calendar.WeekEnd(start)}
}

func (p Params) HasRange() bool {
	return !p.StartDate.IsZero() && !p.EndDate.IsZero()
}

// Idle reports whether no doctor is selected
func (p Params) Idle() bool {
	return p.DoctorID == ""
}

func (p Params) Validate() error {
	if p.HasRange() {
		if p.EndDate.Before(p.StartDate) {
			return apperrors.BadRequest("end date must not be before start date", nil)
		}
		return nil
	}
	if p.Date.IsZero() {
		return apperrors.BadRequest("a date or a date range is required", nil)
	}
	return nil
}

// Equal compares instants, not time.Time representations
func (p Params) Equal(o Params) bool {
	return p.DoctorID == o.DoctorID &&
		p.Date.Equal(o.Date) &&
		p.StartDate.Equal(o.StartDate) &&
		p.EndDate.Equal(o.EndDate)
}
