// Package calendar turns a flat list of appointments into the fixed slot
// grids of the day and week layouts. Everything here is pure.
package calendar

import (
	"sort"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

// Display layouts
const (
	TimeLabelLayout = "3:04 PM"
	ClockLayout     = "15:04"
	DayTitleLayout  = "Monday, January 2, 2006"
	ShortDateLayout = "Jan 2"
	LongDateLayout  = "Jan 2, 2006"
	WeekdayLayout   = "Mon"
	InputDateLayout = model.DateLayout
)

// GenerateTimeSlots lays out the slots of date's calendar day from
// cfg.StartHour to cfg.EndHour in cfg.SlotDuration steps. Slot bounds are
// wall-clock times in date's location.
func GenerateTimeSlots(date time.Time, cfg model.CalendarConfig) []model.TimeSlot {
	y, m, d := date.Date()
	loc := date.Location()
	first := cfg.StartHour * 60
	last := cfg.EndHour * 60

	if cfg.SlotDuration <= 0 || last <= first {
		return []model.TimeSlot{}
	}

	slots := make([]model.TimeSlot, 0, (last-first)/cfg.SlotDuration)
	for minute := first; minute < last; minute += cfg.SlotDuration {
		start := time.Date(y, m, d, 0, minute, 0, 0, loc)
		end := time.Date(y, m, d, 0, minute+cfg.SlotDuration, 0, 0, loc)
		slots = append(slots, model.TimeSlot{
			Start: start,
			End:   end,
			Label: start.Format(TimeLabelLayout),
		})
	}
	return slots
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// AppointmentsForSlot returns the appointments intersecting slot, in input order
func AppointmentsForSlot(apts []model.Appointment, slot model.TimeSlot) []model.Appointment {
	out := make([]model.Appointment, 0)
	for _, apt := range apts {
		if Overlaps(apt.StartTime, apt.EndTime, slot.Start, slot.End) {
			out = append(out, apt)
		}
	}
	return out
}

// SortByStart returns a copy of apts ordered by start time; ties keep input order
func SortByStart(apts []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(apts))
	copy(out, apts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Conflict is a pair of overlapping appointments of the same doctor
type Conflict struct {
	First  model.Appointment `json:"first"`
	Second model.Appointment `json:"second"`
}

// FindConflicts reports every overlapping pair among apts, ordered by the
// first appointment's start. Cancelled appointments never conflict.
func FindConflicts(apts []model.Appointment) []Conflict {
	active := make([]model.Appointment, 0, len(apts))
	for _, apt := range apts {
		if apt.Status != model.AppointmentStatusCancelled {
			active = append(active, apt)
		}
	}
	active = SortByStart(active)

	conflicts := make([]Conflict, 0)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			if !active[j].StartTime.Before(active[i].EndTime) {
				break
			}
			if active[i].DoctorID != active[j].DoctorID {
				continue
			}
			conflicts = append(conflicts, Conflict{First: active[i], Second: active[j]})
		}
	}
	return conflicts
}
