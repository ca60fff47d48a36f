package calendar

import (
	"fmt"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

// DaysPerWeek is the width of the week grid
const DaysPerWeek = 7

// WeekStart returns Monday 00:00 of the week containing date, in date's location
func WeekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	y, m, d := date.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, date.Location())
}

// WeekEnd returns Sunday 23:59:59.999 of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	y, m, d := weekStart.Date()
	return time.Date(y, m, d+DaysPerWeek-1, 23, 59, 59, int(999*time.Millisecond), weekStart.Location())
}

// WeekDays returns the seven dates Monday through Sunday starting at weekStart
func WeekDays(weekStart time.Time) []time.Time {
	y, m, d := weekStart.Date()
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = time.Date(y, m, d+i, 0, 0, 0, 0, weekStart.Location())
	}
	return days
}

// SameDay reports whether t falls on day's calendar date, judged in day's location
func SameDay(t, day time.Time) bool {
	ty, tm, td := t.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	return ty == dy && tm == dm && td == dd
}

// GenericSlot is a week-grid row, not tied to a date
type GenericSlot struct {
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Label        string `json:"label"`
	DisplayLabel string `json:"display_label"`
}

// WeekSlots lays out the rows of the week grid
func WeekSlots(cfg model.CalendarConfig) []GenericSlot {
	slots := make([]GenericSlot, 0)
	if cfg.SlotDuration <= 0 {
		return slots
	}
	for minute := cfg.StartHour * 60; minute < cfg.EndHour*60; minute += cfg.SlotDuration {
		h, mm := minute/60, minute%60
		slots = append(slots, GenericSlot{
			Hour:         h,
			Minute:       mm,
			Label:        fmt.Sprintf("%02d:%02d", h, mm),
			DisplayLabel: time.Date(2000, 1, 1, h, mm, 0, 0, time.UTC).Format(TimeLabelLayout),
		})
	}
	return slots
}

// SlotOn anchors a generic slot on day
func SlotOn(day time.Time, hour, minute int, cfg model.CalendarConfig) model.TimeSlot {
	y, m, d := day.Date()
	start := time.Date(y, m, d, hour, minute, 0, 0, day.Location())
	end := time.Date(y, m, d, hour, minute+cfg.SlotDuration, 0, 0, day.Location())
	return model.TimeSlot{Start: start, End: end, Label: start.Format(TimeLabelLayout)}
}

// AppointmentsForDay returns the appointments starting on day
func AppointmentsForDay(apts []model.Appointment, day time.Time) []model.Appointment {
	out := make([]model.Appointment, 0)
	for _, apt := range apts {
		if SameDay(apt.StartTime, day) {
			out = append(out, apt)
		}
	}
	return out
}

// AppointmentsForDayAndSlot returns the appointments starting on day that
// intersect the slot at hour:minute of that day
func AppointmentsForDayAndSlot(apts []model.Appointment, day time.Time, hour, minute int, cfg model.CalendarConfig) []model.Appointment {
	slot := SlotOn(day, hour, minute, cfg)
	out := make([]model.Appointment, 0)
	for _, apt := range apts {
		if SameDay(apt.StartTime, day) && Overlaps(apt.StartTime, apt.EndTime, slot.Start, slot.End) {
			out = append(out, apt)
		}
	}
	return out
}

// WeekTitle renders "Jan 2 - Jan 8, 2006"
func WeekTitle(weekStart time.Time) string {
	days := WeekDays(weekStart)
	return days[0].Format(ShortDateLayout) + " - " + days[DaysPerWeek-1].Format(LongDateLayout)
}

// Shift moves date by n days in the day view or n weeks in the week view
func Shift(date time.Time, view model.CalendarView, n int) time.Time {
	if view == model.CalendarViewWeek {
		return date.AddDate(0, 0, DaysPerWeek*n)
	}
	return date.AddDate(0, 0, n)
}
