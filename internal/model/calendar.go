package model

import (
	"fmt"
	"time"
)

type CalendarView string

const (
	CalendarViewDay  CalendarView = "day"
	CalendarViewWeek CalendarView = "week"
)

func (v CalendarView) Valid() bool {
	return v == CalendarViewDay || v == CalendarViewWeek
}

// TimeSlot is one row of the calendar grid
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// CalendarConfig describes the visible part of a day
type CalendarConfig struct {
	StartHour    int `mapstructure:"start_hour" json:"start_hour" validate:"gte=0,lt=24"`
	EndHour      int `mapstructure:"end_hour" json:"end_hour" validate:"gt=0,lte=24,gtfield=StartHour"`
	SlotDuration int `mapstructure:"slot_duration" json:"slot_duration" validate:"gt=0,lte=240"`
}

var DefaultCalendarConfig = CalendarConfig{StartHour: 8, EndHour: 18, SlotDuration: 30}

// SlotLength is the slot duration as time.Duration
func (c CalendarConfig) SlotLength() time.Duration {
	return time.Duration(c.SlotDuration) * time.Minute
}

func (c CalendarConfig) Validate() error {
	if c.StartHour < 0 || c.StartHour >= 24 {
		return fmt.Errorf("start hour %d out of range", c.StartHour)
	}
	if c.EndHour <= c.StartHour || c.EndHour > 24 {
		return fmt.Errorf("end hour %d must be after start hour %d and at most 24", c.EndHour, c.StartHour)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	return nil
}
