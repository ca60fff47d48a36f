package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates in queries and forms
const DateLayout = "2006-01-02"

// DayOfWeek is the lowercase English weekday name used as working-hours key
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// DaysOfWeek lists the weekdays in calendar order, Monday first
var DaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOf maps a time.Weekday onto the working-hours key
func DayOf(w time.Weekday) DayOfWeek {
	if w == time.Sunday {
		return Sunday
	}
	return DaysOfWeek[int(w)-1]
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
