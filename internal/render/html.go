// Package render turns schedules into HTML pages and plain-text grids.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
)

// PageTemplate is the entry template of the schedule page
const PageTemplate = "layout"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	tmpl, err := template.New(PageTemplate).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

type DoctorOption struct {
	ID       string
	Label    string
	Selected bool
}

type ViewOption struct {
	Value  model.CalendarView
	Label  string
	Active bool
}

// Page is the data behind the schedule page
type Page struct {
	Title    string
	Doctors  []DoctorOption
	Date     string
	Views    []ViewOption
	Schedule *schedule.Schedule
	Error    string
	PrevURL  string
	TodayURL string
	NextURL  string
}

// NewPage assembles the page for q. sched may be nil when loading failed;
// err is shown in the error block.
func NewPage(q schedule.Query, doctors []model.Doctor, sched *schedule.Schedule, err error, today time.Time) Page {
	page := Page{
		Title:    "Appointment Schedule",
		Date:     q.Date.Format(model.DateLayout),
		Schedule: sched,
		PrevURL:  ScheduleURL(q.DoctorID, calendar.Shift(q.Date, q.View, -1), q.View),
		TodayURL: ScheduleURL(q.DoctorID, today, q.View),
		NextURL:  ScheduleURL(q.DoctorID, calendar.Shift(q.Date, q.View, 1), q.View),
	}

	for _, d := range doctors {
		page.Doctors = append(page.Doctors, DoctorOption{
			ID:       d.ID,
			Label:    d.DisplayName(),
			Selected: d.ID == q.DoctorID,
		})
	}

	for _, v := range []model.CalendarView{model.CalendarViewDay, model.CalendarViewWeek} {
		label := "Day"
		if v == model.CalendarViewWeek {
			label = "Week"
		}
		page.Views = append(page.Views, ViewOption{Value: v, Label: label, Active: v == q.View})
	}

	switch {
	case err != nil:
		page.Error = err.Error()
	case sched != nil && sched.Error != "":
		page.Error = sched.Error
	}
	return page
}

// ScheduleURL links to the schedule page for the given selection
func ScheduleURL(doctorID string, date time.Time, view model.CalendarView) string {
	q := url.Values{}
	if doctorID != "" {
		q.Set("doctor_id", doctorID)
	}
	q.Set("date", date.Format(model.DateLayout))
	if view != "" {
		q.Set("view", string(view))
	}
	return "/schedule?" + q.Encode()
}
