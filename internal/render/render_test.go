package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
)

var wednesday = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

var doctor = model.Doctor{
	ID:        "doc-1",
	Name:      "Sarah Chen",
	Specialty: model.SpecialtyCardiology,
	WorkingHours: model.WeeklySchedule{
		model.Wednesday: {Start: "09:00", End: "17:00"},
	},
}

func sampleInput() calendar.Input {
	nine := wednesday.Add(9 * time.Hour)
	return calendar.Input{
		Appointments: []model.Appointment{
			{ID: "apt-1", PatientID: "pat-1", DoctorID: "doc-1", Type: model.AppointmentTypeCheckup,
				StartTime: nine, EndTime: nine.Add(30 * time.Minute), Status: model.AppointmentStatusScheduled},
			{ID: "apt-2", PatientID: "pat-2", DoctorID: "doc-1", Type: model.AppointmentTypeConsultation,
				StartTime: nine.Add(15 * time.Minute), EndTime: nine.Add(45 * time.Minute), Status: model.AppointmentStatusScheduled},
		},
		Patients: map[string]model.Patient{"pat-1": {ID: "pat-1", Name: "John Smith"}},
		Doctor:   &doctor,
		Config:   model.DefaultCalendarConfig,
	}
}

func daySchedule() *schedule.Schedule {
	day := calendar.BuildDayView(sampleInput(), wednesday)
	return &schedule.Schedule{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewDay, Doctor: &doctor, Day: &day}
}

func weekSchedule() *schedule.Schedule {
	week := calendar.BuildWeekView(sampleInput(), wednesday)
	return &schedule.Schedule{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewWeek, Doctor: &doctor, Week: &week}
}

func TestTemplatesRenderDayPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	q := schedule.Query{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewDay}
	page := NewPage(q, []model.Doctor{doctor}, daySchedule(), nil, wednesday)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, page))
	html := buf.String()

	assert.Contains(t, html, "Select a doctor...")
	assert.Contains(t, html, "Dr. Sarah Chen - cardiology")
	assert.Contains(t, html, "Wednesday, October 14, 2026")
	assert.Contains(t, html, "John Smith")
	assert.Contains(t, html, "Unknown Patient")
	assert.Contains(t, html, "9:00 AM - 9:30 AM")
	assert.Contains(t, html, "#3b82f6")
	assert.Contains(t, html, `value="2026-10-14"`)
	assert.NotContains(t, html, "Error loading appointments")
}

func TestTemplatesRenderWeekPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	q := schedule.Query{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewWeek}
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, NewPage(q, []model.Doctor{doctor}, weekSchedule(), nil, wednesday)))

	html := buf.String()
	assert.Contains(t, html, "Oct 12 - Oct 18, 2026")
	assert.Contains(t, html, "Mon")
	assert.Contains(t, html, "9:00 AM")
	assert.Contains(t, html, "Unknown")
}

func TestTemplatesRenderError(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	q := schedule.Query{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewDay}
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, NewPage(q, nil, nil, errors.New("data service unavailable"), wednesday)))

	assert.Contains(t, buf.String(), "Error loading appointments")
	assert.Contains(t, buf.String(), "data service unavailable")
}

func TestNewPageNavigation(t *testing.T) {
	q := schedule.Query{DoctorID: "doc-1", Date: wednesday, View: model.CalendarViewWeek}
	page := NewPage(q, []model.Doctor{doctor, {ID: "doc-2", Name: "Michael Rodriguez", Specialty: model.SpecialtyPediatrics}}, nil, nil, wednesday)

	assert.Equal(t, "/schedule?date=2026-10-07&doctor_id=doc-1&view=week", page.PrevURL)
	assert.Equal(t, "/schedule?date=2026-10-21&doctor_id=doc-1&view=week", page.NextURL)
	require.Len(t, page.Doctors, 2)
	assert.True(t, page.Doctors[0].Selected)
	assert.False(t, page.Doctors[1].Selected)
	assert.True(t, page.Views[1].Active)
}

func TestTextDay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, daySchedule()))
	out := buf.String()

	assert.Contains(t, out, "Wednesday, October 14, 2026")
	assert.Contains(t, out, "Dr. Sarah Chen - cardiology")
	assert.Contains(t, out, "!John Smith - General Checkup, 9:00 AM - 9:30 AM (30 min)")
	assert.Contains(t, out, "8:00 AM "+offHoursMarker)
	assert.Contains(t, out, "1 overlapping appointment pair(s)")
}

func TestTextWeek(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, weekSchedule()))
	out := buf.String()

	assert.Contains(t, out, "Oct 12 - Oct 18, 2026")
	assert.Contains(t, out, "Wed Oct 14 (2)")
	assert.Contains(t, out, "!Unknown")
}

func TestTextStates(t *testing.T) {
	tests := []struct {
		name  string
		sched *schedule.Schedule
		want  string
	}{
		{"loading", &schedule.Schedule{Loading: true}, LoadingMessage},
		{"error", &schedule.Schedule{Error: "timeout"}, "Error loading appointments: timeout"},
		{"no doctor", &schedule.Schedule{}, NoDoctorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Text(&buf, tt.sched))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	empty := calendar.BuildDayView(calendar.Input{Config: model.DefaultCalendarConfig}, wednesday)
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, &schedule.Schedule{Day: &empty}))
	assert.Contains(t, buf.String(), calendar.EmptyDayMessage)
}

func TestDoctors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Doctors(&buf, []model.Doctor{
		doctor,
		{ID: "doc-2", Name: "Michael Rodriguez", Specialty: model.SpecialtyPediatrics},
	}))

	out := buf.String()
	assert.Contains(t, out, "Dr. Sarah Chen - cardiology")
	assert.Contains(t, out, "Wed 09:00-17:00")
	assert.Contains(t, out, "doc-2")
	assert.Contains(t, out, "Hours")
}
