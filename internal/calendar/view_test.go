package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

var testDoctor = &model.Doctor{
	ID:        "doc-1",
	Name:      "Sarah Chen",
	Specialty: model.SpecialtyCardiology,
	WorkingHours: model.WeeklySchedule{
		model.Monday:    {Start: "09:00", End: "17:00"},
		model.Wednesday: {Start: "09:00", End: "17:00"},
	},
}

var testPatients = map[string]model.Patient{
	"pat-1": {ID: "pat-1", Name: "John Smith"},
}

func TestBuildDayView(t *testing.T) {
	consult := apt("c", at(wednesday, 9, 30), 60)
	consult.Type = model.AppointmentTypeConsultation
	stranger := apt("s", at(wednesday, 14, 0), 30)
	stranger.PatientID = "pat-404"

	view := BuildDayView(Input{
		Appointments: []model.Appointment{consult, stranger},
		Patients:     testPatients,
		Doctor:       testDoctor,
		Config:       model.DefaultCalendarConfig,
	}, wednesday)

	assert.Equal(t, "Wednesday, October 14, 2026", view.Title)
	assert.Equal(t, "Dr. Sarah Chen - cardiology", view.DoctorLine)
	assert.False(t, view.Empty)
	assert.Equal(t, 2, view.Count)
	require.Len(t, view.Rows, 20)

	// 8:00 is before working hours, 9:00 inside
	assert.False(t, view.Rows[0].WithinHours)
	assert.True(t, view.Rows[2].WithinHours)

	// the one-hour consultation shows in the 9:30 and 10:00 rows
	assert.Empty(t, view.Rows[2].Cards)
	require.Len(t, view.Rows[3].Cards, 1)
	require.Len(t, view.Rows[4].Cards, 1)
	assert.Empty(t, view.Rows[5].Cards)

	card := view.Rows[3].Cards[0]
	assert.Equal(t, "John Smith", card.PatientName)
	assert.Equal(t, "Consultation", card.TypeLabel)
	assert.Equal(t, "#10b981", card.Color)
	assert.Equal(t, "9:30 AM - 10:30 AM", card.TimeRange)
	assert.Equal(t, 60, card.DurationMinutes)

	require.Len(t, view.Rows[12].Cards, 1)
	assert.Equal(t, "Unknown Patient", view.Rows[12].Cards[0].PatientName)
	assert.Empty(t, view.OutsideGrid)
}

func TestBuildDayView_Empty(t *testing.T) {
	view := BuildDayView(Input{Config: model.DefaultCalendarConfig}, wednesday)

	assert.True(t, view.Empty)
	assert.Equal(t, EmptyDayMessage, view.EmptyMessage)
	assert.Empty(t, view.DoctorLine)
	require.Len(t, view.Rows, 20)
	for _, row := range view.Rows {
		assert.True(t, row.WithinHours)
		assert.NotNil(t, row.Cards)
	}
}

func TestBuildDayView_OutsideGridAndConflicts(t *testing.T) {
	early := apt("early", at(wednesday, 7, 0), 30)
	a := apt("a", at(wednesday, 10, 0), 60)
	b := apt("b", at(wednesday, 10, 30), 30)

	view := BuildDayView(Input{
		Appointments: []model.Appointment{a, b, early},
		Config:       model.DefaultCalendarConfig,
	}, wednesday)

	require.Len(t, view.OutsideGrid, 1)
	assert.Equal(t, "early", view.OutsideGrid[0].AppointmentID)
	assert.Equal(t, "Unknown Patient", view.OutsideGrid[0].PatientName)

	require.Len(t, view.Conflicts, 1)
	for _, card := range view.Rows[5].Cards {
		assert.True(t, card.Conflict, card.AppointmentID)
	}
}

func TestBuildWeekView(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	first := apt("mon", at(monday, 9, 0), 30)
	second := apt("wed", at(wednesday, 13, 0), 90)

	view := BuildWeekView(Input{
		Appointments: []model.Appointment{first, second},
		Patients:     testPatients,
		Doctor:       testDoctor,
		Config:       model.DefaultCalendarConfig,
	}, time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC))

	assert.Equal(t, monday, view.WeekStart)
	assert.Equal(t, "Oct 12 - Oct 18, 2026", view.Title)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "Mon", view.Days[0].Name)
	assert.Equal(t, "Oct 12", view.Days[0].Label)
	assert.Equal(t, 1, view.Days[0].Count)
	assert.Equal(t, 1, view.Days[2].Count)
	assert.Equal(t, 0, view.Days[1].Count)

	require.Len(t, view.Rows, 20)
	row9 := view.Rows[2]
	assert.Equal(t, "9:00 AM", row9.Slot.DisplayLabel)
	require.Len(t, row9.Cells, 7)
	require.Len(t, row9.Cells[0].Cards, 1)
	assert.Equal(t, "John Smith", row9.Cells[0].Cards[0].PatientName)
	assert.Equal(t, "9:00 AM", row9.Cells[0].Cards[0].StartLabel)

	// Tuesday has no working hours
	assert.False(t, row9.Cells[1].WithinHours)
	assert.True(t, row9.Cells[2].WithinHours)

	procedureRows := 0
	for _, row := range view.Rows {
		procedureRows += len(row.Cells[2].Cards)
	}
	assert.Equal(t, 3, procedureRows)
	assert.False(t, view.Empty)
}

func TestBuildWeekView_Empty(t *testing.T) {
	view := BuildWeekView(Input{Config: model.DefaultCalendarConfig}, wednesday)

	assert.True(t, view.Empty)
	assert.Equal(t, EmptyWeekMessage, view.EmptyMessage)
}

func TestBuildWeekView_UnknownPatientShortLabel(t *testing.T) {
	stranger := apt("s", at(wednesday, 9, 0), 30)
	stranger.PatientID = "nobody"

	view := BuildWeekView(Input{
		Appointments: []model.Appointment{stranger},
		Config:       model.DefaultCalendarConfig,
	}, wednesday)

	require.Len(t, view.Rows[2].Cells[2].Cards, 1)
	assert.Equal(t, "Unknown", view.Rows[2].Cells[2].Cards[0].PatientName)
}
