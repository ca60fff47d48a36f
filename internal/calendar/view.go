package calendar

import (
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
)

const (
	EmptyDayMessage  = "No appointments scheduled for this day"
	EmptyWeekMessage = "No appointments scheduled for this week"

	unknownPatientLong  = "Unknown Patient"
	unknownPatientShort = "Unknown"
)

// Input is everything the grid builders need
type Input struct {
	Appointments []model.Appointment
	Patients     map[string]model.Patient
	Doctor       *model.Doctor
	Config       model.CalendarConfig
}

// Card is a rendered appointment
type Card struct {
	AppointmentID   string                  `json:"appointment_id"`
	PatientID       string                  `json:"patient_id"`
	PatientName     string                  `json:"patient_name"`
	Type            model.AppointmentType   `json:"type"`
	TypeLabel       string                  `json:"type_label"`
	Color           string                  `json:"color"`
	Status          model.AppointmentStatus `json:"status"`
	Start           time.Time               `json:"start"`
	End             time.Time               `json:"end"`
	StartLabel      string                  `json:"start_label"`
	TimeRange       string                  `json:"time_range"`
	DurationMinutes int                     `json:"duration_minutes"`
	Notes           string                  `json:"notes,omitempty"`
	Conflict        bool                    `json:"conflict"`
}

type DayRow struct {
	Slot        model.TimeSlot `json:"slot"`
	WithinHours bool           `json:"within_hours"`
	Cards       []Card         `json:"cards"`
}

type DayView struct {
	Date         time.Time     `json:"date"`
	Title        string        `json:"title"`
	Doctor       *model.Doctor `json:"doctor,omitempty"`
	DoctorLine   string        `json:"doctor_line,omitempty"`
	Rows         []DayRow      `json:"rows"`
	OutsideGrid  []Card        `json:"outside_grid"`
	Conflicts    []Conflict    `json:"conflicts"`
	Count        int           `json:"count"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
}

type WeekDay struct {
	Date  time.Time `json:"date"`
	Name  string    `json:"name"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

type WeekCell struct {
	Date        time.Time `json:"date"`
	WithinHours bool      `json:"within_hours"`
	Cards       []Card    `json:"cards"`
}

type WeekRow struct {
	Slot  GenericSlot `json:"slot"`
	Cells []WeekCell  `json:"cells"`
}

type WeekView struct {
	WeekStart    time.Time     `json:"week_start"`
	WeekEnd      time.Time     `json:"week_end"`
	Title        string        `json:"title"`
	Doctor       *model.Doctor `json:"doctor,omitempty"`
	DoctorLine   string        `json:"doctor_line,omitempty"`
	Days         []WeekDay     `json:"days"`
	Rows         []WeekRow     `json:"rows"`
	OutsideGrid  []Card        `json:"outside_grid"`
	Conflicts    []Conflict    `json:"conflicts"`
	Count        int           `json:"count"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
}

// BuildDayView bins in.Appointments into the slots of date
func BuildDayView(in Input, date time.Time) DayView {
	conflicts := FindConflicts(in.Appointments)
	flagged := conflictIDs(conflicts)
	slots := GenerateTimeSlots(date, in.Config)

	view := DayView{
		Date:        date,
		Title:       date.Format(DayTitleLayout),
		Doctor:      in.Doctor,
		Rows:        make([]DayRow, 0, len(slots)),
		OutsideGrid: make([]Card, 0),
		Conflicts:   conflicts,
		Count:       len(in.Appointments),
		Empty:       len(in.Appointments) == 0,
	}
	if in.Doctor != nil {
		view.DoctorLine = in.Doctor.DisplayName()
	}
	if view.Empty {
		view.EmptyMessage = EmptyDayMessage
	}

	placed := make(map[string]bool, len(in.Appointments))
	for _, slot := range slots {
		row := DayRow{
			Slot:        slot,
			WithinHours: withinHours(in.Doctor, slot),
			Cards:       make([]Card, 0),
		}
		for _, apt := range AppointmentsForSlot(in.Appointments, slot) {
			row.Cards = append(row.Cards, newCard(apt, in.Patients, unknownPatientLong, flagged))
			placed[apt.ID] = true
		}
		view.Rows = append(view.Rows, row)
	}

	for _, apt := range SortByStart(in.Appointments) {
		if !placed[apt.ID] {
			view.OutsideGrid = append(view.OutsideGrid, newCard(apt, in.Patients, unknownPatientLong, flagged))
		}
	}
	return view
}

// BuildWeekView bins in.Appointments into the Monday..Sunday grid of the
// week containing date
func BuildWeekView(in Input, date time.Time) WeekView {
	weekStart := WeekStart(date)
	days := WeekDays(weekStart)
	conflicts := FindConflicts(in.Appointments)
	flagged := conflictIDs(conflicts)

	view := WeekView{
		WeekStart:   weekStart,
		WeekEnd:     WeekEnd(weekStart),
		Title:       WeekTitle(weekStart),
		Doctor:      in.Doctor,
		Days:        make([]WeekDay, 0, len(days)),
		OutsideGrid: make([]Card, 0),
		Conflicts:   conflicts,
		Count:       len(in.Appointments),
		Empty:       len(in.Appointments) == 0,
	}
	if in.Doctor != nil {
		view.DoctorLine = in.Doctor.DisplayName()
	}
	if view.Empty {
		view.EmptyMessage = EmptyWeekMessage
	}

	for _, day := range days {
		view.Days = append(view.Days, WeekDay{
			Date:  day,
			Name:  day.Format(WeekdayLayout),
			Label: day.Format(ShortDateLayout),
			Count: len(AppointmentsForDay(in.Appointments, day)),
		})
	}

	placed := make(map[string]bool, len(in.Appointments))
	generic := WeekSlots(in.Config)
	view.Rows = make([]WeekRow, 0, len(generic))
	for _, slot := range generic {
		row := WeekRow{Slot: slot, Cells: make([]WeekCell, 0, len(days))}
		for _, day := range days {
			cell := WeekCell{
				Date:        day,
				WithinHours: withinHours(in.Doctor, SlotOn(day, slot.Hour, slot.Minute, in.Config)),
				Cards:       make([]Card, 0),
			}
			for _, apt := range AppointmentsForDayAndSlot(in.Appointments, day, slot.Hour, slot.Minute, in.Config) {
				cell.Cards = append(cell.Cards, newCard(apt, in.Patients, unknownPatientShort, flagged))
				placed[apt.ID] = true
			}
			row.Cells = append(row.Cells, cell)
		}
		view.Rows = append(view.Rows, row)
	}

	for _, apt := range SortByStart(in.Appointments) {
		if !placed[apt.ID] {
			view.OutsideGrid = append(view.OutsideGrid, newCard(apt, in.Patients, unknownPatientShort, flagged))
		}
	}
	return view
}

func newCard(apt model.Appointment, patients map[string]model.Patient, unknown string, flagged map[string]bool) Card {
	info := model.TypeInfo(apt.Type)
	name := unknown
	if p, ok := patients[apt.PatientID]; ok && p.Name != "" {
		name = p.Name
	}
	return Card{
		AppointmentID:   apt.ID,
		PatientID:       apt.PatientID,
		PatientName:     name,
		Type:            apt.Type,
		TypeLabel:       info.Label,
		Color:           info.Color,
		Status:          apt.Status,
		Start:           apt.StartTime,
		End:             apt.EndTime,
		StartLabel:      apt.StartTime.Format(TimeLabelLayout),
		TimeRange:       apt.StartTime.Format(TimeLabelLayout) + " - " + apt.EndTime.Format(TimeLabelLayout),
		DurationMinutes: int(apt.Duration().Round(time.Minute) / time.Minute),
		Notes:           apt.Notes,
		Conflict:        flagged[apt.ID],
	}
}

// withinHours is true when no doctor is selected so the grid stays unshaded
func withinHours(doctor *model.Doctor, slot model.TimeSlot) bool {
	if doctor == nil {
		return true
	}
	return doctor.Works(slot.Start, slot.End)
}

func conflictIDs(conflicts []Conflict) map[string]bool {
	ids := make(map[string]bool, len(conflicts)*2)
	for _, c := range conflicts {
		ids[c.First.ID] = true
		ids[c.Second.ID] = true
	}
	return ids
}
