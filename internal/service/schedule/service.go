package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/fetch"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/appointment"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// Query selects one schedule page
type Query struct {
	DoctorID string
	Date     time.Time
	View     model.CalendarView
}

// Schedule is everything a schedule page shows. Exactly one of Day and Week
// is set unless no doctor is selected.
type Schedule struct {
	DoctorID string               `json:"doctor_id"`
	Date     time.Time            `json:"date"`
	View     model.CalendarView   `json:"view"`
	Doctor   *model.Doctor        `json:"doctor,omitempty"`
	Day      *calendar.DayView    `json:"day,omitempty"`
	Week     *calendar.WeekView   `json:"week,omitempty"`
	Loading  bool                 `json:"loading"`
	Error    string               `json:"error,omitempty"`
	Config   model.CalendarConfig `json:"config"`
}

type Service struct {
	appointments *appointment.Service
	config       model.CalendarConfig
}

func NewService(appointments *appointment.Service, cfg model.CalendarConfig) *Service {
	return &Service{appointments: appointments, config: cfg}
}

func (s *Service) Config() model.CalendarConfig {
	return s.config
}

// Location is the zone days are evaluated in
func (s *Service) Location() *time.Location {
	return s.appointments.Location()
}

// Params derives the fetch parameters of q
func (q Query) Params() fetch.Params {
	if q.View == model.CalendarViewWeek {
		return fetch.WeekParams(q.DoctorID, q.Date)
	}
	return fetch.DayParams(q.DoctorID, q.Date)
}

// QueryFromParams recovers the selection behind fetch parameters: a range
// means the week view, a single date the day view
func QueryFromParams(p fetch.Params) Query {
	if p.HasRange() {
		return Query{DoctorID: p.DoctorID, Date: p.StartDate, View: model.CalendarViewWeek}
	}
	return Query{DoctorID: p.DoctorID, Date: p.Date, View: model.CalendarViewDay}
}

// Build loads and bins the appointments selected by q
func (s *Service) Build(ctx context.Context, q Query) (*Schedule, error) {
	if q.View == "" {
		q.View = model.CalendarViewDay
	}
	if !q.View.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown view %q", q.View), nil)
	}
	if q.Date.IsZero() {
		return nil, apperrors.BadRequest("date is required", nil)
	}
	q.Date = q.Date.In(s.Location())

	if q.DoctorID == "" {
		return s.assemble(ctx, q, fetch.State{}), nil
	}

	doctor, err := s.appointments.DoctorByID(ctx, q.DoctorID)
	if err != nil {
		return nil, err
	}

	var apts []model.Appointment
	p := q.Params()
	if p.HasRange() {
		apts, err = s.appointments.AppointmentsByDoctorAndDateRange(ctx, p.DoctorID, p.StartDate, p.EndDate)
	} else {
		apts, err = s.appointments.AppointmentsByDoctorAndDate(ctx, p.DoctorID, p.Date)
	}
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, q, fetch.State{Params: p, Doctor: doctor, Appointments: apts}), nil
}

// FromState renders a fetcher snapshot for the selected view and date
func (s *Service) FromState(ctx context.Context, q Query, st fetch.State) *Schedule {
	return s.assemble(ctx, q, st)
}

func (s *Service) assemble(ctx context.Context, q Query, st fetch.State) *Schedule {
	sched := &Schedule{
		DoctorID: q.DoctorID,
		Date:     q.Date,
		View:     q.View,
		Doctor:   st.Doctor,
		Loading:  st.Loading,
		Config:   s.config,
	}
	if st.Err != nil {
		sched.Error = st.Err.Error()
		return sched
	}
	if q.DoctorID == "" || st.Loading {
		return sched
	}

	in := calendar.Input{
		Appointments: calendar.SortByStart(st.Appointments),
		Patients:     s.appointments.PatientsFor(ctx, st.Appointments),
		Doctor:       st.Doctor,
		Config:       s.config,
	}
	switch q.View {
	case model.CalendarViewWeek:
		week := calendar.BuildWeekView(in, q.Date)
		sched.Week = &week
	default:
		day := calendar.BuildDayView(in, q.Date)
		sched.Day = &day
	}
	return sched
}
