// Package session tracks what the front desk is looking at: one doctor, one
// date and a day or week view. Every change is pushed to the fetcher.
package session

import (
	"sync"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/fetch"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

const DefaultDoctorID = "doc-1"

// Selection is the current doctor, date and view
type Selection struct {
	DoctorID string             `json:"doctor_id"`
	Date     time.Time          `json:"date"`
	View     model.CalendarView `json:"view"`
}

// Params derives the fetch parameters: the date itself for the day view,
// Monday..Sunday for the week view
func (s Selection) Params() fetch.Params {
	if s.View == model.CalendarViewWeek {
		return fetch.WeekParams(s.DoctorID, s.Date)
	}
	return fetch.DayParams(s.DoctorID, s.Date)
}

// Fetcher receives parameter changes
type Fetcher interface {
	Set(params fetch.Params)
	Refresh()
}

type Option func(*Session)

func WithDoctor(id string) Option {
	return func(s *Session) { s.sel.DoctorID = id }
}

func WithDate(date time.Time) Option {
	return func(s *Session) { s.sel.Date = date }
}

func WithView(view model.CalendarView) Option {
	return func(s *Session) {
		if view.Valid() {
			s.sel.View = view
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now for Today
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type Session struct {
	mu      sync.Mutex
	fetcher Fetcher
	sel     Selection
	loc     *time.Location
	now     func() time.Time
}

// New creates a session and pushes its initial selection to f
func New(f Fetcher, opts ...Option) *Session {
	s := &Session{
		fetcher: f,
		sel:     Selection{DoctorID: DefaultDoctorID, View: model.CalendarViewDay},
		loc:     time.Local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sel.Date.IsZero() {
		s.sel.Date = s.now()
	}
	s.sel.Date = s.startOfDay(s.sel.Date)

	s.push()
	return s
}

func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetDoctor selects a doctor; an empty ID leaves the fetcher idle
func (s *Session) SetDoctor(id string) {
	s.update(func(sel *Selection) { sel.DoctorID = id })
}

func (s *Session) SetDate(date time.Time) {
	day := s.startOfDay(date)
	s.update(func(sel *Selection) { sel.Date = day })
}

func (s *Session) SetView(view model.CalendarView) error {
	if !view.Valid() {
		return apperrors.BadRequest("view must be day or week", nil)
	}
	s.update(func(sel *Selection) { sel.View = view })
	return nil
}

// Next moves forward one day or one week depending on the view
func (s *Session) Next() {
	s.update(func(sel *Selection) { sel.Date = calendar.Shift(sel.Date, sel.View, 1) })
}

func (s *Session) Prev() {
	s.update(func(sel *Selection) { sel.Date = calendar.Shift(sel.Date, sel.View, -1) })
}

func (s *Session) Today() {
	today := s.startOfDay(s.now())
	s.update(func(sel *Selection) { sel.Date = today })
}

func (s *Session) Refresh() {
	s.fetcher.Refresh()
}

func (s *Session) update(fn func(sel *Selection)) {
	s.mu.Lock()
	fn(&s.sel)
	s.mu.Unlock()
	s.push()
}

func (s *Session) push() {
	s.fetcher.Set(s.Selection().Params())
}

func (s *Session) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
