// Package memory is the mock data service: an in-process store that answers
// appointment queries after a simulated network delay.
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// DefaultLatency is the simulated round trip of the data service
const DefaultLatency = 250 * time.Millisecond

// Dataset is the full content of a store
type Dataset struct {
	Doctors      []model.Doctor
	Patients     []model.Patient
	Appointments []model.Appointment
}

type Options struct {
	// Latency delays every appointment query; zero disables the delay
	Latency time.Duration
}

type Store struct {
	latency      time.Duration
	doctors      []model.Doctor
	doctorByID   map[string]int
	patientByID  map[string]model.Patient
	appointments []model.Appointment
}

// New validates data and builds a store over it
func New(data Dataset, opts Options) (*Store, error) {
	s := &Store{
		latency:     opts.Latency,
		doctorByID:  make(map[string]int, len(data.Doctors)),
		patientByID: make(map[string]model.Patient, len(data.Patients)),
	}

	for _, d := range data.Doctors {
		if d.ID == "" {
			return nil, fmt.Errorf("doctor without ID")
		}
		if _, dup := s.doctorByID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate doctor ID %s", d.ID)
		}
		s.doctorByID[d.ID] = len(s.doctors)
		s.doctors = append(s.doctors, d)
	}
	for _, p := range data.Patients {
		s.patientByID[p.ID] = p
	}

	seen := make(map[string]struct{}, len(data.Appointments))
	for _, apt := range data.Appointments {
		if err := apt.Validate(); err != nil {
			return nil, fmt.Errorf("invalid fixture: %w", err)
		}
		if _, dup := seen[apt.ID]; dup {
			return nil, fmt.Errorf("duplicate appointment ID %s", apt.ID)
		}
		seen[apt.ID] = struct{}{}
		s.appointments = append(s.appointments, apt)
	}
	sort.SliceStable(s.appointments, func(i, j int) bool {
		return s.appointments[i].StartTime.Before(s.appointments[j].StartTime)
	})

	return s, nil
}

func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepository{s} }
func (s *Store) Doctors() repository.DoctorRepository           { return doctorRepository{s} }
func (s *Store) Patients() repository.PatientRepository         { return patientRepository{s} }
func (s *Store) Close() error                                   { return nil }

// wait simulates the data service round trip
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) filter(ctx context.Context, keep func(model.Appointment) bool) ([]model.Appointment, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Appointment, 0)
	for _, apt := range s.appointments {
		if keep(apt) {
			out = append(out, apt)
		}
	}
	return out, nil
}

type appointmentRepository struct{ s *Store }

func (r appointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error) {
	return r.s.filter(ctx, func(apt model.Appointment) bool {
		return apt.DoctorID == doctorID
	})
}

func (r appointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	start, end := repository.DayBounds(date)
	return r.ListByDoctorAndDateRange(ctx, doctorID, start, end)
}

func (r appointmentRepository) ListByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error) {
	return r.s.filter(ctx, func(apt model.Appointment) bool {
		return apt.DoctorID == doctorID && repository.InRange(apt.StartTime, start, end)
	})
}

func (r appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	if err := r.s.wait(ctx); err != nil {
		return nil, err
	}
	for _, apt := range r.s.appointments {
		if apt.ID == id {
			found := apt
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("appointment", fmt.Errorf("no appointment with ID %s", id))
}

type doctorRepository struct{ s *Store }

func (r doctorRepository) List(_ context.Context) ([]model.Doctor, error) {
	out := make([]model.Doctor, len(r.s.doctors))
	copy(out, r.s.doctors)
	return out, nil
}

func (r doctorRepository) Get(_ context.Context, id string) (*model.Doctor, error) {
	idx, ok := r.s.doctorByID[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", fmt.Errorf("no doctor with ID %s", id))
	}
	d := r.s.doctors[idx]
	return &d, nil
}

type patientRepository struct{ s *Store }

func (r patientRepository) Get(_ context.Context, id string) (*model.Patient, error) {
	p, ok := r.s.patientByID[id]
	if !ok {
		return nil, apperrors.NotFound("patient", fmt.Errorf("no patient with ID %s", id))
	}
	return &p, nil
}
