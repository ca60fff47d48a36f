package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/cache"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

const DefaultCacheTTL = 30 * time.Second

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	metrics      *metrics.Metrics
	logger       *logger.Logger
	loc          *time.Location
}

type Option func(*Service)

// WithCache memoises range queries in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLocation sets the zone in which calendar days are evaluated
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store repository.Store, opts ...Option) *Service {
	s := &Service{
		appointments: store.Appointments(),
		doctors:      store.Doctors(),
		patients:     store.Patients(),
		cacheTTL:     DefaultCacheTTL,
		logger:       logger.Nop(),
		loc:          time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	return s
}

// Location is the zone calendar days are evaluated in
func (s *Service) Location() *time.Location {
	return s.loc
}

// AppointmentsByDoctor returns every appointment of doctorID
func (s *Service) AppointmentsByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error) {
	apts, err := s.observe("by_doctor", func() ([]model.Appointment, error) {
		return s.appointments.ListByDoctor(ctx, doctorID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return s.normalize(apts), nil
}

// AppointmentsByDoctorAndDate returns the appointments of doctorID starting
// on date's calendar day in the service location
func (s *Service) AppointmentsByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	start, end := repository.DayBounds(date.In(s.loc))
	return s.AppointmentsByDoctorAndDateRange(ctx, doctorID, start, end)
}

// AppointmentsByDoctorAndDateRange returns the appointments of doctorID
// starting in [start, end]
func (s *Service) AppointmentsByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error) {
	if end.Before(start) {
		return nil, apperrors.BadRequest("end date must not be before start date", nil)
	}

	key := fmt.Sprintf("appointments:%s:%d:%d", doctorID, start.UnixNano(), end.UnixNano())
	if s.cache != nil {
		var cached []model.Appointment
		found, err := cache.GetJSON(ctx, s.cache, key, &cached)
		switch {
		case err != nil:
			s.metrics.CacheErrors.WithLabelValues(s.cache.Name(), "get").Inc()
			s.logger.Warn("Memo cache read failed", "key", key, "error", err.Error())
		case found:
			s.metrics.CacheHits.WithLabelValues(s.cache.Name()).Inc()
			return s.normalize(cached), nil
		default:
			s.metrics.CacheMisses.WithLabelValues(s.cache.Name()).Inc()
		}
	}

	apts, err := s.observe("by_range", func() ([]model.Appointment, error) {
		return s.appointments.ListByDoctorAndDateRange(ctx, doctorID, start, end)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, apts, s.cacheTTL); err != nil {
			s.metrics.CacheErrors.WithLabelValues(s.cache.Name(), "set").Inc()
			s.logger.Warn("Memo cache write failed", "key", key, "error", err.Error())
		}
	}
	return s.normalize(apts), nil
}

// List resolves filters into a doctor, date or range query, applies the type
// and status filters and returns the result sorted by start time
func (s *Service) List(ctx context.Context, filters model.AppointmentFilters) ([]model.Appointment, error) {
	if filters.DoctorID == "" {
		return nil, apperrors.BadRequest("doctor_id is required", nil)
	}
	if filters.Type != "" && !filters.Type.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown appointment type %q", filters.Type), nil)
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown appointment status %q", filters.Status), nil)
	}

	var (
		apts []model.Appointment
		err  error
	)
	switch {
	case filters.HasRange():
		apts, err = s.AppointmentsByDoctorAndDateRange(ctx, filters.DoctorID, filters.StartDate, filters.EndDate)
	case !filters.Date.IsZero():
		apts, err = s.AppointmentsByDoctorAndDate(ctx, filters.DoctorID, filters.Date)
	default:
		apts, err = s.AppointmentsByDoctor(ctx, filters.DoctorID)
	}
	if err != nil {
		return nil, err
	}

	if filters.Type != "" {
		apts = FilterByType(apts, filters.Type)
	}
	if filters.Status != "" {
		apts = FilterByStatus(apts, filters.Status)
	}
	return SortByTime(apts), nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	normalized := s.normalize([]model.Appointment{*apt})[0]
	return &normalized, nil
}

func (s *Service) AllDoctors(ctx context.Context) ([]model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) DoctorByID(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) PatientByID(ctx context.Context, id string) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// Populate attaches the patient and doctor records. Unresolvable references
// are left nil.
func (s *Service) Populate(ctx context.Context, apt model.Appointment) model.PopulatedAppointment {
	populated := model.PopulatedAppointment{Appointment: apt}
	if p, err := s.patients.Get(ctx, apt.PatientID); err == nil {
		populated.Patient = p
	}
	if d, err := s.doctors.Get(ctx, apt.DoctorID); err == nil {
		populated.Doctor = d
	}
	return populated
}

func (s *Service) PopulateAll(ctx context.Context, apts []model.Appointment) []model.PopulatedAppointment {
	out := make([]model.PopulatedAppointment, 0, len(apts))
	for _, apt := range apts {
		out = append(out, s.Populate(ctx, apt))
	}
	return out
}

// PatientsFor resolves the patients referenced by apts, skipping unknown IDs
func (s *Service) PatientsFor(ctx context.Context, apts []model.Appointment) map[string]model.Patient {
	patients := make(map[string]model.Patient)
	for _, apt := range apts {
		if _, done := patients[apt.PatientID]; done {
			continue
		}
		if p, err := s.patients.Get(ctx, apt.PatientID); err == nil {
			patients[apt.PatientID] = *p
		}
	}
	return patients
}

// Conflicts reports the overlapping pairs among apts
func (s *Service) Conflicts(apts []model.Appointment) []calendar.Conflict {
	return calendar.FindConflicts(apts)
}

// SortByTime returns a copy of apts ordered by start time
func SortByTime(apts []model.Appointment) []model.Appointment {
	return calendar.SortByStart(apts)
}

// CheckOverlap reports whether two appointments intersect
func CheckOverlap(a, b model.Appointment) bool {
	return calendar.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}

func FilterByType(apts []model.Appointment, t model.AppointmentType) []model.Appointment {
	out := make([]model.Appointment, 0, len(apts))
	for _, apt := range apts {
		if apt.Type == t {
			out = append(out, apt)
		}
	}
	return out
}

func FilterByStatus(apts []model.Appointment, status model.AppointmentStatus) []model.Appointment {
	out := make([]model.Appointment, 0, len(apts))
	for _, apt := range apts {
		if apt.Status == status {
			out = append(out, apt)
		}
	}
	return out
}

func (s *Service) observe(operation string, fn func() ([]model.Appointment, error)) ([]model.Appointment, error) {
	s.metrics.FetchInFlight.Inc()
	defer s.metrics.FetchInFlight.Dec()

	start := time.Now()
	apts, err := fn()
	s.metrics.FetchLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.FetchTotal.WithLabelValues(operation, "cancelled").Inc()
	case err != nil:
		s.metrics.FetchTotal.WithLabelValues(operation, "error").Inc()
	default:
		s.metrics.FetchTotal.WithLabelValues(operation, "success").Inc()
	}
	return apts, err
}

// normalize moves appointment times into the service location so labels and
// day comparisons agree with the grid
func (s *Service) normalize(apts []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(apts))
	for i, apt := range apts {
		apt.StartTime = apt.StartTime.In(s.loc)
		apt.EndTime = apt.EndTime.In(s.loc)
		out[i] = apt
	}
	return out
}
