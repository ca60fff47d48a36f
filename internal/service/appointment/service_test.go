package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/cache"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

type fakeStore struct {
	appointments []model.Appointment
	doctors      map[string]model.Doctor
	patients     map[string]model.Patient
	rangeCalls   int
	err          error
}

func (f *fakeStore) Appointments() repository.AppointmentRepository { return fakeAppointments{f} }
func (f *fakeStore) Doctors() repository.DoctorRepository           { return fakeDoctors{f} }
func (f *fakeStore) Patients() repository.PatientRepository         { return fakePatients{f} }
func (f *fakeStore) Close() error                                   { return nil }

type fakeAppointments struct{ f *fakeStore }

func (r fakeAppointments) ListByDoctor(_ context.Context, doctorID string) ([]model.Appointment, error) {
	if r.f.err != nil {
		return nil, r.f.err
	}
	var out []model.Appointment
	for _, apt := range r.f.appointments {
		if apt.DoctorID == doctorID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r fakeAppointments) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error) {
	start, end := repository.DayBounds(date)
	return r.ListByDoctorAndDateRange(ctx, doctorID, start, end)
}

func (r fakeAppointments) ListByDoctorAndDateRange(_ context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error) {
	r.f.rangeCalls++
	if r.f.err != nil {
		return nil, r.f.err
	}
	var out []model.Appointment
	for _, apt := range r.f.appointments {
		if apt.DoctorID == doctorID && repository.InRange(apt.StartTime, start, end) {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r fakeAppointments) Get(_ context.Context, id string) (*model.Appointment, error) {
	for _, apt := range r.f.appointments {
		if apt.ID == id {
			found := apt
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("appointment", fmt.Errorf("no appointment with ID %s", id))
}

type fakeDoctors struct{ f *fakeStore }

func (r fakeDoctors) List(_ context.Context) ([]model.Doctor, error) {
	out := make([]model.Doctor, 0, len(r.f.doctors))
	for _, d := range r.f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r fakeDoctors) Get(_ context.Context, id string) (*model.Doctor, error) {
	d, ok := r.f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return &d, nil
}

type fakePatients struct{ f *fakeStore }

func (r fakePatients) Get(_ context.Context, id string) (*model.Patient, error) {
	p, ok := r.f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return &p, nil
}

var day = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func apt(id, doctorID string, start time.Time, minutes int, t model.AppointmentType, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{
		ID:        id,
		PatientID: "pat-1",
		DoctorID:  doctorID,
		Type:      t,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Status:    status,
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appointments: []model.Appointment{
			apt("apt-3", "doc-1", at(14, 0), 60, model.AppointmentTypeProcedure, model.AppointmentStatusScheduled),
			apt("apt-1", "doc-1", at(9, 0), 30, model.AppointmentTypeCheckup, model.AppointmentStatusCompleted),
			apt("apt-2", "doc-1", at(9, 15), 30, model.AppointmentTypeConsultation, model.AppointmentStatusScheduled),
			apt("apt-4", "doc-1", day.AddDate(0, 0, 1).Add(9*time.Hour), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled),
			apt("apt-5", "doc-2", at(9, 0), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled),
			apt("apt-6", "doc-1", day.Add(23*time.Hour+59*time.Minute+59*time.Second+999*time.Millisecond), 1, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled),
		},
		doctors: map[string]model.Doctor{
			"doc-1": {ID: "doc-1", Name: "Sarah Chen", Specialty: model.SpecialtyCardiology},
		},
		patients: map[string]model.Patient{
			"pat-1": {ID: "pat-1", Name: "John Smith"},
		},
	}
}

func ids(apts []model.Appointment) []string {
	out := make([]string, len(apts))
	for i, a := range apts {
		out[i] = a.ID
	}
	return out
}

func TestAppointmentsByDoctorAndDate(t *testing.T) {
	svc := NewService(newFakeStore(), WithLocation(time.UTC))

	apts, err := svc.AppointmentsByDoctorAndDate(context.Background(), "doc-1", at(12, 0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apt-1", "apt-2", "apt-3", "apt-6"}, ids(apts))

	apts, err = svc.AppointmentsByDoctorAndDate(context.Background(), "doc-9", at(12, 0))
	require.NoError(t, err)
	assert.Empty(t, apts)
}

func TestAppointmentsByDoctorAndDateRange(t *testing.T) {
	svc := NewService(newFakeStore(), WithLocation(time.UTC))

	t.Run("bounds are inclusive", func(t *testing.T) {
		apts, err := svc.AppointmentsByDoctorAndDateRange(context.Background(), "doc-1", at(9, 0), at(14, 0))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"apt-1", "apt-2", "apt-3"}, ids(apts))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := svc.AppointmentsByDoctorAndDateRange(context.Background(), "doc-1", at(14, 0), at(9, 0))
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		store := newFakeStore()
		store.err = errors.New("connection reset")
		_, err := NewService(store).AppointmentsByDoctorAndDateRange(context.Background(), "doc-1", at(9, 0), at(14, 0))
		require.Error(t, err)
		assert.ErrorIs(t, err, store.err)
	})
}

func TestRangeQueriesAreMemoised(t *testing.T) {
	store := newFakeStore()
	m := metrics.NewNop()
	svc := NewService(store,
		WithCache(cache.NewMemoryCache(time.Minute, time.Minute), time.Minute),
		WithMetrics(m),
		WithLocation(time.UTC),
	)

	first, err := svc.AppointmentsByDoctorAndDate(context.Background(), "doc-1", day)
	require.NoError(t, err)
	second, err := svc.AppointmentsByDoctorAndDate(context.Background(), "doc-1", day)
	require.NoError(t, err)

	assert.Equal(t, 1, store.rangeCalls)
	assert.Equal(t, ids(first), ids(second))
	assert.True(t, first[0].StartTime.Equal(second[0].StartTime))
	assert.Equal(t, time.UTC, second[0].StartTime.Location())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues("memory")))
}

func TestTimesAreNormalisedToLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	svc := NewService(newFakeStore(), WithLocation(loc))

	apts, err := svc.AppointmentsByDoctor(context.Background(), "doc-1")
	require.NoError(t, err)
	for _, a := range apts {
		assert.Equal(t, loc, a.StartTime.Location())
		assert.Equal(t, loc, a.EndTime.Location())
	}
}

func TestList(t *testing.T) {
	svc := NewService(newFakeStore(), WithLocation(time.UTC))
	ctx := context.Background()

	t.Run("doctor is required", func(t *testing.T) {
		_, err := svc.List(ctx, model.AppointmentFilters{})
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	})

	t.Run("date query sorted by start", func(t *testing.T) {
		apts, err := svc.List(ctx, model.AppointmentFilters{DoctorID: "doc-1", Date: day})
		require.NoError(t, err)
		assert.Equal(t, []string{"apt-1", "apt-2", "apt-3", "apt-6"}, ids(apts))
	})

	t.Run("range takes precedence over date", func(t *testing.T) {
		apts, err := svc.List(ctx, model.AppointmentFilters{
			DoctorID:  "doc-1",
			Date:      day,
			StartDate: day.AddDate(0, 0, 1),
			EndDate:   day.AddDate(0, 0, 2),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"apt-4"}, ids(apts))
	})

	t.Run("type and status filters", func(t *testing.T) {
		apts, err := svc.List(ctx, model.AppointmentFilters{DoctorID: "doc-1", Type: model.AppointmentTypeCheckup, Status: model.AppointmentStatusScheduled})
		require.NoError(t, err)
		assert.Equal(t, []string{"apt-6", "apt-4"}, ids(apts))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.List(ctx, model.AppointmentFilters{DoctorID: "doc-1", Type: "surgery"})
		require.Error(t, err)
	})
}

func TestPopulate(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	populated := svc.Populate(ctx, apt("apt-1", "doc-1", at(9, 0), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled))
	require.NotNil(t, populated.Patient)
	require.NotNil(t, populated.Doctor)
	assert.Equal(t, "John Smith", populated.Patient.Name)
	assert.Equal(t, "Sarah Chen", populated.Doctor.Name)

	orphan := apt("apt-x", "doc-9", at(9, 0), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled)
	orphan.PatientID = "pat-9"
	populated = svc.Populate(ctx, orphan)
	assert.Nil(t, populated.Patient)
	assert.Nil(t, populated.Doctor)
}

func TestLookups(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	d, err := svc.DoctorByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Chen", d.Name)

	_, err = svc.DoctorByID(ctx, "doc-9")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.PatientByID(ctx, "pat-9")
	assert.True(t, apperrors.IsNotFound(err))

	patients := svc.PatientsFor(ctx, []model.Appointment{
		{PatientID: "pat-1"}, {PatientID: "pat-1"}, {PatientID: "pat-9"},
	})
	assert.Len(t, patients, 1)
	assert.Contains(t, patients, "pat-1")
}

func TestHelpers(t *testing.T) {
	a := apt("a", "doc-1", at(9, 0), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled)
	b := apt("b", "doc-1", at(9, 15), 30, model.AppointmentTypeCheckup, model.AppointmentStatusScheduled)
	c := apt("c", "doc-1", at(9, 30), 30, model.AppointmentTypeProcedure, model.AppointmentStatusCancelled)

	assert.True(t, CheckOverlap(a, b))
	assert.True(t, CheckOverlap(b, a))
	assert.False(t, CheckOverlap(a, c), "touching boundaries do not overlap")

	sorted := SortByTime([]model.Appointment{c, a, b})
	assert.Equal(t, []string{"a", "b", "c"}, ids(sorted))

	assert.Equal(t, []string{"c"}, ids(FilterByType([]model.Appointment{a, b, c}, model.AppointmentTypeProcedure)))
	assert.Equal(t, []string{"c"}, ids(FilterByStatus([]model.Appointment{a, b, c}, model.AppointmentStatusCancelled)))
	assert.Empty(t, FilterByStatus([]model.Appointment{a, b}, model.AppointmentStatusNoShow))
}
