package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

var day = time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

func apt(id string, start time.Time, minutes int) model.Appointment {
	return model.Appointment{
		ID:        id,
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Type:      model.AppointmentTypeCheckup,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Status:    model.AppointmentStatusScheduled,
	}
}

func newStore(t *testing.T, opts Options, apts ...model.Appointment) *Store {
	t.Helper()
	s, err := New(Dataset{
		Doctors:      []model.Doctor{{ID: "doc-1", Name: "Sarah Chen"}},
		Patients:     []model.Patient{{ID: "pat-1", Name: "John Smith"}},
		Appointments: apts,
	}, opts)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		data Dataset
		want string
	}{
		{
			name: "end before start",
			data: Dataset{Appointments: []model.Appointment{apt("a", day.Add(time.Hour), -30)}},
			want: "invalid fixture",
		},
		{
			name: "zero length",
			data: Dataset{Appointments: []model.Appointment{apt("a", day, 0)}},
			want: "invalid fixture",
		},
		{
			name: "duplicate appointment",
			data: Dataset{Appointments: []model.Appointment{apt("a", day, 30), apt("a", day, 30)}},
			want: "duplicate appointment ID a",
		},
		{
			name: "duplicate doctor",
			data: Dataset{Doctors: []model.Doctor{{ID: "doc-1"}, {ID: "doc-1"}}},
			want: "duplicate doctor ID doc-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.data, Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestListByDoctorAndDateBounds(t *testing.T) {
	s := newStore(t, Options{},
		apt("midnight", day, 30),
		apt("last", day.Add(24*time.Hour-time.Millisecond), 30),
		apt("next-day", day.Add(24*time.Hour), 30),
		apt("prev-day", day.Add(-time.Millisecond), 30),
	)

	got, err := s.Appointments().ListByDoctorAndDate(context.Background(), "doc-1", day.Add(13*time.Hour))
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"midnight", "last"}, ids)
}

func TestListByDoctorAndDateRangeInclusive(t *testing.T) {
	s := newStore(t, Options{},
		apt("a", day.Add(9*time.Hour), 30),
		apt("b", day.Add(10*time.Hour), 30),
		apt("c", day.Add(11*time.Hour), 30),
	)

	got, err := s.Appointments().ListByDoctorAndDateRange(context.Background(), "doc-1",
		day.Add(9*time.Hour), day.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	none, err := s.Appointments().ListByDoctorAndDateRange(context.Background(), "doc-2", day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLatencyHonoursCancellation(t *testing.T) {
	s := newStore(t, Options{Latency: time.Hour}, apt("a", day, 30))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Appointments().ListByDoctor(ctx, "doc-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLatencyDelaysQueries(t *testing.T) {
	s := newStore(t, Options{Latency: 20 * time.Millisecond}, apt("a", day, 30))

	start := time.Now()
	got, err := s.Appointments().ListByDoctor(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNotFound(t *testing.T) {
	s := newStore(t, Options{})
	ctx := context.Background()

	_, err := s.Doctors().Get(ctx, "doc-9")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Patients().Get(ctx, "pat-9")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Appointments().Get(ctx, "apt-9")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFixtures(t *testing.T) {
	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	s, err := NewWithFixtures(ref, Options{})
	require.NoError(t, err)
	ctx := context.Background()

	doctors, err := s.Doctors().List(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 5)
	assert.Equal(t, "doc-1", doctors[0].ID)

	start := calendar.WeekStart(ref)
	week, err := s.Appointments().ListByDoctorAndDateRange(ctx, "doc-1", start, calendar.WeekEnd(start))
	require.NoError(t, err)
	require.NotEmpty(t, week)

	overlapping := 0
	for i := range week {
		_, err := s.Patients().Get(ctx, week[i].PatientID)
		require.NoError(t, err)
		for j := i + 1; j < len(week); j++ {
			if calendar.Overlaps(week[i].StartTime, week[i].EndTime, week[j].StartTime, week[j].EndTime) {
				overlapping++
			}
		}
	}
	assert.Positive(t, overlapping)
}
