// Package fetch keeps a doctor's appointments in sync with the selected
// doctor and dates. At most one fetch is in flight; changing the parameters
// cancels it and only the newest generation is ever committed.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

// Source is the data service a Fetcher reads from
type Source interface {
	AppointmentsByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]model.Appointment, error)
	AppointmentsByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error)
	DoctorByID(ctx context.Context, id string) (*model.Doctor, error)
}

// State is a snapshot of a Fetcher
type State struct {
	Params       Params
	Appointments []model.Appointment
	Doctor       *model.Doctor
	Loading      bool
	Err          error
	Generation   uint64
	RequestID    string
}

func (s State) clone() State {
	if s.Appointments != nil {
		apts := make([]model.Appointment, len(s.Appointments))
		copy(apts, s.Appointments)
		s.Appointments = apts
	}
	return s
}

type Option func(*Fetcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithTimeout bounds every fetch; zero means no limit
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

type Fetcher struct {
	src     Source
	metrics *metrics.Metrics
	logger  *logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	settled chan struct{}
	subs    map[int]chan State
	nextSub int
	closed  bool
	wg      sync.WaitGroup

	docMu   sync.Mutex
	doctors map[string]*model.Doctor
}

// New returns an idle Fetcher
func New(src Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:     src,
		logger:  logger.Nop(),
		settled: make(chan struct{}),
		subs:    make(map[int]chan State),
		doctors: make(map[string]*model.Doctor),
	}
	close(f.settled)
	for _, opt := range opts {
		opt(f)
	}
	if f.metrics == nil {
		f.metrics = metrics.NewNop()
	}
	return f
}

// Set switches to params. Identical params leave the current state alone.
func (f *Fetcher) Set(params Params) {
	doctor := f.lookupDoctor(params.DoctorID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || params.Equal(f.state.Params) {
		return
	}
	f.start(params, doctor)
}

// Refresh refetches the current params
func (f *Fetcher) Refresh() {
	f.mu.Lock()
	params := f.state.Params
	f.mu.Unlock()

	doctor := f.lookupDoctor(params.DoctorID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.start(f.state.Params, doctor)
}

func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Subscribe delivers the current state followed by every later change.
// Slow subscribers only see the latest state. The returned func
// unsubscribes.
func (f *Fetcher) Subscribe() (<-chan State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan State, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	ch <- f.state.clone()

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
}

// Wait blocks until the current fetch settles and returns the state
func (f *Fetcher) Wait(ctx context.Context) (State, error) {
	f.mu.Lock()
	settled := f.settled
	f.mu.Unlock()

	select {
	case <-settled:
		return f.State(), nil
	case <-ctx.Done():
		return f.State(), ctx.Err()
	}
}

// Close cancels any in-flight fetch and closes all subscriptions
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.markSettled()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	f.mu.Unlock()

	f.wg.Wait()
}

// start must be called with f.mu held
func (f *Fetcher) start(params Params, doctor *model.Doctor) {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}

	f.state = State{
		Params:     params,
		Doctor:     doctor,
		Generation: f.state.Generation + 1,
		RequestID:  uuid.NewString(),
	}

	err := params.Validate()
	switch {
	case params.Idle():
	case err != nil:
		f.state.Err = err
	default:
		f.state.Loading = true
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if f.timeout > 0 {
			ctx, cancel = context.WithTimeout(context.Background(), f.timeout)
		} else {
			ctx, cancel = context.WithCancel(context.Background())
		}
		f.cancel = cancel
		f.wg.Add(1)
		go f.run(ctx, cancel, f.state.Generation, f.state.RequestID, params)
	}

	if f.state.Loading {
		f.markLoading()
	} else {
		f.markSettled()
	}
	f.publish()
}

func (f *Fetcher) run(ctx context.Context, cancel context.CancelFunc, gen uint64, requestID string, params Params) {
	defer f.wg.Done()
	defer cancel()

	log := f.logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"doctor_id":  params.DoctorID,
		"generation": gen,
	})
	log.Debug("Fetching appointments")

	apts, err := f.fetch(ctx, params)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.state.Generation {
		f.metrics.FetchSuperseded.Inc()
		log.Debug("Discarding superseded fetch")
		return
	}

	f.cancel = nil
	f.state.Loading = false
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("Appointment fetch timed out")
		} else {
			log.Error(err, "Appointment fetch failed")
		}
		f.state.Err = err
		f.state.Appointments = nil
	} else {
		f.state.Appointments = calendar.SortByStart(apts)
	}
	f.markSettled()
	f.publish()
}

func (f *Fetcher) fetch(ctx context.Context, params Params) ([]model.Appointment, error) {
	if params.HasRange() {
		return f.src.AppointmentsByDoctorAndDateRange(ctx, params.DoctorID, params.StartDate, params.EndDate)
	}
	return f.src.AppointmentsByDoctorAndDate(ctx, params.DoctorID, params.Date)
}

// lookupDoctor resolves and memoises the doctor record. Unknown doctors
// resolve to nil.
func (f *Fetcher) lookupDoctor(id string) *model.Doctor {
	if id == "" {
		return nil
	}

	f.docMu.Lock()
	defer f.docMu.Unlock()
	if d, ok := f.doctors[id]; ok {
		return d
	}

	ctx := context.Background()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	d, err := f.src.DoctorByID(ctx, id)
	if err != nil {
		f.logger.Warn("Doctor lookup failed", "doctor_id", id, "error", err.Error())
		return nil
	}
	f.doctors[id] = d
	return d
}

func (f *Fetcher) markLoading() {
	select {
	case <-f.settled:
		f.settled = make(chan struct{})
	default:
	}
}

func (f *Fetcher) markSettled() {
	select {
	case <-f.settled:
	default:
		close(f.settled)
	}
}

func (f *Fetcher) publish() {
	snapshot := f.state.clone()
	for _, ch := range f.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
