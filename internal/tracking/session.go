package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/route"

	"github.com/google/uuid"
)

var (
	ErrInvalidState  = errors.New("invalid session state")
	ErrAlreadyActive = errors.New("session already active")
	ErrInvalidSample = errors.New("invalid location sample")
)

type State int

const (
	StateReady State = iota
	StateTracking
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateTracking:
		return "tracking"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether the session is holding the device, i.e. is not completed.
func (s State) Active() bool {
	return s != StateCompleted
}

// Sample is one location fix as delivered by the transport.
type Sample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Elevation *float64  `json:"elevation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s Sample) validate() error {
	if math.IsNaN(s.Latitude) || math.IsNaN(s.Longitude) ||
		s.Latitude < -90 || s.Latitude > 90 ||
		s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: lat %f, lon %f", ErrInvalidSample, s.Latitude, s.Longitude)
	}
	return nil
}

// Outcome tells what happened to an ingested sample.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	// OutcomeIgnored is a sample delivered while not tracking (ready or paused).
	OutcomeIgnored
	// OutcomeDiscarded is a sample arriving after stop.
	OutcomeDiscarded
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Clock func() time.Time

type SessionOptions struct {
	// TemplateID is the exercise template the recording is filed under.
	TemplateID string
	Clock      Clock
	Cardio     cardio.Options
	// OnSample, when set, observes the outcome of every ingested sample.
	OnSample func(Outcome)
}

// Session is the state machine of one cardio recording:
//
//	ready --Start--> tracking --Pause--> paused --Resume--> tracking
//	tracking|paused --Stop--> completed
//
// All mutation happens under the session lock, so a session can be fed from
// a transport goroutine while it is read from elsewhere.
type Session struct {
	mu sync.RWMutex

	id         uuid.UUID
	templateID string
	clock      Clock
	opts       cardio.Options
	onSample   func(Outcome)

	state          State
	track          *route.Track
	startTime      time.Time
	endTime        time.Time
	totalPaused    time.Duration
	lastPauseStart *time.Time
	lastSequence   int

	done      chan struct{}
	summary   *cardio.Summary
	deriveErr error
}

func NewSession(opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Cardio.SplitKm <= 0 || opts.Cardio.BestEffortKm <= 0 {
		elevation := opts.Cardio.Elevation
		opts.Cardio = cardio.DefaultOptions()
		opts.Cardio.Elevation = elevation
	}
	return &Session{
		id:         uuid.New(),
		templateID: opts.TemplateID,
		clock:      opts.Clock,
		opts:       opts.Cardio,
		onSample:   opts.OnSample,
		state:      StateReady,
		done:       make(chan struct{}),
	}
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("%w: session in state %s", ErrAlreadyActive, s.state)
	}

	s.startTime = s.clock()
	s.track = route.NewTrackWithID(s.id, s.startTime)
	s.state = StateTracking
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking {
		return fmt.Errorf("%w: pause from %s", ErrInvalidState, s.state)
	}

	now := s.clock()
	s.lastPauseStart = &now
	s.state = StatePaused
	return nil
}

func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidState, s.state)
	}

	s.closePause(s.clock())
	s.state = StateTracking
	return nil
}

// Stop completes the session: the open pause (if any) is folded into the paused
// total, the track is sealed with end time now and the cardio summary is derived.
// Samples arriving afterwards are discarded.
func (s *Session) Stop() (cardio.Summary, error) {
	s.mu.Lock()
	if s.state != StateTracking && s.state != StatePaused {
		state := s.state
		s.mu.Unlock()
		return cardio.Summary{}, fmt.Errorf("%w: stop from %s", ErrInvalidState, state)
	}

	now := s.clock()
	if s.state == StatePaused {
		s.closePause(now)
	}
	if err := s.track.Seal(now); err != nil {
		s.mu.Unlock()
		return cardio.Summary{}, fmt.Errorf("seal track: %w", err)
	}
	s.endTime = now

	// summary is in place before completed is visible to readers
	summary, err := cardio.Derive(s.track, s.elapsedUntil(now), s.opts)
	if err != nil {
		s.deriveErr = err
	} else {
		s.summary = &summary
	}
	s.state = StateCompleted
	close(s.done)
	s.mu.Unlock()

	return s.Summary()
}

func (s *Session) closePause(now time.Time) {
	if s.lastPauseStart != nil {
		s.totalPaused += now.Sub(*s.lastPauseStart)
		s.lastPauseStart = nil
	}
}

// Ingest delivers one sample. Only a tracking session appends it to the route,
// with the next sequence number assigned here, never taken from the sample.
func (s *Session) Ingest(sample Sample) (outcome Outcome, err error) {
	defer func() {
		if s.onSample != nil {
			s.onSample(outcome)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateReady, StatePaused:
		return OutcomeIgnored, nil
	case StateCompleted:
		return OutcomeDiscarded, nil
	}

	if err := sample.validate(); err != nil {
		return OutcomeRejected, err
	}
	ts := sample.Timestamp
	if ts.IsZero() {
		ts = s.clock()
	}

	point := route.GeoPoint{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Elevation: sample.Elevation,
		Timestamp: ts,
		Sequence:  s.lastSequence + 1,
	}
	if err := s.track.Append(point); err != nil {
		return OutcomeRejected, err
	}
	s.lastSequence = point.Sequence
	return OutcomeAccepted, nil
}

// Run pumps samples into the session until the channel is closed, the context
// is done or the session is stopped. It never holds up Stop.
func (s *Session) Run(ctx context.Context, samples <-chan Sample) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			// rejected samples are counted by the observer, the stream goes on
			_, _ = s.Ingest(sample)
		}
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) TemplateID() string {
	return s.templateID
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Track returns the live route, nil before Start. Reads on it are safe while
// the session keeps appending.
func (s *Session) Track() *route.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track
}

func (s *Session) Distance() float64 {
	track := s.Track()
	if track == nil {
		return 0
	}
	return track.Distance()
}

func (s *Session) StartTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startTime
}

func (s *Session) EndTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endTime, s.state == StateCompleted
}

// Elapsed is the active duration: wall time since start minus every pause,
// including a pause that is still open.
func (s *Session) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case StateReady:
		return 0
	case StateCompleted:
		return s.elapsedUntil(s.endTime)
	default:
		return s.elapsedUntil(s.clock())
	}
}

// elapsedUntil expects the lock held.
func (s *Session) elapsedUntil(end time.Time) time.Duration {
	elapsed := end.Sub(s.startTime) - s.totalPaused
	if s.lastPauseStart != nil {
		elapsed -= end.Sub(*s.lastPauseStart)
	}
	return max(elapsed, 0)
}

func (s *Session) PausedDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paused := s.totalPaused
	if s.lastPauseStart != nil {
		paused += s.clock().Sub(*s.lastPauseStart)
	}
	return paused
}

// Summary returns the cardio summary derived on stop.
func (s *Session) Summary() (cardio.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deriveErr != nil {
		return cardio.Summary{}, s.deriveErr
	}
	if s.summary == nil {
		return cardio.Summary{}, fmt.Errorf("%w: no summary in state %s", ErrInvalidState, s.state)
	}
	return *s.summary, nil
}

// Done is closed when the session completes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

type Status struct {
	ID             uuid.UUID       `json:"id"`
	TemplateID     string          `json:"templateId"`
	State          string          `json:"state"`
	StartTime      *time.Time      `json:"startTime,omitempty"`
	EndTime        *time.Time      `json:"endTime,omitempty"`
	Elapsed        time.Duration   `json:"elapsed"`
	PausedDuration time.Duration   `json:"pausedDuration"`
	Distance       float64         `json:"distance"`
	Points         int             `json:"points"`
	Summary        *cardio.Summary `json:"summary,omitempty"`
}

// Status is a read-only view of the session for presentation.
func (s *Session) Status() Status {
	status := Status{
		ID:             s.id,
		TemplateID:     s.templateID,
		State:          s.State().String(),
		Elapsed:        s.Elapsed(),
		PausedDuration: s.PausedDuration(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.track != nil {
		start := s.startTime
		status.StartTime = &start
		status.Distance = s.track.Distance()
		status.Points = s.track.Len()
	}
	if s.state == StateCompleted {
		end := s.endTime
		status.EndTime = &end
	}
	status.Summary = s.summary
	return status
}
