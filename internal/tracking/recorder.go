package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var ErrNoSession = errors.New("no current session")

// CompletionHook is called with every session the recorder stops, after the
// cardio summary is derived.
type CompletionHook func(ctx context.Context, session *Session) error

type RecorderParams struct {
	Clock          Clock
	CardioOptions  cardio.Options
	Transport      Transport
	MetricsManager *metrics.Manager
	OnComplete     []CompletionHook
}

// Recorder owns the current session of the device. At most one session is
// active (ready, tracking or paused) at a time; a completed one stays current
// until it is discarded or a new one is started.
type Recorder struct {
	mu sync.Mutex

	clock          Clock
	cardioOptions  cardio.Options
	transport      Transport
	metricsManager *metrics.Manager
	onComplete     []CompletionHook

	current    *Session
	pumpCancel context.CancelFunc
	pumpDone   chan struct{}
}

func NewRecorder(params RecorderParams) *Recorder {
	metricsManager := params.MetricsManager
	if metricsManager == nil {
		// unregistered, keeps the recorder usable without a metrics endpoint
		metricsManager = metrics.NewManager("fittrack", "tracking", prometheus.NewRegistry())
	}
	return &Recorder{
		clock:          params.Clock,
		cardioOptions:  params.CardioOptions,
		transport:      params.Transport,
		metricsManager: metricsManager,
		onComplete:     params.OnComplete,
	}
}

// OnComplete registers another completion hook.
func (r *Recorder) OnComplete(hook CompletionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onComplete = append(r.onComplete, hook)
}

// Start creates and starts a new session. When a transport is configured, it
// must be authorized; its samples are then pumped into the session until stop.
func (r *Recorder) Start(templateID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.State().Active() {
		return nil, fmt.Errorf("%w: session %s", ErrAlreadyActive, r.current.ID())
	}

	if r.transport != nil {
		if auth := r.transport.Authorization(); auth != AuthorizationAuthorized {
			log.Warnf("session start refused, location authorization: %s", auth)
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, auth)
		}
	}

	session := NewSession(SessionOptions{
		TemplateID: templateID,
		Clock:      r.clock,
		Cardio:     r.cardioOptions,
		OnSample: func(o Outcome) {
			r.metricsManager.CounterSamples.WithLabelValues(o.String()).Inc()
		},
	})
	if err := session.Start(); err != nil {
		return nil, err
	}

	if r.transport != nil {
		pumpCtx, cancel := context.WithCancel(context.Background())
		samples, err := r.transport.Subscribe(pumpCtx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("subscribe to location transport: %w", err)
		}
		r.pumpCancel = cancel
		r.pumpDone = make(chan struct{})
		go func(done chan struct{}) {
			defer close(done)
			if err := session.Run(pumpCtx, samples); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("session %s sample pump: %s", session.ID(), err)
			}
		}(r.pumpDone)
	}

	r.current = session
	r.metricsManager.CounterSessionEvents.WithLabelValues("start").Inc()
	r.metricsManager.GaugeActiveSessions.Inc()
	log.Infof("session %s [%s] started", session.ID(), templateID)
	return session, nil
}

func (r *Recorder) Current() (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != nil
}

func (r *Recorder) Pause() error {
	session, err := r.currentSession()
	if err != nil {
		return err
	}
	if err := session.Pause(); err != nil {
		return err
	}
	r.metricsManager.CounterSessionEvents.WithLabelValues("pause").Inc()
	log.Debugf("session %s paused", session.ID())
	return nil
}

func (r *Recorder) Resume() error {
	session, err := r.currentSession()
	if err != nil {
		return err
	}
	if err := session.Resume(); err != nil {
		return err
	}
	r.metricsManager.CounterSessionEvents.WithLabelValues("resume").Inc()
	log.Debugf("session %s resumed", session.ID())
	return nil
}

// Ingest delivers a sample to the current session.
func (r *Recorder) Ingest(sample Sample) (Outcome, error) {
	session, err := r.currentSession()
	if err != nil {
		return OutcomeDiscarded, err
	}
	return session.Ingest(sample)
}

// Stop completes the current session and runs the completion hooks. The
// session stays completed even when a hook fails; hook errors are returned
// combined, next to the stopped session.
func (r *Recorder) Stop(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	session := r.current
	if session == nil {
		r.mu.Unlock()
		return nil, ErrNoSession
	}
	if _, err := session.Stop(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.stopPump()
	hooks := append([]CompletionHook(nil), r.onComplete...)
	r.mu.Unlock()

	r.metricsManager.CounterSessionEvents.WithLabelValues("stop").Inc()
	r.metricsManager.GaugeActiveSessions.Dec()
	r.metricsManager.HistogramRouteDistance.Observe(session.Distance())
	log.Infof("session %s stopped: %.3f km in %s", session.ID(), session.Distance(), session.Elapsed())

	var hooksErr error
	for _, hook := range hooks {
		if err := hook(ctx, session); err != nil {
			log.Errorf("session %s completion hook: %s", session.ID(), err)
			hooksErr = multierr.Append(hooksErr, err)
		}
	}

	return session, hooksErr
}

// Discard drops the current session once it is completed.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return ErrNoSession
	}
	if state := r.current.State(); state != StateCompleted {
		return fmt.Errorf("%w: discard from %s", ErrInvalidState, state)
	}

	log.Debugf("session %s discarded", r.current.ID())
	r.current = nil
	return nil
}

// PumpDone is closed when the transport stream of the current session ends.
// It returns nil when no transport is pumping.
func (r *Recorder) PumpDone() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pumpDone
}

func (r *Recorder) stopPump() {
	if r.pumpCancel == nil {
		return
	}
	r.pumpCancel()
	<-r.pumpDone
	r.pumpCancel = nil
}

func (r *Recorder) currentSession() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, ErrNoSession
	}
	return r.current, nil
}
