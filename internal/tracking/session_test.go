package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleAt(lat float64, ts time.Time) tracking.Sample {
	return tracking.Sample{Latitude: lat, Longitude: -122.0, Timestamp: ts}
}

func TestSession_Lifecycle(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	assert.Equal(t, tracking.StateReady, s.State())
	assert.Nil(t, s.Track())
	assert.Equal(t, time.Duration(0), s.Elapsed())

	require.NoError(t, s.Start())
	assert.Equal(t, tracking.StateTracking, s.State())
	assert.ErrorIs(t, s.Start(), tracking.ErrAlreadyActive)
	assert.ErrorIs(t, s.Resume(), tracking.ErrInvalidState)

	require.NoError(t, s.Pause())
	assert.Equal(t, tracking.StatePaused, s.State())
	assert.ErrorIs(t, s.Pause(), tracking.ErrInvalidState)

	require.NoError(t, s.Resume())
	assert.Equal(t, tracking.StateTracking, s.State())

	_, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, tracking.StateCompleted, s.State())
	assert.ErrorIs(t, s.Start(), tracking.ErrAlreadyActive)
	assert.ErrorIs(t, s.Pause(), tracking.ErrInvalidState)
	assert.ErrorIs(t, s.Resume(), tracking.ErrInvalidState)

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed after stop")
	}
}

func TestSession_StopBeforeStart(t *testing.T) {
	s := tracking.NewSession(tracking.SessionOptions{})
	_, err := s.Stop()
	assert.ErrorIs(t, err, tracking.ErrInvalidState)
	assert.Equal(t, tracking.StateReady, s.State())
}

func TestSession_DoubleStopKeepsFirstEndState(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	require.NoError(t, s.Start())

	t0 := clock.Now()
	for i := 1; i <= 3; i++ {
		clock.Advance(time.Minute)
		outcome, err := s.Ingest(sampleAt(37.0+float64(i)*0.001, t0.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		require.Equal(t, tracking.OutcomeAccepted, outcome)
	}

	first, err := s.Stop()
	require.NoError(t, err)
	end, ok := s.EndTime()
	require.True(t, ok)
	distance := s.Distance()
	points := s.Track().Len()

	clock.Advance(10 * time.Minute)
	_, err = s.Stop()
	assert.ErrorIs(t, err, tracking.ErrInvalidState)

	end2, ok := s.EndTime()
	require.True(t, ok)
	assert.Equal(t, end, end2)
	assert.Equal(t, distance, s.Distance())
	assert.Equal(t, points, s.Track().Len())
	trackEnd, sealed := s.Track().EndTime()
	assert.True(t, sealed)
	assert.Equal(t, end, trackEnd)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, first, summary)
	assert.Equal(t, 3*time.Minute, summary.Duration)
}

func TestSession_EndTimeIsStopTime(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	require.NoError(t, s.Start())
	start := clock.Now()

	clock.Advance(5 * time.Minute)
	require.NoError(t, s.Pause())
	clock.Advance(2 * time.Minute)

	_, err := s.Stop()
	require.NoError(t, err)

	end, ok := s.EndTime()
	require.True(t, ok)
	assert.Equal(t, start.Add(7*time.Minute), end)
	assert.Equal(t, 5*time.Minute, s.Elapsed())
	assert.Equal(t, 2*time.Minute, s.PausedDuration())
}

func TestSession_PausesReduceElapsedByTotalPauseSpan(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10} {
		clock := newFakeClock()
		s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
		require.NoError(t, s.Start())

		total := 60 * time.Minute
		pause := total / time.Duration(4*n)
		var paused time.Duration
		for i := 0; i < n; i++ {
			clock.Advance(total/time.Duration(n) - 2*pause)
			require.NoError(t, s.Pause())
			clock.Advance(2 * pause)
			paused += 2 * pause
			require.NoError(t, s.Resume())
		}

		_, err := s.Stop()
		require.NoError(t, err)
		assert.Equal(t, paused, s.PausedDuration(), "n=%d", n)
		assert.Equal(t, total-paused, s.Elapsed(), "n=%d", n)
		assert.Equal(t, 30*time.Minute, paused, "n=%d", n)
	}
}

func TestSession_ElapsedWithOpenPause(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	require.NoError(t, s.Start())

	clock.Advance(10 * time.Minute)
	require.NoError(t, s.Pause())
	clock.Advance(3 * time.Minute)

	assert.Equal(t, 10*time.Minute, s.Elapsed())
	assert.Equal(t, 3*time.Minute, s.PausedDuration())

	clock.Advance(time.Minute)
	assert.Equal(t, 10*time.Minute, s.Elapsed())
}

func TestSession_IngestByState(t *testing.T) {
	clock := newFakeClock()
	var outcomes []tracking.Outcome
	s := tracking.NewSession(tracking.SessionOptions{
		Clock:    clock.Now,
		OnSample: func(o tracking.Outcome) { outcomes = append(outcomes, o) },
	})
	t0 := clock.Now()

	outcome, err := s.Ingest(sampleAt(37.0, t0))
	require.NoError(t, err)
	assert.Equal(t, tracking.OutcomeIgnored, outcome)

	require.NoError(t, s.Start())
	outcome, err = s.Ingest(sampleAt(37.0, t0))
	require.NoError(t, err)
	assert.Equal(t, tracking.OutcomeAccepted, outcome)

	require.NoError(t, s.Pause())
	outcome, err = s.Ingest(sampleAt(37.5, t0.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, tracking.OutcomeIgnored, outcome)
	assert.Equal(t, 0.0, s.Distance())
	assert.Equal(t, 1, s.Track().Len())

	require.NoError(t, s.Resume())
	outcome, err = s.Ingest(tracking.Sample{Latitude: 95, Longitude: 0, Timestamp: t0})
	assert.ErrorIs(t, err, tracking.ErrInvalidSample)
	assert.Equal(t, tracking.OutcomeRejected, outcome)

	outcome, err = s.Ingest(sampleAt(37.001, t0.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, tracking.OutcomeAccepted, outcome)

	_, err = s.Stop()
	require.NoError(t, err)
	outcome, err = s.Ingest(sampleAt(37.002, t0.Add(3*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, tracking.OutcomeDiscarded, outcome)

	assert.Equal(t, 2, s.Track().Len())
	assert.Equal(t, []tracking.Outcome{
		tracking.OutcomeIgnored,
		tracking.OutcomeAccepted,
		tracking.OutcomeIgnored,
		tracking.OutcomeRejected,
		tracking.OutcomeAccepted,
		tracking.OutcomeDiscarded,
	}, outcomes)
}

func TestSession_SequenceAssignedOnAcceptance(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	require.NoError(t, s.Start())
	t0 := clock.Now()

	// jittery transport: later timestamps first, identical timestamps
	for _, sample := range []tracking.Sample{
		sampleAt(37.002, t0.Add(2*time.Minute)),
		sampleAt(37.000, t0),
		sampleAt(37.001, t0),
		{Latitude: 37.003, Longitude: -122.0},
	} {
		outcome, err := s.Ingest(sample)
		require.NoError(t, err)
		require.Equal(t, tracking.OutcomeAccepted, outcome)
	}

	points := s.Track().Points()
	require.Len(t, points, 4)
	for i, p := range points {
		assert.Equal(t, i+1, p.Sequence)
	}
	// zero timestamp takes the clock
	assert.Equal(t, t0, points[3].Timestamp)
}

func TestSession_RunStopsOnStop(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})
	require.NoError(t, s.Start())

	samples := make(chan tracking.Sample)
	runErr := make(chan error, 1)
	go func() {
		runErr <- s.Run(context.Background(), samples)
	}()

	t0 := clock.Now()
	for i := 0; i < 5; i++ {
		samples <- sampleAt(37.0+float64(i)*0.001, t0.Add(time.Duration(i)*time.Second))
	}

	_, err := s.Stop()
	require.NoError(t, err)

	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after stop")
	}
	assert.Equal(t, 5, s.Track().Len())
}

func TestSession_RunContextCancelled(t *testing.T) {
	s := tracking.NewSession(tracking.SessionOptions{})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx, make(chan tracking.Sample))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_ConcurrentIngestAndReads(t *testing.T) {
	s := tracking.NewSession(tracking.SessionOptions{})
	require.NoError(t, s.Start())

	var wg sync.WaitGroup
	t0 := time.Now()
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := s.Ingest(sampleAt(37.0+float64(w*50+i)*0.0001, t0.Add(time.Duration(i)*time.Second)))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = s.Status()
			_ = s.Track().Points()
		}
	}()
	wg.Wait()

	points := s.Track().Points()
	require.Len(t, points, 200)
	for i, p := range points {
		assert.Equal(t, i+1, p.Sequence)
	}
}

func TestSession_Status(t *testing.T) {
	clock := newFakeClock()
	s := tracking.NewSession(tracking.SessionOptions{Clock: clock.Now})

	status := s.Status()
	assert.Equal(t, "ready", status.State)
	assert.Nil(t, status.StartTime)

	require.NoError(t, s.Start())
	_, err := s.Ingest(sampleAt(37.0, clock.Now()))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = s.Ingest(sampleAt(37.001, clock.Now()))
	require.NoError(t, err)

	status = s.Status()
	assert.Equal(t, "tracking", status.State)
	assert.Equal(t, 2, status.Points)
	assert.InDelta(t, 0.1112, status.Distance, 1e-3)
	assert.Equal(t, time.Minute, status.Elapsed)
	assert.Nil(t, status.Summary)

	_, err = s.Stop()
	require.NoError(t, err)
	status = s.Status()
	assert.Equal(t, "completed", status.State)
	require.NotNil(t, status.EndTime)
	require.NotNil(t, status.Summary)
	assert.InDelta(t, 0.1112, status.Summary.Distance, 1e-3)
}

func TestSession_CompletedAlwaysHasSummary(t *testing.T) {
	s := tracking.NewSession(tracking.SessionOptions{})
	require.NoError(t, s.Start())

	t0 := time.Now()
	for i := 0; i < 20000; i++ {
		_, err := s.Ingest(sampleAt(37.0+float64(i)*0.00001, t0.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	stopped := make(chan error, 1)
	go func() {
		_, err := s.Stop()
		stopped <- err
	}()

	missing := 0
	for {
		if s.State() == tracking.StateCompleted {
			if _, err := s.Summary(); err != nil {
				missing++
			}
			if st := s.Status(); st.Summary == nil {
				missing++
			}
		}
		select {
		case err := <-stopped:
			require.NoError(t, err)
			assert.Zero(t, missing, "completed session observed without a summary")
			return
		default:
		}
	}
}
