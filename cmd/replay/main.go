// Command replay feeds a recorded GPX or FIT activity through a tracking
// session and prints the derived cardio workout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/activityfile"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/templates"
	"github.com/2beens/fittrack/internal/tracking"
	"github.com/2beens/fittrack/internal/workouts"

	log "github.com/sirupsen/logrus"
)

// replayClock reports the time of the recorded activity instead of the wall clock.
type replayClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *replayClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *replayClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func main() {
	filePath := flag.String("file", "", "GPX or FIT activity file to replay")
	templateID := flag.String("template", "run", "workout template id")
	splitUnit := flag.String("split", "mi", "split unit [mi | km]")
	bestEffortKm := flag.Float64("best-effort", 0, "best effort distance in km (0 for default)")
	skipMissingElevation := flag.Bool("skip-missing-elevation", false, "skip points without elevation instead of treating them as 0 m")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
	})

	if *filePath == "" {
		log.Fatalln("activity file not specified, use -file")
	}

	cfg := &config.Config{
		SplitUnit:            *splitUnit,
		BestEffortKm:         *bestEffortKm,
		SkipMissingElevation: *skipMissingElevation,
		Storage:              "memory",
		BestCache:            "memory",
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid options: %s", err)
	}

	samples, err := activityfile.Open(*filePath)
	if err != nil {
		log.Fatalf("open activity file: %s", err)
	}
	log.Debugf("decoded %d samples from %s", len(samples), *filePath)

	result, err := replay(context.Background(), *templateID, samples, cfg)
	if err != nil {
		log.Fatalf("replay: %s", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("encode result: %s", err)
	}
}

func replay(ctx context.Context, templateID string, samples []tracking.Sample, cfg *config.Config) (*workouts.CardioResult, error) {
	if len(samples) == 0 {
		return nil, activityfile.ErrNoSamples
	}

	clock := &replayClock{}
	clock.Set(samples[0].Timestamp)

	recorder := tracking.NewRecorder(tracking.RecorderParams{
		Clock:         clock.Now,
		CardioOptions: cfg.CardioOptions(),
		Transport:     tracking.NewSliceTransport(samples),
	})
	ledger := progress.NewLedger(progress.NewMemoryStore(), progress.NewMemoryBestCache(0), nil)
	service := workouts.NewService(workouts.NewMemoryRepo(), ledger, templates.NewMemoryRepo(), nil)

	if _, err := recorder.Start(templateID); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	select {
	case <-recorder.PumpDone():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	clock.Set(samples[len(samples)-1].Timestamp)
	session, err := recorder.Stop(ctx)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}

	return service.FinishCardio(ctx, session)
}
