package activityfile

import (
	"fmt"
	"io"
	"math"

	"github.com/2beens/fittrack/internal/tracking"

	log "github.com/sirupsen/logrus"
	"github.com/tormoder/fit"
)

// DecodeFIT reads the record messages of a FIT activity. Records without a
// valid position (e.g. indoor or before a GPS fix) are skipped.
func DecodeFIT(r io.Reader) ([]tracking.Sample, error) {
	fitFile, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FIT file: %w", err)
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity from FIT: %w", err)
	}

	samples := samplesFromRecords(activity.Records)
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}

func samplesFromRecords(records []*fit.RecordMsg) []tracking.Sample {
	samples := make([]tracking.Sample, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if rec == nil || rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			skipped++
			continue
		}
		samples = append(samples, tracking.Sample{
			Latitude:  rec.PositionLat.Degrees(),
			Longitude: rec.PositionLong.Degrees(),
			Elevation: recordElevation(rec),
			Timestamp: rec.Timestamp,
		})
	}
	if skipped > 0 {
		log.Debugf("fit: skipped %d records without position", skipped)
	}
	return samples
}

func recordElevation(rec *fit.RecordMsg) *float64 {
	for _, alt := range []float64{rec.GetEnhancedAltitudeScaled(), rec.GetAltitudeScaled()} {
		if !math.IsNaN(alt) {
			return &alt
		}
	}
	return nil
}
