package activityfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/2beens/fittrack/internal/tracking"
)

type gpxFile struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat       float64   `xml:"lat,attr"`
	Lon       float64   `xml:"lon,attr"`
	Elevation *float64  `xml:"ele"`
	Time      time.Time `xml:"time"`
}

// DecodeGPX flattens all track segments into one sample stream, in file order.
// Points without time get a zero timestamp and are stamped on ingest.
func DecodeGPX(r io.Reader) ([]tracking.Sample, error) {
	var doc gpxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode gpx: %w", err)
	}

	samples := make([]tracking.Sample, 0)
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				samples = append(samples, tracking.Sample{
					Latitude:  p.Lat,
					Longitude: p.Lon,
					Elevation: p.Elevation,
					Timestamp: p.Time,
				})
			}
		}
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	return samples, nil
}
