// Package activityfile reads recorded activities (GPX and FIT) into location
// samples, so they can be replayed through a tracking session.
package activityfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/fittrack/internal/tracking"
)

var (
	ErrUnknownFormat = errors.New("unknown activity file format")
	ErrNoSamples     = errors.New("activity file has no location samples")
)

type Format string

const (
	FormatGPX Format = "gpx"
	FormatFIT Format = "fit"
)

func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return FormatGPX, nil
	case ".fit":
		return FormatFIT, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Open decodes the activity file at path, picking the decoder by extension.
func Open(path string) ([]tracking.Sample, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Decode(format, file)
}

func Decode(format Format, r io.Reader) ([]tracking.Sample, error) {
	switch format {
	case FormatGPX:
		return DecodeGPX(r)
	case FormatFIT:
		return DecodeFIT(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
