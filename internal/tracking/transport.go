package tracking

import (
	"context"
	"errors"
	"time"
)

var ErrNotAuthorized = errors.New("location access not authorized")

// Authorization is the location permission status reported by the transport.
type Authorization int

const (
	AuthorizationNotDetermined Authorization = iota
	AuthorizationRestricted
	AuthorizationDenied
	AuthorizationAuthorized
)

func (a Authorization) String() string {
	switch a {
	case AuthorizationNotDetermined:
		return "not_determined"
	case AuthorizationRestricted:
		return "restricted"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Transport delivers location samples. The channel returned by Subscribe is
// closed when the transport has nothing more to deliver or ctx is done.
//go:generate mockgen -source=$GOFILE -destination=transport_mocks_test.go -package=tracking_test

type Transport interface {
	Authorization() Authorization
	Subscribe(ctx context.Context) (<-chan Sample, error)
}

// SliceTransport replays a fixed list of samples, e.g. decoded from an
// activity file. Interval, when set, is waited between two samples.
type SliceTransport struct {
	Samples  []Sample
	Status   Authorization
	Interval time.Duration
}

func NewSliceTransport(samples []Sample) *SliceTransport {
	return &SliceTransport{
		Samples: samples,
		Status:  AuthorizationAuthorized,
	}
}

func (t *SliceTransport) Authorization() Authorization {
	return t.Status
}

func (t *SliceTransport) Subscribe(ctx context.Context) (<-chan Sample, error) {
	if t.Status != AuthorizationAuthorized {
		return nil, ErrNotAuthorized
	}

	ch := make(chan Sample)
	go func() {
		defer close(ch)
		for i, s := range t.Samples {
			if i > 0 && t.Interval > 0 {
				timer := time.NewTimer(t.Interval)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- s:
			}
		}
	}()
	return ch, nil
}
