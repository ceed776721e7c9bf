package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/motofix/fieldops/core/logger"
)

// ErrorKind is the closed set of positioning failure classes.
type ErrorKind int

const (
	PermissionDenied ErrorKind = iota
	Unavailable
	Timeout
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case Unavailable:
		return "unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// SourceError is a transport failure surfaced by the positioning source.
type SourceError struct {
	Kind    ErrorKind
	Message string
}

func (e SourceError) Error() string {
	return fmt.Sprintf("sampler: %s: %s", e.Kind, e.Message)
}

// Position is one reading from the positioning source.
type Position struct {
	Lat      float64
	Lng      float64
	Accuracy float64
	At       time.Time
}

// Options configures a single-shot position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxAge allows the source to return a cached fix no older than this.
	MaxAge time.Duration
}

// Source abstracts a positioning capability (GPS or equivalent). Watch
// emits readings at the source's own cadence until ctx is cancelled; the
// source closes both channels when it stops.
type Source interface {
	Available() bool
	Watch(ctx context.Context) (<-chan Position, <-chan SourceError, error)
	Once(ctx context.Context, opts Options) (Position, error)
}

// Sampler wraps a Source with a cancellable pump goroutine delivering
// samples and errors to caller-supplied callbacks. It moves between Idle
// and Tracking; Stop is safe at any time and guarantees no callback runs
// after it returns.
type Sampler struct {
	src Source
	log logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle Sampler over src.
func New(src Source, log logger.Logger) *Sampler {
	return &Sampler{src: src, log: log}
}

// Start begins continuous sampling, delivering each reading to onSample and
// each transport failure to onError. It reports false when the positioning
// capability is unavailable or the watch could not be established. A
// Sampler already tracking is stopped and restarted with the new callbacks;
// concurrent Start calls serialize and at most one pump survives. There is
// no retry or backoff here; errors surface once per occurrence and the
// caller owns the retry policy.
func (s *Sampler) Start(onSample func(Position), onError func(ErrorKind, string)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	if !s.src.Available() {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	samples, errs, err := s.src.Watch(ctx)
	if err != nil {
		cancel()
		s.log.Errorf("watch failed: %v", err)
		return false
	}

	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.pump(ctx, samples, errs, onSample, onError, done)
	return true
}

// pump forwards source events to the callbacks until the context is
// cancelled or the source closes its channels.
func (s *Sampler) pump(ctx context.Context, samples <-chan Position, errs <-chan SourceError, onSample func(Position), onError func(ErrorKind, string), done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-samples:
			if !ok {
				return
			}
			if onSample != nil {
				onSample(p)
			}
		case e, ok := <-errs:
			if !ok {
				return
			}
			if onError != nil {
				onError(e.Kind, e.Message)
			}
			// A denied permission will not recover without user action;
			// fall back to Idle.
			if e.Kind == PermissionDenied {
				return
			}
		}
	}
}

// Stop detaches the active subscription. It is idempotent and blocks until
// the pump goroutine has exited, so no onSample or onError call happens
// after Stop returns.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked cancels the active watch and waits for the pump to exit. The
// pump never takes the lock, so waiting under it cannot deadlock.
func (s *Sampler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

// Once performs a single-shot position request, typically for permission
// probing before starting continuous tracking.
func (s *Sampler) Once(ctx context.Context, opts Options) (Position, error) {
	if !s.src.Available() {
		return Position{}, SourceError{Kind: Unavailable, Message: "positioning capability unavailable"}
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return s.src.Once(ctx, opts)
}
