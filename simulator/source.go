package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/motofix/fieldops/core/sampler"
)

// walkSource is a sampler.Source producing a bounded random walk around a
// center point, emitting one reading per interval. It stands in for a GPS
// receiver during local development.
type walkSource struct {
	center   sampler.Position
	radiusKm float64
	interval time.Duration
	rng      *rand.Rand

	mu  sync.Mutex
	cur sampler.Position
}

// newWalkSource seeds the walk at a random offset from center.
func newWalkSource(centerLat, centerLng, radiusKm float64, interval time.Duration, seed int64) *walkSource {
	s := &walkSource{
		center:   sampler.Position{Lat: centerLat, Lng: centerLng},
		radiusKm: radiusKm,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
	}
	s.cur = s.step(s.center, radiusKm)
	return s
}

func (s *walkSource) Available() bool { return true }

// Watch emits one reading per interval until ctx is cancelled, then closes
// both channels.
func (s *walkSource) Watch(ctx context.Context) (<-chan sampler.Position, <-chan sampler.SourceError, error) {
	samples := make(chan sampler.Position)
	errs := make(chan sampler.SourceError)
	go func() {
		defer close(samples)
		defer close(errs)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.cur = s.step(s.cur, 0.3)
				p := s.cur
				s.mu.Unlock()
				select {
				case samples <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return samples, errs, nil
}

// Once returns the current position immediately.
func (s *walkSource) Once(_ context.Context, _ sampler.Options) (sampler.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.cur
	p.At = time.Now()
	return p, nil
}

// step moves up to maxKm from p, clamped to the walk radius.
func (s *walkSource) step(p sampler.Position, maxKm float64) sampler.Position {
	// Roughly 111 km per degree of latitude.
	const kmPerDeg = 111.0
	next := sampler.Position{
		Lat:      p.Lat + (s.rng.Float64()*2-1)*maxKm/kmPerDeg,
		Lng:      p.Lng + (s.rng.Float64()*2-1)*maxKm/kmPerDeg,
		Accuracy: 5 + s.rng.Float64()*20,
		At:       time.Now(),
	}
	maxDeg := s.radiusKm / kmPerDeg
	if next.Lat > s.center.Lat+maxDeg {
		next.Lat = s.center.Lat + maxDeg
	}
	if next.Lat < s.center.Lat-maxDeg {
		next.Lat = s.center.Lat - maxDeg
	}
	if next.Lng > s.center.Lng+maxDeg {
		next.Lng = s.center.Lng + maxDeg
	}
	if next.Lng < s.center.Lng-maxDeg {
		next.Lng = s.center.Lng - maxDeg
	}
	return next
}
