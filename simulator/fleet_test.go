package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/motofix/fieldops/core/dispatch"
	"github.com/motofix/fieldops/core/jobs"
	"github.com/motofix/fieldops/core/query"
	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/infra/logger"
	"github.com/motofix/fieldops/internal/eventbus"
)

func newTestFacade(t *testing.T) *query.Facade {
	t.Helper()
	hub := eventbus.NewHub()
	reg := jobs.NewRegistry(hub, logger.NopLogger{})
	store := tracking.NewStore(reg, hub, logger.NopLogger{})
	eng, err := dispatch.NewEngine(reg, store, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return query.New(reg, store, eng, hub, logger.NopLogger{})
}

func TestWalkSource_StaysWithinRadius(t *testing.T) {
	src := newWalkSource(13.0827, 80.2707, 2, time.Millisecond, 42)
	const maxDeg = 2.0 / 111.0
	for i := 0; i < 1000; i++ {
		src.cur = src.step(src.cur, 0.5)
		if src.cur.Lat > 13.0827+maxDeg || src.cur.Lat < 13.0827-maxDeg {
			t.Fatalf("latitude escaped the radius: %v", src.cur.Lat)
		}
		if src.cur.Lng > 80.2707+maxDeg || src.cur.Lng < 80.2707-maxDeg {
			t.Fatalf("longitude escaped the radius: %v", src.cur.Lng)
		}
	}
}

func TestFleet_PushesSamples(t *testing.T) {
	facade := newTestFacade(t)
	cfg := Config{Technicians: 2, IntervalSeconds: 1, CenterLat: 13.0827, CenterLng: 80.2707, RadiusKm: 5}
	fl := NewFleet(cfg, facade, logger.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fl.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(facade.GetAllLocations()) == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	locs := facade.GetAllLocations()
	if len(locs) != 2 {
		t.Fatalf("expected 2 simulated technicians, got %d", len(locs))
	}
	for _, loc := range locs {
		if loc.Lat == 0 || loc.Lng == 0 {
			t.Fatalf("sample without coordinates: %#v", loc)
		}
	}
}
