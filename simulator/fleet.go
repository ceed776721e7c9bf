package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/motofix/fieldops/core/logger"
	"github.com/motofix/fieldops/core/query"
	"github.com/motofix/fieldops/core/sampler"
	"github.com/motofix/fieldops/core/tracking"
)

// Fleet runs simulated technicians that wander around the configured center
// and push their positions through the query façade, exercising the same
// update path real mobile clients use.
type Fleet struct {
	cfg    Config
	facade *query.Facade
	log    logger.Logger
}

// NewFleet creates a Fleet feeding samples into f.
func NewFleet(cfg Config, f *query.Facade, log logger.Logger) *Fleet {
	return &Fleet{cfg: cfg, facade: f, log: log}
}

// Run starts one sampler per simulated technician and blocks until ctx is
// cancelled. Every sampler is stopped before Run returns.
func (fl *Fleet) Run(ctx context.Context) {
	interval := time.Duration(fl.cfg.IntervalSeconds) * time.Second
	samplers := make([]*sampler.Sampler, 0, fl.cfg.Technicians)
	for i := 0; i < fl.cfg.Technicians; i++ {
		id := fmt.Sprintf("sim-%03d", i+1)
		name := fmt.Sprintf("Sim Technician %d", i+1)
		src := newWalkSource(fl.cfg.CenterLat, fl.cfg.CenterLng, fl.cfg.RadiusKm, interval, int64(i+1))
		sm := sampler.New(src, fl.log)
		techID, techName := id, name
		started := sm.Start(func(p sampler.Position) {
			fl.facade.UpdateLocation(tracking.Sample{
				EmployeeID:   techID,
				EmployeeName: techName,
				Lat:          p.Lat,
				Lng:          p.Lng,
				Accuracy:     p.Accuracy,
				At:           p.At,
			})
		}, func(kind sampler.ErrorKind, msg string) {
			fl.log.Warnf("%s positioning error: %s: %s", techID, kind, msg)
		})
		if !started {
			fl.log.Errorf("%s: positioning source unavailable", techID)
			continue
		}
		samplers = append(samplers, sm)
	}
	fl.log.Infof("simulating %d technicians every %s", len(samplers), interval)

	<-ctx.Done()
	for _, sm := range samplers {
		sm.Stop()
	}
}
