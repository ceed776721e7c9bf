package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apijobs "github.com/motofix/fieldops/api/jobs"
	apitechnicians "github.com/motofix/fieldops/api/technicians"
	"github.com/motofix/fieldops/config"
	"github.com/motofix/fieldops/core/dispatch"
	"github.com/motofix/fieldops/core/jobs"
	coremetrics "github.com/motofix/fieldops/core/metrics"
	"github.com/motofix/fieldops/core/push"
	"github.com/motofix/fieldops/core/query"
	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/infra/logger"
	"github.com/motofix/fieldops/infra/metrics"
	"github.com/motofix/fieldops/infra/mqtt"
	"github.com/motofix/fieldops/internal/eventbus"
)

// Service orchestrates the registries, the dispatch engine and the
// transports around them.
type Service struct {
	Facade *query.Facade

	hub      *eventbus.Hub
	log      logger.Logger
	sink     coremetrics.Sink
	ingest   *mqtt.Ingestor
	notifier *mqtt.PushNotifier

	apiEnabled  bool
	apiAddr     string
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	hub := eventbus.NewHub()
	registry := jobs.NewRegistry(hub, logger.New("jobs"))
	store := tracking.NewStore(registry, hub, logger.New("tracking"))

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var notifier push.Notifier = push.NopNotifier{}
	var mqttNotifier *mqtt.PushNotifier
	var ingest *mqtt.Ingestor
	if cfg.MQTT.Enabled {
		var err error
		mqttNotifier, err = mqtt.NewPushNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("push notifier: %w", err)
		}
		notifier = mqttNotifier
		ingest, err = mqtt.NewIngestor(cfg.MQTT, store)
		if err != nil {
			return nil, fmt.Errorf("location ingest: %w", err)
		}
	}

	engine, err := dispatch.NewEngine(registry, store, notifier, sink, logger.New("dispatch"))
	if err != nil {
		return nil, fmt.Errorf("dispatch engine: %w", err)
	}
	facade := query.New(registry, store, engine, hub, logger.New("query"))

	return &Service{
		Facade:      facade,
		hub:         hub,
		log:         logg,
		sink:        sink,
		ingest:      ingest,
		notifier:    mqttNotifier,
		apiEnabled:  cfg.API.Enabled,
		apiAddr:     cfg.API.Addr,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the HTTP surfaces and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.apiEnabled {
		mux := http.NewServeMux()
		apijobs.NewHandler(s.Facade).Register(mux)
		apitechnicians.NewHandler(s.Facade).Register(mux)
		srv := &http.Server{Addr: s.apiAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Errorf("api shutdown: %v", err)
			}
		}()
		go func() {
			s.log.Infof("api listening on %s", s.apiAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.ingest != nil {
		s.ingest.Close()
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.sink != nil {
		s.sink.Close()
	}
	s.hub.Close()
	return nil
}
