package mqtt

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/motofix/fieldops/core/tracking"
	"github.com/motofix/fieldops/infra/logger"
)

// locationPayload is the wire format technician clients publish on the
// location topic.
type locationPayload struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Accuracy     float64  `json:"accuracy"`
	CurrentJobID string   `json:"current_job_id,omitempty"`
	Battery      *float64 `json:"battery,omitempty"`
	Timestamp    int64    `json:"timestamp,omitempty"`
}

// LocationStore receives decoded samples. The tracking store satisfies it.
type LocationStore interface {
	UpdateLocation(tracking.Sample)
}

// Ingestor subscribes to the technician location topic and feeds samples
// into the location registry.
type Ingestor struct {
	cli   pahoClient
	topic string
	qos   byte
	store LocationStore
	log   logger.Logger
}

// NewIngestor connects to the broker and subscribes to cfg.LocationTopic.
// The subscription is re-established on every reconnect.
func NewIngestor(cfg Config, store LocationStore) (*Ingestor, error) {
	log := logger.New("mqtt_ingest")
	ing := &Ingestor{topic: cfg.LocationTopic, qos: cfg.QoS, store: store, log: log}
	cli, err := connect(cfg, log, func(c paho.Client) {
		if token := c.Subscribe(ing.topic, ing.qos, ing.onMessage); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	})
	if err != nil {
		return nil, err
	}
	ing.cli = cli
	return ing, nil
}

// onMessage decodes a location payload and forwards it to the store.
// Malformed payloads are logged and dropped.
func (i *Ingestor) onMessage(_ paho.Client, msg paho.Message) {
	var p locationPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		i.log.Errorf("invalid location payload on %s: %v", msg.Topic(), err)
		return
	}
	if p.EmployeeID == "" {
		i.log.Warnf("location payload without employee_id on %s", msg.Topic())
		return
	}
	smp := tracking.Sample{
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.EmployeeName,
		Lat:          p.Lat,
		Lng:          p.Lng,
		Accuracy:     p.Accuracy,
		CurrentJobID: p.CurrentJobID,
		Battery:      p.Battery,
	}
	if p.Timestamp > 0 {
		smp.At = time.Unix(p.Timestamp, 0)
	}
	i.store.UpdateLocation(smp)
}

// Close disconnects from the broker.
func (i *Ingestor) Close() {
	if i.cli != nil && i.cli.IsConnected() {
		i.cli.Disconnect(disconnectTimeout)
	}
}
