package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/motofix/fieldops/core/push"
	"github.com/motofix/fieldops/infra/logger"
)

// PushNotifier delivers dispatch notifications to per-technician topics.
// It implements push.Notifier.
type PushNotifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPushNotifier connects to the broker for notification publishing.
func NewPushNotifier(cfg Config) (*PushNotifier, error) {
	log := logger.New("mqtt_push")
	cli, err := connect(cfg, log, nil)
	if err != nil {
		return nil, err
	}
	return &PushNotifier{cli: cli, prefix: cfg.NotifyTopicPrefix, qos: cfg.QoS, log: log}, nil
}

// Push publishes the notification to <prefix><recipient>. Failures are
// returned to the caller, which logs and otherwise ignores them.
func (p *PushNotifier) Push(n push.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	token := p.cli.Publish(p.prefix+n.Recipient, p.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	p.log.Debugf("notified %s about job %s", n.Recipient, n.JobID)
	return nil
}

// Close disconnects from the broker.
func (p *PushNotifier) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(disconnectTimeout)
	}
}
