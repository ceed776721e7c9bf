package push

// Notification is the payload handed to the push-notification delivery
// channel when a job is dispatched.
type Notification struct {
	// Recipient is the employee id of the technician to notify.
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	JobID     string `json:"job_id"`
	DeepLink  string `json:"deep_link"`
}

// Notifier delivers notifications to technician devices. Delivery failures
// are reported to the caller, which logs and otherwise ignores them.
type Notifier interface {
	Push(n Notification) error
}

// NopNotifier discards notifications. Used when no delivery channel is
// configured and in tests.
type NopNotifier struct{}

func (NopNotifier) Push(Notification) error { return nil }
