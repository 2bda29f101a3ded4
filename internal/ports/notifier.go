package ports

// Notifier receives user-facing notification requests emitted on state
// transitions. Delivery is the hosting layer's concern; implementations
// must never fail the caller.
type Notifier interface {
	Notify(title, body string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}
