// Package notify delivers structured trading events to user-facing sinks.
// The core emits an Event for every completed action (fill, trigger,
// rejection); sinks own their own display lifetime.
package notify

import "log/slog"

// Kind classifies an event for display.
type Kind string

const (
	Success Kind = "SUCCESS"
	Error   Kind = "ERROR"
	Info    Kind = "INFO"
)

// Event is a single notification.
type Event struct {
	Kind    Kind
	Title   string
	Message string
}

// Notifier receives events. Implementations must not block the caller for
// long; the engine publishes while holding no locks but on the tick path.
type Notifier interface {
	Notify(Event)
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Notify(ev Event) {
	l := n.Log
	if l == nil {
		l = slog.Default()
	}
	l.Info("notification",
		slog.String("kind", string(ev.Kind)),
		slog.String("title", ev.Title),
		slog.String("message", ev.Message),
	)
}

// Multi fans an event out to several sinks.
type Multi []Notifier

func (m Multi) Notify(ev Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ev)
		}
	}
}

// Func adapts a function to the Notifier interface. Used by tests and by the
// stream broadcaster.
type Func func(Event)

func (f Func) Notify(ev Event) { f(ev) }
