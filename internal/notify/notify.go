// Package notify carries user-facing failure notifications out of the data
// layer without binding it to any UI. The market data client emits exactly
// one notification per failed call through an injected Notifier.
package notify

import (
	"log/slog"
	"sync"
)

// Notifier receives user-visible failure messages.
type Notifier interface {
	NotifyError(message string)
}

// SlogNotifier logs notifications as warnings. It is the default sink when
// no UI channel is attached.
type SlogNotifier struct{}

func (SlogNotifier) NotifyError(message string) {
	slog.Warn("user notification", "message", message)
}

// Recorder captures notifications for inspection in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) NotifyError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of all recorded notifications.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
