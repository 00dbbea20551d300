// test/mock/notifier.go
package mock

import (
	"context"
	"sync"

	"github.com/ucook/accessflow/util"
)

// Notification is one recorded notifier call.
type Notification struct {
	Audience string
	Context  util.NotificationContext
}

// RecordingNotifier captures notifications instead of sending them.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

var _ util.Notifier = &RecordingNotifier{}

func (n *RecordingNotifier) record(audience string, nc util.NotificationContext) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Audience: audience, Context: nc})
}

func (n *RecordingNotifier) NotifyManager(ctx context.Context, nc util.NotificationContext) {
	n.record("manager", nc)
}

func (n *RecordingNotifier) NotifySystemOwners(ctx context.Context, nc util.NotificationContext) {
	n.record("owners", nc)
}

func (n *RecordingNotifier) NotifyRequester(ctx context.Context, nc util.NotificationContext) {
	n.record("requester", nc)
}

func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// Count returns how many notifications went to audience with action.
func (n *RecordingNotifier) Count(audience string, action util.NotificationAction) int {
	count := 0
	for _, s := range n.Sent() {
		if s.Audience == audience && s.Context.Action == action {
			count++
		}
	}
	return count
}
