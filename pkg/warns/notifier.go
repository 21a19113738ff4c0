package warns

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
)

const defaultNotifyTimeout = 10 * time.Second

// Notifier delivers best-effort direct messages in the background.
//
// Submit never blocks on delivery and never reports failure: a message the
// platform refuses (for example because the user never opened a DM with the
// bot) is dropped and is not retried.
type Notifier struct {
	Messenger DirectMessenger
	Timeout   time.Duration

	// mu orders Submit's wg.Add against Close so Add never races Wait
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewNotifier creates a Notifier sending through m
func NewNotifier(m DirectMessenger) *Notifier {
	return &Notifier{Messenger: m, Timeout: defaultNotifyTimeout}
}

// Submit schedules a direct message to userID. After Close it drops the
// message.
func (n *Notifier) Submit(userID, text string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		metrics.Notifications.WithLabelValues("dropped").Inc()
		logger.Debug("MD a "+userID+" descartado: notifier cerrado", "Notifier")
		return
	}

	n.wg.Add(1)
	apperrors.Go(func() {
		defer n.wg.Done()

		timeout := n.Timeout
		if timeout <= 0 {
			timeout = defaultNotifyTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := n.Messenger.SendDirectMessage(ctx, userID, text); err != nil {
			metrics.Notifications.WithLabelValues("dropped").Inc()
			logger.Debug(fmt.Sprintf("MD a %s descartado: %v", userID, err), "Notifier")
			return
		}
		metrics.Notifications.WithLabelValues("sent").Inc()
	})
}

// Wait blocks until every message submitted so far has been sent or
// dropped. Callers must not Submit concurrently; use Close at shutdown.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Close stops accepting messages and waits for the pending ones
func (n *Notifier) Close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
}
