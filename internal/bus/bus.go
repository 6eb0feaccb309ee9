// Package bus implements the update broadcast: a bounded multi-subscriber
// signal fired once per completed tick. Grounded on the notifyEventListeners
// / AddEventListener pub/sub pattern (register a channel, snapshot the
// listener slice under lock, non-blocking send to each on broadcast) but
// adapted to single-signal "tick heartbeat" semantics instead of typed
// events.
package bus

import (
	"context"
	"sync"

	"github.com/AdonaIsium/kikan/internal/config"
)

// DefaultBacklog is the per-subscriber backlog depth used when none is
// specified; any value at least as large as the number of ticks that can
// elapse between a subscribe and its next Wait suffices.
const DefaultBacklog = config.DefaultUpdateBacklog

// Bus is a bounded MPMC tick-heartbeat broadcast. The zero value is not
// usable; construct with New or NewWithBacklog.
type Bus struct {
	mu          sync.Mutex
	backlog     int
	subscribers []chan struct{}
}

// New constructs a Bus with DefaultBacklog.
func New() *Bus {
	return NewWithBacklog(DefaultBacklog)
}

// NewWithBacklog constructs a Bus whose subscriber channels hold up to
// backlog pending signals before silently dropping further ones.
func NewWithBacklog(backlog int) *Bus {
	return &Bus{backlog: backlog}
}

// Subscription is a single subscriber's handle onto the bus. A
// Subscription created before a Broadcast call observes that broadcast on
// its next Wait; one created after does not.
type Subscription struct {
	ch <-chan struct{}
}

// Subscribe registers a fresh subscriber and returns its handle. Callers
// that also hold a kernel lock should release it before calling
// Subscription.Wait — Subscribe itself never blocks.
func (b *Bus) Subscribe() *Subscription {
	ch := make(chan struct{}, b.backlog)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return &Subscription{ch: ch}
}

// Broadcast signals every current subscriber exactly once. A subscriber
// whose backlog is full is skipped, not blocked.
func (b *Bus) Broadcast() {
	b.mu.Lock()
	subs := make([]chan struct{}, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until the next signal arrives or ctx is done. The kernel
// itself places no timeout on this call; ctx is the caller's own
// cancellation escape hatch.
func (s *Subscription) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
