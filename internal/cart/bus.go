package cart

import "sync"

// Bus is the in-process change broadcast: any number of surfaces (badge
// counter, drawer, SSE stream) subscribe per session and re-read the cart
// when signalled. Delivery is fire-and-forget with no payload and no replay;
// order across subscribers is unspecified.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func newBus() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription delivers change signals on C. A signal pending on C may cover
// several coalesced mutations; subscribers read current state, not deltas.
type Subscription struct {
	C         <-chan struct{}
	c         chan struct{}
	bus       *Bus
	sessionID string
	once      sync.Once
}

// Close releases the subscription. Safe to call more than once. C is closed
// so pending receivers unblock.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		delete(s.bus.subs[s.sessionID], s)
		if len(s.bus.subs[s.sessionID]) == 0 {
			delete(s.bus.subs, s.sessionID)
		}
		close(s.c)
	})
}

func (b *Bus) subscribe(sessionID string) *Subscription {
	c := make(chan struct{}, 1)
	sub := &Subscription{C: c, c: c, bus: b, sessionID: sessionID}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[*Subscription]struct{})
	}
	b.subs[sessionID][sub] = struct{}{}
	return sub
}

func (b *Bus) notify(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[sessionID] {
		select {
		case sub.c <- struct{}{}:
		default: // a signal is already pending, coalesce
		}
	}
}
