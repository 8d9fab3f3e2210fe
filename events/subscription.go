package events

import (
	"context"
	"sync"
)

// Subscription is a handle to a stream of notification events
type Subscription struct {
	ch     chan struct{}
	mgr    *SubscriptionManager
	cancel context.CancelFunc
	once   sync.Once
}

// Chan returns a read-only channel for self-handling events
func (s *Subscription) Chan() <-chan struct{} { return s.ch }

// Cancel unsubscribes and closes the channel. Safe for repeated calls
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.mgr.Unsubscribe(s.ch)
	})
}

// Watch starts a goroutine that calls cb on each event.
// When parentCtx finishes, the subscription is automatically cancelled
func (s *Subscription) Watch(parentCtx context.Context, cb func()) *Subscription {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	go func(ctx context.Context) {
		defer s.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.ch:
				cb()
			}
		}
	}(ctx)

	return s
}

// SubscriptionManager fans notification events out to subscribers
type SubscriptionManager struct {
	mu          sync.RWMutex
	subscribers map[chan struct{}]struct{}
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

// Subscribe creates a new subscription
func (m *SubscriptionManager) Subscribe() *Subscription {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	return &Subscription{ch: ch, mgr: m}
}

// Unsubscribe removes a subscription by its channel
func (m *SubscriptionManager) Unsubscribe(ch chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscribers[ch]; ok {
		delete(m.subscribers, ch)
		close(ch)
	}
}

// Emit sends a notification to all subscribers, non-blocking if a
// subscriber's channel is already full
func (m *SubscriptionManager) Emit(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subscribers {
		select {
		case <-ctx.Done():
			return
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending event
		}
	}
}
