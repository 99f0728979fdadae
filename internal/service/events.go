package service

import (
	"context"
	"sync"

	"blooddrive-backend/internal/domain"
)

// ChangeListener is told about committed mutations.
type ChangeListener interface {
	OnChange(ctx context.Context, ev domain.ChangeEvent)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ctx context.Context, ev domain.ChangeEvent)

func (f ChangeListenerFunc) OnChange(ctx context.Context, ev domain.ChangeEvent) { f(ctx, ev) }

// ChangeNotifier fans committed mutations out to subscribed listeners,
// synchronously and in subscription order.
type ChangeNotifier struct {
	mu        sync.RWMutex
	listeners []ChangeListener
}

func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{}
}

func (n *ChangeNotifier) Subscribe(l ChangeListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *ChangeNotifier) Publish(ctx context.Context, ev domain.ChangeEvent) {
	if n == nil {
		return
	}
	n.mu.RLock()
	listeners := append([]ChangeListener(nil), n.listeners...)
	n.mu.RUnlock()

	for _, l := range listeners {
		l.OnChange(ctx, ev)
	}
}
