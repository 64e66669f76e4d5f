package events

import (
	"context"
	"sync"

	"github.com/cbodonnell/landmark/pkg/kinematic"
)

// SessionStartEvent is fired once when a user's session begins.
type SessionStartEvent struct {
	UserID string
}

// DeathEvent is fired when a user's avatar dies.
// A handler that consumes the event sets Handled so later handlers skip it.
type DeathEvent struct {
	UserID   string
	Position kinematic.Vector
	Handled  bool
}

type SessionStartHandler func(ctx context.Context, event SessionStartEvent)

type DeathHandler func(ctx context.Context, event *DeathEvent)

// Bus delivers host events to registered handlers.
// Handlers run synchronously in registration order.
type Bus struct {
	lock                 sync.Mutex
	sessionStartHandlers []SessionStartHandler
	deathHandlers        []DeathHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// OnSessionStart registers a handler for session start events.
func (b *Bus) OnSessionStart(handler SessionStartHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.sessionStartHandlers = append(b.sessionStartHandlers, handler)
}

// OnDeath registers a handler for death events.
func (b *Bus) OnDeath(handler DeathHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.deathHandlers = append(b.deathHandlers, handler)
}

// PublishSessionStart calls every session start handler.
func (b *Bus) PublishSessionStart(ctx context.Context, event SessionStartEvent) {
	b.lock.Lock()
	handlers := append([]SessionStartHandler(nil), b.sessionStartHandlers...)
	b.lock.Unlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// PublishDeath calls death handlers until one of them claims the event.
// It returns whether the event was claimed.
func (b *Bus) PublishDeath(ctx context.Context, event *DeathEvent) bool {
	b.lock.Lock()
	handlers := append([]DeathHandler(nil), b.deathHandlers...)
	b.lock.Unlock()

	for _, handler := range handlers {
		if event.Handled {
			break
		}
		handler(ctx, event)
	}
	return event.Handled
}

// CommandEvent is a raw chat command line typed by a user.
type CommandEvent struct {
	UserID string
	Line   string
}

// PositionEvent is a position report from the host for one session.
// It travels through the same queue as commands so a command sees the
// position reported just before it.
type PositionEvent struct {
	SessionID string
	UserID    string
	Position  kinematic.Vector
}
