package workers

import (
	"context"
	"errors"
	"time"

	"github.com/cbodonnell/landmark/pkg/commands"
	"github.com/cbodonnell/landmark/pkg/events"
	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/queue"
)

const (
	msgUnknownCommand = "Invalid command entered. Type /help for a list of valid commands."
	msgInvalidSyntax  = "Invalid command syntax, check your quotes."
)

// PositionTracker records the last position reported for a session.
type PositionTracker interface {
	SetPosition(sessionID string, pos kinematic.Vector) error
}

type HostEventWorker struct {
	hostEventQueue queue.Queue
	positions      PositionTracker
	bus            *events.Bus
	router         *commands.Router
	host           host.Host
	interval       time.Duration
}

type NewHostEventWorkerOptions struct {
	HostEventQueue queue.Queue
	Positions      PositionTracker
	Bus            *events.Bus
	Router         *commands.Router
	Host           host.Host
	Interval       time.Duration
}

// NewHostEventWorker creates a new HostEventWorker.
// The worker drains host events (session start, position, death, chat commands)
// from a queue and hands them to the event bus or the command router.
func NewHostEventWorker(opts NewHostEventWorkerOptions) *HostEventWorker {
	return &HostEventWorker{
		hostEventQueue: opts.HostEventQueue,
		positions:      opts.Positions,
		bus:            opts.Bus,
		router:         opts.Router,
		host:           opts.Host,
		interval:       opts.Interval,
	}
}

func (w *HostEventWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// deliver what was already accepted before stopping
			w.ProcessHostEvents(context.Background())
			return
		case <-ticker.C:
			w.ProcessHostEvents(ctx)
		}
	}
}

// ProcessHostEvents handles every event currently in the queue, in order.
func (w *HostEventWorker) ProcessHostEvents(ctx context.Context) {
	pendingEvents, err := w.hostEventQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read host events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case events.SessionStartEvent:
			w.bus.PublishSessionStart(ctx, event)
		case events.PositionEvent:
			if err := w.positions.SetPosition(event.SessionID, event.Position); err != nil {
				// the session ended before its last report was applied
				log.Debug("Dropping position of user %s: %v", event.UserID, err)
			}
		case *events.DeathEvent:
			if !w.bus.PublishDeath(ctx, event) {
				log.Debug("Death of user %s was not claimed by any handler", event.UserID)
			}
		case events.CommandEvent:
			w.handleCommand(ctx, event)
		default:
			log.Error("Unhandled host event type: %T", event)
		}
	}
}

func (w *HostEventWorker) handleCommand(ctx context.Context, event events.CommandEvent) {
	err := w.router.Dispatch(ctx, event.UserID, event.Line)
	if err == nil {
		return
	}

	var reply string
	switch {
	case errors.Is(err, commands.ErrEmptyCommand):
		return
	case errors.Is(err, commands.ErrUnknownCommand):
		reply = msgUnknownCommand
	case errors.Is(err, commands.ErrSyntax):
		reply = msgInvalidSyntax
	default:
		log.Error("Command %q from user %s failed: %v", event.Line, event.UserID, err)
		return
	}

	if err := w.host.SendMessage(ctx, event.UserID, messages.ChatCategoryError, reply); err != nil {
		log.Error("Failed to send command error to user %s: %v", event.UserID, err)
	}
}
