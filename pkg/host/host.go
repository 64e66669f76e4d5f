package host

import (
	"context"
	"errors"

	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/messages"
)

// ErrNoPosition is returned by Position when the host has not reported
// where the user is yet.
var ErrNoPosition = errors.New("position not known")

// ErrUserOffline is returned when the user has no live session.
var ErrUserOffline = errors.New("user is not connected")

// Host is what the landmark commands need from the world that embeds them.
type Host interface {
	// Teleport moves the user's avatar to pos.
	Teleport(ctx context.Context, userID string, pos kinematic.Vector) error
	// SendMessage shows a categorized chat line to the user.
	SendMessage(ctx context.Context, userID string, category messages.ChatCategory, text string) error
	// Position returns the user's current avatar position.
	Position(ctx context.Context, userID string) (kinematic.Vector, error)
}
