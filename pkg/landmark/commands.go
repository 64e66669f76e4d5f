package landmark

import (
	"context"
	"errors"

	"github.com/cbodonnell/landmark/pkg/commands"
	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/store"
)

// Subcommands of /landmark. Any other first argument is a landmark name.
const (
	subcommandTo    = "to"
	subcommandAdd   = "add"
	subcommandDel   = "del"
	subcommandClear = "clear"
	subcommandList  = "list"
	subcommandHelp  = "help"
)

// HandleLandmark runs /landmark with one or two arguments.
// Wrong argument counts and missing names show the help text.
func (s *Service) HandleLandmark(ctx context.Context, inv commands.Invocation) error {
	userID := inv.UserID
	if len(inv.Args) < 1 || len(inv.Args) > 2 {
		return s.help(ctx, userID)
	}

	sub := inv.Args[0]
	name, hasName := "", len(inv.Args) == 2
	if hasName {
		name = inv.Args[1]
	}
	s.logger.Debug("User %s ran landmark %q with %d args", userID, sub, len(inv.Args))

	switch sub {
	case subcommandTo:
		if !hasName {
			return s.help(ctx, userID)
		}
		return s.teleport(ctx, userID, name)
	case subcommandAdd:
		if !hasName {
			return s.help(ctx, userID)
		}
		return s.add(ctx, userID, name)
	case subcommandDel:
		if !hasName {
			return s.help(ctx, userID)
		}
		return s.delete(ctx, userID, name)
	case subcommandClear:
		// a trailing argument is ignored
		return s.clear(ctx, userID)
	case subcommandList:
		return s.list(ctx, userID)
	case subcommandHelp:
		return s.help(ctx, userID)
	default:
		return s.teleport(ctx, userID, sub)
	}
}

// HandleBack runs /back. Arguments are ignored.
func (s *Service) HandleBack(ctx context.Context, inv commands.Invocation) error {
	userID := inv.UserID
	pos, err := s.deaths.GetLastDeath(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return s.send(ctx, userID, messages.ChatCategoryError, msgNotDied)
		}
		return s.internalError(ctx, userID, err)
	}

	if err := s.host.Teleport(ctx, userID, pos); err != nil {
		return s.internalError(ctx, userID, err)
	}
	s.logger.Debug("User %s returned to death position %s", userID, pos)
	return s.send(ctx, userID, messages.ChatCategorySuccess, msgReturned)
}

func (s *Service) teleport(ctx context.Context, userID string, name string) error {
	pos, err := s.landmarks.Get(ctx, userID, name)
	if err != nil {
		if store.IsNotFound(err) {
			return s.send(ctx, userID, messages.ChatCategoryError, msgNotExist(name))
		}
		return s.internalError(ctx, userID, err)
	}

	if err := s.host.Teleport(ctx, userID, pos); err != nil {
		return s.internalError(ctx, userID, err)
	}
	s.logger.Debug("User %s teleported to landmark %q at %s", userID, name, pos)
	return s.send(ctx, userID, messages.ChatCategorySuccess, msgTeleported(name))
}

func (s *Service) add(ctx context.Context, userID string, name string) error {
	if err := store.ValidateName(name); err != nil {
		var invalid *store.ErrInvalidArgument
		errors.As(err, &invalid)
		return s.send(ctx, userID, messages.ChatCategoryError, msgInvalidName(invalid.Reason))
	}

	pos, err := s.host.Position(ctx, userID)
	if err != nil {
		if errors.Is(err, host.ErrNoPosition) {
			return s.send(ctx, userID, messages.ChatCategoryError, msgPositionUnknown)
		}
		return s.internalError(ctx, userID, err)
	}

	overwritten, err := s.landmarks.Add(ctx, userID, name, pos)
	if err != nil {
		return s.internalError(ctx, userID, err)
	}
	if overwritten {
		if err := s.send(ctx, userID, messages.ChatCategoryWarning, msgAddOverwrite); err != nil {
			return err
		}
	}
	s.logger.Debug("User %s saved landmark %q at %s", userID, name, pos)
	return s.send(ctx, userID, messages.ChatCategorySuccess, msgAdded(name))
}

func (s *Service) delete(ctx context.Context, userID string, name string) error {
	if err := s.landmarks.Delete(ctx, userID, name); err != nil {
		if store.IsNotFound(err) {
			return s.send(ctx, userID, messages.ChatCategoryError, msgNotExist(name))
		}
		return s.internalError(ctx, userID, err)
	}
	return s.send(ctx, userID, messages.ChatCategorySuccess, msgDeleted(name))
}

func (s *Service) clear(ctx context.Context, userID string) error {
	if err := s.landmarks.Clear(ctx, userID); err != nil {
		return s.internalError(ctx, userID, err)
	}
	return s.send(ctx, userID, messages.ChatCategorySuccess, msgCleared)
}

func (s *Service) list(ctx context.Context, userID string) error {
	names, err := s.landmarks.List(ctx, userID)
	if err != nil {
		return s.internalError(ctx, userID, err)
	}
	if len(names) == 0 {
		return s.send(ctx, userID, messages.ChatCategoryError, msgNoLandmarks)
	}
	return s.send(ctx, userID, messages.ChatCategoryInfo, msgList(names))
}

func (s *Service) help(ctx context.Context, userID string) error {
	for _, line := range helpLines {
		if err := s.send(ctx, userID, messages.ChatCategoryInfo, line); err != nil {
			return err
		}
	}
	return nil
}
