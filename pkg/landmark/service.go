package landmark

import (
	"context"
	"fmt"

	"github.com/cbodonnell/landmark/pkg/commands"
	"github.com/cbodonnell/landmark/pkg/events"
	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/store"
)

// Service owns the landmark and death stores and answers the landmark commands.
// One Service is built at start-up and shared by the command router and the event bus.
type Service struct {
	landmarks store.LandmarkStore
	deaths    store.DeathStore
	host      host.Host
	logger    *log.Logger
}

// NewServiceOptions contains options for creating a new Service.
type NewServiceOptions struct {
	Landmarks store.LandmarkStore
	Deaths    store.DeathStore
	Host      host.Host
	Logger    *log.Logger
}

func NewService(opts NewServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().Named("landmark")
	}
	return &Service{
		landmarks: opts.Landmarks,
		deaths:    opts.Deaths,
		host:      opts.Host,
		logger:    logger,
	}
}

// Register adds /landmark (/ld) and /back (/bk) to the router
// and subscribes to session start and death events.
func (s *Service) Register(router *commands.Router, bus *events.Bus) error {
	if err := router.Register(commands.Command{
		Name:    "landmark",
		Aliases: []string{"ld"},
		Usage:   "[to|add|del|list|clear|help] <name>",
		Handler: s.HandleLandmark,
	}); err != nil {
		return fmt.Errorf("failed to register landmark command: %v", err)
	}
	if err := router.Register(commands.Command{
		Name:    "back",
		Aliases: []string{"bk"},
		Handler: s.HandleBack,
	}); err != nil {
		return fmt.Errorf("failed to register back command: %v", err)
	}

	bus.OnSessionStart(s.HandleSessionStart)
	bus.OnDeath(s.HandleDeath)
	return nil
}

// HandleSessionStart makes sure the user has a landmark set.
func (s *Service) HandleSessionStart(ctx context.Context, event events.SessionStartEvent) {
	if err := s.landmarks.EnsureUser(ctx, event.UserID); err != nil {
		s.logger.Error("Failed to initialize landmarks for user %s: %v", event.UserID, err)
		return
	}
	s.logger.Debug("Landmarks ready for user %s", event.UserID)
}

// HandleDeath records the death position and claims the event.
func (s *Service) HandleDeath(ctx context.Context, event *events.DeathEvent) {
	if event.Handled {
		return
	}
	if err := s.deaths.RecordDeath(ctx, event.UserID, event.Position); err != nil {
		s.logger.Error("Failed to record death of user %s: %v", event.UserID, err)
		return
	}
	event.Handled = true
	s.logger.Debug("Recorded death of user %s at %s", event.UserID, event.Position)
}

// send delivers a chat line and logs delivery failures.
func (s *Service) send(ctx context.Context, userID string, category messages.ChatCategory, text string) error {
	if err := s.host.SendMessage(ctx, userID, category, text); err != nil {
		return fmt.Errorf("failed to send %s message to user %s: %v", category, userID, err)
	}
	return nil
}

// internalError tells the user something went wrong and returns the cause for logging.
func (s *Service) internalError(ctx context.Context, userID string, cause error) error {
	s.logger.Error("Command failed for user %s: %v", userID, cause)
	if err := s.send(ctx, userID, messages.ChatCategoryError, msgInternalError); err != nil {
		s.logger.Error("%v", err)
	}
	return cause
}
