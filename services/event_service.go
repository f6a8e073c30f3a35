package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
	"github.com/jmc5391/tabletoptracker/storage"
	"golang.org/x/sync/errgroup"
)

type CreateEventInput struct {
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type UpdateEventInput struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type EventService interface {
	ListEvents(ctx context.Context, userID int) ([]*models.Event, error)
	GetEvent(ctx context.Context, eventID int) (*models.Event, error)
	CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID int, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID int) error
	AddAdmin(ctx context.Context, eventID, callerID int, email string) (*models.User, error)
	AddPlayer(ctx context.Context, eventID, callerID int, email string) (*models.User, error)
	RemovePlayer(ctx context.Context, eventID, callerID, userID int) error
	UploadLogo(ctx context.Context, eventID, callerID int, contentType string, file io.Reader) (*models.Event, error)
	RoleOf(ctx context.Context, eventID, userID int) (models.EventRole, error)
}

type eventService struct {
	tx        repositories.TxManager
	eventRepo repositories.EventRepository
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
	uploader  storage.FileUploader
	hub       LiveBroadcaster
}

func NewEventService(
	tx repositories.TxManager,
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	hub LiveBroadcaster,
) EventService {
	return &eventService{
		tx:        tx,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		matchRepo: matchRepo,
		uploader:  uploader,
		hub:       hub,
	}
}

func (s *eventService) ListEvents(ctx context.Context, userID int) ([]*models.Event, error) {
	events, err := s.eventRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user %d: %w", userID, err)
	}
	for _, event := range events {
		s.populateLogoURL(event)
	}
	return events, nil
}

// GetEvent returns the event with its admins, players and matches. The
// related collections are loaded in parallel against last-committed state;
// no lock is taken for reads.
func (s *eventService) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		admins, adminErr := s.eventRepo.ListAdmins(gCtx, eventID)
		if adminErr != nil {
			return fmt.Errorf("failed to list admins of event %d: %w", eventID, adminErr)
		}
		event.Admins = admins
		return nil
	})

	g.Go(func() error {
		players, playerErr := s.eventRepo.ListPlayers(gCtx, nil, eventID)
		if playerErr != nil {
			return fmt.Errorf("failed to list players of event %d: %w", eventID, playerErr)
		}
		event.Players = players
		return nil
	})

	g.Go(func() error {
		matches, matchErr := s.matchRepo.ListByEvent(gCtx, eventID, nil)
		if matchErr != nil {
			return fmt.Errorf("failed to list matches of event %d: %w", eventID, matchErr)
		}
		event.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			event.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}
	if err := validateEventDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:      name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}

	// The creator becomes the event's sole initial admin, in the same
	// transaction that creates the event: an event without admins must
	// never be observable.
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.Create(ctx, exec, event); txErr != nil {
			return txErr
		}
		return s.eventRepo.AddAdmin(ctx, exec, event.ID, creatorID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventUserInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID int, input UpdateEventInput) (*models.Event, error) {
	if err := s.requireAdmin(ctx, eventID, callerID); err != nil {
		return nil, err
	}

	var updated *models.Event
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		event, txErr := s.eventRepo.GetByID(ctx, eventID)
		if txErr != nil {
			return txErr
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrEventNameRequired
			}
			event.Name = name
		}
		if input.StartDate != nil {
			event.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			event.EndDate = input.EndDate
		}
		if txErr := validateEventDates(event.StartDate, event.EndDate); txErr != nil {
			return txErr
		}
		if txErr := s.eventRepo.Update(ctx, exec, event); txErr != nil {
			return txErr
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, s.mapEventError(err)
	}

	s.populateLogoURL(updated)
	return updated, nil
}

// DeleteEvent removes the event together with its matches and membership
// rows in one transaction, so a partially deleted event is never visible.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID int) error {
	if err := s.requireAdmin(ctx, eventID, callerID); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		if txErr := s.matchRepo.DeleteByEvent(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		if txErr := s.eventRepo.RemoveAllMembers(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		return s.eventRepo.Delete(ctx, exec, eventID)
	})
	if err != nil {
		return s.mapEventError(err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(eventRoomID(eventID), LiveMessage{Type: "EVENT_DELETED", Payload: eventID})
	}
	return nil
}

func (s *eventService) AddAdmin(ctx context.Context, eventID, callerID int, email string) (*models.User, error) {
	return s.addMember(ctx, eventID, callerID, email, s.eventRepo.AddAdmin)
}

func (s *eventService) AddPlayer(ctx context.Context, eventID, callerID int, email string) (*models.User, error) {
	return s.addMember(ctx, eventID, callerID, email, s.eventRepo.AddPlayer)
}

func (s *eventService) addMember(
	ctx context.Context,
	eventID, callerID int,
	email string,
	insert func(ctx context.Context, exec repositories.SQLExecutor, eventID, userID int) error,
) (*models.User, error) {
	if err := s.requireAdmin(ctx, eventID, callerID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		return insert(ctx, exec, eventID, user.ID)
	})
	if err != nil {
		return nil, s.mapEventError(err)
	}

	user.PasswordHash = ""
	return user, nil
}

// RemovePlayer takes a user off the roster. Existing matches referencing the
// player are left untouched; they simply stop counting toward the
// leaderboard, which only covers currently enrolled players.
func (s *eventService) RemovePlayer(ctx context.Context, eventID, callerID, userID int) error {
	if err := s.requireAdmin(ctx, eventID, callerID); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, eventID); txErr != nil {
			return txErr
		}
		return s.eventRepo.RemovePlayer(ctx, exec, eventID, userID)
	})
	if err != nil {
		return s.mapEventError(err)
	}
	return nil
}

func (s *eventService) UploadLogo(ctx context.Context, eventID, callerID int, contentType string, file io.Reader) (*models.Event, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}
	if err := s.requireAdmin(ctx, eventID, callerID); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, s.mapEventError(err)
	}

	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("events/%d/logo%s", eventID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload event logo: %w", err)
	}

	oldKey := event.LogoKey
	if err := s.eventRepo.UpdateLogoKey(ctx, eventID, &key); err != nil {
		return nil, s.mapEventError(err)
	}
	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			// Stale object only; the new logo is already live.
			slog.Warn("failed to delete old event logo", "key", *oldKey, "error", delErr)
		}
	}

	event.LogoKey = &key
	s.populateLogoURL(event)
	return event, nil
}

func (s *eventService) RoleOf(ctx context.Context, eventID, userID int) (models.EventRole, error) {
	return roleOf(ctx, s.eventRepo, eventID, userID)
}

func (s *eventService) requireAdmin(ctx context.Context, eventID, callerID int) error {
	role, err := roleOf(ctx, s.eventRepo, eventID, callerID)
	if err != nil {
		return err
	}
	if role != models.EventRoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *eventService) populateLogoURL(event *models.Event) {
	if event == nil || event.LogoKey == nil || *event.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*event.LogoKey); url != "" {
		event.LogoURL = &url
	}
}

func (s *eventService) mapEventError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrEventMemberNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrEventMemberConflict):
		return ErrDuplicateMember
	case errors.Is(err, repositories.ErrEventUserInvalid):
		return ErrUserNotFound
	default:
		return err
	}
}
