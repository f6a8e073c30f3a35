package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
)

// LiveBroadcaster pushes update messages to clients subscribed to an
// event's room. Satisfied by *live.Hub; may be nil in tests.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// LiveMessage is the envelope broadcast to event rooms.
type LiveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func eventRoomID(eventID int) string {
	return fmt.Sprintf("event_%d", eventID)
}

// roleOf is the single role-resolution capability every
// authorization-sensitive operation goes through. It reports the caller's
// role relative to an event, with ErrEventNotFound for unknown events so
// absent resources are never reported as authorization failures.
func roleOf(ctx context.Context, eventRepo repositories.EventRepository, eventID, userID int) (models.EventRole, error) {
	if _, err := eventRepo.GetByID(ctx, eventID); err != nil {
		if err == repositories.ErrEventNotFound {
			return models.EventRoleNone, ErrEventNotFound
		}
		return models.EventRoleNone, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	role, err := eventRepo.GetRole(ctx, eventID, userID)
	if err != nil {
		return models.EventRoleNone, err
	}
	return role, nil
}

func validateEventDates(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidationFailed)
	}
	if end != nil && end.Before(start) {
		return ErrEventInvalidDateRange
	}
	return nil
}

func containsUser(users []models.User, id int) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
