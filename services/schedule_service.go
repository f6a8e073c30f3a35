package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
	"github.com/jmc5391/tabletoptracker/schedule"
)

type ScheduleService interface {
	// GenerateRoundRobin creates a full single round-robin schedule for the
	// event's current roster and inserts all matches atomically. It refuses
	// to run if the event already has any match, scheduled or completed;
	// admins must delete the existing schedule first.
	GenerateRoundRobin(ctx context.Context, eventID, callerID int) ([]*models.Match, error)
}

type scheduleService struct {
	tx        repositories.TxManager
	eventRepo repositories.EventRepository
	matchRepo repositories.MatchRepository
	hub       LiveBroadcaster
}

func NewScheduleService(
	tx repositories.TxManager,
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	hub LiveBroadcaster,
) ScheduleService {
	return &scheduleService{
		tx:        tx,
		eventRepo: eventRepo,
		matchRepo: matchRepo,
		hub:       hub,
	}
}

func (s *scheduleService) GenerateRoundRobin(ctx context.Context, eventID, callerID int) ([]*models.Match, error) {
	role, err := roleOf(ctx, s.eventRepo, eventID, callerID)
	if err != nil {
		return nil, err
	}
	if role != models.EventRoleAdmin {
		return nil, ErrForbidden
	}

	var created []*models.Match
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// The row lock serializes generation with every other mutation on
		// this event; a concurrent generation call blocks here and then
		// fails the existing-matches check below.
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, eventID); txErr != nil {
			return txErr
		}

		players, txErr := s.eventRepo.ListPlayers(ctx, exec, eventID)
		if txErr != nil {
			return txErr
		}
		if len(players) < 2 {
			return ErrInsufficientPlayers
		}

		existing, txErr := s.matchRepo.CountByEvent(ctx, exec, eventID)
		if txErr != nil {
			return txErr
		}
		if existing > 0 {
			return ErrAlreadyScheduled
		}

		playerIDs := make([]int, len(players))
		for i, p := range players {
			playerIDs[i] = p.ID
		}
		pairings, txErr := schedule.GenerateRoundRobin(playerIDs)
		if txErr != nil {
			if errors.Is(txErr, schedule.ErrInsufficientPlayers) {
				return ErrInsufficientPlayers
			}
			return txErr
		}

		created = make([]*models.Match, 0, len(pairings))
		for _, pairing := range pairings {
			match := &models.Match{
				EventID:   eventID,
				Round:     pairing.Round,
				Status:    models.MatchStatusScheduled,
				Player1ID: pairing.Player1ID,
				Player2ID: pairing.Player2ID,
			}
			if txErr := s.matchRepo.Create(ctx, exec, match); txErr != nil {
				return fmt.Errorf("failed to insert generated match (round %d): %w", pairing.Round, txErr)
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(eventRoomID(eventID), LiveMessage{Type: "SCHEDULE_GENERATED", Payload: created})
	}
	return created, nil
}
