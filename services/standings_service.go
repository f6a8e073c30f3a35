package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
	"github.com/jmc5391/tabletoptracker/standings"
)

type StandingsService interface {
	// GetLeaderboard derives the ranked standings for an event from its
	// current roster and completed matches. Nothing is cached: every call
	// recomputes from last-committed data.
	GetLeaderboard(ctx context.Context, eventID int) ([]models.Standing, error)
}

type standingsService struct {
	eventRepo repositories.EventRepository
	matchRepo repositories.MatchRepository
}

func NewStandingsService(eventRepo repositories.EventRepository, matchRepo repositories.MatchRepository) StandingsService {
	return &standingsService{
		eventRepo: eventRepo,
		matchRepo: matchRepo,
	}
}

func (s *standingsService) GetLeaderboard(ctx context.Context, eventID int) ([]models.Standing, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	players, err := s.eventRepo.ListPlayers(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of event %d: %w", eventID, err)
	}

	completed := models.MatchStatusCompleted
	matches, err := s.matchRepo.ListByEvent(ctx, eventID, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches of event %d: %w", eventID, err)
	}

	return standings.Compute(players, matches), nil
}
