package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmc5391/tabletoptracker/models"
	"github.com/jmc5391/tabletoptracker/repositories"
)

type CreateMatchInput struct {
	EventID   int        `json:"event_id"`
	Player1ID int        `json:"p1_id"`
	Player2ID int        `json:"p2_id"`
	Round     int        `json:"round"`
	Date      *time.Time `json:"date"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, callerID int, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)

	// RecordResult completes a scheduled match with one score per player.
	// Authorized for event admins and the match's own players. Completed
	// matches are immutable through this path.
	RecordResult(ctx context.Context, matchID, callerID int, scoresByPlayer map[int]int) (*models.Match, error)
	DeleteMatch(ctx context.Context, matchID, callerID int) error
}

type matchService struct {
	tx        repositories.TxManager
	eventRepo repositories.EventRepository
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	hub       LiveBroadcaster
}

func NewMatchService(
	tx repositories.TxManager,
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	hub LiveBroadcaster,
) MatchService {
	return &matchService{
		tx:        tx,
		eventRepo: eventRepo,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		hub:       hub,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, callerID int, input CreateMatchInput) (*models.Match, error) {
	role, err := roleOf(ctx, s.eventRepo, input.EventID, callerID)
	if err != nil {
		return nil, err
	}
	if role != models.EventRoleAdmin {
		return nil, ErrForbidden
	}
	if input.Round < 1 {
		return nil, ErrInvalidRound
	}
	if input.Player1ID == input.Player2ID {
		return nil, ErrInvalidPlayers
	}

	match := &models.Match{
		EventID:   input.EventID,
		Round:     input.Round,
		Date:      input.Date,
		Status:    models.MatchStatusScheduled,
		Player1ID: input.Player1ID,
		Player2ID: input.Player2ID,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, input.EventID); txErr != nil {
			return txErr
		}

		// Both players must be enrolled at creation time. Later roster
		// removals do not retroactively invalidate the match.
		players, txErr := s.eventRepo.ListPlayers(ctx, exec, input.EventID)
		if txErr != nil {
			return txErr
		}
		if !containsUser(players, input.Player1ID) || !containsUser(players, input.Player2ID) {
			return ErrInvalidPlayers
		}

		return s.matchRepo.Create(ctx, exec, match)
	})
	if err != nil {
		return nil, s.mapMatchError(err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(eventRoomID(match.EventID), LiveMessage{Type: "MATCH_CREATED", Payload: match})
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, s.mapMatchError(err)
	}
	s.populatePlayers(ctx, match)
	return match, nil
}

func (s *matchService) RecordResult(ctx context.Context, matchID, callerID int, scoresByPlayer map[int]int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, s.mapMatchError(err)
	}

	role, err := roleOf(ctx, s.eventRepo, match.EventID, callerID)
	if err != nil {
		return nil, err
	}
	isParticipant := callerID == match.Player1ID || callerID == match.Player2ID
	if role != models.EventRoleAdmin && !isParticipant {
		return nil, ErrForbidden
	}

	p1Score, p2Score, err := scoresForMatch(match, scoresByPlayer)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, match.EventID); txErr != nil {
			return txErr
		}

		// Re-read under the lock: a concurrent submission may have
		// completed the match after the unlocked fetch above.
		current, txErr := s.matchRepo.GetByID(ctx, exec, matchID)
		if txErr != nil {
			return txErr
		}
		if current.Status == models.MatchStatusCompleted {
			return ErrAlreadyCompleted
		}

		return s.matchRepo.UpdateResult(ctx, exec, matchID, p1Score, p2Score)
	})
	if err != nil {
		return nil, s.mapMatchError(err)
	}

	match.Player1Score = &p1Score
	match.Player2Score = &p2Score
	match.Status = models.MatchStatusCompleted

	if s.hub != nil {
		s.hub.BroadcastToRoom(eventRoomID(match.EventID), LiveMessage{Type: "MATCH_RESULT_RECORDED", Payload: match})
	}
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, matchID, callerID int) error {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return s.mapMatchError(err)
	}

	role, err := roleOf(ctx, s.eventRepo, match.EventID, callerID)
	if err != nil {
		return err
	}
	if role != models.EventRoleAdmin {
		return ErrForbidden
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.eventRepo.LockForUpdate(ctx, exec, match.EventID); txErr != nil {
			return txErr
		}
		return s.matchRepo.Delete(ctx, exec, matchID)
	})
	if err != nil {
		return s.mapMatchError(err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(eventRoomID(match.EventID), LiveMessage{Type: "MATCH_DELETED", Payload: matchID})
	}
	return nil
}

// scoresForMatch validates that the submission holds exactly one
// non-negative score for each of the match's two players.
func scoresForMatch(match *models.Match, scoresByPlayer map[int]int) (p1Score, p2Score int, err error) {
	if len(scoresByPlayer) != 2 {
		return 0, 0, ErrInvalidScores
	}
	p1Score, ok1 := scoresByPlayer[match.Player1ID]
	p2Score, ok2 := scoresByPlayer[match.Player2ID]
	if !ok1 || !ok2 {
		return 0, 0, ErrInvalidScores
	}
	if p1Score < 0 || p2Score < 0 {
		return 0, 0, ErrInvalidScores
	}
	return p1Score, p2Score, nil
}

func (s *matchService) populatePlayers(ctx context.Context, match *models.Match) {
	if p1, err := s.userRepo.GetByID(ctx, match.Player1ID); err == nil {
		p1.PasswordHash = ""
		match.Player1 = p1
	}
	if p2, err := s.userRepo.GetByID(ctx, match.Player2ID); err == nil {
		p2.PasswordHash = ""
		match.Player2 = p2
	}
}

func (s *matchService) mapMatchError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return ErrInvalidPlayers
	case err == nil:
		return nil
	default:
		return fmt.Errorf("match operation failed: %w", err)
	}
}
