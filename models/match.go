package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match pairs two distinct users enrolled in the owning event. Scores are
// present iff the match is completed; the winner is derived, never stored.
type Match struct {
	ID           int         `json:"match_id" db:"id"`
	EventID      int         `json:"event_id" db:"event_id"`
	Round        int         `json:"round" db:"round"`
	Date         *time.Time  `json:"date,omitempty" db:"date"`
	Status       MatchStatus `json:"status" db:"status"`
	Player1ID    int         `json:"p1_id" db:"p1_id"`
	Player2ID    int         `json:"p2_id" db:"p2_id"`
	Player1Score *int        `json:"p1_score,omitempty" db:"p1_score"`
	Player2Score *int        `json:"p2_score,omitempty" db:"p2_score"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	// Optional player details, populated by the service layer.
	Player1 *User `json:"player1,omitempty" db:"-"`
	Player2 *User `json:"player2,omitempty" db:"-"`
}

// WinnerID returns the user id of the winning player, or nil for a tie or a
// match that has not been completed yet.
func (m *Match) WinnerID() *int {
	if m.Status != MatchStatusCompleted || m.Player1Score == nil || m.Player2Score == nil {
		return nil
	}
	switch {
	case *m.Player1Score > *m.Player2Score:
		return &m.Player1ID
	case *m.Player2Score > *m.Player1Score:
		return &m.Player2ID
	default:
		return nil
	}
}
