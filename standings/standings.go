// Package standings derives a ranked leaderboard from an event's completed
// matches. The derivation is pure: it holds no state of its own and is
// recomputed from current data on every call, so deletions and roster
// changes are reflected immediately.
package standings

import (
	"sort"

	"github.com/jmc5391/tabletoptracker/models"
)

// Compute builds one leaderboard row per currently enrolled player. Players
// without any completed match get a zero row. Completed matches involving a
// player who has since been removed from the roster still exist as matches
// but contribute nothing to the board.
//
// Order: wins descending, then total points scored descending, then display
// name ascending (user id as the final disambiguator, so the order is a
// total one). Ranks are strict sequential 1-based positions in that order.
func Compute(players []models.User, matches []*models.Match) []models.Standing {
	rows := make([]models.Standing, len(players))
	index := make(map[int]*models.Standing, len(players))
	for i, p := range players {
		rows[i] = models.Standing{UserID: p.ID, Name: p.Name}
		index[p.ID] = &rows[i]
	}

	for _, m := range matches {
		if m == nil || m.Status != models.MatchStatusCompleted || m.Player1Score == nil || m.Player2Score == nil {
			continue
		}
		winnerID := m.WinnerID()
		tally(index, m.Player1ID, *m.Player1Score, winnerID)
		tally(index, m.Player2ID, *m.Player2Score, winnerID)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].UserID < rows[j].UserID
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func tally(index map[int]*models.Standing, userID, score int, winnerID *int) {
	row, ok := index[userID]
	if !ok {
		return
	}
	row.GamesPlayed++
	row.Points += score
	switch {
	case winnerID == nil:
		row.Ties++
	case *winnerID == userID:
		row.Wins++
	default:
		row.Losses++
	}
}
