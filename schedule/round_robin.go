package schedule

import "errors"

var ErrInsufficientPlayers = errors.New("not enough players to generate a schedule (min 2 required)")

// byeSlot marks the synthetic slot added for an odd player count. Real user
// ids are always positive.
const byeSlot = 0

// Pairing is one generated match slot: two distinct players meeting in a
// given 1-based round.
type Pairing struct {
	Round     int
	Player1ID int
	Player2ID int
}

// GenerateRoundRobin produces a complete single round-robin for the given
// players using the circle method: player 0 stays fixed while the remaining
// players rotate one position each round, and position i is paired with
// position n-1-i. Every unordered pair of distinct players meets exactly
// once, no player appears twice within a round, and a player paired with the
// bye slot simply sits the round out.
func GenerateRoundRobin(playerIDs []int) ([]Pairing, error) {
	if len(playerIDs) < 2 {
		return nil, ErrInsufficientPlayers
	}

	ids := make([]int, len(playerIDs))
	copy(ids, playerIDs)
	if len(ids)%2 != 0 {
		ids = append(ids, byeSlot)
	}

	n := len(ids)
	rounds := n - 1
	pairings := make([]Pairing, 0, n*rounds/2)

	for round := 1; round <= rounds; round++ {
		for i := 0; i < n/2; i++ {
			p1 := ids[i]
			p2 := ids[n-1-i]
			if p1 == byeSlot || p2 == byeSlot {
				continue
			}
			pairings = append(pairings, Pairing{Round: round, Player1ID: p1, Player2ID: p2})
		}

		// Rotate everything except the fixed first position.
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}

	return pairings, nil
}
