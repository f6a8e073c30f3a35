package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairKey(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

func TestGenerateRoundRobin_TooFewPlayers(t *testing.T) {
	for _, ids := range [][]int{nil, {}, {7}} {
		_, err := GenerateRoundRobin(ids)
		assert.ErrorIs(t, err, ErrInsufficientPlayers)
	}
}

func TestGenerateRoundRobin_TwoPlayers(t *testing.T) {
	pairings, err := GenerateRoundRobin([]int{4, 9})
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.Equal(t, 1, pairings[0].Round)
	assert.Equal(t, pairKey(4, 9), pairKey(pairings[0].Player1ID, pairings[0].Player2ID))
}

func TestGenerateRoundRobin_ThreePlayersHasByes(t *testing.T) {
	pairings, err := GenerateRoundRobin([]int{1, 2, 3})
	require.NoError(t, err)

	// 3 players round up to 4 slots: 3 rounds, one pairing each because
	// the other slot pairs with the bye.
	assert.Len(t, pairings, 3)
	rounds := map[int]int{}
	for _, p := range pairings {
		rounds[p.Round]++
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, rounds)
}

func TestGenerateRoundRobin_EveryPairMeetsExactlyOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 8, 9, 16} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ids := make([]int, n)
			for i := range ids {
				ids[i] = 100 + i
			}

			pairings, err := GenerateRoundRobin(ids)
			require.NoError(t, err)
			assert.Len(t, pairings, n*(n-1)/2)

			seen := map[string]int{}
			for _, p := range pairings {
				assert.NotEqual(t, p.Player1ID, p.Player2ID)
				seen[pairKey(p.Player1ID, p.Player2ID)]++
			}
			for key, count := range seen {
				assert.Equal(t, 1, count, "pair %s scheduled %d times", key, count)
			}
			assert.Len(t, seen, n*(n-1)/2)
		})
	}
}

func TestGenerateRoundRobin_NoPlayerTwiceInOneRound(t *testing.T) {
	for _, n := range []int{4, 5, 7, 10} {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}

		pairings, err := GenerateRoundRobin(ids)
		require.NoError(t, err)

		perRound := map[int]map[int]bool{}
		maxRound := 0
		for _, p := range pairings {
			if perRound[p.Round] == nil {
				perRound[p.Round] = map[int]bool{}
			}
			assert.False(t, perRound[p.Round][p.Player1ID], "player %d twice in round %d", p.Player1ID, p.Round)
			assert.False(t, perRound[p.Round][p.Player2ID], "player %d twice in round %d", p.Player2ID, p.Round)
			perRound[p.Round][p.Player1ID] = true
			perRound[p.Round][p.Player2ID] = true
			if p.Round > maxRound {
				maxRound = p.Round
			}
		}

		expectedRounds := n - 1
		if n%2 != 0 {
			expectedRounds = n
		}
		assert.LessOrEqual(t, maxRound, expectedRounds)
	}
}

func TestGenerateRoundRobin_DoesNotMutateInput(t *testing.T) {
	ids := []int{5, 6, 7, 8}
	_, err := GenerateRoundRobin(ids)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7, 8}, ids)
}
