/*
bracket.go - First-round knockout bracket generation

PURPOSE:
  Turns a participant list into round-one matches of a single-elimination
  bracket. The bracket is sized to the next power of two; unfilled slots
  are nil sides (byes).

SHAPE:
  5 participants -> bracket of 8 -> 4 matches, 3 empty slots spread over
  the tail matches. Pairing is (seed i, seed i + size/2) over the
  shuffled order, which keeps byes from piling into a single match.
*/
package tournament

import (
	"math/rand"

	"github.com/pcm/club-engine/domain"
)

// bracketSize returns the smallest power of two >= n, minimum 2.
func bracketSize(n int) int {
	size := 2
	for size < n {
		size *= 2
	}
	return size
}

// FirstRound shuffles the participants uniformly and pairs them into
// size/2 matches. A nil side is a bye.
func FirstRound(tournamentID domain.TournamentID, participants []domain.MemberID, rng *rand.Rand) []domain.Match {
	shuffled := make([]domain.MemberID, len(participants))
	copy(shuffled, participants)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	size := bracketSize(len(shuffled))
	slots := make([]*domain.MemberID, size)
	for i := range shuffled {
		id := shuffled[i]
		slots[i] = &id
	}

	matches := make([]domain.Match, 0, size/2)
	for i := 0; i < size/2; i++ {
		matches = append(matches, domain.Match{
			ID:           domain.MatchID(domain.NewID()),
			TournamentID: tournamentID,
			Round:        "Round 1",
			Side1:        slots[i],
			Side2:        slots[i+size/2],
			Winner:       domain.WinnerNone,
			Status:       domain.MatchScheduled,
		})
	}
	return matches
}
