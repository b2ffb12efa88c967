package tournament_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
	"github.com/pcm/club-engine/store/sqlite"
	"github.com/pcm/club-engine/tournament"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*tournament.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := tournament.NewService(store, events.NopPublisher{}).
		WithRand(rand.New(rand.NewSource(42)))
	return svc, store
}

func seedMember(t *testing.T, store domain.Store, id, balance string) {
	require.NoError(t, store.SaveMember(context.Background(), domain.Member{
		ID:            domain.MemberID(id),
		FullName:      "Member " + id,
		WalletBalance: domain.MustMoney(balance),
		Tier:          domain.TierStandard,
		Active:        true,
		JoinedAt:      time.Now().UTC(),
	}))
}

func openTournament(t *testing.T, svc *tournament.Service, fee, seed string) *domain.Tournament {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	tn, err := svc.Create(context.Background(), "Spring Open", start, start.Add(48*time.Hour),
		domain.MustMoney(fee), domain.MustMoney(seed))
	require.NoError(t, err)
	return tn
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, "", start, start.Add(time.Hour), domain.MustMoney("100"), domain.MustMoney("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "missing name")

	_, err = svc.Create(ctx, "Open", start, start.Add(-time.Hour), domain.MustMoney("100"), domain.MustMoney("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "end before start")

	_, err = svc.Create(ctx, "Open", start, start.Add(time.Hour), domain.MustMoney("-100"), domain.MustMoney("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "negative fee")
}

func TestCreate_PrizePoolStartsAtSeed(t *testing.T) {
	svc, _ := newTestService(t)
	tn := openTournament(t, svc, "100000", "250000")

	assert.Equal(t, domain.TournamentOpen, tn.Status)
	assert.True(t, tn.PrizePool.Equal(domain.MustMoney("250000")))
}

// =============================================================================
// JOIN TESTS
// =============================================================================

func TestJoin_DebitsFeeIntoPrizePool(t *testing.T) {
	// GIVEN: An open tournament with a 100000 fee and a 250000 seed
	// WHEN: Two members join
	// THEN: Each pays once and the pool reaches 450000

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "150000")
	seedMember(t, store, "m2", "150000")
	tn := openTournament(t, svc, "100000", "250000")

	require.NoError(t, svc.Join(ctx, tn.ID, "m1"))
	require.NoError(t, svc.Join(ctx, tn.ID, "m2"))

	updated, err := store.GetTournament(ctx, tn.ID)
	require.NoError(t, err)
	assert.True(t, updated.PrizePool.Equal(domain.MustMoney("450000")), "got %s", updated.PrizePool)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("50000")))

	participants, err := store.Participants(ctx, tn.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
	assert.True(t, participants[0].FeePaid)
}

func TestJoin_Twice_Rejected(t *testing.T) {
	// GIVEN: A member already registered
	// WHEN: Joining again
	// THEN: ErrDuplicateJoin; charged only once

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "300000")
	tn := openTournament(t, svc, "100000", "0")

	require.NoError(t, svc.Join(ctx, tn.ID, "m1"))
	err := svc.Join(ctx, tn.ID, "m1")
	assert.ErrorIs(t, err, domain.ErrDuplicateJoin)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("200000")), "fee taken once, got %s", member.WalletBalance)

	updated, err := store.GetTournament(ctx, tn.ID)
	require.NoError(t, err)
	assert.True(t, updated.PrizePool.Equal(domain.MustMoney("100000")))
}

func TestJoin_InsufficientFunds_NothingHappens(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "50000")
	tn := openTournament(t, svc, "100000", "0")

	err := svc.Join(ctx, tn.ID, "m1")
	var fundsErr *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)

	participants, err := store.Participants(ctx, tn.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)

	updated, err := store.GetTournament(ctx, tn.ID)
	require.NoError(t, err)
	assert.True(t, updated.PrizePool.IsZero())
}

func TestJoin_FreeTournament_NoLedgerEntry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "0")
	tn := openTournament(t, svc, "0", "500000")

	require.NoError(t, svc.Join(ctx, tn.ID, "m1"))

	entries, err := store.EntriesByMember(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, entries, "a zero fee moves no money")
}

func TestJoin_AfterScheduleGenerated_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "100000")
	seedMember(t, store, "m2", "100000")
	seedMember(t, store, "m3", "100000")
	tn := openTournament(t, svc, "0", "0")

	require.NoError(t, svc.Join(ctx, tn.ID, "m1"))
	require.NoError(t, svc.Join(ctx, tn.ID, "m2"))
	_, err := svc.GenerateSchedule(ctx, tn.ID)
	require.NoError(t, err)

	err = svc.Join(ctx, tn.ID, "m3")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "entries close when play starts")
}

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

func TestGenerateSchedule_FiveEntrants(t *testing.T) {
	// GIVEN: Five participants
	// WHEN: Generating the first round
	// THEN: A bracket of 8 yields 4 matches holding all 5 entrants once;
	//       the 3 empty sides are byes

	svc, store := newTestService(t)
	ctx := context.Background()
	tn := openTournament(t, svc, "0", "0")
	members := []string{"m1", "m2", "m3", "m4", "m5"}
	for _, id := range members {
		seedMember(t, store, id, "0")
		require.NoError(t, svc.Join(ctx, tn.ID, domain.MemberID(id)))
	}

	matches, err := svc.GenerateSchedule(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, matches, 4)

	seen := make(map[domain.MemberID]int)
	byes := 0
	for _, m := range matches {
		assert.Equal(t, "Round 1", m.Round)
		assert.Equal(t, domain.MatchScheduled, m.Status)
		assert.Equal(t, domain.WinnerNone, m.Winner)
		for _, side := range []*domain.MemberID{m.Side1, m.Side2} {
			if side == nil {
				byes++
			} else {
				seen[*side]++
			}
		}
	}
	assert.Equal(t, 3, byes)
	assert.Len(t, seen, 5, "every entrant placed")
	for id, n := range seen {
		assert.Equal(t, 1, n, "entrant %s placed once", id)
	}

	updated, err := store.GetTournament(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TournamentOngoing, updated.Status)
}

func TestGenerateSchedule_PowerOfTwo_NoByes(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tn := openTournament(t, svc, "0", "0")
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		seedMember(t, store, id, "0")
		require.NoError(t, svc.Join(ctx, tn.ID, domain.MemberID(id)))
	}

	matches, err := svc.GenerateSchedule(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotNil(t, m.Side1)
		assert.NotNil(t, m.Side2)
	}
}

func TestGenerateSchedule_TooFewParticipants(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "0")
	tn := openTournament(t, svc, "0", "0")
	require.NoError(t, svc.Join(ctx, tn.ID, "m1"))

	_, err := svc.GenerateSchedule(ctx, tn.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGenerateSchedule_Twice_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	tn := openTournament(t, svc, "0", "0")
	for _, id := range []string{"m1", "m2"} {
		seedMember(t, store, id, "0")
		require.NoError(t, svc.Join(ctx, tn.ID, domain.MemberID(id)))
	}

	_, err := svc.GenerateSchedule(ctx, tn.ID)
	require.NoError(t, err)

	_, err = svc.GenerateSchedule(ctx, tn.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	matches, err := store.MatchesByTournament(ctx, tn.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1, "the first bracket stands")
}

// =============================================================================
// MATCH RESULTS
// =============================================================================

func scheduledMatch(t *testing.T, svc *tournament.Service, store *sqlite.Store) domain.Match {
	ctx := context.Background()
	tn := openTournament(t, svc, "0", "0")
	for _, id := range []string{"m1", "m2"} {
		seedMember(t, store, id, "0")
		require.NoError(t, svc.Join(ctx, tn.ID, domain.MemberID(id)))
	}
	matches, err := svc.GenerateSchedule(ctx, tn.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestRecordResult_DecidesWinner(t *testing.T) {
	svc, store := newTestService(t)
	match := scheduledMatch(t, svc, store)

	updated, err := svc.RecordResult(context.Background(), match.ID, 21, 15)
	require.NoError(t, err)

	assert.Equal(t, 21, updated.Score1)
	assert.Equal(t, 15, updated.Score2)
	assert.Equal(t, domain.WinnerSide1, updated.Winner)
	assert.Equal(t, domain.MatchFinished, updated.Status)
}

func TestRecordResult_Draw_StaysScheduled(t *testing.T) {
	// GIVEN: A scheduled match
	// WHEN: Recording equal scores
	// THEN: No winner; the match stays Scheduled awaiting a real result

	svc, store := newTestService(t)
	match := scheduledMatch(t, svc, store)

	updated, err := svc.RecordResult(context.Background(), match.ID, 10, 10)
	require.NoError(t, err)

	assert.Equal(t, domain.WinnerNone, updated.Winner)
	assert.Equal(t, domain.MatchScheduled, updated.Status)
}

func TestRecordResult_NegativeScores_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	match := scheduledMatch(t, svc, store)

	_, err := svc.RecordResult(context.Background(), match.ID, -1, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestRecordResult_UnknownMatch(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordResult(context.Background(), "missing", 1, 0)
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}
