package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/store/memory"
)

func seedMember(t *testing.T, store domain.Store, id string) {
	require.NoError(t, store.SaveMember(context.Background(), domain.Member{
		ID:       domain.MemberID(id),
		FullName: "Member " + id,
		Tier:     domain.TierStandard,
		Active:   true,
		JoinedAt: time.Now().UTC(),
	}))
}

// The in-memory store must show the same transactional behavior as the
// SQLite one, since tests lean on it as a drop-in.

func TestWithTx_ErrorRestoresState(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedMember(t, store, "m1")

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx domain.Store) error {
		if err := tx.AppendEntry(ctx, domain.LedgerEntry{
			ID:        "e1",
			MemberID:  "m1",
			Amount:    domain.MustMoney("100"),
			Kind:      domain.KindDeposit,
			Status:    domain.EntryPending,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetEntry(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestMarkEntry_Guard(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedMember(t, store, "m1")

	require.NoError(t, store.AppendEntry(ctx, domain.LedgerEntry{
		ID:        "e1",
		MemberID:  "m1",
		Amount:    domain.MustMoney("100"),
		Kind:      domain.KindDeposit,
		Status:    domain.EntryPending,
		CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.MarkEntry(ctx, "e1", domain.EntryPending, domain.EntryCompleted))
	assert.ErrorIs(t, store.MarkEntry(ctx, "e1", domain.EntryPending, domain.EntryCompleted), domain.ErrInvalidTransition)
}

func TestUpdateReservation_VersionConflict(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedMember(t, store, "m1")
	require.NoError(t, store.SaveCourt(ctx, domain.Court{
		ID: "c1", Name: "Court", PricePerHour: domain.MustMoney("100"),
		Active: true, CreatedAt: time.Now().UTC(),
	}))

	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveReservation(ctx, domain.Reservation{
		ID:         "r1",
		CourtID:    "c1",
		MemberID:   "m1",
		Slot:       domain.NewInterval(start, start.Add(time.Hour)),
		TotalPrice: domain.MustMoney("100"),
		Status:     domain.ReservationConfirmed,
		CreatedAt:  time.Now().UTC(),
	}))

	first, err := store.GetMemberReservation(ctx, "m1", "r1")
	require.NoError(t, err)
	stale, err := store.GetMemberReservation(ctx, "m1", "r1")
	require.NoError(t, err)

	first.Status = domain.ReservationCancelled
	require.NoError(t, store.UpdateReservation(ctx, *first))

	stale.Status = domain.ReservationCompleted
	assert.ErrorIs(t, store.UpdateReservation(ctx, *stale), domain.ErrConcurrentModification)
}

func TestAddParticipant_Duplicate(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seedMember(t, store, "m1")
	require.NoError(t, store.SaveTournament(ctx, domain.Tournament{
		ID: "t1", Name: "Open",
		StartDate: time.Now().UTC(), EndDate: time.Now().UTC().Add(time.Hour),
		EntryFee: domain.MustMoney("0"), PrizePool: domain.MustMoney("0"),
		Status: domain.TournamentOpen, CreatedAt: time.Now().UTC(),
	}))

	p := domain.TournamentParticipant{TournamentID: "t1", MemberID: "m1", JoinedAt: time.Now().UTC()}
	require.NoError(t, store.AddParticipant(ctx, p))
	assert.ErrorIs(t, store.AddParticipant(ctx, p), domain.ErrDuplicateJoin)
}
