package matchplay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/matchplay"
	"github.com/pcm/club-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*matchplay.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return matchplay.NewService(store), store
}

func seedMember(t *testing.T, store domain.Store, id string) {
	require.NoError(t, store.SaveMember(context.Background(), domain.Member{
		ID:       domain.MemberID(id),
		FullName: "Member " + id,
		Tier:     domain.TierStandard,
		Active:   true,
		JoinedAt: time.Now().UTC(),
	}))
}

func openRequest(t *testing.T, svc *matchplay.Service, creator string, maxPlayers int) *domain.MatchRequest {
	request, err := svc.Create(context.Background(), domain.MemberID(creator), matchplay.CreateParams{
		Title:         "Friendly doubles",
		PlayDate:      time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC),
		StartTime:     "18:00",
		EndTime:       "20:00",
		MaxPlayers:    maxPlayers,
		SkillLevelMin: 2.5,
		SkillLevelMax: 4.0,
	})
	require.NoError(t, err)
	return request
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCreate_AutoJoinsCreator(t *testing.T) {
	// GIVEN: A member posting an open-play request
	// WHEN: Creating it
	// THEN: The request is Open with the creator as its first participant

	svc, store := newTestService(t)
	seedMember(t, store, "m1")

	request := openRequest(t, svc, "m1", 4)
	assert.Equal(t, domain.MatchRequestOpen, request.Status)

	participants, err := store.MatchRequestParticipants(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, domain.MemberID("m1"), participants[0].MemberID)
}

func TestCreate_Validation(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	ctx := context.Background()
	playDate := time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, "m1", matchplay.CreateParams{PlayDate: playDate, MaxPlayers: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "missing title")

	_, err = svc.Create(ctx, "m1", matchplay.CreateParams{Title: "x", PlayDate: playDate, MaxPlayers: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "solo play is not a match")

	_, err = svc.Create(ctx, "m1", matchplay.CreateParams{
		Title: "x", PlayDate: playDate, MaxPlayers: 4,
		SkillLevelMin: 4.0, SkillLevelMax: 2.0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest, "inverted skill range")
}

func TestCreate_UnknownCourt_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")

	missing := domain.CourtID("ghost")
	_, err := svc.Create(context.Background(), "m1", matchplay.CreateParams{
		Title:      "Singles",
		PlayDate:   time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC),
		MaxPlayers: 2,
		CourtID:    &missing,
	})
	assert.ErrorIs(t, err, domain.ErrCourtNotFound)
}

// =============================================================================
// JOIN / LEAVE TESTS
// =============================================================================

func TestJoin_LastSeatFlipsToFull(t *testing.T) {
	// GIVEN: A 3-player request with the creator aboard
	// WHEN: Two more members join
	// THEN: The second join takes the last seat and flips the status

	svc, store := newTestService(t)
	for _, id := range []string{"m1", "m2", "m3"} {
		seedMember(t, store, id)
	}
	request := openRequest(t, svc, "m1", 3)
	ctx := context.Background()

	updated, err := svc.Join(ctx, request.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchRequestOpen, updated.Status)

	updated, err = svc.Join(ctx, request.ID, "m3")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchRequestFull, updated.Status)
}

func TestJoin_FullRequest_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	for _, id := range []string{"m1", "m2", "m3"} {
		seedMember(t, store, id)
	}
	request := openRequest(t, svc, "m1", 2)
	ctx := context.Background()

	_, err := svc.Join(ctx, request.ID, "m2")
	require.NoError(t, err)

	_, err = svc.Join(ctx, request.ID, "m3")
	assert.ErrorIs(t, err, domain.ErrRequestFull)
}

func TestJoin_Twice_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	seedMember(t, store, "m2")
	request := openRequest(t, svc, "m1", 4)
	ctx := context.Background()

	_, err := svc.Join(ctx, request.ID, "m2")
	require.NoError(t, err)

	_, err = svc.Join(ctx, request.ID, "m2")
	assert.ErrorIs(t, err, domain.ErrDuplicateJoin)
}

func TestLeave_ReopensFullRequest(t *testing.T) {
	// GIVEN: A full 2-player request
	// WHEN: The joiner leaves
	// THEN: The request reopens for someone else

	svc, store := newTestService(t)
	for _, id := range []string{"m1", "m2", "m3"} {
		seedMember(t, store, id)
	}
	request := openRequest(t, svc, "m1", 2)
	ctx := context.Background()

	_, err := svc.Join(ctx, request.ID, "m2")
	require.NoError(t, err)

	updated, err := svc.Leave(ctx, request.ID, "m2")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchRequestOpen, updated.Status)

	_, err = svc.Join(ctx, request.ID, "m3")
	assert.NoError(t, err, "freed seat is takeable again")
}

func TestLeave_Creator_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	request := openRequest(t, svc, "m1", 4)

	_, err := svc.Leave(context.Background(), request.ID, "m1")
	assert.ErrorIs(t, err, domain.ErrCreatorCannotLeave)
}

func TestLeave_NonParticipant_Rejected(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	seedMember(t, store, "m2")
	request := openRequest(t, svc, "m1", 4)

	_, err := svc.Leave(context.Background(), request.ID, "m2")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

// =============================================================================
// CANCEL TESTS
// =============================================================================

func TestCancel_ByCreator(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	request := openRequest(t, svc, "m1", 4)
	ctx := context.Background()

	updated, err := svc.Cancel(ctx, request.ID, "m1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchRequestCancelled, updated.Status)

	// Terminal: nobody can join or re-cancel.
	seedMember(t, store, "m2")
	_, err = svc.Join(ctx, request.ID, "m2")
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	_, err = svc.Cancel(ctx, request.ID, "m1", false)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestCancel_ByStranger_Denied(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	seedMember(t, store, "m2")
	request := openRequest(t, svc, "m1", 4)

	_, err := svc.Cancel(context.Background(), request.ID, "m2", false)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCancel_ByAdmin_Allowed(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	seedMember(t, store, "m2")
	request := openRequest(t, svc, "m1", 4)

	updated, err := svc.Cancel(context.Background(), request.ID, "m2", true)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchRequestCancelled, updated.Status)
}

// =============================================================================
// READS
// =============================================================================

func TestList_FiltersByStatus(t *testing.T) {
	svc, store := newTestService(t)
	seedMember(t, store, "m1")
	ctx := context.Background()

	open := openRequest(t, svc, "m1", 4)
	cancelled := openRequest(t, svc, "m1", 4)
	_, err := svc.Cancel(ctx, cancelled.ID, "m1", false)
	require.NoError(t, err)

	requests, err := svc.List(ctx, domain.MatchRequestOpen)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, open.ID, requests[0].ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
