package wallet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
	"github.com/pcm/club-engine/store/sqlite"
	"github.com/pcm/club-engine/wallet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	asAdmin     = []wallet.Role{wallet.RoleAdmin}
	asTreasurer = []wallet.Role{wallet.RoleTreasurer}
	asMember    = []wallet.Role{wallet.RoleMember}
)

func newTestService(t *testing.T) (*wallet.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return wallet.NewService(store, events.NopPublisher{}), store
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

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmitDeposit_StaysPending(t *testing.T) {
	// GIVEN: A member with a zero balance
	// WHEN: Submitting a deposit request
	// THEN: The entry is Pending and the balance is untouched

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("500000.00"), "bank-ref-123", "")
	require.NoError(t, err)

	assert.Equal(t, domain.EntryPending, entry.Status)
	assert.Equal(t, domain.KindDeposit, entry.Kind)
	assert.Equal(t, "bank-ref-123", entry.ProofRef)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.IsZero())
}

func TestSubmitDeposit_AmountOutOfRange(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	_, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("9999.99"), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount, "below minimum")

	_, err = svc.SubmitDeposit(ctx, "m1", domain.MustMoney("50000001"), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount, "above maximum")

	_, err = svc.SubmitDeposit(ctx, "m1", domain.MustMoney("-10000"), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount, "negative")

	entries, err := store.EntriesByMember(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSubmitDeposit_UnknownMember(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SubmitDeposit(context.Background(), "ghost", domain.MustMoney("100000"), "", "")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

// =============================================================================
// APPROVAL TESTS
// =============================================================================

func TestApprove_CreditsBalance(t *testing.T) {
	// GIVEN: A Pending deposit of 500000.00
	// WHEN: A treasurer approves it
	// THEN: The member's balance is credited and the entry is Completed

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("500000.00"), "ref", "")
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, entry.ID, asTreasurer)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryCompleted, approved.Status)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("500000.00")))
	assert.True(t, member.TotalSpent.IsZero(), "deposits are not spending")
}

func TestApprove_Twice_CreditsOnce(t *testing.T) {
	// GIVEN: An approved deposit
	// WHEN: Approving the same entry again
	// THEN: The second approval fails and the balance holds one credit

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("500000.00"), "ref", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, entry.ID, asAdmin)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, entry.ID, asAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("500000.00")), "credited exactly once, got %s", member.WalletBalance)
}

func TestApprove_WithoutRole_Denied(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("500000.00"), "ref", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, entry.ID, asMember)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.Approve(ctx, entry.ID, nil)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestApprove_NonDepositEntry_Rejected(t *testing.T) {
	// Only deposit entries go through the approval queue. Payments and
	// refunds settle synchronously in their own workflows.
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	payment, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("-100.00"), domain.KindPayment, "", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, payment.ID, asAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// =============================================================================
// REJECTION TESTS
// =============================================================================

func TestRejectDeposit_Terminal(t *testing.T) {
	// GIVEN: A rejected deposit
	// WHEN: Trying to approve it afterwards
	// THEN: The approval fails; rejection is final

	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("500000.00"), "ref", "")
	require.NoError(t, err)

	rejected, err := svc.RejectDeposit(ctx, entry.ID, asAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryRejected, rejected.Status)

	_, err = svc.Approve(ctx, entry.ID, asAdmin)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.IsZero())
}

// =============================================================================
// READS
// =============================================================================

func TestPendingDeposits_QueueAndRole(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")
	seedMember(t, store, "m2")

	first, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("100000"), "", "")
	require.NoError(t, err)
	second, err := svc.SubmitDeposit(ctx, "m2", domain.MustMoney("200000"), "", "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID, asAdmin)
	require.NoError(t, err)

	queue, err := svc.PendingDeposits(ctx, asTreasurer)
	require.NoError(t, err)
	require.Len(t, queue, 1, "approved entries leave the queue")
	assert.Equal(t, second.ID, queue[0].ID)

	_, err = svc.PendingDeposits(ctx, asMember)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestBalance_ReflectsMember(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedMember(t, store, "m1")

	entry, err := svc.SubmitDeposit(ctx, "m1", domain.MustMoney("150000"), "", "")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, entry.ID, asAdmin)
	require.NoError(t, err)

	view, err := svc.Balance(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberID("m1"), view.MemberID)
	assert.True(t, view.Balance.Equal(domain.MustMoney("150000")))
}
