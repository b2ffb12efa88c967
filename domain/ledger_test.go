package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedMember(t *testing.T, store domain.Store, id string, balance string) domain.Member {
	member := domain.Member{
		ID:            domain.MemberID(id),
		FullName:      "Member " + id,
		WalletBalance: domain.MustMoney(balance),
		Tier:          domain.TierStandard,
		Active:        true,
		JoinedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.SaveMember(context.Background(), member))
	return member
}

// =============================================================================
// SETTLEMENT TESTS
// =============================================================================

func TestLedger_Settle_AppliesAmountOnce(t *testing.T) {
	// GIVEN: A member with 100.00 and a Pending payment of -40.00
	// WHEN: Settling the entry
	// THEN: Balance drops to 60.00 and TotalSpent records 40.00

	store := newTestStore(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "100.00")

	entry, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("-40.00"), domain.KindPayment, "court booking", "")
	require.NoError(t, err)

	newBalance, err := domain.Settle(ctx, store, entry.ID)
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(domain.MustMoney("60.00")), "got %s", newBalance)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("60.00")))
	assert.True(t, member.TotalSpent.Equal(domain.MustMoney("40.00")))
}

func TestLedger_Settle_Twice_SecondFails(t *testing.T) {
	// GIVEN: A settled deposit of 50.00
	// WHEN: Settling the same entry again
	// THEN: The second settle fails and the balance is credited once

	store := newTestStore(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "0.00")

	entry, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("50.00"), domain.KindDeposit, "top up", "")
	require.NoError(t, err)

	_, err = domain.Settle(ctx, store, entry.ID)
	require.NoError(t, err)

	_, err = domain.Settle(ctx, store, entry.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.Equal(domain.MustMoney("50.00")), "credited exactly once, got %s", member.WalletBalance)
}

func TestLedger_Settle_CreditDoesNotFeedTotalSpent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "10.00")

	entry, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("25.00"), domain.KindRefund, "cancellation refund", "")
	require.NoError(t, err)
	_, err = domain.Settle(ctx, store, entry.ID)
	require.NoError(t, err)

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.TotalSpent.IsZero(), "refunds are not spending")
}

func TestLedger_Reject_LeavesBalanceUntouched(t *testing.T) {
	// GIVEN: A Pending deposit
	// WHEN: Rejecting it
	// THEN: Balance is unchanged and the entry cannot be settled later

	store := newTestStore(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "0.00")

	entry, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("500.00"), domain.KindDeposit, "top up", "")
	require.NoError(t, err)

	require.NoError(t, domain.Reject(ctx, store, entry.ID))

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, member.WalletBalance.IsZero())

	_, err = domain.Settle(ctx, store, entry.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "rejected is terminal")
}

func TestLedger_RecordPending_UnknownMember(t *testing.T) {
	store := newTestStore(t)

	_, err := domain.RecordPending(context.Background(), store, "ghost", domain.MustMoney("10.00"), domain.KindDeposit, "", "")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

// =============================================================================
// BALANCE RECONCILIATION
// =============================================================================

func TestLedger_BalanceEqualsCompletedSum(t *testing.T) {
	// GIVEN: A mix of settled, pending, and rejected entries
	// WHEN: Comparing the cached balance against the ledger
	// THEN: Balance equals the sum of Completed amounts only

	store := newTestStore(t)
	ctx := context.Background()
	seedMember(t, store, "m1", "0.00")

	deposit, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("200.00"), domain.KindDeposit, "", "")
	require.NoError(t, err)
	_, err = domain.Settle(ctx, store, deposit.ID)
	require.NoError(t, err)

	payment, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("-75.50"), domain.KindPayment, "", "")
	require.NoError(t, err)
	_, err = domain.Settle(ctx, store, payment.ID)
	require.NoError(t, err)

	// Pending and rejected entries must not count.
	_, err = domain.RecordPending(ctx, store, "m1", domain.MustMoney("999.00"), domain.KindDeposit, "", "")
	require.NoError(t, err)
	rejected, err := domain.RecordPending(ctx, store, "m1", domain.MustMoney("888.00"), domain.KindDeposit, "", "")
	require.NoError(t, err)
	require.NoError(t, domain.Reject(ctx, store, rejected.ID))

	member, err := store.GetMember(ctx, "m1")
	require.NoError(t, err)
	sum, err := store.CompletedSum(ctx, "m1")
	require.NoError(t, err)

	assert.True(t, member.WalletBalance.Equal(sum), "balance %s vs ledger sum %s", member.WalletBalance, sum)
	assert.True(t, sum.Equal(domain.MustMoney("124.50")))
}
