/*
ledger.go - Wallet ledger operations

PURPOSE:
  The ledger is the source of truth for every wallet; the member's
  WalletBalance column is a cache updated only here, inside the same
  atomic unit as the entry write. At any quiescent point the balance
  equals the sum of Completed entry amounts.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: entries are never edited or deleted once Completed;
     corrections are new offsetting entries
  2. ONE-WAY STATUS: Pending -> Completed or Pending -> Rejected, nothing
     else; the store enforces the guard atomically (MarkEntry)
  3. SAME-UNIT BALANCE: Settle applies the amount to the balance in the
     same unit that flips the status - the ledger never commits on its own

USAGE:
  These functions take the Store they operate on so that, called inside
  TxStore.WithTx, they join the caller's atomic unit:

    err := store.WithTx(ctx, func(s domain.Store) error {
        entry, err := domain.RecordPending(ctx, s, memberID, amount.Neg(),
            domain.KindPayment, "court booking", string(reservationID))
        if err != nil {
            return err
        }
        _, err = domain.Settle(ctx, s, entry.ID)
        return err
    })

  Deposits are the only entries that stay genuinely Pending across a
  human approval step; payments and refunds settle in the same unit.
*/
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RecordPending appends a Pending entry. No balance change happens until
// the entry is settled.
func RecordPending(ctx context.Context, s Store, memberID MemberID, amount decimal.Decimal, kind EntryKind, description, relatedID string) (*LedgerEntry, error) {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return nil, err
	}

	entry := LedgerEntry{
		ID:          EntryID(NewID()),
		MemberID:    memberID,
		Amount:      amount,
		Kind:        kind,
		Status:      EntryPending,
		Description: description,
		RelatedID:   relatedID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Settle moves a Pending entry to Completed and applies its amount to the
// owner's balance, returning the new balance. Debits also feed the
// TotalSpent accumulator. Fails with ErrInvalidTransition when the entry
// is not Pending, so a second settle can never double-apply.
func Settle(ctx context.Context, s Store, id EntryID) (decimal.Decimal, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.MarkEntry(ctx, id, EntryPending, EntryCompleted); err != nil {
		return decimal.Zero, err
	}

	member, err := s.GetMember(ctx, entry.MemberID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := member.WalletBalance.Add(entry.Amount)
	totalSpent := member.TotalSpent
	if entry.Amount.IsNegative() {
		totalSpent = totalSpent.Add(entry.Amount.Neg())
	}
	if err := s.UpdateMemberBalance(ctx, member.ID, newBalance, totalSpent); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Reject moves a Pending entry to Rejected. The balance is untouched and
// the status is terminal.
func Reject(ctx context.Context, s Store, id EntryID) error {
	if _, err := s.GetEntry(ctx, id); err != nil {
		return err
	}
	return s.MarkEntry(ctx, id, EntryPending, EntryRejected)
}
