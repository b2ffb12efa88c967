/*
Package wallet handles deposits and the admin approval workflow.

PURPOSE:
  Members submit deposit requests that sit Pending in the ledger until an
  admin or treasurer approves (balance credited exactly once) or rejects
  them. This is the only flow where a ledger entry stays Pending across a
  human step; bookings and tournament fees settle synchronously.

STATE MACHINE:
  Pending -> Completed   (Approve: balance += amount)
  Pending -> Rejected    (Reject: no balance change)
  Both terminal. A second Approve on a Completed entry fails with
  ErrInvalidTransition instead of double-crediting - the guard lives in
  the store's status move, so concurrent approvals settle at most once.
*/
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
)

func timeNow() time.Time { return time.Now().UTC() }

// =============================================================================
// ROLES AND LIMITS
// =============================================================================

// Role is a caller capability, supplied by the (external) auth layer.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTreasurer Role = "treasurer"
	RoleMember    Role = "member"
)

// CanApproveDeposits reports whether any role in the set may settle
// deposits.
func CanApproveDeposits(roles []Role) bool {
	for _, r := range roles {
		if r == RoleAdmin || r == RoleTreasurer {
			return true
		}
	}
	return false
}

// DepositLimits bounds a single deposit request.
type DepositLimits struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func DefaultDepositLimits() DepositLimits {
	return DepositLimits{
		Min: domain.MustMoney("10000"),
		Max: domain.MustMoney("50000000"),
	}
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store  domain.TxStore
	events events.Publisher
	limits DepositLimits
}

func NewService(store domain.TxStore, publisher events.Publisher) *Service {
	return &Service{
		store:  store,
		events: publisher,
		limits: DefaultDepositLimits(),
	}
}

func (s *Service) WithLimits(l DepositLimits) *Service {
	s.limits = l
	return s
}

// SubmitDeposit records a Pending deposit request. No balance change
// happens until approval.
func (s *Service) SubmitDeposit(ctx context.Context, memberID domain.MemberID, amount decimal.Decimal, proofRef, description string) (*domain.LedgerEntry, error) {
	if amount.LessThan(s.limits.Min) || amount.GreaterThan(s.limits.Max) {
		return nil, fmt.Errorf("%w: deposit must be between %s and %s",
			domain.ErrInvalidAmount, domain.FormatMoney(s.limits.Min), domain.FormatMoney(s.limits.Max))
	}

	if description == "" {
		description = "Deposit request"
	}

	entry := domain.LedgerEntry{
		ID:          domain.EntryID(domain.NewID()),
		MemberID:    memberID,
		Amount:      amount,
		Kind:        domain.KindDeposit,
		Status:      domain.EntryPending,
		Description: description,
		ProofRef:    proofRef,
		CreatedAt:   timeNow(),
	}
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GetMember(ctx, memberID); err != nil {
			return err
		}
		return tx.AppendEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Approve settles a Pending deposit, crediting the owner's balance, then
// notifies that member. Requires an admin or treasurer role.
func (s *Service) Approve(ctx context.Context, entryID domain.EntryID, roles []Role) (*domain.LedgerEntry, error) {
	if !CanApproveDeposits(roles) {
		return nil, domain.ErrPermissionDenied
	}

	var (
		entry      *domain.LedgerEntry
		newBalance decimal.Decimal
	)
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		entry, err = tx.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Kind != domain.KindDeposit {
			return &domain.InvalidTransitionError{
				Entity: "ledger entry",
				From:   string(entry.Kind),
				To:     "approved deposit",
			}
		}
		newBalance, err = domain.Settle(ctx, tx, entryID)
		if err != nil {
			return err
		}
		entry.Status = domain.EntryCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.BalanceChangedEvent{
		MemberID:   entry.MemberID,
		EntryID:    entry.ID,
		Kind:       entry.Kind,
		Amount:     entry.Amount,
		NewBalance: newBalance,
		OccurredAt: entry.CreatedAt,
	})
	return entry, nil
}

// RejectDeposit moves a Pending deposit to Rejected. Terminal, no credit.
func (s *Service) RejectDeposit(ctx context.Context, entryID domain.EntryID, roles []Role) (*domain.LedgerEntry, error) {
	if !CanApproveDeposits(roles) {
		return nil, domain.ErrPermissionDenied
	}

	var entry *domain.LedgerEntry
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		entry, err = tx.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Kind != domain.KindDeposit {
			return &domain.InvalidTransitionError{
				Entity: "ledger entry",
				From:   string(entry.Kind),
				To:     "rejected deposit",
			}
		}
		if err := domain.Reject(ctx, tx, entryID); err != nil {
			return err
		}
		entry.Status = domain.EntryRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// =============================================================================
// READS
// =============================================================================

// BalanceView is the member-facing wallet summary.
type BalanceView struct {
	MemberID   domain.MemberID
	MemberName string
	Balance    decimal.Decimal
	TotalSpent decimal.Decimal
	Tier       domain.MemberTier
}

func (s *Service) Balance(ctx context.Context, memberID domain.MemberID) (*BalanceView, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &BalanceView{
		MemberID:   member.ID,
		MemberName: member.FullName,
		Balance:    member.WalletBalance,
		TotalSpent: member.TotalSpent,
		Tier:       member.Tier,
	}, nil
}

// Transactions returns a member's ledger history, newest first.
func (s *Service) Transactions(ctx context.Context, memberID domain.MemberID) ([]domain.LedgerEntry, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.EntriesByMember(ctx, memberID)
}

// PendingDeposits returns the approval queue, oldest first. Admin only.
func (s *Service) PendingDeposits(ctx context.Context, roles []Role) ([]domain.LedgerEntry, error) {
	if !CanApproveDeposits(roles) {
		return nil, domain.ErrPermissionDenied
	}
	return s.store.PendingDeposits(ctx)
}
