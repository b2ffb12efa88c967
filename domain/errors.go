/*
errors.go - Error taxonomy for the club engine

PURPOSE:
  All domain error types in one place. Callers classify with errors.Is /
  errors.As; the API layer maps every error to a stable machine code via
  CodeOf.

ERROR CATEGORIES:
  1. Input errors    - malformed requests, out-of-range amounts
  2. Not-found       - missing member/court/reservation/entry/tournament
  3. Domain rules    - insufficient funds, slot conflicts, duplicate joins,
                       invalid state transitions
  4. Concurrency     - optimistic-lock and store-level conflicts (the only
                       retryable kind)

SEE ALSO:
  - ledger.go: raises ErrInvalidTransition on bad settles
  - booking:   raises SlotConflictError with the conflicting interval
*/
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRequest is returned for malformed input (start >= end,
	// start in the past, bad player range). Never retryable.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when a deposit amount falls outside the
	// configured range.
	ErrInvalidAmount = errors.New("invalid amount")

	ErrMemberNotFound       = errors.New("member not found")
	ErrCourtNotFound        = errors.New("court not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrEntryNotFound        = errors.New("ledger entry not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchRequestNotFound = errors.New("match request not found")

	// ErrInsufficientFunds is returned when a debit exceeds the wallet
	// balance. Wrapped by InsufficientFundsError with amounts.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSlotConflict is returned when a proposed reservation overlaps a
	// non-cancelled one. Retryable: the caller may pick another slot or
	// retry after a transient commit conflict.
	ErrSlotConflict = errors.New("slot conflict")

	// ErrDuplicateJoin is returned when a member joins a tournament or
	// match request twice.
	ErrDuplicateJoin = errors.New("already joined")

	// ErrAlreadyCancelled is returned when cancelling a reservation that
	// is already cancelled.
	ErrAlreadyCancelled = errors.New("already cancelled")

	// ErrInvalidTransition is returned for any status move not in the
	// entity's transition table (settling a non-pending entry, approving
	// twice, generating a schedule on a non-open tournament, ...).
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrPermissionDenied is returned when the caller's role set lacks the
	// capability an operation requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConcurrentModification is returned when an optimistic version
	// check fails. Retryable.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrRequestFull is returned when joining a match request at capacity.
	ErrRequestFull = errors.New("match request is full")

	// ErrNotParticipant is returned when leaving a match request the
	// member never joined.
	ErrNotParticipant = errors.New("not a participant")

	// ErrCreatorCannotLeave is returned when a creator tries to leave
	// their own match request instead of cancelling it.
	ErrCreatorCannotLeave = errors.New("creator cannot leave own request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for the caller
// =============================================================================

// InsufficientFundsError reports a balance shortage. Message amounts are
// grouped for humans; the decimal fields carry the exact values.
type InsufficientFundsError struct {
	MemberID  MemberID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s",
		FormatMoney(e.Requested), FormatMoney(e.Available))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// SlotConflictError names the interval that blocked a reservation.
type SlotConflictError struct {
	CourtID  CourtID
	Existing Interval
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("court already reserved %s - %s",
		e.Existing.Start.Format("2006-01-02 15:04"), e.Existing.End.Format("15:04"))
}

func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }

// InvalidTransitionError reports a rejected status move.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition %s -> %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// MACHINE CODES - Stable codes for API consumers
// =============================================================================

type ErrorCode string

const (
	CodeInvalidRequest    ErrorCode = "invalid_request"
	CodeInvalidAmount     ErrorCode = "invalid_amount"
	CodeNotFound          ErrorCode = "not_found"
	CodeInsufficientFunds ErrorCode = "insufficient_funds"
	CodeSlotConflict      ErrorCode = "slot_conflict"
	CodeDuplicateJoin     ErrorCode = "duplicate_join"
	CodeAlreadyCancelled  ErrorCode = "already_cancelled"
	CodeInvalidState      ErrorCode = "invalid_state"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeConflict          ErrorCode = "conflict"
	CodeInternal          ErrorCode = "internal"
)

// CodeOf maps any error to its stable machine code.
func CodeOf(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrSlotConflict):
		return CodeSlotConflict
	case errors.Is(err, ErrDuplicateJoin):
		return CodeDuplicateJoin
	case errors.Is(err, ErrAlreadyCancelled):
		return CodeAlreadyCancelled
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrRequestFull),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrCreatorCannotLeave):
		return CodeInvalidState
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrConcurrentModification):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsRetryable reports whether the operation might succeed if replayed.
// Only slot conflicts and store-level concurrency conflicts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSlotConflict) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsNotFound reports whether the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrCourtNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrTournamentNotFound) ||
		errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrMatchRequestNotFound)
}

// IsClientError reports whether the failure is the caller's to fix.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrDuplicateJoin) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrInvalidTransition) ||
		IsNotFound(err)
}

// =============================================================================
// MONEY FORMATTING
// =============================================================================

// FormatMoney renders an amount with thousands separators for human-facing
// messages. The exact decimal always travels alongside in structured form.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(MoneyScale)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fracPart != "" && strings.Trim(fracPart, "0") != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
