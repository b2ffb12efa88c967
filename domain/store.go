/*
store.go - Persistence contracts for the club engine

PURPOSE:
  Defines the interfaces between the workflows and the database. Workflows
  never touch SQL; they compose these store operations inside an atomic
  unit obtained from TxStore.WithTx.

ATOMIC UNITS:
  Every money-plus-state operation (book, cancel, approve, join) runs
  inside WithTx. The function receives a Store view scoped to one database
  transaction: if it returns an error the whole unit rolls back, leaving
  no half-applied ledger/reservation pair behind. Implementations must
  make the conflict-detection read (FindOverlap) and the following insert
  indivisible with respect to concurrent units - a plain read-then-write
  without such a guard reintroduces the double-booking race.

IMPLEMENTATIONS:
  - store/sqlite: production store, single writer held for the unit
  - store/memory: in-memory store for workflow tests

SEE ALSO:
  - ledger.go: RecordPending/Settle/Reject built on LedgerStore
*/
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PER-ENTITY STORES
// =============================================================================

type MemberStore interface {
	// SaveMember inserts a new member.
	SaveMember(ctx context.Context, m Member) error

	// GetMember returns a member or ErrMemberNotFound.
	GetMember(ctx context.Context, id MemberID) (*Member, error)

	// UpdateMemberBalance writes the denormalized balance and spent
	// accumulator. Only the ledger calls this, inside an atomic unit.
	UpdateMemberBalance(ctx context.Context, id MemberID, balance, totalSpent decimal.Decimal) error

	ListMembers(ctx context.Context) ([]Member, error)
}

type CourtStore interface {
	SaveCourt(ctx context.Context, c Court) error

	// GetCourt returns a court or ErrCourtNotFound.
	GetCourt(ctx context.Context, id CourtID) (*Court, error)

	// ListCourts returns courts, optionally active ones only.
	ListCourts(ctx context.Context, activeOnly bool) ([]Court, error)
}

type LedgerStore interface {
	// AppendEntry inserts a ledger entry. Entries are append-only: there
	// is no update beyond the guarded status move below, and no delete.
	AppendEntry(ctx context.Context, e LedgerEntry) error

	// GetEntry returns an entry or ErrEntryNotFound.
	GetEntry(ctx context.Context, id EntryID) (*LedgerEntry, error)

	// MarkEntry moves an entry from one status to another. The move is
	// guarded: if the stored status is not `from`, the store returns
	// ErrInvalidTransition and writes nothing.
	MarkEntry(ctx context.Context, id EntryID, from, to EntryStatus) error

	// EntriesByMember returns a member's history, newest first.
	EntriesByMember(ctx context.Context, id MemberID) ([]LedgerEntry, error)

	// PendingDeposits returns the admin approval queue, oldest first.
	PendingDeposits(ctx context.Context) ([]LedgerEntry, error)

	// CompletedSum returns the sum of Completed entry amounts for a
	// member - the value the wallet balance must equal at quiescence.
	CompletedSum(ctx context.Context, id MemberID) (decimal.Decimal, error)
}

type ReservationStore interface {
	SaveReservation(ctx context.Context, r Reservation) error

	// GetMemberReservation loads a reservation scoped to its owner;
	// ErrReservationNotFound if absent or owned by someone else.
	GetMemberReservation(ctx context.Context, memberID MemberID, id ReservationID) (*Reservation, error)

	// UpdateReservation writes status changes with an optimistic version
	// check: the stored row must still carry r.Version, which is bumped
	// on success. A stale version yields ErrConcurrentModification.
	UpdateReservation(ctx context.Context, r Reservation) error

	// FindOverlap returns a non-cancelled reservation on the court whose
	// [start,end) intersects iv, or nil. Must be called inside the same
	// atomic unit as the insert it protects.
	FindOverlap(ctx context.Context, courtID CourtID, iv Interval) (*Reservation, error)

	// ReservationsByMember returns a member's bookings, newest start first.
	ReservationsByMember(ctx context.Context, id MemberID) ([]Reservation, error)

	// ReservationsInWindow returns non-cancelled reservations across all
	// courts whose slot falls inside [from, to), for calendar rendering.
	ReservationsInWindow(ctx context.Context, iv Interval) ([]Reservation, error)
}

type TournamentStore interface {
	SaveTournament(ctx context.Context, t Tournament) error

	// GetTournament returns a tournament or ErrTournamentNotFound.
	GetTournament(ctx context.Context, id TournamentID) (*Tournament, error)

	// UpdateTournament writes status/prize-pool changes.
	UpdateTournament(ctx context.Context, t Tournament) error

	ListTournaments(ctx context.Context) ([]Tournament, error)

	// AddParticipant inserts a join row; ErrDuplicateJoin when the
	// (tournament, member) pair already exists.
	AddParticipant(ctx context.Context, p TournamentParticipant) error

	Participants(ctx context.Context, id TournamentID) ([]TournamentParticipant, error)

	// SaveMatches inserts a generated round as one batch.
	SaveMatches(ctx context.Context, matches []Match) error

	// GetMatch returns a match or ErrMatchNotFound.
	GetMatch(ctx context.Context, id MatchID) (*Match, error)

	UpdateMatch(ctx context.Context, m Match) error

	MatchesByTournament(ctx context.Context, id TournamentID) ([]Match, error)
}

type MatchRequestStore interface {
	SaveMatchRequest(ctx context.Context, r MatchRequest) error

	// GetMatchRequest returns a request or ErrMatchRequestNotFound.
	GetMatchRequest(ctx context.Context, id MatchRequestID) (*MatchRequest, error)

	// UpdateMatchRequestStatus writes a status change.
	UpdateMatchRequestStatus(ctx context.Context, id MatchRequestID, status MatchRequestStatus) error

	// AddMatchRequestParticipant inserts a join row; ErrDuplicateJoin when
	// the member already joined.
	AddMatchRequestParticipant(ctx context.Context, p MatchRequestParticipant) error

	// RemoveMatchRequestParticipant deletes a join row; ErrNotParticipant
	// when there is nothing to delete.
	RemoveMatchRequestParticipant(ctx context.Context, id MatchRequestID, memberID MemberID) error

	MatchRequestParticipants(ctx context.Context, id MatchRequestID) ([]MatchRequestParticipant, error)

	// ListMatchRequests returns requests with the given status (all when
	// status is empty), newest first.
	ListMatchRequests(ctx context.Context, status MatchRequestStatus) ([]MatchRequest, error)
}

// =============================================================================
// COMPOSED STORE + TRANSACTIONS
// =============================================================================

// Store is the full persistence surface the workflows see.
type Store interface {
	MemberStore
	CourtStore
	LedgerStore
	ReservationStore
	TournamentStore
	MatchRequestStore
}

// TxStore adds the atomic-unit facility.
type TxStore interface {
	Store

	// WithTx executes fn against a transaction-scoped Store. If fn
	// returns an error the transaction rolls back and the error is
	// returned unchanged; otherwise the transaction commits.
	// Implementations serialize conflicting units so that a conflict
	// check and its following insert are indivisible.
	WithTx(ctx context.Context, fn func(Store) error) error
}
