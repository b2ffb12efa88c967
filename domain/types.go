/*
Package domain contains the core types of the club engine.

PURPOSE:
  This package defines the entities shared by every workflow: members with
  a custodial wallet, courts, reservations, ledger entries, tournaments
  with their matches, and open-play match requests. It also defines the
  one-way status transition tables for each stateful entity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: fixed-point decimal, currency minor-unit precision
  - Member: wallet balance denormalized from the ledger
  - LedgerEntry: immutable once Completed (see ledger.go)
  - Reservation: half-open [start, end) court slot with a version token
  - Tournament/Match: Open -> Ongoing -> Finished knockout play
  - MatchRequest: open-play invitations, no money movement

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float64
  2. One-way state machines: transitions outside the table are rejected
  3. Type safety: distinct id types so a CourtID can't be passed as a
     MemberID
  4. Soft deletion only: members and courts are deactivated, not removed

SEE ALSO:
  - ledger.go: the ledger contract keeping balance = sum of entries
  - errors.go: error taxonomy and machine codes
  - interval.go: [start, end) overlap math
*/
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point decimal amounts
// =============================================================================

// MoneyScale is the number of fractional digits carried by all money values.
const MoneyScale = 2

// RoundMoney rounds a computed amount to the currency's minor unit.
// Applied at computation boundaries (price, refund), never to stored values.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// MustMoney parses a decimal string, returning zero on malformed input.
// Intended for constants and test fixtures.
func MustMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	MemberID       string
	CourtID        string
	ReservationID  string
	EntryID        string
	TournamentID   string
	MatchID        string
	MatchRequestID string
)

// NewID returns a fresh unique identifier.
func NewID() string { return uuid.NewString() }

// =============================================================================
// MEMBER - Wallet-holding club account
// =============================================================================

type MemberTier string

const (
	TierStandard MemberTier = "standard"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierDiamond  MemberTier = "diamond"
)

// Member is a club account. WalletBalance is a denormalized cache of the
// sum of Completed ledger entries; it is only ever written inside the same
// atomic unit as the ledger write that changes it.
type Member struct {
	ID            MemberID
	FullName      string
	WalletBalance decimal.Decimal
	TotalSpent    decimal.Decimal // monotonic accumulator of debits
	Tier          MemberTier
	Active        bool
	JoinedAt      time.Time
}

// =============================================================================
// COURT - Bookable resource
// =============================================================================

// Court is administrator-managed. Deactivating a court hides it from new
// reservations without touching historical ones.
type Court struct {
	ID           CourtID
	Name         string
	PricePerHour decimal.Decimal
	Description  string
	Active       bool
	CreatedAt    time.Time
}

// =============================================================================
// LEDGER ENTRY - One immutable money movement
// =============================================================================

type EntryKind string

const (
	KindDeposit EntryKind = "deposit"
	KindPayment EntryKind = "payment"
	KindRefund  EntryKind = "refund"
)

type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryCompleted EntryStatus = "completed"
	EntryRejected  EntryStatus = "rejected"
)

var entryTransitions = map[EntryStatus][]EntryStatus{
	EntryPending: {EntryCompleted, EntryRejected},
	// Completed and Rejected are terminal.
}

// CanTransitionTo reports whether the entry status machine allows the move.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	for _, allowed := range entryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LedgerEntry records one signed money movement on a member's wallet.
// Negative amounts are debits, positive amounts credits. Once Completed
// the entry is immutable; corrections are new offsetting entries.
type LedgerEntry struct {
	ID          EntryID
	MemberID    MemberID
	Amount      decimal.Decimal
	Kind        EntryKind
	Status      EntryStatus
	Description string
	RelatedID   string // reservation/tournament the entry settles, if any
	ProofRef    string // deposit proof reference, opaque to the engine
	CreatedAt   time.Time
}

// =============================================================================
// RESERVATION - A booked court slot
// =============================================================================

type ReservationStatus string

const (
	ReservationPendingPayment ReservationStatus = "pending_payment"
	ReservationConfirmed      ReservationStatus = "confirmed"
	ReservationCancelled      ReservationStatus = "cancelled"
	ReservationCompleted      ReservationStatus = "completed"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPendingPayment: {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed:      {ReservationCancelled, ReservationCompleted},
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation holds a half-open [Start, End) slot on a court. Version is
// an optimistic-concurrency token bumped on every update; stores reject
// updates carrying a stale version.
type Reservation struct {
	ID         ReservationID
	CourtID    CourtID
	MemberID   MemberID
	Slot       Interval
	TotalPrice decimal.Decimal
	Status     ReservationStatus
	EntryID    EntryID       // settling ledger entry
	ParentID   ReservationID // recurring-series parent, if any
	Version    int64
	CreatedAt  time.Time
}

// =============================================================================
// TOURNAMENT - Knockout competition with an entry-fee prize pool
// =============================================================================

type TournamentStatus string

const (
	TournamentOpen     TournamentStatus = "open"
	TournamentOngoing  TournamentStatus = "ongoing"
	TournamentFinished TournamentStatus = "finished"
)

var tournamentTransitions = map[TournamentStatus][]TournamentStatus{
	TournamentOpen:    {TournamentOngoing},
	TournamentOngoing: {TournamentFinished},
}

func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	for _, allowed := range tournamentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Tournament struct {
	ID        TournamentID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	EntryFee  decimal.Decimal
	PrizePool decimal.Decimal // seed + one entry fee per join
	Status    TournamentStatus
	CreatedAt time.Time
}

// TournamentParticipant is unique per (tournament, member); a member
// cannot join the same tournament twice.
type TournamentParticipant struct {
	TournamentID TournamentID
	MemberID     MemberID
	FeePaid      bool
	JoinedAt     time.Time
}

// =============================================================================
// MATCH - Bracket node
// =============================================================================

type MatchWinner string

const (
	WinnerNone  MatchWinner = "none"
	WinnerSide1 MatchWinner = "side1"
	WinnerSide2 MatchWinner = "side2"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchFinished  MatchStatus = "finished"
)

// Match is one bracket node. A nil side is a bye or an unfilled slot
// waiting on an earlier round. Winner is only set once both scores are
// recorded and unequal; a draw is not a valid terminal state.
type Match struct {
	ID           MatchID
	TournamentID TournamentID
	Round        string // e.g. "Round 1"
	Side1        *MemberID
	Side2        *MemberID
	Score1       int
	Score2       int
	Winner       MatchWinner
	Status       MatchStatus
	NextMatchID  *MatchID // next-round match this one feeds, when present
}

// =============================================================================
// MATCH REQUEST - Open-play invitation
// =============================================================================

type MatchRequestStatus string

const (
	MatchRequestOpen      MatchRequestStatus = "open"
	MatchRequestFull      MatchRequestStatus = "full"
	MatchRequestCancelled MatchRequestStatus = "cancelled"
)

var matchRequestTransitions = map[MatchRequestStatus][]MatchRequestStatus{
	MatchRequestOpen: {MatchRequestFull, MatchRequestCancelled},
	MatchRequestFull: {MatchRequestOpen, MatchRequestCancelled},
}

func (s MatchRequestStatus) CanTransitionTo(next MatchRequestStatus) bool {
	for _, allowed := range matchRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MatchRequest is a member-posted invitation to play. Joining and leaving
// flip the status between Open and Full around MaxPlayers.
type MatchRequest struct {
	ID            MatchRequestID
	CreatorID     MemberID
	Title         string
	Description   string
	PlayDate      time.Time
	StartTime     string // "HH:MM" within PlayDate
	EndTime       string
	CourtID       *CourtID // optional preferred court
	MaxPlayers    int
	SkillLevelMin float64
	SkillLevelMax float64
	Status        MatchRequestStatus
	CreatedAt     time.Time
}

type MatchRequestParticipant struct {
	MatchRequestID MatchRequestID
	MemberID       MemberID
	JoinedAt       time.Time
}
