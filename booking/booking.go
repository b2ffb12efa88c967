/*
Package booking orchestrates court reservations against the wallet ledger.

PURPOSE:
  Book executes balance check -> conflict check -> debit -> reservation
  insert as one atomic unit: either the member is charged and holds the
  slot, or nothing happened. Cancel reverses a booking with a tiered
  refund and credits the wallet in the same unit that flips the status.

REFUND POLICY:
  A two-tier cliff, not a continuous function:
    >= 24h before start  100% refund
    <  24h before start   50% refund

CONCURRENCY:
  Both checks in Book are re-run INSIDE the atomic unit; the store
  serializes conflicting units (see store/sqlite), so two concurrent
  books of the same slot resolve to exactly one Confirmed reservation
  and one SlotConflictError. A stale-version update during Cancel is
  reported as a retryable conflict.

SEE ALSO:
  - domain/ledger.go: RecordPending + Settle used for the debit
  - events: CalendarChanged published post-commit, best effort
*/
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
)

// =============================================================================
// REFUND POLICY
// =============================================================================

// RefundPolicy is the tiered cancellation refund: FullRate inside the
// generous window, LateRate after the cliff.
type RefundPolicy struct {
	FullRefundWindow time.Duration
	FullRate         decimal.Decimal
	LateRate         decimal.Decimal
}

func DefaultRefundPolicy() RefundPolicy {
	return RefundPolicy{
		FullRefundWindow: 24 * time.Hour,
		FullRate:         decimal.NewFromInt(1),
		LateRate:         domain.MustMoney("0.5"),
	}
}

// RateFor returns the refund rate for a reservation starting at start,
// evaluated at now.
func (p RefundPolicy) RateFor(start, now time.Time) decimal.Decimal {
	if start.Sub(now) >= p.FullRefundWindow {
		return p.FullRate
	}
	return p.LateRate
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store  domain.TxStore
	events events.Publisher
	refund RefundPolicy
	now    func() time.Time
}

func NewService(store domain.TxStore, publisher events.Publisher) *Service {
	return &Service{
		store:  store,
		events: publisher,
		refund: DefaultRefundPolicy(),
		now:    time.Now,
	}
}

// WithRefundPolicy overrides the default cancellation tiers.
func (s *Service) WithRefundPolicy(p RefundPolicy) *Service {
	s.refund = p
	return s
}

// WithClock overrides the time source. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// BOOK
// =============================================================================

// Book reserves [start, end) on a court and charges the member's wallet.
// The price is the court's hourly rate times the exact fractional
// duration, rounded to the currency's minor unit.
func (s *Service) Book(ctx context.Context, memberID domain.MemberID, courtID domain.CourtID, start, end time.Time) (*domain.Reservation, error) {
	slot := domain.NewInterval(start, end)
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	if slot.Start.Before(s.now().UTC()) {
		return nil, fmt.Errorf("%w: cannot book in the past", domain.ErrInvalidRequest)
	}

	court, err := s.store.GetCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if !court.Active {
		return nil, domain.ErrCourtNotFound
	}

	totalPrice := domain.RoundMoney(court.PricePerHour.Mul(slot.Hours()))

	var reservation domain.Reservation
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		member, err := tx.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if member.WalletBalance.LessThan(totalPrice) {
			return &domain.InsufficientFundsError{
				MemberID:  memberID,
				Available: member.WalletBalance,
				Requested: totalPrice,
			}
		}

		// Conflict re-check inside the unit. The store serializes units,
		// so a concurrent booking of the same slot is visible here.
		existing, err := tx.FindOverlap(ctx, courtID, slot)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.SlotConflictError{CourtID: courtID, Existing: existing.Slot}
		}

		reservation = domain.Reservation{
			ID:        domain.ReservationID(domain.NewID()),
			CourtID:   courtID,
			MemberID:  memberID,
			Slot:      slot,
			Status:    domain.ReservationConfirmed,
			CreatedAt: s.now().UTC(),
		}
		reservation.TotalPrice = totalPrice

		entry, err := domain.RecordPending(ctx, tx, memberID, totalPrice.Neg(), domain.KindPayment,
			fmt.Sprintf("Court booking: %s (%s - %s)", court.Name,
				slot.Start.Format("02/01/2006 15:04"), slot.End.Format("15:04")),
			string(reservation.ID))
		if err != nil {
			return err
		}
		if _, err := domain.Settle(ctx, tx, entry.ID); err != nil {
			return err
		}
		reservation.EntryID = entry.ID

		return tx.SaveReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.CalendarChangedEvent{
		CourtID:       courtID,
		CourtName:     court.Name,
		ReservationID: reservation.ID,
		Slot:          reservation.Slot,
		Status:        reservation.Status,
		Action:        events.ActionAdded,
	})
	return &reservation, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// CancelResult reports the refund applied by a cancellation.
type CancelResult struct {
	Reservation  domain.Reservation
	RefundRate   decimal.Decimal
	RefundAmount decimal.Decimal
	NewBalance   decimal.Decimal
}

// Cancel voids a member's reservation and credits the tiered refund as a
// Completed ledger entry in the same atomic unit.
func (s *Service) Cancel(ctx context.Context, memberID domain.MemberID, id domain.ReservationID) (*CancelResult, error) {
	var result CancelResult

	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		reservation, err := tx.GetMemberReservation(ctx, memberID, id)
		if err != nil {
			return err
		}
		if reservation.Status == domain.ReservationCancelled {
			return domain.ErrAlreadyCancelled
		}
		if !reservation.Status.CanTransitionTo(domain.ReservationCancelled) {
			return &domain.InvalidTransitionError{
				Entity: "reservation",
				From:   string(reservation.Status),
				To:     string(domain.ReservationCancelled),
			}
		}

		rate := s.refund.RateFor(reservation.Slot.Start, s.now().UTC())
		refund := domain.RoundMoney(reservation.TotalPrice.Mul(rate))

		reservation.Status = domain.ReservationCancelled
		if err := tx.UpdateReservation(ctx, *reservation); err != nil {
			return err
		}

		newBalance := decimal.Zero
		if refund.IsPositive() {
			entry, err := domain.RecordPending(ctx, tx, memberID, refund, domain.KindRefund,
				fmt.Sprintf("Booking refund (%s%%)", rate.Mul(decimal.NewFromInt(100)).String()),
				string(reservation.ID))
			if err != nil {
				return err
			}
			newBalance, err = domain.Settle(ctx, tx, entry.ID)
			if err != nil {
				return err
			}
		} else {
			member, err := tx.GetMember(ctx, memberID)
			if err != nil {
				return err
			}
			newBalance = member.WalletBalance
		}

		result = CancelResult{
			Reservation:  *reservation,
			RefundRate:   rate,
			RefundAmount: refund,
			NewBalance:   newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.CalendarChangedEvent{
		CourtID:       result.Reservation.CourtID,
		ReservationID: result.Reservation.ID,
		Slot:          result.Reservation.Slot,
		Status:        result.Reservation.Status,
		Action:        events.ActionCancelled,
	})
	return &result, nil
}

// =============================================================================
// READS
// =============================================================================

// CourtCalendar is the calendar view for one court.
type CourtCalendar struct {
	Court        domain.Court
	Reservations []domain.Reservation
}

// Calendar returns the non-cancelled reservations per active court in a
// window.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) ([]CourtCalendar, error) {
	window := domain.NewInterval(from, to)
	if err := window.Validate(); err != nil {
		return nil, err
	}

	courts, err := s.store.ListCourts(ctx, true)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ReservationsInWindow(ctx, window)
	if err != nil {
		return nil, err
	}

	byCourt := make(map[domain.CourtID][]domain.Reservation)
	for _, r := range reservations {
		byCourt[r.CourtID] = append(byCourt[r.CourtID], r)
	}

	calendars := make([]CourtCalendar, 0, len(courts))
	for _, c := range courts {
		calendars = append(calendars, CourtCalendar{Court: c, Reservations: byCourt[c.ID]})
	}
	return calendars, nil
}

// MemberReservations returns a member's bookings, newest start first.
func (s *Service) MemberReservations(ctx context.Context, memberID domain.MemberID) ([]domain.Reservation, error) {
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.ReservationsByMember(ctx, memberID)
}
