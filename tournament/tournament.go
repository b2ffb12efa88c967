/*
Package tournament runs entry-fee tournaments and their knockout bracket.

PURPOSE:
  Join debits the entry fee from the member's wallet and adds it to the
  prize pool in one atomic unit. GenerateSchedule shuffles the confirmed
  participants into a single-elimination first round and moves the
  tournament from Open to Ongoing. RecordResult records scores and the
  winner on a match.

KNOWN LIMITATION:
  Only round one is generated. Winners are not advanced into later
  rounds and byes are not auto-resolved; bracket advancement is a manual
  operator step. Do not "fix" this here without product sign-off.
*/
package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/events"
)

type Service struct {
	store  domain.TxStore
	events events.Publisher
	rng    *rand.Rand
	now    func() time.Time
}

func NewService(store domain.TxStore, publisher events.Publisher) *Service {
	return &Service{
		store:  store,
		events: publisher,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// WithRand overrides the shuffle source. For tests.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// =============================================================================
// CREATE / READ
// =============================================================================

// Create opens a new tournament. PrizePool starts at the configured seed.
func (s *Service) Create(ctx context.Context, name string, startDate, endDate time.Time, entryFee, prizeSeed decimal.Decimal) (*domain.Tournament, error) {
	if name == "" || endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: tournament needs a name and a valid date window", domain.ErrInvalidRequest)
	}
	if entryFee.IsNegative() || prizeSeed.IsNegative() {
		return nil, fmt.Errorf("%w: fee and prize seed must not be negative", domain.ErrInvalidRequest)
	}

	t := domain.Tournament{
		ID:        domain.TournamentID(domain.NewID()),
		Name:      name,
		StartDate: startDate.UTC(),
		EndDate:   endDate.UTC(),
		EntryFee:  entryFee,
		PrizePool: prizeSeed,
		Status:    domain.TournamentOpen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveTournament(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// Detail is the tournament read model with participants and matches.
type Detail struct {
	Tournament   domain.Tournament
	Participants []domain.TournamentParticipant
	Matches      []domain.Match
}

func (s *Service) Get(ctx context.Context, id domain.TournamentID) (*Detail, error) {
	t, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.Participants(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.MatchesByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Tournament: *t, Participants: participants, Matches: matches}, nil
}

// =============================================================================
// JOIN - Entry fee into the prize pool
// =============================================================================

// Join registers a member, debiting the entry fee as a settled Payment and
// growing the prize pool, all in one atomic unit.
func (s *Service) Join(ctx context.Context, tournamentID domain.TournamentID, memberID domain.MemberID) error {
	return s.store.WithTx(ctx, func(tx domain.Store) error {
		t, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != domain.TournamentOpen {
			return &domain.InvalidTransitionError{
				Entity: "tournament",
				From:   string(t.Status),
				To:     "accepting entries",
			}
		}

		member, err := tx.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if member.WalletBalance.LessThan(t.EntryFee) {
			return &domain.InsufficientFundsError{
				MemberID:  memberID,
				Available: member.WalletBalance,
				Requested: t.EntryFee,
			}
		}

		// The unique (tournament, member) participant index backs this up;
		// AddParticipant below reports the race loser as a duplicate too.
		if err := tx.AddParticipant(ctx, domain.TournamentParticipant{
			TournamentID: tournamentID,
			MemberID:     memberID,
			FeePaid:      true,
			JoinedAt:     s.now().UTC(),
		}); err != nil {
			return err
		}

		if t.EntryFee.IsPositive() {
			entry, err := domain.RecordPending(ctx, tx, memberID, t.EntryFee.Neg(), domain.KindPayment,
				"Join tournament: "+t.Name, string(tournamentID))
			if err != nil {
				return err
			}
			if _, err := domain.Settle(ctx, tx, entry.ID); err != nil {
				return err
			}
		}

		t.PrizePool = t.PrizePool.Add(t.EntryFee)
		return tx.UpdateTournament(ctx, *t)
	})
}

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// GenerateSchedule builds the first knockout round and moves the
// tournament to Ongoing. Valid only from Open, with at least two
// participants, before any match exists.
func (s *Service) GenerateSchedule(ctx context.Context, id domain.TournamentID) ([]domain.Match, error) {
	var matches []domain.Match

	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		t, err := tx.GetTournament(ctx, id)
		if err != nil {
			return err
		}
		if t.Status != domain.TournamentOpen {
			return &domain.InvalidTransitionError{
				Entity: "tournament",
				From:   string(t.Status),
				To:     string(domain.TournamentOngoing),
			}
		}

		participants, err := tx.Participants(ctx, id)
		if err != nil {
			return err
		}
		if len(participants) < 2 {
			return fmt.Errorf("%w: need at least 2 participants", domain.ErrInvalidTransition)
		}

		existing, err := tx.MatchesByTournament(ctx, id)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: schedule already generated", domain.ErrInvalidTransition)
		}

		ids := make([]domain.MemberID, len(participants))
		for i, p := range participants {
			ids[i] = p.MemberID
		}
		matches = FirstRound(id, ids, s.rng)

		if err := tx.SaveMatches(ctx, matches); err != nil {
			return err
		}

		t.Status = domain.TournamentOngoing
		return tx.UpdateTournament(ctx, *t)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.TournamentUpdatedEvent{
		TournamentID: id,
		Status:       domain.TournamentOngoing,
		MatchCount:   len(matches),
	})
	return matches, nil
}

// =============================================================================
// MATCH RESULTS
// =============================================================================

// RecordResult sets a match's scores. The winner is decided only when the
// scores differ; a tie leaves the match Scheduled (draws are not a valid
// terminal state in knockout play). The winner is not propagated into the
// next-round match.
func (s *Service) RecordResult(ctx context.Context, matchID domain.MatchID, score1, score2 int) (*domain.Match, error) {
	if score1 < 0 || score2 < 0 {
		return nil, fmt.Errorf("%w: scores must not be negative", domain.ErrInvalidRequest)
	}

	var match *domain.Match
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		match, err = tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}

		match.Score1 = score1
		match.Score2 = score2
		switch {
		case score1 > score2:
			match.Winner = domain.WinnerSide1
		case score2 > score1:
			match.Winner = domain.WinnerSide2
		default:
			match.Winner = domain.WinnerNone
		}
		if match.Winner != domain.WinnerNone {
			match.Status = domain.MatchFinished
		}

		return tx.UpdateMatch(ctx, *match)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.MatchUpdatedEvent{
		MatchID:      match.ID,
		TournamentID: match.TournamentID,
		Score1:       match.Score1,
		Score2:       match.Score2,
		Winner:       match.Winner,
		Status:       match.Status,
	})
	return match, nil
}
