/*
Package matchplay manages open-play match requests.

PURPOSE:
  A member posts an invitation to play (date, time window, player cap,
  skill range) and others join until the request fills. No money moves in
  this flow; capacity and membership are the only constraints.

STATE MACHINE:
  Open -> Full        (last seat taken)
  Full -> Open        (someone leaves)
  Open/Full -> Cancelled  (creator or admin; terminal)
  The creator is always a participant and cannot leave their own request,
  only cancel it.
*/
package matchplay

import (
	"context"
	"fmt"
	"time"

	"github.com/pcm/club-engine/domain"
)

type Service struct {
	store domain.TxStore
	now   func() time.Time
}

func NewService(store domain.TxStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// CREATE
// =============================================================================

// CreateParams carries the member-supplied fields of a new request.
type CreateParams struct {
	Title         string
	Description   string
	PlayDate      time.Time
	StartTime     string // "HH:MM"
	EndTime       string
	CourtID       *domain.CourtID
	MaxPlayers    int
	SkillLevelMin float64
	SkillLevelMax float64
}

// Create posts an open request and auto-joins the creator as its first
// participant, in one unit.
func (s *Service) Create(ctx context.Context, creatorID domain.MemberID, p CreateParams) (*domain.MatchRequest, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidRequest)
	}
	if p.MaxPlayers < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players", domain.ErrInvalidRequest)
	}
	if p.SkillLevelMax < p.SkillLevelMin {
		return nil, fmt.Errorf("%w: skill range is inverted", domain.ErrInvalidRequest)
	}

	request := domain.MatchRequest{
		ID:            domain.MatchRequestID(domain.NewID()),
		CreatorID:     creatorID,
		Title:         p.Title,
		Description:   p.Description,
		PlayDate:      p.PlayDate.UTC(),
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		CourtID:       p.CourtID,
		MaxPlayers:    p.MaxPlayers,
		SkillLevelMin: p.SkillLevelMin,
		SkillLevelMax: p.SkillLevelMax,
		Status:        domain.MatchRequestOpen,
		CreatedAt:     s.now().UTC(),
	}

	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GetMember(ctx, creatorID); err != nil {
			return err
		}
		if request.CourtID != nil {
			if _, err := tx.GetCourt(ctx, *request.CourtID); err != nil {
				return err
			}
		}
		if err := tx.SaveMatchRequest(ctx, request); err != nil {
			return err
		}
		return tx.AddMatchRequestParticipant(ctx, domain.MatchRequestParticipant{
			MatchRequestID: request.ID,
			MemberID:       creatorID,
			JoinedAt:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// =============================================================================
// JOIN / LEAVE
// =============================================================================

// Join adds a member to an Open request. Taking the last seat flips the
// request to Full.
func (s *Service) Join(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) (*domain.MatchRequest, error) {
	var request *domain.MatchRequest
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		request, err = tx.GetMatchRequest(ctx, id)
		if err != nil {
			return err
		}
		switch request.Status {
		case domain.MatchRequestOpen:
		case domain.MatchRequestFull:
			return domain.ErrRequestFull
		default:
			return domain.ErrAlreadyCancelled
		}

		if _, err := tx.GetMember(ctx, memberID); err != nil {
			return err
		}
		if err := tx.AddMatchRequestParticipant(ctx, domain.MatchRequestParticipant{
			MatchRequestID: id,
			MemberID:       memberID,
			JoinedAt:       s.now().UTC(),
		}); err != nil {
			return err
		}

		participants, err := tx.MatchRequestParticipants(ctx, id)
		if err != nil {
			return err
		}
		if len(participants) >= request.MaxPlayers {
			request.Status = domain.MatchRequestFull
			return tx.UpdateMatchRequestStatus(ctx, id, domain.MatchRequestFull)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Leave removes a participant. The creator cannot leave, only cancel.
// Leaving a Full request reopens it.
func (s *Service) Leave(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) (*domain.MatchRequest, error) {
	var request *domain.MatchRequest
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		request, err = tx.GetMatchRequest(ctx, id)
		if err != nil {
			return err
		}
		if request.Status == domain.MatchRequestCancelled {
			return domain.ErrAlreadyCancelled
		}
		if request.CreatorID == memberID {
			return domain.ErrCreatorCannotLeave
		}

		if err := tx.RemoveMatchRequestParticipant(ctx, id, memberID); err != nil {
			return err
		}
		if request.Status == domain.MatchRequestFull {
			request.Status = domain.MatchRequestOpen
			return tx.UpdateMatchRequestStatus(ctx, id, domain.MatchRequestOpen)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel voids a request. Only the creator or an admin may cancel;
// cancellation is terminal.
func (s *Service) Cancel(ctx context.Context, id domain.MatchRequestID, callerID domain.MemberID, isAdmin bool) (*domain.MatchRequest, error) {
	var request *domain.MatchRequest
	err := s.store.WithTx(ctx, func(tx domain.Store) error {
		var err error
		request, err = tx.GetMatchRequest(ctx, id)
		if err != nil {
			return err
		}
		if request.Status == domain.MatchRequestCancelled {
			return domain.ErrAlreadyCancelled
		}
		if request.CreatorID != callerID && !isAdmin {
			return domain.ErrPermissionDenied
		}
		request.Status = domain.MatchRequestCancelled
		return tx.UpdateMatchRequestStatus(ctx, id, domain.MatchRequestCancelled)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// =============================================================================
// READS
// =============================================================================

// Detail is a request with its current participants.
type Detail struct {
	Request      domain.MatchRequest
	Participants []domain.MatchRequestParticipant
}

func (s *Service) Get(ctx context.Context, id domain.MatchRequestID) (*Detail, error) {
	request, err := s.store.GetMatchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.MatchRequestParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Request: *request, Participants: participants}, nil
}

// List returns requests filtered by status; empty status means all.
func (s *Service) List(ctx context.Context, status domain.MatchRequestStatus) ([]domain.MatchRequest, error) {
	return s.store.ListMatchRequests(ctx, status)
}
