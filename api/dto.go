/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts travel as decimal strings ("150000.00"), never JSON numbers, so
  no client-side float rounding can creep in.

VALIDATION:
  Validation is done in handlers and workflows, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/pcm/club-engine/domain"
)

// =============================================================================
// MEMBERS
// =============================================================================

type MemberDTO struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	WalletBalance string `json:"wallet_balance"`
	TotalSpent    string `json:"total_spent"`
	Tier          string `json:"tier"`
	Active        bool   `json:"active"`
	JoinedAt      string `json:"joined_at"`
}

type CreateMemberRequest struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"full_name"`
}

func toMemberDTO(m domain.Member) MemberDTO {
	return MemberDTO{
		ID:            string(m.ID),
		FullName:      m.FullName,
		WalletBalance: m.WalletBalance.StringFixed(domain.MoneyScale),
		TotalSpent:    m.TotalSpent.StringFixed(domain.MoneyScale),
		Tier:          string(m.Tier),
		Active:        m.Active,
		JoinedAt:      m.JoinedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// COURTS AND CALENDAR
// =============================================================================

type CourtDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PricePerHour string `json:"price_per_hour"`
	Description  string `json:"description,omitempty"`
	Active       bool   `json:"active"`
}

type CreateCourtRequest struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	PricePerHour string `json:"price_per_hour"`
	Description  string `json:"description"`
}

func toCourtDTO(c domain.Court) CourtDTO {
	return CourtDTO{
		ID:           string(c.ID),
		Name:         c.Name,
		PricePerHour: c.PricePerHour.StringFixed(domain.MoneyScale),
		Description:  c.Description,
		Active:       c.Active,
	}
}

type CourtCalendarDTO struct {
	Court        CourtDTO         `json:"court"`
	Reservations []ReservationDTO `json:"reservations"`
}

// =============================================================================
// RESERVATIONS
// =============================================================================

type ReservationDTO struct {
	ID         string `json:"id"`
	CourtID    string `json:"court_id"`
	MemberID   string `json:"member_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	TotalPrice string `json:"total_price"`
	Status     string `json:"status"`
}

type BookRequest struct {
	CourtID string `json:"court_id"`
	Start   string `json:"start"` // RFC3339
	End     string `json:"end"`
}

type CancelResponse struct {
	Reservation  ReservationDTO `json:"reservation"`
	RefundRate   string         `json:"refund_rate"`
	RefundAmount string         `json:"refund_amount"`
	NewBalance   string         `json:"new_balance"`
}

func toReservationDTO(r domain.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:         string(r.ID),
		CourtID:    string(r.CourtID),
		MemberID:   string(r.MemberID),
		Start:      r.Slot.Start.Format(time.RFC3339),
		End:        r.Slot.End.Format(time.RFC3339),
		TotalPrice: r.TotalPrice.StringFixed(domain.MoneyScale),
		Status:     string(r.Status),
	}
}

// =============================================================================
// WALLET
// =============================================================================

type BalanceDTO struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Balance    string `json:"balance"`
	TotalSpent string `json:"total_spent"`
	Tier       string `json:"tier"`
}

type LedgerEntryDTO struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`
	ProofRef    string `json:"proof_ref,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type SubmitDepositRequest struct {
	Amount      string `json:"amount"`
	ProofRef    string `json:"proof_ref"`
	Description string `json:"description"`
}

func toEntryDTO(e domain.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:          string(e.ID),
		MemberID:    string(e.MemberID),
		Amount:      e.Amount.StringFixed(domain.MoneyScale),
		Kind:        string(e.Kind),
		Status:      string(e.Status),
		Description: e.Description,
		RelatedID:   e.RelatedID,
		ProofRef:    e.ProofRef,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// TOURNAMENTS
// =============================================================================

type TournamentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	EntryFee  string `json:"entry_fee"`
	PrizePool string `json:"prize_pool"`
	Status    string `json:"status"`
}

type CreateTournamentRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	EntryFee  string `json:"entry_fee"`
	PrizeSeed string `json:"prize_seed"`
}

type TournamentDetailDTO struct {
	Tournament   TournamentDTO    `json:"tournament"`
	Participants []ParticipantDTO `json:"participants"`
	Matches      []MatchDTO       `json:"matches"`
}

type ParticipantDTO struct {
	MemberID string `json:"member_id"`
	FeePaid  bool   `json:"fee_paid"`
	JoinedAt string `json:"joined_at"`
}

type MatchDTO struct {
	ID     string  `json:"id"`
	Round  string  `json:"round"`
	Side1  *string `json:"side1"`
	Side2  *string `json:"side2"`
	Score1 int     `json:"score1"`
	Score2 int     `json:"score2"`
	Winner string  `json:"winner"`
	Status string  `json:"status"`
}

type RecordResultRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

func toTournamentDTO(t domain.Tournament) TournamentDTO {
	return TournamentDTO{
		ID:        string(t.ID),
		Name:      t.Name,
		StartDate: t.StartDate.Format(time.RFC3339),
		EndDate:   t.EndDate.Format(time.RFC3339),
		EntryFee:  t.EntryFee.StringFixed(domain.MoneyScale),
		PrizePool: t.PrizePool.StringFixed(domain.MoneyScale),
		Status:    string(t.Status),
	}
}

func toMatchDTO(m domain.Match) MatchDTO {
	dto := MatchDTO{
		ID:     string(m.ID),
		Round:  m.Round,
		Score1: m.Score1,
		Score2: m.Score2,
		Winner: string(m.Winner),
		Status: string(m.Status),
	}
	if m.Side1 != nil {
		s := string(*m.Side1)
		dto.Side1 = &s
	}
	if m.Side2 != nil {
		s := string(*m.Side2)
		dto.Side2 = &s
	}
	return dto
}

// =============================================================================
// MATCH REQUESTS
// =============================================================================

type MatchRequestDTO struct {
	ID            string   `json:"id"`
	CreatorID     string   `json:"creator_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	PlayDate      string   `json:"play_date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	CourtID       *string  `json:"court_id,omitempty"`
	MaxPlayers    int      `json:"max_players"`
	SkillLevelMin float64  `json:"skill_level_min"`
	SkillLevelMax float64  `json:"skill_level_max"`
	Status        string   `json:"status"`
	Participants  []string `json:"participants,omitempty"`
}

type CreateMatchRequestRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	PlayDate      string  `json:"play_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	CourtID       string  `json:"court_id,omitempty"`
	MaxPlayers    int     `json:"max_players"`
	SkillLevelMin float64 `json:"skill_level_min"`
	SkillLevelMax float64 `json:"skill_level_max"`
}

func toMatchRequestDTO(r domain.MatchRequest) MatchRequestDTO {
	dto := MatchRequestDTO{
		ID:            string(r.ID),
		CreatorID:     string(r.CreatorID),
		Title:         r.Title,
		Description:   r.Description,
		PlayDate:      r.PlayDate.Format(time.RFC3339),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		MaxPlayers:    r.MaxPlayers,
		SkillLevelMin: r.SkillLevelMin,
		SkillLevelMax: r.SkillLevelMax,
		Status:        string(r.Status),
	}
	if r.CourtID != nil {
		s := string(*r.CourtID)
		dto.CourtID = &s
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error envelope: a stable machine code plus
// a human message.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
