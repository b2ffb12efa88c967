/*
handlers.go - HTTP API handlers for the club engine

PURPOSE:
  Exposes the club engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the workflow services. No business
  rule lives here.

IDENTITY:
  The caller's identity and roles arrive in the X-Member-ID and X-Roles
  headers, set by the reverse proxy in front of this service. Handlers
  pass them through; authorization decisions live in the workflows.

ERROR HANDLING:
  Every workflow error is mapped to a stable machine code (domain.CodeOf)
  and an HTTP status:
  - 400: invalid_request, invalid_amount
  - 403: permission_denied
  - 404: not_found
  - 409: slot_conflict, conflict (retryable)
  - 422: insufficient_funds, duplicate_join, already_cancelled,
         invalid_state
  - 500: internal

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pcm/club-engine/booking"
	"github.com/pcm/club-engine/domain"
	"github.com/pcm/club-engine/matchplay"
	"github.com/pcm/club-engine/tournament"
	"github.com/pcm/club-engine/wallet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       domain.TxStore
	Booking     *booking.Service
	Wallet      *wallet.Service
	Tournaments *tournament.Service
	Matchplay   *matchplay.Service
}

func NewHandler(store domain.TxStore, b *booking.Service, w *wallet.Service, t *tournament.Service, m *matchplay.Service) *Handler {
	return &Handler{
		Store:       store,
		Booking:     b,
		Wallet:      w,
		Tournaments: t,
		Matchplay:   m,
	}
}

// callerID extracts the member identity the proxy injected.
func callerID(r *http.Request) domain.MemberID {
	return domain.MemberID(r.Header.Get("X-Member-ID"))
}

// callerRoles parses the comma-separated role list.
func callerRoles(r *http.Request) []wallet.Role {
	raw := r.Header.Get("X-Roles")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	roles := make([]wallet.Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, wallet.Role(strings.TrimSpace(p)))
	}
	return roles
}

func isAdmin(r *http.Request) bool {
	for _, role := range callerRoles(r) {
		if role == wallet.RoleAdmin {
			return true
		}
	}
	return false
}

// =============================================================================
// MEMBERS
// =============================================================================

// ListMembers returns all members.
// GET /api/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMember registers a new member with an empty wallet.
// POST /api/members
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "full_name is required")
		return
	}

	id := domain.MemberID(req.ID)
	if id == "" {
		id = domain.MemberID(domain.NewID())
	}
	member := domain.Member{
		ID:       id,
		FullName: req.FullName,
		Tier:     domain.TierStandard,
		Active:   true,
		JoinedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveMember(r.Context(), member); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberDTO(member))
}

// GetMember returns one member.
// GET /api/members/{id}
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.Store.GetMember(r.Context(), domain.MemberID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(*member))
}

// =============================================================================
// COURTS AND CALENDAR
// =============================================================================

// ListCourts returns active courts.
// GET /api/courts
func (h *Handler) ListCourts(w http.ResponseWriter, r *http.Request) {
	courts, err := h.Store.ListCourts(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]CourtDTO, len(courts))
	for i, c := range courts {
		dtos[i] = toCourtDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCourt adds a bookable court. Admin only.
// POST /api/courts
func (h *Handler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, domain.CodePermissionDenied, "admin role required")
		return
	}

	var req CreateCourtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	price, err := parseMoney(req.PricePerHour)
	if err != nil || req.Name == "" || price.IsNegative() {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "name and a non-negative price_per_hour are required")
		return
	}

	id := domain.CourtID(req.ID)
	if id == "" {
		id = domain.CourtID(domain.NewID())
	}
	court := domain.Court{
		ID:           id,
		Name:         req.Name,
		PricePerHour: price,
		Description:  req.Description,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Store.SaveCourt(r.Context(), court); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCourtDTO(court))
}

// GetCalendar returns per-court reservations in a window.
// GET /api/calendar?from=...&to=...
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	from, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	to, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "from and to must be RFC3339 timestamps")
		return
	}

	calendars, err := h.Booking.Calendar(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]CourtCalendarDTO, len(calendars))
	for i, c := range calendars {
		reservations := make([]ReservationDTO, len(c.Reservations))
		for j, res := range c.Reservations {
			reservations[j] = toReservationDTO(res)
		}
		dtos[i] = CourtCalendarDTO{Court: toCourtDTO(c.Court), Reservations: reservations}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// Book reserves a slot and charges the caller's wallet.
// POST /api/reservations
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	start, err1 := time.Parse(time.RFC3339, req.Start)
	end, err2 := time.Parse(time.RFC3339, req.End)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "start and end must be RFC3339 timestamps")
		return
	}

	reservation, err := h.Booking.Book(r.Context(), memberID, domain.CourtID(req.CourtID), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationDTO(*reservation))
}

// MyReservations returns the caller's bookings.
// GET /api/reservations
func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	reservations, err := h.Booking.MemberReservations(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ReservationDTO, len(reservations))
	for i, res := range reservations {
		dtos[i] = toReservationDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CancelReservation voids a booking with the tiered refund.
// POST /api/reservations/{id}/cancel
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	result, err := h.Booking.Cancel(r.Context(), memberID, domain.ReservationID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{
		Reservation:  toReservationDTO(result.Reservation),
		RefundRate:   result.RefundRate.String(),
		RefundAmount: result.RefundAmount.StringFixed(domain.MoneyScale),
		NewBalance:   result.NewBalance.StringFixed(domain.MoneyScale),
	})
}

// =============================================================================
// WALLET
// =============================================================================

// GetBalance returns the caller's wallet summary.
// GET /api/wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	view, err := h.Wallet.Balance(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		MemberID:   string(view.MemberID),
		MemberName: view.MemberName,
		Balance:    view.Balance.StringFixed(domain.MoneyScale),
		TotalSpent: view.TotalSpent.StringFixed(domain.MoneyScale),
		Tier:       string(view.Tier),
	})
}

// GetTransactions returns the caller's ledger history, newest first.
// GET /api/wallet/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	entries, err := h.Wallet.Transactions(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitDeposit records a Pending deposit request.
// POST /api/wallet/deposits
func (h *Handler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	var req SubmitDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidAmount, "amount must be a decimal string")
		return
	}

	entry, err := h.Wallet.SubmitDeposit(r.Context(), memberID, amount, req.ProofRef, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// ListPendingDeposits returns the approval queue. Admin or treasurer.
// GET /api/wallet/deposits/pending
func (h *Handler) ListPendingDeposits(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Wallet.PendingDeposits(r.Context(), callerRoles(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveDeposit settles a Pending deposit. Admin or treasurer.
// POST /api/wallet/deposits/{id}/approve
func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Wallet.Approve(r.Context(), domain.EntryID(chi.URLParam(r, "id")), callerRoles(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// RejectDeposit rejects a Pending deposit. Admin or treasurer.
// POST /api/wallet/deposits/{id}/reject
func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Wallet.RejectDeposit(r.Context(), domain.EntryID(chi.URLParam(r, "id")), callerRoles(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// =============================================================================
// TOURNAMENTS
// =============================================================================

// ListTournaments returns all tournaments.
// GET /api/tournaments
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.Tournaments.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]TournamentDTO, len(tournaments))
	for i, t := range tournaments {
		dtos[i] = toTournamentDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTournament opens a new tournament. Admin only.
// POST /api/tournaments
func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, domain.CodePermissionDenied, "admin role required")
		return
	}

	var req CreateTournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	startDate, err1 := time.Parse(time.RFC3339, req.StartDate)
	endDate, err2 := time.Parse(time.RFC3339, req.EndDate)
	fee, err3 := parseMoney(req.EntryFee)
	seed, err4 := parseMoney(req.PrizeSeed)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "dates must be RFC3339, amounts decimal strings")
		return
	}

	t, err := h.Tournaments.Create(r.Context(), req.Name, startDate, endDate, fee, seed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTournamentDTO(*t))
}

// GetTournament returns a tournament with participants and matches.
// GET /api/tournaments/{id}
func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Tournaments.Get(r.Context(), domain.TournamentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	participants := make([]ParticipantDTO, len(detail.Participants))
	for i, p := range detail.Participants {
		participants[i] = ParticipantDTO{
			MemberID: string(p.MemberID),
			FeePaid:  p.FeePaid,
			JoinedAt: p.JoinedAt.Format(time.RFC3339),
		}
	}
	matches := make([]MatchDTO, len(detail.Matches))
	for i, m := range detail.Matches {
		matches[i] = toMatchDTO(m)
	}
	writeJSON(w, http.StatusOK, TournamentDetailDTO{
		Tournament:   toTournamentDTO(detail.Tournament),
		Participants: participants,
		Matches:      matches,
	})
}

// JoinTournament registers the caller, debiting the entry fee.
// POST /api/tournaments/{id}/join
func (h *Handler) JoinTournament(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	id := domain.TournamentID(chi.URLParam(r, "id"))
	if err := h.Tournaments.Join(r.Context(), id, memberID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateSchedule builds the first knockout round. Admin only.
// POST /api/tournaments/{id}/schedule
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, domain.CodePermissionDenied, "admin role required")
		return
	}

	matches, err := h.Tournaments.GenerateSchedule(r.Context(), domain.TournamentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]MatchDTO, len(matches))
	for i, m := range matches {
		dtos[i] = toMatchDTO(m)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// RecordResult records a match's scores. Admin only.
// POST /api/matches/{id}/result
func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, http.StatusForbidden, domain.CodePermissionDenied, "admin role required")
		return
	}

	var req RecordResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}

	match, err := h.Tournaments.RecordResult(r.Context(), domain.MatchID(chi.URLParam(r, "id")), req.Score1, req.Score2)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(*match))
}

// =============================================================================
// MATCH REQUESTS
// =============================================================================

// ListMatchRequests returns open-play requests, optionally by status.
// GET /api/match-requests?status=open
func (h *Handler) ListMatchRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.MatchRequestStatus(r.URL.Query().Get("status"))
	requests, err := h.Matchplay.List(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]MatchRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toMatchRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMatchRequest posts an open-play invitation.
// POST /api/match-requests
func (h *Handler) CreateMatchRequest(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	var req CreateMatchRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid JSON body")
		return
	}
	playDate, err := time.Parse(time.RFC3339, req.PlayDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "play_date must be RFC3339")
		return
	}

	params := matchplay.CreateParams{
		Title:         req.Title,
		Description:   req.Description,
		PlayDate:      playDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		MaxPlayers:    req.MaxPlayers,
		SkillLevelMin: req.SkillLevelMin,
		SkillLevelMax: req.SkillLevelMax,
	}
	if req.CourtID != "" {
		id := domain.CourtID(req.CourtID)
		params.CourtID = &id
	}

	request, err := h.Matchplay.Create(r.Context(), memberID, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatchRequestDTO(*request))
}

// GetMatchRequest returns a request with its participants.
// GET /api/match-requests/{id}
func (h *Handler) GetMatchRequest(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Matchplay.Get(r.Context(), domain.MatchRequestID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := toMatchRequestDTO(detail.Request)
	for _, p := range detail.Participants {
		dto.Participants = append(dto.Participants, string(p.MemberID))
	}
	writeJSON(w, http.StatusOK, dto)
}

// JoinMatchRequest adds the caller to an open request.
// POST /api/match-requests/{id}/join
func (h *Handler) JoinMatchRequest(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	request, err := h.Matchplay.Join(r.Context(), domain.MatchRequestID(chi.URLParam(r, "id")), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchRequestDTO(*request))
}

// LeaveMatchRequest removes the caller from a request.
// POST /api/match-requests/{id}/leave
func (h *Handler) LeaveMatchRequest(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	request, err := h.Matchplay.Leave(r.Context(), domain.MatchRequestID(chi.URLParam(r, "id")), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchRequestDTO(*request))
}

// CancelMatchRequest voids a request. Creator or admin.
// POST /api/match-requests/{id}/cancel
func (h *Handler) CancelMatchRequest(w http.ResponseWriter, r *http.Request) {
	memberID := callerID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "X-Member-ID header is required")
		return
	}

	request, err := h.Matchplay.Cancel(r.Context(), domain.MatchRequestID(chi.URLParam(r, "id")), memberID, isAdmin(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchRequestDTO(*request))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: string(code), Error: message})
}

// writeDomainError maps a workflow error to its machine code and HTTP
// status.
func writeDomainError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)

	var status int
	switch code {
	case domain.CodeInvalidRequest, domain.CodeInvalidAmount:
		status = http.StatusBadRequest
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodePermissionDenied:
		status = http.StatusForbidden
	case domain.CodeSlotConflict, domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeInsufficientFunds, domain.CodeDuplicateJoin,
		domain.CodeAlreadyCancelled, domain.CodeInvalidState:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		log.WithError(err).Error("unhandled error in request")
	}

	writeError(w, status, code, err.Error())
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
