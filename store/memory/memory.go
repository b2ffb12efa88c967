/*
Package memory is the in-memory implementation of the storage
interfaces, for workflow tests.

PURPOSE:
  Implements domain.Store and domain.TxStore entirely in maps, with the
  same semantics as store/sqlite: guarded status moves, optimistic
  reservation versions, unique participant pairs. WithTx snapshots the
  maps and restores them when the callback errors, so rollback behavior
  matches the database store.

  Not intended for production use; there is no persistence.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pcm/club-engine/domain"
)

type key2 struct{ a, b string }

type state struct {
	members       map[domain.MemberID]domain.Member
	courts        map[domain.CourtID]domain.Court
	entries       map[domain.EntryID]domain.LedgerEntry
	entryOrder    []domain.EntryID
	reservations  map[domain.ReservationID]domain.Reservation
	tournaments   map[domain.TournamentID]domain.Tournament
	tParticipants map[key2]domain.TournamentParticipant
	matches       map[domain.MatchID]domain.Match
	matchOrder    []domain.MatchID
	requests      map[domain.MatchRequestID]domain.MatchRequest
	rParticipants map[key2]domain.MatchRequestParticipant
}

func newState() *state {
	return &state{
		members:       make(map[domain.MemberID]domain.Member),
		courts:        make(map[domain.CourtID]domain.Court),
		entries:       make(map[domain.EntryID]domain.LedgerEntry),
		reservations:  make(map[domain.ReservationID]domain.Reservation),
		tournaments:   make(map[domain.TournamentID]domain.Tournament),
		tParticipants: make(map[key2]domain.TournamentParticipant),
		matches:       make(map[domain.MatchID]domain.Match),
		requests:      make(map[domain.MatchRequestID]domain.MatchRequest),
		rParticipants: make(map[key2]domain.MatchRequestParticipant),
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.members {
		c.members[k] = v
	}
	for k, v := range st.courts {
		c.courts[k] = v
	}
	for k, v := range st.entries {
		c.entries[k] = v
	}
	c.entryOrder = append([]domain.EntryID(nil), st.entryOrder...)
	for k, v := range st.reservations {
		c.reservations[k] = v
	}
	for k, v := range st.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range st.tParticipants {
		c.tParticipants[k] = v
	}
	for k, v := range st.matches {
		c.matches[k] = v
	}
	c.matchOrder = append([]domain.MatchID(nil), st.matchOrder...)
	for k, v := range st.requests {
		c.requests[k] = v
	}
	for k, v := range st.rParticipants {
		c.rParticipants[k] = v
	}
	return c
}

// Store implements domain.TxStore in memory.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

// WithTx snapshots the state, runs fn, and restores the snapshot when fn
// errors. The store mutex is held for the unit's whole duration, so
// conflicting units serialize exactly as in store/sqlite.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&view{st: s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// view is the unlocked Store handed to WithTx callbacks.
type view struct {
	st *state
}

func (s *Store) locked(fn func(*view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st})
}

// =============================================================================
// MEMBERS
// =============================================================================

func (v *view) SaveMember(ctx context.Context, m domain.Member) error {
	v.st.members[m.ID] = m
	return nil
}

func (v *view) GetMember(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	m, ok := v.st.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (v *view) UpdateMemberBalance(ctx context.Context, id domain.MemberID, balance, totalSpent decimal.Decimal) error {
	m, ok := v.st.members[id]
	if !ok {
		return domain.ErrMemberNotFound
	}
	m.WalletBalance = balance
	m.TotalSpent = totalSpent
	v.st.members[id] = m
	return nil
}

func (v *view) ListMembers(ctx context.Context) ([]domain.Member, error) {
	members := make([]domain.Member, 0, len(v.st.members))
	for _, m := range v.st.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].FullName < members[j].FullName })
	return members, nil
}

// =============================================================================
// COURTS
// =============================================================================

func (v *view) SaveCourt(ctx context.Context, c domain.Court) error {
	v.st.courts[c.ID] = c
	return nil
}

func (v *view) GetCourt(ctx context.Context, id domain.CourtID) (*domain.Court, error) {
	c, ok := v.st.courts[id]
	if !ok {
		return nil, domain.ErrCourtNotFound
	}
	return &c, nil
}

func (v *view) ListCourts(ctx context.Context, activeOnly bool) ([]domain.Court, error) {
	var courts []domain.Court
	for _, c := range v.st.courts {
		if activeOnly && !c.Active {
			continue
		}
		courts = append(courts, c)
	}
	sort.Slice(courts, func(i, j int) bool { return courts[i].Name < courts[j].Name })
	return courts, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (v *view) AppendEntry(ctx context.Context, e domain.LedgerEntry) error {
	v.st.entries[e.ID] = e
	v.st.entryOrder = append(v.st.entryOrder, e.ID)
	return nil
}

func (v *view) GetEntry(ctx context.Context, id domain.EntryID) (*domain.LedgerEntry, error) {
	e, ok := v.st.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return &e, nil
}

func (v *view) MarkEntry(ctx context.Context, id domain.EntryID, from, to domain.EntryStatus) error {
	if !from.CanTransitionTo(to) {
		return &domain.InvalidTransitionError{Entity: "ledger entry", From: string(from), To: string(to)}
	}
	e, ok := v.st.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	if e.Status != from {
		return &domain.InvalidTransitionError{Entity: "ledger entry", From: string(e.Status), To: string(to)}
	}
	e.Status = to
	v.st.entries[id] = e
	return nil
}

func (v *view) EntriesByMember(ctx context.Context, id domain.MemberID) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for i := len(v.st.entryOrder) - 1; i >= 0; i-- {
		e := v.st.entries[v.st.entryOrder[i]]
		if e.MemberID == id {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (v *view) PendingDeposits(ctx context.Context) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for _, id := range v.st.entryOrder {
		e := v.st.entries[id]
		if e.Status == domain.EntryPending && e.Kind == domain.KindDeposit {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (v *view) CompletedSum(ctx context.Context, id domain.MemberID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range v.st.entries {
		if e.MemberID == id && e.Status == domain.EntryCompleted {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func (v *view) SaveReservation(ctx context.Context, r domain.Reservation) error {
	r.Version = 1
	v.st.reservations[r.ID] = r
	return nil
}

func (v *view) GetMemberReservation(ctx context.Context, memberID domain.MemberID, id domain.ReservationID) (*domain.Reservation, error) {
	r, ok := v.st.reservations[id]
	if !ok || r.MemberID != memberID {
		return nil, domain.ErrReservationNotFound
	}
	return &r, nil
}

func (v *view) UpdateReservation(ctx context.Context, r domain.Reservation) error {
	stored, ok := v.st.reservations[r.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if stored.Version != r.Version {
		return domain.ErrConcurrentModification
	}
	r.Version++
	v.st.reservations[r.ID] = r
	return nil
}

func (v *view) FindOverlap(ctx context.Context, courtID domain.CourtID, iv domain.Interval) (*domain.Reservation, error) {
	for _, r := range v.st.reservations {
		if r.CourtID != courtID || r.Status == domain.ReservationCancelled {
			continue
		}
		if r.Slot.Overlaps(iv) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (v *view) ReservationsByMember(ctx context.Context, id domain.MemberID) ([]domain.Reservation, error) {
	var result []domain.Reservation
	for _, r := range v.st.reservations {
		if r.MemberID == id {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot.Start.After(result[j].Slot.Start) })
	return result, nil
}

func (v *view) ReservationsInWindow(ctx context.Context, iv domain.Interval) ([]domain.Reservation, error) {
	var result []domain.Reservation
	for _, r := range v.st.reservations {
		if r.Status == domain.ReservationCancelled {
			continue
		}
		if r.Slot.Overlaps(iv) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot.Start.Before(result[j].Slot.Start) })
	return result, nil
}

// =============================================================================
// TOURNAMENTS
// =============================================================================

func (v *view) SaveTournament(ctx context.Context, t domain.Tournament) error {
	v.st.tournaments[t.ID] = t
	return nil
}

func (v *view) GetTournament(ctx context.Context, id domain.TournamentID) (*domain.Tournament, error) {
	t, ok := v.st.tournaments[id]
	if !ok {
		return nil, domain.ErrTournamentNotFound
	}
	return &t, nil
}

func (v *view) UpdateTournament(ctx context.Context, t domain.Tournament) error {
	if _, ok := v.st.tournaments[t.ID]; !ok {
		return domain.ErrTournamentNotFound
	}
	v.st.tournaments[t.ID] = t
	return nil
}

func (v *view) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	var result []domain.Tournament
	for _, t := range v.st.tournaments {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (v *view) AddParticipant(ctx context.Context, p domain.TournamentParticipant) error {
	k := key2{string(p.TournamentID), string(p.MemberID)}
	if _, ok := v.st.tParticipants[k]; ok {
		return domain.ErrDuplicateJoin
	}
	v.st.tParticipants[k] = p
	return nil
}

func (v *view) Participants(ctx context.Context, id domain.TournamentID) ([]domain.TournamentParticipant, error) {
	var result []domain.TournamentParticipant
	for _, p := range v.st.tParticipants {
		if p.TournamentID == id {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinedAt.Before(result[j].JoinedAt) })
	return result, nil
}

func (v *view) SaveMatches(ctx context.Context, matches []domain.Match) error {
	for _, m := range matches {
		v.st.matches[m.ID] = m
		v.st.matchOrder = append(v.st.matchOrder, m.ID)
	}
	return nil
}

func (v *view) GetMatch(ctx context.Context, id domain.MatchID) (*domain.Match, error) {
	m, ok := v.st.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return &m, nil
}

func (v *view) UpdateMatch(ctx context.Context, m domain.Match) error {
	if _, ok := v.st.matches[m.ID]; !ok {
		return domain.ErrMatchNotFound
	}
	v.st.matches[m.ID] = m
	return nil
}

func (v *view) MatchesByTournament(ctx context.Context, id domain.TournamentID) ([]domain.Match, error) {
	var result []domain.Match
	for _, mid := range v.st.matchOrder {
		m := v.st.matches[mid]
		if m.TournamentID == id {
			result = append(result, m)
		}
	}
	return result, nil
}

// =============================================================================
// MATCH REQUESTS
// =============================================================================

func (v *view) SaveMatchRequest(ctx context.Context, r domain.MatchRequest) error {
	v.st.requests[r.ID] = r
	return nil
}

func (v *view) GetMatchRequest(ctx context.Context, id domain.MatchRequestID) (*domain.MatchRequest, error) {
	r, ok := v.st.requests[id]
	if !ok {
		return nil, domain.ErrMatchRequestNotFound
	}
	return &r, nil
}

func (v *view) UpdateMatchRequestStatus(ctx context.Context, id domain.MatchRequestID, status domain.MatchRequestStatus) error {
	r, ok := v.st.requests[id]
	if !ok {
		return domain.ErrMatchRequestNotFound
	}
	r.Status = status
	v.st.requests[id] = r
	return nil
}

func (v *view) AddMatchRequestParticipant(ctx context.Context, p domain.MatchRequestParticipant) error {
	k := key2{string(p.MatchRequestID), string(p.MemberID)}
	if _, ok := v.st.rParticipants[k]; ok {
		return domain.ErrDuplicateJoin
	}
	v.st.rParticipants[k] = p
	return nil
}

func (v *view) RemoveMatchRequestParticipant(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) error {
	k := key2{string(id), string(memberID)}
	if _, ok := v.st.rParticipants[k]; !ok {
		return domain.ErrNotParticipant
	}
	delete(v.st.rParticipants, k)
	return nil
}

func (v *view) MatchRequestParticipants(ctx context.Context, id domain.MatchRequestID) ([]domain.MatchRequestParticipant, error) {
	var result []domain.MatchRequestParticipant
	for _, p := range v.st.rParticipants {
		if p.MatchRequestID == id {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].JoinedAt.Before(result[j].JoinedAt) })
	return result, nil
}

func (v *view) ListMatchRequests(ctx context.Context, status domain.MatchRequestStatus) ([]domain.MatchRequest, error) {
	var result []domain.MatchRequest
	for _, r := range v.st.requests {
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// =============================================================================
// TOP-LEVEL DELEGATES (domain.Store outside a unit)
// =============================================================================

func (s *Store) SaveMember(ctx context.Context, m domain.Member) error {
	return s.locked(func(v *view) error { return v.SaveMember(ctx, m) })
}

func (s *Store) GetMember(ctx context.Context, id domain.MemberID) (m *domain.Member, err error) {
	err = s.locked(func(v *view) error { m, err = v.GetMember(ctx, id); return err })
	return
}

func (s *Store) UpdateMemberBalance(ctx context.Context, id domain.MemberID, balance, totalSpent decimal.Decimal) error {
	return s.locked(func(v *view) error { return v.UpdateMemberBalance(ctx, id, balance, totalSpent) })
}

func (s *Store) ListMembers(ctx context.Context) (out []domain.Member, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListMembers(ctx); return err })
	return
}

func (s *Store) SaveCourt(ctx context.Context, c domain.Court) error {
	return s.locked(func(v *view) error { return v.SaveCourt(ctx, c) })
}

func (s *Store) GetCourt(ctx context.Context, id domain.CourtID) (c *domain.Court, err error) {
	err = s.locked(func(v *view) error { c, err = v.GetCourt(ctx, id); return err })
	return
}

func (s *Store) ListCourts(ctx context.Context, activeOnly bool) (out []domain.Court, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListCourts(ctx, activeOnly); return err })
	return
}

func (s *Store) AppendEntry(ctx context.Context, e domain.LedgerEntry) error {
	return s.locked(func(v *view) error { return v.AppendEntry(ctx, e) })
}

func (s *Store) GetEntry(ctx context.Context, id domain.EntryID) (e *domain.LedgerEntry, err error) {
	err = s.locked(func(v *view) error { e, err = v.GetEntry(ctx, id); return err })
	return
}

func (s *Store) MarkEntry(ctx context.Context, id domain.EntryID, from, to domain.EntryStatus) error {
	return s.locked(func(v *view) error { return v.MarkEntry(ctx, id, from, to) })
}

func (s *Store) EntriesByMember(ctx context.Context, id domain.MemberID) (out []domain.LedgerEntry, err error) {
	err = s.locked(func(v *view) error { out, err = v.EntriesByMember(ctx, id); return err })
	return
}

func (s *Store) PendingDeposits(ctx context.Context) (out []domain.LedgerEntry, err error) {
	err = s.locked(func(v *view) error { out, err = v.PendingDeposits(ctx); return err })
	return
}

func (s *Store) CompletedSum(ctx context.Context, id domain.MemberID) (sum decimal.Decimal, err error) {
	err = s.locked(func(v *view) error { sum, err = v.CompletedSum(ctx, id); return err })
	return
}

func (s *Store) SaveReservation(ctx context.Context, r domain.Reservation) error {
	return s.locked(func(v *view) error { return v.SaveReservation(ctx, r) })
}

func (s *Store) GetMemberReservation(ctx context.Context, memberID domain.MemberID, id domain.ReservationID) (r *domain.Reservation, err error) {
	err = s.locked(func(v *view) error { r, err = v.GetMemberReservation(ctx, memberID, id); return err })
	return
}

func (s *Store) UpdateReservation(ctx context.Context, r domain.Reservation) error {
	return s.locked(func(v *view) error { return v.UpdateReservation(ctx, r) })
}

func (s *Store) FindOverlap(ctx context.Context, courtID domain.CourtID, iv domain.Interval) (r *domain.Reservation, err error) {
	err = s.locked(func(v *view) error { r, err = v.FindOverlap(ctx, courtID, iv); return err })
	return
}

func (s *Store) ReservationsByMember(ctx context.Context, id domain.MemberID) (out []domain.Reservation, err error) {
	err = s.locked(func(v *view) error { out, err = v.ReservationsByMember(ctx, id); return err })
	return
}

func (s *Store) ReservationsInWindow(ctx context.Context, iv domain.Interval) (out []domain.Reservation, err error) {
	err = s.locked(func(v *view) error { out, err = v.ReservationsInWindow(ctx, iv); return err })
	return
}

func (s *Store) SaveTournament(ctx context.Context, t domain.Tournament) error {
	return s.locked(func(v *view) error { return v.SaveTournament(ctx, t) })
}

func (s *Store) GetTournament(ctx context.Context, id domain.TournamentID) (t *domain.Tournament, err error) {
	err = s.locked(func(v *view) error { t, err = v.GetTournament(ctx, id); return err })
	return
}

func (s *Store) UpdateTournament(ctx context.Context, t domain.Tournament) error {
	return s.locked(func(v *view) error { return v.UpdateTournament(ctx, t) })
}

func (s *Store) ListTournaments(ctx context.Context) (out []domain.Tournament, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListTournaments(ctx); return err })
	return
}

func (s *Store) AddParticipant(ctx context.Context, p domain.TournamentParticipant) error {
	return s.locked(func(v *view) error { return v.AddParticipant(ctx, p) })
}

func (s *Store) Participants(ctx context.Context, id domain.TournamentID) (out []domain.TournamentParticipant, err error) {
	err = s.locked(func(v *view) error { out, err = v.Participants(ctx, id); return err })
	return
}

func (s *Store) SaveMatches(ctx context.Context, matches []domain.Match) error {
	return s.locked(func(v *view) error { return v.SaveMatches(ctx, matches) })
}

func (s *Store) GetMatch(ctx context.Context, id domain.MatchID) (m *domain.Match, err error) {
	err = s.locked(func(v *view) error { m, err = v.GetMatch(ctx, id); return err })
	return
}

func (s *Store) UpdateMatch(ctx context.Context, m domain.Match) error {
	return s.locked(func(v *view) error { return v.UpdateMatch(ctx, m) })
}

func (s *Store) MatchesByTournament(ctx context.Context, id domain.TournamentID) (out []domain.Match, err error) {
	err = s.locked(func(v *view) error { out, err = v.MatchesByTournament(ctx, id); return err })
	return
}

func (s *Store) SaveMatchRequest(ctx context.Context, r domain.MatchRequest) error {
	return s.locked(func(v *view) error { return v.SaveMatchRequest(ctx, r) })
}

func (s *Store) GetMatchRequest(ctx context.Context, id domain.MatchRequestID) (r *domain.MatchRequest, err error) {
	err = s.locked(func(v *view) error { r, err = v.GetMatchRequest(ctx, id); return err })
	return
}

func (s *Store) UpdateMatchRequestStatus(ctx context.Context, id domain.MatchRequestID, status domain.MatchRequestStatus) error {
	return s.locked(func(v *view) error { return v.UpdateMatchRequestStatus(ctx, id, status) })
}

func (s *Store) AddMatchRequestParticipant(ctx context.Context, p domain.MatchRequestParticipant) error {
	return s.locked(func(v *view) error { return v.AddMatchRequestParticipant(ctx, p) })
}

func (s *Store) RemoveMatchRequestParticipant(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) error {
	return s.locked(func(v *view) error { return v.RemoveMatchRequestParticipant(ctx, id, memberID) })
}

func (s *Store) MatchRequestParticipants(ctx context.Context, id domain.MatchRequestID) (out []domain.MatchRequestParticipant, err error) {
	err = s.locked(func(v *view) error { out, err = v.MatchRequestParticipants(ctx, id); return err })
	return
}

func (s *Store) ListMatchRequests(ctx context.Context, status domain.MatchRequestStatus) (out []domain.MatchRequest, err error) {
	err = s.locked(func(v *view) error { out, err = v.ListMatchRequests(ctx, status); return err })
	return
}
