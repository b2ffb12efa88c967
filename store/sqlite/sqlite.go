/*
Package sqlite is the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements domain.Store and domain.TxStore over a single SQLite file
  (or ":memory:" for tests). The same patterns carry to PostgreSQL with
  minor dialect changes.

ATOMIC UNITS AND CONCURRENCY:
  WithTx takes the store's write lock for the WHOLE unit, then runs the
  callback against one database transaction. Conflicting units are
  therefore serialized: a conflict-detection read (FindOverlap, balance
  check) and the write it protects are indivisible with respect to other
  units. Plain reads outside WithTx take the read lock only.

  On top of the lock, reservations carry an optimistic version token:
  UpdateReservation writes only when the stored version matches, so a
  unit acting on a stale snapshot fails with ErrConcurrentModification
  instead of silently overwriting.

MONEY AND TIME:
  Money is stored as exact decimal strings (TEXT), never floats.
  Timestamps are RFC3339 TEXT in UTC. Sums over money are computed in Go
  with decimal arithmetic; SQLite's SUM would coerce to float.

GUARDED STATUS MOVES:
  MarkEntry compiles to UPDATE ... WHERE id = ? AND status = ?, so the
  Pending -> Completed move applies at most once regardless of how many
  units attempt it.

WAL MODE:
  The database is opened with WAL and foreign keys on: readers don't
  block, single writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/club.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). A production deployment would use a
  versioned migration tool instead.

SEE ALSO:
  - domain/store.go: interface contracts
  - store/memory: in-memory implementation for workflow tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pcm/club-engine/domain"
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need, so every
// query runs either directly or inside an atomic unit.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		wallet_balance TEXT NOT NULL,
		total_spent TEXT NOT NULL,
		tier TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		joined_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS courts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price_per_hour TEXT NOT NULL,
		description TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Append-only wallet ledger. The only UPDATE is the guarded status
	-- move in MarkEntry; there is no DELETE.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES members(id),
		amount TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('deposit', 'payment', 'refund')),
		status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'rejected')),
		description TEXT,
		related_id TEXT,
		proof_ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_member
		ON ledger_entries(member_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_ledger_pending_deposits
		ON ledger_entries(status, kind, created_at)
		WHERE status = 'pending' AND kind = 'deposit';

	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		court_id TEXT NOT NULL REFERENCES courts(id),
		member_id TEXT NOT NULL REFERENCES members(id),
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		total_price TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending_payment', 'confirmed', 'cancelled', 'completed')),
		entry_id TEXT,
		parent_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	-- Hot path: overlap detection per court.
	CREATE INDEX IF NOT EXISTS idx_reservations_court_window
		ON reservations(court_id, start_at, end_at);
	CREATE INDEX IF NOT EXISTS idx_reservations_member
		ON reservations(member_id, start_at DESC);

	CREATE TABLE IF NOT EXISTS tournaments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		entry_fee TEXT NOT NULL,
		prize_pool TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('open', 'ongoing', 'finished')),
		created_at TEXT NOT NULL
	);

	-- One entry per member per tournament, enforced here.
	CREATE TABLE IF NOT EXISTS tournament_participants (
		tournament_id TEXT NOT NULL REFERENCES tournaments(id),
		member_id TEXT NOT NULL REFERENCES members(id),
		fee_paid BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at TEXT NOT NULL,
		PRIMARY KEY (tournament_id, member_id)
	);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		tournament_id TEXT NOT NULL REFERENCES tournaments(id),
		round TEXT NOT NULL,
		side1 TEXT,
		side2 TEXT,
		score1 INTEGER NOT NULL DEFAULT 0,
		score2 INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT 'none',
		status TEXT NOT NULL CHECK (status IN ('scheduled', 'finished')),
		next_match_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_matches_tournament
		ON matches(tournament_id);

	CREATE TABLE IF NOT EXISTS match_requests (
		id TEXT PRIMARY KEY,
		creator_id TEXT NOT NULL REFERENCES members(id),
		title TEXT NOT NULL,
		description TEXT,
		play_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		court_id TEXT,
		max_players INTEGER NOT NULL,
		skill_level_min REAL NOT NULL DEFAULT 0,
		skill_level_max REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL CHECK (status IN ('open', 'full', 'cancelled')),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_requests_status
		ON match_requests(status, created_at DESC);

	CREATE TABLE IF NOT EXISTS match_request_participants (
		match_request_id TEXT NOT NULL REFERENCES match_requests(id),
		member_id TEXT NOT NULL REFERENCES members(id),
		joined_at TEXT NOT NULL,
		PRIMARY KEY (match_request_id, member_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS (domain.TxStore)
// =============================================================================

// WithTx executes fn against one database transaction, holding the write
// lock for the unit's whole duration so conflicting units serialize.
func (s *Store) WithTx(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore is the transaction-scoped Store view handed to WithTx
// callbacks. It runs every query on the open *sql.Tx so the unit sees
// its own uncommitted writes. No locking here; WithTx already holds the
// write lock.
type txStore struct {
	q *sql.Tx
}

// =============================================================================
// MEMBERS
// =============================================================================

func (s *Store) SaveMember(ctx context.Context, m domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveMember(ctx, s.db, m)
}

func (ts *txStore) SaveMember(ctx context.Context, m domain.Member) error {
	return saveMember(ctx, ts.q, m)
}

func saveMember(ctx context.Context, q dbtx, m domain.Member) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO members (id, full_name, wallet_balance, total_spent, tier, active, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			tier = excluded.tier,
			active = excluded.active`,
		m.ID, m.FullName, m.WalletBalance.String(), m.TotalSpent.String(),
		m.Tier, m.Active, m.JoinedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetMember(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMember(ctx, s.db, id)
}

func (ts *txStore) GetMember(ctx context.Context, id domain.MemberID) (*domain.Member, error) {
	return getMember(ctx, ts.q, id)
}

func getMember(ctx context.Context, q dbtx, id domain.MemberID) (*domain.Member, error) {
	var (
		m              domain.Member
		balance, spent string
		joinedAt       string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, full_name, wallet_balance, total_spent, tier, active, joined_at
		FROM members WHERE id = ?`, id,
	).Scan(&m.ID, &m.FullName, &balance, &spent, &m.Tier, &m.Active, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	m.WalletBalance = mustDecimal(balance)
	m.TotalSpent = mustDecimal(spent)
	m.JoinedAt = mustTime(joinedAt)
	return &m, nil
}

func (s *Store) UpdateMemberBalance(ctx context.Context, id domain.MemberID, balance, totalSpent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateMemberBalance(ctx, s.db, id, balance, totalSpent)
}

func (ts *txStore) UpdateMemberBalance(ctx context.Context, id domain.MemberID, balance, totalSpent decimal.Decimal) error {
	return updateMemberBalance(ctx, ts.q, id, balance, totalSpent)
}

func updateMemberBalance(ctx context.Context, q dbtx, id domain.MemberID, balance, totalSpent decimal.Decimal) error {
	res, err := q.ExecContext(ctx,
		"UPDATE members SET wallet_balance = ?, total_spent = ? WHERE id = ?",
		balance.String(), totalSpent.String(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMembers(ctx, s.db)
}

func (ts *txStore) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return listMembers(ctx, ts.q)
}

func listMembers(ctx context.Context, q dbtx) ([]domain.Member, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, full_name, wallet_balance, total_spent, tier, active, joined_at
		FROM members ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var (
			m              domain.Member
			balance, spent string
			joinedAt       string
		)
		if err := rows.Scan(&m.ID, &m.FullName, &balance, &spent, &m.Tier, &m.Active, &joinedAt); err != nil {
			return nil, err
		}
		m.WalletBalance = mustDecimal(balance)
		m.TotalSpent = mustDecimal(spent)
		m.JoinedAt = mustTime(joinedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

// =============================================================================
// COURTS
// =============================================================================

func (s *Store) SaveCourt(ctx context.Context, c domain.Court) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCourt(ctx, s.db, c)
}

func (ts *txStore) SaveCourt(ctx context.Context, c domain.Court) error {
	return saveCourt(ctx, ts.q, c)
}

func saveCourt(ctx context.Context, q dbtx, c domain.Court) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO courts (id, name, price_per_hour, description, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price_per_hour = excluded.price_per_hour,
			description = excluded.description,
			active = excluded.active`,
		c.ID, c.Name, c.PricePerHour.String(), c.Description, c.Active,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetCourt(ctx context.Context, id domain.CourtID) (*domain.Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCourt(ctx, s.db, id)
}

func (ts *txStore) GetCourt(ctx context.Context, id domain.CourtID) (*domain.Court, error) {
	return getCourt(ctx, ts.q, id)
}

func getCourt(ctx context.Context, q dbtx, id domain.CourtID) (*domain.Court, error) {
	var (
		c         domain.Court
		price     string
		createdAt string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, name, price_per_hour, description, active, created_at
		FROM courts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &price, &c.Description, &c.Active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCourtNotFound
	}
	if err != nil {
		return nil, err
	}
	c.PricePerHour = mustDecimal(price)
	c.CreatedAt = mustTime(createdAt)
	return &c, nil
}

func (s *Store) ListCourts(ctx context.Context, activeOnly bool) ([]domain.Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCourts(ctx, s.db, activeOnly)
}

func (ts *txStore) ListCourts(ctx context.Context, activeOnly bool) ([]domain.Court, error) {
	return listCourts(ctx, ts.q, activeOnly)
}

func listCourts(ctx context.Context, q dbtx, activeOnly bool) ([]domain.Court, error) {
	query := `
		SELECT id, name, price_per_hour, description, active, created_at
		FROM courts`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []domain.Court
	for rows.Next() {
		var (
			c         domain.Court
			price     string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &price, &c.Description, &c.Active, &createdAt); err != nil {
			return nil, err
		}
		c.PricePerHour = mustDecimal(price)
		c.CreatedAt = mustTime(createdAt)
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) AppendEntry(ctx context.Context, e domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEntry(ctx, s.db, e)
}

func (ts *txStore) AppendEntry(ctx context.Context, e domain.LedgerEntry) error {
	return appendEntry(ctx, ts.q, e)
}

func appendEntry(ctx context.Context, q dbtx, e domain.LedgerEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(id, member_id, amount, kind, status, description, related_id, proof_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.MemberID, e.Amount.String(), e.Kind, e.Status,
		e.Description, e.RelatedID, e.ProofRef,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id domain.EntryID) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEntry(ctx, s.db, id)
}

func (ts *txStore) GetEntry(ctx context.Context, id domain.EntryID) (*domain.LedgerEntry, error) {
	return getEntry(ctx, ts.q, id)
}

func getEntry(ctx context.Context, q dbtx, id domain.EntryID) (*domain.LedgerEntry, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, member_id, amount, kind, status, description, related_id, proof_ref, created_at
		FROM ledger_entries WHERE id = ?`, id)
	e, err := scanEntryRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MarkEntry is the guarded status move: the UPDATE only matches when the
// stored status equals `from`, so it can never apply twice.
func (s *Store) MarkEntry(ctx context.Context, id domain.EntryID, from, to domain.EntryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markEntry(ctx, s.db, id, from, to)
}

func (ts *txStore) MarkEntry(ctx context.Context, id domain.EntryID, from, to domain.EntryStatus) error {
	return markEntry(ctx, ts.q, id, from, to)
}

func markEntry(ctx context.Context, q dbtx, id domain.EntryID, from, to domain.EntryStatus) error {
	if !from.CanTransitionTo(to) {
		return &domain.InvalidTransitionError{Entity: "ledger entry", From: string(from), To: string(to)}
	}

	res, err := q.ExecContext(ctx,
		"UPDATE ledger_entries SET status = ? WHERE id = ? AND status = ?",
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM ledger_entries WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrEntryNotFound
		}
		return &domain.InvalidTransitionError{Entity: "ledger entry", From: "not " + string(from), To: string(to)}
	}
	return nil
}

func (s *Store) EntriesByMember(ctx context.Context, id domain.MemberID) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entriesByMember(ctx, s.db, id)
}

func (ts *txStore) EntriesByMember(ctx context.Context, id domain.MemberID) ([]domain.LedgerEntry, error) {
	return entriesByMember(ctx, ts.q, id)
}

func entriesByMember(ctx context.Context, q dbtx, id domain.MemberID) ([]domain.LedgerEntry, error) {
	return queryEntries(ctx, q, `
		SELECT id, member_id, amount, kind, status, description, related_id, proof_ref, created_at
		FROM ledger_entries
		WHERE member_id = ?
		ORDER BY created_at DESC, id DESC`, id)
}

func (s *Store) PendingDeposits(ctx context.Context) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pendingDeposits(ctx, s.db)
}

func (ts *txStore) PendingDeposits(ctx context.Context) ([]domain.LedgerEntry, error) {
	return pendingDeposits(ctx, ts.q)
}

func pendingDeposits(ctx context.Context, q dbtx) ([]domain.LedgerEntry, error) {
	return queryEntries(ctx, q, `
		SELECT id, member_id, amount, kind, status, description, related_id, proof_ref, created_at
		FROM ledger_entries
		WHERE status = 'pending' AND kind = 'deposit'
		ORDER BY created_at ASC`)
}

// CompletedSum sums Completed amounts in Go with decimal arithmetic;
// SQLite's SUM over the TEXT column would fall back to float.
func (s *Store) CompletedSum(ctx context.Context, id domain.MemberID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return completedSum(ctx, s.db, id)
}

func (ts *txStore) CompletedSum(ctx context.Context, id domain.MemberID) (decimal.Decimal, error) {
	return completedSum(ctx, ts.q, id)
}

func completedSum(ctx context.Context, q dbtx, id domain.MemberID) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT amount FROM ledger_entries WHERE member_id = ? AND status = 'completed'", id)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(mustDecimal(amount))
	}
	return sum, rows.Err()
}

func queryEntries(ctx context.Context, q dbtx, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntryRow(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		e                             domain.LedgerEntry
		amount, createdAt             string
		description, relatedID, proof sql.NullString
	)
	err := row.Scan(&e.ID, &e.MemberID, &amount, &e.Kind, &e.Status,
		&description, &relatedID, &proof, &createdAt)
	if err != nil {
		return nil, err
	}
	e.Amount = mustDecimal(amount)
	e.Description = description.String
	e.RelatedID = relatedID.String
	e.ProofRef = proof.String
	e.CreatedAt = mustTime(createdAt)
	return &e, nil
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func (s *Store) SaveReservation(ctx context.Context, r domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveReservation(ctx, s.db, r)
}

func (ts *txStore) SaveReservation(ctx context.Context, r domain.Reservation) error {
	return saveReservation(ctx, ts.q, r)
}

func saveReservation(ctx context.Context, q dbtx, r domain.Reservation) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO reservations
		(id, court_id, member_id, start_at, end_at, total_price, status, entry_id, parent_id, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		r.ID, r.CourtID, r.MemberID,
		r.Slot.Start.UTC().Format(time.RFC3339),
		r.Slot.End.UTC().Format(time.RFC3339),
		r.TotalPrice.String(), r.Status,
		nullString(string(r.EntryID)), nullString(string(r.ParentID)),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetMemberReservation(ctx context.Context, memberID domain.MemberID, id domain.ReservationID) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMemberReservation(ctx, s.db, memberID, id)
}

func (ts *txStore) GetMemberReservation(ctx context.Context, memberID domain.MemberID, id domain.ReservationID) (*domain.Reservation, error) {
	return getMemberReservation(ctx, ts.q, memberID, id)
}

func getMemberReservation(ctx context.Context, q dbtx, memberID domain.MemberID, id domain.ReservationID) (*domain.Reservation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, court_id, member_id, start_at, end_at, total_price, status, entry_id, parent_id, version, created_at
		FROM reservations WHERE id = ? AND member_id = ?`, id, memberID)
	r, err := scanReservationRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReservation writes the status with an optimistic version check:
// the row must still carry r.Version. A stale token is reported as a
// retryable conflict.
func (s *Store) UpdateReservation(ctx context.Context, r domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateReservation(ctx, s.db, r)
}

func (ts *txStore) UpdateReservation(ctx context.Context, r domain.Reservation) error {
	return updateReservation(ctx, ts.q, r)
}

func updateReservation(ctx context.Context, q dbtx, r domain.Reservation) error {
	res, err := q.ExecContext(ctx,
		"UPDATE reservations SET status = ?, version = version + 1 WHERE id = ? AND version = ?",
		r.Status, r.ID, r.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM reservations WHERE id = ?", r.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrReservationNotFound
		}
		return domain.ErrConcurrentModification
	}
	return nil
}

// FindOverlap returns a non-cancelled reservation intersecting the
// half-open [Start, End) interval, or nil. Two slots overlap iff each
// starts before the other ends.
func (s *Store) FindOverlap(ctx context.Context, courtID domain.CourtID, iv domain.Interval) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findOverlap(ctx, s.db, courtID, iv)
}

func (ts *txStore) FindOverlap(ctx context.Context, courtID domain.CourtID, iv domain.Interval) (*domain.Reservation, error) {
	return findOverlap(ctx, ts.q, courtID, iv)
}

func findOverlap(ctx context.Context, q dbtx, courtID domain.CourtID, iv domain.Interval) (*domain.Reservation, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, court_id, member_id, start_at, end_at, total_price, status, entry_id, parent_id, version, created_at
		FROM reservations
		WHERE court_id = ? AND status != 'cancelled'
		  AND start_at < ? AND end_at > ?
		LIMIT 1`,
		courtID,
		iv.End.UTC().Format(time.RFC3339),
		iv.Start.UTC().Format(time.RFC3339),
	)
	r, err := scanReservationRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ReservationsByMember(ctx context.Context, id domain.MemberID) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reservationsByMember(ctx, s.db, id)
}

func (ts *txStore) ReservationsByMember(ctx context.Context, id domain.MemberID) ([]domain.Reservation, error) {
	return reservationsByMember(ctx, ts.q, id)
}

func reservationsByMember(ctx context.Context, q dbtx, id domain.MemberID) ([]domain.Reservation, error) {
	return queryReservations(ctx, q, `
		SELECT id, court_id, member_id, start_at, end_at, total_price, status, entry_id, parent_id, version, created_at
		FROM reservations
		WHERE member_id = ?
		ORDER BY start_at DESC`, id)
}

func (s *Store) ReservationsInWindow(ctx context.Context, iv domain.Interval) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reservationsInWindow(ctx, s.db, iv)
}

func (ts *txStore) ReservationsInWindow(ctx context.Context, iv domain.Interval) ([]domain.Reservation, error) {
	return reservationsInWindow(ctx, ts.q, iv)
}

func reservationsInWindow(ctx context.Context, q dbtx, iv domain.Interval) ([]domain.Reservation, error) {
	return queryReservations(ctx, q, `
		SELECT id, court_id, member_id, start_at, end_at, total_price, status, entry_id, parent_id, version, created_at
		FROM reservations
		WHERE status != 'cancelled'
		  AND start_at < ? AND end_at > ?
		ORDER BY start_at ASC`,
		iv.End.UTC().Format(time.RFC3339),
		iv.Start.UTC().Format(time.RFC3339),
	)
}

func queryReservations(ctx context.Context, q dbtx, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		r, err := scanReservationRow(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

func scanReservationRow(row rowScanner) (*domain.Reservation, error) {
	var (
		r                 domain.Reservation
		startAt, endAt    string
		price, createdAt  string
		entryID, parentID sql.NullString
	)
	err := row.Scan(&r.ID, &r.CourtID, &r.MemberID, &startAt, &endAt,
		&price, &r.Status, &entryID, &parentID, &r.Version, &createdAt)
	if err != nil {
		return nil, err
	}
	r.Slot = domain.Interval{Start: mustTime(startAt), End: mustTime(endAt)}
	r.TotalPrice = mustDecimal(price)
	r.EntryID = domain.EntryID(entryID.String)
	r.ParentID = domain.ReservationID(parentID.String)
	r.CreatedAt = mustTime(createdAt)
	return &r, nil
}

// =============================================================================
// TOURNAMENTS
// =============================================================================

func (s *Store) SaveTournament(ctx context.Context, t domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTournament(ctx, s.db, t)
}

func (ts *txStore) SaveTournament(ctx context.Context, t domain.Tournament) error {
	return saveTournament(ctx, ts.q, t)
}

func saveTournament(ctx context.Context, q dbtx, t domain.Tournament) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, start_date, end_date, entry_fee, prize_pool, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name,
		t.StartDate.UTC().Format(time.RFC3339),
		t.EndDate.UTC().Format(time.RFC3339),
		t.EntryFee.String(), t.PrizePool.String(), t.Status,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetTournament(ctx context.Context, id domain.TournamentID) (*domain.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTournament(ctx, s.db, id)
}

func (ts *txStore) GetTournament(ctx context.Context, id domain.TournamentID) (*domain.Tournament, error) {
	return getTournament(ctx, ts.q, id)
}

func getTournament(ctx context.Context, q dbtx, id domain.TournamentID) (*domain.Tournament, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, entry_fee, prize_pool, status, created_at
		FROM tournaments WHERE id = ?`, id)
	t, err := scanTournamentRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) UpdateTournament(ctx context.Context, t domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateTournament(ctx, s.db, t)
}

func (ts *txStore) UpdateTournament(ctx context.Context, t domain.Tournament) error {
	return updateTournament(ctx, ts.q, t)
}

func updateTournament(ctx context.Context, q dbtx, t domain.Tournament) error {
	res, err := q.ExecContext(ctx,
		"UPDATE tournaments SET prize_pool = ?, status = ? WHERE id = ?",
		t.PrizePool.String(), t.Status, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTournamentNotFound
	}
	return nil
}

func (s *Store) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTournaments(ctx, s.db)
}

func (ts *txStore) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	return listTournaments(ctx, ts.q)
}

func listTournaments(ctx context.Context, q dbtx) ([]domain.Tournament, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, entry_fee, prize_pool, status, created_at
		FROM tournaments ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []domain.Tournament
	for rows.Next() {
		t, err := scanTournamentRow(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func scanTournamentRow(row rowScanner) (*domain.Tournament, error) {
	var (
		t                    domain.Tournament
		startDate, endDate   string
		fee, pool, createdAt string
	)
	err := row.Scan(&t.ID, &t.Name, &startDate, &endDate, &fee, &pool, &t.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	t.StartDate = mustTime(startDate)
	t.EndDate = mustTime(endDate)
	t.EntryFee = mustDecimal(fee)
	t.PrizePool = mustDecimal(pool)
	t.CreatedAt = mustTime(createdAt)
	return &t, nil
}

func (s *Store) AddParticipant(ctx context.Context, p domain.TournamentParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addParticipant(ctx, s.db, p)
}

func (ts *txStore) AddParticipant(ctx context.Context, p domain.TournamentParticipant) error {
	return addParticipant(ctx, ts.q, p)
}

func addParticipant(ctx context.Context, q dbtx, p domain.TournamentParticipant) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tournament_participants (tournament_id, member_id, fee_paid, joined_at)
		VALUES (?, ?, ?, ?)`,
		p.TournamentID, p.MemberID, p.FeePaid,
		p.JoinedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateJoin
		}
		return err
	}
	return nil
}

func (s *Store) Participants(ctx context.Context, id domain.TournamentID) ([]domain.TournamentParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return participants(ctx, s.db, id)
}

func (ts *txStore) Participants(ctx context.Context, id domain.TournamentID) ([]domain.TournamentParticipant, error) {
	return participants(ctx, ts.q, id)
}

func participants(ctx context.Context, q dbtx, id domain.TournamentID) ([]domain.TournamentParticipant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tournament_id, member_id, fee_paid, joined_at
		FROM tournament_participants
		WHERE tournament_id = ?
		ORDER BY joined_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TournamentParticipant
	for rows.Next() {
		var (
			p        domain.TournamentParticipant
			joinedAt string
		)
		if err := rows.Scan(&p.TournamentID, &p.MemberID, &p.FeePaid, &joinedAt); err != nil {
			return nil, err
		}
		p.JoinedAt = mustTime(joinedAt)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) SaveMatches(ctx context.Context, matches []domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveMatches(ctx, s.db, matches)
}

func (ts *txStore) SaveMatches(ctx context.Context, matches []domain.Match) error {
	return saveMatches(ctx, ts.q, matches)
}

func saveMatches(ctx context.Context, q dbtx, matches []domain.Match) error {
	for _, m := range matches {
		_, err := q.ExecContext(ctx, `
			INSERT INTO matches
			(id, tournament_id, round, side1, side2, score1, score2, winner, status, next_match_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.TournamentID, m.Round,
			nullMemberID(m.Side1), nullMemberID(m.Side2),
			m.Score1, m.Score2, m.Winner, m.Status,
			nullMatchID(m.NextMatchID),
		)
		if err != nil {
			return fmt.Errorf("failed to save match: %w", err)
		}
	}
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id domain.MatchID) (*domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMatch(ctx, s.db, id)
}

func (ts *txStore) GetMatch(ctx context.Context, id domain.MatchID) (*domain.Match, error) {
	return getMatch(ctx, ts.q, id)
}

func getMatch(ctx context.Context, q dbtx, id domain.MatchID) (*domain.Match, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, tournament_id, round, side1, side2, score1, score2, winner, status, next_match_id
		FROM matches WHERE id = ?`, id)
	m, err := scanMatchRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) UpdateMatch(ctx context.Context, m domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateMatch(ctx, s.db, m)
}

func (ts *txStore) UpdateMatch(ctx context.Context, m domain.Match) error {
	return updateMatch(ctx, ts.q, m)
}

func updateMatch(ctx context.Context, q dbtx, m domain.Match) error {
	res, err := q.ExecContext(ctx,
		"UPDATE matches SET score1 = ?, score2 = ?, winner = ?, status = ? WHERE id = ?",
		m.Score1, m.Score2, m.Winner, m.Status, m.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

func (s *Store) MatchesByTournament(ctx context.Context, id domain.TournamentID) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return matchesByTournament(ctx, s.db, id)
}

func (ts *txStore) MatchesByTournament(ctx context.Context, id domain.TournamentID) ([]domain.Match, error) {
	return matchesByTournament(ctx, ts.q, id)
}

func matchesByTournament(ctx context.Context, q dbtx, id domain.TournamentID) ([]domain.Match, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tournament_id, round, side1, side2, score1, score2, winner, status, next_match_id
		FROM matches
		WHERE tournament_id = ?
		ORDER BY round ASC, id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanMatchRow(row rowScanner) (*domain.Match, error) {
	var (
		m            domain.Match
		side1, side2 sql.NullString
		nextMatchID  sql.NullString
	)
	err := row.Scan(&m.ID, &m.TournamentID, &m.Round, &side1, &side2,
		&m.Score1, &m.Score2, &m.Winner, &m.Status, &nextMatchID)
	if err != nil {
		return nil, err
	}
	if side1.Valid {
		id := domain.MemberID(side1.String)
		m.Side1 = &id
	}
	if side2.Valid {
		id := domain.MemberID(side2.String)
		m.Side2 = &id
	}
	if nextMatchID.Valid {
		id := domain.MatchID(nextMatchID.String)
		m.NextMatchID = &id
	}
	return &m, nil
}

// =============================================================================
// MATCH REQUESTS
// =============================================================================

func (s *Store) SaveMatchRequest(ctx context.Context, r domain.MatchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveMatchRequest(ctx, s.db, r)
}

func (ts *txStore) SaveMatchRequest(ctx context.Context, r domain.MatchRequest) error {
	return saveMatchRequest(ctx, ts.q, r)
}

func saveMatchRequest(ctx context.Context, q dbtx, r domain.MatchRequest) error {
	var courtID sql.NullString
	if r.CourtID != nil {
		courtID = sql.NullString{String: string(*r.CourtID), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO match_requests
		(id, creator_id, title, description, play_date, start_time, end_time, court_id,
		 max_players, skill_level_min, skill_level_max, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatorID, r.Title, r.Description,
		r.PlayDate.UTC().Format(time.RFC3339),
		r.StartTime, r.EndTime, courtID,
		r.MaxPlayers, r.SkillLevelMin, r.SkillLevelMax, r.Status,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetMatchRequest(ctx context.Context, id domain.MatchRequestID) (*domain.MatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMatchRequest(ctx, s.db, id)
}

func (ts *txStore) GetMatchRequest(ctx context.Context, id domain.MatchRequestID) (*domain.MatchRequest, error) {
	return getMatchRequest(ctx, ts.q, id)
}

func getMatchRequest(ctx context.Context, q dbtx, id domain.MatchRequestID) (*domain.MatchRequest, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, creator_id, title, description, play_date, start_time, end_time, court_id,
		       max_players, skill_level_min, skill_level_max, status, created_at
		FROM match_requests WHERE id = ?`, id)
	r, err := scanMatchRequestRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) UpdateMatchRequestStatus(ctx context.Context, id domain.MatchRequestID, status domain.MatchRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateMatchRequestStatus(ctx, s.db, id, status)
}

func (ts *txStore) UpdateMatchRequestStatus(ctx context.Context, id domain.MatchRequestID, status domain.MatchRequestStatus) error {
	return updateMatchRequestStatus(ctx, ts.q, id, status)
}

func updateMatchRequestStatus(ctx context.Context, q dbtx, id domain.MatchRequestID, status domain.MatchRequestStatus) error {
	res, err := q.ExecContext(ctx,
		"UPDATE match_requests SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMatchRequestNotFound
	}
	return nil
}

func (s *Store) AddMatchRequestParticipant(ctx context.Context, p domain.MatchRequestParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addMatchRequestParticipant(ctx, s.db, p)
}

func (ts *txStore) AddMatchRequestParticipant(ctx context.Context, p domain.MatchRequestParticipant) error {
	return addMatchRequestParticipant(ctx, ts.q, p)
}

func addMatchRequestParticipant(ctx context.Context, q dbtx, p domain.MatchRequestParticipant) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO match_request_participants (match_request_id, member_id, joined_at)
		VALUES (?, ?, ?)`,
		p.MatchRequestID, p.MemberID,
		p.JoinedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateJoin
		}
		return err
	}
	return nil
}

func (s *Store) RemoveMatchRequestParticipant(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeMatchRequestParticipant(ctx, s.db, id, memberID)
}

func (ts *txStore) RemoveMatchRequestParticipant(ctx context.Context, id domain.MatchRequestID, memberID domain.MemberID) error {
	return removeMatchRequestParticipant(ctx, ts.q, id, memberID)
}

func removeMatchRequestParticipant(ctx context.Context, q dbtx, id domain.MatchRequestID, memberID domain.MemberID) error {
	res, err := q.ExecContext(ctx,
		"DELETE FROM match_request_participants WHERE match_request_id = ? AND member_id = ?",
		id, memberID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotParticipant
	}
	return nil
}

func (s *Store) MatchRequestParticipants(ctx context.Context, id domain.MatchRequestID) ([]domain.MatchRequestParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return matchRequestParticipants(ctx, s.db, id)
}

func (ts *txStore) MatchRequestParticipants(ctx context.Context, id domain.MatchRequestID) ([]domain.MatchRequestParticipant, error) {
	return matchRequestParticipants(ctx, ts.q, id)
}

func matchRequestParticipants(ctx context.Context, q dbtx, id domain.MatchRequestID) ([]domain.MatchRequestParticipant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT match_request_id, member_id, joined_at
		FROM match_request_participants
		WHERE match_request_id = ?
		ORDER BY joined_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MatchRequestParticipant
	for rows.Next() {
		var (
			p        domain.MatchRequestParticipant
			joinedAt string
		)
		if err := rows.Scan(&p.MatchRequestID, &p.MemberID, &joinedAt); err != nil {
			return nil, err
		}
		p.JoinedAt = mustTime(joinedAt)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) ListMatchRequests(ctx context.Context, status domain.MatchRequestStatus) ([]domain.MatchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMatchRequests(ctx, s.db, status)
}

func (ts *txStore) ListMatchRequests(ctx context.Context, status domain.MatchRequestStatus) ([]domain.MatchRequest, error) {
	return listMatchRequests(ctx, ts.q, status)
}

func listMatchRequests(ctx context.Context, q dbtx, status domain.MatchRequestStatus) ([]domain.MatchRequest, error) {
	query := `
		SELECT id, creator_id, title, description, play_date, start_time, end_time, court_id,
		       max_players, skill_level_min, skill_level_max, status, created_at
		FROM match_requests`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.MatchRequest
	for rows.Next() {
		r, err := scanMatchRequestRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanMatchRequestRow(row rowScanner) (*domain.MatchRequest, error) {
	var (
		r                 domain.MatchRequest
		playDate, created string
		description       sql.NullString
		courtID           sql.NullString
	)
	err := row.Scan(&r.ID, &r.CreatorID, &r.Title, &description, &playDate,
		&r.StartTime, &r.EndTime, &courtID,
		&r.MaxPlayers, &r.SkillLevelMin, &r.SkillLevelMax, &r.Status, &created)
	if err != nil {
		return nil, err
	}
	r.Description = description.String
	r.PlayDate = mustTime(playDate)
	if courtID.Valid {
		id := domain.CourtID(courtID.String)
		r.CourtID = &id
	}
	r.CreatedAt = mustTime(created)
	return &r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mustTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullMemberID(id *domain.MemberID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}

func nullMatchID(id *domain.MatchID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
