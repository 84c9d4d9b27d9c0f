package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/skincare/internal/domain"
)

//go:embed schema.sql
var schema string

const entriesTable = "diary_entries"

var entryColumns = []string{
	"id", "entry_date", "symptoms", "sleep_hours", "stress_level",
	"used_items", "note", "created_at",
}

// Store handles diary persistence
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the API.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddEntry validates and stores a new entry. ID and CreatedAt are assigned
// when empty.
func (s *Store) AddEntry(ctx context.Context, e domain.DiaryEntry) (*domain.DiaryEntry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query, args, err := s.insert(e)
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return &e, nil
}

// GetEntry retrieves an entry by ID or unique ID prefix
func (s *Store) GetEntry(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "required")
	}
	query, args, err := s.sb.Select(entryColumns...).
		From(entriesTable).
		Where(sq.Expr("substr(id, 1, ?) = ?", utf8.RuneCountInString(id), id)).
		Limit(2).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	entries, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	case 1:
		return &entries[0], nil
	}
	return nil, domain.NewValidationError("id", fmt.Sprintf("prefix %q matches several entries", id))
}

// ListEntries returns entries in diary order (newest date first). A
// non-positive limit returns every entry from offset on.
func (s *Store) ListEntries(ctx context.Context, limit, offset int) ([]domain.DiaryEntry, error) {
	b := paged(s.ordered(s.sb.Select(entryColumns...).From(entriesTable)), limit, offset)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	entries, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// paged applies limit and offset. A limit <= 0 means no limit.
func paged(b sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		if limit <= 0 {
			// SQLite only accepts OFFSET after LIMIT.
			b = b.Limit(uint64(1<<63 - 1))
		}
		b = b.Offset(uint64(offset))
	}
	return b
}

// LoadAll returns every entry in diary order.
func (s *Store) LoadAll(ctx context.Context) ([]domain.DiaryEntry, error) {
	return s.ListEntries(ctx, 0, 0)
}

// SaveAll replaces the whole diary with entries. Every entry is validated
// before anything is written.
func (s *Store) SaveAll(ctx context.Context, entries []domain.DiaryEntry) error {
	now := time.Now().UTC()
	prepared := make([]domain.DiaryEntry, len(entries))
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		prepared[i] = e
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	del, args, err := s.sb.Delete(entriesTable).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	for _, e := range prepared {
		query, args, err := s.insert(e)
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry with the given ID or unique ID prefix
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return err
	}

	query, args, err := s.sb.Delete(entriesTable).Where(sq.Eq{"id": e.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// SearchEntries performs a simple text search over symptoms, used items
// and notes, paged like ListEntries.
func (s *Store) SearchEntries(ctx context.Context, q string, limit, offset int) ([]domain.DiaryEntry, error) {
	pattern := "%" + q + "%"
	b := paged(s.ordered(s.sb.Select(entryColumns...).
		From(entriesTable).
		Where(sq.Or{
			sq.Like{"symptoms": pattern},
			sq.Like{"used_items": pattern},
			sq.Like{"note": pattern},
		})), limit, offset)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	entries, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args, err := s.sb.Select("COUNT(*)").From(entriesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (s *Store) ordered(b sq.SelectBuilder) sq.SelectBuilder {
	return b.OrderBy("entry_date DESC", "created_at DESC")
}

func (s *Store) insert(e domain.DiaryEntry) (string, []any, error) {
	symptoms, err := encodeList(e.Symptoms)
	if err != nil {
		return "", nil, err
	}
	used, err := encodeList(e.UsedItems)
	if err != nil {
		return "", nil, err
	}
	return s.sb.Insert(entriesTable).
		Columns(entryColumns...).
		Values(e.ID, e.Date, symptoms, e.SleepHours, e.StressLevel, used, e.Note, e.CreatedAt.UTC()).
		ToSql()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]domain.DiaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.DiaryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (domain.DiaryEntry, error) {
	var (
		e        domain.DiaryEntry
		symptoms string
		used     string
		sleep    sql.NullFloat64
		stress   sql.NullInt64
	)
	if err := rows.Scan(&e.ID, &e.Date, &symptoms, &sleep, &stress, &used, &e.Note, &e.CreatedAt); err != nil {
		return e, err
	}
	if sleep.Valid {
		v := sleep.Float64
		e.SleepHours = &v
	}
	if stress.Valid {
		v := int(stress.Int64)
		e.StressLevel = &v
	}

	var err error
	if e.Symptoms, err = decodeList(symptoms); err != nil {
		return e, fmt.Errorf("symptoms: %w", err)
	}
	if e.UsedItems, err = decodeList(used); err != nil {
		return e, fmt.Errorf("used_items: %w", err)
	}
	return e, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
