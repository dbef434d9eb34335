package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subhasish12345/SHOPSAGE/internal/db"
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("journal entry not found")

// tsLayout has a fixed width so timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000Z"

const columns = "id, timestamp, flow, source, status, kind, stage, message, model, input_tokens, output_tokens, duration_ms, input, output"

// Store provides CRUD operations for journal entries.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated and if
// the timestamp is zero the current time is used. It returns the stored ID.
func (s *Store) Log(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Source == "" {
		entry.Source = SourceAPI
	}

	input := "{}"
	if len(entry.Input) > 0 {
		input = string(entry.Input)
	}
	var output sql.NullString
	if len(entry.Output) > 0 {
		output = sql.NullString{String: string(entry.Output), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(tsLayout),
		entry.Flow,
		string(entry.Source),
		entry.Status,
		string(entry.Kind),
		string(entry.Stage),
		entry.Message,
		entry.Model,
		entry.InputTokens,
		entry.OutputTokens,
		entry.DurationMS,
		input,
		output,
	)
	if err != nil {
		return "", fmt.Errorf("inserting journal entry: %w", err)
	}
	return entry.ID, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM invocations WHERE id = ?", id)
	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Flow   string
	Status string
	Kind   string
	Source Source
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Flow != "" {
		clauses = append(clauses, "flow = ?")
		args = append(args, filter.Flow)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(tsLayout))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(tsLayout))
	}

	query := "SELECT " + columns + " FROM invocations"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM invocations WHERE timestamp < ?",
		before.UTC().Format(tsLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old journal entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e                       Entry
		ts, source, kind, stage string
		input                   string
		output                  sql.NullString
	)

	err := sc.Scan(
		&e.ID, &ts, &e.Flow, &source, &e.Status, &kind, &stage, &e.Message,
		&e.Model, &e.InputTokens, &e.OutputTokens, &e.DurationMS, &input, &output,
	)
	if err != nil {
		return nil, err
	}

	e.Source = Source(source)
	e.Kind = flow.ErrorKind(kind)
	e.Stage = flow.Stage(stage)
	if t, parseErr := time.Parse(tsLayout, ts); parseErr == nil {
		e.Timestamp = t
	}
	if input != "" {
		e.Input = []byte(input)
	}
	if output.Valid {
		e.Output = []byte(output.String)
	}
	return &e, nil
}
