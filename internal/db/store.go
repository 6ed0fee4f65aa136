// Package db implements the append-only analysis record store on SQLite,
// plus the optional DynamoDB cold archive.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/models"
)

// Store owns the SQLite handle. Records are immutable after Append;
// the only mutation is explicit point deletion.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps analytics reads from blocking on concurrent appends.
	handle.SetMaxOpenConns(10)
	handle.SetMaxIdleConns(2)
	if _, err := handle.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := handle.Exec("PRAGMA busy_timeout = 30000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := handle.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	store := &Store{db: handle}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("[Store] SQLite record store ready", slog.String("path", path))
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		source_text TEXT NOT NULL,
		response_text TEXT NOT NULL,
		modality TEXT NOT NULL DEFAULT 'none',
		compound REAL NOT NULL,
		positive REAL NOT NULL,
		neutral REAL NOT NULL,
		negative REAL NOT NULL,
		content_length INTEGER NOT NULL,
		emotions TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_created_at ON analysis_records(created_at);
	CREATE INDEX IF NOT EXISTS idx_records_modality ON analysis_records(modality);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one record and assigns its id. Each append is its own
// short transaction; callers treat failure as best-effort.
func (s *Store) Append(ctx context.Context, record *models.AnalysisRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Modality == "" {
		record.Modality = models.ModalityNone
	}

	var emotions any
	if record.HasEmotions() {
		encoded, err := json.Marshal(record.Emotions)
		if err != nil {
			return fmt.Errorf("failed to encode emotion distribution: %w", err)
		}
		emotions = string(encoded)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_records
			(created_at, source_text, response_text, modality, compound, positive, neutral, negative, content_length, emotions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.CreatedAt.UnixNano(),
		record.SourceText,
		record.ResponseText,
		string(record.Modality),
		record.Sentiment.Compound,
		record.Sentiment.Positive,
		record.Sentiment.Neutral,
		record.Sentiment.Negative,
		record.ContentLength,
		emotions,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read record id: %w", err)
	}
	record.ID = id
	return nil
}

// SortField selects the column a range query is ordered by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByLength    SortField = "length"
	SortBySentiment SortField = "sentiment"
)

// RecordFilter restricts and orders a range query. Nil bounds are open.
type RecordFilter struct {
	Since        *time.Time
	Until        *time.Time
	Modality     *models.Modality
	MinSentiment *float64
	MaxSentiment *float64
	SortBy       SortField
	Ascending    bool
	Offset       int
	Limit        int
}

var sortColumns = map[SortField]string{
	SortByTimestamp: "created_at",
	SortByLength:    "content_length",
	SortBySentiment: "compound",
}

// Query returns a snapshot of matching records as of query time. No
// isolation is promised against appends racing the read.
func (s *Store) Query(ctx context.Context, filter RecordFilter) ([]models.AnalysisRecord, error) {
	var conditions []string
	var args []any

	if filter.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Until != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, filter.Until.UnixNano())
	}
	if filter.Modality != nil {
		conditions = append(conditions, "modality = ?")
		args = append(args, string(*filter.Modality))
	}
	if filter.MinSentiment != nil {
		conditions = append(conditions, "compound >= ?")
		args = append(args, *filter.MinSentiment)
	}
	if filter.MaxSentiment != nil {
		conditions = append(conditions, "compound <= ?")
		args = append(args, *filter.MaxSentiment)
	}

	query := `SELECT id, created_at, source_text, response_text, modality,
		compound, positive, neutral, negative, content_length, emotions
		FROM analysis_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	// Secondary order on id keeps pagination stable across equal keys.
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	var createdAt int64
	var modality string
	var emotions sql.NullString

	err := rows.Scan(
		&record.ID,
		&createdAt,
		&record.SourceText,
		&record.ResponseText,
		&modality,
		&record.Sentiment.Compound,
		&record.Sentiment.Positive,
		&record.Sentiment.Neutral,
		&record.Sentiment.Negative,
		&record.ContentLength,
		&emotions,
	)
	if err != nil {
		return record, fmt.Errorf("failed to scan record: %w", err)
	}

	record.CreatedAt = time.Unix(0, createdAt).UTC()
	record.Modality = models.Modality(modality)
	if emotions.Valid && emotions.String != "" {
		if err := json.Unmarshal([]byte(emotions.String), &record.Emotions); err != nil {
			return record, fmt.Errorf("failed to decode stored emotions for record %d: %w", record.ID, err)
		}
	}
	return record, nil
}

// Delete removes one record by id. Missing ids are a distinct not-found
// outcome, not a silent no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM analysis_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm delete of record %d: %w", id, err)
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analysis_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
