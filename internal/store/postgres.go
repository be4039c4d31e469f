package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const analysesTable = "analyses"

var (
	psql           = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	summaryColumns = []string{"id", "session_id", "segment", "generated_at", "created_at"}
	entryColumns   = []string{"id", "session_id", "segment", "generated_at", "created_at", "document"}
)

// Store is the PostgreSQL Archive.
type Store struct {
	pool DBPool
	log  *zap.Logger
	now  func() time.Time
}

// Connect opens a connection pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
		now:  time.Now,
	}, nil
}

func (s *Store) Save(ctx context.Context, entry Entry) (string, error) {
	if entry.Result == nil {
		return "", errors.New("cannot archive an entry without a result")
	}
	document, err := entry.Result.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	// Ensure the timestamp is in UTC before insertion to prevent ambiguity.
	createdAt := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		createdAt = s.now().UTC()
	}

	query, args, err := psql.Insert(analysesTable).
		Columns("id", "session_id", "segment", "generated_at", "created_at", "document").
		Values(entry.ID, entry.SessionID, entry.Segment, entry.GeneratedAt, createdAt, string(document)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert: %w", err)
	}

	var id string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to archive analysis: %w", err)
	}
	s.log.Debug("Analysis archived", zap.String("id", id), zap.Int("bytes", len(document)))
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	query, args, err := psql.Select(entryColumns...).
		From(analysesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to build select: %w", err)
	}
	return s.queryEntry(ctx, query, args...)
}

func (s *Store) Latest(ctx context.Context) (Entry, error) {
	query, args, err := psql.Select(entryColumns...).
		From(analysesTable).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to build select: %w", err)
	}
	return s.queryEntry(ctx, query, args...)
}

func (s *Store) queryEntry(ctx context.Context, query string, args ...any) (Entry, error) {
	var (
		e        Entry
		document []byte
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(&e.ID, &e.SessionID, &e.Segment, &e.GeneratedAt, &e.CreatedAt, &document)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load analysis: %w", err)
	}
	result, err := schemas.ParseAnalysisResult(document)
	if err != nil {
		return Entry{}, fmt.Errorf("archived document %s is corrupt: %w", e.ID, err)
	}
	e.Result = result
	return e, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	builder := psql.Select(summaryColumns...).
		From(analysesTable).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Segment, &e.GeneratedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return entries, nil
}

// Purge deletes entries created before cutoff and reports how many were removed.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := psql.Delete(analysesTable).
		Where(sq.Lt{"created_at": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge analyses: %w", err)
	}
	return tag.RowsAffected(), nil
}
