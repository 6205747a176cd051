package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories that share one executor.
type Store interface {
	Tickets() TicketRepository
	Users() UserRepository
	ActivityLogs() ActivityLogRepository
}

// Transactor is a Store that can run a unit of work atomically. Everything fn writes
// through the Store it receives is committed together or not at all.
type Transactor interface {
	Store
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	db DBTX
}

// NewPostgresStore returns a Transactor backed by Postgres.
func NewPostgresStore(db DBTX) Transactor {
	return &pgStore{db: db}
}

func (s *pgStore) Tickets() TicketRepository {
	return &ticketRepository{db: s.db}
}

func (s *pgStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *pgStore) ActivityLogs() ActivityLogRepository {
	return &activityLogRepository{db: s.db}
}

func (s *pgStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&pgStore{db: tx})
	})
}

// psql builds Postgres flavoured statements.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// validID guards uuid columns against malformed path parameters.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func countQuery(ctx context.Context, db DBTX, builder squirrel.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build count query")
	}
	var total int
	if err := db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
