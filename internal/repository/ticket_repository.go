package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields do not filter.
type TicketFilter struct {
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	Category     *domain.TicketCategory
	AssignedToID *string
	// Search matches a case-insensitive title substring or an exact ticket number.
	Search string
	Limit  int
	Offset int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error)
	CountByPriority(ctx context.Context) (map[domain.TicketPriority]int, error)
	// AverageResolution averages resolved_at - created_at over tickets that were resolved.
	AverageResolution(ctx context.Context) (time.Duration, int, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

var ticketColumns = []string{
	"id", "ticket_number", "title", "description", "status", "priority", "category",
	"customer_name", "customer_email", "created_by_id", "assigned_to_id",
	"created_at", "updated_at", "resolved_at",
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, category, customer_name, customer_email,
            created_by_id, assigned_to_id, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, ticket_number, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CreatedByID,
		ticket.AssignedToID,
		ticket.ResolvedAt,
	).Scan(&ticket.ID, &ticket.TicketNumber, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if !validID(ticket.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            customer_name=$6, customer_email=$7, assigned_to_id=$8, resolved_at=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.AssignedToID,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return mapNoRows(err)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query, args, err := psql.Select(ticketColumns...).From("tickets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build ticket query")
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	return &tickets[0], nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	builder := applyTicketFilter(psql.Select(ticketColumns...).From("tickets"), filter).
		OrderBy("created_at DESC", "ticket_number DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build ticket list query")
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	return countQuery(ctx, r.db, applyTicketFilter(psql.Select("COUNT(*)").From("tickets"), filter))
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := map[domain.TicketStatus]int{}
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByPriority(ctx context.Context) (map[domain.TicketPriority]int, error) {
	rows, err := r.db.Query(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := map[domain.TicketPriority]int{}
	for rows.Next() {
		var priority domain.TicketPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		result[priority] = count
	}
	return result, rows.Err()
}

func (r *ticketRepository) AverageResolution(ctx context.Context) (time.Duration, int, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at))), 0), COUNT(*)
        FROM tickets WHERE resolved_at IS NOT NULL`
	var seconds float64
	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&seconds, &count); err != nil {
		return 0, 0, err
	}
	return time.Duration(seconds * float64(time.Second)), count, nil
}

// likeEscaper makes LIKE metacharacters literal under the default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func applyTicketFilter(builder squirrel.SelectBuilder, filter TicketFilter) squirrel.SelectBuilder {
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Priority != nil {
		builder = builder.Where(squirrel.Eq{"priority": *filter.Priority})
	}
	if filter.Category != nil {
		builder = builder.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.AssignedToID != nil {
		builder = builder.Where(squirrel.Eq{"assigned_to_id": *filter.AssignedToID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		match := squirrel.Or{squirrel.ILike{"title": "%" + likeEscaper.Replace(search) + "%"}}
		if number, err := strconv.Atoi(search); err == nil {
			match = append(match, squirrel.Eq{"ticket_number": number})
		}
		builder = builder.Where(match)
	}
	return builder
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.CustomerName,
			&ticket.CustomerEmail,
			&ticket.CreatedByID,
			&ticket.AssignedToID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
