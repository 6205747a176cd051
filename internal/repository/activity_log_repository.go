package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

// ActivityFilter narrows activity queries. Every set field must match.
type ActivityFilter struct {
	Action    *string
	UserID    *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// ActivityLogRepository stores the append-only activity trail. There is no update or delete.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, error)
	Count(ctx context.Context, filter ActivityFilter) (int, error)
	// CountByUser returns per-user counts sorted by count descending, at most topN rows.
	CountByUser(ctx context.Context, topN int) ([]domain.ActivityCount, error)
	CountByAction(ctx context.Context) ([]domain.ActivityCount, error)
}

type activityLogRepository struct {
	db DBTX
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(db DBTX) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

var activityColumns = []string{
	"id", "user_id", "action", "entity_type", "entity_id", "metadata", "ip_address", "user_agent", "created_at",
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (user_id, action, entity_type, entity_id, metadata, ip_address, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, error) {
	builder := applyActivityFilter(psql.Select(activityColumns...).From("activity_logs"), filter).
		OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build activity query")
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivity(rows)
}

func (r *activityLogRepository) Count(ctx context.Context, filter ActivityFilter) (int, error) {
	return countQuery(ctx, r.db, applyActivityFilter(psql.Select("COUNT(*)").From("activity_logs"), filter))
}

func (r *activityLogRepository) CountByUser(ctx context.Context, topN int) ([]domain.ActivityCount, error) {
	builder := psql.Select("user_id", "COUNT(*) AS total").
		From("activity_logs").
		GroupBy("user_id").
		OrderBy("total DESC", "user_id ASC")
	if topN > 0 {
		builder = builder.Limit(uint64(topN))
	}
	return r.grouped(ctx, builder)
}

func (r *activityLogRepository) CountByAction(ctx context.Context) ([]domain.ActivityCount, error) {
	return r.grouped(ctx, psql.Select("action", "COUNT(*) AS total").
		From("activity_logs").
		GroupBy("action").
		OrderBy("total DESC", "action ASC"))
}

func (r *activityLogRepository) grouped(ctx context.Context, builder squirrel.SelectBuilder) ([]domain.ActivityCount, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build activity aggregate")
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ActivityCount{}
	for rows.Next() {
		var bucket domain.ActivityCount
		if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
			return nil, err
		}
		result = append(result, bucket)
	}
	return result, rows.Err()
}

func applyActivityFilter(builder squirrel.SelectBuilder, filter ActivityFilter) squirrel.SelectBuilder {
	if filter.Action != nil {
		builder = builder.Where(squirrel.Eq{"action": *filter.Action})
	}
	if filter.UserID != nil {
		builder = builder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"created_at": *filter.EndDate})
	}
	return builder
}

func scanActivity(rows pgx.Rows) ([]domain.ActivityLog, error) {
	result := []domain.ActivityLog{}
	for rows.Next() {
		var entry domain.ActivityLog
		var entityType, entityID *string
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entityType,
			&entityID,
			&entry.Metadata,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if entityType != nil {
			entry.EntityType = *entityType
		}
		if entityID != nil {
			entry.EntityID = *entityID
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
