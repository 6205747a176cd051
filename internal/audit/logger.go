// Package audit appends and reads the activity trail. Every privileged mutation records
// exactly one entry through Logger.Record inside the mutation's unit of work.
package audit

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// DefaultPageSize applies when a query carries no limit.
const DefaultPageSize = 20

// Entry is what a caller supplies; id, timestamp and request info are filled in.
type Entry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

// Query filters are conjunctive. The created_at range bounds are inclusive and applied
// independently.
type Query struct {
	Page      int
	Limit     int
	Action    *string
	UserID    *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Page is one slice of the trail, newest first.
type Page struct {
	Logs       []domain.ActivityLog
	Pagination domain.Pagination
}

// Logger is bound to one ActivityLogRepository.
type Logger struct {
	repo   repository.ActivityLogRepository
	logger *zap.Logger
}

func NewLogger(repo repository.ActivityLogRepository, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{repo: repo, logger: logger}
}

// Bind returns a Logger writing through repo, typically the transactional view.
func (l *Logger) Bind(repo repository.ActivityLogRepository) *Logger {
	return &Logger{repo: repo, logger: l.logger}
}

// Record appends one entry. A storage failure comes back as AUDIT_WRITE_FAILED and the
// caller must abandon its mutation.
func (l *Logger) Record(ctx context.Context, entry Entry) (*domain.ActivityLog, error) {
	log := &domain.ActivityLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
	}
	if log.Metadata == nil {
		log.Metadata = map[string]any{}
	}
	if info, ok := RequestInfoFrom(ctx); ok {
		log.IPAddress = info.ipAddress()
		log.UserAgent = info.userAgent()
	}

	if err := l.repo.Create(ctx, log); err != nil {
		l.logger.Error("activity log write failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.String("user_id", entry.UserID),
			zap.Error(err),
		)
		return nil, apperrors.NewAuditWriteFailure(errors.Wrapf(err, "record %s", entry.Action))
	}
	return log, nil
}

func (l *Logger) Query(ctx context.Context, q Query) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	filter := repository.ActivityFilter{
		Action:    q.Action,
		UserID:    q.UserID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}
	total, err := l.repo.Count(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "count activity")
	}
	pagination := domain.NewPagination(q.Page, q.Limit, total)
	filter.Limit = q.Limit
	filter.Offset = pagination.Offset()

	logs, err := l.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list activity")
	}
	return &Page{Logs: logs, Pagination: pagination}, nil
}

// AggregateByUser counts entries per user, highest first, keeping at most topN users.
func (l *Logger) AggregateByUser(ctx context.Context, topN int) ([]domain.ActivityCount, error) {
	counts, err := l.repo.CountByUser(ctx, topN)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate activity by user")
	}
	return counts, nil
}

func (l *Logger) AggregateByAction(ctx context.Context) ([]domain.ActivityCount, error) {
	counts, err := l.repo.CountByAction(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate activity by action")
	}
	return counts, nil
}
