package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// Default page sizes per listing.
const (
	DefaultTicketPageSize   = 15
	DefaultActivityPageSize = 20
	DefaultUserPageSize     = 10
	DefaultOwnActivityLimit = 5
	DefaultTopUsers         = 10
)

// defaultMaxLimit caps page sizes when no configuration is given.
const defaultMaxLimit = 100

func requireActor(actor *domain.Actor) error {
	if actor == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return nil
}

// mapStoreError turns repository failures into DomainErrors. DomainErrors raised inside a
// unit of work pass through untouched.
func mapStoreError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(errors.Wrapf(err, "%s store", resource))
}

// publisher emits committed activity. It is a no-op without a dispatcher.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, entry *domain.ActivityLog, actor *domain.Actor) {
	if p.dispatcher == nil || entry == nil {
		return
	}
	if err := p.dispatcher.Publish(ctx, events.FromActivity(entry, actor)); err != nil && p.logger != nil {
		p.logger.Warn("publish activity event failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

func clampLimit(maxLimit int) int {
	if maxLimit <= 0 {
		return defaultMaxLimit
	}
	return maxLimit
}
