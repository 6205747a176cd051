package worker

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/observability"
	"github.com/spec-kit/ticket-admin/internal/service"
)

// ActivityWorkerDeps are the optional consumers of committed activity. Nil members are skipped.
type ActivityWorkerDeps struct {
	Dispatcher    events.Dispatcher
	Notifications *service.NotificationService
	ProfileCache  auth.ProfileCache
	Metrics       *observability.Metrics
	Forwarder     *events.NATSForwarder
	Logger        *zap.Logger
}

// StartActivityWorker registers every activity subscriber on the dispatcher.
func StartActivityWorker(deps ActivityWorkerDeps) {
	if deps.Dispatcher == nil {
		return
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if deps.Notifications != nil {
		deps.Notifications.RegisterHandlers()
	}
	if deps.ProfileCache != nil {
		invalidate := invalidateProfile(deps.ProfileCache)
		deps.Dispatcher.Subscribe(events.EventUserRoleChanged, invalidate)
		deps.Dispatcher.Subscribe(events.EventUserActivated, invalidate)
		deps.Dispatcher.Subscribe(events.EventUserDeactivated, invalidate)
	}
	if deps.Metrics != nil {
		deps.Dispatcher.SubscribeAll(func(_ context.Context, event events.Event) error {
			deps.Metrics.RecordActivity(string(event.Type))
			return nil
		})
	}
	if deps.Forwarder != nil {
		deps.Dispatcher.SubscribeAll(deps.Forwarder.Handle)
	}
	logger.Info("activity worker started",
		zap.Bool("notifications", deps.Notifications != nil),
		zap.Bool("profile_cache", deps.ProfileCache != nil),
		zap.Bool("nats", deps.Forwarder != nil))
}

// invalidateProfile drops the cached profile of the account an event changed so the next
// request sees its new role or activation state.
func invalidateProfile(cache auth.ProfileCache) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		if !strings.EqualFold(event.EntityType, domain.EntityTypeUserProfile) || event.EntityID == "" {
			return nil
		}
		return cache.Invalidate(ctx, event.EntityID)
	}
}
