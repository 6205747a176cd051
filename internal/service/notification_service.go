package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/config"
	"github.com/spec-kit/ticket-admin/internal/events"
)

// NotificationService emits notifications for committed activity.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventUserRoleChanged, n.handleAccountChanged)
	n.dispatcher.Subscribe(events.EventUserActivated, n.handleAccountChanged)
	n.dispatcher.Subscribe(events.EventUserDeactivated, n.handleAccountChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// handleTicketUpdated only notifies when the status actually moved.
func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	if !statusChanged(event.Payload) {
		return nil
	}
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccountChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("user_id", event.EntityID), zap.String("actor_id", event.Actor.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func statusChanged(payload map[string]any) bool {
	switch pair := payload["status"].(type) {
	case []string:
		return len(pair) == 2 && pair[0] != pair[1]
	case []any:
		return len(pair) == 2 && pair[0] != pair[1]
	}
	return false
}
