package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketDeleted})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	seen := map[EventType]int{}
	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, et := range AllEventTypes {
		require.NoError(t, d.Publish(context.Background(), Event{Type: et}))
	}
	assert.Len(t, seen, len(AllEventTypes))
}

func TestNATSForwarder(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewNATSForwarder(pub, "activity", nil)

	entry := &domain.ActivityLog{
		ID:         "log-9",
		UserID:     "u-1",
		Action:     domain.ActionUserRoleChanged,
		EntityType: domain.EntityTypeUserProfile,
		EntityID:   "u-2",
		Metadata:   map[string]any{"oldRole": "MEMBER", "newRole": "MANAGER"},
		CreatedAt:  time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.Handle(context.Background(), FromActivity(entry, &domain.Actor{ID: "u-1", Role: domain.RoleAdmin})))

	require.Equal(t, []string{"activity.user_role_changed"}, pub.subjects)
	var decoded Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &decoded))
	assert.Equal(t, EventUserRoleChanged, decoded.Type)
	assert.Equal(t, domain.RoleAdmin, decoded.Actor.Role)
	assert.Equal(t, "MANAGER", decoded.Payload["newRole"])

	pub.err = errors.New("disconnected")
	assert.Error(t, f.Handle(context.Background(), FromActivity(entry, nil)))
}
