package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/config"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/observability"
	"github.com/spec-kit/ticket-admin/internal/repository/memory"
	"github.com/spec-kit/ticket-admin/internal/service"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestActivityWorkerFanOut(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	store := memory.NewStore().SeedDemoUsers()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	cache := auth.NewProfileCache(rdb, time.Minute, zap.NewNop())
	metrics := observability.NewMetrics()
	pub := &recordingPublisher{}

	StartActivityWorker(ActivityWorkerDeps{
		Dispatcher:    dispatcher,
		Notifications: service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{EmailFrom: "noreply@example.com"}),
		ProfileCache:  cache,
		Metrics:       metrics,
		Forwarder:     events.NewNATSForwarder(pub, "activity", zap.NewNop()),
	})

	member, err := store.Users().GetByID(ctx, memory.DemoMemberID)
	require.NoError(t, err)
	cache.Set(ctx, member)
	require.True(t, mr.Exists("actor:profile:"+memory.DemoMemberID))

	users := service.NewUserAdminService(service.UserAdminDependencies{
		Store:      store,
		Audit:      audit.NewLogger(store.ActivityLogs(), zap.NewNop()),
		Dispatcher: dispatcher,
	})
	admin := &domain.Actor{ID: memory.DemoAdminID, Role: domain.RoleAdmin, IsActive: true}
	_, err = users.ToggleUserActive(ctx, admin, memory.DemoMemberID, false)
	require.NoError(t, err)

	assert.False(t, mr.Exists("actor:profile:"+memory.DemoMemberID), "profile cache must be invalidated")

	expected := `
# HELP activity_entries_total Total number of committed activity entries by action.
# TYPE activity_entries_total counter
activity_entries_total{action="USER_DEACTIVATED"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "activity_entries_total"))

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "activity.user_deactivated", pub.subjects[0])
	var event events.Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &event))
	assert.Equal(t, events.EventUserDeactivated, event.Type)
	assert.Equal(t, memory.DemoMemberID, event.EntityID)
	assert.Equal(t, memory.DemoAdminID, event.Actor.UserID)
	assert.Equal(t, domain.RoleAdmin, event.Actor.Role)
}

func TestActivityWorkerIgnoresTicketEventsForCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	cache := auth.NewProfileCache(rdb, time.Minute, nil)
	cache.Set(ctx, &domain.UserProfile{ID: memory.DemoMemberID, Role: domain.RoleMember, IsActive: true})

	handler := invalidateProfile(cache)
	require.NoError(t, handler(ctx, events.Event{
		Type:       events.EventTicketDeleted,
		EntityType: domain.EntityTypeTicket,
		EntityID:   memory.DemoMemberID,
	}))
	assert.True(t, mr.Exists("actor:profile:"+memory.DemoMemberID))
}

func TestStartActivityWorkerWithoutDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { StartActivityWorker(ActivityWorkerDeps{}) })
}
