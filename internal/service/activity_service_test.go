package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository/memory"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

type activityFixture struct {
	store     *memory.Store
	tickets   *TicketService
	users     *UserAdminService
	activity  *ActivityService
	analytics *AnalyticsService
}

func newActivityFixture(t *testing.T, clock *time.Time) activityFixture {
	t.Helper()
	store := memory.NewStore().WithClock(func() time.Time { return *clock }).SeedDemoUsers()
	logger := audit.NewLogger(store.ActivityLogs(), nil)
	return activityFixture{
		store:     store,
		tickets:   NewTicketService(TicketDependencies{Store: store, Audit: logger, Clock: func() time.Time { return *clock }}),
		users:     NewUserAdminService(UserAdminDependencies{Store: store, Audit: logger}),
		activity:  NewActivityService(logger, store.Users(), 0),
		analytics: NewAnalyticsService(store, logger),
	}
}

func TestActivityListing(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f := newActivityFixture(t, &clock)

	ticket, err := f.tickets.CreateTicket(ctx, managerActor, validTicketInput())
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	_, err = f.tickets.UpdateTicket(ctx, managerActor, ticket.ID, updateFrom(ticket, domain.TicketStatusInProgress))
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	_, err = f.users.ToggleUserActive(ctx, adminActor, memory.DemoMemberID, false)
	require.NoError(t, err)

	page, err := f.activity.ListActivity(ctx, adminActor, ActivityQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, DefaultActivityPageSize, page.Pagination.Limit)
	require.Len(t, page.Logs, 3)
	assert.Equal(t, domain.ActionUserDeactivated, page.Logs[0].Action)
	assert.Equal(t, domain.ActionTicketCreated, page.Logs[2].Action)

	userID := memory.DemoManagerID
	action := domain.ActionTicketUpdated
	page, err = f.activity.ListActivity(ctx, adminActor, ActivityQuery{UserID: &userID, Action: &action})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, ticket.ID, page.Logs[0].EntityID)

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start
	page, err = f.activity.ListActivity(ctx, adminActor, ActivityQuery{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, domain.ActionTicketUpdated, page.Logs[0].Action)

	before := start.Add(-time.Minute)
	_, err = f.activity.ListActivity(ctx, adminActor, ActivityQuery{StartDate: &start, EndDate: &before})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	bad := "not-a-uuid"
	_, err = f.activity.ListActivity(ctx, adminActor, ActivityQuery{UserID: &bad})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = f.activity.ListActivity(ctx, managerActor, ActivityQuery{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
}

func TestListOwnActivity(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f := newActivityFixture(t, &clock)

	for i := 0; i < 7; i++ {
		clock = clock.Add(time.Minute)
		_, err := f.tickets.CreateTicket(ctx, managerActor, validTicketInput())
		require.NoError(t, err)
	}
	_, err := f.tickets.CreateTicket(ctx, adminActor, validTicketInput())
	require.NoError(t, err)

	logs, err := f.activity.ListOwnActivity(ctx, managerActor, 0)
	require.NoError(t, err)
	require.Len(t, logs, DefaultOwnActivityLimit)
	for _, l := range logs {
		assert.Equal(t, managerActor.ID, l.UserID)
	}
	assert.Equal(t, 7, logs[0].Metadata["ticketNumber"])

	logs, err = f.activity.ListOwnActivity(ctx, memberActor, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = f.activity.ListOwnActivity(ctx, nil, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestActivityStats(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f := newActivityFixture(t, &clock)

	for i := 0; i < 3; i++ {
		_, err := f.tickets.CreateTicket(ctx, managerActor, validTicketInput())
		require.NoError(t, err)
	}
	_, err := f.users.UpdateUserRole(ctx, adminActor, memory.DemoMemberID, RoleInput{Role: domain.RoleManager})
	require.NoError(t, err)

	users, err := f.activity.UserStats(ctx, adminActor, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, memory.DemoManagerID, users[0].UserID)
	assert.EqualValues(t, 3, users[0].Count)
	require.NotNil(t, users[0].User)
	assert.Equal(t, "manager@company.com", users[0].User.Email)
	assert.Equal(t, memory.DemoAdminID, users[1].UserID)
	assert.EqualValues(t, 1, users[1].Count)

	users, err = f.activity.UserStats(ctx, adminActor, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	actions, err := f.activity.ActionStats(ctx, adminActor)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ActivityCount{
		{Key: domain.ActionTicketCreated, Count: 3},
		{Key: domain.ActionUserRoleChanged, Count: 1},
	}, actions)

	_, err = f.activity.ActionStats(ctx, managerActor)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
}

func TestAnalyticsOverview(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f := newActivityFixture(t, &clock)

	first, err := f.tickets.CreateTicket(ctx, managerActor, validTicketInput())
	require.NoError(t, err)
	input := validTicketInput()
	input.Priority = domain.TicketPriorityUrgent
	second, err := f.tickets.CreateTicket(ctx, managerActor, input)
	require.NoError(t, err)
	_, err = f.tickets.CreateTicket(ctx, adminActor, validTicketInput())
	require.NoError(t, err)

	clock = clock.Add(3 * time.Hour)
	_, err = f.tickets.UpdateTicket(ctx, managerActor, first.ID, updateFrom(first, domain.TicketStatusResolved))
	require.NoError(t, err)
	clock = clock.Add(2 * time.Hour)
	_, err = f.tickets.UpdateTicket(ctx, managerActor, second.ID, updateFrom(second, domain.TicketStatusClosed))
	require.NoError(t, err)
	_, err = f.users.ToggleUserActive(ctx, adminActor, memory.DemoMemberID, false)
	require.NoError(t, err)

	overview, err := f.analytics.Overview(ctx, managerActor)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalTickets)
	assert.Equal(t, 1, overview.OpenTickets)
	assert.Equal(t, 3, overview.TotalUsers)
	assert.Equal(t, 2, overview.ActiveUsers)
	assert.Equal(t, map[domain.TicketStatus]int{
		domain.TicketStatusOpen:              1,
		domain.TicketStatusInProgress:        0,
		domain.TicketStatusWaitingOnCustomer: 0,
		domain.TicketStatusResolved:          1,
		domain.TicketStatusClosed:            1,
	}, overview.TicketsByStatus)
	assert.Equal(t, 2, overview.TicketsByPriority[domain.TicketPriorityHigh])
	assert.Equal(t, 1, overview.TicketsByPriority[domain.TicketPriorityUrgent])
	assert.Equal(t, 0, overview.TicketsByPriority[domain.TicketPriorityLow])
	assert.Len(t, overview.UsersByRole, 3)
	assert.Equal(t, 2, overview.ResolvedTickets)
	assert.InDelta(t, 4.0, overview.AverageResolutionHours, 0.001)
	require.NotEmpty(t, overview.MostActiveUsers)
	assert.Equal(t, memory.DemoManagerID, overview.MostActiveUsers[0].UserID)

	_, err = f.analytics.Overview(ctx, memberActor)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
}
