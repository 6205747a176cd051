package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
	"github.com/spec-kit/ticket-admin/internal/repository/memory"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

func newUserAdminService(store *memory.Store) *UserAdminService {
	return NewUserAdminService(UserAdminDependencies{
		Store: store,
		Audit: audit.NewLogger(store.ActivityLogs(), nil),
	})
}

func activityCount(t *testing.T, store *memory.Store) int {
	t.Helper()
	n, err := store.ActivityLogs().Count(context.Background(), repository.ActivityFilter{})
	require.NoError(t, err)
	return n
}

// Scenario D.
func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().SeedDemoUsers()
	svc := newUserAdminService(store)

	user, err := svc.UpdateUserRole(ctx, adminActor, memory.DemoMemberID, RoleInput{Role: domain.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)

	stored, err := store.Users().GetByID(ctx, memory.DemoMemberID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, stored.Role)

	logs, err := store.ActivityLogs().List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionUserRoleChanged, logs[0].Action)
	assert.Equal(t, domain.EntityTypeUserProfile, logs[0].EntityType)
	assert.Equal(t, memory.DemoMemberID, logs[0].EntityID)
	assert.Equal(t, map[string]any{
		"email":   "member@company.com",
		"oldRole": "MEMBER",
		"newRole": "MANAGER",
	}, logs[0].Metadata)
}

func TestUpdateUserRoleFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().SeedDemoUsers()
	svc := newUserAdminService(store)

	tests := []struct {
		name  string
		actor *domain.Actor
		id    string
		role  domain.Role
		code  string
	}{
		{"anonymous", nil, memory.DemoMemberID, domain.RoleAdmin, apperrors.CodeUnauthenticated},
		{"manager lacks manage_roles", managerActor, memory.DemoMemberID, domain.RoleAdmin, apperrors.CodePermissionDenied},
		{"member", memberActor, memory.DemoMemberID, domain.RoleAdmin, apperrors.CodePermissionDenied},
		{"unknown role", adminActor, memory.DemoMemberID, domain.Role("OWNER"), apperrors.CodeValidationFailed},
		{"invalid role beats permission", memberActor, memory.DemoMemberID, domain.Role("OWNER"), apperrors.CodeValidationFailed},
		{"missing user", adminActor, "550e8400-e29b-41d4-a716-446655440099", domain.RoleAdmin, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateUserRole(ctx, tt.actor, tt.id, RoleInput{Role: tt.role})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, activityCount(t, store))
}

func TestAdminMayDemoteThemselves(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().SeedDemoUsers()
	svc := newUserAdminService(store)

	user, err := svc.UpdateUserRole(ctx, adminActor, adminActor.ID, RoleInput{Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, user.Role)
}

func TestToggleUserActive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().SeedDemoUsers()
	svc := newUserAdminService(store)

	user, err := svc.ToggleUserActive(ctx, adminActor, memory.DemoManagerID, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	user, err = svc.ToggleUserActive(ctx, adminActor, memory.DemoManagerID, true)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	logs, err := store.ActivityLogs().List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionUserActivated, logs[0].Action)
	assert.Equal(t, map[string]any{"email": "manager@company.com", "isActive": true}, logs[0].Metadata)
	assert.Equal(t, domain.ActionUserDeactivated, logs[1].Action)
	assert.Equal(t, map[string]any{"email": "manager@company.com", "isActive": false}, logs[1].Metadata)

	_, err = svc.ToggleUserActive(ctx, managerActor, memory.DemoMemberID, false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
	_, err = svc.ToggleUserActive(ctx, adminActor, "550e8400-e29b-41d4-a716-446655440099", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, 2, activityCount(t, store))
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedUsers(
		domain.UserProfile{ID: memory.DemoAdminID, Email: "a@x.io", Role: domain.RoleAdmin, IsActive: true, CreatedAt: base},
		domain.UserProfile{ID: memory.DemoManagerID, Email: "m@x.io", Role: domain.RoleManager, IsActive: true, CreatedAt: base.Add(time.Hour)},
		domain.UserProfile{ID: memory.DemoMemberID, Email: "u@x.io", Role: domain.RoleMember, IsActive: false, CreatedAt: base.Add(2 * time.Hour)},
	)
	svc := newUserAdminService(store)

	page, err := svc.ListUsers(ctx, adminActor, UserQuery{})
	require.NoError(t, err)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: DefaultUserPageSize, Total: 3, Pages: 1}, page.Pagination)
	require.Len(t, page.Users, 3)
	assert.Equal(t, memory.DemoMemberID, page.Users[0].ID)
	assert.Equal(t, memory.DemoAdminID, page.Users[2].ID)

	active := true
	page, err = svc.ListUsers(ctx, adminActor, UserQuery{IsActive: &active, Limit: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
	require.Len(t, page.Users, 1)
	assert.Equal(t, memory.DemoAdminID, page.Users[0].ID)

	_, err = svc.ListUsers(ctx, managerActor, UserQuery{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))

	_, err = svc.GetUser(ctx, adminActor, "550e8400-e29b-41d4-a716-446655440099")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = svc.GetUser(ctx, memberActor, memory.DemoAdminID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
}

func TestUserAdminAuditFailureKeepsProfile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(svc *UserAdminService) error
	}{
		{
			name: "role change",
			run: func(svc *UserAdminService) error {
				_, err := svc.UpdateUserRole(ctx, adminActor, memory.DemoMemberID, RoleInput{Role: domain.RoleAdmin})
				return err
			},
		},
		{
			name: "deactivation",
			run: func(svc *UserAdminService) error {
				_, err := svc.ToggleUserActive(ctx, adminActor, memory.DemoMemberID, false)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := memory.NewStore().SeedDemoUsers()
			svc := NewUserAdminService(UserAdminDependencies{
				Store: &failingActivityStore{Transactor: mem},
				Audit: audit.NewLogger(mem.ActivityLogs(), nil),
			})

			err := tt.run(svc)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeAuditWriteFailure), "got %v", err)

			stored, err := mem.Users().GetByID(ctx, memory.DemoMemberID)
			require.NoError(t, err)
			assert.Equal(t, domain.RoleMember, stored.Role)
			assert.True(t, stored.IsActive)
			assert.Zero(t, activityCount(t, mem))
		})
	}
}
