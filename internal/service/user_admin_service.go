package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// UserAdminService manages roles and activation of accounts.
type UserAdminService struct {
	store    repository.Transactor
	audit    *audit.Logger
	events   publisher
	maxLimit int
}

// UserAdminDependencies bundles collaborators for user administration.
type UserAdminDependencies struct {
	Store      repository.Transactor
	Audit      *audit.Logger
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	MaxLimit   int
}

// UserQuery describes a user listing request.
type UserQuery struct {
	Page     int          `json:"page" validate:"gte=0"`
	Limit    int          `json:"limit" validate:"gte=0"`
	Role     *domain.Role `json:"role" validate:"omitempty,oneof=ADMIN MANAGER MEMBER"`
	IsActive *bool        `json:"isActive"`
}

// RoleInput is the validated payload for a role change.
type RoleInput struct {
	Role domain.Role `json:"role" validate:"required,oneof=ADMIN MANAGER MEMBER"`
}

// UserPage is one page of profiles.
type UserPage struct {
	Users      []domain.UserProfile
	Pagination domain.Pagination
}

// NewUserAdminService constructs the service.
func NewUserAdminService(deps UserAdminDependencies) *UserAdminService {
	return &UserAdminService{
		store:    deps.Store,
		audit:    deps.Audit,
		events:   publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
		maxLimit: clampLimit(deps.MaxLimit),
	}
}

// ListUsers pages through profiles newest first.
func (s *UserAdminService) ListUsers(ctx context.Context, actor *domain.Actor, query UserQuery) (*UserPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(query); err != nil {
		return nil, err
	}
	if !auth.CanManageUsers(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to manage users")
	}

	page, limit := domain.NormalizePage(query.Page, query.Limit, DefaultUserPageSize, s.maxLimit)
	filter := repository.UserFilter{Role: query.Role, IsActive: query.IsActive}
	total, err := s.store.Users().Count(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	pagination := domain.NewPagination(page, limit, total)
	filter.Limit = limit
	filter.Offset = pagination.Offset()

	users, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	return &UserPage{Users: users, Pagination: pagination}, nil
}

func (s *UserAdminService) GetUser(ctx context.Context, actor *domain.Actor, id string) (*domain.UserProfile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanManageUsers(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to manage users")
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	return user, nil
}

// UpdateUserRole assigns a new role and records USER_ROLE_CHANGED. Actors may change
// their own role.
func (s *UserAdminService) UpdateUserRole(ctx context.Context, actor *domain.Actor, id string, input RoleInput) (*domain.UserProfile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !auth.HasPermission(actor, domain.PermissionManageRoles) {
		return nil, apperrors.NewPermissionDenied("not allowed to manage roles")
	}

	var (
		user  *domain.UserProfile
		entry *domain.ActivityLog
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		oldRole := user.Role
		user.Role = input.Role
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		entry, err = s.audit.Bind(tx.ActivityLogs()).Record(ctx, audit.Entry{
			UserID:     actor.ID,
			Action:     domain.ActionUserRoleChanged,
			EntityType: domain.EntityTypeUserProfile,
			EntityID:   user.ID,
			Metadata: map[string]any{
				"email":   user.Email,
				"oldRole": string(oldRole),
				"newRole": string(user.Role),
			},
		})
		return err
	})
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	s.events.publish(ctx, entry, actor)
	return user, nil
}

// ToggleUserActive sets the activation flag and records USER_ACTIVATED or USER_DEACTIVATED.
func (s *UserAdminService) ToggleUserActive(ctx context.Context, actor *domain.Actor, id string, isActive bool) (*domain.UserProfile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanManageUsers(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to manage users")
	}

	action := domain.ActionUserDeactivated
	if isActive {
		action = domain.ActionUserActivated
	}

	var (
		user  *domain.UserProfile
		entry *domain.ActivityLog
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		user.IsActive = isActive
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		entry, err = s.audit.Bind(tx.ActivityLogs()).Record(ctx, audit.Entry{
			UserID:     actor.ID,
			Action:     action,
			EntityType: domain.EntityTypeUserProfile,
			EntityID:   user.ID,
			Metadata: map[string]any{
				"email":    user.Email,
				"isActive": isActive,
			},
		})
		return err
	})
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	s.events.publish(ctx, entry, actor)
	return user, nil
}

// Profile returns the actor's own profile.
func (s *UserAdminService) Profile(ctx context.Context, actor *domain.Actor) (*domain.UserProfile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, actor.ID)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	return user, nil
}
