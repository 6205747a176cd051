package dto

import (
	"time"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/service"
)

// UserResponse is the public shape of a profile.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// MeResponse describes the caller and what they may do.
type MeResponse struct {
	User        UserResponse        `json:"user"`
	Permissions []domain.Permission `json:"permissions"`
}

// UserListResponse is one page of profiles.
type UserListResponse struct {
	Users      []UserResponse    `json:"users"`
	Pagination domain.Pagination `json:"pagination"`
}

// UpdateRoleRequest is the body of PATCH /api/users/:id/role.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// ToggleActiveRequest is the body of PATCH /api/users/:id/active.
type ToggleActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

func NewUserResponse(u *domain.UserProfile) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(page *service.UserPage) UserListResponse {
	items := make([]UserResponse, 0, len(page.Users))
	for i := range page.Users {
		items = append(items, NewUserResponse(&page.Users[i]))
	}
	return UserListResponse{Users: items, Pagination: page.Pagination}
}
