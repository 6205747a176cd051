package dto

import (
	"time"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/service"
)

// ActivityLogResponse is the public shape of an activity entry.
type ActivityLogResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Metadata   map[string]any `json:"metadata"`
	IPAddress  *string        `json:"ipAddress"`
	UserAgent  *string        `json:"userAgent"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ActivityListResponse is one page of activity.
type ActivityListResponse struct {
	Logs       []ActivityLogResponse `json:"logs"`
	Pagination domain.Pagination     `json:"pagination"`
}

type ActionCountResponse struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// UserActivityResponse carries the profile when it still exists.
type UserActivityResponse struct {
	UserID string        `json:"userId"`
	User   *UserResponse `json:"user"`
	Count  int64         `json:"count"`
}

// OverviewResponse is the analytics dashboard payload.
type OverviewResponse struct {
	TotalTickets           int                           `json:"totalTickets"`
	OpenTickets            int                           `json:"openTickets"`
	TotalUsers             int                           `json:"totalUsers"`
	ActiveUsers            int                           `json:"activeUsers"`
	TicketsByStatus        map[domain.TicketStatus]int   `json:"ticketsByStatus"`
	TicketsByPriority      map[domain.TicketPriority]int `json:"ticketsByPriority"`
	UsersByRole            map[domain.Role]int           `json:"usersByRole"`
	MostActiveUsers        []UserActivityResponse        `json:"mostActiveUsers"`
	ResolvedTickets        int                           `json:"resolvedTickets"`
	AverageResolutionHours float64                       `json:"averageResolutionHours"`
}

func NewActivityLogResponse(l *domain.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Metadata:   l.Metadata,
		IPAddress:  l.IPAddress,
		UserAgent:  l.UserAgent,
		CreatedAt:  l.CreatedAt,
	}
}

func NewActivityLogResponses(logs []domain.ActivityLog) []ActivityLogResponse {
	items := make([]ActivityLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, NewActivityLogResponse(&logs[i]))
	}
	return items
}

func NewActivityListResponse(page *audit.Page) ActivityListResponse {
	return ActivityListResponse{Logs: NewActivityLogResponses(page.Logs), Pagination: page.Pagination}
}

func NewActionCountResponses(counts []domain.ActivityCount) []ActionCountResponse {
	items := make([]ActionCountResponse, 0, len(counts))
	for _, c := range counts {
		items = append(items, ActionCountResponse{Action: c.Key, Count: c.Count})
	}
	return items
}

func NewUserActivityResponses(users []service.UserActivity) []UserActivityResponse {
	items := make([]UserActivityResponse, 0, len(users))
	for _, u := range users {
		item := UserActivityResponse{UserID: u.UserID, Count: u.Count}
		if u.User != nil {
			profile := NewUserResponse(u.User)
			item.User = &profile
		}
		items = append(items, item)
	}
	return items
}

func NewOverviewResponse(o *service.Overview) OverviewResponse {
	return OverviewResponse{
		TotalTickets:           o.TotalTickets,
		OpenTickets:            o.OpenTickets,
		TotalUsers:             o.TotalUsers,
		ActiveUsers:            o.ActiveUsers,
		TicketsByStatus:        o.TicketsByStatus,
		TicketsByPriority:      o.TicketsByPriority,
		UsersByRole:            o.UsersByRole,
		MostActiveUsers:        NewUserActivityResponses(o.MostActiveUsers),
		ResolvedTickets:        o.ResolvedTickets,
		AverageResolutionHours: o.AverageResolutionHours,
	}
}
