package service

import (
	"context"
	"math"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// AnalyticsService builds the dashboard overview.
type AnalyticsService struct {
	store repository.Store
	audit *audit.Logger
}

// Overview aggregates ticket, user and activity counts.
type Overview struct {
	TotalTickets           int
	OpenTickets            int
	TotalUsers             int
	ActiveUsers            int
	TicketsByStatus        map[domain.TicketStatus]int
	TicketsByPriority      map[domain.TicketPriority]int
	UsersByRole            map[domain.Role]int
	MostActiveUsers        []UserActivity
	ResolvedTickets        int
	AverageResolutionHours float64
}

func NewAnalyticsService(store repository.Store, logger *audit.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, audit: logger}
}

// Overview requires analytics access. Every enum value appears in the breakdowns, zero
// when nothing matches.
func (s *AnalyticsService) Overview(ctx context.Context, actor *domain.Actor) (*Overview, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanViewAnalytics(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to view analytics")
	}

	byStatus, err := s.store.Tickets().CountByStatus(ctx)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	byPriority, err := s.store.Tickets().CountByPriority(ctx)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	byRole, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	active := true
	activeUsers, err := s.store.Users().Count(ctx, repository.UserFilter{IsActive: &active})
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	avg, resolved, err := s.store.Tickets().AverageResolution(ctx)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	topUsers, err := mostActiveUsers(ctx, s.audit, s.store.Users(), DefaultTopUsers)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		ActiveUsers:            activeUsers,
		TicketsByStatus:        make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		TicketsByPriority:      make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
		UsersByRole:            make(map[domain.Role]int, len(domain.Roles)),
		MostActiveUsers:        topUsers,
		ResolvedTickets:        resolved,
		AverageResolutionHours: math.Round(avg.Hours()*10) / 10,
	}
	for _, status := range domain.TicketStatuses {
		overview.TicketsByStatus[status] = byStatus[status]
		overview.TotalTickets += byStatus[status]
	}
	overview.OpenTickets = byStatus[domain.TicketStatusOpen]
	for _, priority := range domain.TicketPriorities {
		overview.TicketsByPriority[priority] = byPriority[priority]
	}
	for _, role := range domain.Roles {
		overview.UsersByRole[role] = byRole[role]
		overview.TotalUsers += byRole[role]
	}
	return overview, nil
}
