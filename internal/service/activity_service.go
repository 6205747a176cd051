package service

import (
	"context"
	"time"

	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
	apperrors "github.com/spec-kit/ticket-admin/pkg/util"
)

// ActivityService is the review surface over the activity trail.
type ActivityService struct {
	audit    *audit.Logger
	users    repository.UserRepository
	maxLimit int
}

// ActivityQuery describes an activity listing request.
type ActivityQuery struct {
	Page      int        `json:"page" validate:"gte=0"`
	Limit     int        `json:"limit" validate:"gte=0"`
	Action    *string    `json:"action" validate:"omitempty,max=64"`
	UserID    *string    `json:"userId" validate:"omitempty,uuid"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// UserActivity is an activity count joined with the profile, if it still exists.
type UserActivity struct {
	UserID string
	User   *domain.UserProfile
	Count  int64
}

func NewActivityService(logger *audit.Logger, users repository.UserRepository, maxLimit int) *ActivityService {
	return &ActivityService{audit: logger, users: users, maxLimit: clampLimit(maxLimit)}
}

// ListActivity pages through the trail newest first.
func (s *ActivityService) ListActivity(ctx context.Context, actor *domain.Actor, query ActivityQuery) (*audit.Page, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(query); err != nil {
		return nil, err
	}
	if query.StartDate != nil && query.EndDate != nil && query.EndDate.Before(*query.StartDate) {
		return nil, apperrors.NewValidationError("invalid input", map[string]any{"endDate": "must not be before startDate"})
	}
	if !auth.CanViewActivityLogs(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to view activity logs")
	}

	page, limit := domain.NormalizePage(query.Page, query.Limit, DefaultActivityPageSize, s.maxLimit)
	result, err := s.audit.Query(ctx, audit.Query{
		Page:      page,
		Limit:     limit,
		Action:    query.Action,
		UserID:    query.UserID,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result, nil
}

// ListOwnActivity returns the actor's latest entries. Any authenticated actor may see
// their own trail.
func (s *ActivityService) ListOwnActivity(ctx context.Context, actor *domain.Actor, limit int) ([]domain.ActivityLog, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	_, limit = domain.NormalizePage(1, limit, DefaultOwnActivityLimit, s.maxLimit)
	userID := actor.ID
	result, err := s.audit.Query(ctx, audit.Query{Page: 1, Limit: limit, UserID: &userID})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return result.Logs, nil
}

// ActionStats counts entries per action.
func (s *ActivityService) ActionStats(ctx context.Context, actor *domain.Actor) ([]domain.ActivityCount, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanViewActivityLogs(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to view activity logs")
	}
	counts, err := s.audit.AggregateByAction(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return counts, nil
}

// UserStats returns the topN most active users, highest count first.
func (s *ActivityService) UserStats(ctx context.Context, actor *domain.Actor, topN int) ([]UserActivity, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanViewActivityLogs(actor) {
		return nil, apperrors.NewPermissionDenied("not allowed to view activity logs")
	}
	_, topN = domain.NormalizePage(1, topN, DefaultTopUsers, s.maxLimit)
	return mostActiveUsers(ctx, s.audit, s.users, topN)
}

func mostActiveUsers(ctx context.Context, logger *audit.Logger, users repository.UserRepository, topN int) ([]UserActivity, error) {
	counts, err := logger.AggregateByUser(ctx, topN)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.Key)
	}
	profiles, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, mapStoreError(err, "user")
	}
	byID := make(map[string]*domain.UserProfile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	result := make([]UserActivity, 0, len(counts))
	for _, c := range counts {
		result = append(result, UserActivity{UserID: c.Key, User: byID[c.Key], Count: c.Count})
	}
	return result, nil
}
