package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
)

type activityLogRepository struct {
	store *Store
}

func (r *activityLogRepository) Create(_ context.Context, entry *domain.ActivityLog) error {
	defer r.store.lock()()
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.store.now()
	stored := *entry
	stored.Metadata = cloneMetadata(entry.Metadata)
	r.store.st.logs = append(r.store.st.logs, stored)
	return nil
}

func (r *activityLogRepository) List(_ context.Context, filter repository.ActivityFilter) ([]domain.ActivityLog, error) {
	defer r.store.rlock()()
	return window(r.matching(filter), filter.Offset, filter.Limit), nil
}

func (r *activityLogRepository) Count(_ context.Context, filter repository.ActivityFilter) (int, error) {
	defer r.store.rlock()()
	return len(r.matching(filter)), nil
}

func (r *activityLogRepository) CountByUser(_ context.Context, topN int) ([]domain.ActivityCount, error) {
	defer r.store.rlock()()
	counts := r.group(func(l domain.ActivityLog) string { return l.UserID })
	if topN > 0 && len(counts) > topN {
		counts = counts[:topN]
	}
	return counts, nil
}

func (r *activityLogRepository) CountByAction(_ context.Context) ([]domain.ActivityCount, error) {
	defer r.store.rlock()()
	return r.group(func(l domain.ActivityLog) string { return l.Action }), nil
}

// matching returns the filtered entries newest first. Entries sharing a timestamp keep
// reverse insertion order.
func (r *activityLogRepository) matching(filter repository.ActivityFilter) []domain.ActivityLog {
	logs := r.store.st.logs
	result := []domain.ActivityLog{}
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		if filter.StartDate != nil && l.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && l.CreatedAt.After(*filter.EndDate) {
			continue
		}
		l.Metadata = cloneMetadata(l.Metadata)
		result = append(result, l)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// cloneMetadata copies the map and the slice values the services store in it, so
// stored entries never alias caller memory.
func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	c := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch v := v.(type) {
		case []string:
			c[k] = slices.Clone(v)
		case []any:
			c[k] = slices.Clone(v)
		case map[string]any:
			c[k] = cloneMetadata(v)
		default:
			c[k] = v
		}
	}
	return c
}

func (r *activityLogRepository) group(key func(domain.ActivityLog) string) []domain.ActivityCount {
	totals := map[string]int64{}
	for _, l := range r.store.st.logs {
		totals[key(l)]++
	}
	result := make([]domain.ActivityCount, 0, len(totals))
	for k, n := range totals {
		result = append(result, domain.ActivityCount{Key: k, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result
}
