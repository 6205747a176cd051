package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.UserProfile) error {
	defer r.store.lock()()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.store.now()
	user.UpdatedAt = user.CreatedAt
	r.store.st.users[user.ID] = *user
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.UserProfile) error {
	defer r.store.lock()()
	current, ok := r.store.st.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Email = user.Email
	current.FullName = user.FullName
	current.Role = user.Role
	current.IsActive = user.IsActive
	current.UpdatedAt = r.store.now()
	user.UpdatedAt = current.UpdatedAt
	r.store.st.users[user.ID] = current
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.UserProfile, error) {
	defer r.store.rlock()()
	u, ok := r.store.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByIDs(_ context.Context, ids []string) ([]domain.UserProfile, error) {
	defer r.store.rlock()()
	result := []domain.UserProfile{}
	for _, id := range ids {
		if u, ok := r.store.st.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *userRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.UserProfile, error) {
	defer r.store.rlock()()
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return window(matched, filter.Offset, filter.Limit), nil
}

func (r *userRepository) Count(_ context.Context, filter repository.UserFilter) (int, error) {
	defer r.store.rlock()()
	return len(r.matching(filter)), nil
}

func (r *userRepository) CountByRole(_ context.Context) (map[domain.Role]int, error) {
	defer r.store.rlock()()
	result := map[domain.Role]int{}
	for _, u := range r.store.st.users {
		result[u.Role]++
	}
	return result, nil
}

func (r *userRepository) matching(filter repository.UserFilter) []domain.UserProfile {
	result := []domain.UserProfile{}
	for _, u := range r.store.st.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		result = append(result, u)
	}
	return result
}
