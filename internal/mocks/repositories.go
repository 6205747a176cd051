package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
)

type TicketRepository struct {
	mock.Mock
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := r.Called(ticket)
	return args.Error(0)
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	args := r.Called(ticket)
	return args.Error(0)
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	args := r.Called(id)
	return args.Error(0)
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := r.Called(id)
	ticket, _ := args.Get(0).(*domain.Ticket)
	return ticket, args.Error(1)
}

func (r *TicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := r.Called(filter)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (r *TicketRepository) Count(ctx context.Context, filter repository.TicketFilter) (int, error) {
	args := r.Called(filter)
	return args.Int(0), args.Error(1)
}

func (r *TicketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int, error) {
	args := r.Called()
	return args.Get(0).(map[domain.TicketStatus]int), args.Error(1)
}

func (r *TicketRepository) CountByPriority(ctx context.Context) (map[domain.TicketPriority]int, error) {
	args := r.Called()
	return args.Get(0).(map[domain.TicketPriority]int), args.Error(1)
}

func (r *TicketRepository) AverageResolution(ctx context.Context) (time.Duration, int, error) {
	args := r.Called()
	return args.Get(0).(time.Duration), args.Int(1), args.Error(2)
}

type UserRepository struct {
	mock.Mock
}

func (r *UserRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	args := r.Called(user)
	return args.Error(0)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.UserProfile) error {
	args := r.Called(user)
	return args.Error(0)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	args := r.Called(id)
	user, _ := args.Get(0).(*domain.UserProfile)
	return user, args.Error(1)
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.UserProfile, error) {
	args := r.Called(ids)
	return args.Get(0).([]domain.UserProfile), args.Error(1)
}

func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.UserProfile, error) {
	args := r.Called(filter)
	return args.Get(0).([]domain.UserProfile), args.Error(1)
}

func (r *UserRepository) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	args := r.Called(filter)
	return args.Int(0), args.Error(1)
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	args := r.Called()
	return args.Get(0).(map[domain.Role]int), args.Error(1)
}

type ActivityLogRepository struct {
	mock.Mock
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	args := r.Called(entry)
	return args.Error(0)
}

func (r *ActivityLogRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityLog, error) {
	args := r.Called(filter)
	return args.Get(0).([]domain.ActivityLog), args.Error(1)
}

func (r *ActivityLogRepository) Count(ctx context.Context, filter repository.ActivityFilter) (int, error) {
	args := r.Called(filter)
	return args.Int(0), args.Error(1)
}

func (r *ActivityLogRepository) CountByUser(ctx context.Context, topN int) ([]domain.ActivityCount, error) {
	args := r.Called(topN)
	return args.Get(0).([]domain.ActivityCount), args.Error(1)
}

func (r *ActivityLogRepository) CountByAction(ctx context.Context) ([]domain.ActivityCount, error) {
	args := r.Called()
	return args.Get(0).([]domain.ActivityCount), args.Error(1)
}

// Store hands out the embedded repository mocks. WithinTransaction runs fn against the
// same mocks and records whether it was rolled back.
type Store struct {
	Ticket   *TicketRepository
	User     *UserRepository
	Activity *ActivityLogRepository

	RolledBack bool
}

func NewStore() *Store {
	return &Store{
		Ticket:   &TicketRepository{},
		User:     &UserRepository{},
		Activity: &ActivityLogRepository{},
	}
}

func (s *Store) Tickets() repository.TicketRepository { return s.Ticket }

func (s *Store) Users() repository.UserRepository { return s.User }

func (s *Store) ActivityLogs() repository.ActivityLogRepository { return s.Activity }

func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := fn(s); err != nil {
		s.RolledBack = true
		return err
	}
	return nil
}

func (s *Store) AssertExpectations(t mock.TestingT) {
	s.Ticket.AssertExpectations(t)
	s.User.AssertExpectations(t)
	s.Activity.AssertExpectations(t)
}
