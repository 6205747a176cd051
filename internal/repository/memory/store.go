// Package memory keeps tickets, profiles and activity in process memory. It backs the
// service when no Postgres DSN is configured and gives tests a real Transactor.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
)

type state struct {
	tickets    map[string]domain.Ticket
	users      map[string]domain.UserProfile
	logs       []domain.ActivityLog
	nextNumber int
}

func (s *state) clone() *state {
	c := &state{
		tickets:    make(map[string]domain.Ticket, len(s.tickets)),
		users:      make(map[string]domain.UserProfile, len(s.users)),
		logs:       make([]domain.ActivityLog, len(s.logs)),
		nextNumber: s.nextNumber,
	}
	for id, t := range s.tickets {
		c.tickets[id] = t
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	copy(c.logs, s.logs)
	return c
}

// Store is an in-memory repository.Transactor.
type Store struct {
	mu  *sync.RWMutex
	st  *state
	now func() time.Time
	// inTx marks the view handed to WithinTransaction, which already holds the write lock.
	inTx bool
}

var _ repository.Transactor = (*Store)(nil)

// NewStore returns an empty store. Ticket numbers start at 1.
func NewStore() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		st: &state{
			tickets:    map[string]domain.Ticket{},
			users:      map[string]domain.UserProfile{},
			nextNumber: 1,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Tickets() repository.TicketRepository {
	return &ticketRepository{store: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) ActivityLogs() repository.ActivityLogRepository {
	return &activityLogRepository{store: s}
}

// WithinTransaction serializes fn against every other access and restores the previous
// state when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, now: s.now, inTx: true}); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Demo account ids, stable so that tokens minted for local runs keep working.
const (
	DemoAdminID   = "550e8400-e29b-41d4-a716-446655440001"
	DemoManagerID = "550e8400-e29b-41d4-a716-446655440002"
	DemoMemberID  = "550e8400-e29b-41d4-a716-446655440003"
)

// SeedDemoUsers inserts one active account per role.
func (s *Store) SeedDemoUsers() *Store {
	s.SeedUsers(
		domain.UserProfile{ID: DemoAdminID, Email: "admin@company.com", FullName: "Admin User", Role: domain.RoleAdmin, IsActive: true},
		domain.UserProfile{ID: DemoManagerID, Email: "manager@company.com", FullName: "Manager User", Role: domain.RoleManager, IsActive: true},
		domain.UserProfile{ID: DemoMemberID, Email: "member@company.com", FullName: "Member User", Role: domain.RoleMember, IsActive: true},
	)
	return s
}

// SeedUsers stores profiles as given, stamping missing timestamps.
func (s *Store) SeedUsers(users ...domain.UserProfile) {
	defer s.lock()()
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = u.CreatedAt
		}
		s.st.users[u.ID] = u
	}
}

// SeedTickets stores tickets as given. Ticket numbers already in use are kept and the
// sequence moves past the highest one.
func (s *Store) SeedTickets(tickets ...domain.Ticket) {
	defer s.lock()()
	for _, t := range tickets {
		if t.TicketNumber >= s.st.nextNumber {
			s.st.nextNumber = t.TicketNumber + 1
		}
		s.st.tickets[t.ID] = cloneTicket(t)
	}
}
