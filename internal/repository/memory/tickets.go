package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-admin/internal/domain"
	"github.com/spec-kit/ticket-admin/internal/repository"
)

type ticketRepository struct {
	store *Store
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssignedToID != nil {
		id := *t.AssignedToID
		t.AssignedToID = &id
	}
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		t.ResolvedAt = &at
	}
	return t
}

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.store.lock()()
	st := r.store.st

	ticket.ID = uuid.NewString()
	ticket.TicketNumber = st.nextNumber
	st.nextNumber++
	ticket.CreatedAt = r.store.now()
	ticket.UpdatedAt = ticket.CreatedAt
	st.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	defer r.store.lock()()
	st := r.store.st

	current, ok := st.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Title = ticket.Title
	current.Description = ticket.Description
	current.Status = ticket.Status
	current.Priority = ticket.Priority
	current.Category = ticket.Category
	current.CustomerName = ticket.CustomerName
	current.CustomerEmail = ticket.CustomerEmail
	current.AssignedToID = ticket.AssignedToID
	current.ResolvedAt = ticket.ResolvedAt
	current.UpdatedAt = r.store.now()
	ticket.UpdatedAt = current.UpdatedAt
	st.tickets[ticket.ID] = cloneTicket(current)
	return nil
}

func (r *ticketRepository) Delete(_ context.Context, id string) error {
	defer r.store.lock()()
	if _, ok := r.store.st.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.st.tickets, id)
	return nil
}

func (r *ticketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	defer r.store.rlock()()
	t, ok := r.store.st.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTicket(t)
	return &t, nil
}

func (r *ticketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	defer r.store.rlock()()
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TicketNumber > matched[j].TicketNumber
	})
	return window(matched, filter.Offset, filter.Limit), nil
}

func (r *ticketRepository) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	defer r.store.rlock()()
	return len(r.matching(filter)), nil
}

func (r *ticketRepository) CountByStatus(_ context.Context) (map[domain.TicketStatus]int, error) {
	defer r.store.rlock()()
	result := map[domain.TicketStatus]int{}
	for _, t := range r.store.st.tickets {
		result[t.Status]++
	}
	return result, nil
}

func (r *ticketRepository) CountByPriority(_ context.Context) (map[domain.TicketPriority]int, error) {
	defer r.store.rlock()()
	result := map[domain.TicketPriority]int{}
	for _, t := range r.store.st.tickets {
		result[t.Priority]++
	}
	return result, nil
}

func (r *ticketRepository) AverageResolution(_ context.Context) (time.Duration, int, error) {
	defer r.store.rlock()()
	var total time.Duration
	count := 0
	for _, t := range r.store.st.tickets {
		if t.ResolvedAt == nil {
			continue
		}
		total += t.ResolvedAt.Sub(t.CreatedAt)
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return total / time.Duration(count), count, nil
}

func (r *ticketRepository) matching(filter repository.TicketFilter) []domain.Ticket {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	number, numErr := strconv.Atoi(search)

	result := []domain.Ticket{}
	for _, t := range r.store.st.tickets {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if search != "" {
			titleHit := strings.Contains(strings.ToLower(t.Title), search)
			numberHit := numErr == nil && t.TicketNumber == number
			if !titleHit && !numberHit {
				continue
			}
		}
		result = append(result, cloneTicket(t))
	}
	return result
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
