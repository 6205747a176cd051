package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

const ticketID = "8d0b6c43-43a5-4c4f-9a5a-1c9b2c2f1e11"

func ticketRow(rows *pgxmock.Rows, number int, title string) *pgxmock.Rows {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(
		ticketID, number, title, "Users cannot log in on mobile",
		domain.TicketStatusOpen, domain.TicketPriorityHigh, domain.TicketCategoryTechnical,
		"John Smith", "john@example.com", "550e8400-e29b-41d4-a716-446655440001", (*string)(nil),
		now, now, (*time.Time)(nil),
	)
}

func TestTicketRepository_GetByID(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(ticketRow(pgxmock.NewRows(ticketColumns), 42, "Login page not loading"))

		ticket, err := NewTicketRepository(mock).GetByID(context.Background(), ticketID)
		require.NoError(t, err)
		assert.Equal(t, 42, ticket.TicketNumber)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.AssignedToID)
		assert.Nil(t, ticket.ResolvedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(pgxmock.NewRows(ticketColumns))

		_, err = NewTicketRepository(mock).GetByID(context.Background(), ticketID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		_, err = NewTicketRepository(mock).GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_ListSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	status := domain.TicketStatusOpen
	mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE status = \$1 AND \(title ILIKE \$2 OR ticket_number = \$3\) ORDER BY created_at DESC, ticket_number DESC LIMIT 15 OFFSET 15`).
		WithArgs(status, "%42%", 42).
		WillReturnRows(ticketRow(pgxmock.NewRows(ticketColumns), 42, "Order 42 missing"))

	tickets, err := NewTicketRepository(mock).List(context.Background(), TicketFilter{
		Status: &status,
		Search: "42",
		Limit:  15,
		Offset: 15,
	})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_CountTextSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tickets WHERE title ILIKE \$1`).
		WithArgs("%login%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	total, err := NewTicketRepository(mock).Count(context.Background(), TicketFilter{Search: " login "})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_SearchEscapesWildcards(t *testing.T) {
	tests := []struct {
		search string
		arg    string
	}{
		{search: "50%", arg: `%50\%%`},
		{search: "a_b", arg: `%a\_b%`},
		{search: `C:\tmp`, arg: `%C:\\tmp%`},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tickets WHERE title ILIKE \$1`).
				WithArgs(tt.arg).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

			total, err := NewTicketRepository(mock).Count(context.Background(), TicketFilter{Search: tt.search})
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketRepository_Delete(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM tickets WHERE id=\$1`).
			WithArgs(ticketID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, NewTicketRepository(mock).Delete(context.Background(), ticketID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing deleted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM tickets WHERE id=\$1`).
			WithArgs(ticketID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, NewTicketRepository(mock).Delete(context.Background(), ticketID), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_WithinTransaction(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM tickets WHERE id=\$1`).
			WithArgs(ticketID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err = NewPostgresStore(mock).WithinTransaction(context.Background(), func(tx Store) error {
			return tx.Tickets().Delete(context.Background(), ticketID)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the activity write fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM tickets WHERE id=\$1`).
			WithArgs(ticketID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = NewPostgresStore(mock).WithinTransaction(context.Background(), func(tx Store) error {
			if err := tx.Tickets().Delete(context.Background(), ticketID); err != nil {
				return err
			}
			return tx.ActivityLogs().Create(context.Background(), &domain.ActivityLog{
				UserID:     "550e8400-e29b-41d4-a716-446655440001",
				Action:     domain.ActionTicketDeleted,
				EntityType: domain.EntityTypeTicket,
				EntityID:   ticketID,
			})
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
