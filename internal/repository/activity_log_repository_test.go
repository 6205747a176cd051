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

func TestActivityLogRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := &domain.ActivityLog{
		UserID:     "550e8400-e29b-41d4-a716-446655440001",
		Action:     domain.ActionTicketCreated,
		EntityType: domain.EntityTypeTicket,
		EntityID:   ticketID,
		Metadata:   map[string]any{"ticketNumber": 7},
	}
	mock.ExpectQuery(`INSERT INTO activity_logs`).
		WithArgs(entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Metadata, entry.IPAddress, entry.UserAgent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("log-1", created))

	require.NoError(t, NewActivityLogRepository(mock).Create(context.Background(), entry))
	assert.Equal(t, "log-1", entry.ID)
	assert.Equal(t, created, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepository_ListFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	action := domain.ActionTicketUpdated
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	entityType, entityID := domain.EntityTypeTicket, ticketID

	mock.ExpectQuery(`SELECT (.+) FROM activity_logs WHERE action = \$1 AND created_at >= \$2 AND created_at <= \$3 ORDER BY created_at DESC, id DESC LIMIT 20`).
		WithArgs(action, start, end).
		WillReturnRows(pgxmock.NewRows(activityColumns).AddRow(
			"log-1", "550e8400-e29b-41d4-a716-446655440001", action, &entityType, &entityID,
			map[string]any{"ticketNumber": float64(7)}, (*string)(nil), (*string)(nil), start,
		))

	logs, err := NewActivityLogRepository(mock).List(context.Background(), ActivityFilter{
		Action:    &action,
		StartDate: &start,
		EndDate:   &end,
		Limit:     20,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.EntityTypeTicket, logs[0].EntityType)
	assert.Equal(t, ticketID, logs[0].EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepository_CountByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT user_id, COUNT\(\*\) AS total FROM activity_logs GROUP BY user_id ORDER BY total DESC, user_id ASC LIMIT 10`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "total"}).
			AddRow("u1", int64(9)).
			AddRow("u2", int64(4)))

	counts, err := NewActivityLogRepository(mock).CountByUser(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.ActivityCount{{Key: "u1", Count: 9}, {Key: "u2", Count: 4}}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
