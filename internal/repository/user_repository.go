package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

// UserFilter describes profile listing filters.
type UserFilter struct {
	Role     *domain.Role
	IsActive *bool
	Limit    int
	Offset   int
}

// UserRepository defines persistence access for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserProfile) error
	Update(ctx context.Context, user *domain.UserProfile) error
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.UserProfile, error)
	List(ctx context.Context, filter UserFilter) ([]domain.UserProfile, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	CountByRole(ctx context.Context) (map[domain.Role]int, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

var userColumns = []string{"id", "email", "full_name", "role", "is_active", "created_at", "updated_at"}

func (r *userRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (email, full_name, role, is_active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.UserProfile) error {
	if !validID(user.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE user_profiles SET email=$1, full_name=$2, role=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
	return mapNoRows(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	users, err := r.query(ctx, psql.Select(userColumns...).From("user_profiles").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.UserProfile, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []domain.UserProfile{}, nil
	}
	return r.query(ctx, psql.Select(userColumns...).From("user_profiles").Where(squirrel.Eq{"id": valid}))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.UserProfile, error) {
	builder := applyUserFilter(psql.Select(userColumns...).From("user_profiles"), filter).
		OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	return r.query(ctx, builder)
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int, error) {
	return countQuery(ctx, r.db, applyUserFilter(psql.Select("COUNT(*)").From("user_profiles"), filter))
}

func (r *userRepository) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	rows, err := r.db.Query(ctx, `SELECT role, COUNT(*) FROM user_profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := map[domain.Role]int{}
	for rows.Next() {
		var role domain.Role
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		result[role] = count
	}
	return result, rows.Err()
}

func (r *userRepository) query(ctx context.Context, builder squirrel.SelectBuilder) ([]domain.UserProfile, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build user query")
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func applyUserFilter(builder squirrel.SelectBuilder, filter UserFilter) squirrel.SelectBuilder {
	if filter.Role != nil {
		builder = builder.Where(squirrel.Eq{"role": *filter.Role})
	}
	if filter.IsActive != nil {
		builder = builder.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	return builder
}

func scanUsers(rows pgx.Rows) ([]domain.UserProfile, error) {
	result := []domain.UserProfile{}
	for rows.Next() {
		var user domain.UserProfile
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
