package postgres

import (
	"context"
	"fmt"
	"strings"

	"user-service/internal/domain/user"
	"user-service/internal/repository"
	apperrors "user-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = "id, google_id, first_name, last_name, email, email_confirmed, password_hash, active, access_level, created_at, updated_at"

// sortColumns whitelists the columns a list query may sort by.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"email":        "email",
	"first_name":   "first_name",
	"last_name":    "last_name",
	"access_level": "access_level",
}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.GoogleID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.EmailConfirmed,
		&u.PasswordHash,
		&u.Active,
		&u.AccessLevel,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, query repository.ListUsersQuery) ([]*user.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users", userColumns)

	var conditions []string
	var args []interface{}

	addCondition := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if query.Active != nil {
		addCondition("active", *query.Active)
	}
	if query.EmailConfirmed != nil {
		addCondition("email_confirmed", *query.EmailConfirmed)
	}
	if query.AccessLevel != nil {
		addCondition("access_level", *query.AccessLevel)
	}
	if query.Email != nil {
		addCondition("email", *query.Email)
	}

	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}

	orderColumn, ok := sortColumns[query.SortBy]
	if !ok {
		orderColumn = "created_at"
	}
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}
	sql += fmt.Sprintf(" ORDER BY %s %s", orderColumn, direction)

	if query.Limit > 0 {
		args = append(args, query.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if query.Skip > 0 {
		args = append(args, query.Skip)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errFailedScanUser(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateUsers(err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (google_id, first_name, last_name, email, email_confirmed, password_hash, active, access_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query,
		input.GoogleID,
		input.FirstName,
		input.LastName,
		input.Email,
		input.EmailConfirmed,
		input.PasswordHash,
		input.Active,
		input.AccessLevel,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errUserEmailTaken)
		}
		return nil, errFailedCreateUser(err)
	}

	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.GoogleID != nil {
		addSet("google_id", *input.GoogleID)
	}
	if input.FirstName != nil {
		addSet("first_name", *input.FirstName)
	}
	if input.LastName != nil {
		addSet("last_name", *input.LastName)
	}
	if input.Email != nil {
		addSet("email", *input.Email)
	}
	if input.PasswordHash != nil {
		addSet("password_hash", *input.PasswordHash)
	}
	if input.EmailConfirmed != nil {
		addSet("email_confirmed", *input.EmailConfirmed)
	}
	if input.Active != nil {
		addSet("active", *input.Active)
	}
	if input.AccessLevel != nil {
		addSet("access_level", *input.AccessLevel)
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $1 RETURNING %s", strings.Join(sets, ", "), userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errUserEmailTaken)
		}
		return nil, errFailedUpdateUser(err)
	}

	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := fmt.Sprintf("DELETE FROM users WHERE id = $1 RETURNING %s", userColumns)

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedDeleteUser(err)
	}

	return u, nil
}
