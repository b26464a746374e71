package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agritrack/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, fullname, username, email, password, image_photo, phone, address, created_at`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Fullname,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ImagePhoto,
		&user.Phone,
		&user.Address,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id types.ID) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id.Int64()))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// UsernameOrEmailTaken reports whether another user (excluding excludeID,
// pass 0 to exclude nobody) already holds the username or email.
func (r *UserRepository) UsernameOrEmailTaken(ctx context.Context, username, email string, excludeID types.ID) (bool, error) {
	const query = `
		SELECT COUNT(1)
		FROM users
		WHERE (username = $1 OR email = $2) AND id <> $3`
	var count int
	if err := r.db.QueryRowContext(ctx, query, username, email, excludeID.Int64()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.CreatedAt = time.Now()

	const query = `
		INSERT INTO users (fullname, username, email, password, image_photo, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Fullname,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ImagePhoto,
		user.Phone,
		user.Address,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		UPDATE users
		SET fullname = $1,
			username = $2,
			email = $3,
			password = $4,
			image_photo = $5,
			phone = $6,
			address = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Fullname,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ImagePhoto,
		user.Phone,
		user.Address,
		user.ID.Int64(),
	)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// ListSummaries returns id and fullname for every user, ordered by id.
func (r *UserRepository) ListSummaries(ctx context.Context) ([]types.UserSummary, error) {
	const query = `SELECT id, fullname FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]types.UserSummary, 0)
	for rows.Next() {
		var summary types.UserSummary
		if err := rows.Scan(&summary.ID, &summary.Fullname); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
