package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// FarmerRepository handles persistence for farmers.
type FarmerRepository struct {
	db *sql.DB
}

func NewFarmerRepository(db *sql.DB) *FarmerRepository {
	return &FarmerRepository{db: db}
}

const farmerColumns = `id, user_id, full_name, gender, phone, email, address`

func (r *FarmerRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Farmer, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE full_name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `SELECT COUNT(1) FROM farmers ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+farmerColumns+`
		FROM farmers %s
		ORDER BY id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	farmers := make([]types.Farmer, 0, limit)
	for rows.Next() {
		var farmer types.Farmer
		if err := rows.Scan(
			&farmer.ID,
			&farmer.UserID,
			&farmer.FullName,
			&farmer.Gender,
			&farmer.Phone,
			&farmer.Email,
			&farmer.Address,
		); err != nil {
			return nil, 0, err
		}
		farmers = append(farmers, farmer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return farmers, total, nil
}

func (r *FarmerRepository) Get(ctx context.Context, id types.ID) (types.Farmer, error) {
	const query = `
		SELECT ` + farmerColumns + `
		FROM farmers
		WHERE id = $1`
	var farmer types.Farmer
	err := r.db.QueryRowContext(ctx, query, id.Int64()).Scan(
		&farmer.ID,
		&farmer.UserID,
		&farmer.FullName,
		&farmer.Gender,
		&farmer.Phone,
		&farmer.Email,
		&farmer.Address,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Farmer{}, ErrNotFound
		}
		return types.Farmer{}, err
	}
	return farmer, nil
}

// EmailTaken reports whether another farmer (excluding excludeID, pass 0 to
// exclude nobody) is already registered with the email.
func (r *FarmerRepository) EmailTaken(ctx context.Context, email string, excludeID types.ID) (bool, error) {
	const query = `
		SELECT COUNT(1)
		FROM farmers
		WHERE email = $1 AND id <> $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, email, excludeID.Int64()).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FarmerRepository) Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	const query = `
		INSERT INTO farmers (user_id, full_name, gender, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		farmer.UserID.Int64(),
		farmer.FullName,
		farmer.Gender,
		farmer.Phone,
		farmer.Email,
		farmer.Address,
	).Scan(&farmer.ID); err != nil {
		return types.Farmer{}, translateError(err)
	}
	return farmer, nil
}

func (r *FarmerRepository) Update(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	const query = `
		UPDATE farmers
		SET user_id = $1,
			full_name = $2,
			gender = $3,
			phone = $4,
			email = $5,
			address = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		farmer.UserID.Int64(),
		farmer.FullName,
		farmer.Gender,
		farmer.Phone,
		farmer.Email,
		farmer.Address,
		farmer.ID.Int64(),
	)
	if err != nil {
		return types.Farmer{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Farmer{}, err
	}
	if affected == 0 {
		return types.Farmer{}, ErrNotFound
	}
	return farmer, nil
}

func (r *FarmerRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM farmers WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id.Int64())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
