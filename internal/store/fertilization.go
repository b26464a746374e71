package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// FertilizationRepository handles persistence for fertilization records.
type FertilizationRepository struct {
	db *sql.DB
}

func NewFertilizationRepository(db *sql.DB) *FertilizationRepository {
	return &FertilizationRepository{db: db}
}

const fertilizationColumns = `id, crop_id, date, type, quantity_kg`

func scanFertilization(scan func(dest ...any) error) (types.Fertilization, error) {
	var record types.Fertilization
	err := scan(
		&record.ID,
		&record.CropID,
		&record.Date,
		&record.Type,
		&record.QuantityKg,
	)
	return record, err
}

func (r *FertilizationRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Fertilization, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE type ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `SELECT COUNT(1) FROM fertilization ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+fertilizationColumns+`
		FROM fertilization %s
		ORDER BY id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]types.Fertilization, 0, limit)
	for rows.Next() {
		record, err := scanFertilization(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *FertilizationRepository) Get(ctx context.Context, id types.ID) (types.Fertilization, error) {
	const query = `
		SELECT ` + fertilizationColumns + `
		FROM fertilization
		WHERE id = $1`
	record, err := scanFertilization(r.db.QueryRowContext(ctx, query, id.Int64()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Fertilization{}, ErrNotFound
		}
		return types.Fertilization{}, err
	}
	return record, nil
}

func (r *FertilizationRepository) Create(ctx context.Context, record types.Fertilization) (types.Fertilization, error) {
	const query = `
		INSERT INTO fertilization (crop_id, date, type, quantity_kg)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		record.CropID.Int64(),
		record.Date,
		record.Type,
		record.QuantityKg,
	).Scan(&record.ID); err != nil {
		return types.Fertilization{}, translateError(err)
	}
	return record, nil
}

func (r *FertilizationRepository) Update(ctx context.Context, record types.Fertilization) (types.Fertilization, error) {
	const query = `
		UPDATE fertilization
		SET crop_id = $1,
			date = $2,
			type = $3,
			quantity_kg = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		record.CropID.Int64(),
		record.Date,
		record.Type,
		record.QuantityKg,
		record.ID.Int64(),
	)
	if err != nil {
		return types.Fertilization{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Fertilization{}, err
	}
	if affected == 0 {
		return types.Fertilization{}, ErrNotFound
	}
	return record, nil
}

func (r *FertilizationRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM fertilization WHERE id = $1`
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
