package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// CropRepository handles persistence for crops.
type CropRepository struct {
	db *sql.DB
}

func NewCropRepository(db *sql.DB) *CropRepository {
	return &CropRepository{db: db}
}

const cropColumns = `id, farm_id, name, variety, planting_date, expected_harvest_date, status`

func scanCrop(scan func(dest ...any) error) (types.Crop, error) {
	var crop types.Crop
	err := scan(
		&crop.ID,
		&crop.FarmID,
		&crop.Name,
		&crop.Variety,
		&crop.PlantingDate,
		&crop.ExpectedHarvestDate,
		&crop.Status,
	)
	return crop, err
}

func (r *CropRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Crop, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE name ILIKE $1 OR variety ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `SELECT COUNT(1) FROM crops ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+cropColumns+`
		FROM crops %s
		ORDER BY id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	crops := make([]types.Crop, 0, limit)
	for rows.Next() {
		crop, err := scanCrop(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		crops = append(crops, crop)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return crops, total, nil
}

func (r *CropRepository) Get(ctx context.Context, id types.ID) (types.Crop, error) {
	const query = `
		SELECT ` + cropColumns + `
		FROM crops
		WHERE id = $1`
	crop, err := scanCrop(r.db.QueryRowContext(ctx, query, id.Int64()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Crop{}, ErrNotFound
		}
		return types.Crop{}, err
	}
	return crop, nil
}

func (r *CropRepository) Create(ctx context.Context, crop types.Crop) (types.Crop, error) {
	const query = `
		INSERT INTO crops (farm_id, name, variety, planting_date, expected_harvest_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		crop.FarmID.Int64(),
		crop.Name,
		crop.Variety,
		crop.PlantingDate,
		crop.ExpectedHarvestDate,
		crop.Status,
	).Scan(&crop.ID); err != nil {
		return types.Crop{}, translateError(err)
	}
	return crop, nil
}

func (r *CropRepository) Update(ctx context.Context, crop types.Crop) (types.Crop, error) {
	const query = `
		UPDATE crops
		SET farm_id = $1,
			name = $2,
			variety = $3,
			planting_date = $4,
			expected_harvest_date = $5,
			status = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		crop.FarmID.Int64(),
		crop.Name,
		crop.Variety,
		crop.PlantingDate,
		crop.ExpectedHarvestDate,
		crop.Status,
		crop.ID.Int64(),
	)
	if err != nil {
		return types.Crop{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Crop{}, err
	}
	if affected == 0 {
		return types.Crop{}, ErrNotFound
	}
	return crop, nil
}

func (r *CropRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM crops WHERE id = $1`
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
