package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// FarmRepository handles persistence for farms. Reads join the owning
// farmer so listings can show and search by the owner's name.
type FarmRepository struct {
	db *sql.DB
}

func NewFarmRepository(db *sql.DB) *FarmRepository {
	return &FarmRepository{db: db}
}

const farmJoinColumns = `
	f.id, f.farmer_id, f.name, f.location, f.size_acres, f.irrigation, f.gps_coordinates,
	fr.id, fr.user_id, fr.full_name, fr.gender, fr.phone, fr.email, fr.address`

func scanFarmRow(scan func(dest ...any) error) (types.Farm, error) {
	var farm types.Farm
	var farmer types.Farmer
	err := scan(
		&farm.ID,
		&farm.FarmerID,
		&farm.Name,
		&farm.Location,
		&farm.SizeAcres,
		&farm.Irrigation,
		&farm.GPSCoordinates,
		&farmer.ID,
		&farmer.UserID,
		&farmer.FullName,
		&farmer.Gender,
		&farmer.Phone,
		&farmer.Email,
		&farmer.Address,
	)
	if err != nil {
		return types.Farm{}, err
	}
	farm.Farmer = &farmer
	return farm, nil
}

func (r *FarmRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Farm, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE f.name ILIKE $1 OR f.location ILIKE $1 OR fr.full_name ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `
		SELECT COUNT(1)
		FROM farms f
		JOIN farmers fr ON fr.id = f.farmer_id ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+farmJoinColumns+`
		FROM farms f
		JOIN farmers fr ON fr.id = f.farmer_id %s
		ORDER BY f.id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	farms := make([]types.Farm, 0, limit)
	for rows.Next() {
		farm, err := scanFarmRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		farms = append(farms, farm)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return farms, total, nil
}

func (r *FarmRepository) Get(ctx context.Context, id types.ID) (types.Farm, error) {
	const query = `
		SELECT ` + farmJoinColumns + `
		FROM farms f
		JOIN farmers fr ON fr.id = f.farmer_id
		WHERE f.id = $1`
	farm, err := scanFarmRow(r.db.QueryRowContext(ctx, query, id.Int64()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Farm{}, ErrNotFound
		}
		return types.Farm{}, err
	}
	return farm, nil
}

func (r *FarmRepository) Create(ctx context.Context, farm types.Farm) (types.Farm, error) {
	const query = `
		INSERT INTO farms (farmer_id, name, location, size_acres, irrigation, gps_coordinates)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		farm.FarmerID.Int64(),
		farm.Name,
		farm.Location,
		farm.SizeAcres,
		farm.Irrigation,
		farm.GPSCoordinates,
	).Scan(&farm.ID); err != nil {
		return types.Farm{}, translateError(err)
	}
	return farm, nil
}

func (r *FarmRepository) Update(ctx context.Context, farm types.Farm) (types.Farm, error) {
	const query = `
		UPDATE farms
		SET farmer_id = $1,
			name = $2,
			location = $3,
			size_acres = $4,
			irrigation = $5,
			gps_coordinates = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		farm.FarmerID.Int64(),
		farm.Name,
		farm.Location,
		farm.SizeAcres,
		farm.Irrigation,
		farm.GPSCoordinates,
		farm.ID.Int64(),
	)
	if err != nil {
		return types.Farm{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Farm{}, err
	}
	if affected == 0 {
		return types.Farm{}, ErrNotFound
	}
	return farm, nil
}

func (r *FarmRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM farms WHERE id = $1`
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
