package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// EquipmentRepository handles persistence for equipment.
type EquipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

const equipmentColumns = `id, farm_id, name, purchase_date, condition, is_operational`

func scanEquipment(scan func(dest ...any) error) (types.Equipment, error) {
	var equipment types.Equipment
	err := scan(
		&equipment.ID,
		&equipment.FarmID,
		&equipment.Name,
		&equipment.PurchaseDate,
		&equipment.Condition,
		&equipment.IsOperational,
	)
	return equipment, err
}

func (r *EquipmentRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Equipment, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE name ILIKE $1 OR condition ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `SELECT COUNT(1) FROM equipment ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+equipmentColumns+`
		FROM equipment %s
		ORDER BY id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]types.Equipment, 0, limit)
	for rows.Next() {
		equipment, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, equipment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *EquipmentRepository) Get(ctx context.Context, id types.ID) (types.Equipment, error) {
	const query = `
		SELECT ` + equipmentColumns + `
		FROM equipment
		WHERE id = $1`
	equipment, err := scanEquipment(r.db.QueryRowContext(ctx, query, id.Int64()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Equipment{}, ErrNotFound
		}
		return types.Equipment{}, err
	}
	return equipment, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, equipment types.Equipment) (types.Equipment, error) {
	const query = `
		INSERT INTO equipment (farm_id, name, purchase_date, condition, is_operational)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		equipment.FarmID.Int64(),
		equipment.Name,
		equipment.PurchaseDate,
		equipment.Condition,
		equipment.IsOperational,
	).Scan(&equipment.ID); err != nil {
		return types.Equipment{}, translateError(err)
	}
	return equipment, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, equipment types.Equipment) (types.Equipment, error) {
	const query = `
		UPDATE equipment
		SET farm_id = $1,
			name = $2,
			purchase_date = $3,
			condition = $4,
			is_operational = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		equipment.FarmID.Int64(),
		equipment.Name,
		equipment.PurchaseDate,
		equipment.Condition,
		equipment.IsOperational,
		equipment.ID.Int64(),
	)
	if err != nil {
		return types.Equipment{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Equipment{}, err
	}
	if affected == 0 {
		return types.Equipment{}, ErrNotFound
	}
	return equipment, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM equipment WHERE id = $1`
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
