package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agritrack/apiserver/types"
)

// SaleRepository handles persistence for sales.
type SaleRepository struct {
	db *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

const saleColumns = `id, farm_id, product_type, product_name, quantity, unit, price_per_unit, sale_date, buyer_name`

func scanSale(scan func(dest ...any) error) (types.Sale, error) {
	var sale types.Sale
	err := scan(
		&sale.ID,
		&sale.FarmID,
		&sale.ProductType,
		&sale.ProductName,
		&sale.Quantity,
		&sale.Unit,
		&sale.PricePerUnit,
		&sale.SaleDate,
		&sale.BuyerName,
	)
	return sale, err
}

func (r *SaleRepository) List(ctx context.Context, search string, offset, limit int) ([]types.Sale, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE product_type ILIKE $1 OR product_name ILIKE $1 OR buyer_name ILIKE $1`
		args = append(args, likePattern(search))
	}

	countQuery := `SELECT COUNT(1) FROM sales ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT `+saleColumns+`
		FROM sales %s
		ORDER BY id
		OFFSET $%d LIMIT $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sales := make([]types.Sale, 0, limit)
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *SaleRepository) Get(ctx context.Context, id types.ID) (types.Sale, error) {
	const query = `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE id = $1`
	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id.Int64()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Sale{}, ErrNotFound
		}
		return types.Sale{}, err
	}
	return sale, nil
}

func (r *SaleRepository) Create(ctx context.Context, sale types.Sale) (types.Sale, error) {
	const query = `
		INSERT INTO sales (farm_id, product_type, product_name, quantity, unit, price_per_unit, sale_date, buyer_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		sale.FarmID.Int64(),
		sale.ProductType,
		sale.ProductName,
		sale.Quantity,
		sale.Unit,
		sale.PricePerUnit,
		sale.SaleDate,
		sale.BuyerName,
	).Scan(&sale.ID); err != nil {
		return types.Sale{}, translateError(err)
	}
	return sale, nil
}

func (r *SaleRepository) Update(ctx context.Context, sale types.Sale) (types.Sale, error) {
	const query = `
		UPDATE sales
		SET farm_id = $1,
			product_type = $2,
			product_name = $3,
			quantity = $4,
			unit = $5,
			price_per_unit = $6,
			sale_date = $7,
			buyer_name = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		sale.FarmID.Int64(),
		sale.ProductType,
		sale.ProductName,
		sale.Quantity,
		sale.Unit,
		sale.PricePerUnit,
		sale.SaleDate,
		sale.BuyerName,
		sale.ID.Int64(),
	)
	if err != nil {
		return types.Sale{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Sale{}, err
	}
	if affected == 0 {
		return types.Sale{}, ErrNotFound
	}
	return sale, nil
}

func (r *SaleRepository) Delete(ctx context.Context, id types.ID) error {
	const query = `DELETE FROM sales WHERE id = $1`
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
