package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/northwind-admin/northwind-admin/internal/catalog/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) (Product, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, category_id, supplier_id, quantity_per_unit, unit_price, units_in_stock, units_on_order, reorder_level, discontinued, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.SupplierID, &p.QuantityPerUnit, &p.UnitPrice,
		&p.UnitsInStock, &p.UnitsOnOrder, &p.ReorderLevel, &p.Discontinued, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return `$` + strconv.Itoa(len(args))
	}

	if filters.Search != "" {
		p := next("%" + filters.Search + "%")
		where += ` AND (name ILIKE ` + p + ` OR quantity_per_unit ILIKE ` + p + `)`
	}
	if filters.CategoryID != nil {
		where += ` AND category_id = ` + next(*filters.CategoryID)
	}
	if filters.SupplierID != nil {
		where += ` AND supplier_id = ` + next(*filters.SupplierID)
	}
	if filters.Discontinued != nil {
		where += ` AND discontinued = ` + next(*filters.Discontinued)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT ` + next(filters.Limit) + ` OFFSET ` + next(filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	query := `INSERT INTO products (name, category_id, supplier_id, quantity_per_unit, unit_price, units_in_stock, units_on_order, reorder_level, discontinued, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRow(ctx, query, p.Name, p.CategoryID, p.SupplierID, p.QuantityPerUnit, p.UnitPrice,
		p.UnitsInStock, p.UnitsOnOrder, p.ReorderLevel, p.Discontinued))
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	query := `UPDATE products SET name = $1, category_id = $2, supplier_id = $3, quantity_per_unit = $4, unit_price = $5,
		units_in_stock = $6, units_on_order = $7, reorder_level = $8, discontinued = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING ` + productColumns
	return scanProduct(r.db.QueryRow(ctx, query, p.Name, p.CategoryID, p.SupplierID, p.QuantityPerUnit, p.UnitPrice,
		p.UnitsInStock, p.UnitsOnOrder, p.ReorderLevel, p.Discontinued, p.ID))
}

func (r *repository) Delete(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "id":
		return "id " + dir
	case "unitPrice":
		return "unit_price " + dir + ", id"
	case "unitsInStock":
		return "units_in_stock " + dir + ", id"
	default:
		return "name " + dir + ", id"
	}
}

// StockCounter reports stock levels for the restock scan.
type StockCounter struct {
	db *pgxpool.Pool
}

func NewStockCounter(db *pgxpool.Pool) *StockCounter {
	return &StockCounter{db: db}
}

// CountLowStock counts active products whose stock plus open orders is at or
// below their reorder level.
func (c *StockCounter) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRow(ctx, `SELECT COUNT(*) FROM products
		WHERE NOT discontinued AND reorder_level > 0 AND units_in_stock + units_on_order <= reorder_level`).Scan(&count)
	return count, err
}
