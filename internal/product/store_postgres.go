package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists the catalog in the products table. Images and
// specifications are stored as JSON columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, name, description, price, category, brand, stock,
	images, specifications, rating_average, rating_count, is_featured,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *Product) error {
	images, specs, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (name, description, price, category, brand, stock,
			images, specifications, rating_average, rating_count, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.Category, p.Brand, p.Stock,
		images, specs, p.RatingAverage, p.RatingCount, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return scanProduct(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	// An empty keyword becomes the match-all pattern "%%".
	pattern := "%" + filter.Keyword + "%"

	var total int
	countQuery := `SELECT count(*) FROM products WHERE name ILIKE $1`
	if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE name ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, productColumns)
	rows, err := s.db.QueryContext(ctx, query, pattern, filter.PageSize, (filter.Page-1)*filter.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return products, total, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Product) error {
	images, specs, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, brand = $6,
			stock = $7, images = $8, specifications = $9, rating_average = $10,
			rating_count = $11, is_featured = $12, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Brand, p.Stock,
		images, specs, p.RatingAverage, p.RatingCount, p.IsFeatured,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalJSONColumns(p *Product) ([]byte, []byte, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal specifications: %w", err)
	}
	return images, specs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*Product, error) {
	p, err := scanProductRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scanProductRow(row rowScanner) (*Product, error) {
	var (
		p      Product
		images []byte
		specs  []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Brand,
		&p.Stock, &images, &specs, &p.RatingAverage, &p.RatingCount,
		&p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("unmarshal specifications: %w", err)
		}
	}
	return &p, nil
}
