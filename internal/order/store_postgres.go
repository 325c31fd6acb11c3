package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists orders in the orders table with items as a JSON
// column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, user_id, items, shipping_street, shipping_city, shipping_state,
	shipping_zip_code, shipping_country, payment_method, payment_result_id,
	payment_result_status, payment_result_update_time, items_price, tax_price,
	shipping_price, total_price, is_paid, paid_at, is_delivered, delivered_at, created_at`

func (s *PostgresStore) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	query := `
		INSERT INTO orders (user_id, items, shipping_street, shipping_city,
			shipping_state, shipping_zip_code, shipping_country, payment_method,
			items_price, tax_price, shipping_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	err = s.db.QueryRowContext(ctx, query,
		o.UserID, items, o.ShippingAddress.Street, o.ShippingAddress.City,
		o.ShippingAddress.State, o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country, o.PaymentMethod,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, orderColumns)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC, id DESC`, orderColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *PostgresStore) Update(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	query := `
		UPDATE orders
		SET items = $2, payment_method = $3, payment_result_id = $4,
			payment_result_status = $5, payment_result_update_time = $6,
			is_paid = $7, paid_at = $8, is_delivered = $9, delivered_at = $10
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		o.ID, items, o.PaymentMethod, o.PaymentResult.ID, o.PaymentResult.Status,
		o.PaymentResult.UpdateTime, o.IsPaid, o.PaidAt, o.IsDelivered, o.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o     Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &o.ShippingAddress.Street,
		&o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.PaymentMethod, &o.PaymentResult.ID, &o.PaymentResult.Status,
		&o.PaymentResult.UpdateTime, &o.ItemsPrice, &o.TaxPrice,
		&o.ShippingPrice, &o.TotalPrice, &o.IsPaid, &o.PaidAt,
		&o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
