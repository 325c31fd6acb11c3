package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists carts in the carts table with items as a JSON
// column, mirroring the denormalized reference schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID int64) (*Cart, error) {
	query := `SELECT user_id, session_id, items, updated_at FROM carts WHERE user_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, userID))
}

func (s *PostgresStore) FindBySession(ctx context.Context, sessionID string) (*Cart, error) {
	query := `SELECT user_id, session_id, items, updated_at FROM carts WHERE session_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, sessionID))
}

func (s *PostgresStore) Save(ctx context.Context, c *Cart) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	if c.UserID != 0 {
		query := `
			INSERT INTO carts (user_id, items, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id) WHERE user_id IS NOT NULL
			DO UPDATE SET items = EXCLUDED.items, updated_at = now()
		`
		if _, err := s.db.ExecContext(ctx, query, c.UserID, items); err != nil {
			return fmt.Errorf("upsert user cart: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO carts (session_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) WHERE session_id IS NOT NULL
		DO UPDATE SET items = EXCLUDED.items, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, c.SessionID, items); err != nil {
		return fmt.Errorf("upsert guest cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Cart, error) {
	var (
		c         Cart
		userID    sql.NullInt64
		sessionID sql.NullString
		items     []byte
	)
	err := row.Scan(&userID, &sessionID, &items, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	c.UserID = userID.Int64
	c.SessionID = sessionID.String
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal cart items: %w", err)
		}
	}
	return &c, nil
}
