package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists accounts in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role,
	street, city, state, zip_code, country, phone, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role,
			street, city, state, zip_code, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
		u.Address.Street, u.Address.City, u.Address.State, u.Address.ZipCode,
		u.Address.Country, u.Phone,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE lower(email) = lower($1)`, userColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, query, username))
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, first_name = $5,
			last_name = $6, role = $7, street = $8, city = $9, state = $10,
			zip_code = $11, country = $12, phone = $13, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
		u.Address.Street, u.Address.City, u.Address.State, u.Address.ZipCode,
		u.Address.Country, u.Phone,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.Address.Street, &u.Address.City, &u.Address.State,
		&u.Address.ZipCode, &u.Address.Country, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
