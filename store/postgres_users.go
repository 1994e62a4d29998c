package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = "id, email, name, password_hash, google_id, reset_token, reset_token_expiry, created_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleID, &u.ResetToken, &u.ResetTokenExpiry, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO users (id, email, name, password_hash, google_id, reset_token, reset_token_expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.GoogleID, u.ResetToken, u.ResetTokenExpiry, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"
	return scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *PostgresUserStore) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1 OR (google_id <> '' AND google_id = $2) LIMIT 1"
	return scanUser(s.db.QueryRow(ctx, query, email, googleID))
}

func (s *PostgresUserStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE reset_token = $1 AND reset_token <> '' AND reset_token_expiry > $2"
	return scanUser(s.db.QueryRow(ctx, query, token, now))
}

func (s *PostgresUserStore) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, password_hash = $4, google_id = $5, reset_token = $6, reset_token_expiry = $7
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.GoogleID, u.ResetToken, u.ResetTokenExpiry)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
