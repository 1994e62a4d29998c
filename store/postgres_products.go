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

type PostgresProductStore struct {
	db *pgxpool.Pool
}

func NewPostgresProductStore(db *pgxpool.Pool) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

const productColumns = "id, user_id, name, brand, price, stock, total_sold, category, image, created_at"

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Brand, &p.Price, &p.Stock, &p.TotalSold, &p.Category, &p.Image, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresProductStore) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO products (id, user_id, name, brand, price, stock, total_sold, category, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query, p.ID, p.UserID, p.Name, p.Brand, p.Price, p.Stock, p.TotalSold, p.Category, p.Image, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) ListByUser(ctx context.Context, userID string) ([]models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE user_id = $1 ORDER BY created_at DESC"
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresProductStore) GetByID(ctx context.Context, userID, id string) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1 AND user_id = $2"
	return scanProduct(s.db.QueryRow(ctx, query, id, userID))
}

func (s *PostgresProductStore) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $3, brand = $4, price = $5, stock = $6, total_sold = $7, category = $8, image = $9
		WHERE id = $1 AND user_id = $2
	`
	tag, err := s.db.Exec(ctx, query, p.ID, p.UserID, p.Name, p.Brand, p.Price, p.Stock, p.TotalSold, p.Category, p.Image)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProductStore) RecordSale(ctx context.Context, userID, productID string, qty int) error {
	query := `
		UPDATE products
		SET stock = GREATEST(stock - $3, 0), total_sold = total_sold + $3
		WHERE id = $1 AND user_id = $2
	`
	// A vanished product is skipped silently; the bill keeps its line item.
	_, err := s.db.Exec(ctx, query, productID, userID, qty)
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM products WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}
