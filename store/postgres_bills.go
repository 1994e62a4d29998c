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

type PostgresBillStore struct {
	db *pgxpool.Pool
}

func NewPostgresBillStore(db *pgxpool.Pool) *PostgresBillStore {
	return &PostgresBillStore{db: db}
}

const billColumns = "id, user_id, bill_number, customer_name, phone, items, total_amount, gst, grand_total, payment_status, created_at"

func scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.UserID, &b.BillNumber, &b.CustomerName, &b.Phone, &b.Items, &b.TotalAmount, &b.GST, &b.GrandTotal, &b.PaymentStatus, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *PostgresBillStore) queryBills(ctx context.Context, query string, args ...interface{}) ([]models.Bill, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	bills := make([]models.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (s *PostgresBillStore) Create(ctx context.Context, b *models.Bill) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO bills (id, user_id, bill_number, customer_name, phone, items, total_amount, gst, grand_total, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.Exec(ctx, query, b.ID, b.UserID, b.BillNumber, b.CustomerName, b.Phone, b.Items, b.TotalAmount, b.GST, b.GrandTotal, b.PaymentStatus, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (s *PostgresBillStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	return s.queryBills(ctx, query, userID, limit, offset)
}

func (s *PostgresBillStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM bills WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bills: %w", err)
	}
	return count, nil
}

func (s *PostgresBillStore) GetByID(ctx context.Context, userID, id string) (*models.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE id = $1 AND user_id = $2"
	return scanBill(s.db.QueryRow(ctx, query, id, userID))
}

func (s *PostgresBillStore) Update(ctx context.Context, b *models.Bill) error {
	query := `
		UPDATE bills
		SET customer_name = $3, phone = $4, items = $5, total_amount = $6, gst = $7, grand_total = $8, payment_status = $9
		WHERE id = $1 AND user_id = $2
	`
	tag, err := s.db.Exec(ctx, query, b.ID, b.UserID, b.CustomerName, b.Phone, b.Items, b.TotalAmount, b.GST, b.GrandTotal, b.PaymentStatus)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresBillStore) FindPaidInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Bill, error) {
	query := "SELECT " + billColumns + ` FROM bills
		WHERE user_id = $1 AND payment_status = 'paid' AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`
	return s.queryBills(ctx, query, userID, start, end)
}

func (s *PostgresBillStore) FindSince(ctx context.Context, userID string, since time.Time) ([]models.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC"
	return s.queryBills(ctx, query, userID, since)
}

func (s *PostgresBillStore) LastBillNumber(ctx context.Context, userID string) (string, error) {
	var number string
	query := "SELECT bill_number FROM bills WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1"
	err := s.db.QueryRow(ctx, query, userID).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last bill number: %w", err)
	}
	return number, nil
}

func (s *PostgresBillStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM bills WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("delete bills: %w", err)
	}
	return nil
}
