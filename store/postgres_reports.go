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

type PostgresReportStore struct {
	db *pgxpool.Pool
}

func NewPostgresReportStore(db *pgxpool.Pool) *PostgresReportStore {
	return &PostgresReportStore{db: db}
}

const reportColumns = "id, user_id, month, year, total_revenue, total_bills, products, daily, recent_bills, finalized, finalized_at, created_at"

func scanReport(row pgx.Row) (*models.Report, error) {
	var r models.Report
	err := row.Scan(&r.ID, &r.UserID, &r.Month, &r.Year, &r.TotalRevenue, &r.TotalBills, &r.Products, &r.Daily, &r.RecentBills, &r.Finalized, &r.FinalizedAt, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *PostgresReportStore) Create(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO reports (id, user_id, month, year, total_revenue, total_bills, products, daily, recent_bills, finalized, finalized_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.Exec(ctx, query, r.ID, r.UserID, r.Month, r.Year, r.TotalRevenue, r.TotalBills, r.Products, r.Daily, r.RecentBills, r.Finalized, r.FinalizedAt, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresReportStore) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	query := "SELECT " + reportColumns + " FROM reports WHERE user_id = $1 ORDER BY created_at DESC"
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.Report, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *PostgresReportStore) GetByID(ctx context.Context, userID, id string) (*models.Report, error) {
	query := "SELECT " + reportColumns + " FROM reports WHERE id = $1 AND user_id = $2"
	return scanReport(s.db.QueryRow(ctx, query, id, userID))
}

// Finalize is a compare-and-set on the finalized flag: the conditional UPDATE
// guarantees a single winner under concurrent calls. When no row is updated,
// a follow-up lookup distinguishes "missing" from "already finalized".
func (s *PostgresReportStore) Finalize(ctx context.Context, userID, id string, at time.Time) (*models.Report, error) {
	query := `
		UPDATE reports
		SET finalized = TRUE, finalized_at = $3
		WHERE id = $1 AND user_id = $2 AND finalized = FALSE
		RETURNING ` + reportColumns
	r, err := scanReport(s.db.QueryRow(ctx, query, id, userID, at))
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var finalized bool
	checkErr := s.db.QueryRow(ctx, "SELECT finalized FROM reports WHERE id = $1 AND user_id = $2", id, userID).Scan(&finalized)
	if checkErr != nil {
		if errors.Is(checkErr, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, checkErr
	}
	if finalized {
		return nil, ErrAlreadyFinalized
	}
	return nil, err
}
