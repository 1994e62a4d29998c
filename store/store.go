// Package store persists users, products, bills and report snapshots. Each
// entity has a Postgres implementation and an in-memory one; the in-memory
// stores back the demo mode and the test suite.
package store

import (
	"context"
	"errors"
	"time"

	"app/models"
)

var (
	// ErrNotFound is returned when a record is absent or owned by another
	// user. Cross-user lookups are indistinguishable from missing records.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyFinalized is returned when finalizing a report twice.
	ErrAlreadyFinalized = errors.New("report already finalized")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByEmailOrGoogleID matches either field; used to link Google
	// sign-ins to existing password accounts.
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (*models.User, error)
	// GetByResetToken only matches tokens whose expiry is after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	ListByUser(ctx context.Context, userID string) ([]models.Product, error)
	GetByID(ctx context.Context, userID, id string) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, userID, id string) error
	// RecordSale decrements stock (floored at zero) and bumps the lifetime
	// sold counter. A missing product is not an error; the bill keeps the
	// line item either way.
	RecordSale(ctx context.Context, userID, productID string, qty int) error
	DeleteByUser(ctx context.Context, userID string) error
}

type BillStore interface {
	Create(ctx context.Context, b *models.Bill) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Bill, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	GetByID(ctx context.Context, userID, id string) (*models.Bill, error)
	Update(ctx context.Context, b *models.Bill) error
	// FindPaidInRange returns paid bills with createdAt in [start, end).
	FindPaidInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Bill, error)
	// FindSince returns bills of any payment status created at or after the
	// given instant.
	FindSince(ctx context.Context, userID string, since time.Time) ([]models.Bill, error)
	// LastBillNumber returns the newest bill's number, or "" when the user
	// has no bills yet.
	LastBillNumber(ctx context.Context, userID string) (string, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type ReportStore interface {
	// Create always inserts a new snapshot. Several snapshots may exist for
	// the same (user, month, year); re-saving to refresh numbers is allowed.
	Create(ctx context.Context, r *models.Report) error
	ListByUser(ctx context.Context, userID string) ([]models.Report, error)
	GetByID(ctx context.Context, userID, id string) (*models.Report, error)
	// Finalize flips finalized to true exactly once. Under concurrent calls
	// a single caller wins; the rest get ErrAlreadyFinalized.
	Finalize(ctx context.Context, userID, id string, at time.Time) (*models.Report, error)
}
