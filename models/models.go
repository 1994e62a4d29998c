package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

// Payment statuses for bills. Pending ("pay later") bills do not touch stock
// until they are marked paid.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleAuthRequest carries either an ID-token credential (sign-in button
// flow) or an OAuth access token (implicit flow); exactly one is expected.
type GoogleAuthRequest struct {
	Credential  string `json:"credential"`
	AccessToken string `json:"access_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// --- Core Models ---

// User owns all products, bills and reports created under their account.
// PasswordHash is empty for Google-only accounts.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	PasswordHash     string     `json:"-"`
	GoogleID         string     `json:"-"`
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Product is a catalog entry with its current stock level.
type Product struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	TotalSold int             `json:"totalSold"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	CreatedAt time.Time       `json:"createdAt"`
}

type CreateProductRequest struct {
	Name     string          `json:"name" validate:"required"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name"`
	Brand    *string          `json:"brand"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	Category *string          `json:"category"`
	Image    *string          `json:"image"`
}

// BillItem is a line item embedded in a bill. Total is stored redundantly and
// trusted as-is; when absent, consumers fall back to Price*Qty per item.
type BillItem struct {
	ProductID *string          `json:"productId,omitempty"`
	Name      string           `json:"name"`
	Brand     string           `json:"brand,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Qty       int              `json:"qty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
}

// Bill is an invoice owned by a single user. Paid bills are immutable; only
// pending bills can be edited or marked paid.
type Bill struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	BillNumber    string          `json:"billNumber"`
	CustomerName  string          `json:"customerName"`
	Phone         string          `json:"phone"`
	Items         BillItems       `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	GST           decimal.Decimal `json:"gst"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CreateBillRequest struct {
	CustomerName  string           `json:"customerName" validate:"required"`
	Phone         string           `json:"phone"`
	Items         BillItems        `json:"items"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	GST           *decimal.Decimal `json:"gst"`
	GrandTotal    decimal.Decimal  `json:"grandTotal"`
	PaymentStatus string           `json:"paymentStatus" validate:"omitempty,oneof=paid pending"`
}

type UpdateBillRequest struct {
	CustomerName *string          `json:"customerName"`
	Phone        *string          `json:"phone"`
	Items        *BillItems       `json:"items"`
	TotalAmount  *decimal.Decimal `json:"totalAmount"`
	GST          *decimal.Decimal `json:"gst"`
	GrandTotal   *decimal.Decimal `json:"grandTotal"`
}

// --- Reports ---

// ProductSummary is a per-product rollup inside a monthly report.
type ProductSummary struct {
	ProductID *string         `json:"productId,omitempty"`
	Name      string          `json:"name"`
	QtySold   int             `json:"qtySold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DailyBucket is one calendar day of a monthly report; every day of the month
// gets a bucket even with no sales.
type DailyBucket struct {
	Day          int             `json:"day"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalBills   int             `json:"totalBills"`
}

// BillSummary is the recent-bills excerpt of a monthly report.
type BillSummary struct {
	BillID        string          `json:"billId"`
	BillNumber    string          `json:"billNumber"`
	CustomerName  string          `json:"customerName"`
	CreatedAt     time.Time       `json:"createdAt"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	PaymentStatus string          `json:"paymentStatus"`
}

// ReportData is the aggregation result for one calendar month, shared by live
// reports and saved snapshots.
type ReportData struct {
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	TotalRevenue decimal.Decimal  `json:"totalRevenue"`
	TotalBills   int              `json:"totalBills"`
	Products     ProductSummaries `json:"products"`
	Daily        DailyBuckets     `json:"daily"`
	RecentBills  BillSummaries    `json:"recentBills"`
}

// Report is a persisted point-in-time snapshot. Finalize is a one-way
// transition; a finalized report is immutable.
type Report struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	ReportData
	Finalized   bool       `json:"finalized"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type SaveReportRequest struct {
	Month    int  `json:"month" validate:"required,min=1,max=12"`
	Year     int  `json:"year" validate:"required,gt=1970"`
	Finalize bool `json:"finalize"`
}

// --- JSONB-backed slices ---

// The embedded sequences (bill items, report rollups) live in jsonb columns,
// so each slice type implements driver.Valuer / sql.Scanner.

type BillItems []BillItem
type ProductSummaries []ProductSummary
type DailyBuckets []DailyBucket
type BillSummaries []BillSummary

func (b BillItems) Value() (driver.Value, error)        { return json.Marshal(b) }
func (p ProductSummaries) Value() (driver.Value, error) { return json.Marshal(p) }
func (d DailyBuckets) Value() (driver.Value, error)     { return json.Marshal(d) }
func (b BillSummaries) Value() (driver.Value, error)    { return json.Marshal(b) }

func (b *BillItems) Scan(value interface{}) error        { return scanJSON(value, b) }
func (p *ProductSummaries) Scan(value interface{}) error { return scanJSON(value, p) }
func (d *DailyBuckets) Scan(value interface{}) error     { return scanJSON(value, d) }
func (b *BillSummaries) Scan(value interface{}) error    { return scanJSON(value, b) }

func scanJSON(value, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported type for jsonb scan")
	}
}
