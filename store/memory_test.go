package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(userID string, month, year int, finalized bool) *models.Report {
	return &models.Report{
		UserID: userID,
		ReportData: models.ReportData{
			Month:        month,
			Year:         year,
			TotalRevenue: decimal.NewFromInt(600),
			TotalBills:   1,
		},
		Finalized: finalized,
	}
}

func TestReportStoreCreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	r := newReport("u1", 2, 2025, false)
	require.NoError(t, s.Create(ctx, r))
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.GetByID(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Month)
	assert.False(t, got.Finalized)
	assert.Nil(t, got.FinalizedAt)
}

func TestReportStoreAllowsDuplicateMonthSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	first := newReport("u1", 2, 2025, false)
	second := newReport("u1", 2, 2025, false)
	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReportStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	old := newReport("u1", 1, 2025, false)
	old.CreatedAt = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	recent := newReport("u1", 2, 2025, false)
	recent.CreatedAt = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, old))
	require.NoError(t, s.Create(ctx, recent))

	list, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Month)
	assert.Equal(t, 1, list[1].Month)
}

func TestReportStoreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	r := newReport("u1", 2, 2025, false)
	require.NoError(t, s.Create(ctx, r))

	_, err := s.GetByID(ctx, "u2", r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Finalize(ctx, "u2", r.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReportStoreFinalizeIsOneWay(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	r := newReport("u1", 2, 2025, false)
	require.NoError(t, s.Create(ctx, r))

	at := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	final, err := s.Finalize(ctx, "u1", r.ID, at)
	require.NoError(t, err)
	assert.True(t, final.Finalized)
	require.NotNil(t, final.FinalizedAt)
	assert.Equal(t, at, *final.FinalizedAt)

	_, err = s.Finalize(ctx, "u1", r.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	// Snapshot body survives finalization untouched.
	got, err := s.GetByID(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalRevenue.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, 1, got.TotalBills)
}

func TestReportStoreFinalizeMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()
	_, err := s.Finalize(ctx, "u1", "no-such-id", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportStoreConcurrentFinalizeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReportStore()

	r := newReport("u1", 2, 2025, false)
	require.NoError(t, s.Create(ctx, r))

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Finalize(ctx, "u1", r.ID, time.Now().UTC())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case err == ErrAlreadyFinalized:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, losses)
}

func TestBillStoreFindPaidInRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBillStore()

	mk := func(userID, status string, created time.Time) {
		require.NoError(t, s.Create(ctx, &models.Bill{
			UserID:        userID,
			BillNumber:    "B1001",
			GrandTotal:    decimal.NewFromInt(100),
			PaymentStatus: status,
			CreatedAt:     created,
		}))
	}

	feb := func(day int) time.Time {
		return time.Date(2025, 2, day, 9, 0, 0, 0, time.UTC)
	}
	mk("u1", models.PaymentPaid, feb(3))
	mk("u1", models.PaymentPending, feb(4))
	mk("u1", models.PaymentPaid, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	mk("u2", models.PaymentPaid, feb(5))

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	bills, err := s.FindPaidInRange(ctx, "u1", start, end)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, feb(3), bills[0].CreatedAt)
}

func TestBillStoreLastBillNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBillStore()

	last, err := s.LastBillNumber(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "", last)

	require.NoError(t, s.Create(ctx, &models.Bill{
		UserID:     "u1",
		BillNumber: "B1001",
		CreatedAt:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.Create(ctx, &models.Bill{
		UserID:     "u1",
		BillNumber: "B1002",
		CreatedAt:  time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
	}))

	last, err = s.LastBillNumber(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "B1002", last)
}

func TestBillStoreListPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBillStore()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Create(ctx, &models.Bill{
			UserID:     "u1",
			BillNumber: "B100" + string(rune('0'+i)),
			CreatedAt:  time.Date(2025, 2, i, 0, 0, 0, 0, time.UTC),
		}))
	}

	page, err := s.ListByUser(ctx, "u1", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "B1005", page[0].BillNumber)
	assert.Equal(t, "B1004", page[1].BillNumber)

	page, err = s.ListByUser(ctx, "u1", 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "B1001", page[0].BillNumber)

	page, err = s.ListByUser(ctx, "u1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	total, err := s.CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestProductStoreRecordSaleFloorsStock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProductStore()

	p := &models.Product{UserID: "u1", Name: "LED Bulb 9W", Stock: 3}
	require.NoError(t, s.Create(ctx, p))

	require.NoError(t, s.RecordSale(ctx, "u1", p.ID, 5))

	got, err := s.GetByID(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 5, got.TotalSold)

	// Unknown product is a no-op, not an error.
	require.NoError(t, s.RecordSale(ctx, "u1", "missing", 1))
}

func TestUserStoreResetTokenLookupHonorsExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	valid := &models.User{Email: "a@example.com", ResetToken: "tok-valid", ResetTokenExpiry: &future}
	expired := &models.User{Email: "b@example.com", ResetToken: "tok-expired", ResetTokenExpiry: &past}
	require.NoError(t, s.Create(ctx, valid))
	require.NoError(t, s.Create(ctx, expired))

	got, err := s.GetByResetToken(ctx, "tok-valid", now)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = s.GetByResetToken(ctx, "tok-expired", now)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByResetToken(ctx, "", now)
	assert.ErrorIs(t, err, ErrNotFound)
}
