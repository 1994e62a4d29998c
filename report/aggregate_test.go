package report

import (
	"testing"
	"time"

	"app/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strPtr(s string) *string { return &s }

func paidBill(id string, createdAt time.Time, grandTotal int64, items ...models.BillItem) models.Bill {
	return models.Bill{
		ID:            id,
		UserID:        "u1",
		BillNumber:    "B" + id,
		CustomerName:  "Customer " + id,
		Items:         items,
		GrandTotal:    dec(grandTotal),
		PaymentStatus: models.PaymentPaid,
		CreatedAt:     createdAt,
	}
}

func feb(day int) time.Time {
	return time.Date(2025, time.February, day, 10, 30, 0, 0, time.UTC)
}

func TestComputeMonthlyRejectsInvalidInput(t *testing.T) {
	_, err := ComputeMonthly(0, 2025, nil)
	assert.Error(t, err)
	_, err = ComputeMonthly(13, 2025, nil)
	assert.Error(t, err)
	_, err = ComputeMonthly(6, 1970, nil)
	assert.Error(t, err)
}

func TestComputeMonthlyEmptyMonth(t *testing.T) {
	data, err := ComputeMonthly(2, 2025, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, data.Month)
	assert.Equal(t, 2025, data.Year)
	assert.True(t, data.TotalRevenue.IsZero())
	assert.Equal(t, 0, data.TotalBills)
	assert.Empty(t, data.Products)
	assert.Empty(t, data.RecentBills)

	require.Len(t, data.Daily, 28)
	for i, bucket := range data.Daily {
		assert.Equal(t, i+1, bucket.Day)
		assert.True(t, bucket.TotalRevenue.IsZero())
		assert.Equal(t, 0, bucket.TotalBills)
	}
}

func TestComputeMonthlySingleBill(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(3), 600, models.BillItem{Name: "LED Bulb 9W", Qty: 5, Price: dec(120), Total: decPtr(600)}),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)

	assert.True(t, data.TotalRevenue.Equal(dec(600)))
	assert.Equal(t, 1, data.TotalBills)

	require.Len(t, data.Daily, 28)
	assert.True(t, data.Daily[2].TotalRevenue.Equal(dec(600)))
	assert.Equal(t, 1, data.Daily[2].TotalBills)
	for i, bucket := range data.Daily {
		if i == 2 {
			continue
		}
		assert.True(t, bucket.TotalRevenue.IsZero(), "day %d should be empty", i+1)
		assert.Equal(t, 0, bucket.TotalBills)
	}

	require.Len(t, data.Products, 1)
	assert.Equal(t, "LED Bulb 9W", data.Products[0].Name)
	assert.Equal(t, 5, data.Products[0].QtySold)
	assert.True(t, data.Products[0].Revenue.Equal(dec(600)))

	require.Len(t, data.RecentBills, 1)
	assert.Equal(t, "B1", data.RecentBills[0].BillNumber)
}

func TestComputeMonthlyExcludesPendingAndOutOfRange(t *testing.T) {
	pending := paidBill("2", feb(3), 250)
	pending.PaymentStatus = models.PaymentPending

	bills := []models.Bill{
		paidBill("1", feb(3), 600),
		pending,
		paidBill("3", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 999),
		paidBill("4", time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC), 999),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)

	assert.True(t, data.TotalRevenue.Equal(dec(600)))
	assert.Equal(t, 1, data.TotalBills)
	assert.Equal(t, 1, data.Daily[2].TotalBills)
	require.Len(t, data.RecentBills, 1)
	assert.Equal(t, "B1", data.RecentBills[0].BillNumber)
}

func TestGroupingByProductIDAndName(t *testing.T) {
	bills := []models.Bill{
		// Same name, no product ID: must merge.
		paidBill("1", feb(1), 100, models.BillItem{Name: "Loose Wire", Qty: 2, Price: dec(50), Total: decPtr(100)}),
		paidBill("2", feb(2), 150, models.BillItem{Name: "Loose Wire", Qty: 3, Price: dec(50), Total: decPtr(150)}),
		// Identical names but distinct product IDs: must stay separate.
		paidBill("3", feb(3), 120, models.BillItem{ProductID: strPtr("p1"), Name: "LED Bulb 9W", Qty: 1, Price: dec(120), Total: decPtr(120)}),
		paidBill("4", feb(4), 120, models.BillItem{ProductID: strPtr("p2"), Name: "LED Bulb 9W", Qty: 1, Price: dec(120), Total: decPtr(120)}),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	require.Len(t, data.Products, 3)

	byKey := map[string]models.ProductSummary{}
	for _, p := range data.Products {
		key := p.Name
		if p.ProductID != nil {
			key = *p.ProductID
		}
		byKey[key] = p
	}

	loose := byKey["Loose Wire"]
	assert.Equal(t, 5, loose.QtySold)
	assert.True(t, loose.Revenue.Equal(dec(250)))

	assert.Equal(t, 1, byKey["p1"].QtySold)
	assert.Equal(t, 1, byKey["p2"].QtySold)
}

func TestGroupingKeyNeverMixesIDsAndNames(t *testing.T) {
	// A product named exactly like another item's ID must not merge with it.
	bills := []models.Bill{
		paidBill("1", feb(1), 100, models.BillItem{ProductID: strPtr("fuse-10a"), Name: "Fuse 10A", Qty: 1, Price: dec(100), Total: decPtr(100)}),
		paidBill("2", feb(2), 40, models.BillItem{Name: "fuse-10a", Qty: 1, Price: dec(40), Total: decPtr(40)}),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	assert.Len(t, data.Products, 2)
}

func TestItemRevenueFallbackIsPerItem(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(5), 700,
			// Stored total diverges from price*qty and must be trusted.
			models.BillItem{Name: "Ceiling Fan", Qty: 1, Price: dec(1800), Total: decPtr(500)},
			// No stored total: falls back to price*qty.
			models.BillItem{Name: "Switch Board", Qty: 2, Price: dec(250)},
		),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	require.Len(t, data.Products, 2)

	assert.True(t, data.Products[0].Revenue.Equal(dec(500)), "got %s", data.Products[0].Revenue)
	assert.Equal(t, "Ceiling Fan", data.Products[0].Name)
	assert.True(t, data.Products[1].Revenue.Equal(dec(500)))
	assert.Equal(t, "Switch Board", data.Products[1].Name)
}

func TestUnnamedItemsGroupAsUnknown(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(1), 10, models.BillItem{Qty: 1, Price: dec(10), Total: decPtr(10)}),
		paidBill("2", feb(2), 20, models.BillItem{Qty: 2, Price: dec(10), Total: decPtr(20)}),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Unknown", data.Products[0].Name)
	assert.Equal(t, 3, data.Products[0].QtySold)
}

func TestDailyBucketsSumToTotals(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(1), 100),
		paidBill("2", feb(1), 250),
		paidBill("3", feb(14), 75),
		paidBill("4", feb(28), 1800),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)

	revenueSum := decimal.Zero
	billSum := 0
	for _, bucket := range data.Daily {
		revenueSum = revenueSum.Add(bucket.TotalRevenue)
		billSum += bucket.TotalBills
	}
	assert.True(t, revenueSum.Equal(data.TotalRevenue))
	assert.Equal(t, data.TotalBills, billSum)
	assert.Equal(t, 2, data.Daily[0].TotalBills)
}

func TestGroupingIsOrderIndependent(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(1), 100, models.BillItem{Name: "A", Qty: 1, Price: dec(100), Total: decPtr(100)}),
		paidBill("2", feb(2), 300, models.BillItem{Name: "B", Qty: 1, Price: dec(300), Total: decPtr(300)}),
		paidBill("3", feb(3), 200, models.BillItem{Name: "A", Qty: 2, Price: dec(100), Total: decPtr(200)}),
	}
	reversed := []models.Bill{bills[2], bills[1], bills[0]}

	forward, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	backward, err := ComputeMonthly(2, 2025, reversed)
	require.NoError(t, err)

	require.Len(t, forward.Products, 2)
	require.Len(t, backward.Products, 2)
	for i := range forward.Products {
		assert.Equal(t, forward.Products[i].Name, backward.Products[i].Name)
		assert.Equal(t, forward.Products[i].QtySold, backward.Products[i].QtySold)
		assert.True(t, forward.Products[i].Revenue.Equal(backward.Products[i].Revenue))
	}
}

func TestProductsSortedByRevenueDescending(t *testing.T) {
	bills := []models.Bill{
		paidBill("1", feb(1), 100, models.BillItem{Name: "Low", Qty: 1, Price: dec(100), Total: decPtr(100)}),
		paidBill("2", feb(2), 900, models.BillItem{Name: "High", Qty: 1, Price: dec(900), Total: decPtr(900)}),
		// Tied with "Low"; encounter order breaks the tie.
		paidBill("3", feb(3), 100, models.BillItem{Name: "AlsoLow", Qty: 1, Price: dec(100), Total: decPtr(100)}),
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)
	require.Len(t, data.Products, 3)
	assert.Equal(t, "High", data.Products[0].Name)
	assert.Equal(t, "Low", data.Products[1].Name)
	assert.Equal(t, "AlsoLow", data.Products[2].Name)
}

func TestRecentBillsTruncatedToNewestEight(t *testing.T) {
	var bills []models.Bill
	for day := 1; day <= 10; day++ {
		bills = append(bills, paidBill(string(rune('a'+day-1)), feb(day), int64(day)))
	}

	data, err := ComputeMonthly(2, 2025, bills)
	require.NoError(t, err)

	require.Len(t, data.RecentBills, MaxRecentBills)
	// Newest first: days 10 down to 3.
	for i, summary := range data.RecentBills {
		assert.Equal(t, feb(10-i), summary.CreatedAt)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, DaysInMonth(2, 2025))
	assert.Equal(t, 29, DaysInMonth(2, 2024))
	assert.Equal(t, 31, DaysInMonth(1, 2025))
	assert.Equal(t, 30, DaysInMonth(4, 2025))
}

func TestMonthRangeIsHalfOpen(t *testing.T) {
	start, end := MonthRange(2, 2025)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), end)
}
