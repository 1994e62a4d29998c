// Package report computes monthly sales reports from a user's bills. The
// computation is pure: no I/O, deterministic for identical input.
package report

import (
	"fmt"
	"sort"
	"time"

	"app/models"

	"github.com/shopspring/decimal"
)

// MaxRecentBills is the length cap of the recent-bills excerpt.
const MaxRecentBills = 8

// groupKey identifies a product rollup. Items with a product ID group by ID;
// items without one group by name. Keeping the two variants distinct means an
// ID-like product name can never collide with a real product ID.
type groupKey struct {
	byID bool
	val  string
}

// MonthRange returns the half-open window [start, end) covering the given
// calendar month, in UTC.
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(month, year int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ComputeMonthly aggregates the given bills into a monthly report. Bills are
// expected to belong to a single user and be roughly pre-filtered by the
// caller, but the function re-filters by payment status and date window
// rather than trusting the caller's filtering.
//
// Zero qualifying bills is a valid input: totals are zero, the daily buckets
// are fully populated with zeroes, and the product/recent-bill lists are
// empty. Only a structurally invalid month or year is an error.
func ComputeMonthly(month, year int, bills []models.Bill) (models.ReportData, error) {
	if month < 1 || month > 12 {
		return models.ReportData{}, fmt.Errorf("invalid month %d", month)
	}
	if year <= 1970 {
		return models.ReportData{}, fmt.Errorf("invalid year %d", year)
	}

	start, end := MonthRange(month, year)

	included := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if b.PaymentStatus != models.PaymentPaid {
			continue
		}
		created := b.CreatedAt.UTC()
		if created.Before(start) || !created.Before(end) {
			continue
		}
		included = append(included, b)
	}

	totalRevenue := decimal.Zero
	for _, b := range included {
		totalRevenue = totalRevenue.Add(b.GrandTotal)
	}

	data := models.ReportData{
		Month:        month,
		Year:         year,
		TotalRevenue: totalRevenue,
		TotalBills:   len(included),
		Products:     groupProducts(included),
		Daily:        buildDaily(month, year, included),
		RecentBills:  recentBills(included),
	}
	return data, nil
}

// groupProducts flattens the line items of all included bills and rolls them
// up by product. The revenue contribution of an item is its stored total when
// present, otherwise price*qty — the fallback applies per item, since a
// stored total may legitimately diverge from price*qty.
func groupProducts(bills []models.Bill) models.ProductSummaries {
	grouped := make(map[groupKey]*models.ProductSummary)
	var order []groupKey

	for _, b := range bills {
		for _, it := range b.Items {
			name := it.Name
			if name == "" {
				name = "Unknown"
			}

			revenue := decimal.Zero
			if it.Total != nil {
				revenue = *it.Total
			} else {
				revenue = it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
			}

			key := groupKey{val: name}
			if it.ProductID != nil && *it.ProductID != "" {
				key = groupKey{byID: true, val: *it.ProductID}
			}

			sum, ok := grouped[key]
			if !ok {
				sum = &models.ProductSummary{Name: name}
				if key.byID {
					id := *it.ProductID
					sum.ProductID = &id
				}
				grouped[key] = sum
				order = append(order, key)
			}
			sum.QtySold += it.Qty
			sum.Revenue = sum.Revenue.Add(revenue)
		}
	}

	products := make(models.ProductSummaries, 0, len(order))
	for _, key := range order {
		products = append(products, *grouped[key])
	}

	// Descending by revenue; stable so ties keep encounter order.
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Revenue.GreaterThan(products[j].Revenue)
	})
	return products
}

// buildDaily bucketizes bill totals by day of month. Every day gets a bucket,
// zero-filled, so the slice length always equals the days in the month.
func buildDaily(month, year int, bills []models.Bill) models.DailyBuckets {
	days := DaysInMonth(month, year)
	daily := make(models.DailyBuckets, days)
	for i := range daily {
		daily[i] = models.DailyBucket{Day: i + 1, TotalRevenue: decimal.Zero}
	}
	for _, b := range bills {
		d := b.CreatedAt.UTC().Day()
		daily[d-1].TotalRevenue = daily[d-1].TotalRevenue.Add(b.GrandTotal)
		daily[d-1].TotalBills++
	}
	return daily
}

// recentBills projects the newest bills, capped at MaxRecentBills.
func recentBills(bills []models.Bill) models.BillSummaries {
	sorted := make([]models.Bill, len(bills))
	copy(sorted, bills)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > MaxRecentBills {
		sorted = sorted[:MaxRecentBills]
	}

	recent := make(models.BillSummaries, 0, len(sorted))
	for _, b := range sorted {
		recent = append(recent, models.BillSummary{
			BillID:        b.ID,
			BillNumber:    b.BillNumber,
			CustomerName:  b.CustomerName,
			CreatedAt:     b.CreatedAt,
			GrandTotal:    b.GrandTotal,
			PaymentStatus: b.PaymentStatus,
		})
	}
	return recent
}
