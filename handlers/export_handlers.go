package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"app/middleware"
	"app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// buildReportTable flattens a report into CSV rows: totals, the day-by-day
// breakdown, the product rollup, and the recent-bills excerpt. Monetary cells
// are rendered with two decimal places.
func buildReportTable(data models.ReportData) [][]string {
	rows := [][]string{
		{"Monthly Sales Report"},
		{"Month", strconv.Itoa(data.Month)},
		{"Year", strconv.Itoa(data.Year)},
		{"Total Revenue", data.TotalRevenue.StringFixed(2)},
		{"Total Bills", strconv.Itoa(data.TotalBills)},
		{},
		{"Day", "Revenue", "Bills"},
	}
	for _, d := range data.Daily {
		rows = append(rows, []string{strconv.Itoa(d.Day), d.TotalRevenue.StringFixed(2), strconv.Itoa(d.TotalBills)})
	}

	rows = append(rows, []string{}, []string{"Product", "Qty Sold", "Revenue"})
	for _, p := range data.Products {
		rows = append(rows, []string{p.Name, strconv.Itoa(p.QtySold), p.Revenue.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"Bill No", "Customer", "Date", "Grand Total", "Status"})
	for _, b := range data.RecentBills {
		rows = append(rows, []string{
			b.BillNumber,
			b.CustomerName,
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.GrandTotal.StringFixed(2),
			b.PaymentStatus,
		})
	}
	return rows
}

func sendCSV(c *fiber.Ctx, data models.ReportData) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(buildReportTable(data)); err != nil {
		logrus.Errorf("Error writing report CSV: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to build CSV"})
	}

	filename := fmt.Sprintf("report-%04d-%02d.csv", data.Year, data.Month)
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

// ExportLive exports the live report for a month as CSV.
// GET /api/bills/monthly/export?month=MM&year=YYYY
func (h *ReportHandler) ExportLive(c *fiber.Ctx) error {
	month, year := monthYearFromQuery(c)
	data, err := h.computeMonthly(c, middleware.UserID(c), month, year)
	if err != nil {
		logrus.Errorf("Error computing report for export: %v", err)
		return storeError(c, err, "Report")
	}
	return sendCSV(c, data)
}

// ExportSaved exports a saved snapshot as CSV.
// GET /api/bills/monthly/saved/:id/export
func (h *ReportHandler) ExportSaved(c *fiber.Ctx) error {
	saved, err := h.Reports.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Report")
	}
	return sendCSV(c, saved.ReportData)
}
