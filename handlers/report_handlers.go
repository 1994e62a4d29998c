package handlers

import (
	"encoding/json"
	"time"

	"app/cache"
	"app/config"
	"app/middleware"
	"app/models"
	"app/report"
	"app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	Bills   store.BillStore
	Reports store.ReportStore
	Cache   *cache.ReportCache
	Cfg     *config.Config
}

func NewReportHandler(bills store.BillStore, reports store.ReportStore, reportCache *cache.ReportCache, cfg *config.Config) *ReportHandler {
	return &ReportHandler{Bills: bills, Reports: reports, Cache: reportCache, Cfg: cfg}
}

// computeMonthly fetches the month's paid bills and runs the aggregation.
func (h *ReportHandler) computeMonthly(c *fiber.Ctx, userID string, month, year int) (models.ReportData, error) {
	start, end := report.MonthRange(month, year)
	bills, err := h.Bills.FindPaidInRange(c.Context(), userID, start, end)
	if err != nil {
		return models.ReportData{}, err
	}
	return report.ComputeMonthly(month, year, bills)
}

// LiveMonthly computes the report for the requested month on the fly,
// without persisting anything. Missing or invalid month/year fall back to
// the current month. GET /api/bills/monthly?month=MM&year=YYYY
func (h *ReportHandler) LiveMonthly(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	month, year := monthYearFromQuery(c)

	if payload, ok := h.Cache.Get(c.Context(), userID, month, year); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	data, err := h.computeMonthly(c, userID, month, year)
	if err != nil {
		logrus.Errorf("Error computing monthly report: %v", err)
		return storeError(c, err, "Report")
	}

	payload, err := json.Marshal(fiber.Map{"status": "success", "data": data})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to encode report"})
	}
	h.Cache.Set(c.Context(), userID, month, year, payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// Save computes the report for the given month and persists it as a new
// snapshot; it never overwrites an earlier snapshot for the same period.
// POST /api/bills/monthly/save
func (h *ReportHandler) Save(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req models.SaveReportRequest
	if !parseBody(c, &req) {
		return nil
	}

	data, err := h.computeMonthly(c, userID, req.Month, req.Year)
	if err != nil {
		logrus.Errorf("Error computing report for save: %v", err)
		return storeError(c, err, "Report")
	}

	saved := &models.Report{
		UserID:     userID,
		ReportData: data,
		Finalized:  req.Finalize,
	}
	if req.Finalize {
		now := time.Now().UTC()
		saved.FinalizedAt = &now
	}

	if err := h.Reports.Create(c.Context(), saved); err != nil {
		logrus.Errorf("Error saving report: %v", err)
		return storeError(c, err, "Report")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": saved})
}

// ListSaved lists the user's saved reports, newest first.
// GET /api/bills/monthly/saved
func (h *ReportHandler) ListSaved(c *fiber.Ctx) error {
	reports, err := h.Reports.ListByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		logrus.Errorf("Error listing reports: %v", err)
		return storeError(c, err, "Reports")
	}
	return c.JSON(fiber.Map{"status": "success", "data": reports})
}

// GetSaved returns one saved report. GET /api/bills/monthly/saved/:id
func (h *ReportHandler) GetSaved(c *fiber.Ctx) error {
	saved, err := h.Reports.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Report")
	}
	return c.JSON(fiber.Map{"status": "success", "data": saved})
}

// Finalize flips a saved report to its finalized state, exactly once.
// POST /api/bills/monthly/saved/:id/finalize
func (h *ReportHandler) Finalize(c *fiber.Ctx) error {
	saved, err := h.Reports.Finalize(c.Context(), middleware.UserID(c), c.Params("id"), time.Now().UTC())
	if err != nil {
		return storeError(c, err, "Report")
	}
	return c.JSON(fiber.Map{"status": "success", "data": saved})
}
