package handlers

import (
	"time"

	"app/cache"
	"app/middleware"
	"app/models"
	"app/store"
	"app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BillHandler struct {
	Bills    store.BillStore
	Products store.ProductStore
	Cache    *cache.ReportCache
}

func NewBillHandler(bills store.BillStore, products store.ProductStore, reportCache *cache.ReportCache) *BillHandler {
	return &BillHandler{Bills: bills, Products: products, Cache: reportCache}
}

// recordItemSales deducts stock and bumps totalSold for every line item that
// references a catalog product. Items without a product ID (free-form lines)
// are left alone, as are items whose product has since been deleted.
func (h *BillHandler) recordItemSales(c *fiber.Ctx, userID string, items models.BillItems) {
	for _, it := range items {
		if it.ProductID == nil || *it.ProductID == "" {
			continue
		}
		qty := it.Qty
		if qty <= 0 {
			qty = 1
		}
		if err := h.Products.RecordSale(c.Context(), userID, *it.ProductID, qty); err != nil {
			logrus.Errorf("Error recording sale for product %s: %v", *it.ProductID, err)
		}
	}
}

func (h *BillHandler) invalidateReportCache(c *fiber.Ctx, userID string, at time.Time) {
	at = at.UTC()
	h.Cache.InvalidateMonth(c.Context(), userID, int(at.Month()), at.Year())
}

// Create issues a new bill with the next sequential bill number. Paid bills
// deduct stock immediately; pay-later bills only do so once marked paid.
// POST /api/bills
func (h *BillHandler) Create(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req models.CreateBillRequest
	if !parseBody(c, &req) {
		return nil
	}

	status := models.PaymentPaid
	if req.PaymentStatus == models.PaymentPending {
		status = models.PaymentPending
	}

	last, err := h.Bills.LastBillNumber(c.Context(), userID)
	if err != nil {
		logrus.Errorf("Error reading last bill number: %v", err)
		return storeError(c, err, "Bill")
	}

	items := req.Items
	if items == nil {
		items = models.BillItems{}
	}
	if status == models.PaymentPaid {
		h.recordItemSales(c, userID, items)
	}

	gst := decimal.Zero
	if req.GST != nil {
		gst = *req.GST
	}

	bill := &models.Bill{
		UserID:        userID,
		BillNumber:    utils.NextBillNumber(last),
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Items:         items,
		TotalAmount:   req.TotalAmount,
		GST:           gst,
		GrandTotal:    req.GrandTotal,
		PaymentStatus: status,
	}
	if err := h.Bills.Create(c.Context(), bill); err != nil {
		logrus.Errorf("Error creating bill: %v", err)
		return storeError(c, err, "Bill")
	}

	h.invalidateReportCache(c, userID, bill.CreatedAt)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": bill})
}

// List returns the user's bills, newest first, paginated. GET /api/bills
func (h *BillHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	bills, err := h.Bills.ListByUser(c.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		logrus.Errorf("Error listing bills: %v", err)
		return storeError(c, err, "Bills")
	}
	total, err := h.Bills.CountByUser(c.Context(), userID)
	if err != nil {
		logrus.Errorf("Error counting bills: %v", err)
		return storeError(c, err, "Bills")
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"items":      bills,
		"pagination": utils.CreatePagination(total, page, pageSize),
	}})
}

// GetByID returns one bill. GET /api/bills/:id
func (h *BillHandler) GetByID(c *fiber.Ctx) error {
	bill, err := h.Bills.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Bill")
	}
	return c.JSON(fiber.Map{"status": "success", "data": bill})
}

// DailySales summarizes today's bills (any payment status). GET /api/bills/daily
func (h *BillHandler) DailySales(c *fiber.Ctx) error {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	bills, err := h.Bills.FindSince(c.Context(), middleware.UserID(c), midnight)
	if err != nil {
		logrus.Errorf("Error fetching daily sales: %v", err)
		return storeError(c, err, "Bills")
	}

	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(b.GrandTotal)
	}
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"count": len(bills),
		"total": total,
		"bills": bills,
	}})
}

// Update edits a pay-later bill. Paid bills are immutable. Item totals are
// recomputed as price*qty on edit. PUT /api/bills/:id
func (h *BillHandler) Update(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	bill, err := h.Bills.GetByID(c.Context(), userID, c.Params("id"))
	if err != nil {
		return storeError(c, err, "Bill")
	}
	if bill.PaymentStatus != models.PaymentPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Only Pay Later bills can be edited"})
	}

	var req models.UpdateBillRequest
	if !parseBody(c, &req) {
		return nil
	}

	items := bill.Items
	if req.Items != nil {
		items = *req.Items
	}
	for i := range items {
		qty := items[i].Qty
		if qty <= 0 {
			qty = 1
		}
		total := items[i].Price.Mul(decimal.NewFromInt(int64(qty)))
		items[i].Total = &total
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(*it.Total)
	}

	if req.CustomerName != nil {
		bill.CustomerName = *req.CustomerName
	}
	if req.Phone != nil {
		bill.Phone = *req.Phone
	}
	if req.GST != nil {
		bill.GST = *req.GST
	}
	bill.Items = items
	if req.TotalAmount != nil {
		bill.TotalAmount = *req.TotalAmount
	} else {
		bill.TotalAmount = subtotal
	}
	if req.GrandTotal != nil {
		bill.GrandTotal = *req.GrandTotal
	} else {
		bill.GrandTotal = bill.TotalAmount.Add(bill.GST)
	}

	if err := h.Bills.Update(c.Context(), bill); err != nil {
		logrus.Errorf("Error updating bill %s: %v", bill.ID, err)
		return storeError(c, err, "Bill")
	}

	h.invalidateReportCache(c, userID, bill.CreatedAt)
	return c.JSON(fiber.Map{"status": "success", "data": bill})
}

// MarkPaid settles a pay-later bill, deducting stock at that moment.
// PATCH /api/bills/:id/paid
func (h *BillHandler) MarkPaid(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	bill, err := h.Bills.GetByID(c.Context(), userID, c.Params("id"))
	if err != nil {
		return storeError(c, err, "Bill")
	}
	if bill.PaymentStatus == models.PaymentPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Bill already paid"})
	}

	h.recordItemSales(c, userID, bill.Items)

	bill.PaymentStatus = models.PaymentPaid
	if err := h.Bills.Update(c.Context(), bill); err != nil {
		logrus.Errorf("Error marking bill %s paid: %v", bill.ID, err)
		return storeError(c, err, "Bill")
	}

	h.invalidateReportCache(c, userID, bill.CreatedAt)
	return c.JSON(fiber.Map{"status": "success", "data": bill})
}
