package handlers

import (
	"app/middleware"
	"app/models"
	"app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	Products store.ProductStore
}

func NewProductHandler(products store.ProductStore) *ProductHandler {
	return &ProductHandler{Products: products}
}

// List returns the user's catalog, newest first. GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Products.ListByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		logrus.Errorf("Error listing products: %v", err)
		return storeError(c, err, "Products")
	}
	return c.JSON(fiber.Map{"status": "success", "data": products})
}

// Create adds a product to the catalog. POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if !parseBody(c, &req) {
		return nil
	}

	category := req.Category
	if category == "" {
		category = "General"
	}

	product := &models.Product{
		UserID:   middleware.UserID(c),
		Name:     req.Name,
		Brand:    req.Brand,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: category,
		Image:    req.Image,
	}
	if err := h.Products.Create(c.Context(), product); err != nil {
		logrus.Errorf("Error creating product: %v", err)
		return storeError(c, err, "Product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": product})
}

// Update partially updates a product. PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateProductRequest
	if !parseBody(c, &req) {
		return nil
	}

	product, err := h.Products.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Product")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := h.Products.Update(c.Context(), product); err != nil {
		logrus.Errorf("Error updating product %s: %v", product.ID, err)
		return storeError(c, err, "Product")
	}
	return c.JSON(fiber.Map{"status": "success", "data": product})
}

// Delete removes a product. DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.Products.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return storeError(c, err, "Product")
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Product deleted"})
}

// UpdateStock sets the absolute stock level. PATCH /api/products/:id/stock
func (h *ProductHandler) UpdateStock(c *fiber.Ctx) error {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := c.BodyParser(&req); err != nil || req.Stock == nil || *req.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "A non-negative stock value is required"})
	}

	product, err := h.Products.GetByID(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Product")
	}

	product.Stock = *req.Stock
	if err := h.Products.Update(c.Context(), product); err != nil {
		logrus.Errorf("Error updating stock for %s: %v", product.ID, err)
		return storeError(c, err, "Product")
	}
	return c.JSON(fiber.Map{"status": "success", "data": product})
}

// sampleProducts is the demo catalog restored by the reset endpoint.
func sampleProducts(userID string) []models.Product {
	return []models.Product{
		{UserID: userID, Name: "LED Bulb 9W", Brand: "Philips", Price: decimal.NewFromInt(120), Stock: 50, Category: "Lighting"},
		{UserID: userID, Name: "Ceiling Fan", Brand: "Havells", Price: decimal.NewFromInt(1800), Stock: 20, Category: "Fans"},
		{UserID: userID, Name: "Switch Board", Brand: "Anchor", Price: decimal.NewFromInt(250), Stock: 35, Category: "Switches"},
		{UserID: userID, Name: "Wire 1.5mm", Brand: "Polycab", Price: decimal.NewFromInt(45), Stock: 4, Category: "Wires"},
	}
}

type ResetHandler struct {
	Products store.ProductStore
	Bills    store.BillStore
}

func NewResetHandler(products store.ProductStore, bills store.BillStore) *ResetHandler {
	return &ResetHandler{Products: products, Bills: bills}
}

// ResetData wipes the user's products and bills and restores the sample
// catalog. POST /api/reset
func (h *ResetHandler) ResetData(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	if err := h.Products.DeleteByUser(c.Context(), userID); err != nil {
		logrus.Errorf("Error clearing products: %v", err)
		return storeError(c, err, "Products")
	}
	if err := h.Bills.DeleteByUser(c.Context(), userID); err != nil {
		logrus.Errorf("Error clearing bills: %v", err)
		return storeError(c, err, "Bills")
	}
	for _, p := range sampleProducts(userID) {
		p := p
		if err := h.Products.Create(c.Context(), &p); err != nil {
			logrus.Errorf("Error seeding product %q: %v", p.Name, err)
			return storeError(c, err, "Product")
		}
	}
	return c.JSON(fiber.Map{"status": "success", "message": "All data reset"})
}
