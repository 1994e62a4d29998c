package routes

import (
	"app/handlers"
	"app/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the handler groups wired in main.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Bills    *handlers.BillHandler
	Reports  *handlers.ReportHandler
	Reset    *handlers.ResetHandler
}

// Setup defines all the routes for the application.
func Setup(app *fiber.App, jwtSecret string, h Handlers) {
	api := app.Group("/api")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/google", h.Auth.Google)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	protect := middleware.Protect([]byte(jwtSecret))

	// --- Products ---
	products := api.Group("/products", protect)
	products.Get("/", h.Products.List)
	products.Post("/", h.Products.Create)
	products.Put("/:id", h.Products.Update)
	products.Delete("/:id", h.Products.Delete)
	products.Patch("/:id/stock", h.Products.UpdateStock)

	// --- Bills & Reports ---
	bills := api.Group("/bills", protect)
	bills.Get("/", h.Bills.List)
	bills.Get("/daily", h.Bills.DailySales)

	// Fixed paths before the :id routes.
	bills.Get("/monthly", h.Reports.LiveMonthly)
	bills.Get("/monthly/export", h.Reports.ExportLive)
	bills.Get("/monthly/insights", h.Reports.MonthlyInsights)
	bills.Post("/monthly/save", h.Reports.Save)
	bills.Get("/monthly/saved", h.Reports.ListSaved)
	bills.Get("/monthly/saved/:id", h.Reports.GetSaved)
	bills.Get("/monthly/saved/:id/export", h.Reports.ExportSaved)
	bills.Post("/monthly/saved/:id/finalize", h.Reports.Finalize)

	bills.Get("/:id", h.Bills.GetByID)
	bills.Post("/", h.Bills.Create)
	bills.Put("/:id", h.Bills.Update)
	bills.Patch("/:id/paid", h.Bills.MarkPaid)

	// --- Demo data ---
	api.Post("/reset", protect, h.Reset.ResetData)
}
