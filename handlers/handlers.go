// Package handlers contains the fiber HTTP handlers. Each handler group is a
// struct over the stores it needs; nothing reaches for package-level state.
package handlers

import (
	"errors"
	"strconv"
	"time"

	"app/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body. A false return means
// the 400 response has already been written.
func parseBody(c *fiber.Ctx, dest interface{}) bool {
	if err := c.BodyParser(dest); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
		return false
	}
	if err := validate.Struct(dest); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request: " + err.Error()})
		return false
	}
	return true
}

// storeError maps store failures onto the HTTP surface: missing or foreign
// records read as 404, an illegal finalize as 400, and anything else as an
// unavailable persistence layer.
func storeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": message + " not found"})
	case errors.Is(err, store.ErrAlreadyFinalized):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Report already finalized"})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Storage unavailable"})
	}
}

// monthYearFromQuery reads month/year query parameters, falling back to the
// current month and year when they are absent or out of range. The fallback
// is deliberate: the live report endpoint always answers for some month.
func monthYearFromQuery(c *fiber.Ctx) (int, int) {
	now := time.Now().UTC()

	m, errM := strconv.Atoi(c.Query("month"))
	y, errY := strconv.Atoi(c.Query("year"))
	if errM != nil || m < 1 || m > 12 {
		m = int(now.Month())
	}
	if errY != nil || y <= 1970 {
		y = now.Year()
	}
	return m, y
}
