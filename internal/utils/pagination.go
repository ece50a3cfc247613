package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// GetPagination extracts the page and limit from the query parameters.
// Missing values take the defaults; values that are not numbers are
// rejected so callers can answer 400.
func GetPagination(c *fiber.Ctx, defaultPage, defaultLimit int) (Pagination, error) {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return p, fiber.NewError(fiber.StatusBadRequest, "page must be a number")
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return p, fiber.NewError(fiber.StatusBadRequest, "limit must be a number")
		}
		p.Limit = limit
	}
	return p, nil
}
