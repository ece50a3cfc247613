package handlers

import (
	"prizewallet/internal/services/reports"
	"prizewallet/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ReportsHandler struct {
	reportsService reports.Service
	log            logrus.FieldLogger
}

func NewReportsHandler(reportsService reports.Service, log logrus.FieldLogger) *ReportsHandler {
	return &ReportsHandler{
		reportsService: reportsService,
		log:            log.WithField("handler", "reports"),
	}
}

func (h *ReportsHandler) SalesToday(c *fiber.Ctx) error {
	sales, err := h.reportsService.SalesToday(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, sales)
}

func (h *ReportsHandler) SalesByProduct(c *fiber.Ctx) error {
	sales, err := h.reportsService.SalesByProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, sales)
}

func (h *ReportsHandler) SalesByPeriod(c *fiber.Ctx) error {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start == "" || end == "" {
		return fiber.NewError(fiber.StatusBadRequest, "startDate and endDate are required")
	}

	sales, err := h.reportsService.SalesByPeriod(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, sales)
}
