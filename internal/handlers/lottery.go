package handlers

import (
	"prizewallet/internal/services/lottery"
	"prizewallet/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type drawInput struct {
	EntryPrice decimal.Decimal `json:"entryPrice" validate:"required,gt=0"`
}

type LotteryHandler struct {
	lotteryService    lottery.Service
	defaultEntryPrice decimal.Decimal
	log               logrus.FieldLogger
}

func NewLotteryHandler(lotteryService lottery.Service, defaultEntryPrice decimal.Decimal, log logrus.FieldLogger) *LotteryHandler {
	return &LotteryHandler{
		lotteryService:    lotteryService,
		defaultEntryPrice: defaultEntryPrice,
		log:               log.WithField("handler", "lottery"),
	}
}

func (h *LotteryHandler) Draw(c *fiber.Ctx) error {
	var input drawInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	result, err := h.lotteryService.Draw(c.UserContext(), input.EntryPrice)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, result)
}

// Entries lists the current participants. entryPrice falls back to the
// configured default.
func (h *LotteryHandler) Entries(c *fiber.Ctx) error {
	price := h.defaultEntryPrice
	if raw := c.Query("entryPrice"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "entryPrice must be a number")
		}
		price = parsed
	}

	report, err := h.lotteryService.Entries(c.UserContext(), price)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, report)
}
