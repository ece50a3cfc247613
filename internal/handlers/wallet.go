package handlers

import (
	"strconv"

	"prizewallet/internal/services/wallet"
	"prizewallet/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type userInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"max=30"`
}

type registerWalletInput struct {
	Code    int64           `json:"code" validate:"required,gt=0,lte=999999999"`
	Balance decimal.Decimal `json:"balance" validate:"gte=0"`
	User    userInput       `json:"user"`
}

type valueInput struct {
	Value decimal.Decimal `json:"value" validate:"required,gt=0"`
}

type debitItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type debitInput struct {
	Items       []debitItemInput `json:"items" validate:"omitempty,dive"`
	Value       decimal.Decimal  `json:"value" validate:"gte=0"`
	Description string           `json:"description" validate:"max=200"`
}

type transferInput struct {
	ToCode int64           `json:"toCode" validate:"required,gt=0,lte=999999999"`
	Value  decimal.Decimal `json:"value" validate:"required,gt=0,lte=10000"`
}

type cancelInput struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

type WalletHandler struct {
	walletService wallet.Service
	log           logrus.FieldLogger
}

func NewWalletHandler(walletService wallet.Service, log logrus.FieldLogger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		log:           log.WithField("handler", "wallet"),
	}
}

func (h *WalletHandler) Register(c *fiber.Ctx) error {
	var input registerWalletInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	w, err := h.walletService.Create(c.UserContext(), wallet.CreateWalletRequest{
		Code:           input.Code,
		User:           wallet.UserInput{Name: input.User.Name, Phone: input.User.Phone},
		InitialBalance: input.Balance,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return utils.Created(c, fiber.Map{
		"message": "wallet created",
		"wallet":  w,
	})
}

func (h *WalletHandler) List(c *fiber.Ctx) error {
	p, err := utils.GetPagination(c, wallet.DefaultPage, wallet.DefaultLimit)
	if err != nil {
		return err
	}

	params := wallet.ListWalletsParams{
		Page:   p.Page,
		Limit:  p.Limit,
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Status: c.Query("status"),
	}
	if raw := c.Query("entryPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "entryPrice must be a number")
		}
		params.EntryPrice = price
	}

	page, err := h.walletService.ListWallets(c.UserContext(), params)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, page)
}

func (h *WalletHandler) Get(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}

	details, err := h.walletService.FindOne(c.UserContext(), code)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, details)
}

func (h *WalletHandler) Remove(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}

	if err := h.walletService.Remove(c.UserContext(), code); err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"message": "wallet removed"})
}

func (h *WalletHandler) Credit(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}
	var input valueInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	res, err := h.walletService.Credit(c.UserContext(), code, input.Value)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, res)
}

func (h *WalletHandler) Debit(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}
	var input debitInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	req := wallet.DebitRequest{Value: input.Value, Description: input.Description}
	for _, item := range input.Items {
		req.Items = append(req.Items, wallet.DebitItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	res, err := h.walletService.Debit(c.UserContext(), code, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, res)
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}
	var input transferInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	res, err := h.walletService.Transfer(c.UserContext(), wallet.TransferRequest{
		FromCode: code,
		ToCode:   input.ToCode,
		Value:    input.Value,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, res)
}

func (h *WalletHandler) CancelTransaction(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}
	var input cancelInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	res, err := h.walletService.CancelTransaction(c.UserContext(), code, input.TransactionID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, res)
}

func (h *WalletHandler) MarkAsWinner(c *fiber.Ctx) error {
	code, err := walletCode(c)
	if err != nil {
		return err
	}

	w, err := h.walletService.MarkAsWinner(c.UserContext(), code)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, w)
}

func walletCode(c *fiber.Ctx) (int64, error) {
	code, err := strconv.ParseInt(c.Params("code"), 10, 64)
	if err != nil || code <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "wallet code must be a positive integer")
	}
	return code, nil
}

// parseBody decodes and validates the request body. The returned error is
// answered by ErrorHandler.
func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.Validate(dest); err != nil {
		return &validationError{details: utils.FormatValidationError(err)}
	}
	return nil
}
