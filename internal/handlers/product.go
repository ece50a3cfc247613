package handlers

import (
	"prizewallet/internal/services/product"
	"prizewallet/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type createProductInput struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Category     string          `json:"category" validate:"required,max=50"`
	CurrentPrice decimal.Decimal `json:"currentPrice" validate:"required,gt=0"`
}

type updateProductInput struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Category     *string          `json:"category" validate:"omitempty,min=1,max=50"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
}

type ProductHandler struct {
	productService product.Service
	log            logrus.FieldLogger
}

func NewProductHandler(productService product.Service, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		log:            log.WithField("handler", "product"),
	}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var input createProductInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	p, err := h.productService.Create(c.UserContext(), product.CreateRequest{
		Name:         input.Name,
		Category:     input.Category,
		CurrentPrice: input.CurrentPrice,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, p)
}

// List returns every product, or only the active ones with ?active=true.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.productService.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, products)
}

func (h *ProductHandler) ListActive(c *fiber.Ctx) error {
	products, err := h.productService.List(c.UserContext(), true)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.productService.FindOne(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var input updateProductInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	p, err := h.productService.Update(c.UserContext(), c.Params("id"), product.UpdateRequest{
		Name:         input.Name,
		Category:     input.Category,
		CurrentPrice: input.CurrentPrice,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, p)
}

func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.productService.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"message": "product deactivated"})
}

func (h *ProductHandler) Activate(c *fiber.Ctx) error {
	if err := h.productService.Activate(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"message": "product activated"})
}
