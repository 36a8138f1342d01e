package handlers

import (
	"errors"
	"strings"

	"agricredit/internal/core/services"
	"agricredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReceiptHandler handles warehouse receipt endpoints
type ReceiptHandler struct {
	receiptService *services.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// DepositRequest represents a commodity deposit body
type DepositRequest struct {
	CommodityName       string  `json:"commodity_name"`
	Variety             string  `json:"variety"`
	Quantity            float64 `json:"quantity"`
	UnitOfMeasure       string  `json:"unit_of_measure"`
	WarehouseLocation   string  `json:"warehouse_location"`
	WarehouseKeeperName string  `json:"warehouse_keeper_name"`
	QualityGrade        string  `json:"quality_grade"`
	Condition           string  `json:"condition"`
	Remarks             string  `json:"remarks"`
}

// Deposit records a deposit and issues a warehouse receipt
// @Summary Deposit a commodity
// @Description Record a commodity deposit and issue an ACTIVE receipt
// @Tags Receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DepositRequest true "Deposit details"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /warehouse/receipts [post]
func (h *ReceiptHandler) Deposit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.CommodityName) == "" {
		return response.BadRequest(c, "Commodity name is required")
	}

	input := &services.DepositInput{
		FarmerID:            userID,
		CommodityName:       strings.TrimSpace(req.CommodityName),
		Variety:             strings.TrimSpace(req.Variety),
		Quantity:            req.Quantity,
		UnitOfMeasure:       strings.TrimSpace(req.UnitOfMeasure),
		WarehouseLocation:   strings.TrimSpace(req.WarehouseLocation),
		WarehouseKeeperName: strings.TrimSpace(req.WarehouseKeeperName),
		QualityGrade:        strings.TrimSpace(req.QualityGrade),
		Condition:           strings.TrimSpace(req.Condition),
		Remarks:             strings.TrimSpace(req.Remarks),
	}

	receipt, err := h.receiptService.Deposit(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be greater than zero")
		case errors.Is(err, services.ErrFarmerNotFound):
			return response.NotFound(c, "Farmer not found")
		default:
			return response.InternalServerError(c, "Failed to record deposit")
		}
	}

	return response.Created(c, "Warehouse receipt issued", receipt)
}

// ListAll lists all warehouse receipts
// @Summary List all receipts
// @Description List every warehouse receipt in insertion order
// @Tags Receipts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /warehouse/receipts [get]
func (h *ReceiptHandler) ListAll(c *fiber.Ctx) error {
	receipts, err := h.receiptService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve receipts")
	}

	return response.Success(c, "Receipts retrieved successfully", receipts)
}

// ListByFarmer lists receipts belonging to a farmer
// @Summary List receipts by farmer
// @Tags Receipts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farmer ID"
// @Success 200 {object} response.Response
// @Router /warehouse/receipts/farmer/{id} [get]
func (h *ReceiptHandler) ListByFarmer(c *fiber.Ctx) error {
	farmerID, err := c.ParamsInt("id")
	if err != nil || farmerID < 1 {
		return response.BadRequest(c, "Invalid farmer ID")
	}

	receipts, err := h.receiptService.ListByFarmer(c.Context(), uint(farmerID))
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve receipts")
	}

	return response.Success(c, "Receipts retrieved successfully", receipts)
}
