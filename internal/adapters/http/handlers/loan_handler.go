package handlers

import (
	"errors"
	"strconv"
	"strings"

	"agricredit/internal/core/services"
	"agricredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// ApplyLoanRequest represents a loan application body
type ApplyLoanRequest struct {
	Amount           float64 `json:"amount"`
	Purpose          string  `json:"purpose"`
	InterestRate     float64 `json:"interest_rate"`
	DurationInMonths int     `json:"duration_in_months"`
}

// Apply files a new loan application for the authenticated farmer
// @Summary Apply for a loan
// @Description File a loan application in PENDING status
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ApplyLoanRequest true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loans/apply [post]
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ApplyLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.ApplyInput{
		FarmerID:         userID,
		Amount:           req.Amount,
		Purpose:          strings.TrimSpace(req.Purpose),
		InterestRate:     req.InterestRate,
		DurationInMonths: req.DurationInMonths,
	}

	loan, err := h.loanService.Apply(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, services.ErrInvalidDuration):
			return response.BadRequest(c, "Duration must be at least one month")
		case errors.Is(err, services.ErrInvalidInterest):
			return response.BadRequest(c, "Interest rate must not be negative")
		case errors.Is(err, services.ErrFarmerNotFound):
			return response.NotFound(c, "Farmer not found")
		default:
			return response.InternalServerError(c, "Failed to apply for loan")
		}
	}

	return response.Created(c, "Loan application submitted", loan)
}

// Approve approves a pending loan
// @Summary Approve a loan
// @Description Approve a PENDING loan and assign the lender
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param lenderId query int false "Lender ID (defaults to the caller)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/approve [put]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	// Lender defaults to the caller; admins can approve on a lender's behalf
	lenderID, _ := c.Locals("userID").(uint)
	if q := c.Query("lenderId"); q != "" {
		parsed, err := strconv.ParseUint(q, 10, 32)
		if err != nil || parsed == 0 {
			return response.BadRequest(c, "Invalid lender ID")
		}
		lenderID = uint(parsed)
	}
	if lenderID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	loan, err := h.loanService.Approve(c.Context(), uint(loanID), lenderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanNotPending):
			return response.Conflict(c, "Loan is not in pending status")
		case errors.Is(err, services.ErrLenderNotFound):
			return response.NotFound(c, "Lender not found")
		default:
			return response.InternalServerError(c, "Failed to approve loan")
		}
	}

	return response.Success(c, "Loan approved", loan)
}

// Reject rejects a pending loan
// @Summary Reject a loan
// @Description Reject a PENDING loan with optional remarks
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param remarks query string false "Rejection remarks"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/reject [put]
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	remarks := strings.TrimSpace(c.Query("remarks"))

	loan, err := h.loanService.Reject(c.Context(), uint(loanID), remarks)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, services.ErrLoanNotPending):
			return response.Conflict(c, "Loan is not in pending status")
		default:
			return response.InternalServerError(c, "Failed to reject loan")
		}
	}

	return response.Success(c, "Loan rejected", loan)
}

// ListAll lists all loans
// @Summary List all loans
// @Description List every loan in insertion order
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListAll(c *fiber.Ctx) error {
	loans, err := h.loanService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// ListByFarmer lists loans belonging to a farmer
// @Summary List loans by farmer
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Farmer ID"
// @Success 200 {object} response.Response
// @Router /loans/farmer/{id} [get]
func (h *LoanHandler) ListByFarmer(c *fiber.Ctx) error {
	farmerID, err := c.ParamsInt("id")
	if err != nil || farmerID < 1 {
		return response.BadRequest(c, "Invalid farmer ID")
	}

	loans, err := h.loanService.ListByFarmer(c.Context(), uint(farmerID))
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// ListByLender lists loans funded by a lender
// @Summary List loans by lender
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lender ID"
// @Success 200 {object} response.Response
// @Router /loans/lender/{id} [get]
func (h *LoanHandler) ListByLender(c *fiber.Ctx) error {
	lenderID, err := c.ParamsInt("id")
	if err != nil || lenderID < 1 {
		return response.BadRequest(c, "Invalid lender ID")
	}

	loans, err := h.loanService.ListByLender(c.Context(), uint(lenderID))
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}
