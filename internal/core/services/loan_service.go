package services

import (
	"context"
	"errors"
	"log"
	"time"

	"agricredit/internal/adapters/persistence/models"
	"agricredit/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Loan service errors
var (
	ErrLoanNotFound    = errors.New("loan not found")
	ErrLoanNotPending  = errors.New("loan is not in pending status")
	ErrFarmerNotFound  = errors.New("farmer not found")
	ErrLenderNotFound  = errors.New("lender not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidDuration = errors.New("duration must be at least one month")
	ErrInvalidInterest = errors.New("interest rate must not be negative")
)

// LoanService owns the loan state machine: PENDING → APPROVED | REJECTED.
// Later statuses (ACTIVE, DISBURSED, CLOSED) are set by external processes
// and are display-only here.
type LoanService struct {
	loanRepo repositories.LoanRepository
	userRepo repositories.UserRepository
}

// NewLoanService creates a new loan service
func NewLoanService(loanRepo repositories.LoanRepository, userRepo repositories.UserRepository) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		userRepo: userRepo,
	}
}

// ApplyInput represents loan application input
type ApplyInput struct {
	FarmerID         uint    `json:"farmer_id"`
	Amount           float64 `json:"amount"`
	Purpose          string  `json:"purpose"`
	InterestRate     float64 `json:"interest_rate"`
	DurationInMonths int     `json:"duration_in_months"`
}

// Apply files a new loan application in PENDING status. Multiple open
// applications per farmer are allowed.
func (s *LoanService) Apply(ctx context.Context, input *ApplyInput) (*models.LoanResponse, error) {
	// 1. Validate input ranges
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if input.DurationInMonths < 1 {
		return nil, ErrInvalidDuration
	}
	if input.InterestRate < 0 {
		return nil, ErrInvalidInterest
	}

	// 2. Farmer must exist
	farmer, err := s.userRepo.GetByID(ctx, input.FarmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}

	// 3. Create the application
	loan := &models.Loan{
		FarmerID:         input.FarmerID,
		Amount:           input.Amount,
		Purpose:          input.Purpose,
		InterestRate:     input.InterestRate,
		DurationInMonths: input.DurationInMonths,
		Status:           models.LoanStatusPending,
		AppliedDate:      time.Now(),
		ExternalRef:      uuid.New().String(),
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	loan.Farmer = farmer

	log.Printf("✅ Loan application #%d filed by farmer %d (%.2f)", loan.ID, loan.FarmerID, loan.Amount)

	return loan.ToResponse(), nil
}

// Approve moves a PENDING loan to APPROVED and assigns the lender. The
// transition is a conditional update, so of two racing approve/reject
// calls exactly one wins and the other sees ErrLoanNotPending.
func (s *LoanService) Approve(ctx context.Context, loanID, lenderID uint) (*models.LoanResponse, error) {
	// 1. Lender must exist
	if _, err := s.userRepo.GetByID(ctx, lenderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLenderNotFound
		}
		return nil, err
	}

	// 2. Compare-and-set on PENDING
	rows, err := s.loanRepo.ApproveIfPending(ctx, loanID, lenderID, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.transitionFailure(ctx, loanID)
	}

	// 3. Re-read for the decorated response
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan #%d approved by lender %d", loanID, lenderID)

	return loan.ToResponse(), nil
}

// Reject moves a PENDING loan to REJECTED, recording the remarks
// (empty remarks are allowed).
func (s *LoanService) Reject(ctx context.Context, loanID uint, remarks string) (*models.LoanResponse, error) {
	rows, err := s.loanRepo.RejectIfPending(ctx, loanID, remarks)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.transitionFailure(ctx, loanID)
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan #%d rejected", loanID)

	return loan.ToResponse(), nil
}

// transitionFailure distinguishes an unknown loan from one that already
// left PENDING after a zero-row conditional update.
func (s *LoanService) transitionFailure(ctx context.Context, loanID uint) error {
	if _, err := s.loanRepo.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoanNotFound
		}
		return err
	}
	return ErrLoanNotPending
}

// ListAll lists every loan in insertion order, decorated with names
func (s *LoanService) ListAll(ctx context.Context) ([]*models.LoanResponse, error) {
	loans, err := s.loanRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toLoanResponses(loans), nil
}

// ListByFarmer lists a farmer's loans in insertion order
func (s *LoanService) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.LoanResponse, error) {
	loans, err := s.loanRepo.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	return toLoanResponses(loans), nil
}

// ListByLender lists loans assigned to a lender in insertion order
func (s *LoanService) ListByLender(ctx context.Context, lenderID uint) ([]*models.LoanResponse, error) {
	loans, err := s.loanRepo.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	return toLoanResponses(loans), nil
}

func toLoanResponses(loans []*models.Loan) []*models.LoanResponse {
	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse())
	}
	return responses
}
