package repositories

import (
	"context"
	"time"

	"agricredit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID with relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Lender").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListAll lists all loans in insertion order
func (r *loanRepository) ListAll(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Lender").
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// ListByFarmer lists loans of a farmer in insertion order
func (r *loanRepository) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Lender").
		Where("farmer_id = ?", farmerID).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// ListByLender lists loans assigned to a lender in insertion order
func (r *loanRepository) ListByLender(ctx context.Context, lenderID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Preload("Lender").
		Where("lender_id = ?", lenderID).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// ApproveIfPending performs a conditional update keyed on the PENDING status
// so that concurrent approve/reject calls produce exactly one winner.
func (r *loanRepository) ApproveIfPending(ctx context.Context, id, lenderID uint, approvedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Where("status = ?", models.LoanStatusPending).
		Updates(map[string]interface{}{
			"status":        models.LoanStatusApproved,
			"lender_id":     lenderID,
			"approved_date": approvedAt,
		})
	return result.RowsAffected, result.Error
}

// RejectIfPending performs the rejecting counterpart of ApproveIfPending.
func (r *loanRepository) RejectIfPending(ctx context.Context, id uint, remarks string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Where("status = ?", models.LoanStatusPending).
		Updates(map[string]interface{}{
			"status":  models.LoanStatusRejected,
			"remarks": remarks,
		})
	return result.RowsAffected, result.Error
}
