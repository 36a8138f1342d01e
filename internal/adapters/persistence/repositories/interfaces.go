package repositories

import (
	"context"
	"time"

	"agricredit/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	ListAll(ctx context.Context) ([]*models.Loan, error)
	ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Loan, error)
	ListByLender(ctx context.Context, lenderID uint) ([]*models.Loan, error)
	// ApproveIfPending atomically moves the loan PENDING→APPROVED and sets
	// lender and approval time. Returns the number of rows updated (0 when
	// the loan is absent or no longer PENDING).
	ApproveIfPending(ctx context.Context, id, lenderID uint, approvedAt time.Time) (int64, error)
	// RejectIfPending atomically moves the loan PENDING→REJECTED.
	RejectIfPending(ctx context.Context, id uint, remarks string) (int64, error)
}

// ReceiptRepository defines warehouse receipt repository interface
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id uint) (*models.Receipt, error)
	ListAll(ctx context.Context) ([]*models.Receipt, error)
	ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Receipt, error)
	ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error)
}
