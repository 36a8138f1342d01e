package repositories

import (
	"context"

	"agricredit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// receiptRepository implements ReceiptRepository interface
type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new warehouse receipt repository
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

// Create creates a new receipt
func (r *receiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// GetByID gets a receipt by ID with the farmer relation
func (r *receiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		First(&receipt, id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListAll lists all receipts in insertion order
func (r *receiptRepository) ListAll(ctx context.Context) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}

// ListByFarmer lists receipts of a farmer in insertion order
func (r *receiptRepository) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	err := r.db.WithContext(ctx).
		Preload("Farmer").
		Where("farmer_id = ?", farmerID).
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}

// ExistsByReceiptNumber checks if a receipt number is already taken
func (r *receiptRepository) ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("receipt_number = ?", receiptNumber).Count(&count).Error
	return count > 0, err
}
