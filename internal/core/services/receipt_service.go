package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"agricredit/internal/adapters/persistence/models"
	"agricredit/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt service errors
var (
	ErrReceiptNotFound = errors.New("warehouse receipt not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// Deposit defaults
const (
	DefaultQualityGrade = "Standard"
	DefaultCondition    = "Good"
)

// ReceiptService owns warehouse receipts. Unlike loans there is no
// transition API: ACTIVE/RELEASED/EXPIRED is a plain field set elsewhere.
type ReceiptService struct {
	receiptRepo repositories.ReceiptRepository
	userRepo    repositories.UserRepository
}

// NewReceiptService creates a new warehouse receipt service
func NewReceiptService(receiptRepo repositories.ReceiptRepository, userRepo repositories.UserRepository) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		userRepo:    userRepo,
	}
}

// DepositInput represents a warehouse deposit
type DepositInput struct {
	FarmerID            uint    `json:"farmer_id"`
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

// Deposit records a commodity deposit and issues a receipt with a
// store-unique "WR-" number.
func (s *ReceiptService) Deposit(ctx context.Context, input *DepositInput) (*models.ReceiptResponse, error) {
	// 1. Validate
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 2. Farmer must exist
	farmer, err := s.userRepo.GetByID(ctx, input.FarmerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}

	// 3. Generate a unique receipt number
	receiptNumber, err := s.nextReceiptNumber(ctx)
	if err != nil {
		return nil, err
	}

	// 4. Defaults
	qualityGrade := input.QualityGrade
	if qualityGrade == "" {
		qualityGrade = DefaultQualityGrade
	}
	condition := input.Condition
	if condition == "" {
		condition = DefaultCondition
	}

	// 5. Create the receipt
	receipt := &models.Receipt{
		FarmerID:            input.FarmerID,
		CommodityName:       input.CommodityName,
		Variety:             input.Variety,
		Quantity:            input.Quantity,
		UnitOfMeasure:       input.UnitOfMeasure,
		WarehouseLocation:   input.WarehouseLocation,
		WarehouseKeeperName: input.WarehouseKeeperName,
		StoredDate:          time.Now(),
		Status:              models.ReceiptStatusActive,
		ReceiptNumber:       receiptNumber,
		ExternalRef:         uuid.New().String(),
		QualityGrade:        qualityGrade,
		Condition:           condition,
		Remarks:             input.Remarks,
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	receipt.Farmer = farmer

	log.Printf("✅ Warehouse receipt %s issued for farmer %d (%s)", receipt.ReceiptNumber, receipt.FarmerID, receipt.CommodityName)

	return receipt.ToResponse(), nil
}

// ListAll lists every receipt in insertion order, decorated with names
func (s *ReceiptService) ListAll(ctx context.Context) ([]*models.ReceiptResponse, error) {
	receipts, err := s.receiptRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toReceiptResponses(receipts), nil
}

// ListByFarmer lists a farmer's receipts in insertion order
func (s *ReceiptService) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.ReceiptResponse, error) {
	receipts, err := s.receiptRepo.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	return toReceiptResponses(receipts), nil
}

// nextReceiptNumber derives a "WR-" number from the wall clock and retries
// on the rare same-millisecond collision.
func (s *ReceiptService) nextReceiptNumber(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		candidate := fmt.Sprintf("WR-%d", time.Now().UnixMilli())
		taken, err := s.receiptRepo.ExistsByReceiptNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		time.Sleep(time.Millisecond)
	}
	return "", errors.New("could not allocate a unique receipt number")
}

func toReceiptResponses(receipts []*models.Receipt) []*models.ReceiptResponse {
	responses := make([]*models.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		responses = append(responses, receipt.ToResponse())
	}
	return responses
}
