package config

import (
	"fmt"
	"log"
	"time"

	"agricredit/internal/adapters/persistence/models"
	"agricredit/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Safe to call on every startup; each seeder
// checks for existing data before inserting.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedUsers(); err != nil {
		return fmt.Errorf("user seeder: %w", err)
	}
	if err := s.seedLoans(); err != nil {
		return fmt.Errorf("loan seeder: %w", err)
	}
	if err := s.seedReceipts(); err != nil {
		return fmt.Errorf("receipt seeder: %w", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedUsers seeds one account per role for development and testing.
// In production, create accounts through the registration flow.
func (s *Seeder) seedUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("password123")
	if err != nil {
		return err
	}

	users := []*models.User{
		{
			Username:    "farmer1",
			Email:       "farmer1@agricredit.in",
			Password:    hashedPassword,
			Role:        models.RoleFarmer,
			FullName:    "Ramesh Kumar",
			Aadhaar:     "123456789012",
			Phone:       "+919876543210",
			Address:     "Village Rampur, Dist. Meerut, Uttar Pradesh",
			IsActive:    true,
			KycVerified: true,
		},
		{
			Username:    "lender1",
			Email:       "lender1@agricredit.in",
			Password:    hashedPassword,
			Role:        models.RoleLender,
			FullName:    "Priya Sharma",
			Aadhaar:     "234567890123",
			Phone:       "+919876543211",
			Address:     "Sector 18, Noida, Uttar Pradesh",
			IsActive:    true,
			KycVerified: true,
		},
		{
			Username:    "admin1",
			Email:       "admin1@agricredit.in",
			Password:    hashedPassword,
			Role:        models.RoleAdmin,
			FullName:    "Anil Verma",
			Aadhaar:     "345678901234",
			Phone:       "+919876543212",
			Address:     "Connaught Place, New Delhi",
			IsActive:    true,
			KycVerified: true,
		},
	}

	for _, user := range users {
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded user: %s [%s]", user.Username, user.Role)
	}

	return nil
}

// seedLoans seeds one approved and one pending loan for farmer1
func (s *Seeder) seedLoans() error {
	var count int64
	s.db.Model(&models.Loan{}).Count(&count)
	if count > 0 {
		return nil
	}

	var farmer, lender models.User
	if err := s.db.Where("username = ?", "farmer1").First(&farmer).Error; err != nil {
		return err
	}
	if err := s.db.Where("username = ?", "lender1").First(&lender).Error; err != nil {
		return err
	}

	approvedAt := time.Now().AddDate(0, 0, -20)
	loans := []*models.Loan{
		{
			FarmerID:         farmer.ID,
			LenderID:         &lender.ID,
			Amount:           5000,
			Purpose:          "Seed purchase for kharif season",
			InterestRate:     8.5,
			DurationInMonths: 12,
			Status:           models.LoanStatusApproved,
			AppliedDate:      time.Now().AddDate(0, 0, -30),
			ApprovedDate:     &approvedAt,
			ExternalRef:      "seed-loan-approved",
		},
		{
			FarmerID:         farmer.ID,
			Amount:           12000,
			Purpose:          "Drip irrigation installation",
			InterestRate:     9.0,
			DurationInMonths: 24,
			Status:           models.LoanStatusPending,
			AppliedDate:      time.Now().AddDate(0, 0, -3),
			ExternalRef:      "seed-loan-pending",
		},
	}

	for _, loan := range loans {
		if err := s.db.Create(loan).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d loans", len(loans))
	return nil
}

// seedReceipts seeds one active warehouse receipt for farmer1
func (s *Seeder) seedReceipts() error {
	var count int64
	s.db.Model(&models.Receipt{}).Count(&count)
	if count > 0 {
		return nil
	}

	var farmer models.User
	if err := s.db.Where("username = ?", "farmer1").First(&farmer).Error; err != nil {
		return err
	}

	receipt := &models.Receipt{
		FarmerID:            farmer.ID,
		CommodityName:       "Wheat",
		Variety:             "HD-2967",
		Quantity:            50,
		UnitOfMeasure:       "Quintal",
		WarehouseLocation:   "Central Warehouse, Meerut",
		WarehouseKeeperName: "Suresh Gupta",
		StoredDate:          time.Now().AddDate(0, 0, -10),
		Status:              models.ReceiptStatusActive,
		ReceiptNumber:       fmt.Sprintf("WR-%d", time.Now().UnixMilli()),
		ExternalRef:         "seed-receipt-wheat",
		QualityGrade:        "Grade A",
		Condition:           "Good",
	}

	if err := s.db.Create(receipt).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded receipt: %s", receipt.ReceiptNumber)
	return nil
}
