package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// Roles
const (
	RoleFarmer = "FARMER"
	RoleLender = "LENDER"
	RoleAdmin  = "ADMIN"
)

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Role        string         `gorm:"size:20;default:'FARMER'" json:"role"`
	FullName    string         `gorm:"size:100" json:"full_name"`
	Aadhaar     string         `gorm:"uniqueIndex;size:12;not null" json:"-"`
	Phone       string         `gorm:"uniqueIndex;size:15;not null" json:"phone"`
	Address     string         `gorm:"type:text" json:"address"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	KycVerified bool           `gorm:"default:false" json:"kyc_verified"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address,omitempty"`
	IsActive    bool      `json:"is_active"`
	KycVerified bool      `json:"kyc_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Address:     u.Address,
		IsActive:    u.IsActive,
		KycVerified: u.KycVerified,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Loan Table
// ============================================================

// Loan statuses
const (
	LoanStatusPending   = "PENDING"
	LoanStatusApproved  = "APPROVED"
	LoanStatusRejected  = "REJECTED"
	LoanStatusActive    = "ACTIVE"
	LoanStatusDisbursed = "DISBURSED"
	LoanStatusClosed    = "CLOSED"
)

// Name sentinels used when a decoration lookup misses
const (
	UnknownFarmerName = "Unknown Farmer"
	UnknownLenderName = "Unknown Lender"
)

// Loan represents loans table
type Loan struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FarmerID         uint       `gorm:"not null;index" json:"farmer_id"`
	LenderID         *uint      `gorm:"index" json:"lender_id"`
	Amount           float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Purpose          string     `gorm:"type:text" json:"purpose"`
	InterestRate     float64    `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	DurationInMonths int        `gorm:"not null" json:"duration_in_months"`
	Status           string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	AppliedDate      time.Time  `gorm:"not null" json:"applied_date"`
	ApprovedDate     *time.Time `json:"approved_date"`
	Remarks          string     `gorm:"type:text" json:"remarks"`
	ExternalRef      string     `gorm:"size:64" json:"external_ref"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Farmer *User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Lender *User `gorm:"foreignKey:LenderID" json:"lender,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanResponse DTO with read-time name decoration
type LoanResponse struct {
	ID               uint       `json:"id"`
	FarmerID         uint       `json:"farmer_id"`
	FarmerName       string     `json:"farmer_name"`
	LenderID         *uint      `json:"lender_id"`
	LenderName       *string    `json:"lender_name"`
	Amount           float64    `json:"amount"`
	Purpose          string     `json:"purpose"`
	InterestRate     float64    `json:"interest_rate"`
	DurationInMonths int        `json:"duration_in_months"`
	Status           string     `json:"status"`
	AppliedDate      time.Time  `json:"applied_date"`
	ApprovedDate     *time.Time `json:"approved_date"`
	Remarks          string     `json:"remarks"`
	ExternalRef      string     `json:"external_ref"`
}

// ToResponse decorates the loan with display names. A missing join resolves
// to the Unknown sentinel instead of failing the listing.
func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:               l.ID,
		FarmerID:         l.FarmerID,
		FarmerName:       UnknownFarmerName,
		LenderID:         l.LenderID,
		Amount:           l.Amount,
		Purpose:          l.Purpose,
		InterestRate:     l.InterestRate,
		DurationInMonths: l.DurationInMonths,
		Status:           l.Status,
		AppliedDate:      l.AppliedDate,
		ApprovedDate:     l.ApprovedDate,
		Remarks:          l.Remarks,
		ExternalRef:      l.ExternalRef,
	}

	if l.Farmer != nil {
		resp.FarmerName = l.Farmer.FullName
	}
	if l.LenderID != nil {
		name := UnknownLenderName
		if l.Lender != nil {
			name = l.Lender.FullName
		}
		resp.LenderName = &name
	}

	return resp
}

// ============================================================
// Warehouse Receipt Table
// ============================================================

// Receipt statuses
const (
	ReceiptStatusActive   = "ACTIVE"
	ReceiptStatusReleased = "RELEASED"
	ReceiptStatusExpired  = "EXPIRED"
)

// Receipt represents warehouse_receipts table
type Receipt struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FarmerID            uint      `gorm:"not null;index" json:"farmer_id"`
	CommodityName       string    `gorm:"size:100;not null" json:"commodity_name"`
	Variety             string    `gorm:"size:100" json:"variety"`
	Quantity            float64   `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitOfMeasure       string    `gorm:"size:20" json:"unit_of_measure"`
	WarehouseLocation   string    `gorm:"size:200" json:"warehouse_location"`
	WarehouseKeeperName string    `gorm:"size:100" json:"warehouse_keeper_name"`
	StoredDate          time.Time `gorm:"not null" json:"stored_date"`
	Status              string    `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	ReceiptNumber       string    `gorm:"uniqueIndex;size:32;not null" json:"receipt_number"`
	ExternalRef         string    `gorm:"size:64" json:"external_ref"`
	QualityGrade        string    `gorm:"size:50" json:"quality_grade"`
	Condition           string    `gorm:"size:50" json:"condition"`
	Remarks             string    `gorm:"type:text" json:"remarks"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Farmer *User `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
}

func (Receipt) TableName() string {
	return "warehouse_receipts"
}

// ReceiptResponse DTO
type ReceiptResponse struct {
	ID                  uint      `json:"id"`
	FarmerID            uint      `json:"farmer_id"`
	FarmerName          string    `json:"farmer_name"`
	CommodityName       string    `json:"commodity_name"`
	Variety             string    `json:"variety"`
	Quantity            float64   `json:"quantity"`
	UnitOfMeasure       string    `json:"unit_of_measure"`
	WarehouseLocation   string    `json:"warehouse_location"`
	WarehouseKeeperName string    `json:"warehouse_keeper_name"`
	StoredDate          time.Time `json:"stored_date"`
	Status              string    `json:"status"`
	ReceiptNumber       string    `json:"receipt_number"`
	ExternalRef         string    `json:"external_ref"`
	QualityGrade        string    `json:"quality_grade"`
	Condition           string    `json:"condition"`
	Remarks             string    `json:"remarks"`
}

func (r *Receipt) ToResponse() *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:                  r.ID,
		FarmerID:            r.FarmerID,
		FarmerName:          UnknownFarmerName,
		CommodityName:       r.CommodityName,
		Variety:             r.Variety,
		Quantity:            r.Quantity,
		UnitOfMeasure:       r.UnitOfMeasure,
		WarehouseLocation:   r.WarehouseLocation,
		WarehouseKeeperName: r.WarehouseKeeperName,
		StoredDate:          r.StoredDate,
		Status:              r.Status,
		ReceiptNumber:       r.ReceiptNumber,
		ExternalRef:         r.ExternalRef,
		QualityGrade:        r.QualityGrade,
		Condition:           r.Condition,
		Remarks:             r.Remarks,
	}

	if r.Farmer != nil {
		resp.FarmerName = r.Farmer.FullName
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Loan{},
		&Receipt{},
	)
}
