package services

import (
	"context"
	"strings"
	"testing"

	"agricredit/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receiptFixture struct {
	svc      *ReceiptService
	users    *fakeUserRepo
	receipts *fakeReceiptRepo
	farmerID uint
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	t.Helper()

	users := newFakeUserRepo()
	receipts := newFakeReceiptRepo(users)

	farmer := &models.User{Username: "farmer1", FullName: "Ramesh Kumar", Role: models.RoleFarmer, IsActive: true}
	require.NoError(t, users.Create(context.Background(), farmer))

	return &receiptFixture{
		svc:      NewReceiptService(receipts, users),
		users:    users,
		receipts: receipts,
		farmerID: farmer.ID,
	}
}

func TestDepositIssuesReceipt(t *testing.T) {
	f := newReceiptFixture(t)

	receipt, err := f.svc.Deposit(context.Background(), &DepositInput{
		FarmerID:          f.farmerID,
		CommodityName:     "Wheat",
		Variety:           "HD-2967",
		Quantity:          50,
		UnitOfMeasure:     "Quintal",
		WarehouseLocation: "Central Warehouse, Meerut",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReceiptStatusActive, receipt.Status)
	assert.True(t, strings.HasPrefix(receipt.ReceiptNumber, "WR-"))
	assert.Equal(t, "Ramesh Kumar", receipt.FarmerName)
	assert.False(t, receipt.StoredDate.IsZero())
	assert.NotEmpty(t, receipt.ExternalRef)
}

func TestDepositDefaults(t *testing.T) {
	f := newReceiptFixture(t)

	receipt, err := f.svc.Deposit(context.Background(), &DepositInput{
		FarmerID:      f.farmerID,
		CommodityName: "Rice",
		Quantity:      10,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultQualityGrade, receipt.QualityGrade)
	assert.Equal(t, DefaultCondition, receipt.Condition)
}

func TestDepositValidation(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()

	_, err := f.svc.Deposit(ctx, &DepositInput{FarmerID: f.farmerID, CommodityName: "Rice", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.Deposit(ctx, &DepositInput{FarmerID: 999, CommodityName: "Rice", Quantity: 10})
	assert.ErrorIs(t, err, ErrFarmerNotFound)
}

func TestDepositReceiptNumbersAreUnique(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		receipt, err := f.svc.Deposit(ctx, &DepositInput{FarmerID: f.farmerID, CommodityName: "Wheat", Quantity: 1})
		require.NoError(t, err)
		assert.False(t, seen[receipt.ReceiptNumber], "duplicate receipt number %s", receipt.ReceiptNumber)
		seen[receipt.ReceiptNumber] = true
	}
}

func TestReceiptListings(t *testing.T) {
	f := newReceiptFixture(t)
	ctx := context.Background()

	other := &models.User{Username: "farmer2", FullName: "Mohan Lal", Role: models.RoleFarmer, IsActive: true}
	require.NoError(t, f.users.Create(ctx, other))

	first, err := f.svc.Deposit(ctx, &DepositInput{FarmerID: f.farmerID, CommodityName: "Wheat", Quantity: 5})
	require.NoError(t, err)
	_, err = f.svc.Deposit(ctx, &DepositInput{FarmerID: other.ID, CommodityName: "Rice", Quantity: 7})
	require.NoError(t, err)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Wheat", all[0].CommodityName)
	assert.Equal(t, "Rice", all[1].CommodityName)

	mine, err := f.svc.ListByFarmer(ctx, f.farmerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

func TestReceiptNameDecorationFallsBackToSentinel(t *testing.T) {
	receipt := &models.Receipt{ID: 1, FarmerID: 42, Status: models.ReceiptStatusActive}
	assert.Equal(t, models.UnknownFarmerName, receipt.ToResponse().FarmerName)
}
