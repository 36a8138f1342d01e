package services

import (
	"context"
	"testing"

	"agricredit/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loanFixture struct {
	svc      *LoanService
	users    *fakeUserRepo
	loans    *fakeLoanRepo
	farmerID uint
	lenderID uint
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()

	users := newFakeUserRepo()
	loans := newFakeLoanRepo(users)
	ctx := context.Background()

	farmer := &models.User{Username: "farmer1", FullName: "Ramesh Kumar", Role: models.RoleFarmer, IsActive: true}
	lender := &models.User{Username: "lender1", FullName: "Priya Sharma", Role: models.RoleLender, IsActive: true}
	require.NoError(t, users.Create(ctx, farmer))
	require.NoError(t, users.Create(ctx, lender))

	return &loanFixture{
		svc:      NewLoanService(loans, users),
		users:    users,
		loans:    loans,
		farmerID: farmer.ID,
		lenderID: lender.ID,
	}
}

func TestApplyCreatesPendingLoan(t *testing.T) {
	f := newLoanFixture(t)

	loan, err := f.svc.Apply(context.Background(), &ApplyInput{
		FarmerID:         f.farmerID,
		Amount:           2500,
		Purpose:          "Equipment rental",
		InterestRate:     7.0,
		DurationInMonths: 6,
	})
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusPending, loan.Status)
	assert.Equal(t, 2500.0, loan.Amount)
	assert.Equal(t, "Ramesh Kumar", loan.FarmerName)
	assert.Nil(t, loan.LenderID)
	assert.Nil(t, loan.LenderName)
	assert.Nil(t, loan.ApprovedDate)
	assert.False(t, loan.AppliedDate.IsZero())
	assert.NotEmpty(t, loan.ExternalRef)
}

func TestApplyValidation(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   *ApplyInput
		wantErr error
	}{
		{"zero amount", &ApplyInput{FarmerID: f.farmerID, Amount: 0, DurationInMonths: 6}, ErrInvalidAmount},
		{"negative amount", &ApplyInput{FarmerID: f.farmerID, Amount: -100, DurationInMonths: 6}, ErrInvalidAmount},
		{"zero duration", &ApplyInput{FarmerID: f.farmerID, Amount: 1000, DurationInMonths: 0}, ErrInvalidDuration},
		{"negative interest", &ApplyInput{FarmerID: f.farmerID, Amount: 1000, DurationInMonths: 6, InterestRate: -1}, ErrInvalidInterest},
		{"unknown farmer", &ApplyInput{FarmerID: 999, Amount: 1000, DurationInMonths: 6}, ErrFarmerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Apply(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApproveAssignsLender(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	loan, err := f.svc.Apply(ctx, &ApplyInput{
		FarmerID: f.farmerID, Amount: 2500, Purpose: "Equipment rental", InterestRate: 7.0, DurationInMonths: 6,
	})
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, loan.ID, f.lenderID)
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusApproved, approved.Status)
	require.NotNil(t, approved.LenderID)
	assert.Equal(t, f.lenderID, *approved.LenderID)
	require.NotNil(t, approved.LenderName)
	assert.Equal(t, "Priya Sharma", *approved.LenderName)
	assert.NotNil(t, approved.ApprovedDate)
}

func TestApproveIsExactlyOnce(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	loan, err := f.svc.Apply(ctx, &ApplyInput{FarmerID: f.farmerID, Amount: 1000, DurationInMonths: 6})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, loan.ID, f.lenderID)
	require.NoError(t, err)

	// Second decision on the same loan loses
	_, err = f.svc.Approve(ctx, loan.ID, f.lenderID)
	assert.ErrorIs(t, err, ErrLoanNotPending)
	_, err = f.svc.Reject(ctx, loan.ID, "late")
	assert.ErrorIs(t, err, ErrLoanNotPending)
}

func TestApproveUnknowns(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, 999, f.lenderID)
	assert.ErrorIs(t, err, ErrLoanNotFound)

	loan, err := f.svc.Apply(ctx, &ApplyInput{FarmerID: f.farmerID, Amount: 1000, DurationInMonths: 6})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, loan.ID, 999)
	assert.ErrorIs(t, err, ErrLenderNotFound)
}

func TestRejectRecordsRemarks(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	loan, err := f.svc.Apply(ctx, &ApplyInput{FarmerID: f.farmerID, Amount: 1000, DurationInMonths: 6})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, loan.ID, "insufficient collateral")
	require.NoError(t, err)

	assert.Equal(t, models.LoanStatusRejected, rejected.Status)
	assert.Equal(t, "insufficient collateral", rejected.Remarks)
	assert.Nil(t, rejected.LenderID)

	_, err = f.svc.Reject(ctx, 999, "")
	assert.ErrorIs(t, err, ErrLoanNotFound)
}

func TestListAllKeepsInsertionOrder(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	for _, amount := range []float64{100, 200, 300} {
		_, err := f.svc.Apply(ctx, &ApplyInput{FarmerID: f.farmerID, Amount: amount, DurationInMonths: 6})
		require.NoError(t, err)
	}

	loans, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 3)
	assert.Equal(t, 100.0, loans[0].Amount)
	assert.Equal(t, 200.0, loans[1].Amount)
	assert.Equal(t, 300.0, loans[2].Amount)
}

func TestListByFarmerAndLender(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	other := &models.User{Username: "farmer2", FullName: "Mohan Lal", Role: models.RoleFarmer, IsActive: true}
	require.NoError(t, f.users.Create(ctx, other))

	mine, err := f.svc.Apply(ctx, &ApplyInput{FarmerID: f.farmerID, Amount: 100, DurationInMonths: 6})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, &ApplyInput{FarmerID: other.ID, Amount: 200, DurationInMonths: 6})
	require.NoError(t, err)

	byFarmer, err := f.svc.ListByFarmer(ctx, f.farmerID)
	require.NoError(t, err)
	require.Len(t, byFarmer, 1)
	assert.Equal(t, mine.ID, byFarmer[0].ID)

	_, err = f.svc.Approve(ctx, mine.ID, f.lenderID)
	require.NoError(t, err)

	byLender, err := f.svc.ListByLender(ctx, f.lenderID)
	require.NoError(t, err)
	require.Len(t, byLender, 1)
	assert.Equal(t, mine.ID, byLender[0].ID)
}

func TestLoanNameDecorationFallsBackToSentinel(t *testing.T) {
	loan := &models.Loan{ID: 1, FarmerID: 42, Status: models.LoanStatusPending}

	resp := loan.ToResponse()
	assert.Equal(t, models.UnknownFarmerName, resp.FarmerName)
	assert.Nil(t, resp.LenderName)

	lenderID := uint(7)
	loan.LenderID = &lenderID
	resp = loan.ToResponse()
	require.NotNil(t, resp.LenderName)
	assert.Equal(t, models.UnknownLenderName, *resp.LenderName)
}
