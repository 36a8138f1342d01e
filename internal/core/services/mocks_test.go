package services

import (
	"context"
	"sync"
	"time"

	"agricredit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests. They mirror the
// repository contracts closely enough to exercise the services, including
// the conditional loan transitions.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for id := uint(1); id < r.nextID; id++ {
		if user, ok := r.users[id]; ok {
			all = append(all, user)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByAadhaar(ctx context.Context, aadhaar string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Aadhaar == aadhaar {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uint]*models.RefreshToken), nextID: 1}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash && token.RevokedAt == nil {
			return token, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Revoke(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[id]; ok {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *fakeTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, token := range r.tokens {
		if token.ExpiresAt.Before(time.Now()) {
			delete(r.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeLoanRepo struct {
	mu     sync.Mutex
	loans  map[uint]*models.Loan
	nextID uint
	users  *fakeUserRepo
}

func newFakeLoanRepo(users *fakeUserRepo) *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[uint]*models.Loan), nextID: 1, users: users}
}

func (r *fakeLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan.ID = r.nextID
	r.nextID++
	r.loans[loan.ID] = loan
	return nil
}

// decorate mimics the Preload("Farmer").Preload("Lender") joins
func (r *fakeLoanRepo) decorate(loan *models.Loan) *models.Loan {
	copied := *loan
	if user, ok := r.users.users[copied.FarmerID]; ok {
		copied.Farmer = user
	}
	if copied.LenderID != nil {
		if user, ok := r.users.users[*copied.LenderID]; ok {
			copied.Lender = user
		}
	}
	return &copied
}

func (r *fakeLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.decorate(loan), nil
}

func (r *fakeLoanRepo) ListAll(ctx context.Context) ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Loan, 0, len(r.loans))
	for id := uint(1); id < r.nextID; id++ {
		if loan, ok := r.loans[id]; ok {
			result = append(result, r.decorate(loan))
		}
	}
	return result, nil
}

func (r *fakeLoanRepo) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Loan, error) {
	all, _ := r.ListAll(ctx)
	result := make([]*models.Loan, 0)
	for _, loan := range all {
		if loan.FarmerID == farmerID {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *fakeLoanRepo) ListByLender(ctx context.Context, lenderID uint) ([]*models.Loan, error) {
	all, _ := r.ListAll(ctx)
	result := make([]*models.Loan, 0)
	for _, loan := range all {
		if loan.LenderID != nil && *loan.LenderID == lenderID {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *fakeLoanRepo) ApproveIfPending(ctx context.Context, id, lenderID uint, approvedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[id]
	if !ok || loan.Status != models.LoanStatusPending {
		return 0, nil
	}
	loan.Status = models.LoanStatusApproved
	loan.LenderID = &lenderID
	loan.ApprovedDate = &approvedAt
	return 1, nil
}

func (r *fakeLoanRepo) RejectIfPending(ctx context.Context, id uint, remarks string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loan, ok := r.loans[id]
	if !ok || loan.Status != models.LoanStatusPending {
		return 0, nil
	}
	loan.Status = models.LoanStatusRejected
	loan.Remarks = remarks
	return 1, nil
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uint]*models.Receipt
	nextID   uint
	users    *fakeUserRepo
}

func newFakeReceiptRepo(users *fakeUserRepo) *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uint]*models.Receipt), nextID: 1, users: users}
}

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt.ID = r.nextID
	r.nextID++
	r.receipts[receipt.ID] = receipt
	return nil
}

func (r *fakeReceiptRepo) decorate(receipt *models.Receipt) *models.Receipt {
	copied := *receipt
	if user, ok := r.users.users[copied.FarmerID]; ok {
		copied.Farmer = user
	}
	return &copied
}

func (r *fakeReceiptRepo) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt, ok := r.receipts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.decorate(receipt), nil
}

func (r *fakeReceiptRepo) ListAll(ctx context.Context) ([]*models.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Receipt, 0, len(r.receipts))
	for id := uint(1); id < r.nextID; id++ {
		if receipt, ok := r.receipts[id]; ok {
			result = append(result, r.decorate(receipt))
		}
	}
	return result, nil
}

func (r *fakeReceiptRepo) ListByFarmer(ctx context.Context, farmerID uint) ([]*models.Receipt, error) {
	all, _ := r.ListAll(ctx)
	result := make([]*models.Receipt, 0)
	for _, receipt := range all {
		if receipt.FarmerID == farmerID {
			result = append(result, receipt)
		}
	}
	return result, nil
}

func (r *fakeReceiptRepo) ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, receipt := range r.receipts {
		if receipt.ReceiptNumber == receiptNumber {
			return true, nil
		}
	}
	return false, nil
}

// recordingSender captures sent OTPs for assertions
type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	codes map[string]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{codes: make(map[string]string)}
}

func (s *recordingSender) SendOTP(destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, destination)
	s.codes[destination] = code
	return nil
}

func (s *recordingSender) lastCode(destination string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[destination]
}
