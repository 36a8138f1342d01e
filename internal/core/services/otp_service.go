package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// OTP errors
var (
	ErrNoPendingOTP    = errors.New("no pending OTP for this subject")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrOTPMismatch     = errors.New("incorrect OTP")
	ErrTooManyAttempts = errors.New("too many incorrect OTP attempts")
)

const (
	// OTPLength is the number of digits in a generated code
	OTPLength = 6

	// OTPTTL is how long a code stays valid after issuance
	OTPTTL = 5 * time.Minute

	// MaxOTPAttempts caps wrong guesses per entry
	MaxOTPAttempts = 5
)

// OTPEntry represents a single OTP record in memory
type OTPEntry struct {
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// OTPService generates and verifies one-time codes. Entries are keyed by
// subject (a username for login, a phone number for registration) and at
// most one entry is outstanding per subject: issuing a new code overwrites
// and thereby invalidates the previous one. Expiry is checked lazily on
// verification; Sweep exists only to keep the map from growing unbounded.
type OTPService struct {
	store map[string]*OTPEntry
	mu    sync.RWMutex
}

// NewOTPService creates a new OTP service
func NewOTPService() *OTPService {
	return &OTPService{
		store: make(map[string]*OTPEntry),
	}
}

// Generate creates a new 6-digit OTP for a subject, replacing any prior
// unconsumed entry. Returns the code for delivery via the SMS gateway;
// the code must never appear in an HTTP response.
func (s *OTPService) Generate(subject string) (string, error) {
	code, err := generateSecureOTP(OTPLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[subject] = &OTPEntry{
		Code:      code,
		ExpiresAt: time.Now().Add(OTPTTL),
	}

	return code, nil
}

// Verify checks the provided code against the outstanding entry for the
// subject. The entry is consumed (deleted) on success, on expiry, and when
// the attempt cap is hit; a plain mismatch leaves it in place.
func (s *OTPService) Verify(subject, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[subject]
	if !ok {
		return ErrNoPendingOTP
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(s.store, subject)
		return ErrOTPExpired
	}

	if entry.Attempts >= MaxOTPAttempts {
		delete(s.store, subject)
		return ErrTooManyAttempts
	}

	entry.Attempts++
	if entry.Code != code {
		return ErrOTPMismatch
	}

	delete(s.store, subject)
	return nil
}

// Clear removes any outstanding entry for a subject
func (s *OTPService) Clear(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, subject)
}

// Sweep removes expired entries and returns how many were dropped.
// Driven by the cron service.
func (s *OTPService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for subject, entry := range s.store {
		if now.After(entry.ExpiresAt) {
			delete(s.store, subject)
			removed++
		}
	}
	return removed
}

// generateSecureOTP generates a cryptographically secure random numeric code
func generateSecureOTP(length int) (string, error) {
	result := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		result += fmt.Sprintf("%d", n.Int64())
	}
	return result, nil
}
