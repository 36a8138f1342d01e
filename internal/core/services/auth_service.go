package services

import (
	"context"
	"errors"
	"log"
	"regexp"

	"agricredit/internal/adapters/persistence/models"
	"agricredit/internal/adapters/persistence/repositories"
	"agricredit/internal/config"
	"agricredit/internal/pkg/jwt"
	"agricredit/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrInvalidOTPFormat     = errors.New("invalid OTP format")
	ErrInvalidAadhaarFormat = errors.New("invalid aadhaar number format")
	ErrInvalidPhoneFormat   = errors.New("invalid Indian phone number format")
	ErrMissingRequiredField = errors.New("required field missing")
	ErrPasswordMismatch     = errors.New("password confirmation does not match")
	ErrWeakPassword         = errors.New("password is too weak")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrAadhaarTaken         = errors.New("aadhaar already registered")
	ErrPhoneTaken           = errors.New("phone number already registered")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
)

var (
	otpCodePattern = regexp.MustCompile(`^\d{6}$`)
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	phonePattern   = regexp.MustCompile(`^\+91[6-9]\d{9}$`)
)

// AuthService handles the OTP-gated login flow and KYC registration
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	otpService       *OTPService
	smsSender        SMSSender
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	otpService *OTPService,
	smsSender SMSSender,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		otpService:       otpService,
		smsSender:        smsSender,
		cfg:              cfg,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginAck acknowledges OTP issuance. It deliberately carries no secrets:
// the code travels only through the SMS sender.
type LoginAck struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Login checks the credentials and issues a login OTP. The session itself
// is only minted after VerifyOTP succeeds.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginAck, error) {
	// 1. Find user by username
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Issue OTP keyed by username, replacing any outstanding one
	code, err := s.otpService.Generate(user.Username)
	if err != nil {
		return nil, err
	}

	// 5. Deliver out of band
	if err := s.smsSender.SendOTP(user.Phone, code); err != nil {
		log.Printf("⚠️ OTP delivery failed for %s: %v", user.Username, err)
	}

	log.Printf("✅ Login OTP issued for %s", user.Username)

	return &LoginAck{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// VerifyOTP completes the login: the code must be the one issued for the
// username, unexpired and within the attempt budget. On success the entry
// is consumed and a token pair is minted.
func (s *AuthService) VerifyOTP(ctx context.Context, username, code string) (*AuthResponse, error) {
	// 1. Syntactic check before touching the store
	if !otpCodePattern.MatchString(code) {
		return nil, ErrInvalidOTPFormat
	}

	// 2. Verify against the outstanding entry (consumed on success)
	if err := s.otpService.Verify(username, code); err != nil {
		return nil, err
	}

	// 3. Load the user
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 4. Still active?
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 5. Mint tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 6. Store refresh token hash
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// IdentityInput represents the Aadhaar verification step input
type IdentityInput struct {
	AadhaarNumber string `json:"aadhaar_number"`
	FullName      string `json:"full_name"`
	DOB           string `json:"dob"`
}

// IdentityResult is the outcome of an identity check
type IdentityResult struct {
	VerificationID string `json:"verification_id"`
	Name           string `json:"name"`
	AadhaarLast4   string `json:"aadhaar_last4"`
}

// VerifyIdentity mocks the UIDAI identity check: a well-formed 12-digit
// aadhaar yields an opaque verification ID. The ID is not bound to the
// input and is not re-checked at registration; the client tracks progress
// through the steps.
func (s *AuthService) VerifyIdentity(input *IdentityInput) (*IdentityResult, error) {
	if !aadhaarPattern.MatchString(input.AadhaarNumber) {
		return nil, ErrInvalidAadhaarFormat
	}

	return &IdentityResult{
		VerificationID: "VID-" + uuid.New().String(),
		Name:           input.FullName,
		AadhaarLast4:   input.AadhaarNumber[len(input.AadhaarNumber)-4:],
	}, nil
}

// RequestPhoneOTP issues an OTP keyed by the phone number being verified
func (s *AuthService) RequestPhoneOTP(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhoneFormat
	}

	code, err := s.otpService.Generate(phone)
	if err != nil {
		return err
	}

	if err := s.smsSender.SendOTP(phone, code); err != nil {
		log.Printf("⚠️ OTP delivery failed for %s: %v", phone, err)
	}

	return nil
}

// RegisterInput represents registration completion input
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	FullName        string `json:"full_name"`
	Aadhaar         string `json:"aadhaar"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	VerificationID  string `json:"verification_id"`
}

// CompleteRegistration finalizes the KYC registration flow and creates the
// account. Duplicate checks run in a fixed order (username, email, aadhaar,
// phone) and the first violation wins.
func (s *AuthService) CompleteRegistration(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	// 1. Required fields
	if input.Username == "" || input.Email == "" || input.Password == "" ||
		input.Aadhaar == "" || input.Phone == "" {
		return nil, ErrMissingRequiredField
	}

	// 2. Password rules, enforced server-side
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.Password {
		return nil, ErrPasswordMismatch
	}
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}

	// 3. Format checks
	if !aadhaarPattern.MatchString(input.Aadhaar) {
		return nil, ErrInvalidAadhaarFormat
	}
	if !phonePattern.MatchString(input.Phone) {
		return nil, ErrInvalidPhoneFormat
	}

	// 4. Role defaults to FARMER
	role := input.Role
	if role == "" {
		role = models.RoleFarmer
	}
	if role != models.RoleFarmer && role != models.RoleLender && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	// 5. Duplicate checks: username, email, aadhaar, phone — first wins
	if taken, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.userRepo.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.userRepo.ExistsByAadhaar(ctx, input.Aadhaar); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrAadhaarTaken
	}
	if taken, err := s.userRepo.ExistsByPhone(ctx, input.Phone); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrPhoneTaken
	}

	// 6. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 7. Create user
	user := &models.User{
		Username:    input.Username,
		Email:       input.Email,
		Password:    hashedPassword,
		Role:        role,
		FullName:    input.FullName,
		Aadhaar:     input.Aadhaar,
		Phone:       input.Phone,
		Address:     input.Address,
		IsActive:    true,
		KycVerified: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 8. Drop the consumed phone OTP entry, if any survived
	s.otpService.Clear(input.Phone)

	log.Printf("✅ User registered: %s (%s)", user.Username, user.Role)

	return user.ToResponse(), nil
}

// RefreshToken rotates the refresh token and mints a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find the stored token by hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 3. Revocation and expiry checks
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 4. Load user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 5. Rotate: revoke old, mint and store new
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
