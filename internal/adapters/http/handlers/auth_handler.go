package handlers

import (
	"errors"
	"strings"
	"time"

	"agricredit/internal/config"
	"agricredit/internal/core/services"
	"agricredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifyOTPRequest represents the login OTP verification body
type VerifyOTPRequest struct {
	Username string `json:"username"`
	OTP      string `json:"otp"`
}

// AadhaarVerifyRequest represents the identity verification body
type AadhaarVerifyRequest struct {
	AadhaarNumber string `json:"aadhaar_number"`
	FullName      string `json:"full_name"`
	DOB           string `json:"dob"`
}

// PhoneOTPRequest represents the phone OTP issuance body
type PhoneOTPRequest struct {
	Phone string `json:"phone"`
}

// RegisterRequest represents the registration completion body
type RegisterRequest struct {
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

// Login handles credential check and OTP issuance
// @Summary Login (step 1)
// @Description Check credentials and send a login OTP via SMS
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}

	ack, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "OTP sent to registered mobile number", fiber.Map{
		"user_id":  ack.UserID,
		"username": ack.Username,
		"role":     ack.Role,
	})
}

// VerifyOTP completes the login with the one-time code
// @Summary Login (step 2)
// @Description Verify the login OTP and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyOTPRequest true "Username and OTP"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.OTP == "" {
		return response.BadRequest(c, "OTP is required")
	}

	result, err := h.authService.VerifyOTP(c.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOTPFormat):
			return response.BadRequest(c, "OTP must be a 6-digit code")
		case errors.Is(err, services.ErrNoPendingOTP):
			return response.Unauthorized(c, "No pending OTP, please login again")
		case errors.Is(err, services.ErrOTPExpired):
			return response.Unauthorized(c, "OTP expired, please login again")
		case errors.Is(err, services.ErrOTPMismatch):
			return response.Unauthorized(c, "Incorrect OTP")
		case errors.Is(err, services.ErrTooManyAttempts):
			return response.Unauthorized(c, "Too many incorrect attempts, please login again")
		case errors.Is(err, services.ErrUserNotFound):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.InternalServerError(c, "Failed to verify OTP")
		}
	}

	// Set cookies
	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// VerifyAadhaar handles the registration identity check
// @Summary Verify Aadhaar (registration step 1)
// @Description Validate the Aadhaar number format and issue a verification ID
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body AadhaarVerifyRequest true "Identity details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/aadhaar-verify [post]
func (h *AuthHandler) VerifyAadhaar(c *fiber.Ctx) error {
	var req AadhaarVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.IdentityInput{
		AadhaarNumber: strings.TrimSpace(req.AadhaarNumber),
		FullName:      strings.TrimSpace(req.FullName),
		DOB:           strings.TrimSpace(req.DOB),
	}

	result, err := h.authService.VerifyIdentity(input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAadhaarFormat):
			return response.BadRequest(c, "Aadhaar number must be 12 digits")
		default:
			return response.InternalServerError(c, "Failed to verify identity")
		}
	}

	return response.Success(c, "Identity verified", result)
}

// SendPhoneOTP issues an OTP for phone verification during registration
// @Summary Send phone OTP (registration step 2)
// @Description Send a verification code to the given phone number
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body PhoneOTPRequest true "Phone number"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/send-otp-phone [post]
func (h *AuthHandler) SendPhoneOTP(c *fiber.Ctx) error {
	var req PhoneOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return response.BadRequest(c, "Phone number is required")
	}

	if err := h.authService.RequestPhoneOTP(phone); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhoneFormat):
			return response.BadRequest(c, "Phone number must be a valid Indian mobile number (+91XXXXXXXXXX)")
		default:
			return response.InternalServerError(c, "Failed to send OTP")
		}
	}

	return response.Success(c, "OTP sent to phone number", nil)
}

// Register finalizes registration and creates the account
// @Summary Complete registration
// @Description Create the account after identity and phone verification
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register-complete [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.RegisterInput{
		Username:        strings.TrimSpace(req.Username),
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            strings.TrimSpace(req.Role),
		FullName:        strings.TrimSpace(req.FullName),
		Aadhaar:         strings.TrimSpace(req.Aadhaar),
		Phone:           strings.TrimSpace(req.Phone),
		Address:         strings.TrimSpace(req.Address),
		VerificationID:  strings.TrimSpace(req.VerificationID),
	}

	user, err := h.authService.CompleteRegistration(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingRequiredField):
			return response.BadRequest(c, "Username, email, password, aadhaar and phone are required")
		case errors.Is(err, services.ErrPasswordMismatch):
			return response.BadRequest(c, "Password confirmation does not match")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 6 characters")
		case errors.Is(err, services.ErrInvalidAadhaarFormat):
			return response.BadRequest(c, "Aadhaar number must be 12 digits")
		case errors.Is(err, services.ErrInvalidPhoneFormat):
			return response.BadRequest(c, "Phone number must be a valid Indian mobile number (+91XXXXXXXXXX)")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Role must be FARMER, LENDER or ADMIN")
		case errors.Is(err, services.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, services.ErrAadhaarTaken):
			return response.Conflict(c, "Aadhaar number already registered")
		case errors.Is(err, services.ErrPhoneTaken):
			return response.Conflict(c, "Phone number already registered")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	return response.Created(c, "User registered successfully", fiber.Map{
		"user": user,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Refresh access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	// Get refresh token from cookie
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrUserInactive):
			h.clearAuthCookies(c)
			return response.Forbidden(c, "User account is inactive")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	// Set new cookies
	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and revoke refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the user
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
