package routes

import (
	"agricredit/internal/adapters/http/handlers"
	"agricredit/internal/adapters/http/middleware"
	"agricredit/internal/adapters/persistence/repositories"
	"agricredit/internal/config"
	"agricredit/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, otpService *services.OTPService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	receiptRepo := repositories.NewReceiptRepository(db)

	// Initialize services
	smsService := services.NewSMSService(cfg.SMS)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, otpService, smsService, cfg)
	userService := services.NewUserService(userRepo)
	loanService := services.NewLoanService(loanRepo, userRepo)
	receiptService := services.NewReceiptService(receiptRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	loanHandler := handlers.NewLoanHandler(loanService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API group
	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	// Auth routes
	authRoutes := api.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Loan routes (authenticated)
	loanRoutes := api.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler)

	// Warehouse receipt routes (authenticated)
	receiptRoutes := api.Group("/warehouse/receipts")
	receiptRoutes.Use(middleware.AuthMiddleware(cfg))
	setupReceiptRoutes(receiptRoutes, receiptHandler)

	// User management routes (Admin only)
	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
// Rate limits: AuthRateLimiter = 5 req/min/IP, StrictRateLimiter = 3 req/min/IP
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Login flow (credential check, then OTP)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/verify-otp", middleware.StrictRateLimiter(), handler.VerifyOTP)

	// Registration flow
	router.Post("/aadhaar-verify", middleware.AuthRateLimiter(), handler.VerifyAadhaar)
	router.Post("/send-otp-phone", middleware.StrictRateLimiter(), handler.SendPhoneOTP)
	router.Post("/register-complete", middleware.StrictRateLimiter(), handler.Register)

	// Session management
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupLoanRoutes configures loan routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	// Farmers apply for their own loans
	router.Post("/apply", middleware.FarmerOnly(), handler.Apply)

	// Lenders and admins decide on applications
	router.Put("/:id/approve", middleware.LenderOrAdmin(), handler.Approve)
	router.Put("/:id/reject", middleware.LenderOrAdmin(), handler.Reject)

	// Listings
	router.Get("/", middleware.LenderOrAdmin(), handler.ListAll)
	router.Get("/farmer/:id", handler.ListByFarmer)
	router.Get("/lender/:id", handler.ListByLender)
}

// setupReceiptRoutes configures warehouse receipt routes
func setupReceiptRoutes(router fiber.Router, handler *handlers.ReceiptHandler) {
	router.Post("/", middleware.FarmerOnly(), handler.Deposit)
	router.Get("/", middleware.LenderOrAdmin(), handler.ListAll)
	router.Get("/farmer/:id", handler.ListByFarmer)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Put("/:id/status", handler.SetStatus)
}
