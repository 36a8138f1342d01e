package services

import (
	"context"
	"log"
	"time"

	"agricredit/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs periodic housekeeping jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	otpService       *OTPService
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository, otpService *OTPService) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		otpService:       otpService,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// Purge expired refresh tokens hourly
	if _, err := s.cron.AddFunc("@hourly", s.purgeExpiredTokens); err != nil {
		return err
	}

	// Sweep expired OTP entries every 5 minutes
	if _, err := s.cron.AddFunc("@every 5m", s.sweepExpiredOTPs); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Failed to purge expired refresh tokens: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🧹 Purged %d expired refresh tokens", deleted)
	}
}

func (s *CronService) sweepExpiredOTPs() {
	if swept := s.otpService.Sweep(); swept > 0 {
		log.Printf("🧹 Swept %d expired OTP entries", swept)
	}
}
