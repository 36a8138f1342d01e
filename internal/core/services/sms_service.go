package services

import (
	"fmt"
	"log"

	"agricredit/internal/config"
)

// SMSSender delivers one-time codes out of band. Real delivery (an SMS
// gateway integration) is out of scope; the mock logs instead of sending.
type SMSSender interface {
	SendOTP(destination, code string) error
}

// SMSService is the gateway-backed sender. Without a configured gateway
// URL it degrades to console delivery, which is what dev mode uses.
type SMSService struct {
	gatewayURL string
	senderID   string
	enabled    bool
}

// NewSMSService creates a new SMS service
func NewSMSService(cfg config.SMSConfig) *SMSService {
	return &SMSService{
		gatewayURL: cfg.GatewayURL,
		senderID:   cfg.SenderID,
		enabled:    cfg.GatewayURL != "",
	}
}

// IsEnabled checks if a real gateway is configured
func (s *SMSService) IsEnabled() bool {
	return s.enabled
}

// SendOTP delivers a one-time code to the destination (a phone number or,
// for login, the account the OTP belongs to). The code is only ever handed
// to this sender; it is never placed in a response body.
func (s *SMSService) SendOTP(destination, code string) error {
	if !s.enabled {
		log.Printf("📱 [SMS mock] OTP for %s: %s", destination, code)
		return nil
	}

	// TODO: implement the gateway client once a provider account exists
	return fmt.Errorf("SMS gateway not implemented: %s", s.gatewayURL)
}
