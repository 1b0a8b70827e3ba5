package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/transitlink/fleet-backend/internal/config"
)

// SMSSender delivers a message to a phone number and returns the
// provider's delivery id.
type SMSSender interface {
	Deliver(phone, message string) (string, error)
}

// TwilioSMS sends SMS via Twilio. With SMS delivery disabled in config
// it simulates every send and returns a synthetic id, so local setups
// work without provider credentials.
type TwilioSMS struct {
	client      *twilio.RestClient
	from        string
	countryCode string
	simulate    bool
}

// NewTwilioSMS creates the SMS service. Missing credentials are fatal
// when delivery is enabled.
func NewTwilioSMS(cfg *config.Config) (*TwilioSMS, error) {
	if !cfg.SMSEnabled {
		return &TwilioSMS{simulate: true}, nil
	}

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioPhoneNumber == "" {
		return nil, ErrSMSConfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	// A hung provider call must not hold the request open; a timeout
	// counts as a delivery failure.
	client.SetTimeout(cfg.SMSTimeout)

	return &TwilioSMS{
		client:      client,
		from:        cfg.TwilioPhoneNumber,
		countryCode: cfg.SMSCountryCode,
	}, nil
}

// Deliver sends one SMS. The returned id is Twilio's message SID, or a
// dev-simulated marker when delivery is disabled.
func (t *TwilioSMS) Deliver(phone, message string) (string, error) {
	if t.simulate {
		sid := "dev-simulated-" + uuid.NewString()
		log.Printf("📱 [simulated SMS] to=%s sid=%s", phone, sid)
		return sid, nil
	}

	to := phone
	if !strings.HasPrefix(to, "+") {
		to = t.countryCode + to
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return "", fmt.Errorf("%w: %v", ErrDeliveryFail, err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("%w: no message sid returned", ErrDeliveryFail)
	}

	return *resp.Sid, nil
}

// Simulated reports whether sends are being faked
func (t *TwilioSMS) Simulated() bool { return t.simulate }
