package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
	"github.com/transitlink/fleet-backend/pkg/jwt"
	"github.com/transitlink/fleet-backend/pkg/validation"
)

const (
	otpCooldown = 60 * time.Second
	otpExpiry   = 5 * time.Minute
	otpMaxTries = 5
)

// OTPService owns the one-time-passcode lifecycle per (phone, role):
// generation, hashed storage, expiry, attempt limiting, resend cooldown
// and verification. The 4-digit space is small, so the attempt cap is
// the real brute-force defense; the cooldown bounds SMS cost.
type OTPService struct {
	store      storage.Store
	sms        SMSSender
	tokens     TokenIssuer
	identities *IdentityResolver
	devMode    bool

	now func() time.Time // injectable clock for tests
}

func NewOTPService(store storage.Store, sms SMSSender, tokens TokenIssuer, identities *IdentityResolver, devMode bool) *OTPService {
	return &OTPService{
		store:      store,
		sms:        sms,
		tokens:     tokens,
		identities: identities,
		devMode:    devMode,
		now:        time.Now,
	}
}

// GenerateCode draws a 4-digit code uniformly from [1000, 9999]
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// waitSeconds rounds the remaining cooldown up to whole seconds. A
// sub-second remainder must still report 1, never 0, or the client is
// told to retry while the window still rejects it.
func waitSeconds(remaining time.Duration) int {
	return int((remaining + time.Second - 1) / time.Second)
}

// SendResult reports a successful send
type SendResult struct {
	DeliveryID string
}

// Send issues a fresh code for (phone, role), overwriting any previous
// record for the pair. The upsert is a compare-and-set on the last-send
// timestamp, so two concurrent sends inside the cooldown window cannot
// both claim it.
func (s *OTPService) Send(phone, role string) (*SendResult, error) {
	if !validation.ValidatePhone(phone) {
		return nil, ErrInvalidPhone
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	now := s.now()

	existing, err := s.store.GetOTP(phone, role)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if elapsed := now.Sub(existing.LastSentAt); elapsed < otpCooldown {
			return nil, &RateLimitError{WaitSeconds: waitSeconds(otpCooldown - elapsed)}
		}
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP: %w", err)
	}

	record := &models.PhoneOTP{
		Phone:      phone,
		Role:       role,
		CodeHash:   string(hash),
		Verified:   false,
		ExpiresAt:  now.Add(otpExpiry),
		Attempts:   0,
		LastSentAt: now,
	}

	claimed, err := s.store.UpsertOTP(record, now.Add(-otpCooldown))
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the window to a concurrent send for the same pair.
		wait := int(otpCooldown.Seconds())
		if rec, err := s.store.GetOTP(phone, role); err == nil {
			if remaining := otpCooldown - now.Sub(rec.LastSentAt); remaining > 0 {
				wait = waitSeconds(remaining)
			}
		}
		return nil, &RateLimitError{WaitSeconds: wait}
	}

	deliveryID, err := s.sms.Deliver(phone, fmt.Sprintf("Your OTP is %s", code))
	if err != nil {
		// The window stays claimed; the caller has to wait out the
		// cooldown before a resend.
		return nil, err
	}

	// The plaintext code never leaves through the API. In development it
	// goes to the server console so local flows work end to end.
	if s.devMode {
		log.Printf("🔐 [DEV MODE] OTP for %s (%s): %s | expires at %s",
			phone, role, code, record.ExpiresAt.Format(time.RFC3339))
	}

	return &SendResult{DeliveryID: deliveryID}, nil
}

// VerifyResult carries the minted credentials on success
type VerifyResult struct {
	Tokens     *jwt.TokenPair
	Role       string
	IdentityID uint
}

// Verify checks a submitted code. Expired records are rejected but kept,
// a fresh Send is the only way out. After otpMaxTries failed attempts
// the record is dead even for the correct code. Each call claims an
// attempt atomically before comparing, so a parallel burst of guesses
// gets at most otpMaxTries comparisons per code.
func (s *OTPService) Verify(phone, role, code string) (*VerifyResult, error) {
	if !validation.ValidatePhone(phone) {
		return nil, ErrInvalidPhone
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	record, err := s.store.GetOTP(phone, role)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	if record.Expired(s.now()) {
		return nil, ErrOTPExpired
	}
	if record.Attempts >= otpMaxTries {
		return nil, ErrTooManyTries
	}

	// Claim the attempt before comparing. The increment is atomic in the
	// store, so concurrent verifies cannot all pass the cap on the same
	// stale counter and then overwrite each other's increments.
	attempts, err := s.store.IncrementOTPAttempts(phone, role)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempts > otpMaxTries {
		return nil, ErrTooManyTries
	}

	// bcrypt comparison is not timing-sensitive on the code value
	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		return nil, ErrInvalidCode
	}

	record.Verified = true
	record.Attempts = 0
	if err := s.store.UpdateOTP(record); err != nil {
		return nil, err
	}

	principal, err := s.identities.Resolve(phone, role)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.Issue(principal.ID, role)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{Tokens: tokens, Role: role, IdentityID: principal.ID}, nil
}
