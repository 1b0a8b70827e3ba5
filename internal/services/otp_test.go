package services

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/transitlink/fleet-backend/internal/config"
	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// fakeSMS records every delivery so tests can read back the plaintext
// code out of the message body.
type fakeSMS struct {
	messages []string
	fail     bool
}

func (f *fakeSMS) Deliver(phone, message string) (string, error) {
	if f.fail {
		return "", ErrDeliveryFail
	}
	f.messages = append(f.messages, message)
	return "fake-sid", nil
}

// lastCode pulls the 4-digit code out of the most recent message
func (f *fakeSMS) lastCode(t *testing.T) string {
	t.Helper()
	if len(f.messages) == 0 {
		t.Fatal("no SMS delivered")
	}
	msg := f.messages[len(f.messages)-1]
	i := strings.LastIndex(msg, " ")
	return msg[i+1:]
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 24 * time.Hour,
	}
}

func newOTPFixture() (*OTPService, *fakeSMS, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	sms := &fakeSMS{}
	tokens := NewJWTIssuer(testConfig())
	identities := NewIdentityResolver(store)
	svc := NewOTPService(store, sms, tokens, identities, false)
	return svc, sms, store
}

func TestSendAndVerify(t *testing.T) {
	svc, sms, store := newOTPFixture()

	if _, err := svc.Send("9876543210", models.RoleDriver); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	code := sms.lastCode(t)
	if len(code) != 4 || code[0] == '0' {
		t.Fatalf("expected 4-digit code without leading zero, got %q", code)
	}

	// The stored record never carries the plaintext
	rec, err := store.GetOTP("9876543210", models.RoleDriver)
	if err != nil {
		t.Fatalf("GetOTP failed: %v", err)
	}
	if rec.CodeHash == code {
		t.Fatal("code stored in plaintext")
	}

	result, err := svc.Verify("9876543210", models.RoleDriver, code)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Tokens == nil || result.Tokens.Access == "" || result.Tokens.Refresh == "" {
		t.Fatal("expected a full token pair")
	}
	if result.Role != models.RoleDriver {
		t.Fatalf("expected role driver, got %s", result.Role)
	}

	// First verify for an unknown phone creates the driver row
	d, err := store.GetDriverByPhone("9876543210")
	if err != nil {
		t.Fatalf("driver not created on verify: %v", err)
	}
	if d.ID != result.IdentityID {
		t.Fatalf("identity id mismatch: %d vs %d", d.ID, result.IdentityID)
	}
}

func TestSendCooldown(t *testing.T) {
	svc, _, _ := newOTPFixture()

	base := time.Now()
	svc.now = func() time.Time { return base }

	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	svc.now = func() time.Time { return base.Add(30 * time.Second) }
	_, err := svc.Send("9876543210", models.RoleUser)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rateErr.WaitSeconds <= 0 || rateErr.WaitSeconds > 30 {
		t.Fatalf("unexpected wait seconds %d", rateErr.WaitSeconds)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("rate limit error should match ErrRateLimited")
	}

	// Cooldown elapsed
	svc.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("send after cooldown failed: %v", err)
	}
}

func TestSendCooldownWaitRoundsUp(t *testing.T) {
	svc, _, _ := newOTPFixture()

	base := time.Now()
	svc.now = func() time.Time { return base }
	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// 800ms left in the window: the hint must round up to 1, a zero
	// would tell the client to retry into a rejection.
	svc.now = func() time.Time { return base.Add(59*time.Second + 200*time.Millisecond) }
	_, err := svc.Send("9876543210", models.RoleUser)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rateErr.WaitSeconds != 1 {
		t.Fatalf("expected wait of 1 second, got %d", rateErr.WaitSeconds)
	}
}

func TestCooldownIsPerRole(t *testing.T) {
	svc, _, _ := newOTPFixture()

	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("user send failed: %v", err)
	}
	// Same phone, different role: independent record
	if _, err := svc.Send("9876543210", models.RoleDriver); err != nil {
		t.Fatalf("driver send failed: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, sms, _ := newOTPFixture()

	base := time.Now()
	svc.now = func() time.Time { return base }
	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	code := sms.lastCode(t)

	svc.now = func() time.Time { return base.Add(5*time.Minute + time.Second) }
	if _, err := svc.Verify("9876543210", models.RoleUser, code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestVerifyAttemptCap(t *testing.T) {
	svc, sms, store := newOTPFixture()

	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	code := sms.lastCode(t)
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Verify("9876543210", models.RoleUser, wrong); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i+1, err)
		}
	}

	rec, _ := store.GetOTP("9876543210", models.RoleUser)
	if rec.Attempts != 5 {
		t.Fatalf("expected 5 recorded attempts, got %d", rec.Attempts)
	}

	// Even the correct code is dead now
	if _, err := svc.Verify("9876543210", models.RoleUser, code); !errors.Is(err, ErrTooManyTries) {
		t.Fatalf("expected ErrTooManyTries, got %v", err)
	}
}

func TestVerifyConcurrentAttemptCap(t *testing.T) {
	svc, sms, store := newOTPFixture()

	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	code := sms.lastCode(t)
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	// A parallel burst of wrong guesses must not all slip past the cap
	// on the same stale counter.
	const burst = 20
	errs := make([]error, burst)
	var wg sync.WaitGroup
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Verify("9876543210", models.RoleUser, wrong)
		}(i)
	}
	wg.Wait()

	guesses, capped := 0, 0
	for _, err := range errs {
		switch {
		case errors.Is(err, ErrInvalidCode):
			guesses++
		case errors.Is(err, ErrTooManyTries):
			capped++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if guesses > otpMaxTries {
		t.Fatalf("%d wrong guesses got a code comparison, cap is %d", guesses, otpMaxTries)
	}
	if guesses+capped != burst {
		t.Fatalf("accounted for %d of %d calls", guesses+capped, burst)
	}

	// Every call that reached the counter is recorded, none lost
	rec, err := store.GetOTP("9876543210", models.RoleUser)
	if err != nil {
		t.Fatalf("GetOTP failed: %v", err)
	}
	if rec.Attempts < otpMaxTries {
		t.Fatalf("expected at least %d recorded attempts, got %d", otpMaxTries, rec.Attempts)
	}

	// The record stays dead for the correct code too
	if _, err := svc.Verify("9876543210", models.RoleUser, code); !errors.Is(err, ErrTooManyTries) {
		t.Fatalf("expected ErrTooManyTries, got %v", err)
	}
}

func TestVerifyResetOnResend(t *testing.T) {
	svc, sms, _ := newOTPFixture()

	base := time.Now()
	svc.now = func() time.Time { return base }
	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	code := sms.lastCode(t)
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}
	for i := 0; i < 5; i++ {
		svc.Verify("9876543210", models.RoleUser, wrong)
	}

	// A fresh send resets attempts and the code
	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := svc.Send("9876543210", models.RoleUser); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	fresh := sms.lastCode(t)
	if _, err := svc.Verify("9876543210", models.RoleUser, fresh); err != nil {
		t.Fatalf("verify after resend failed: %v", err)
	}
}

func TestVerifyMissingRecord(t *testing.T) {
	svc, _, _ := newOTPFixture()

	if _, err := svc.Verify("9876543210", models.RoleUser, "1234"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound, got %v", err)
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, _ := newOTPFixture()

	if _, err := svc.Send("12345", models.RoleUser); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
	if _, err := svc.Send("9876543210", "admin"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestSendDeliveryFailureKeepsWindow(t *testing.T) {
	store := storage.NewMemoryStore()
	sms := &fakeSMS{fail: true}
	svc := NewOTPService(store, sms, NewJWTIssuer(testConfig()), NewIdentityResolver(store), false)

	base := time.Now()
	svc.now = func() time.Time { return base }
	if _, err := svc.Send("9876543210", models.RoleUser); !errors.Is(err, ErrDeliveryFail) {
		t.Fatalf("expected delivery failure, got %v", err)
	}

	// The send window was claimed before delivery, so an immediate retry
	// is rate limited even though nothing arrived.
	sms.fail = false
	svc.now = func() time.Time { return base.Add(time.Second) }
	if _, err := svc.Send("9876543210", models.RoleUser); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("expected 4 digits, got %q", code)
		}
		if code < "1000" || code > "9999" {
			t.Fatalf("code out of range: %q", code)
		}
	}
}
