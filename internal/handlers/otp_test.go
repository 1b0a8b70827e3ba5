package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/config"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

type stubSMS struct{ lastMessage string }

func (s *stubSMS) Deliver(phone, message string) (string, error) {
	s.lastMessage = message
	return "stub-sid", nil
}

func newOTPApp() (*fiber.App, *stubSMS) {
	store := storage.NewMemoryStore()
	cfg := &config.Config{
		JWTSecret:               "test-secret",
		JWTAccessTokenDuration:  time.Hour,
		JWTRefreshTokenDuration: 24 * time.Hour,
	}
	sms := &stubSMS{}
	svc := services.NewOTPService(store, sms,
		services.NewJWTIssuer(cfg), services.NewIdentityResolver(store), false)

	app := fiber.New()
	h := NewOTPHandler(svc)
	app.Post("/api/otp/send", h.SendOTP)
	app.Post("/api/otp/verify", h.VerifyOTP)
	return app, sms
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return body
}

func TestSendOTPEndpoint(t *testing.T) {
	app, sms := newOTPApp()

	resp := postJSON(t, app, "/api/otp/send", fiber.Map{
		"phone": "9876543210",
		"role":  "user",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if sms.lastMessage == "" {
		t.Fatal("no SMS delivered")
	}

	// The response never carries the code
	body := decodeBody(t, resp)
	if _, ok := body["otp"]; ok {
		t.Fatal("response must not contain the code")
	}

	// Immediate resend hits the cooldown
	resp = postJSON(t, app, "/api/otp/send", fiber.Map{
		"phone": "9876543210",
		"role":  "user",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if _, ok := body["wait_seconds"]; !ok {
		t.Fatal("429 body should carry wait_seconds")
	}
}

func TestSendOTPEndpointValidation(t *testing.T) {
	app, _ := newOTPApp()

	resp := postJSON(t, app, "/api/otp/send", fiber.Map{
		"phone": "12345",
		"role":  "ghost",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestVerifyOTPEndpoint(t *testing.T) {
	app, sms := newOTPApp()

	resp := postJSON(t, app, "/api/otp/send", fiber.Map{
		"phone": "9876543210",
		"role":  "driver",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send failed with %d", resp.StatusCode)
	}

	msg := sms.lastMessage
	code := msg[len(msg)-4:]

	resp = postJSON(t, app, "/api/otp/verify", fiber.Map{
		"phone": "9876543210",
		"otp":   code,
		"role":  "driver",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	tokens, ok := body["tokens"].(map[string]any)
	if !ok {
		t.Fatalf("expected tokens in body, got %v", body)
	}
	if tokens["access"] == "" || tokens["refresh"] == "" {
		t.Fatal("expected a full token pair")
	}
	if body["role"] != "driver" {
		t.Fatalf("expected role driver, got %v", body["role"])
	}
}

func TestVerifyOTPEndpointUnknownPhone(t *testing.T) {
	app, _ := newOTPApp()

	resp := postJSON(t, app, "/api/otp/verify", fiber.Map{
		"phone": "9876543210",
		"otp":   "1234",
		"role":  "user",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
