package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
	"github.com/transitlink/fleet-backend/pkg/jwt"
)

// ErrInvalidCredentials covers both unknown email and wrong password so
// the response does not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles email/password login for drivers and conductors.
// OTP login is the primary path; this exists for operator tooling.
type AuthService struct {
	store  storage.Store
	tokens TokenIssuer
}

func NewAuthService(store storage.Store, tokens TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// HashPassword bcrypts a signup password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LoginDriver authenticates a driver by email and password
func (s *AuthService) LoginDriver(email, password string) (*jwt.TokenPair, *models.Driver, error) {
	driver, err := s.store.GetDriverByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(driver.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(driver.ID, models.RoleDriver)
	if err != nil {
		return nil, nil, err
	}
	return tokens, driver, nil
}

// LoginConductor authenticates a conductor by email and password
func (s *AuthService) LoginConductor(email, password string) (*jwt.TokenPair, *models.Conductor, error) {
	conductor, err := s.store.GetConductorByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(conductor.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(conductor.ID, models.RoleConductor)
	if err != nil {
		return nil, nil, err
	}
	return tokens, conductor, nil
}
