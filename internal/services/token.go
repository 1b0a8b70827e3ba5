package services

import (
	"github.com/transitlink/fleet-backend/internal/config"
	"github.com/transitlink/fleet-backend/pkg/jwt"
)

// TokenIssuer mints bearer credentials for a resolved identity
type TokenIssuer interface {
	Issue(userID uint, role string) (*jwt.TokenPair, error)
}

// JWTIssuer issues HS256 access/refresh pairs using the configured
// secret and durations
type JWTIssuer struct {
	cfg *config.Config
}

func NewJWTIssuer(cfg *config.Config) *JWTIssuer {
	return &JWTIssuer{cfg: cfg}
}

func (j *JWTIssuer) Issue(userID uint, role string) (*jwt.TokenPair, error) {
	return jwt.GeneratePair(userID, role, j.cfg.JWTSecret,
		j.cfg.JWTAccessTokenDuration, j.cfg.JWTRefreshTokenDuration)
}
