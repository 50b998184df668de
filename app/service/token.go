package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-blog/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers signature mismatch, structural corruption and expiry
// alike; callers treat any failure as unauthenticated.
var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs access and refresh tokens with distinct secrets and TTLs.
type TokenIssuer struct {
	cfg *config.Config
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

func (i *TokenIssuer) IssueAccess(userID uint64) (string, error) {
	return i.issue(userID, i.cfg.JWTAccessTokenSecret, i.cfg.JWTAccessTokenTTL)
}

func (i *TokenIssuer) IssueRefresh(userID uint64) (string, error) {
	return i.issue(userID, i.cfg.JWTRefreshTokenSecret, i.cfg.JWTRefreshTokenTTL)
}

func (i *TokenIssuer) VerifyAccess(tokenString string) (*Claims, error) {
	return i.verify(tokenString, i.cfg.JWTAccessTokenSecret)
}

func (i *TokenIssuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return i.verify(tokenString, i.cfg.JWTRefreshTokenSecret)
}

func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.cfg.JWTAccessTokenTTL
}

func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.cfg.JWTRefreshTokenTTL
}

func (i *TokenIssuer) issue(userID uint64, secret string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (i *TokenIssuer) verify(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
