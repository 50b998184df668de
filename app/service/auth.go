package service

import (
	"context"
	"net/http"

	"github.com/vibast-solutions/ms-go-blog/app/entity"
)

const (
	AccessTokenCookieName  = "Authentication"
	RefreshTokenCookieName = "Refresh"
)

// AuthService orchestrates sign-up and sign-in and builds the token cookies.
type AuthService struct {
	users  *UserService
	tokens *TokenIssuer
}

func NewAuthService(users *UserService, tokens *TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) SignUp(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	return s.users.Create(ctx, input)
}

// SignIn fails with ErrInvalidCredentials for unknown email and for a wrong
// password alike; the caller must not be able to tell which.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.users.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.users.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) AccessTokenCookie(userID uint64) (*http.Cookie, error) {
	token, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.AccessTTL().Seconds()),
		HttpOnly: true,
	}, nil
}

// RefreshTokenCookie returns the raw token alongside the cookie so its
// fingerprint can be persisted.
func (s *AuthService) RefreshTokenCookie(userID uint64) (string, *http.Cookie, error) {
	token, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return "", nil, err
	}
	return token, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
	}, nil
}

// LogoutCookies expire both token cookies.
func (s *AuthService) LogoutCookies() []*http.Cookie {
	// MaxAge < 0 serializes as Max-Age=0.
	expired := func(name string) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		}
	}
	return []*http.Cookie{
		expired(AccessTokenCookieName),
		expired(RefreshTokenCookieName),
	}
}
