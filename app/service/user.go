package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/vibast-solutions/ms-go-blog/app/entity"
	"github.com/vibast-solutions/ms-go-blog/app/repository"
)

var (
	ErrCredentialTaken    = errors.New("email or username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("credentials are not valid")
)

type fileStorage interface {
	UploadPublicFile(ctx context.Context, body io.Reader, size int64, filename string) (*entity.PublicFile, error)
	DeletePublicFile(ctx context.Context, id uint64) error
}

type UserService struct {
	userRepo *repository.UserRepository
	files    fileStorage
	hasher   *PasswordHasher
}

func NewUserService(userRepo *repository.UserRepository, files fileStorage, hasher *PasswordHasher) *UserService {
	return &UserService{
		userRepo: userRepo,
		files:    files,
		hasher:   hasher,
	}
}

type CreateUserInput struct {
	Email    string
	Username string
	Name     string
	Password string
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Email:        input.Email,
		Username:     input.Username,
		Name:         input.Name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrCredentialTaken
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateUserInput struct {
	Email    *string
	Username *string
	Name     *string
	Bio      *string
}

func (s *UserService) Update(ctx context.Context, userID uint64, input UpdateUserInput) (*entity.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrCredentialTaken
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint64, newPassword string) (*entity.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash

	return user, nil
}

// SetRefreshToken stores a bcrypt fingerprint of the raw refresh token, so a
// presented token can be matched against a single valid value per user.
func (s *UserService) SetRefreshToken(ctx context.Context, userID uint64, refreshToken string) error {
	tokenHash, err := s.hasher.Hash(refreshToken)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateRefreshTokenHash(ctx, userID, sql.NullString{String: tokenHash, Valid: true})
}

// UserIfRefreshTokenMatches resolves the user only when the presented raw
// token matches the stored fingerprint.
func (s *UserService) UserIfRefreshTokenMatches(ctx context.Context, userID uint64, refreshToken string) (*entity.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.RefreshTokenHash.Valid || !s.hasher.Verify(refreshToken, user.RefreshTokenHash.String) {
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (s *UserService) RemoveRefreshToken(ctx context.Context, userID uint64) error {
	return s.userRepo.UpdateRefreshTokenHash(ctx, userID, sql.NullString{})
}

// AddAvatar replaces the user's avatar. The image reference is cleared before
// the old object is deleted, so the row never points at a deleted object.
func (s *UserService) AddAvatar(ctx context.Context, userID uint64, body io.Reader, size int64, filename string) (*entity.PublicFile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Image != nil {
		if err := s.userRepo.UpdateImage(ctx, user.ID, sql.NullInt64{}); err != nil {
			return nil, err
		}
		if err := s.files.DeletePublicFile(ctx, user.Image.ID); err != nil {
			return nil, err
		}
	}

	avatar, err := s.files.UploadPublicFile(ctx, body, size, filename)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateImage(ctx, user.ID, sql.NullInt64{Int64: int64(avatar.ID), Valid: true}); err != nil {
		return nil, err
	}

	return avatar, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uint64) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Image == nil {
		return nil
	}

	if err := s.userRepo.UpdateImage(ctx, user.ID, sql.NullInt64{}); err != nil {
		return err
	}
	return s.files.DeletePublicFile(ctx, user.Image.ID)
}
