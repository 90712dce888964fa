package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/tripledger/internal/domain"
)

// UserUseCase keeps local user profiles in sync with token identities.
type UserUseCase struct {
	userRepo UserRepository
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

// SyncProfileInput represents the profile of the authenticated user.
type SyncProfileInput struct {
	UserID   string
	Name     string
	Username string
	Email    string
}

// SyncProfile creates or updates the caller's profile.
func (uc *UserUseCase) SyncProfile(ctx context.Context, input SyncProfileInput) (*domain.User, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Username:  strings.TrimSpace(input.Username),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		CreatedAt: time.Now().UTC(),
	}
	if user.Name == "" && user.Username == "" {
		user.Username = input.UserID
	}

	if err := uc.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
