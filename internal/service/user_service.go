package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quickchat/internal/domain"
	"quickchat/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type ProfileInput struct {
	FullName  string  `json:"full_name"`
	Bio       string  `json:"bio"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile changes the user's display fields. The avatar is a
// reference to an already uploaded image; nil leaves it untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = input.FullName
	user.Bio = input.Bio
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}
