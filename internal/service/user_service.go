package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/domain"
	"github.com/velic22/chirp/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name  string  `json:"name"`
	Image *string `json:"image,omitempty"`
}

// UpdateProfile changes the user's display fields. Empty inputs leave the
// current values untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Image != nil {
		user.Image = input.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// Search finds users by case-insensitive username match, excluding the
// searching user. Results carry display fields only.
func (s *UserService) Search(ctx context.Context, selfID uuid.UUID, query string) ([]domain.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserSummary{}, nil
	}

	users, err := s.userRepo.Search(ctx, query, selfID, 5)
	if err != nil {
		return nil, err
	}

	results := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, u.Summary())
	}
	return results, nil
}
