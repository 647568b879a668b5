package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/store/users"
)

// UserService manages the single locally-authenticated identity. It also
// serves as the gateway's identity source: the stored username rides on
// every outbound request.
type UserService struct {
	users users.Repository
}

func NewUserService(repo users.Repository) *UserService {
	return &UserService{users: repo}
}

func (s *UserService) Get(ctx context.Context) (*models.User, error) {
	return s.users.Get(ctx)
}

// Save stores u as the local identity, replacing any previous one.
func (s *UserService) Save(ctx context.Context, username, displayName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}

	u := &models.User{
		Username:    username,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Username implements gateway.IdentitySource. It returns "" with
// common.ErrNotFound when no user has been stored yet.
func (s *UserService) Username(ctx context.Context) (string, error) {
	u, err := s.users.Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
