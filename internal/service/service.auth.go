// FilePath: internal/service/service.auth.go
package service

import (
	"context"

	"github.com/plantsense/sprout/internal/models"
)

// AuthService maps the auth and user-profile endpoints. Token refresh and
// server-side revocation live in the session store, which performs them
// with its own unauthenticated client.
type AuthService struct {
	client HTTPClient
}

// Login exchanges credentials for a user plus token pair.
func (s *AuthService) Login(ctx context.Context, credentials models.LoginCredentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.client.Post(ctx, apiBase+"/auth/login", credentials, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.client.Post(ctx, apiBase+"/auth/register", data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile fetches a user record.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.client.Get(ctx, apiBase+"/users/"+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	var user models.User
	if err := s.client.Put(ctx, apiBase+"/users/"+userID, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
