// FilePath: internal/sproutservice/sproutservice.auth.go
package sproutservice

import (
	"context"
	"io"

	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/errors"
	"github.com/plantsense/sprout/internal/models"
	"github.com/plantsense/sprout/internal/querycache"
)

// Login signs in and stores the session.
func (s *SproutService) Login(ctx context.Context, credentials models.LoginCredentials) (*models.User, error) {
	resp, err := s.Services.Auth.Login(ctx, credentials)
	if err != nil {
		return nil, err
	}
	if err := s.Session.Login(resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates an account and signs it in.
func (s *SproutService) Register(ctx context.Context, data models.RegisterData) (*models.User, error) {
	resp, err := s.Services.Auth.Register(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.Session.Login(resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout clears the session and drops all cached data.
func (s *SproutService) Logout(ctx context.Context) error {
	err := s.Session.Logout(ctx)
	s.Cache.Clear()
	return err
}

// Profile fetches the signed-in user's profile through the cache.
func (s *SproutService) Profile(ctx context.Context) (*models.User, error) {
	user := s.Session.User()
	if user == nil {
		return nil, errors.NewAuthError("not signed in", nil)
	}
	key := querycache.Key(keyProfile, user.ID)
	return querycache.Fetch(ctx, s.Cache, key, s.defaultStale(), func(ctx context.Context) (*models.User, error) {
		return s.Services.Auth.GetProfile(ctx, user.ID)
	})
}

// UpdateProfile updates the profile, re-primes the session user and
// invalidates cached profile reads.
func (s *SproutService) UpdateProfile(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	user := s.Session.User()
	if user == nil {
		return nil, errors.NewAuthError("not signed in", nil)
	}
	updated, err := s.Services.Auth.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return nil, err
	}
	s.Session.UpdateUser(*updated)
	s.Cache.InvalidateByPrefix(keyProfile)
	return updated, nil
}

// UploadProfilePhoto uploads a new profile photo and invalidates cached
// profile reads.
func (s *SproutService) UploadProfilePhoto(ctx context.Context, filename string, file io.Reader) (*models.User, error) {
	user := s.Session.User()
	if user == nil {
		return nil, errors.NewAuthError("not signed in", nil)
	}
	updated, err := s.Services.Files.UploadProfilePhoto(ctx, user.ID, filename, file)
	if err != nil {
		return nil, err
	}
	s.Session.UpdateUser(*updated)
	s.Cache.InvalidateByPrefix(keyProfile)
	nuts.L.Infof("[SproutService] Profile photo updated for %s", user.Email)
	return updated, nil
}
