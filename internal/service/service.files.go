// FilePath: internal/service/service.files.go
package service

import (
	"context"
	"io"

	"github.com/plantsense/sprout/internal/models"
)

// FileService maps the user profile-photo endpoints.
type FileService struct {
	client HTTPClient
}

// UploadProfilePhoto uploads a profile photo and returns the updated user.
func (s *FileService) UploadProfilePhoto(ctx context.Context, userID, filename string, file io.Reader) (*models.User, error) {
	var user models.User
	if err := s.client.PostMultipart(ctx, apiBase+"/users/"+userID+"/photo", "file", filename, file, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteProfilePhoto removes the user's profile photo.
func (s *FileService) DeleteProfilePhoto(ctx context.Context, userID string) error {
	return s.client.Delete(ctx, apiBase+"/users/"+userID+"/photo")
}

// GetProfilePhotoMetadata fetches metadata about the stored photo.
func (s *FileService) GetProfilePhotoMetadata(ctx context.Context, userID string) (map[string]any, error) {
	metadata := map[string]any{}
	if err := s.client.Get(ctx, apiBase+"/users/"+userID+"/photo/metadata", &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
