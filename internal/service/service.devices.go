// FilePath: internal/service/service.devices.go
package service

import (
	"context"

	"github.com/plantsense/sprout/internal/models"
)

// DevicesService maps the device CRUD endpoints.
type DevicesService struct {
	client HTTPClient
}

// List fetches all registered devices.
func (s *DevicesService) List(ctx context.Context) ([]models.Device, error) {
	devices := []models.Device{}
	if err := s.client.Get(ctx, apiBase+"/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Get fetches a single device by ID.
func (s *DevicesService) Get(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	if err := s.client.Get(ctx, apiBase+"/devices/"+id, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Create registers a new device.
func (s *DevicesService) Create(ctx context.Context, data models.DeviceCreate) (*models.Device, error) {
	var device models.Device
	if err := s.client.Post(ctx, apiBase+"/devices", data, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Update replaces the descriptive fields of a device.
func (s *DevicesService) Update(ctx context.Context, id string, data models.DeviceUpdate) (*models.Device, error) {
	var device models.Device
	if err := s.client.Put(ctx, apiBase+"/devices/"+id, data, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Delete removes a device.
func (s *DevicesService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, apiBase+"/devices/"+id)
}
