// FilePath: internal/sproutservice/sproutservice.devices.go
package sproutservice

import (
	"context"

	"github.com/plantsense/sprout/internal/models"
	"github.com/plantsense/sprout/internal/querycache"
)

// Devices lists all devices through the cache.
func (s *SproutService) Devices(ctx context.Context) ([]models.Device, error) {
	return querycache.Fetch(ctx, s.Cache, keyDevices, s.defaultStale(), func(ctx context.Context) ([]models.Device, error) {
		return s.Services.Devices.List(ctx)
	})
}

// Device fetches one device through the cache.
func (s *SproutService) Device(ctx context.Context, id string) (*models.Device, error) {
	key := querycache.Key(keyDevices, id)
	return querycache.Fetch(ctx, s.Cache, key, s.defaultStale(), func(ctx context.Context) (*models.Device, error) {
		return s.Services.Devices.Get(ctx, id)
	})
}

// Controllers returns the microcontroller devices, whose names double as
// controller identifiers for analytics queries.
func (s *SproutService) Controllers(ctx context.Context) ([]models.Device, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	controllers := devices[:0:0]
	for _, device := range devices {
		if device.Category == models.DeviceCategoryMicrocontroller {
			controllers = append(controllers, device)
		}
	}
	return controllers, nil
}

// CreateDevice registers a device and invalidates the device list.
func (s *SproutService) CreateDevice(ctx context.Context, data models.DeviceCreate) (*models.Device, error) {
	device, err := s.Services.Devices.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateByPrefix(keyDevices)
	return device, nil
}

// UpdateDevice updates a device, invalidates the list and re-primes the
// detail key with the response.
func (s *SproutService) UpdateDevice(ctx context.Context, id string, data models.DeviceUpdate) (*models.Device, error) {
	device, err := s.Services.Devices.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateByPrefix(keyDevices)
	s.Cache.Set(querycache.Key(keyDevices, device.ID), device)
	return device, nil
}

// DeleteDevice removes a device and invalidates device reads.
func (s *SproutService) DeleteDevice(ctx context.Context, id string) error {
	if err := s.Services.Devices.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateByPrefix(keyDevices)
	return nil
}
