// FilePath: internal/sproutservice/sproutservice.plants.go
package sproutservice

import (
	"context"
	"io"

	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/models"
	"github.com/plantsense/sprout/internal/querycache"
)

// Plants lists all plants through the cache.
func (s *SproutService) Plants(ctx context.Context) ([]models.Plant, error) {
	return querycache.Fetch(ctx, s.Cache, keyPlants, s.defaultStale(), func(ctx context.Context) ([]models.Plant, error) {
		return s.Services.Plants.List(ctx)
	})
}

// Plant fetches one plant through the cache.
func (s *SproutService) Plant(ctx context.Context, id string) (*models.Plant, error) {
	key := querycache.Key(keyPlants, id)
	return querycache.Fetch(ctx, s.Cache, key, s.defaultStale(), func(ctx context.Context) (*models.Plant, error) {
		return s.Services.Plants.Get(ctx, id)
	})
}

// CreatePlant registers a plant and invalidates the plant list.
func (s *SproutService) CreatePlant(ctx context.Context, data models.PlantCreate) (*models.Plant, error) {
	plant, err := s.Services.Plants.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateByPrefix(keyPlants)
	return plant, nil
}

// PlantWithPhoto is the outcome of CreatePlantWithPhoto. UploadWarning is
// set when the plant was created but the photo upload failed; the plant
// itself is never rolled back.
type PlantWithPhoto struct {
	Plant         *models.Plant
	UploadWarning error
}

// CreatePlantWithPhoto creates a plant and then uploads its photo. A
// failed upload degrades to the UploadWarning on the result instead of an
// error, since the creation already succeeded.
func (s *SproutService) CreatePlantWithPhoto(ctx context.Context, data models.PlantCreate, filename string, photo io.Reader) (*PlantWithPhoto, error) {
	plant, err := s.CreatePlant(ctx, data)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return &PlantWithPhoto{Plant: plant}, nil
	}
	updated, uploadErr := s.UploadPlantPhoto(ctx, plant.ID, filename, photo)
	if uploadErr != nil {
		nuts.L.Warnf("[SproutService] Plant %s created but photo upload failed: %v", plant.ID, uploadErr)
		return &PlantWithPhoto{Plant: plant, UploadWarning: uploadErr}, nil
	}
	return &PlantWithPhoto{Plant: updated}, nil
}

// UpdatePlant updates a plant, invalidates the list and re-primes the
// detail key with the response.
func (s *SproutService) UpdatePlant(ctx context.Context, id string, data models.PlantUpdate) (*models.Plant, error) {
	plant, err := s.Services.Plants.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateByPrefix(keyPlants)
	s.Cache.Set(querycache.Key(keyPlants, plant.ID), plant)
	return plant, nil
}

// DeletePlant removes a plant and invalidates plant reads.
func (s *SproutService) DeletePlant(ctx context.Context, id string) error {
	if err := s.Services.Plants.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.InvalidateByPrefix(keyPlants)
	return nil
}

// UploadPlantPhoto attaches a photo and invalidates plant reads.
func (s *SproutService) UploadPlantPhoto(ctx context.Context, id, filename string, file io.Reader) (*models.Plant, error) {
	plant, err := s.Services.Plants.UploadPhoto(ctx, id, filename, file)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateByPrefix(keyPlants)
	return plant, nil
}

// PlantAlerts fetches open advisories for one plant through the cache.
func (s *SproutService) PlantAlerts(ctx context.Context, id string) ([]models.PlantAlert, error) {
	key := querycache.Key(keyPlants, id, "alerts")
	return querycache.Fetch(ctx, s.Cache, key, staleReport, func(ctx context.Context) ([]models.PlantAlert, error) {
		return s.Services.Plants.Alerts(ctx, id)
	})
}
