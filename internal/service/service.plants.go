// FilePath: internal/service/service.plants.go
package service

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/plantsense/sprout/internal/models"
)

// PlantsService maps the plant CRUD and per-plant monitoring endpoints.
type PlantsService struct {
	client HTTPClient
}

// List fetches all plants of the current user.
func (s *PlantsService) List(ctx context.Context) ([]models.Plant, error) {
	plants := []models.Plant{}
	if err := s.client.Get(ctx, apiBase+"/plants", &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// Get fetches a single plant by ID.
func (s *PlantsService) Get(ctx context.Context, id string) (*models.Plant, error) {
	var plant models.Plant
	if err := s.client.Get(ctx, apiBase+"/plants/"+id, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// Create registers a new plant.
func (s *PlantsService) Create(ctx context.Context, data models.PlantCreate) (*models.Plant, error) {
	var plant models.Plant
	if err := s.client.Post(ctx, apiBase+"/plants", data, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// Update replaces the descriptive fields of a plant.
func (s *PlantsService) Update(ctx context.Context, id string, data models.PlantUpdate) (*models.Plant, error) {
	var plant models.Plant
	if err := s.client.Put(ctx, apiBase+"/plants/"+id, data, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// Delete removes a plant.
func (s *PlantsService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, apiBase+"/plants/"+id)
}

// Metrics fetches per-sensor reading series for the last N hours.
func (s *PlantsService) Metrics(ctx context.Context, plantID string, hours int) (*models.PlantMetrics, error) {
	query := url.Values{"hours": []string{strconv.Itoa(hours)}}
	var metrics models.PlantMetrics
	if err := s.client.GetQuery(ctx, apiBase+"/plants/"+plantID+"/metrics", query, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// CurrentMetrics fetches the latest spot values for a plant.
func (s *PlantsService) CurrentMetrics(ctx context.Context, plantID string) (*models.CurrentMetrics, error) {
	var current models.CurrentMetrics
	if err := s.client.Get(ctx, apiBase+"/plants/"+plantID+"/current-metrics", &current); err != nil {
		return nil, err
	}
	return &current, nil
}

// Alerts fetches open advisories for a plant.
func (s *PlantsService) Alerts(ctx context.Context, plantID string) ([]models.PlantAlert, error) {
	alerts := []models.PlantAlert{}
	if err := s.client.Get(ctx, apiBase+"/plants/"+plantID+"/alerts", &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// UploadPhoto attaches a photo to a plant via multipart upload.
func (s *PlantsService) UploadPhoto(ctx context.Context, plantID, filename string, file io.Reader) (*models.Plant, error) {
	var plant models.Plant
	if err := s.client.PostMultipart(ctx, apiBase+"/plants/"+plantID+"/photo", "file", filename, file, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}
