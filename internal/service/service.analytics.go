// FilePath: internal/service/service.analytics.go
package service

import (
	"context"

	"github.com/plantsense/sprout/internal/models"
)

const analyticsBase = apiBase + "/analytics"

// AnalyticsService maps the analytics/metrics endpoints. Queries are keyed
// by controller identifier, the name of the microcontroller device that
// reports the measurements.
type AnalyticsService struct {
	client HTTPClient
}

// Health checks the analytics service and its InfluxDB backend.
func (s *AnalyticsService) Health(ctx context.Context) (*models.AnalyticsHealth, error) {
	var health models.AnalyticsHealth
	if err := s.client.Get(ctx, analyticsBase+"/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// SupportedMetrics lists the metric names the service can report on.
func (s *AnalyticsService) SupportedMetrics(ctx context.Context) ([]string, error) {
	metrics := []string{}
	if err := s.client.Get(ctx, analyticsBase+"/metrics", &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// Latest fetches the newest single measurement of a controller.
func (s *AnalyticsService) Latest(ctx context.Context, controllerID string) (*models.LatestMeasurement, error) {
	var latest models.LatestMeasurement
	if err := s.client.Get(ctx, analyticsBase+"/latest/"+controllerID, &latest); err != nil {
		return nil, err
	}
	return &latest, nil
}

// SingleReport generates a report for one metric over a time window.
func (s *AnalyticsService) SingleReport(ctx context.Context, metricName string, params models.ReportParams) (*models.AnalyticsReport, error) {
	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	var report models.AnalyticsReport
	if err := s.client.GetQuery(ctx, analyticsBase+"/report/"+metricName, query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// MultiReport generates reports for several metrics in one call.
func (s *AnalyticsService) MultiReport(ctx context.Context, input models.MultiMetricReportInput) (*models.MultiMetricReport, error) {
	var report models.MultiMetricReport
	if err := s.client.Post(ctx, analyticsBase+"/multi-report", input, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Trends fetches interval-aggregated history for one metric.
func (s *AnalyticsService) Trends(ctx context.Context, metricName string, params models.TrendParams) (*models.TrendAnalysis, error) {
	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	var trend models.TrendAnalysis
	if err := s.client.GetQuery(ctx, analyticsBase+"/trends/"+metricName, query, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}

// Historical queries raw historical data with filters.
func (s *AnalyticsService) Historical(ctx context.Context, params models.HistoricalParams) (*models.HistoricalData, error) {
	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	var data models.HistoricalData
	if err := s.client.GetQuery(ctx, analyticsBase+"/historical", query, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// HistoricalAverages queries historical data averaged over fixed intervals.
func (s *AnalyticsService) HistoricalAverages(ctx context.Context, params models.HistoricalAveragesParams) (*models.HistoricalData, error) {
	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	var data models.HistoricalData
	if err := s.client.GetQuery(ctx, analyticsBase+"/historical/averages", query, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
