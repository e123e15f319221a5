// FilePath: internal/sproutservice/sproutservice.analytics.go
package sproutservice

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/plantsense/sprout/internal/charts"
	"github.com/plantsense/sprout/internal/models"
	"github.com/plantsense/sprout/internal/querycache"
	"github.com/plantsense/sprout/internal/realtime"
)

// DefaultChartMetrics is the fixed metric-name set charts are built from.
var DefaultChartMetrics = []string{"temperature", "air_humidity", "soil_humidity", "light_intensity"}

const (
	defaultChartWindow = 24 * time.Hour
	defaultChartLimit  = 100
)

// AnalyticsHealth checks the analytics service through the cache.
func (s *SproutService) AnalyticsHealth(ctx context.Context) (*models.AnalyticsHealth, error) {
	key := querycache.Key(keyAnalytics, "health")
	return querycache.Fetch(ctx, s.Cache, key, staleHealth, func(ctx context.Context) (*models.AnalyticsHealth, error) {
		return s.Services.Analytics.Health(ctx)
	})
}

// SupportedMetrics lists supported metric names through the cache.
func (s *SproutService) SupportedMetrics(ctx context.Context) ([]string, error) {
	key := querycache.Key(keyAnalytics, "supported-metrics")
	return querycache.Fetch(ctx, s.Cache, key, staleSupportedMetrics, func(ctx context.Context) ([]string, error) {
		return s.Services.Analytics.SupportedMetrics(ctx)
	})
}

// MultiReport fetches a multi-metric report through the cache.
func (s *SproutService) MultiReport(ctx context.Context, input models.MultiMetricReportInput) (*models.MultiMetricReport, error) {
	key := multiReportKey(input)
	return querycache.Fetch(ctx, s.Cache, key, staleReport, func(ctx context.Context) (*models.MultiMetricReport, error) {
		return s.Services.Analytics.MultiReport(ctx, input)
	})
}

// SingleReport fetches a single-metric report through the cache.
func (s *SproutService) SingleReport(ctx context.Context, metricName string, params models.ReportParams) (*models.AnalyticsReport, error) {
	key := querycache.Key(keyAnalytics, "single", metricName, params.ControllerID,
		truncateToMinute(params.StartTime), truncateToMinute(params.EndTime), strconv.Itoa(params.Limit))
	return querycache.Fetch(ctx, s.Cache, key, staleReport, func(ctx context.Context) (*models.AnalyticsReport, error) {
		return s.Services.Analytics.SingleReport(ctx, metricName, params)
	})
}

// Trend fetches a trend analysis through the cache.
func (s *SproutService) Trend(ctx context.Context, metricName string, params models.TrendParams) (*models.TrendAnalysis, error) {
	key := querycache.Key(keyAnalytics, "trend", metricName, params.ControllerID,
		truncateToMinute(params.StartTime), truncateToMinute(params.EndTime), params.Interval)
	return querycache.Fetch(ctx, s.Cache, key, staleTrend, func(ctx context.Context) (*models.TrendAnalysis, error) {
		return s.Services.Analytics.Trends(ctx, metricName, params)
	})
}

// LatestMeasurement always fetches fresh (stale time zero); concurrent
// callers for the same controller still share one in-flight request.
func (s *SproutService) LatestMeasurement(ctx context.Context, controllerID string) (*models.LatestMeasurement, error) {
	key := querycache.Key(keyAnalytics, "latest", controllerID)
	return querycache.Fetch(ctx, s.Cache, key, 0, func(ctx context.Context) (*models.LatestMeasurement, error) {
		return s.Services.Analytics.Latest(ctx, controllerID)
	})
}

// NewMonitor creates a realtime monitor for one controller.
func (s *SproutService) NewMonitor(controllerID string, handler func(realtime.Update), opts realtime.Options) *realtime.Monitor {
	return realtime.NewMonitor(s.Services.Analytics, controllerID, handler, opts)
}

// ChartResult bundles the reshaped chart series with the raw metrics and
// per-field availability.
type ChartResult struct {
	Chart    charts.Data
	Metrics  []models.Metric
	Presence charts.Presence
}

// HasData reports whether any chart bucket survived aggregation.
func (r ChartResult) HasData() bool {
	return r.Chart.HasData()
}

// ChartData fetches the default multi-metric report for a controller and
// reshapes it into chart buckets: last 24 hours, 100 data points. An
// empty controller identifier issues no fetch and yields an empty result.
func (s *SproutService) ChartData(ctx context.Context, controllerID string, opts charts.Options) (*ChartResult, error) {
	if controllerID == "" {
		return &ChartResult{Chart: charts.Data{Points: []charts.Point{}}}, nil
	}

	now := time.Now()
	input := models.MultiMetricReportInput{
		ControllerID: controllerID,
		Metrics:      DefaultChartMetrics,
		StartTime:    now.Add(-defaultChartWindow).UTC().Format(time.RFC3339),
		EndTime:      now.UTC().Format(time.RFC3339),
		Limit:        defaultChartLimit,
	}

	report, err := s.MultiReport(ctx, input)
	if err != nil {
		return nil, err
	}

	return &ChartResult{
		Chart:    charts.Build(report.Metrics, opts),
		Metrics:  report.Metrics,
		Presence: charts.MetricPresence(report.Metrics),
	}, nil
}

// multiReportKey derives a stable cache key: metric names sorted, window
// boundaries truncated to minute resolution so back-to-back reads of a
// sliding window still hit the cache.
func multiReportKey(input models.MultiMetricReportInput) string {
	metrics := make([]string, len(input.Metrics))
	copy(metrics, input.Metrics)
	sort.Strings(metrics)
	return querycache.Key(keyAnalytics, "multi", input.ControllerID,
		strings.Join(metrics, ","),
		truncateToMinute(input.StartTime), truncateToMinute(input.EndTime),
		strconv.Itoa(input.Limit))
}

func truncateToMinute(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Truncate(time.Minute).Format(time.RFC3339)
}
