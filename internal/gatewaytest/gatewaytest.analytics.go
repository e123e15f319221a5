// FilePath: internal/gatewaytest/gatewaytest.analytics.go
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/plantsense/sprout/internal/models"
)

// SetMetrics seeds the canned metric list served by the report endpoints.
func (g *Gateway) SetMetrics(metrics []models.Metric) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.metrics = metrics
}

// SetLatest seeds the canned latest measurement.
func (g *Gateway) SetLatest(latest models.LatestMeasurement) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest = &latest
}

// SetTrend seeds the canned trend analysis.
func (g *Gateway) SetTrend(trend models.TrendAnalysis) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trend = &trend
}

func (g *Gateway) handleAnalyticsHealth(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	respondJSON(w, http.StatusOK, g.health)
}

func (g *Gateway) handleSupportedMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, []string{
		"temperature", "air_humidity", "soil_humidity", "light_intensity",
	})
}

func (g *Gateway) handleLatest(w http.ResponseWriter, r *http.Request) {
	controller := mux.Vars(r)["controller"]

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.latest == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": "no recent data"})
		return
	}
	latest := *g.latest
	latest.ControllerID = controller
	latest.LastChecked = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, http.StatusOK, latest)
}

func (g *Gateway) handleSingleReport(w http.ResponseWriter, r *http.Request) {
	metricName := mux.Vars(r)["metric"]
	controller := r.URL.Query().Get("controller_id")

	g.mu.Lock()
	defer g.mu.Unlock()
	matched := []models.Metric{}
	for _, metric := range g.metrics {
		if strings.Contains(metric.MetricName, metricName) {
			matched = append(matched, metric)
		}
	}
	if limit := queryInt(r, "limit"); limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	respondJSON(w, http.StatusOK, models.AnalyticsReport{
		ControllerID:    controller,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		DataPointsCount: len(matched),
		Metrics:         matched,
	})
}

func (g *Gateway) handleMultiReport(w http.ResponseWriter, r *http.Request) {
	var input models.MultiMetricReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ControllerID == "" {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid report input"})
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	matched := []models.Metric{}
	for _, metric := range g.metrics {
		for _, name := range input.Metrics {
			if strings.Contains(metric.MetricName, name) {
				matched = append(matched, metric)
				break
			}
		}
	}
	if input.Limit > 0 && len(matched) > input.Limit {
		matched = matched[:input.Limit]
	}

	limit := input.Limit
	respondJSON(w, http.StatusOK, models.MultiMetricReport{
		ControllerID:    input.ControllerID,
		Metrics:         matched,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		DataPointsCount: len(matched),
		FiltersApplied: models.FiltersApplied{
			StartTime: &input.StartTime,
			EndTime:   &input.EndTime,
			Limit:     &limit,
		},
	})
}

func (g *Gateway) handleTrends(w http.ResponseWriter, r *http.Request) {
	metricName := mux.Vars(r)["metric"]

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.trend != nil {
		respondJSON(w, http.StatusOK, g.trend)
		return
	}
	respondJSON(w, http.StatusOK, models.TrendAnalysis{
		MetricName:   metricName,
		ControllerID: r.URL.Query().Get("controller_id"),
		Interval:     r.URL.Query().Get("interval"),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		DataPoints:   []models.TrendDataPoint{},
	})
}
