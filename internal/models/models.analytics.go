// FilePath: internal/models/models.analytics.go
package models

// Metric is a single named, timestamped measurement produced by the
// analytics service. Immutable on the client; only read and regrouped.
type Metric struct {
	MetricName   string  `json:"metric_name"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	CalculatedAt string  `json:"calculated_at"`
	ControllerID string  `json:"controller_id"`
	Description  *string `json:"description"`
}

// FiltersApplied echoes the window/limit the analytics service used
type FiltersApplied struct {
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Limit     *int    `json:"limit"`
}

// MultiMetricReport is the response of POST /analytics/multi-report
type MultiMetricReport struct {
	ControllerID    string         `json:"controller_id"`
	Metrics         []Metric       `json:"metrics"`
	GeneratedAt     string         `json:"generated_at"`
	DataPointsCount int            `json:"data_points_count"`
	FiltersApplied  FiltersApplied `json:"filters_applied"`
}

// MultiMetricReportInput selects controller, metric names and window
type MultiMetricReportInput struct {
	ControllerID string   `json:"controller_id"`
	Metrics      []string `json:"metrics"`
	StartTime    string   `json:"start_time,omitempty"`
	EndTime      string   `json:"end_time,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// ReportParams are the query parameters of GET /analytics/report/{metric}.
// Encoded with gorilla/schema.
type ReportParams struct {
	ControllerID string `schema:"controller_id"`
	StartTime    string `schema:"start_time,omitempty"`
	EndTime      string `schema:"end_time,omitempty"`
	Limit        int    `schema:"limit,omitempty"`
}

// AnalyticsReport is the response of GET /analytics/report/{metric}
type AnalyticsReport struct {
	ControllerID    string   `json:"controller_id"`
	GeneratedAt     string   `json:"generated_at"`
	DataPointsCount int      `json:"data_points_count"`
	Metrics         []Metric `json:"metrics"`
}

// LatestMeasurement is the response of GET /analytics/latest/{controller}
type LatestMeasurement struct {
	ControllerID   string  `json:"controller_id"`
	Measurement    Metric  `json:"measurement"`
	Status         string  `json:"status"`
	LastChecked    string  `json:"last_checked"`
	DataAgeMinutes float64 `json:"data_age_minutes"`
}

// TrendParams are the query parameters of GET /analytics/trends/{metric}
type TrendParams struct {
	ControllerID string `schema:"controller_id"`
	StartTime    string `schema:"start_time"`
	EndTime      string `schema:"end_time"`
	Interval     string `schema:"interval"`
}

// TrendDataPoint is one aggregated interval in a trend analysis
type TrendDataPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Interval  string  `json:"interval"`
}

// TrendAnalysis is the response of GET /analytics/trends/{metric}
type TrendAnalysis struct {
	MetricName   string           `json:"metricName"`
	ControllerID string           `json:"controllerId"`
	Interval     string           `json:"interval"`
	GeneratedAt  string           `json:"generatedAt"`
	TotalPoints  int              `json:"totalPoints"`
	AverageValue float64          `json:"averageValue"`
	MinValue     float64          `json:"minValue"`
	MaxValue     float64          `json:"maxValue"`
	DataPoints   []TrendDataPoint `json:"dataPoints"`
}

// HistoricalParams are the query parameters of GET /analytics/historical
type HistoricalParams struct {
	StartTime    string `schema:"start_time"`
	EndTime      string `schema:"end_time"`
	ControllerID string `schema:"controller_id,omitempty"`
	SensorID     string `schema:"sensor_id,omitempty"`
	Parameter    string `schema:"parameter,omitempty"`
	Limit        int    `schema:"limit,omitempty"`
}

// HistoricalAveragesParams are the query parameters of
// GET /analytics/historical/averages
type HistoricalAveragesParams struct {
	AverageInterval int    `schema:"average_interval"`
	StartTime       string `schema:"start_time"`
	EndTime         string `schema:"end_time"`
	ControllerID    string `schema:"controller_id,omitempty"`
	SensorID        string `schema:"sensor_id,omitempty"`
	Parameter       string `schema:"parameter,omitempty"`
}

// HistoricalData is the loosely typed response of the historical endpoints
type HistoricalData struct {
	DataPoints []map[string]any `json:"data_points"`
	Count      int              `json:"count"`
}

// AnalyticsHealth is the response of GET /analytics/health
type AnalyticsHealth struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	InfluxDB    string `json:"influxdb"`
	InfluxDBURL string `json:"influxdbUrl"`
	Timestamp   string `json:"timestamp"`
}
