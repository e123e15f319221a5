// FilePath: internal/charts/charts.go

// Package charts reshapes flat metric lists from the analytics service
// into time-bucketed series for chart rendering.
package charts

import (
	"sort"
	"strings"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/models"
)

// Field tags a metric with the chart dimension it feeds. Classification
// is an explicit ordered rule table instead of ad-hoc substring checks
// scattered through the rendering code.
type Field int

const (
	FieldUnknown Field = iota
	FieldTemperature
	FieldAirHumidity
	FieldSoilHumidity
	FieldLightIntensity
)

func (f Field) String() string {
	switch f {
	case FieldTemperature:
		return "temperature"
	case FieldAirHumidity:
		return "air_humidity"
	case FieldSoilHumidity:
		return "soil_humidity"
	case FieldLightIntensity:
		return "light_intensity"
	default:
		return "unknown"
	}
}

// fieldRules is evaluated in order; the first token contained in the
// metric name wins. Order puts the longer, more specific tokens first so
// a name embedding another field's token as part of a larger word cannot
// be misclassified.
var fieldRules = []struct {
	token string
	field Field
}{
	{"soil_humidity", FieldSoilHumidity},
	{"air_humidity", FieldAirHumidity},
	{"light_intensity", FieldLightIntensity},
	{"temperature", FieldTemperature},
}

// ClassifyMetricName resolves the chart field for a metric name and
// whether the name marks an averaged series. Unknown names are reported
// as FieldUnknown, never guessed.
func ClassifyMetricName(name string) (field Field, isAverage bool) {
	for _, rule := range fieldRules {
		if strings.Contains(name, rule.token) {
			return rule.field, strings.Contains(name, "average")
		}
	}
	return FieldUnknown, strings.Contains(name, "average")
}

// Point is one chart-ready bucket: same-minute metrics merged into a
// partially-filled record keyed by a local HH:MM label. Nil fields mean
// no reading fell into the bucket.
type Point struct {
	Time         string   `json:"time"`
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	SoilHumidity *float64 `json:"soilHumidity"`
	LightLevel   *float64 `json:"lightLevel"`
}

// CurrentData is the latest surviving bucket with missing fields
// defaulting to zero. A true zero reading is indistinguishable from a
// missing one here; the backend does not let the client resolve that.
type CurrentData struct {
	Temperature  float64 `json:"temperature"`
	AirHumidity  float64 `json:"airHumidity"`
	SoilHumidity float64 `json:"soilHumidity"`
	LightLevel   float64 `json:"lightLevel"`
}

// Options tune the aggregation. The zero value gives 20 points, partial
// buckets dropped, local-time labels.
type Options struct {
	// MaxPoints limits the series to the most recent N buckets; 0 means 20.
	MaxPoints int
	// KeepPartialBuckets keeps buckets that carry neither a temperature
	// nor an air-humidity reading. Note the default drop also discards
	// buckets populated solely with soil-humidity or light readings.
	KeepPartialBuckets bool
	// Location for the HH:MM labels; nil means time.Local.
	Location *time.Location
}

const defaultMaxPoints = 20

// Data is the result of one aggregation pass.
type Data struct {
	Points  []Point
	Current CurrentData
	// Unclassified counts metrics whose names matched no field rule.
	Unclassified int
}

// HasData reports whether any bucket survived the aggregation.
func (d Data) HasData() bool {
	return len(d.Points) > 0
}

// Build folds a flat metric list into minute-resolution buckets:
// averaged series are grouped by HH:MM label, colliding labels merge with
// the newest timestamp winning per field, buckets without a core reading
// are dropped (see Options), and the series is sorted by label with only
// the most recent MaxPoints kept. The fold is order-insensitive: the
// input is sorted by timestamp before grouping, so permuted input lists
// yield identical output.
func Build(metrics []models.Metric, opts Options) Data {
	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = defaultMaxPoints
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	if len(metrics) == 0 {
		return Data{Points: []Point{}}
	}

	// Timestamps are parsed once and compared as instants, so readings
	// with mixed UTC offsets still order chronologically.
	type timedMetric struct {
		models.Metric
		ts    time.Time
		valid bool
	}
	ordered := make([]timedMetric, len(metrics))
	for i, m := range metrics {
		ts, err := time.Parse(time.RFC3339, m.CalculatedAt)
		ordered[i] = timedMetric{Metric: m, ts: ts, valid: err == nil}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.valid != b.valid {
			return !a.valid
		}
		if !a.ts.Equal(b.ts) {
			return a.ts.Before(b.ts)
		}
		if a.MetricName != b.MetricName {
			return a.MetricName < b.MetricName
		}
		return a.Value < b.Value
	})

	buckets := make(map[string]*Point)
	unclassified := 0

	for _, metric := range ordered {
		field, isAverage := ClassifyMetricName(metric.MetricName)
		if field == FieldUnknown {
			unclassified++
			continue
		}
		if !isAverage {
			// Only averaged series feed the chart
			continue
		}

		if !metric.valid {
			nuts.L.Warnf("[Charts] Skipping metric %s with bad timestamp %q", metric.MetricName, metric.CalculatedAt)
			continue
		}
		label := metric.ts.In(loc).Format("15:04")

		bucket, ok := buckets[label]
		if !ok {
			bucket = &Point{Time: label}
			buckets[label] = bucket
		}

		value := metric.Value
		switch field {
		case FieldTemperature:
			bucket.Temperature = &value
		case FieldAirHumidity:
			bucket.Humidity = &value
		case FieldSoilHumidity:
			bucket.SoilHumidity = &value
		case FieldLightIntensity:
			bucket.LightLevel = &value
		}
	}

	points := make([]Point, 0, len(buckets))
	for _, bucket := range buckets {
		if !opts.KeepPartialBuckets && bucket.Temperature == nil && bucket.Humidity == nil {
			continue
		}
		points = append(points, *bucket)
	}

	// Zero-padded HH:MM labels sort correctly as strings
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time < points[j].Time
	})
	if len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}

	return Data{
		Points:       points,
		Current:      currentFromPoints(points),
		Unclassified: unclassified,
	}
}

func currentFromPoints(points []Point) CurrentData {
	if len(points) == 0 {
		return CurrentData{}
	}
	latest := points[len(points)-1]
	return CurrentData{
		Temperature:  deref(latest.Temperature),
		AirHumidity:  deref(latest.Humidity),
		SoilHumidity: deref(latest.SoilHumidity),
		LightLevel:   deref(latest.LightLevel),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Presence reports which fields appear anywhere in a metric list,
// averaged or not.
type Presence struct {
	Temperature  bool
	AirHumidity  bool
	SoilHumidity bool
	Light        bool
}

// MetricPresence scans a metric list for per-field availability flags.
func MetricPresence(metrics []models.Metric) Presence {
	var p Presence
	for _, metric := range metrics {
		field, _ := ClassifyMetricName(metric.MetricName)
		switch field {
		case FieldTemperature:
			p.Temperature = true
		case FieldAirHumidity:
			p.AirHumidity = true
		case FieldSoilHumidity:
			p.SoilHumidity = true
		case FieldLightIntensity:
			p.Light = true
		}
	}
	return p
}

// MetricAverage returns the value of the averaged series for the given
// field, when present.
func MetricAverage(metrics []models.Metric, field Field) (float64, bool) {
	for _, metric := range metrics {
		f, isAverage := ClassifyMetricName(metric.MetricName)
		if f == field && isAverage {
			return metric.Value, true
		}
	}
	return 0, false
}
