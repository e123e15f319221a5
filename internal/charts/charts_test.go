// FilePath: internal/charts/charts_test.go

package charts

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsense/sprout/internal/models"
)

func metric(name string, value float64, calculatedAt string) models.Metric {
	return models.Metric{
		MetricName:   name,
		Value:        value,
		Unit:         "x",
		CalculatedAt: calculatedAt,
		ControllerID: "ctl_test",
	}
}

func TestClassifyMetricName(t *testing.T) {
	tests := []struct {
		name      string
		field     Field
		isAverage bool
	}{
		{"temperature_average", FieldTemperature, true},
		{"temperature_max", FieldTemperature, false},
		{"air_humidity_average", FieldAirHumidity, true},
		{"soil_humidity_average", FieldSoilHumidity, true},
		{"light_intensity_average", FieldLightIntensity, true},
		{"battery_voltage", FieldUnknown, false},
		{"ph_average", FieldUnknown, true},
	}
	for _, tt := range tests {
		field, isAverage := ClassifyMetricName(tt.name)
		assert.Equal(t, tt.field, field, tt.name)
		assert.Equal(t, tt.isAverage, isAverage, tt.name)
	}
}

func TestBuildSingleBucket(t *testing.T) {
	at := "2026-03-14T10:30:00Z"
	data := Build([]models.Metric{
		metric("temperature_average", 22.5, at),
		metric("air_humidity_average", 60, at),
	}, Options{Location: time.UTC})

	require.Len(t, data.Points, 1)
	point := data.Points[0]
	assert.Equal(t, "10:30", point.Time)
	require.NotNil(t, point.Temperature)
	assert.Equal(t, 22.5, *point.Temperature)
	require.NotNil(t, point.Humidity)
	assert.Equal(t, 60.0, *point.Humidity)
	assert.Nil(t, point.SoilHumidity)
	assert.Nil(t, point.LightLevel)

	assert.Equal(t, 22.5, data.Current.Temperature)
	assert.Equal(t, 60.0, data.Current.AirHumidity)
	assert.Zero(t, data.Current.SoilHumidity)
	assert.Zero(t, data.Current.LightLevel)
	assert.True(t, data.HasData())
	assert.Zero(t, data.Unclassified)
}

func TestBuildEmptyInput(t *testing.T) {
	data := Build(nil, Options{})

	assert.False(t, data.HasData())
	assert.Empty(t, data.Points)
	assert.Equal(t, CurrentData{}, data.Current)
}

func TestBuildOrderInsensitive(t *testing.T) {
	metrics := []models.Metric{
		metric("temperature_average", 20, "2026-03-14T10:00:00Z"),
		metric("air_humidity_average", 55, "2026-03-14T10:00:00Z"),
		metric("temperature_average", 21, "2026-03-14T10:01:00Z"),
		metric("air_humidity_average", 56, "2026-03-14T10:01:00Z"),
		metric("soil_humidity_average", 40, "2026-03-14T10:01:00Z"),
		metric("temperature_average", 19.5, "2026-03-14T10:02:00Z"),
	}
	opts := Options{Location: time.UTC}
	want := Build(metrics, opts)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Metric, len(metrics))
		copy(shuffled, metrics)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Build(shuffled, opts))
	}
}

func TestBuildNewestWinsOnLabelCollision(t *testing.T) {
	// Same HH:MM label, different seconds: the later reading must win.
	data := Build([]models.Metric{
		metric("temperature_average", 21, "2026-03-14T10:30:45Z"),
		metric("temperature_average", 20, "2026-03-14T10:30:10Z"),
	}, Options{Location: time.UTC, KeepPartialBuckets: true})

	require.Len(t, data.Points, 1)
	require.NotNil(t, data.Points[0].Temperature)
	assert.Equal(t, 21.0, *data.Points[0].Temperature)
}

func TestBuildOrdersMixedOffsetsByInstant(t *testing.T) {
	// 12:30:00+02:00 is 10:30:00 UTC, thirty seconds older than
	// 10:30:30Z even though it sorts later as a raw string. Both land in
	// the 10:30 bucket and the chronologically newer reading must win.
	data := Build([]models.Metric{
		metric("temperature_average", 19, "2026-03-14T12:30:00+02:00"),
		metric("temperature_average", 21, "2026-03-14T10:30:30Z"),
	}, Options{Location: time.UTC, KeepPartialBuckets: true})

	require.Len(t, data.Points, 1)
	assert.Equal(t, "10:30", data.Points[0].Time)
	require.NotNil(t, data.Points[0].Temperature)
	assert.Equal(t, 21.0, *data.Points[0].Temperature)
}

func TestBuildDropsPartialBuckets(t *testing.T) {
	metrics := []models.Metric{
		metric("soil_humidity_average", 35, "2026-03-14T10:00:00Z"),
		metric("light_intensity_average", 800, "2026-03-14T10:01:00Z"),
		metric("temperature_average", 22, "2026-03-14T10:02:00Z"),
	}

	dropped := Build(metrics, Options{Location: time.UTC})
	require.Len(t, dropped.Points, 1)
	assert.Equal(t, "10:02", dropped.Points[0].Time)

	kept := Build(metrics, Options{Location: time.UTC, KeepPartialBuckets: true})
	assert.Len(t, kept.Points, 3)
}

func TestBuildSkipsNonAverageAndCountsUnknown(t *testing.T) {
	data := Build([]models.Metric{
		metric("temperature_max", 30, "2026-03-14T10:00:00Z"),
		metric("temperature_average", 22, "2026-03-14T10:00:00Z"),
		metric("air_humidity_average", 50, "2026-03-14T10:00:00Z"),
		metric("battery_voltage", 3.7, "2026-03-14T10:00:00Z"),
	}, Options{Location: time.UTC})

	require.Len(t, data.Points, 1)
	assert.Equal(t, 22.0, *data.Points[0].Temperature)
	assert.Equal(t, 1, data.Unclassified)
}

func TestBuildSkipsBadTimestamps(t *testing.T) {
	data := Build([]models.Metric{
		metric("temperature_average", 22, "not-a-timestamp"),
		metric("temperature_average", 23, "2026-03-14T10:00:00Z"),
	}, Options{Location: time.UTC, KeepPartialBuckets: true})

	require.Len(t, data.Points, 1)
	assert.Equal(t, 23.0, *data.Points[0].Temperature)
}

func TestBuildLimitsToMaxPoints(t *testing.T) {
	var metrics []models.Metric
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		at := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		metrics = append(metrics, metric("temperature_average", float64(i), at))
	}

	data := Build(metrics, Options{Location: time.UTC, KeepPartialBuckets: true, MaxPoints: 5})

	require.Len(t, data.Points, 5)
	// The most recent buckets survive, in label order.
	assert.Equal(t, "08:25", data.Points[0].Time)
	assert.Equal(t, "08:29", data.Points[4].Time)
	assert.Equal(t, 29.0, data.Current.Temperature)
}

func TestBuildDefaultMaxPoints(t *testing.T) {
	var metrics []models.Metric
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		at := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		metrics = append(metrics, metric("temperature_average", float64(i), at))
	}

	data := Build(metrics, Options{Location: time.UTC, KeepPartialBuckets: true})
	assert.Len(t, data.Points, defaultMaxPoints)
}

func TestMetricPresence(t *testing.T) {
	p := MetricPresence([]models.Metric{
		metric("temperature_max", 30, "2026-03-14T10:00:00Z"),
		metric("soil_humidity_average", 40, "2026-03-14T10:00:00Z"),
		metric("battery_voltage", 3.7, "2026-03-14T10:00:00Z"),
	})

	assert.True(t, p.Temperature)
	assert.True(t, p.SoilHumidity)
	assert.False(t, p.AirHumidity)
	assert.False(t, p.Light)
}

func TestMetricAverage(t *testing.T) {
	metrics := []models.Metric{
		metric("temperature_max", 30, "2026-03-14T10:00:00Z"),
		metric("temperature_average", 22.5, "2026-03-14T10:00:00Z"),
	}

	value, ok := MetricAverage(metrics, FieldTemperature)
	require.True(t, ok)
	assert.Equal(t, 22.5, value)

	_, ok = MetricAverage(metrics, FieldAirHumidity)
	assert.False(t, ok)
}
