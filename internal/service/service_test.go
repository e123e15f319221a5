// FilePath: internal/service/service_test.go

package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantsense/sprout/internal/models"
)

// recordingClient captures the last call so tests can assert the
// endpoint mapping without a server.
type recordingClient struct {
	method   string
	path     string
	query    url.Values
	body     any
	field    string
	filename string
	err      error
}

func (c *recordingClient) Get(ctx context.Context, path string, out any) error {
	c.method, c.path = "GET", path
	return c.err
}

func (c *recordingClient) GetQuery(ctx context.Context, path string, query url.Values, out any) error {
	c.method, c.path, c.query = "GET", path, query
	return c.err
}

func (c *recordingClient) Post(ctx context.Context, path string, body, out any) error {
	c.method, c.path, c.body = "POST", path, body
	return c.err
}

func (c *recordingClient) Put(ctx context.Context, path string, body, out any) error {
	c.method, c.path, c.body = "PUT", path, body
	return c.err
}

func (c *recordingClient) Delete(ctx context.Context, path string) error {
	c.method, c.path = "DELETE", path
	return c.err
}

func (c *recordingClient) PostMultipart(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	c.method, c.path, c.field, c.filename = "POST", path, field, filename
	return c.err
}

func newRecorded() (*Services, *recordingClient) {
	client := &recordingClient{}
	return New(client, client), client
}

func TestAuthEndpoints(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Auth.Login(ctx, models.LoginCredentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/auth/login", client.method+" "+client.path)

	_, err = services.Auth.Register(ctx, models.RegisterData{Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/auth/register", client.method+" "+client.path)

	_, err = services.Auth.GetProfile(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/users/usr_1", client.method+" "+client.path)

	_, err = services.Auth.UpdateProfile(ctx, "usr_1", models.UserUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "PUT /api/v1/users/usr_1", client.method+" "+client.path)
}

func TestPlantEndpoints(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Plants.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/plants", client.method+" "+client.path)

	_, err = services.Plants.Metrics(ctx, "plt_1", 24)
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/plants/plt_1/metrics", client.method+" "+client.path)
	assert.Equal(t, "24", client.query.Get("hours"))

	_, err = services.Plants.UploadPhoto(ctx, "plt_1", "leaf.jpg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/plants/plt_1/photo", client.method+" "+client.path)
	assert.Equal(t, "file", client.field)
	assert.Equal(t, "leaf.jpg", client.filename)

	require.NoError(t, services.Plants.Delete(ctx, "plt_1"))
	assert.Equal(t, "DELETE /api/v1/plants/plt_1", client.method+" "+client.path)
}

func TestDeviceEndpoints(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Devices.Create(ctx, models.DeviceCreate{Name: "esp32", Category: models.DeviceCategoryMicrocontroller})
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/devices", client.method+" "+client.path)

	_, err = services.Devices.Get(ctx, "dev_1")
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/devices/dev_1", client.method+" "+client.path)
}

func TestFileEndpoints(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Files.UploadProfilePhoto(ctx, "usr_1", "me.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/users/usr_1/photo", client.method+" "+client.path)

	require.NoError(t, services.Files.DeleteProfilePhoto(ctx, "usr_1"))
	assert.Equal(t, "DELETE /api/v1/users/usr_1/photo", client.method+" "+client.path)

	_, err = services.Files.GetProfilePhotoMetadata(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/users/usr_1/photo/metadata", client.method+" "+client.path)
}

func TestAnalyticsQueryEncoding(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Analytics.SingleReport(ctx, "temperature", models.ReportParams{
		ControllerID: "ctl_1",
		StartTime:    "2026-03-14T09:00:00Z",
		Limit:        50,
	})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/report/temperature", client.method+" "+client.path)
	assert.Equal(t, "ctl_1", client.query.Get("controller_id"))
	assert.Equal(t, "2026-03-14T09:00:00Z", client.query.Get("start_time"))
	assert.Equal(t, "50", client.query.Get("limit"))
	// Empty omitempty fields stay out of the query string.
	_, present := client.query["end_time"]
	assert.False(t, present)

	_, err = services.Analytics.Trends(ctx, "temperature", models.TrendParams{
		ControllerID: "ctl_1",
		StartTime:    "2026-03-14T09:00:00Z",
		EndTime:      "2026-03-14T10:00:00Z",
		Interval:     "hourly",
	})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/trends/temperature", client.method+" "+client.path)
	assert.Equal(t, "hourly", client.query.Get("interval"))
}

func TestAnalyticsEndpoints(t *testing.T) {
	services, client := newRecorded()
	ctx := context.Background()

	_, err := services.Analytics.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/health", client.method+" "+client.path)

	_, err = services.Analytics.Latest(ctx, "ctl_1")
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/latest/ctl_1", client.method+" "+client.path)

	input := models.MultiMetricReportInput{ControllerID: "ctl_1", Metrics: []string{"temperature"}}
	_, err = services.Analytics.MultiReport(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "POST /api/v1/analytics/multi-report", client.method+" "+client.path)
	assert.Equal(t, input, client.body)

	_, err = services.Analytics.Historical(ctx, models.HistoricalParams{
		StartTime: "2026-03-14T09:00:00Z",
		EndTime:   "2026-03-14T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/historical", client.method+" "+client.path)

	_, err = services.Analytics.HistoricalAverages(ctx, models.HistoricalAveragesParams{
		AverageInterval: 60,
		StartTime:       "2026-03-14T09:00:00Z",
		EndTime:         "2026-03-14T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/analytics/historical/averages", client.method+" "+client.path)
	assert.Equal(t, "60", client.query.Get("average_interval"))
}

func TestErrorsPropagateUnchanged(t *testing.T) {
	services, client := newRecorded()
	client.err = assert.AnError

	_, err := services.Plants.List(context.Background())
	assert.ErrorIs(t, err, assert.AnError)

	_, err = services.Analytics.Health(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
