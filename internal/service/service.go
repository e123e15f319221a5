// FilePath: internal/service/service.go
package service

import (
	"context"
	"io"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/plantsense/sprout/internal/errors"
)

// HTTPClient is the transport surface the domain services need. Satisfied
// by apiclient.Client; tests substitute fakes.
type HTTPClient interface {
	Get(ctx context.Context, path string, out any) error
	GetQuery(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	PostMultipart(ctx context.Context, path, field, filename string, file io.Reader, out any) error
}

const apiBase = "/api/v1"

// Services bundles the per-domain endpoint mappings. Each service is a
// pure pass-through from typed functions to the HTTP client; no business
// logic lives here and errors propagate unchanged.
type Services struct {
	Auth      *AuthService
	Plants    *PlantsService
	Devices   *DevicesService
	Files     *FileService
	Analytics *AnalyticsService
}

// New creates the service bundle. The analytics client may point at a
// different base URL than the gateway; pass the same client for both when
// analytics is reached through the gateway.
func New(gateway, analytics HTTPClient) *Services {
	return &Services{
		Auth:      &AuthService{client: gateway},
		Plants:    &PlantsService{client: gateway},
		Devices:   &DevicesService{client: gateway},
		Files:     &FileService{client: gateway},
		Analytics: &AnalyticsService{client: analytics},
	}
}

var queryEncoder = schema.NewEncoder()

// queryValues encodes a tagged params struct into URL query values.
func queryValues(src any) (url.Values, error) {
	values := url.Values{}
	if err := queryEncoder.Encode(src, values); err != nil {
		return nil, errors.NewInternalError("failed to encode query parameters", err)
	}
	return values, nil
}
