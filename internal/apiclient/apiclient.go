// FilePath: internal/apiclient/apiclient.go
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/segmentio/ksuid"
	nuts "github.com/vaudience/go-nuts"

	"github.com/plantsense/sprout/internal/errors"
)

// SessionSource is the slice of the session store the client needs: read
// the current access token, trigger one refresh, and force a sign-out.
type SessionSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Client wraps a shared resty client with bearer-token injection and a
// single transparent refresh-and-retry cycle on 401. A second consecutive
// 401 after the retry forces a logout instead of another refresh, which
// avoids infinite refresh cycles when the refresh token itself is invalid.
type Client struct {
	http    *resty.Client
	session SessionSource
}

// request carries the per-call parameters funneled into do.
type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	result    any
	fileField string
	fileName  string
	fileData  []byte
}

// New creates an API client against the given base URL.
func New(baseURL string, timeout time.Duration, session SessionSource) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		session: session,
	}
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, result: out})
}

// GetQuery issues a GET request with query parameters.
func (c *Client) GetQuery(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, result: out})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, result: out})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPut, path: path, body: body, result: out})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path})
}

// PostMultipart uploads a single file as multipart/form-data. The file is
// buffered so the body can be replayed on the post-refresh retry.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return errors.NewInternalError("failed to read upload file", err)
	}
	return c.do(ctx, request{
		method:    http.MethodPost,
		path:      path,
		result:    out,
		fileField: field,
		fileName:  filename,
		fileData:  data,
	})
}

func (c *Client) do(ctx context.Context, req request) error {
	requestID := nuts.NID("req", 12)
	token := c.session.AccessToken()

	// One key per logical request, so the post-refresh retry is
	// recognizable as a duplicate of the original attempt.
	idempotencyKey := ""
	if req.method != http.MethodGet {
		idempotencyKey = ksuid.New().String()
	}

	resp, err := c.execute(ctx, req, token, requestID, idempotencyKey)
	if err != nil {
		nuts.L.Errorf("[APIClient] %s %s transport failure: %v", req.method, req.path, err)
		return errors.NewTransportError("request failed", err).WithRequestID(requestID)
	}

	if resp.StatusCode() == http.StatusUnauthorized && token != "" {
		nuts.L.Infof("[APIClient] 401 on %s %s, attempting token refresh", req.method, req.path)

		if rerr := c.session.Refresh(ctx); rerr != nil {
			// Refresh already cascaded to logout; surface the auth failure.
			return errors.NewAuthError("authentication expired", rerr).WithRequestID(requestID)
		}

		resp, err = c.execute(ctx, req, c.session.AccessToken(), requestID, idempotencyKey)
		if err != nil {
			return errors.NewTransportError("request failed after refresh", err).WithRequestID(requestID)
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			nuts.L.Warnf("[APIClient] 401 persisted after refresh, forcing logout")
			_ = c.session.Logout(ctx)
			return errors.NewAuthError("authentication rejected after refresh", nil).WithRequestID(requestID)
		}
	}

	if resp.IsError() {
		msg := fmt.Sprintf("%s %s returned %d", req.method, req.path, resp.StatusCode())
		nuts.L.Errorf("[APIClient] %s", msg)
		return errors.FromStatus(resp.StatusCode(), msg, nil).
			WithRequestID(requestID).
			WithDetails(string(resp.Body()))
	}

	return nil
}

func (c *Client) execute(ctx context.Context, req request, token, requestID, idempotencyKey string) (*resty.Response, error) {
	r := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID)

	if token != "" {
		r.SetAuthToken(token)
	}
	if req.query != nil {
		r.SetQueryParamsFromValues(req.query)
	}
	if req.result != nil {
		r.SetResult(req.result)
	}

	switch {
	case req.fileData != nil:
		r.SetFileReader(req.fileField, req.fileName, bytes.NewReader(req.fileData))
	case req.body != nil:
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.body)
	}

	// Idempotency keys guard mutating calls against client-side retries.
	if idempotencyKey != "" {
		r.SetHeader("Idempotency-Key", idempotencyKey)
	}

	return r.Execute(req.method, req.path)
}
