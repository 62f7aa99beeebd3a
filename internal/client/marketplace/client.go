// Package marketplace is the REST client for the marketplace backend:
// publicaciones, categorias and upload routes.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace_admin/internal/lib/logger/sl"
	"marketplace_admin/internal/metrics"

	"github.com/shopspring/decimal"
)

const genericErrorMessage = "backend request failed"

func init() {
	// бэкенд ждёт precio числом, а не строкой
	decimal.MarshalJSONWithoutQuotes = true
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string

	// sentinel matched by errors.Is, e.g. storage.ErrPublicationNotFound on 404
	kind error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// IsNotFound reports whether err carries a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL. A zero timeout leaves requests bounded
// only by their context.
func New(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// request describes one backend call. route is the path template used as the
// metrics label; path is the concrete, already escaped path.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	notFound    error
}

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		ct := r.contentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.method, r.route, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(r.method, r.route, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		if resp.StatusCode == http.StatusNotFound {
			apiErr.kind = r.notFound
		}

		c.log.Debug("backend error",
			slog.String("method", r.method),
			slog.String("route", r.route),
			slog.Int("status", resp.StatusCode),
			sl.Err(apiErr),
		)

		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// errorMessage pulls the human readable message out of an error body. The
// backend uses message (string or list), mensaje or error.
func errorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return genericErrorMessage
	}

	for _, key := range []string{"message", "mensaje", "error"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				if s, ok := p.(string); ok && s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}

	return genericErrorMessage
}
