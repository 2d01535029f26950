package tagstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/observability/logging"
	"github.com/freshtrack/tag-alerting/internal/observability/tracing"
)

// Client talks to the external tag store's JSON CRUD API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) ListActiveTags(ctx context.Context, locationID string) ([]TagRecord, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	u.Path = "/api/v1/tags"
	q := u.Query()
	q.Set("status", domain.LifecycleActive.String())
	if locationID != "" {
		q.Set("location_id", locationID)
	}
	u.RawQuery = q.Encode()

	slog.DebugContext(ctx, "fetching active tags from tag store",
		slog.String("url", u.String()),
	)

	body, err := c.do(ctx, http.MethodGet, u.String(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resp tagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.ErrorContext(ctx, "failed to decode tags response from tag store",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	records := make([]TagRecord, 0, len(resp.Tags))
	for _, d := range resp.Tags {
		records = append(records, recordFromDTO(d))
	}

	slog.DebugContext(ctx, "successfully fetched active tags",
		slog.Int("count", len(records)),
	)

	return records, nil
}

func (c *Client) CreateTag(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = "/api/v1/tags"

	payload, err := json.Marshal(tagToDTO(tag))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, u.String(), payload, http.StatusCreated, http.StatusOK)
	if err != nil {
		return domain.Tag{}, err
	}

	var created tagDTO
	if err := json.Unmarshal(body, &created); err != nil {
		return domain.Tag{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return tagFromDTO(created), nil
}

func (c *Client) UpdateTag(ctx context.Context, id string, update TagUpdate) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = fmt.Sprintf("/api/v1/tags/%s", id)

	req := tagUpdateRequest{Printed: update.Printed}
	if update.State != nil {
		state := update.State.String()
		req.LifecycleState = &state
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	slog.DebugContext(ctx, "updating tag in tag store",
		slog.String("tag_id", id),
		slog.String("url", u.String()),
	)

	if _, err := c.doWithNotFound(ctx, http.MethodPatch, u.String(), payload, domain.ErrTagNotFound, http.StatusOK, http.StatusNoContent); err != nil {
		return err
	}

	return nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = fmt.Sprintf("/api/v1/products/%s", id)

	body, err := c.get(ctx, u.String(), domain.ErrProductNotFound)
	if err != nil {
		return domain.Product{}, err
	}

	var dto productDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.Product{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return productFromDTO(dto), nil
}

func (c *Client) GetLocation(ctx context.Context, id string) (domain.Location, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.Location{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = fmt.Sprintf("/api/v1/locations/%s", id)

	body, err := c.get(ctx, u.String(), domain.ErrLocationNotFound)
	if err != nil {
		return domain.Location{}, err
	}

	var dto locationDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.Location{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return locationFromDTO(dto), nil
}

// Ping reports whether the store answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = "/health"

	_, err = c.do(ctx, http.MethodGet, u.String(), nil, http.StatusOK)
	return err
}

func (c *Client) get(ctx context.Context, rawURL string, notFound error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to tag store",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound
	}
	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected status code from tag store",
			slog.String("url", rawURL),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte, okStatuses ...int) ([]byte, error) {
	return c.doWithNotFound(ctx, method, rawURL, payload, nil, okStatuses...)
}

func (c *Client) doWithNotFound(ctx context.Context, method, rawURL string, payload []byte, notFound error, okStatuses ...int) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send request to tag store",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if notFound != nil && resp.StatusCode == http.StatusNotFound {
		return nil, notFound
	}

	ok := false
	for _, status := range okStatuses {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		slog.ErrorContext(ctx, "unexpected status code from tag store",
			slog.String("url", rawURL),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)
}
