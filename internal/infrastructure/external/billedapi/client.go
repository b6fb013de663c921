// Package billedapi implements port.BillStore as a client of the Billed
// REST API exposed under /api/v1.
package billedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Config holds the client settings
type Config struct {
	BaseURL string
	// Token is used when the request context carries no session token
	Token   string
	Timeout time.Duration
}

// envelope mirrors the API response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is a BillStore backed by a remote Billed API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// List fetches GET /api/v1/bills?email=
func (c *Client) List(ctx context.Context, email string) ([]*entity.Bill, error) {
	endpoint := c.baseURL + "/api/v1/bills"
	if email != "" {
		endpoint += "?" + url.Values{"email": {email}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	bills := []*entity.Bill{}
	if err := c.do(req, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// Create uploads the proof with POST /api/v1/bills as multipart form data
func (c *Client) Create(ctx context.Context, file *entity.FileUpload) (*entity.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.WriteField("email", file.Email); err != nil {
		return nil, fmt.Errorf("failed to write email field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/bills", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result entity.UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update sends PATCH /api/v1/bills/:id with the bill as JSON. A bill
// without ID is created with a JSON POST /api/v1/bills and receives the
// ID assigned by the server.
func (c *Client) Update(ctx context.Context, bill *entity.Bill) error {
	payload, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("failed to encode bill: %w", err)
	}

	method := http.MethodPatch
	endpoint := c.baseURL + "/api/v1/bills/" + url.PathEscape(bill.ID)
	if bill.ID == "" {
		method = http.MethodPost
		endpoint = c.baseURL + "/api/v1/bills"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if method == http.MethodPatch {
		return c.do(req, nil)
	}

	var created entity.Bill
	if err := c.do(req, &created); err != nil {
		return err
	}
	if created.ID == "" {
		return fmt.Errorf("billed api created a bill without id")
	}
	bill.ID = created.ID
	return nil
}

// do sends req and decodes the envelope data into out.
// Non-2xx answers become *entity.StatusError.
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if token := c.tokenFor(req.Context()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Billed API request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err))
		return fmt.Errorf("billed api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Billed API returned an error status",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", env.Error))
		return &entity.StatusError{StatusCode: resp.StatusCode, Detail: env.Error}
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !env.Success {
		return fmt.Errorf("billed api error: %s", env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token := port.TokenFromContext(ctx); token != "" {
		return token
	}
	return c.token
}

// Verify interface compliance
var _ port.BillStore = (*Client)(nil)
