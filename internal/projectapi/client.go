// Package projectapi is the client for the marketplace's create-project endpoint.
package projectapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Creator hands a finished project request to the marketplace backend.
type Creator interface {
	CreateProject(ctx context.Context, req ProjectRequest) (*ProjectCreated, error)
}

// ProjectRequest is the serialized wizard draft plus the collections built
// during the session.
type ProjectRequest struct {
	Title           string       `json:"title"`
	Timeline        string       `json:"timeline,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	Description     string       `json:"description,omitempty"`
	EstimatedCost   float64      `json:"estimatedCost,omitempty"`
	Attachments     []Attachment `json:"attachments"`
	Specializations []string     `json:"specializations"`
	Locations       []string     `json:"locations"`
	Draft           interface{}  `json:"draft"`
}

// Attachment references a file already uploaded to the file service
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProjectCreated is the backend's acknowledgement
type ProjectCreated struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// APIError is a rejection reported by the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("create project rejected (%d): %s", e.StatusCode, e.Message)
}

// ClientConfig configures the project API client
type ClientConfig struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// Client posts project requests to the marketplace backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new project API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreateProject submits req. It is not retried; the caller keeps the draft
// so the user can submit again.
func (c *Client) CreateProject(ctx context.Context, req ProjectRequest) (*ProjectCreated, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/projects", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token := BearerFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Info("Submitting project", zap.String("title", req.Title))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create project request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read create project response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var created ProjectCreated
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode create project response: %w", err)
	}

	c.logger.Info("Project created", zap.String("project_id", created.ID))
	return &created, nil
}

// errorMessage pulls {"error": "..."} or {"message": "..."} out of a
// rejection body, falling back to the raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}

type bearerKey struct{}

// WithBearer attaches the caller's access token so it is forwarded to the backend.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerFromContext returns the token set by WithBearer, if any.
func BearerFromContext(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}
