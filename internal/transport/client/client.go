package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
)

// ErrNotFound is returned when the server answers 404
var ErrNotFound = errors.New("not found")

// APIError is a non-success response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match ErrNotFound against a 404
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client represents an HTTP client for the job board API
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new job board client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateJob posts a job listing
func (c *Client) CreateJob(ctx context.Context, req domain.CreateJobRequest) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req, http.StatusCreated, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob retrieves a job by id
func (c *Client) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id), nil, http.StatusOK, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs retrieves one page of jobs
func (c *Client) ListJobs(ctx context.Context, page int) (*domain.JobPage, error) {
	var result domain.JobPage
	path := "/api/jobs?page=" + strconv.Itoa(page)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IssueLink asks the server for a time-stamped QR link to target
func (c *Client) IssueLink(ctx context.Context, target string) (*domain.QRLinkResponse, error) {
	var link domain.QRLinkResponse
	path := "/api/qr/link?" + url.Values{"target": {target}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ValidateLink asks the server whether rawURL is still fresh
func (c *Client) ValidateLink(ctx context.Context, rawURL string) (*domain.LinkValidationResponse, error) {
	var result domain.LinkValidationResponse
	path := "/api/qr/validate?" + url.Values{"url": {rawURL}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody domain.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
