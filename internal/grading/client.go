package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Result carries the numeric sub-grades returned for one card.
type Result struct {
	Overall   float64 `json:"overall"`
	Centering float64 `json:"centering"`
	Corners   float64 `json:"corners"`
	Edges     float64 `json:"edges"`
	Surface   float64 `json:"surface"`
}

// Grader defines the grading operation used by the submission flow.
type Grader interface {
	Grade(ctx context.Context, subjectID, frontURL, backURL string) (*Result, error)
}

type gradeRequest struct {
	SubjectID     string `json:"subject_id"`
	FrontImageURL string `json:"front_image_url"`
	BackImageURL  string `json:"back_image_url"`
}

// Client provides access to the grading API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Grader = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a grading client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("grading api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("grading base url required")
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Grade submits both card images for condition grading.
func (c *Client) Grade(ctx context.Context, subjectID, frontURL, backURL string) (*Result, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, errors.New("subject id must not be empty")
	}

	body, err := json.Marshal(gradeRequest{
		SubjectID:     subjectID,
		FrontImageURL: strings.TrimSpace(frontURL),
		BackImageURL:  strings.TrimSpace(backURL),
	})
	if err != nil {
		return nil, fmt.Errorf("encode grade request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/grade", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grading returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Result
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode grade response: %w", err)
	}
	return &payload, nil
}
