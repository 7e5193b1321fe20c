package vision

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

// Candidate is one identification guess for a photographed card. Every field
// except Confidence is optional free text.
type Candidate struct {
	FullName      string            `json:"full_name"`
	SetName       string            `json:"set_name"`
	SetCode       string            `json:"set_code"`
	CardNumber    string            `json:"card_number"`
	Rarity        string            `json:"rarity"`
	Year          string            `json:"year"`
	ExternalLinks map[string]string `json:"external_links"`
	Confidence    float64           `json:"confidence"`
}

type identifyRequest struct {
	FrontImageURL string `json:"front_image_url"`
	BackImageURL  string `json:"back_image_url,omitempty"`
}

type identifyResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Identifier defines the recognition operation used by the submission flow.
type Identifier interface {
	Identify(ctx context.Context, frontURL, backURL string) ([]Candidate, error)
}

// Client provides access to the card-recognition API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Identifier = (*Client)(nil)

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

// New creates a recognition client.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("vision api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("vision base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
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

// Identify submits uploaded card images for recognition. The back image URL
// may be empty. Candidates come back ordered by descending confidence; an
// empty slice means the service recognized nothing.
func (c *Client) Identify(ctx context.Context, frontURL, backURL string) ([]Candidate, error) {
	frontURL = strings.TrimSpace(frontURL)
	if frontURL == "" {
		return nil, errors.New("front image url must not be empty")
	}

	body, err := json.Marshal(identifyRequest{
		FrontImageURL: frontURL,
		BackImageURL:  strings.TrimSpace(backURL),
	})
	if err != nil {
		return nil, fmt.Errorf("encode identify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identify", bytes.NewReader(body))
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
		return nil, fmt.Errorf("vision identify returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode identify response: %w", err)
	}
	return payload.Candidates, nil
}
