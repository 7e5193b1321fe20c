package storage

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

// Slot names which side of the card an image shows.
type Slot string

const (
	SlotFront Slot = "front"
	SlotBack  Slot = "back"
)

// Uploader defines the upload operation used by the submission flow.
type Uploader interface {
	Upload(ctx context.Context, image []byte, slot Slot, subjectID string) (string, error)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Client provides access to the image upload API.
type Client struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
}

var _ Uploader = (*Client)(nil)

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

// New creates an upload client.
func New(baseURL, bucket string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("storage base url required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage bucket required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Upload stores one card image and returns its fetchable URL. The object key
// combines the owning subject and the slot so a retried upload overwrites its
// predecessor instead of accumulating blobs.
func (c *Client) Upload(ctx context.Context, image []byte, slot Slot, subjectID string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image must not be empty")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", errors.New("subject id must not be empty")
	}
	switch slot {
	case SlotFront, SlotBack:
	default:
		return "", fmt.Errorf("unknown slot %q", slot)
	}

	endpoint := fmt.Sprintf("%s/%s/%s-%s.jpg", c.baseURL, c.bucket, subjectID, slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if strings.TrimSpace(payload.URL) == "" {
		return "", errors.New("upload response missing url")
	}
	return payload.URL, nil
}
