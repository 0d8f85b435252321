package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/basaknazik/itudam/internal/httpx"
	"github.com/basaknazik/itudam/internal/schedule"
)

// Document is the per-user remote record: the whole schedule plus a
// last-writer timestamp. No field-level merge and no concurrency token;
// the newest write wins unconditionally.
type Document struct {
	Program schedule.Snapshot `json:"program"`
	Updated time.Time         `json:"updated"`
}

// RemoteStore is the asynchronous store behind the debounced writes.
type RemoteStore interface {
	// Read fetches the user's document. ok is false when none exists yet.
	Read(ctx context.Context, userID string) (doc *Document, ok bool, err error)
	Write(ctx context.Context, userID string, doc *Document) error
}

// Client talks to the remote document API: GET/PUT of one JSON document
// per user at {base}/users/{id}.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) docURL(userID string) string {
	return fmt.Sprintf("%s/users/%s", c.BaseURL, url.PathEscape(userID))
}

func (c *Client) Read(ctx context.Context, userID string) (*Document, bool, error) {
	var doc Document
	err := httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(userID), nil)
		if err != nil {
			return nil, err
		}
		c.auth(req)
		return req, nil
	}, &doc, httpx.Default())

	if herr, okType := err.(*httpx.HTTPError); okType && herr.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sync: remote read: %w", err)
	}
	return &doc, true, nil
}

// Write issues a single attempt. Failures are reported, never retried
// here: the next mutation's debounce cycle is the natural retry.
func (c *Client) Write(ctx context.Context, userID string, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sync: encode remote document: %w", err)
	}

	err = httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.docURL(userID), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.auth(req)
		return req, nil
	}, nil, httpx.Single())
	if err != nil {
		return fmt.Errorf("sync: remote write: %w", err)
	}
	return nil
}

func (c *Client) auth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}
