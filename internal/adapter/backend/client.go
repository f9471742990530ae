// Package backend is the editor's HTTP client for the résumé service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/scoring"
)

// StatusError is a non-2xx answer. Message carries the ApiError text when
// the body had one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Status == http.StatusNotFound
}

type Client struct {
	BaseURL string
	HTTP    *http.Client

	attempts int
	backoff  func(attempt int) time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithRetry sets how often a request is tried and the wait between tries.
func WithRetry(attempts int, backoff func(attempt int) time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff != nil {
			c.backoff = backoff
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		attempts: 3,
		backoff:  func(i int) time.Duration { return time.Duration(1<<i) * 250 * time.Millisecond },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one JSON request with retry/backoff and decodes the answer into
// out. Transport errors and 5xx answers are retried; 4xx are not.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err == nil {
			err = decodeResponse(resp, out)
			var serr *StatusError
			if err == nil || (errors.As(err, &serr) && serr.Status < http.StatusInternalServerError) {
				return err
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		if i < c.attempts-1 {
			select {
			case <-time.After(c.backoff(i)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(b, &apiErr)
		return &StatusError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type savedResume struct {
	ID string `json:"id"`
}

// Save overwrites the record with id, or creates one when id is empty or no
// longer exists on the backend.
func (c *Client) Save(ctx context.Context, doc model.Document, id string) (string, error) {
	var out savedResume
	if id != "" {
		doc.ID = id
		err := c.do(ctx, http.MethodPut, "/api/resumes/"+url.PathEscape(id), doc, &out)
		if err == nil {
			return out.ID, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	if err := c.do(ctx, http.MethodPost, "/api/resumes", doc, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("backend: save returned no id")
	}
	return out.ID, nil
}

func (c *Client) Score(ctx context.Context, id string) (scoring.Result, error) {
	var res scoring.Result
	err := c.do(ctx, http.MethodPost, "/api/resumes/"+url.PathEscape(id)+"/score", nil, &res)
	return res, err
}

func (c *Client) ParseJobDescription(ctx context.Context, text string) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/jd/parse", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return out.Keywords, nil
}

func (c *Client) Coverage(ctx context.Context, doc model.Document, keywords []string) (scoring.Coverage, error) {
	in := struct {
		Resume   model.Document `json:"resume"`
		Keywords []string       `json:"keywords"`
	}{doc, keywords}
	var cov scoring.Coverage
	err := c.do(ctx, http.MethodPost, "/api/jd/coverage", in, &cov)
	return cov, err
}
