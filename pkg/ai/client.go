package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"resume-builder/internal/cleaner"
)

const DefaultBaseURL = "http://ai-service:8000"

// ErrEmptyResult is returned when the ai-service answers without usable keywords.
var ErrEmptyResult = errors.New("ai: no keywords in response")

// Client calls the internal ai-service to pull ATS keywords out of job
// descriptions.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

type Option func(*Client)

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithBackoff replaces the exponential wait between attempts.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		backoff: func(i int) time.Duration { return time.Duration(1<<i) * time.Second },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doPostWithRetry performs an HTTP POST to the given path with retry/backoff.
// Transport errors and 5xx answers are retried.
func (c *Client) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempts := 3
	var lastErr error
	for i := 0; i < attempts; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("ai-service returned status %d", resp.StatusCode)
		}
		lastErr = err
		if i < attempts-1 {
			select {
			case <-time.After(c.backoff(i)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

const keywordInstructions = `Extract the skills, tools, technologies and qualifications an applicant tracking system would screen for in the job description below.
Return ONLY a single JSON object of the form {"keywords": ["..."]} with short lowercase keywords, most important first, no duplicates. Do NOT include any other text.

JOB DESCRIPTION:
`

// chat sends one prompt to /v1/chat and returns the agent output.
func (c *Client) chat(ctx context.Context, input string) (string, error) {
	b, err := json.Marshal(chatRequest{Agent: "auto", Input: input})
	if err != nil {
		return "", err
	}
	resp, err := c.doPostWithRetry(ctx, "/v1/chat", b)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(rb, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Output, nil
}

// ExtractKeywords asks the ai-service for the ATS keywords of a job
// description. The result is lowercased and deduplicated.
func (c *Client) ExtractKeywords(ctx context.Context, jobDescription string) ([]string, error) {
	output, err := c.chat(ctx, keywordInstructions+cleaner.Text(jobDescription))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	raw := cleaner.StripCodeFences(output)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		obj, ok := cleaner.JSONObject(raw)
		if !ok {
			return nil, fmt.Errorf("ai: response is not JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
			return nil, fmt.Errorf("ai: response is not JSON: %w", err)
		}
	}

	seen := make(map[string]bool, len(parsed.Keywords))
	keywords := make([]string, 0, len(parsed.Keywords))
	for _, k := range parsed.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	if len(keywords) == 0 {
		return nil, ErrEmptyResult
	}
	return keywords, nil
}
