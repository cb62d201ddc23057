package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxAttempts    = 3
	retryBackoff   = 500 * time.Millisecond
)

// HTTPParser calls an upstream model endpoint over JSON. Transient
// failures (network errors and 5xx responses) are retried with a short
// backoff; 4xx responses are returned immediately.
type HTTPParser struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewHTTPParser(baseURL, model string) *HTTPParser {
	return &HTTPParser{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type parseRequest struct {
	Model   string `json:"model,omitempty"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

func (p *HTTPParser) Parse(ctx context.Context, text, parseContext string) (*Result, error) {
	body, err := json.Marshal(parseRequest{
		Model:   p.model,
		Text:    text,
		Context: parseContext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		result, retryable, err := p.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("parse failed after %d attempts: %w", maxAttempts, lastErr)
}

func (p *HTTPParser) doRequest(ctx context.Context, body []byte) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/parse", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("failed to decode parse response: %w", err)
	}
	return &result, false, nil
}
