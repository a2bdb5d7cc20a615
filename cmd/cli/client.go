package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
)

// apiError is a non-2xx answer from the bookkeeper API.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
}

type apiClient struct {
	baseURL        string
	httpClient     *http.Client
	idempotencyKey string
}

// send performs the request and returns the raw answer without judging the
// status code.
func (c *apiClient) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	target := strings.TrimRight(c.baseURL, "/") + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idempotencyKey != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// do performs the request and decodes a 2xx body into out.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, raw, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return decodeError(status, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var e dto.ErrorResponse
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		return &apiError{Status: status, Code: http.StatusText(status), Message: strings.TrimSpace(string(raw))}
	}
	return &apiError{Status: status, Code: e.Error, Message: e.Message}
}
