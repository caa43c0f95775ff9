package bizctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type Response struct {
	StatusCode int
	Body       json.RawMessage
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Post(path string, body any) (*Response, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *Client) Get(path string) (*Response, error) {
	return c.do(http.MethodGet, path, nil)
}

func (c *Client) Put(path string, body any) (*Response, error) {
	return c.do(http.MethodPut, path, body)
}

func (c *Client) do(method, path string, body any) (*Response, error) {
	url := c.BaseURL + "/api/v1" + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(respBody),
	}

	if resp.StatusCode >= 400 {
		return r, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: respBody}
	}

	return r, nil
}

// APIError is a non-2xx API response. Type carries the machine-readable
// tag the server sets on classified failures (engine_offline, ...).
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, string(e.Body))
}

// Type extracts the error type tag, or "" when the body has none.
func (e *APIError) Type() string {
	var body struct {
		Type string `json:"type"`
	}
	json.Unmarshal(e.Body, &body)
	return body.Type
}

// Items extracts the "items" array from a paginated API response.
func (r *Response) Items() (json.RawMessage, error) {
	var page struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(r.Body, &page); err != nil {
		return nil, fmt.Errorf("parse paginated response: %w", err)
	}
	return page.Items, nil
}
