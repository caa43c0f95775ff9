package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// CBSClient talks to the core banking system SACCO tenants are bound to.
// Its API is a flat keyed-resource surface: /api/v1/{type}/{name}, item
// lists under {"items": [...]}, equality-only filtering via query params.
type CBSClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewCBSClient(baseURL, apiKey, apiSecret string, tlsConfig *tls.Config) *CBSClient {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if tlsConfig != nil {
		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}
	return &CBSClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpClient,
	}
}

func (c *CBSClient) List(ctx context.Context, resourceType string, opts ListOptions) ([]Resource, error) {
	q := url.Values{}
	for _, f := range opts.Filters {
		if f.Op != "=" {
			return nil, fmt.Errorf("list %s: cbs filters support equality only, got %q", resourceType, f.Op)
		}
		q.Set(f.Field, fmt.Sprintf("%v", f.Value))
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	path := fmt.Sprintf("/api/v1/%s", url.PathEscape(resourceType))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result struct {
		Items []Resource `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("list %s: %w", resourceType, err)
	}
	return result.Items, nil
}

func (c *CBSClient) Get(ctx context.Context, resourceType, name string) (Resource, error) {
	path := fmt.Sprintf("/api/v1/%s/%s", url.PathEscape(resourceType), url.PathEscape(name))

	var doc Resource
	if err := c.do(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", resourceType, name, err)
	}
	return doc, nil
}

func (c *CBSClient) Create(ctx context.Context, resourceType string, doc Resource) (Resource, error) {
	path := fmt.Sprintf("/api/v1/%s", url.PathEscape(resourceType))

	var created Resource
	if err := c.do(ctx, http.MethodPost, path, doc, &created); err != nil {
		return nil, fmt.Errorf("create %s: %w", resourceType, err)
	}
	return created, nil
}

func (c *CBSClient) Update(ctx context.Context, resourceType, name string, patch Resource) (Resource, error) {
	path := fmt.Sprintf("/api/v1/%s/%s", url.PathEscape(resourceType), url.PathEscape(name))

	var updated Resource
	if err := c.do(ctx, http.MethodPatch, path, patch, &updated); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", resourceType, name, err)
	}
	return updated, nil
}

func (c *CBSClient) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (c *CBSClient) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-API-Secret", c.apiSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        fullURL,
			Body:       string(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
