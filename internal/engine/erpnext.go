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

// ERPNextClient talks to a Frappe/ERPNext instance over its REST resource
// API. Documents are addressed as /api/resource/{doctype}/{name}.
type ERPNextClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewERPNextClient(baseURL, apiKey, apiSecret string, tlsConfig *tls.Config) *ERPNextClient {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if tlsConfig != nil {
		httpClient.Transport = &http.Transport{TLSClientConfig: tlsConfig}
	}
	return &ERPNextClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: httpClient,
	}
}

func (c *ERPNextClient) List(ctx context.Context, resourceType string, opts ListOptions) ([]Resource, error) {
	q := url.Values{}
	if len(opts.Fields) > 0 {
		fields, err := json.Marshal(opts.Fields)
		if err != nil {
			return nil, fmt.Errorf("marshal list fields: %w", err)
		}
		q.Set("fields", string(fields))
	}
	if len(opts.Filters) > 0 {
		filters := make([][]any, 0, len(opts.Filters))
		for _, f := range opts.Filters {
			filters = append(filters, []any{f.Field, f.Op, f.Value})
		}
		raw, err := json.Marshal(filters)
		if err != nil {
			return nil, fmt.Errorf("marshal list filters: %w", err)
		}
		q.Set("filters", string(raw))
	}
	if opts.Limit > 0 {
		q.Set("limit_page_length", fmt.Sprintf("%d", opts.Limit))
	}

	path := fmt.Sprintf("/api/resource/%s", url.PathEscape(resourceType))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result struct {
		Data []Resource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("list %s: %w", resourceType, err)
	}
	return result.Data, nil
}

func (c *ERPNextClient) Get(ctx context.Context, resourceType, name string) (Resource, error) {
	path := fmt.Sprintf("/api/resource/%s/%s", url.PathEscape(resourceType), url.PathEscape(name))

	var result struct {
		Data Resource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", resourceType, name, err)
	}
	return result.Data, nil
}

func (c *ERPNextClient) Create(ctx context.Context, resourceType string, doc Resource) (Resource, error) {
	path := fmt.Sprintf("/api/resource/%s", url.PathEscape(resourceType))

	var result struct {
		Data Resource `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, path, doc, &result); err != nil {
		return nil, fmt.Errorf("create %s: %w", resourceType, err)
	}
	return result.Data, nil
}

func (c *ERPNextClient) Update(ctx context.Context, resourceType, name string, patch Resource) (Resource, error) {
	path := fmt.Sprintf("/api/resource/%s/%s", url.PathEscape(resourceType), url.PathEscape(name))

	var result struct {
		Data Resource `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, path, patch, &result); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", resourceType, name, err)
	}
	return result.Data, nil
}

// Ping hits the authenticated whoami endpoint, so a bad key fails here too.
func (c *ERPNextClient) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/api/method/frappe.auth.get_logged_user", nil, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (c *ERPNextClient) do(ctx context.Context, method, path string, payload any, out any) error {
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
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))
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
