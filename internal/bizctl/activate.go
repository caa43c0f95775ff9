package bizctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Apply activates every workspace in the YAML definition against a
// running core-api. Tenants that already exist (matched by name) are
// reused, so re-applying a file is safe.
func Apply(configPath string, timeout time.Duration) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg ActivationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("PLATFORM_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set api_key in config or PLATFORM_API_KEY env var")
	}
	client := NewClient(cfg.APIURL, apiKey)

	for _, ws := range cfg.Workspaces {
		if err := activateWorkspace(client, ws, timeout); err != nil {
			return fmt.Errorf("activate workspace %q: %w", ws.Name, err)
		}
	}
	return nil
}

func activateWorkspace(client *Client, ws WorkspaceDef, timeout time.Duration) error {
	tenantID, err := client.FindTenantByName(ws.Name)
	if err == nil {
		fmt.Printf("Tenant %q: exists (%s)\n", ws.Name, tenantID)
	} else {
		fmt.Printf("Creating tenant %q...\n", ws.Name)
		body := map[string]any{
			"name": ws.Name,
		}
		if ws.WorkspaceType != "" {
			body["workspace_type"] = ws.WorkspaceType
		}
		if ws.Engine != "" {
			body["engine"] = ws.Engine
		}
		if ws.EngineBaseURL != "" {
			body["engine_base_url"] = ws.EngineBaseURL
		}
		resp, err := client.Post("/tenants", body)
		if err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		tenantID, err = extractID(resp)
		if err != nil {
			return fmt.Errorf("parse tenant ID: %w", err)
		}
		fmt.Printf("  Tenant %q: %s created\n", ws.Name, tenantID)
	}

	if ws.EngineAPIKey != "" {
		_, err := client.Put(fmt.Sprintf("/tenants/%s/engine-credentials", tenantID), map[string]any{
			"base_url":   ws.EngineBaseURL,
			"api_key":    ws.EngineAPIKey,
			"api_secret": ws.EngineSecret,
		})
		if err != nil {
			return fmt.Errorf("set engine credentials: %w", err)
		}
		fmt.Printf("  Engine credentials set\n")
	}

	return Activate(client, tenantID, ws, timeout)
}

// Activate drives a single tenant through onboarding: initiate, start,
// then execute steps until the process reaches a terminal status.
func Activate(client *Client, tenantID string, ws WorkspaceDef, timeout time.Duration) error {
	body := map[string]any{}
	if ws.WorkspaceType != "" {
		body["workspace_type"] = ws.WorkspaceType
	}
	if ws.Template != "" {
		body["template_code"] = ws.Template
	}
	if len(ws.Modules) > 0 {
		body["modules"] = ws.Modules
	}
	if len(ws.Configuration) > 0 {
		body["configuration"] = ws.Configuration
	}

	resp, err := client.Post(fmt.Sprintf("/tenants/%s/onboarding", tenantID), body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Type() == "already_active" {
			fmt.Printf("  Onboarding already active, resuming\n")
		} else {
			return fmt.Errorf("initiate onboarding: %w", err)
		}
	} else {
		var proc struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Template string `json:"template"`
		}
		if err := json.Unmarshal(resp.Body, &proc); err != nil {
			return fmt.Errorf("parse process: %w", err)
		}
		fmt.Printf("  Process %s (%s, template %s)\n", proc.ID, proc.Status, proc.Template)
		if proc.Status == "draft" {
			if _, err := client.Post(fmt.Sprintf("/tenants/%s/onboarding/start", tenantID), nil); err != nil {
				return fmt.Errorf("start onboarding: %w", err)
			}
		}
	}

	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s", timeout)
		}

		resp, err := client.Post(fmt.Sprintf("/tenants/%s/onboarding/next", tenantID), nil)
		if err != nil {
			return fmt.Errorf("execute next step: %w", err)
		}

		var step struct {
			Done   bool    `json:"done"`
			Title  string  `json:"title"`
			Status string  `json:"status"`
			Error  *string `json:"error"`
		}
		if err := json.Unmarshal(resp.Body, &step); err != nil {
			return fmt.Errorf("parse step result: %w", err)
		}
		if step.Done {
			fmt.Printf("  Onboarding complete\n")
			return nil
		}

		fmt.Printf("  Step %q: %s\n", step.Title, step.Status)
		if step.Status == "failed" {
			msg := "step failed"
			if step.Error != nil {
				msg = *step.Error
			}
			return fmt.Errorf("onboarding failed: %s", msg)
		}
	}
}

// FindTenantByName resolves a tenant ID by exact name match.
func (c *Client) FindTenantByName(name string) (string, error) {
	resp, err := c.Get("/tenants?search=" + url.QueryEscape(name))
	if err != nil {
		return "", err
	}

	items, err := resp.Items()
	if err != nil {
		return "", fmt.Errorf("parse tenants: %w", err)
	}

	var tenants []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(items, &tenants); err != nil {
		return "", fmt.Errorf("parse tenants: %w", err)
	}

	for _, t := range tenants {
		if t.Name == name {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("tenant %q not found", name)
}

func extractID(resp *Response) (string, error) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", fmt.Errorf("response has no id field")
	}
	return body.ID, nil
}
