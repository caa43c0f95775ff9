package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Proxy forwards tool calls to the core API. The caller's API key is
// taken from the MCP session headers and passed through unchanged.
type Proxy struct {
	apiURL string
	client *http.Client
	logger zerolog.Logger
}

func NewProxy(apiURL string, logger zerolog.Logger) *Proxy {
	return &Proxy{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Call executes one API request on behalf of a tool and folds the
// response into an MCP result. API-level failures come back as tool
// errors, not Go errors, so the agent sees them.
func (p *Proxy) Call(ctx context.Context, req mcp.CallToolRequest, method, path string, query url.Values, body any) (*mcp.CallToolResult, error) {
	u := p.apiURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal request body: %s", err)), nil
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build request: %s", err)), nil
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	apiKey := req.Header.Get("X-API-Key")
	if apiKey == "" {
		auth := req.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			apiKey = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	p.logger.Debug().
		Str("method", method).
		Str("url", u).
		Str("tool", req.Params.Name).
		Msg("proxying MCP tool call")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API request failed: %s", err)), nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read response: %s", err)), nil
	}

	if resp.StatusCode >= 400 {
		return mcp.NewToolResultError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))), nil
	}

	if resp.StatusCode == http.StatusNoContent {
		return mcp.NewToolResultText(`{"status":"success"}`), nil
	}

	return mcp.NewToolResultText(string(respBody)), nil
}
