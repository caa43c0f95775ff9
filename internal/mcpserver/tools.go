package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tools builds the activation tool set. Every tool proxies one core API
// operation; nothing here touches the database directly.
func Tools(proxy *Proxy) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_tenants",
				mcp.WithDescription("List tenants, optionally filtered by name search or provisioning status."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("search", mcp.Description("Substring match on tenant ID or name")),
				mcp.WithString("status", mcp.Description("Filter by provisioning status")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				query := url.Values{}
				args := req.GetArguments()
				if v, ok := args["search"].(string); ok && v != "" {
					query.Set("search", v)
				}
				if v, ok := args["status"].(string); ok && v != "" {
					query.Set("status", v)
				}
				return proxy.Call(ctx, req, http.MethodGet, "/tenants", query, nil)
			},
		},
		{
			Tool: mcp.NewTool("get_tenant",
				mcp.WithDescription("Get a tenant by ID, including its engine binding and provisioning status."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
			),
			Handler: tenantCall(proxy, http.MethodGet, ""),
		},
		{
			Tool: mcp.NewTool("start_provisioning",
				mcp.WithDescription("Run the provisioning sequence for a tenant against its engine. Gated on engine availability."),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
				mcp.WithString("company_name", mcp.Description("Company name to create on the engine (defaults to the tenant name)")),
				mcp.WithBoolean("include_demo_data", mcp.Description("Load the demo document bundle after setup")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("tenant_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				args := req.GetArguments()
				body := map[string]any{}
				if v, ok := args["company_name"].(string); ok && v != "" {
					body["company_name"] = v
				}
				if v, ok := args["include_demo_data"].(bool); ok {
					body["include_demo_data"] = v
				}
				return proxy.Call(ctx, req, http.MethodPost, "/tenants/"+id+"/provisioning/start", nil, body)
			},
		},
		{
			Tool: mcp.NewTool("get_provisioning_status",
				mcp.WithDescription("Get a tenant's provisioning status, last error and skipped steps."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
			),
			Handler: tenantCall(proxy, http.MethodGet, "/provisioning/status"),
		},
		{
			Tool: mcp.NewTool("retry_provisioning",
				mcp.WithDescription("Re-run the provisioning sequence after a failure. Already-satisfied steps are no-ops."),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
			),
			Handler: tenantCall(proxy, http.MethodPost, "/provisioning/retry"),
		},
		{
			Tool: mcp.NewTool("skip_provisioning_step",
				mcp.WithDescription("Permanently skip an optional provisioning step (settings or demo_data) for a tenant."),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
				mcp.WithString("step", mcp.Required(), mcp.Description("Step name to skip"), mcp.Enum("settings", "demo_data")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("tenant_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				step, err := req.RequireString("step")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return proxy.Call(ctx, req, http.MethodPost, "/tenants/"+id+"/provisioning/skip-step", nil,
					map[string]any{"step": step})
			},
		},
		{
			Tool: mcp.NewTool("list_provisioning_logs",
				mcp.WithDescription("List a tenant's provisioning run log, newest first."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
				mcp.WithString("correlation_id", mcp.Description("Filter to a single run")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("tenant_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{}
				if v, ok := req.GetArguments()["correlation_id"].(string); ok && v != "" {
					query.Set("correlation_id", v)
				}
				return proxy.Call(ctx, req, http.MethodGet, "/tenants/"+id+"/provisioning/logs", query, nil)
			},
		},
		{
			Tool: mcp.NewTool("get_onboarding_status",
				mcp.WithDescription("Get a tenant's onboarding progress: step counts, percentage and next pending step."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
			),
			Handler: tenantCall(proxy, http.MethodGet, "/onboarding"),
		},
		{
			Tool: mcp.NewTool("execute_next_onboarding_step",
				mcp.WithDescription("Execute the next pending onboarding step for a tenant. Returns the step outcome, or done when the process completed."),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
			),
			Handler: tenantCall(proxy, http.MethodPost, "/onboarding/next"),
		},
		{
			Tool: mcp.NewTool("check_engine_health",
				mcp.WithDescription("Check the availability of a tenant's engine (online, degraded, offline or not provisioned)."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("tenant_id", mcp.Required(), mcp.Description("Tenant ID")),
				mcp.WithString("engine", mcp.Description("Engine type override"), mcp.Enum("erpnext", "cbs")),
				mcp.WithBoolean("force", mcp.Description("Bypass the cached verdict and probe now")),
			),
			Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, err := req.RequireString("tenant_id")
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{"tenant": {id}}
				args := req.GetArguments()
				if v, ok := args["engine"].(string); ok && v != "" {
					query.Set("engine", v)
				}
				if v, ok := args["force"].(bool); ok && v {
					query.Set("force", "true")
				}
				return proxy.Call(ctx, req, http.MethodGet, "/engines/health", query, nil)
			},
		},
	}
}

// tenantCall builds a handler for operations whose only input is the
// tenant ID, calling METHOD /tenants/{id}<suffix>.
func tenantCall(proxy *Proxy, method, suffix string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("tenant_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return proxy.Call(ctx, req, method, fmt.Sprintf("/tenants/%s%s", id, suffix), nil, nil)
	}
}
