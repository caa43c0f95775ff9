package engine

import (
	"context"
	"errors"
)

// Engine type identifiers.
const (
	TypeERPNext = "erpnext"
	TypeCBS     = "cbs"
)

// ErrUnknownEngine is returned when a tenant references an engine type no
// client implementation exists for.
var ErrUnknownEngine = errors.New("unknown engine type")

// Resource is a generic engine-side document. Field names follow the
// engine's own schema; the pipeline never interprets fields beyond "name".
type Resource map[string]any

// Name returns the document's natural key, or "" if unset.
func (r Resource) Name() string {
	if v, ok := r["name"].(string); ok {
		return v
	}
	return ""
}

// Filter is a single list predicate.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Eq builds an equality filter, the common case.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: "=", Value: value}
}

// ListOptions narrows a List call.
type ListOptions struct {
	Filters []Filter
	Fields  []string
	Limit   int
}

// Client is the gateway to one external back-office engine. Implementations
// must surface *APIError for engine-rejected calls so callers can reclassify
// by status code.
type Client interface {
	List(ctx context.Context, resourceType string, opts ListOptions) ([]Resource, error)
	Get(ctx context.Context, resourceType, name string) (Resource, error)
	Create(ctx context.Context, resourceType string, doc Resource) (Resource, error)
	Update(ctx context.Context, resourceType, name string, patch Resource) (Resource, error)

	// Ping performs a cheap authenticated probe against the engine.
	Ping(ctx context.Context) error
}
