// Package demodata loads demo document bundles seeded into newly
// activated tenants.
package demodata

// Doc is one demo document to ensure on the engine. NaturalKey names the
// document field used for the existence check.
type Doc struct {
	ResourceType string         `json:"resource_type" yaml:"resource_type"`
	NaturalKey   string         `json:"natural_key" yaml:"natural_key"`
	Document     map[string]any `json:"document" yaml:"document"`
}

// Bundle is a named set of demo documents.
type Bundle struct {
	Name string `yaml:"name"`
	Docs []Doc  `yaml:"docs"`
}

// DefaultBundle is used when the caller does not name a bundle.
const DefaultBundle = "default"
