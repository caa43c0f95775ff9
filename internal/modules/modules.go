// Package modules holds the business module catalog and the dependency
// resolver that orders module activation.
package modules

import (
	"errors"

	"github.com/biasharahq/platform/internal/model"
)

var (
	// ErrUnknownModule marks a requested module code the catalog does not know.
	ErrUnknownModule = errors.New("unknown module")

	// ErrCircularDependency marks a cycle in the dependency table. The
	// built-in table must never produce one; hitting this is a defect.
	ErrCircularDependency = errors.New("circular module dependency")
)

// Module is one catalog entry. DependsOn lists hard prerequisites; an edge
// is only enforced when its target is itself requested.
type Module struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// The catalog is fixed at build time. Order here is cosmetic; activation
// order comes from Resolve.
var catalog = []Module{
	{Code: model.ModuleInventory, Title: "Inventory Management"},
	{Code: model.ModuleAccounting, Title: "Accounting & Finance"},
	{Code: model.ModulePOS, Title: "Point of Sale", DependsOn: []string{model.ModuleInventory, model.ModuleAccounting}},
	{Code: model.ModuleManufacturing, Title: "Manufacturing", DependsOn: []string{model.ModuleInventory, model.ModuleAccounting}},
	{Code: model.ModulePurchasing, Title: "Purchasing", DependsOn: []string{model.ModuleInventory, model.ModuleAccounting}},
	{Code: model.ModuleHR, Title: "Human Resources", DependsOn: []string{model.ModuleAccounting}},
	{Code: model.ModuleProjects, Title: "Projects", DependsOn: []string{model.ModuleHR}},
	{Code: model.ModuleCRM, Title: "CRM", DependsOn: []string{model.ModuleAccounting}},
}

var byCode = func() map[string]Module {
	m := make(map[string]Module, len(catalog))
	for _, mod := range catalog {
		m[mod.Code] = mod
	}
	return m
}()

// All returns the full catalog.
func All() []Module {
	out := make([]Module, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks up one module by code.
func Get(code string) (Module, bool) {
	m, ok := byCode[code]
	return m, ok
}
