// Package template holds the built-in activation templates and the merge
// logic that folds caller overrides into a template's defaults.
package template

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/biasharahq/platform/internal/model"
)

// Template codes.
const (
	CodeStartup    = "STARTUP"
	CodeSME        = "SME"
	CodeEnterprise = "ENTERPRISE"
)

// ErrUnknownTemplate marks a template code with no built-in definition.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is one built-in activation profile: the default module set and
// the engine-side settings those modules start with.
type Template struct {
	Code           string                    `yaml:"code" json:"code"`
	Title          string                    `yaml:"title" json:"title"`
	Modules        []string                  `yaml:"modules" json:"modules"`
	Settings       map[string]any            `yaml:"settings" json:"settings"`
	ModuleSettings map[string]map[string]any `yaml:"module_settings" json:"module_settings"`
}

//go:embed templates/*.yaml
var templateFS embed.FS

var builtin = func() map[string]Template {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		panic("template: read embedded templates: " + err.Error())
	}

	out := make(map[string]Template, len(entries))
	for _, entry := range entries {
		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			panic("template: " + entry.Name() + ": " + err.Error())
		}
		var tmpl Template
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			panic("template: parse " + entry.Name() + ": " + err.Error())
		}
		out[tmpl.Code] = tmpl
	}
	return out
}()

// Get returns the built-in template for the code.
func Get(code string) (Template, error) {
	tmpl, ok := builtin[strings.ToUpper(code)]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, code)
	}
	return tmpl, nil
}

// ForWorkspaceType maps a workspace type to its default template code.
func ForWorkspaceType(workspaceType string) string {
	switch strings.ToUpper(workspaceType) {
	case model.WorkspaceSACCO, model.WorkspaceEnterprise:
		return CodeEnterprise
	case model.WorkspaceSME:
		return CodeSME
	default:
		return CodeStartup
	}
}
