package template

// Merge folds caller overrides into the template's defaults and returns
// the activation configuration: {"modules", "settings", "module_settings"}.
// Maps merge recursively with caller keys winning; everything else,
// including the module list, is replaced wholesale by the caller's value.
func Merge(tmpl Template, overrides map[string]any) map[string]any {
	base := map[string]any{
		"modules":         toAnySlice(tmpl.Modules),
		"settings":        cloneMap(tmpl.Settings),
		"module_settings": moduleSettingsMap(tmpl.ModuleSettings),
	}
	if len(overrides) == 0 {
		return base
	}
	return deepMerge(base, overrides)
}

func deepMerge(dst, src map[string]any) map[string]any {
	for key, srcVal := range src {
		if dstMap, ok := dst[key].(map[string]any); ok {
			if srcMap, ok := srcVal.(map[string]any); ok {
				dst[key] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
	return dst
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func moduleSettingsMap(m map[string]map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for code, settings := range m {
		out[code] = cloneMap(settings)
	}
	return out
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
