package keymap

import "strings"

// ApplyOverrides applies "context:key" -> command overrides to the registry.
// Keys without a context apply globally.
func ApplyOverrides(r *Registry, overrides map[string]string) {
	for binding, cmd := range overrides {
		ctx, key := parseBinding(binding)
		if key == "" || cmd == "" {
			continue
		}
		r.SetUserOverride(ctx, key, Command(cmd))
	}
}

func parseBinding(s string) (Context, string) {
	if ctx, key, ok := strings.Cut(s, ":"); ok && ctx != "" && key != "" {
		return Context(ctx), key
	}
	return ContextGlobal, s
}
