package config

// Merged is the outcome of folding every normalized layer in precedence
// order: one typed value per internal setting name plus per-key provenance.
type Merged struct {
	Values      map[string]any
	Sources     map[string]Scope
	Registries  map[string]string
	Credentials map[string]string
}

// MergeLayers folds normalized layers lowest-precedence first. Later layers
// overwrite earlier ones key-by-key; list values are replaced wholesale.
// The schema seeds the defaults scope. The registry mapping keeps the
// default registry entry unless a layer overrides it explicitly, then
// merges per-scope registry keys on top.
func MergeLayers(schema *Schema, layers []*NormalizedLayer) *Merged {
	merged := &Merged{
		Values:      map[string]any{},
		Sources:     map[string]Scope{},
		Registries:  map[string]string{"default": DefaultRegistryURL},
		Credentials: map[string]string{},
	}

	for name, value := range schema.Defaults() {
		merged.Values[name] = value
		merged.Sources[name] = ScopeDefaults
	}

	for _, layer := range layers {
		for name, value := range layer.Values {
			merged.Values[name] = value
			merged.Sources[name] = layer.Scope
			if name == "registry" {
				if url, ok := value.(string); ok && url != "" {
					merged.Registries["default"] = url
				}
			}
		}
		for scope, url := range layer.Registries {
			merged.Registries[scope] = url
		}
		for key, value := range layer.Credentials {
			merged.Credentials[key] = value
		}
	}
	return merged
}

// Bool returns the merged boolean for name; ok is false when the setting is
// absent or not a boolean.
func (m *Merged) Bool(name string) (value, ok bool) {
	value, ok = m.Values[name].(bool)
	return value, ok
}

// String returns the merged string for name.
func (m *Merged) String(name string) (string, bool) {
	value, ok := m.Values[name].(string)
	return value, ok
}

// StringList returns the merged list for name.
func (m *Merged) StringList(name string) ([]string, bool) {
	value, ok := m.Values[name].([]string)
	return value, ok
}

// Source reports which scope supplied the current value for name.
func (m *Merged) Source(name string) Scope {
	return m.Sources[name]
}
