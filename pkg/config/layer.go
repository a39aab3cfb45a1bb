package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Scope identifies where a configuration layer originated within the
// precedence chain.
type Scope string

const (
	ScopeDefaults      Scope = "defaults"
	ScopeBuiltinFile   Scope = "builtin-file"
	ScopeGlobalFile    Scope = "global-file"
	ScopeUserFile      Scope = "user-file"
	ScopeProjectFile   Scope = "project-file"
	ScopeWorkspaceFile Scope = "workspace-file"
	ScopeEnv           Scope = "env"
	ScopeCLI           Scope = "cli"
)

// ScopeOrder lists every scope from lowest to highest precedence.
var ScopeOrder = []Scope{
	ScopeDefaults,
	ScopeBuiltinFile,
	ScopeGlobalFile,
	ScopeUserFile,
	ScopeProjectFile,
	ScopeWorkspaceFile,
	ScopeEnv,
	ScopeCLI,
}

// ErrInvalidSettingValue indicates a raw value cannot be coerced to the type
// the schema declares.
var ErrInvalidSettingValue = errors.New("invalid setting value")

// Layer is one scope's raw key/value mapping. Layers are immutable once
// loaded; Set is only called while a loader builds the layer.
type Layer struct {
	Scope  Scope
	Dir    string
	values map[string]string
	keys   []string
}

// NewLayer constructs an empty layer. dir is the directory of the defining
// file and anchors relative path values; it is empty for env and CLI layers.
func NewLayer(scope Scope, dir string) *Layer {
	return &Layer{Scope: scope, Dir: dir, values: map[string]string{}}
}

// Set records a raw key/value pair, preserving first-seen key order.
func (l *Layer) Set(key, value string) {
	if _, ok := l.values[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.values[key] = value
}

// Get returns the raw value for a key.
func (l *Layer) Get(key string) (string, bool) {
	v, ok := l.values[key]
	return v, ok
}

// Keys returns the raw keys in first-seen order.
func (l *Layer) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Len reports the number of raw keys in the layer.
func (l *Layer) Len() int { return len(l.keys) }

// NormalizedLayer holds one layer's settings after key normalization and
// type coercion. Registry and credential keys are kept apart from ordinary
// settings because they merge under component-specific rules.
type NormalizedLayer struct {
	Scope       Scope
	Values      map[string]any
	Registries  map[string]string
	Credentials map[string]string
	// Unknown lists raw keys the registry does not recognise, excluding
	// comment markers, credential keys, and per-scope registry keys.
	Unknown []string
}

// IsCredentialKey reports whether a raw key uses the path-style credential
// prefix (for example "//registry.example.com/:_authToken").
func IsCredentialKey(key string) bool {
	return strings.HasPrefix(key, "//")
}

// IsScopedRegistryKey reports whether a raw key selects a per-scope registry
// URL (keys of the form "@scope:registry").
func IsScopedRegistryKey(key string) bool {
	return strings.HasPrefix(key, "@") && strings.HasSuffix(key, ":registry")
}

func isCommentMarker(key string) bool {
	return strings.HasPrefix(key, "#") || strings.HasPrefix(key, ";")
}

// NormalizeLayer resolves every raw key through the schema and coerces the
// raw values to their declared types. Unknown keys are not dropped from the
// raw layer; they are recorded on the normalized layer for diagnostics.
// Coercion failures degrade to warnings and the offending key is skipped.
func NormalizeLayer(schema *Schema, layer *Layer) (*NormalizedLayer, []string) {
	out := &NormalizedLayer{
		Scope:       layer.Scope,
		Values:      map[string]any{},
		Registries:  map[string]string{},
		Credentials: map[string]string{},
	}
	var warnings []string

	direct := map[string]bool{}
	for _, key := range layer.Keys() {
		raw, _ := layer.Get(key)

		switch {
		case isCommentMarker(key):
			continue
		case IsCredentialKey(key):
			out.Credentials[key] = raw
			continue
		case IsScopedRegistryKey(key):
			out.Registries[strings.TrimSuffix(key, ":registry")] = raw
			continue
		}

		entry, name, ok := schema.Lookup(key)
		if !ok {
			out.Unknown = append(out.Unknown, key)
			continue
		}
		// A deprecated alias never overrides the modern key from the
		// same layer.
		if entry.AliasOf != "" && direct[name] {
			continue
		}

		value, err := coerceSetting(entry.Type, raw, layer.Dir)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: setting %q: %v", layer.Scope, key, err))
			continue
		}
		out.Values[name] = value
		if entry.AliasOf == "" {
			direct[name] = true
		}
	}
	return out, warnings
}

// coerceSetting converts a raw string value to the declared type. An empty
// boolean value is treated as a presence flag.
func coerceSetting(t ValueType, raw, dir string) (any, error) {
	switch t {
	case TypeBool:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return true, nil
		}
		value, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: expected boolean, got %q", ErrInvalidSettingValue, raw)
		}
		return value, nil
	case TypeNumber:
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: expected number, got %q", ErrInvalidSettingValue, raw)
		}
		return value, nil
	case TypeStringList:
		if strings.TrimSpace(raw) == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	case TypePath:
		path := strings.TrimSpace(raw)
		if path == "" {
			return "", nil
		}
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettingValue, err)
		}
		return abs, nil
	default:
		return raw, nil
	}
}

// RawConfig preserves original key spellings and string values across a
// slice of layers, merged in precedence order. It feeds subprocess
// environments and unknown-key diagnostics.
type RawConfig map[string]string

// BuildRaw folds the raw layers whose scope the include predicate admits.
// A nil predicate admits every layer.
func BuildRaw(layers []*Layer, include func(Scope) bool) RawConfig {
	out := RawConfig{}
	for _, layer := range layers {
		if include != nil && !include(layer.Scope) {
			continue
		}
		for _, key := range layer.Keys() {
			value, _ := layer.Get(key)
			out[key] = value
		}
	}
	return out
}

// LocalScopes returns the inclusion predicate for the "local" raw view,
// which reflects only project intent. When the workspace root is a distinct
// directory its layer participates as well.
func LocalScopes(hasDistinctWorkspaceRoot bool) func(Scope) bool {
	return func(s Scope) bool {
		if s == ScopeProjectFile {
			return true
		}
		return hasDistinctWorkspaceRoot && s == ScopeWorkspaceFile
	}
}
