package config_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dobrovols/depctl/pkg/config"
)

func TestNormalizeLayerSeparatesSettingClasses(t *testing.T) {
	schema := config.DefaultSchema()
	layer := config.NewLayer(config.ScopeProjectFile, "/project")
	layer.Set("registry", "https://registry.example.com/")
	layer.Set("@acme:registry", "https://acme.example.com/")
	layer.Set("//acme.example.com/:_authToken", "s3cr3t")
	layer.Set("#comment-marker", "ignored")
	layer.Set("totally-unknown-flag", "1")

	normalized, warnings := config.NormalizeLayer(schema, layer)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if normalized.Values["registry"] != "https://registry.example.com/" {
		t.Fatalf("expected registry value, got %v", normalized.Values["registry"])
	}
	if normalized.Registries["@acme"] != "https://acme.example.com/" {
		t.Fatalf("expected scoped registry, got %v", normalized.Registries)
	}
	if normalized.Credentials["//acme.example.com/:_authToken"] != "s3cr3t" {
		t.Fatalf("expected credential retained, got %v", normalized.Credentials)
	}
	if len(normalized.Unknown) != 1 || normalized.Unknown[0] != "totally-unknown-flag" {
		t.Fatalf("expected single unknown key, got %v", normalized.Unknown)
	}
}

func TestNormalizeLayerAliasNeverOverridesDirectKey(t *testing.T) {
	schema := config.DefaultSchema()

	layer := config.NewLayer(config.ScopeUserFile, "")
	layer.Set("shamefully-hoist", "false")
	layer.Set("shamefully-flatten", "true")

	normalized, _ := config.NormalizeLayer(schema, layer)
	if v, ok := normalized.Values["shamefullyHoist"].(bool); !ok || v {
		t.Fatalf("expected direct key to win over alias, got %v", normalized.Values["shamefullyHoist"])
	}

	// Alias alone still feeds the modern setting.
	aliasOnly := config.NewLayer(config.ScopeUserFile, "")
	aliasOnly.Set("shamefully-flatten", "true")
	normalized, _ = config.NormalizeLayer(schema, aliasOnly)
	if v, ok := normalized.Values["shamefullyHoist"].(bool); !ok || !v {
		t.Fatalf("expected alias to populate shamefullyHoist, got %v", normalized.Values["shamefullyHoist"])
	}
}

func TestNormalizeLayerCoercesDeclaredTypes(t *testing.T) {
	schema := config.DefaultSchema()
	layer := config.NewLayer(config.ScopeProjectFile, "/project")
	layer.Set("hoist", "")
	layer.Set("network-concurrency", "32")
	layer.Set("hoist-pattern", "eslint-*, babel-* ,")
	layer.Set("store-dir", "cache/store")

	normalized, warnings := config.NormalizeLayer(schema, layer)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if v, ok := normalized.Values["hoist"].(bool); !ok || !v {
		t.Fatalf("expected empty boolean to read as presence, got %v", normalized.Values["hoist"])
	}
	if v, ok := normalized.Values["networkConcurrency"].(int); !ok || v != 32 {
		t.Fatalf("expected 32, got %v", normalized.Values["networkConcurrency"])
	}
	pattern, _ := normalized.Values["hoistPattern"].([]string)
	if len(pattern) != 2 || pattern[0] != "eslint-*" || pattern[1] != "babel-*" {
		t.Fatalf("expected trimmed two-element list, got %v", pattern)
	}
	store, _ := normalized.Values["storeDir"].(string)
	if store != filepath.Join("/project", "cache", "store") {
		t.Fatalf("expected path anchored to layer dir, got %q", store)
	}
}

func TestNormalizeLayerDegradesCoercionFailuresToWarnings(t *testing.T) {
	schema := config.DefaultSchema()
	layer := config.NewLayer(config.ScopeProjectFile, "")
	layer.Set("network-concurrency", "not-a-number")
	layer.Set("registry", "https://registry.example.com/")

	normalized, warnings := config.NormalizeLayer(schema, layer)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "network-concurrency") {
		t.Fatalf("expected one warning naming the key, got %v", warnings)
	}
	if _, ok := normalized.Values["networkConcurrency"]; ok {
		t.Fatalf("expected invalid value to be skipped")
	}
	if normalized.Values["registry"] != "https://registry.example.com/" {
		t.Fatalf("expected valid sibling setting to survive")
	}
}

func TestCoercionFailureWrapsSentinel(t *testing.T) {
	schema := config.DefaultSchema()
	layer := config.NewLayer(config.ScopeCLI, "")
	layer.Set("hoist", "maybe")

	_, warnings := config.NormalizeLayer(schema, layer)
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], config.ErrInvalidSettingValue.Error()) {
		t.Fatalf("expected warning to carry the sentinel text, got %q", warnings[0])
	}
	if errors.Is(nil, config.ErrInvalidSettingValue) {
		t.Fatalf("sentinel comparison is broken")
	}
}

func TestBuildRawPreservesSpellingsAcrossLayers(t *testing.T) {
	user := config.NewLayer(config.ScopeUserFile, "")
	user.Set("store-dir", "/user/store")
	user.Set("//acme.example.com/:_authToken", "s3cr3t")

	project := config.NewLayer(config.ScopeProjectFile, "")
	project.Set("store-dir", "/project/store")

	raw := config.BuildRaw([]*config.Layer{user, project}, nil)
	if raw["store-dir"] != "/project/store" {
		t.Fatalf("expected higher layer to win, got %q", raw["store-dir"])
	}
	if raw["//acme.example.com/:_authToken"] != "s3cr3t" {
		t.Fatalf("expected credential key preserved verbatim")
	}

	local := config.BuildRaw([]*config.Layer{user, project}, config.LocalScopes(false))
	if _, ok := local["//acme.example.com/:_authToken"]; ok {
		t.Fatalf("expected user-scope key excluded from local view")
	}
	if local["store-dir"] != "/project/store" {
		t.Fatalf("expected project key in local view, got %q", local["store-dir"])
	}
}
