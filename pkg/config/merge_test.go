package config_test

import (
	"testing"

	"github.com/dobrovols/depctl/pkg/config"
)

func normalize(t *testing.T, scope config.Scope, pairs map[string]string) *config.NormalizedLayer {
	t.Helper()
	layer := config.NewLayer(scope, "")
	for key, value := range pairs {
		layer.Set(key, value)
	}
	normalized, warnings := config.NormalizeLayer(config.DefaultSchema(), layer)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings for %s layer: %v", scope, warnings)
	}
	return normalized
}

func TestMergeLayersHigherScopeWinsPerKey(t *testing.T) {
	schema := config.DefaultSchema()
	user := normalize(t, config.ScopeUserFile, map[string]string{
		"node-linker": "hoisted",
		"store-dir":   "/user/store",
	})
	project := normalize(t, config.ScopeProjectFile, map[string]string{
		"node-linker": "pnp",
	})
	cli := normalize(t, config.ScopeCLI, map[string]string{
		"store-dir": "/cli/store",
	})

	merged := config.MergeLayers(schema, []*config.NormalizedLayer{user, project, cli})

	if v, _ := merged.String("nodeLinker"); v != "pnp" {
		t.Fatalf("expected project to beat user, got %q", v)
	}
	if merged.Source("nodeLinker") != config.ScopeProjectFile {
		t.Fatalf("expected project-file provenance, got %s", merged.Source("nodeLinker"))
	}
	if v, _ := merged.String("storeDir"); v != "/cli/store" {
		t.Fatalf("expected cli to beat user, got %q", v)
	}
	if merged.Source("storeDir") != config.ScopeCLI {
		t.Fatalf("expected cli provenance, got %s", merged.Source("storeDir"))
	}
}

func TestMergeLayersSeedsDefaultsScope(t *testing.T) {
	schema := config.DefaultSchema()
	merged := config.MergeLayers(schema, nil)

	if v, ok := merged.Bool("hoist"); !ok || !v {
		t.Fatalf("expected seeded hoist default, got %v (ok=%v)", v, ok)
	}
	if merged.Source("hoist") != config.ScopeDefaults {
		t.Fatalf("expected defaults provenance, got %s", merged.Source("hoist"))
	}
	if merged.Registries["default"] != config.DefaultRegistryURL {
		t.Fatalf("expected default registry entry, got %v", merged.Registries)
	}
}

func TestMergeLayersListsReplaceWholesale(t *testing.T) {
	schema := config.DefaultSchema()
	user := normalize(t, config.ScopeUserFile, map[string]string{
		"hoist-pattern": "eslint-*,babel-*",
	})
	cli := normalize(t, config.ScopeCLI, map[string]string{
		"hoist-pattern": "react-*",
	})

	merged := config.MergeLayers(schema, []*config.NormalizedLayer{user, cli})
	pattern, _ := merged.StringList("hoistPattern")
	if len(pattern) != 1 || pattern[0] != "react-*" {
		t.Fatalf("expected wholesale replacement, got %v", pattern)
	}
}

func TestMergeLayersFoldsRegistriesAndCredentials(t *testing.T) {
	schema := config.DefaultSchema()
	user := normalize(t, config.ScopeUserFile, map[string]string{
		"registry":                       "https://mirror.example.com/",
		"@acme:registry":                 "https://acme.example.com/",
		"//acme.example.com/:_authToken": "user-token",
	})
	project := normalize(t, config.ScopeProjectFile, map[string]string{
		"@acme:registry": "https://acme-internal.example.com/",
	})

	merged := config.MergeLayers(schema, []*config.NormalizedLayer{user, project})
	if merged.Registries["default"] != "https://mirror.example.com/" {
		t.Fatalf("expected explicit override of default registry, got %q", merged.Registries["default"])
	}
	if merged.Registries["@acme"] != "https://acme-internal.example.com/" {
		t.Fatalf("expected project scope to win, got %q", merged.Registries["@acme"])
	}
	if merged.Credentials["//acme.example.com/:_authToken"] != "user-token" {
		t.Fatalf("expected credential folded, got %v", merged.Credentials)
	}
}
