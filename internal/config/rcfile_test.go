package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	internalconfig "github.com/dobrovols/depctl/internal/config"
	pkgconfig "github.com/dobrovols/depctl/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseRCFileReadsAssignments(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".depctlrc")
	writeFile(t, path, strings.Join([]string{
		"# leading comment",
		"",
		"store-dir = /var/cache/depctl",
		`registry="https://registry.example.com/"`,
		"@acme:registry=https://acme.example.com/",
		"//acme.example.com/:_authToken=s3cr3t",
		"; trailing comment",
	}, "\n"))

	layer, err := internalconfig.ParseRCFile(pkgconfig.ScopeProjectFile, path)
	if err != nil {
		t.Fatalf("ParseRCFile returned error: %v", err)
	}

	if layer.Len() != 4 {
		t.Fatalf("expected 4 assignments, got %d (%v)", layer.Len(), layer.Keys())
	}
	if v, _ := layer.Get("store-dir"); v != "/var/cache/depctl" {
		t.Fatalf("expected trimmed value, got %q", v)
	}
	if v, _ := layer.Get("registry"); v != "https://registry.example.com/" {
		t.Fatalf("expected quotes stripped, got %q", v)
	}
	if v, _ := layer.Get("@acme:registry"); v != "https://acme.example.com/" {
		t.Fatalf("expected scoped registry key preserved, got %q", v)
	}
	if v, _ := layer.Get("//acme.example.com/:_authToken"); v != "s3cr3t" {
		t.Fatalf("expected credential key preserved, got %q", v)
	}
	if layer.Dir != filepath.Dir(path) {
		t.Fatalf("expected layer anchored to file dir, got %q", layer.Dir)
	}
}

func TestParseRCFilePreservesKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".depctlrc")
	writeFile(t, path, "zeta=1\nalpha=2\nzeta=3\n")

	layer, err := internalconfig.ParseRCFile(pkgconfig.ScopeUserFile, path)
	if err != nil {
		t.Fatalf("ParseRCFile returned error: %v", err)
	}
	keys := layer.Keys()
	if len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Fatalf("expected first-seen order with duplicates folded, got %v", keys)
	}
	if v, _ := layer.Get("zeta"); v != "3" {
		t.Fatalf("expected last duplicate to win, got %q", v)
	}
}

func TestParseRCFileRejectsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".depctlrc")
	writeFile(t, path, "registry=https://registry.example.com/\nthis is not an assignment\n")

	_, err := internalconfig.ParseRCFile(pkgconfig.ScopeUserFile, path)
	if !errors.Is(err, internalconfig.ErrMalformedRCFile) {
		t.Fatalf("expected ErrMalformedRCFile, got %v", err)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected error to carry the line number, got %v", err)
	}
}

func TestParseRCFileMissingFile(t *testing.T) {
	_, err := internalconfig.ParseRCFile(pkgconfig.ScopeUserFile, filepath.Join(t.TempDir(), "absent"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
