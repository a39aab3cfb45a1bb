package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// WorkspaceManifest is the parsed workspace manifest: package glob patterns,
// named dependency-version catalogs, and workspace-scoped settings.
type WorkspaceManifest struct {
	Packages []string
	// Catalog is the unnamed default catalog; Catalogs holds the named
	// ones. Both map package name to a pinned version range.
	Catalog  map[string]string
	Catalogs map[string]map[string]string
	Settings map[string]string
}

// ProjectManifest is the slice of the project manifest the resolver reads.
type ProjectManifest struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	PackageManager string   `json:"packageManager"`
	Workspaces     []string `json:"workspaces"`
}

// PackageManagerRequirement is a parsed required package-manager identity.
type PackageManagerRequirement struct {
	Name    string
	Version *semver.Version
	Raw     string
}

// ErrMalformedPackageManager indicates the packageManager field could not be
// split into a name and version.
var ErrMalformedPackageManager = errors.New("malformed packageManager field")

// ParsePackageManager splits a packageManager declaration on "@", discards
// any integrity-hash suffix after "+", and treats a version containing a
// colon as a non-semantic reference carrying no version requirement.
func ParsePackageManager(raw string) (*PackageManagerRequirement, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	name, version, found := strings.Cut(trimmed, "@")
	if !found || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedPackageManager, raw)
	}
	version, _, _ = strings.Cut(version, "+")
	req := &PackageManagerRequirement{Name: name, Raw: trimmed}
	if strings.Contains(version, ":") {
		return req, nil
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrMalformedPackageManager, version, err)
	}
	req.Version = parsed
	return req, nil
}

// ApplyWorkspace merges the workspace manifest into an already materialized
// configuration. Manifest-declared settings win over every file and env
// layer but never over CLI-supplied values. Package glob patterns come from
// an explicit CLI override, else the manifest, else a single pattern
// matching the root itself. Catalogs are copied verbatim.
func ApplyWorkspace(schema *Schema, cfg *EffectiveConfig, merged *Merged, manifest *WorkspaceManifest) []string {
	if manifest == nil {
		manifest = &WorkspaceManifest{}
	}
	var warnings []string

	for rawKey, rawValue := range manifest.Settings {
		entry, name, ok := schema.Lookup(rawKey)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("workspace manifest: unknown setting %q", rawKey))
			continue
		}
		if merged.Source(name) == ScopeCLI {
			continue
		}
		value, err := coerceSetting(entry.Type, rawValue, "")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("workspace manifest: setting %q: %v", rawKey, err))
			continue
		}
		merged.Values[name] = value
		merged.Sources[name] = ScopeWorkspaceFile
		applySetting(cfg, name, value)
	}

	switch {
	case len(cfg.WorkspacePackagePatterns) > 0:
		// Explicit CLI override already in place.
	case len(manifest.Packages) > 0:
		cfg.WorkspacePackagePatterns = append([]string(nil), manifest.Packages...)
	default:
		cfg.WorkspacePackagePatterns = []string{"."}
	}

	cfg.Catalogs = map[string]map[string]string{}
	if len(manifest.Catalog) > 0 {
		cfg.Catalogs["default"] = copyCatalog(manifest.Catalog)
	}
	for name, entries := range manifest.Catalogs {
		cfg.Catalogs[name] = copyCatalog(entries)
	}

	return warnings
}

func copyCatalog(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for name, rangeSpec := range in {
		out[name] = rangeSpec
	}
	return out
}
