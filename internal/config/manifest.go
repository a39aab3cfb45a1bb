package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	pkgconfig "github.com/dobrovols/depctl/pkg/config"
)

// projectManifestName is the project manifest file read at the effective
// root directory.
const projectManifestName = "package.json"

// workspaceManifestName declares package globs, catalogs, and
// workspace-scoped settings at the workspace root.
const workspaceManifestName = "depctl-workspace.yaml"

// readProjectManifest loads the project manifest at dir. A missing manifest
// is not an error; a malformed one is fatal and propagated unchanged.
func readProjectManifest(dir string) (*pkgconfig.ProjectManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, projectManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read project manifest: %w", err)
	}
	var manifest pkgconfig.ProjectManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse project manifest %q: %w", filepath.Join(dir, projectManifestName), err)
	}
	return &manifest, nil
}

type rawWorkspaceManifest struct {
	Packages []string                     `yaml:"packages"`
	Catalog  map[string]string            `yaml:"catalog"`
	Catalogs map[string]map[string]string `yaml:"catalogs"`
	Settings map[string]any               `yaml:"settings"`
}

// readWorkspaceManifest loads the workspace manifest at root. A missing
// manifest is not an error; a malformed one is fatal.
func readWorkspaceManifest(root string) (*pkgconfig.WorkspaceManifest, error) {
	path := filepath.Join(root, workspaceManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace manifest: %w", err)
	}

	var raw rawWorkspaceManifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse workspace manifest %q: %w", path, err)
	}

	manifest := &pkgconfig.WorkspaceManifest{
		Packages: raw.Packages,
		Catalog:  raw.Catalog,
		Catalogs: raw.Catalogs,
	}
	if len(raw.Settings) > 0 {
		manifest.Settings = make(map[string]string, len(raw.Settings))
		for key, value := range raw.Settings {
			manifest.Settings[key] = stringifySetting(value)
		}
	}
	return manifest, nil
}

// stringifySetting renders a YAML scalar in the rc dialect so manifest
// settings pass through the same coercion as file settings.
func stringifySetting(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case []any:
		out := ""
		for i, item := range v {
			if i > 0 {
				out += ","
			}
			out += stringifySetting(item)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}
