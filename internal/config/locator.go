package config

import (
	"os"
	"path/filepath"
	"strings"
)

// File names of the rc dialect per scope.
const (
	builtinRCName = "rc"
	globalRCName  = "rc"
	userRCName    = ".depctlrc"
	projectRCName = ".depctlrc"
)

// ScopeFiles lists the candidate rc file per scope. An empty path means the
// scope has no candidate and its layer is skipped.
type ScopeFiles struct {
	Builtin   string
	Global    string
	User      string
	Project   string
	Workspace string
}

// LocateScopeFiles determines every scope's candidate rc file. The project
// rc is the nearest one ascending from the project directory. The workspace
// rc participates only when the workspace root is a directory distinct from
// the project directory, so the same file is never loaded twice.
func LocateScopeFiles(projectDir, workspaceRoot, builtinDir, homeDir string) ScopeFiles {
	files := ScopeFiles{}

	if builtinDir != "" {
		files.Builtin = filepath.Join(builtinDir, builtinRCName)
	}

	configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if configHome == "" && homeDir != "" {
		configHome = filepath.Join(homeDir, ".config")
	}
	if configHome != "" {
		files.Global = filepath.Join(configHome, "depctl", globalRCName)
	}

	if homeDir != "" {
		files.User = filepath.Join(homeDir, userRCName)
	}

	files.Project = findNearestRC(projectDir)

	if workspaceRoot != "" && !sameDir(workspaceRoot, projectDir) {
		files.Workspace = filepath.Join(workspaceRoot, projectRCName)
	}

	return files
}

// findNearestRC ascends from dir towards the filesystem root and returns the
// first rc file found.
func findNearestRC(dir string) string {
	current, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(current, projectRCName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
