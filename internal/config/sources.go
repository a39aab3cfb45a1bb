package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgconfig "github.com/dobrovols/depctl/pkg/config"
)

// envSettingPrefix marks environment variables that carry setting overrides,
// e.g. DEPCTL_CONFIG_STORE_DIR=/tmp/store becomes store-dir.
const envSettingPrefix = "DEPCTL_CONFIG_"

// execPathEnvVar carries the resolved real path of the running binary while
// the packaged builtin file is loaded, so the file convention can resolve
// paths relative to the installation.
const execPathEnvVar = "DEPCTL_EXEC_PATH"

// legacyPrefixKey aliases the dir flag for compatibility with the underlying
// config-file convention; it exists only while layers load and is dropped
// from the final raw view.
const legacyPrefixKey = "prefix"

// loadFileLayer parses one scope file. A missing file is not an error; a
// malformed file yields a warning and an empty layer.
func loadFileLayer(scope pkgconfig.Scope, path string) (*pkgconfig.Layer, string) {
	if path == "" {
		return nil, ""
	}
	layer, err := ParseRCFile(scope, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ""
		}
		return pkgconfig.NewLayer(scope, filepath.Dir(path)), fmt.Sprintf("ignoring %s config %q: %v", scope, path, err)
	}
	return layer, ""
}

// envLayer extracts setting overrides from the environment snapshot.
func envLayer(env pkgconfig.Environment) *pkgconfig.Layer {
	layer := pkgconfig.NewLayer(pkgconfig.ScopeEnv, "")
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	// Deterministic iteration keeps repeated resolutions byte-identical.
	sort.Strings(keys)
	for _, key := range keys {
		upper := strings.ToUpper(key)
		if !strings.HasPrefix(upper, envSettingPrefix) {
			continue
		}
		setting := strings.ToLower(strings.TrimPrefix(upper, envSettingPrefix))
		setting = strings.ReplaceAll(setting, "_", "-")
		if setting == "" {
			continue
		}
		layer.Set(setting, env[key])
	}
	return layer
}

// cliLayer builds the highest-precedence layer from the flat CLI option
// map. The dir option is resolved to a real absolute path before use and
// mirrored under the legacy prefix key.
func cliLayer(options map[string]string, workDir string) (*pkgconfig.Layer, string) {
	layer := pkgconfig.NewLayer(pkgconfig.ScopeCLI, workDir)
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dir := ""
	for _, key := range keys {
		value := options[key]
		if key == "dir" {
			dir = realpathDir(value, workDir)
			layer.Set("dir", dir)
			layer.Set(legacyPrefixKey, dir)
			continue
		}
		layer.Set(key, value)
	}
	return layer, dir
}

// realpathDir makes dir absolute and follows symlinks. Lookup failures are
// ignored and the unmodified absolute path is used.
func realpathDir(dir, base string) string {
	if dir == "" {
		return ""
	}
	if !filepath.IsAbs(dir) && base != "" {
		dir = filepath.Join(base, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// execRealpath resolves the real path of the running binary. Failures are
// silently ignored; the builtin layer is then skipped.
func execRealpath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}

// withExecPathEnv substitutes the running executable's path into the
// process environment for the duration of fn. The prior value is restored
// unconditionally on every exit path, including errors.
func withExecPathEnv(execPath string, fn func() error) error {
	prior, had := os.LookupEnv(execPathEnvVar)
	if err := os.Setenv(execPathEnvVar, execPath); err != nil {
		return err
	}
	defer func() {
		if had {
			os.Setenv(execPathEnvVar, prior)
			return
		}
		os.Unsetenv(execPathEnvVar)
	}()
	return fn()
}
