package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	pkgconfig "github.com/dobrovols/depctl/pkg/config"
	"github.com/dobrovols/depctl/pkg/telemetry"
)

// packageManagerStrictEnvVar toggles strict enforcement of a manifest's
// required package manager.
const packageManagerStrictEnvVar = "DEPCTL_PACKAGE_MANAGER_STRICT"

// Options are the inputs to one resolution call.
type Options struct {
	// CLI is the flat map of kebab-case flag names to raw values.
	CLI map[string]string
	// Env is the environment snapshot; nil means the process environment.
	Env map[string]string
	// Dir is the project directory; the working directory when empty.
	Dir string
	// WorkspaceRoot is the detected workspace root, when any.
	WorkspaceRoot string

	// ToolName and ToolVersion form the package-identity descriptor used
	// for the default user agent.
	ToolName    string
	ToolVersion string

	// InheritAuth resolves the pipeline twice and splices credential
	// settings from a home-rooted resolution into the normal one.
	InheritAuth bool
	// CheckUnknownSettings requests the unknown-key diagnostic over the
	// project and workspace file layers.
	CheckUnknownSettings bool
	// IgnoreLocalSettings suppresses the project and workspace file
	// layers; the auth-inheritance run sets it.
	IgnoreLocalSettings bool

	// BuiltinDir overrides the executable-derived location of the
	// packaged builtin file.
	BuiltinDir string
	// HomeDir overrides the user home directory.
	HomeDir string

	// BinDirChecker probes the global binary directory for writability.
	BinDirChecker pkgconfig.BinDirChecker
	// BranchLookup overrides source-control branch detection.
	BranchLookup func(ctx context.Context, dir string) (string, error)

	// Emitter receives phase telemetry when set.
	Emitter *telemetry.Emitter
}

// Resolve merges every configuration source into one effective snapshot
// plus non-fatal warnings. All state is per-call; nothing survives between
// resolutions except the scoped environment substitution, which is restored
// before Resolve returns.
func Resolve(ctx context.Context, opts Options) (*pkgconfig.Resolved, error) {
	if !opts.InheritAuth {
		return resolveOnce(ctx, opts)
	}

	homeDir, err := resolveHomeDir(opts)
	if err != nil {
		return nil, err
	}

	authOpts := opts
	authOpts.InheritAuth = false
	authOpts.Dir = homeDir
	authOpts.WorkspaceRoot = ""
	authOpts.IgnoreLocalSettings = true

	normalOpts := opts
	normalOpts.InheritAuth = false

	var authResolved, normalResolved *pkgconfig.Resolved
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		authResolved, err = resolveOnce(groupCtx, authOpts)
		return err
	})
	group.Go(func() error {
		var err error
		normalResolved, err = resolveOnce(groupCtx, normalOpts)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	spliceAuthSettings(normalResolved, authResolved)
	normalResolved.Warnings = append(normalResolved.Warnings, authResolved.Warnings...)
	return normalResolved, nil
}

// resolveOnce runs the pipeline a single time: load, normalize, merge,
// validate, derive, workspace, global.
func resolveOnce(ctx context.Context, opts Options) (*pkgconfig.Resolved, error) {
	schema := pkgconfig.DefaultSchema()
	env := environmentSnapshot(opts.Env)
	var warnings []string

	homeDir, err := resolveHomeDir(opts)
	if err != nil {
		return nil, err
	}
	workDir, _ := os.Getwd()

	cli, cliDir := cliLayer(opts.CLI, workDir)
	projectDir := firstNonEmpty(cliDir, opts.Dir, workDir)
	projectDir = realpathDir(projectDir, workDir)

	var layers []*pkgconfig.Layer
	err = emitPhase(opts.Emitter, telemetry.PhaseLoad, func() error {
		var loadErr error
		layers, warnings, loadErr = loadLayers(opts, projectDir, homeDir, warnings)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	layers = append(layers, envLayer(env), cli)

	normalized := make([]*pkgconfig.NormalizedLayer, 0, len(layers))
	byScope := map[pkgconfig.Scope]*pkgconfig.NormalizedLayer{}
	for _, layer := range layers {
		nl, coerceWarnings := pkgconfig.NormalizeLayer(schema, layer)
		warnings = append(warnings, coerceWarnings...)
		normalized = append(normalized, nl)
		byScope[layer.Scope] = nl
	}

	var merged *pkgconfig.Merged
	err = emitPhase(opts.Emitter, telemetry.PhaseMerge, func() error {
		merged = pkgconfig.MergeLayers(schema, normalized)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := pkgconfig.ValidateConflicts(byScope[pkgconfig.ScopeCLI]); err != nil {
		return nil, err
	}

	cfg := pkgconfig.Materialize(merged)
	cfg.Dir = projectDir
	cfg.WorkspaceRoot = opts.WorkspaceRoot
	if v, ok := env.LookupCaseInsensitive(packageManagerStrictEnvVar); ok {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.PackageManagerStrict = strict
		}
	}

	branch := opts.BranchLookup
	if branch == nil {
		branch = currentGitBranch
	}
	deriveOpts := pkgconfig.DeriveOptions{
		Env:         env,
		HomeDir:     homeDir,
		ToolName:    opts.ToolName,
		ToolVersion: opts.ToolVersion,
		CurrentBranch: func() (string, error) {
			return branch(ctx, projectDir)
		},
		CI: isCI(env),
	}
	err = emitPhase(opts.Emitter, telemetry.PhaseDerive, func() error {
		warnings = append(warnings, pkgconfig.Derive(cfg, merged, deriveOpts)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.CheckUnknownSettings || opts.CheckUnknownSettings {
		warnings = append(warnings, unknownSettingWarnings(byScope)...)
	}

	if !opts.IgnoreLocalSettings {
		var workspaceApplied bool
		err = emitPhase(opts.Emitter, telemetry.PhaseWorkspace, func() error {
			var wsErr error
			warnings, workspaceApplied, wsErr = applyWorkspaceContext(schema, cfg, merged, opts, projectDir, warnings)
			return wsErr
		})
		if err != nil {
			return nil, err
		}
		// Manifest settings enter the merged map after the first derive
		// run, so the derived rules must be replayed over the updated keys.
		if workspaceApplied {
			warnings = append(warnings, pkgconfig.Derive(cfg, merged, deriveOpts)...)
		}
	}

	if cfg.GlobalMode {
		err = emitPhase(opts.Emitter, telemetry.PhaseGlobal, func() error {
			return pkgconfig.ApplyGlobalMode(cfg, env, opts.BinDirChecker)
		})
		if err != nil {
			return nil, err
		}
	}

	hasDistinctRoot := cfg.WorkspaceRoot != "" && !sameDir(cfg.WorkspaceRoot, projectDir)
	raw := pkgconfig.BuildRaw(layers, nil)
	// The legacy alias lives only while layers load; the final raw view
	// carries the canonical key alone.
	delete(raw, legacyPrefixKey)
	resolved := &pkgconfig.Resolved{
		Config:   cfg,
		Merged:   merged,
		Raw:      raw,
		LocalRaw: pkgconfig.BuildRaw(layers, pkgconfig.LocalScopes(hasDistinctRoot)),
		Warnings: warnings,
	}
	return resolved, nil
}

// loadLayers reads the file-backed scopes in increasing precedence. The
// packaged builtin file is loaded under the scoped executable-path
// substitution, which is restored on every exit path.
func loadLayers(opts Options, projectDir, homeDir string, warnings []string) ([]*pkgconfig.Layer, []string, error) {
	builtinDir := opts.BuiltinDir
	execPath := execRealpath()
	if builtinDir == "" && execPath != "" {
		builtinDir = filepath.Dir(execPath)
	}

	files := LocateScopeFiles(projectDir, opts.WorkspaceRoot, builtinDir, homeDir)
	if opts.IgnoreLocalSettings {
		files.Project = ""
		files.Workspace = ""
	}

	var layers []*pkgconfig.Layer
	appendLayer := func(layer *pkgconfig.Layer, warning string) {
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if layer != nil {
			layers = append(layers, layer)
		}
	}

	err := withExecPathEnv(execPath, func() error {
		appendLayer(loadFileLayer(pkgconfig.ScopeBuiltinFile, files.Builtin))
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}

	appendLayer(loadFileLayer(pkgconfig.ScopeGlobalFile, files.Global))
	appendLayer(loadFileLayer(pkgconfig.ScopeUserFile, files.User))
	appendLayer(loadFileLayer(pkgconfig.ScopeProjectFile, files.Project))
	appendLayer(loadFileLayer(pkgconfig.ScopeWorkspaceFile, files.Workspace))

	return layers, warnings, nil
}

// applyWorkspaceContext reads the project manifest at the effective root,
// parses any required package-manager identity, and merges the workspace
// manifest when a workspace root is known. The second return reports whether
// manifest settings changed the merged map.
func applyWorkspaceContext(schema *pkgconfig.Schema, cfg *pkgconfig.EffectiveConfig, merged *pkgconfig.Merged, opts Options, projectDir string, warnings []string) ([]string, bool, error) {
	rootDir := firstNonEmpty(cfg.WorkspaceRoot, projectDir)

	manifest, err := readProjectManifest(rootDir)
	if err != nil {
		return warnings, false, err
	}
	if manifest != nil {
		if len(manifest.Workspaces) > 0 && cfg.WorkspaceRoot == "" {
			warnings = append(warnings, fmt.Sprintf(
				"%s declares the legacy \"workspaces\" field, which depctl does not support; declare packages in %s instead",
				projectManifestName, workspaceManifestName))
		}
		req, parseErr := pkgconfig.ParsePackageManager(manifest.PackageManager)
		if parseErr != nil {
			warnings = append(warnings, parseErr.Error())
		} else if req != nil {
			cfg.RequiredPackageManager = req
		}
	}

	if cfg.WorkspaceRoot == "" {
		return warnings, false, nil
	}

	wsManifest, err := readWorkspaceManifest(cfg.WorkspaceRoot)
	if err != nil {
		return warnings, false, err
	}
	warnings = append(warnings, pkgconfig.ApplyWorkspace(schema, cfg, merged, wsManifest)...)
	applied := wsManifest != nil && len(wsManifest.Settings) > 0
	return warnings, applied, nil
}

// unknownSettingWarnings collects every project- and workspace-scope key the
// registry does not recognise. CLI and environment keys are deliberately
// not inspected.
func unknownSettingWarnings(byScope map[pkgconfig.Scope]*pkgconfig.NormalizedLayer) []string {
	var unknown []string
	for _, scope := range []pkgconfig.Scope{pkgconfig.ScopeProjectFile, pkgconfig.ScopeWorkspaceFile} {
		if layer, ok := byScope[scope]; ok {
			unknown = append(unknown, layer.Unknown...)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return []string{fmt.Sprintf("unknown settings in project configuration: %s", strings.Join(unknown, ", "))}
}

// spliceAuthSettings copies authentication-related settings from the
// home-rooted resolution into the normal one: path-style credential keys
// and certificate material, never overriding values the normal run set.
func spliceAuthSettings(normal, auth *pkgconfig.Resolved) {
	for key, value := range auth.Config.Credentials {
		if _, ok := normal.Config.Credentials[key]; !ok {
			normal.Config.Credentials[key] = value
		}
	}
	if normal.Config.CA == "" {
		normal.Config.CA = auth.Config.CA
	}
	if normal.Config.Cert == "" {
		normal.Config.Cert = auth.Config.Cert
	}
	if normal.Config.Key == "" {
		normal.Config.Key = auth.Config.Key
	}
}

func environmentSnapshot(env map[string]string) pkgconfig.Environment {
	if env != nil {
		return pkgconfig.Environment(env)
	}
	snapshot := pkgconfig.Environment{}
	for _, pair := range os.Environ() {
		key, value, _ := strings.Cut(pair, "=")
		snapshot[key] = value
	}
	return snapshot
}

func resolveHomeDir(opts Options) (string, error) {
	if opts.HomeDir != "" {
		return opts.HomeDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}

func isCI(env pkgconfig.Environment) bool {
	v, ok := env.LookupCaseInsensitive("CI")
	if !ok {
		return false
	}
	ci, err := strconv.ParseBool(v)
	return err == nil && ci
}

func emitPhase(emitter *telemetry.Emitter, phase telemetry.Phase, fn func() error) error {
	if emitter == nil {
		return fn()
	}
	return emitter.EmitPhase(phase, nil, fn)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
