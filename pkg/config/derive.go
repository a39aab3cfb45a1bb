package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// globalLayoutVersion names the layout directory under the global root.
// Bumped only when the on-disk layout of global installs changes.
const globalLayoutVersion = "5"

// matchAllPattern exposes every dependency at the hoisted level.
var matchAllPattern = []string{"*"}

// Environment is a snapshot of process environment variables.
type Environment map[string]string

// LookupCaseInsensitive tries the variable name as given, then fully
// upper-cased, then fully lower-cased.
func (e Environment) LookupCaseInsensitive(name string) (string, bool) {
	for _, candidate := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
		if value, ok := e[candidate]; ok {
			return value, true
		}
	}
	return "", false
}

// DeriveOptions supplies the collaborators the derived-settings pass needs.
type DeriveOptions struct {
	Env     Environment
	HomeDir string
	// ToolName and ToolVersion identify the running package manager for
	// the default user agent.
	ToolName    string
	ToolVersion string
	// CurrentBranch resolves the current source-control branch. Failures
	// are ignored and the dependent setting stays unset.
	CurrentBranch func() (string, error)
	// CI marks an ephemeral CI environment.
	CI bool
}

// Derive fills settings whose value depends on combinations of other
// already-merged settings. Rules are order-sensitive and each consumes only
// already-merged keys. The returned warnings are non-fatal.
func Derive(cfg *EffectiveConfig, merged *Merged, opts DeriveOptions) []string {
	var warnings []string

	// Lockfile enablement: the modern key (with its legacy alias already
	// folded in by the normalizer) or false.
	if v, ok := merged.Bool("lockfile"); ok {
		cfg.UseLockfile = v
	}

	deriveBranchLockfileMerge(cfg, opts)

	// Home and global directory layout.
	if cfg.GlobalDir == "" {
		cfg.GlobalDir = filepath.Join(opts.HomeDir, "global")
	}
	cfg.GlobalPkgDir = filepath.Join(cfg.GlobalDir, globalLayoutVersion)

	deriveHoistPatterns(cfg)

	// Symlink-disabled wipes both hoist targets regardless of the above.
	if !cfg.Symlink {
		cfg.HoistPattern = nil
		cfg.PublicHoistPattern = nil
	}

	cfg.Color = normalizeColor(cfg.Color)

	deriveProxyChain(cfg, opts.Env)

	// Linker implications.
	switch cfg.NodeLinker {
	case "pnp":
		cfg.EnablePnp = boolPtr(true)
	case "hoisted":
		if cfg.PreferSymlinkedExecutables == nil {
			cfg.PreferSymlinkedExecutables = boolPtr(true)
		}
	}

	// Side-effects cache split: reads may come from the read-only flag,
	// writes only from the full cache flag.
	cacheOn := cfg.SideEffectsCache != nil && *cfg.SideEffectsCache
	readOnly := cfg.SideEffectsCacheReadonly != nil && *cfg.SideEffectsCacheReadonly
	cfg.SideEffectsCacheRead = cacheOn || readOnly
	cfg.SideEffectsCacheWrite = cacheOn

	deriveInstallationTriad(cfg, merged)

	// Build-permission escape hatch.
	if cfg.DangerouslyAllowAllBuilds && len(cfg.NeverBuiltDependencies) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"dangerously-allow-all-builds is set; ignoring never-built-dependencies (%s)",
			strings.Join(cfg.NeverBuiltDependencies, ", ")))
		cfg.NeverBuiltDependencies = nil
	}

	// A shared global virtual store is a warm-cache optimization that is
	// pointless in ephemeral CI environments.
	if opts.CI {
		cfg.EnableGlobalVirtualStore = boolPtr(false)
	}

	if cfg.UserAgent == "" && opts.ToolName != "" {
		cfg.UserAgent = fmt.Sprintf("%s/%s (%s; %s)", opts.ToolName, opts.ToolVersion, runtime.GOOS, runtime.GOARCH)
	}

	return warnings
}

// deriveBranchLockfileMerge settles the git-branch-scoped lockfile merge
// flag: an explicit boolean wins; otherwise a configured branch pattern is
// tested against the current branch.
func deriveBranchLockfileMerge(cfg *EffectiveConfig, opts DeriveOptions) {
	if cfg.MergeGitBranchLockfiles != nil {
		return
	}
	if len(cfg.MergeGitBranchLockfilesBranchPattern) == 0 || opts.CurrentBranch == nil {
		return
	}
	branch, err := opts.CurrentBranch()
	if err != nil || branch == "" {
		return
	}
	for _, pattern := range cfg.MergeGitBranchLockfilesBranchPattern {
		if ok, err := doublestar.Match(pattern, branch); err == nil && ok {
			cfg.MergeGitBranchLockfiles = boolPtr(true)
			return
		}
	}
	cfg.MergeGitBranchLockfiles = boolPtr(false)
}

// deriveHoistPatterns applies the hoist and public-hoist rules: hoisting
// disabled deletes the pattern entirely; the shamefully-hoist tri-state
// expands to a match-all public pattern when true and deletes it when false.
func deriveHoistPatterns(cfg *EffectiveConfig) {
	if !cfg.Hoist {
		cfg.HoistPattern = nil
	}
	switch {
	case cfg.ShamefullyHoist != nil && *cfg.ShamefullyHoist:
		cfg.PublicHoistPattern = append([]string(nil), matchAllPattern...)
	case cfg.ShamefullyHoist != nil:
		cfg.PublicHoistPattern = nil
	case len(cfg.PublicHoistPattern) == 0:
		cfg.PublicHoistPattern = nil
	}
}

// normalizeColor maps the boolean spellings of the color tri-state onto the
// ternary form; anything else passes through.
func normalizeColor(raw string) string {
	if raw == "" {
		return "auto"
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		if v {
			return "always"
		}
		return "never"
	}
	return raw
}

// deriveProxyChain fills the proxy settings from explicit values, the
// generic proxy setting, and case-insensitive environment lookups.
func deriveProxyChain(cfg *EffectiveConfig, env Environment) {
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = cfg.Proxy
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy, _ = env.LookupCaseInsensitive("https_proxy")
	}
	if cfg.HTTPProxy == "" {
		cfg.HTTPProxy = cfg.HTTPSProxy
	}
	if cfg.HTTPProxy == "" {
		cfg.HTTPProxy, _ = env.LookupCaseInsensitive("http_proxy")
	}
	if cfg.HTTPProxy == "" {
		cfg.HTTPProxy, _ = env.LookupCaseInsensitive("proxy")
	}
	if cfg.NoProxy == "" {
		cfg.NoProxy, _ = env.LookupCaseInsensitive("no_proxy")
	}
}

// deriveInstallationTriad settles the production/dev/optional trio from the
// "only" selector and the standalone dev flag. Absent both, a full
// installation is implied.
func deriveInstallationTriad(cfg *EffectiveConfig, merged *Merged) {
	only := strings.ToLower(strings.TrimSpace(cfg.Only))
	devFlag, devSet := merged.Bool("dev")

	switch {
	case only == "prod" || only == "production":
		cfg.Production = true
		cfg.Dev = false
	case only == "dev" || only == "development" || (devSet && devFlag):
		cfg.Dev = true
		cfg.Optional = false
		cfg.Production = false
	default:
		cfg.Production = true
		cfg.Dev = true
		if _, ok := merged.Bool("optional"); !ok {
			cfg.Optional = true
		}
	}
}
