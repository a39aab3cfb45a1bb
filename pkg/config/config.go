package config

// EffectiveConfig is the final resolved configuration snapshot. Every field
// either carries an explicitly supplied value or the schema default.
// Pointer-typed booleans are tri-state: nil means the setting was never
// supplied and no derived rule filled it.
type EffectiveConfig struct {
	Dir           string
	WorkspaceRoot string
	GlobalMode    bool

	Hoist                      bool
	HoistPattern               []string
	PublicHoistPattern         []string
	ShamefullyHoist            *bool
	Symlink                    bool
	NodeLinker                 string
	EnablePnp                  *bool
	PreferSymlinkedExecutables *bool

	UseLockfile                          bool
	MergeGitBranchLockfiles              *bool
	MergeGitBranchLockfilesBranchPattern []string

	GlobalDir    string
	GlobalPkgDir string
	GlobalBinDir string

	Color string

	Proxy      string
	HTTPSProxy string
	HTTPProxy  string
	NoProxy    string

	Registry    string
	Registries  map[string]string
	Credentials map[string]string
	CA          string
	Cert        string
	Key         string

	CacheDir        string
	StoreDir        string
	StateDir        string
	VirtualStoreDir string
	LockfileDir     string

	SideEffectsCache         *bool
	SideEffectsCacheReadonly *bool
	SideEffectsCacheRead     bool
	SideEffectsCacheWrite    bool

	Production bool
	Dev        bool
	Optional   bool
	Only       string

	Save                    bool
	SavePeer                bool
	SaveProd                bool
	SaveDev                 bool
	SaveOptional            bool
	SaveExact               bool
	AllowNew                bool
	IgnoreCurrentSpecifiers bool

	LinkWorkspacePackages    bool
	SharedWorkspaceLockfile  bool
	WorkspacePackagePatterns []string

	UserAgent string

	DangerouslyAllowAllBuilds bool
	NeverBuiltDependencies    []string
	EnableGlobalVirtualStore  *bool

	NetworkConcurrency int

	Catalogs               map[string]map[string]string
	RequiredPackageManager *PackageManagerRequirement
	PackageManagerStrict   bool

	CheckUnknownSettings bool
}

// Resolved bundles the effective configuration with the raw views and the
// warnings accumulated while resolving it.
type Resolved struct {
	Config   *EffectiveConfig
	Merged   *Merged
	Raw      RawConfig
	LocalRaw RawConfig
	Warnings []string
}

// Materialize builds the typed configuration from the merged map. Settings
// absent from the map keep their zero value; derived rules fill the rest.
func Materialize(merged *Merged) *EffectiveConfig {
	cfg := &EffectiveConfig{
		Registries:  merged.Registries,
		Credentials: merged.Credentials,
	}
	for name, value := range merged.Values {
		applySetting(cfg, name, value)
	}
	return cfg
}

// applySetting assigns one merged value to its typed field. Values arrive
// already coerced by the normalizer, so type assertions are checked but
// silently skipped on mismatch.
func applySetting(cfg *EffectiveConfig, name string, value any) {
	switch name {
	case "hoist":
		setBool(&cfg.Hoist, value)
	case "hoistPattern":
		setList(&cfg.HoistPattern, value)
	case "publicHoistPattern":
		setList(&cfg.PublicHoistPattern, value)
	case "shamefullyHoist":
		setOptBool(&cfg.ShamefullyHoist, value)
	case "symlink":
		setBool(&cfg.Symlink, value)
	case "nodeLinker":
		setString(&cfg.NodeLinker, value)
	case "enablePnp":
		setOptBool(&cfg.EnablePnp, value)
	case "preferSymlinkedExecutables":
		setOptBool(&cfg.PreferSymlinkedExecutables, value)
	case "mergeGitBranchLockfiles":
		setOptBool(&cfg.MergeGitBranchLockfiles, value)
	case "mergeGitBranchLockfilesBranchPattern":
		setList(&cfg.MergeGitBranchLockfilesBranchPattern, value)
	case "globalDir":
		setString(&cfg.GlobalDir, value)
	case "globalBinDir":
		setString(&cfg.GlobalBinDir, value)
	case "color":
		setString(&cfg.Color, value)
	case "proxy":
		setString(&cfg.Proxy, value)
	case "httpsProxy":
		setString(&cfg.HTTPSProxy, value)
	case "httpProxy":
		setString(&cfg.HTTPProxy, value)
	case "noProxy":
		setString(&cfg.NoProxy, value)
	case "registry":
		setString(&cfg.Registry, value)
	case "ca":
		setString(&cfg.CA, value)
	case "cert":
		setString(&cfg.Cert, value)
	case "key":
		setString(&cfg.Key, value)
	case "cacheDir":
		setString(&cfg.CacheDir, value)
	case "storeDir":
		setString(&cfg.StoreDir, value)
	case "stateDir":
		setString(&cfg.StateDir, value)
	case "virtualStoreDir":
		setString(&cfg.VirtualStoreDir, value)
	case "lockfileDir":
		setString(&cfg.LockfileDir, value)
	case "sideEffectsCache":
		setOptBool(&cfg.SideEffectsCache, value)
	case "sideEffectsCacheReadonly":
		setOptBool(&cfg.SideEffectsCacheReadonly, value)
	case "production":
		setBool(&cfg.Production, value)
	case "dev":
		setBool(&cfg.Dev, value)
	case "optional":
		setBool(&cfg.Optional, value)
	case "only":
		setString(&cfg.Only, value)
	case "save":
		setBool(&cfg.Save, value)
	case "savePeer":
		setBool(&cfg.SavePeer, value)
	case "saveProd":
		setBool(&cfg.SaveProd, value)
	case "saveDev":
		setBool(&cfg.SaveDev, value)
	case "saveOptional":
		setBool(&cfg.SaveOptional, value)
	case "saveExact":
		setBool(&cfg.SaveExact, value)
	case "global":
		setBool(&cfg.GlobalMode, value)
	case "linkWorkspacePackages":
		setBool(&cfg.LinkWorkspacePackages, value)
	case "sharedWorkspaceLockfile":
		setBool(&cfg.SharedWorkspaceLockfile, value)
	case "workspacePackages":
		setList(&cfg.WorkspacePackagePatterns, value)
	case "userAgent":
		setString(&cfg.UserAgent, value)
	case "dangerouslyAllowAllBuilds":
		setBool(&cfg.DangerouslyAllowAllBuilds, value)
	case "neverBuiltDependencies":
		setList(&cfg.NeverBuiltDependencies, value)
	case "enableGlobalVirtualStore":
		setOptBool(&cfg.EnableGlobalVirtualStore, value)
	case "networkConcurrency":
		if n, ok := value.(int); ok {
			cfg.NetworkConcurrency = n
		}
	case "checkUnknownSettings":
		setBool(&cfg.CheckUnknownSettings, value)
	case "lockfile":
		// Consumed by the derived-settings pass (UseLockfile).
	}
}

func setBool(dst *bool, value any) {
	if v, ok := value.(bool); ok {
		*dst = v
	}
}

func setOptBool(dst **bool, value any) {
	if v, ok := value.(bool); ok {
		b := v
		*dst = &b
	}
}

func setString(dst *string, value any) {
	if v, ok := value.(string); ok {
		*dst = v
	}
}

func setList(dst *[]string, value any) {
	if v, ok := value.([]string); ok {
		*dst = append([]string(nil), v...)
	}
}

func boolPtr(v bool) *bool { return &v }
