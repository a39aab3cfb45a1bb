package config

import "strings"

// ValueType describes the expected Go type for a setting value.
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
	TypeNumber
	TypeStringList
	TypePath
)

// SchemaEntry declares one known setting: its internal name, the spelling
// used in rc files, the value type, the built-in default, and an optional
// deprecated alias target.
type SchemaEntry struct {
	Name    string
	FileKey string
	Type    ValueType
	Default any
	// AliasOf names the internal setting this deprecated key feeds.
	// Alias chains have length at most one.
	AliasOf string
}

// Schema is the registry of every setting the resolver understands.
type Schema struct {
	entries   []SchemaEntry
	byName    map[string]*SchemaEntry
	byFileKey map[string]*SchemaEntry
}

// DefaultRegistryURL is the registry entry kept unless explicitly overridden.
const DefaultRegistryURL = "https://registry.npmjs.org/"

var defaultEntries = []SchemaEntry{
	{Name: "hoist", FileKey: "hoist", Type: TypeBool, Default: true},
	{Name: "hoistPattern", FileKey: "hoist-pattern", Type: TypeStringList, Default: []string{"*"}},
	{Name: "publicHoistPattern", FileKey: "public-hoist-pattern", Type: TypeStringList},
	{Name: "shamefullyHoist", FileKey: "shamefully-hoist", Type: TypeBool},
	{Name: "shamefullyFlatten", FileKey: "shamefully-flatten", Type: TypeBool, AliasOf: "shamefullyHoist"},
	{Name: "symlink", FileKey: "symlink", Type: TypeBool, Default: true},
	{Name: "nodeLinker", FileKey: "node-linker", Type: TypeString, Default: "isolated"},
	{Name: "enablePnp", FileKey: "enable-pnp", Type: TypeBool},
	{Name: "preferSymlinkedExecutables", FileKey: "prefer-symlinked-executables", Type: TypeBool},
	{Name: "lockfile", FileKey: "lockfile", Type: TypeBool},
	{Name: "shrinkwrap", FileKey: "shrinkwrap", Type: TypeBool, AliasOf: "lockfile"},
	{Name: "mergeGitBranchLockfiles", FileKey: "merge-git-branch-lockfiles", Type: TypeBool},
	{Name: "mergeGitBranchLockfilesBranchPattern", FileKey: "merge-git-branch-lockfiles-branch-pattern", Type: TypeStringList},
	{Name: "globalDir", FileKey: "global-dir", Type: TypePath},
	{Name: "globalBinDir", FileKey: "global-bin-dir", Type: TypePath},
	{Name: "color", FileKey: "color", Type: TypeString, Default: "auto"},
	{Name: "proxy", FileKey: "proxy", Type: TypeString},
	{Name: "httpsProxy", FileKey: "https-proxy", Type: TypeString},
	{Name: "httpProxy", FileKey: "http-proxy", Type: TypeString},
	{Name: "noProxy", FileKey: "noproxy", Type: TypeString},
	{Name: "registry", FileKey: "registry", Type: TypeString, Default: DefaultRegistryURL},
	{Name: "ca", FileKey: "ca", Type: TypeString},
	{Name: "cert", FileKey: "cert", Type: TypeString},
	{Name: "key", FileKey: "key", Type: TypeString},
	{Name: "cacheDir", FileKey: "cache-dir", Type: TypePath},
	{Name: "storeDir", FileKey: "store-dir", Type: TypePath},
	{Name: "stateDir", FileKey: "state-dir", Type: TypePath},
	{Name: "virtualStoreDir", FileKey: "virtual-store-dir", Type: TypePath},
	{Name: "lockfileDir", FileKey: "lockfile-dir", Type: TypePath},
	{Name: "sideEffectsCache", FileKey: "side-effects-cache", Type: TypeBool},
	{Name: "sideEffectsCacheReadonly", FileKey: "side-effects-cache-readonly", Type: TypeBool},
	{Name: "production", FileKey: "production", Type: TypeBool},
	{Name: "dev", FileKey: "dev", Type: TypeBool},
	{Name: "optional", FileKey: "optional", Type: TypeBool},
	{Name: "only", FileKey: "only", Type: TypeString},
	{Name: "save", FileKey: "save", Type: TypeBool, Default: true},
	{Name: "savePeer", FileKey: "save-peer", Type: TypeBool},
	{Name: "saveProd", FileKey: "save-prod", Type: TypeBool},
	{Name: "saveDev", FileKey: "save-dev", Type: TypeBool},
	{Name: "saveOptional", FileKey: "save-optional", Type: TypeBool},
	{Name: "saveExact", FileKey: "save-exact", Type: TypeBool, Default: false},
	{Name: "global", FileKey: "global", Type: TypeBool, Default: false},
	{Name: "linkWorkspacePackages", FileKey: "link-workspace-packages", Type: TypeBool, Default: false},
	{Name: "sharedWorkspaceLockfile", FileKey: "shared-workspace-lockfile", Type: TypeBool, Default: true},
	{Name: "workspacePackages", FileKey: "workspace-packages", Type: TypeStringList},
	{Name: "userAgent", FileKey: "user-agent", Type: TypeString},
	{Name: "dangerouslyAllowAllBuilds", FileKey: "dangerously-allow-all-builds", Type: TypeBool, Default: false},
	{Name: "neverBuiltDependencies", FileKey: "never-built-dependencies", Type: TypeStringList},
	{Name: "enableGlobalVirtualStore", FileKey: "enable-global-virtual-store", Type: TypeBool},
	{Name: "networkConcurrency", FileKey: "network-concurrency", Type: TypeNumber, Default: 16},
	{Name: "checkUnknownSettings", FileKey: "check-unknown-settings", Type: TypeBool, Default: false},
}

// DefaultSchema returns the registry covering every supported setting.
func DefaultSchema() *Schema {
	s := &Schema{
		entries:   defaultEntries,
		byName:    make(map[string]*SchemaEntry, len(defaultEntries)),
		byFileKey: make(map[string]*SchemaEntry, len(defaultEntries)),
	}
	for i := range s.entries {
		entry := &s.entries[i]
		s.byName[entry.Name] = entry
		s.byFileKey[entry.FileKey] = entry
	}
	return s
}

// Entry looks up a schema entry by internal name.
func (s *Schema) Entry(name string) (*SchemaEntry, bool) {
	entry, ok := s.byName[name]
	return entry, ok
}

// Lookup resolves a raw key from any layer to its schema entry: direct
// file-key match, camelCase spelling of a known kebab-case key, or a
// deprecated alias. The second result is the internal name the value should
// be stored under (the alias target when the key is deprecated).
func (s *Schema) Lookup(rawKey string) (*SchemaEntry, string, bool) {
	key := strings.TrimSpace(rawKey)
	entry, ok := s.byFileKey[key]
	if !ok {
		entry, ok = s.byFileKey[camelToKebab(key)]
	}
	if !ok {
		return nil, "", false
	}
	if entry.AliasOf != "" {
		return entry, entry.AliasOf, true
	}
	return entry, entry.Name, true
}

// Defaults returns a fresh map of every setting with a declared default.
func (s *Schema) Defaults() map[string]any {
	out := make(map[string]any)
	for i := range s.entries {
		entry := &s.entries[i]
		if entry.Default == nil || entry.AliasOf != "" {
			continue
		}
		if list, ok := entry.Default.([]string); ok {
			out[entry.Name] = append([]string(nil), list...)
			continue
		}
		out[entry.Name] = entry.Default
	}
	return out
}

func camelToKebab(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
