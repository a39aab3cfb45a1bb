package config

import "fmt"

// ConflictKind is the stable machine-readable identifier of a rejected
// option combination.
type ConflictKind string

const (
	ConflictHoist                    ConflictKind = "hoist"
	ConflictHoistPatternWithGlobal   ConflictKind = "hoist-pattern-with-global"
	ConflictLinkWorkspaceWithGlobal  ConflictKind = "link-workspace-with-global"
	ConflictSharedLockfileWithGlobal ConflictKind = "shared-lockfile-with-global"
	ConflictLockfileDirWithGlobal    ConflictKind = "lockfile-dir-with-global"
	ConflictVirtualStoreWithGlobal   ConflictKind = "virtual-store-with-global"
	ConflictPeerCannotBeProd         ConflictKind = "peer-cannot-be-prod"
	ConflictPeerCannotBeOptional     ConflictKind = "peer-cannot-be-optional"
)

// ConflictError is the fatal result of a violated conflict rule. Resolution
// aborts immediately and no partial configuration is returned.
type ConflictError struct {
	Kind        ConflictKind
	Trigger     string
	Conflicting string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("config conflict (%s): %s cannot be used with %s", e.Kind, e.Conflicting, e.Trigger)
}

// ExitCode makes conflicts distinguishable at the process boundary.
func (e *ConflictError) ExitCode() int { return 2 }

type conflictRule struct {
	kind        ConflictKind
	trigger     string
	conflicting string
	violated    func(l *NormalizedLayer) bool
}

// conflictRules is the fixed table of mutually exclusive flag combinations.
// Each rule is evaluated strictly against CLI-supplied flags so settings
// supplied by files never produce false positives.
var conflictRules = []conflictRule{
	{ConflictHoist, "hoist=false", "shamefully-hoist", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "hoist", false) && cliBoolIs(l, "shamefullyHoist", true)
	}},
	{ConflictHoist, "hoist=false", "hoist-pattern", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "hoist", false) && cliListSet(l, "hoistPattern")
	}},
	{ConflictHoistPatternWithGlobal, "global", "hoist-pattern", func(l *NormalizedLayer) bool {
		if !cliBoolIs(l, "global", true) {
			return false
		}
		pattern, ok := l.Values["hoistPattern"].([]string)
		return ok && !isMatchAll(pattern)
	}},
	{ConflictLinkWorkspaceWithGlobal, "global", "link-workspace-packages", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "global", true) && cliBoolIs(l, "linkWorkspacePackages", true)
	}},
	{ConflictSharedLockfileWithGlobal, "global", "shared-workspace-lockfile", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "global", true) && cliBoolIs(l, "sharedWorkspaceLockfile", true)
	}},
	{ConflictLockfileDirWithGlobal, "global", "lockfile-dir", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "global", true) && cliStringSet(l, "lockfileDir")
	}},
	{ConflictVirtualStoreWithGlobal, "global", "virtual-store-dir", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "global", true) && cliStringSet(l, "virtualStoreDir")
	}},
	{ConflictPeerCannotBeProd, "save-peer", "save-prod", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "savePeer", true) && cliBoolIs(l, "saveProd", true)
	}},
	{ConflictPeerCannotBeOptional, "save-peer", "save-optional", func(l *NormalizedLayer) bool {
		return cliBoolIs(l, "savePeer", true) && cliBoolIs(l, "saveOptional", true)
	}},
}

// ValidateConflicts checks the fixed rule table against the normalized CLI
// layer. The first violated rule aborts resolution.
func ValidateConflicts(cli *NormalizedLayer) error {
	if cli == nil {
		return nil
	}
	for _, rule := range conflictRules {
		if rule.violated(cli) {
			return &ConflictError{Kind: rule.kind, Trigger: rule.trigger, Conflicting: rule.conflicting}
		}
	}
	return nil
}

func cliBoolIs(l *NormalizedLayer, name string, want bool) bool {
	v, ok := l.Values[name].(bool)
	return ok && v == want
}

func cliStringSet(l *NormalizedLayer, name string) bool {
	v, ok := l.Values[name].(string)
	return ok && v != ""
}

func cliListSet(l *NormalizedLayer, name string) bool {
	v, ok := l.Values[name].([]string)
	return ok && len(v) > 0
}

func isMatchAll(pattern []string) bool {
	return len(pattern) == 1 && pattern[0] == "*"
}
