package config

import (
	"errors"
	"fmt"
	"os"
)

// globalVirtualStoreDirName is the reserved virtual store location used for
// global installs.
const globalVirtualStoreDirName = ".depctl-global-store"

// ErrGlobalBinDirUnknown indicates no binary directory could be determined
// for global mode.
var ErrGlobalBinDirUnknown = errors.New("global mode requires a binary directory (set global-bin-dir or the DEPCTL_HOME environment variable)")

// BinDirChecker verifies a binary directory is usable. The permission probe
// belongs to an external collaborator; the resolver only creates the
// directory and delegates.
type BinDirChecker interface {
	EnsureWritable(dir string) error
}

// ApplyGlobalMode remaps target directories and forces the global-install
// setting cluster. Forced values override anything computed earlier in the
// pipeline for this mode.
func ApplyGlobalMode(cfg *EffectiveConfig, env Environment, checker BinDirChecker) error {
	cfg.WorkspaceRoot = ""
	cfg.Dir = cfg.GlobalPkgDir

	binDir := cfg.GlobalBinDir
	if binDir == "" {
		binDir, _ = env.LookupCaseInsensitive("DEPCTL_HOME")
	}
	if binDir == "" {
		return ErrGlobalBinDirUnknown
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create global bin directory %q: %w", binDir, err)
	}
	if checker != nil {
		if err := checker.EnsureWritable(binDir); err != nil {
			return fmt.Errorf("global bin directory %q: %w", binDir, err)
		}
	}
	cfg.GlobalBinDir = binDir

	cfg.Save = true
	cfg.AllowNew = true
	cfg.IgnoreCurrentSpecifiers = true
	cfg.SaveProd = true
	cfg.SaveDev = false
	cfg.SaveOptional = false
	cfg.VirtualStoreDir = globalVirtualStoreDirName

	return nil
}
