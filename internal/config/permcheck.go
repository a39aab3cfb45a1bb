package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProbeBinDirChecker verifies writability by creating and removing a probe
// file. It stands in for the installer's permission collaborator.
type ProbeBinDirChecker struct{}

// EnsureWritable probes dir for write permission.
func (ProbeBinDirChecker) EnsureWritable(dir string) error {
	probe := filepath.Join(dir, ".depctl-write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	f.Close()
	return os.Remove(probe)
}
