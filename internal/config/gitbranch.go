package config

import (
	"context"
	"os/exec"
	"strings"
)

// currentGitBranch resolves the branch checked out at dir. Failures are the
// caller's to ignore: branch detection is best-effort and never fatal.
func currentGitBranch(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
