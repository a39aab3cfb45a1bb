package cli_test

import (
	"testing"

	"github.com/dobrovols/depctl/internal/cli"
)

func TestNewRootCommandRegistersConfigGroup(t *testing.T) {
	cmd := cli.NewRootCommand()

	sub, _, err := cmd.Find([]string{"config", "view"})
	if err != nil {
		t.Fatalf("expected config view command: %v", err)
	}
	if sub.Name() != "view" {
		t.Fatalf("expected view command, got %q", sub.Name())
	}
}

func TestNewRootCommandDeclaresSettingFlags(t *testing.T) {
	cmd := cli.NewRootCommand()
	flags := cmd.PersistentFlags()

	for _, name := range []string{
		"dir",
		"global",
		"hoist",
		"hoist-pattern",
		"shamefully-hoist",
		"node-linker",
		"lockfile",
		"merge-git-branch-lockfiles",
		"color",
		"only",
		"save-peer",
		"registry",
		"workspace-packages",
		"virtual-store-dir",
		"check-unknown-settings",
		"inherit-auth",
		"workspace-root",
	} {
		if flags.Lookup(name) == nil {
			t.Fatalf("expected persistent flag %q", name)
		}
	}
}
