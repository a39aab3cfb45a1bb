package configcmd_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	configcmd "github.com/dobrovols/depctl/cmd/depctl/configcmd"
)

func TestCollectSettingFlagsOnlyChangedFlags(t *testing.T) {
	flags := pflag.NewFlagSet("depctl", pflag.ContinueOnError)
	flags.Bool("hoist", true, "")
	flags.String("node-linker", "", "")
	flags.StringSlice("hoist-pattern", nil, "")
	flags.String("format", "text", "")
	flags.Bool("inherit-auth", false, "")

	if err := flags.Parse([]string{
		"--node-linker=hoisted",
		"--hoist-pattern=eslint-*",
		"--hoist-pattern=babel-*",
		"--format=json",
		"--inherit-auth",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	options := configcmd.CollectSettingFlags(flags)

	if _, ok := options["hoist"]; ok {
		t.Fatalf("expected unchanged flag excluded, got %v", options)
	}
	if options["node-linker"] != "hoisted" {
		t.Fatalf("expected node-linker collected, got %v", options)
	}
	if options["hoist-pattern"] != "eslint-*,babel-*" {
		t.Fatalf("expected repeated slice flag joined, got %q", options["hoist-pattern"])
	}
	if _, ok := options["format"]; ok {
		t.Fatalf("expected control flag format excluded, got %v", options)
	}
	if _, ok := options["inherit-auth"]; ok {
		t.Fatalf("expected control flag inherit-auth excluded, got %v", options)
	}
}

func TestViewCommandEmitsTelemetryToStderr(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), ".config"))

	cmd := configcmd.NewConfigCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"view"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute view: %v", err)
	}

	if !strings.Contains(stdout.String(), "Setting") {
		t.Fatalf("expected summary on stdout:\n%s", stdout.String())
	}
	for _, marker := range []string{
		`"phase":"load"`,
		`"phase":"merge"`,
		`"phase":"derive"`,
		`"category":"resolution"`,
	} {
		if !strings.Contains(stderr.String(), marker) {
			t.Fatalf("expected %s on stderr:\n%s", marker, stderr.String())
		}
	}
}

func TestNewConfigCommandExposesViewSubcommand(t *testing.T) {
	cmd := configcmd.NewConfigCommand()
	if cmd.Use != "config" {
		t.Fatalf("unexpected use %q", cmd.Use)
	}

	view, _, err := cmd.Find([]string{"view"})
	if err != nil {
		t.Fatalf("expected view subcommand: %v", err)
	}
	if view.Flags().Lookup("format") == nil {
		t.Fatalf("expected view to declare a format flag")
	}
}
