package cli

import (
	"github.com/spf13/cobra"

	configcmd "github.com/dobrovols/depctl/cmd/depctl/configcmd"
)

// NewRootCommand constructs the root depctl command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depctl",
		Short: "depctl manages project dependencies and their configuration",
	}

	registerSettingFlags(cmd)
	registerControlFlags(cmd)

	cmd.AddCommand(configcmd.NewConfigCommand())

	return cmd
}

// registerSettingFlags declares every flag that maps onto a configuration
// setting. Only flags the user actually changes enter resolution, so the
// default values declared here are cosmetic and never override files.
func registerSettingFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String("dir", "", "run as if depctl was started in this directory")
	flags.Bool("global", false, "operate on the global package store")

	flags.Bool("hoist", true, "hoist all dependencies to the virtual store root")
	flags.StringSlice("hoist-pattern", nil, "hoist only dependencies matching these patterns")
	flags.Bool("shamefully-hoist", false, "hoist all dependencies to the project root")
	flags.Bool("symlink", true, "link dependencies from the store with symlinks")
	flags.String("node-linker", "", "dependency layout (isolated|hoisted|pnp)")

	flags.Bool("lockfile", true, "read and write the lockfile")
	flags.String("lockfile-dir", "", "directory holding the lockfile")
	flags.Bool("merge-git-branch-lockfiles", false, "merge branch lockfiles back into the main lockfile")
	flags.Bool("shared-workspace-lockfile", true, "keep one lockfile for the whole workspace")

	flags.String("color", "", "colorize output (always|auto|never)")

	flags.String("only", "", "install only this dependency group (production|development)")
	flags.Bool("dev", false, "install development dependencies")
	flags.Bool("production", false, "install production dependencies")
	flags.Bool("optional", false, "install optional dependencies")

	flags.Bool("save-peer", false, "save new dependencies as peer dependencies")
	flags.Bool("save-prod", false, "save new dependencies as production dependencies")
	flags.Bool("save-dev", false, "save new dependencies as development dependencies")
	flags.Bool("save-optional", false, "save new dependencies as optional dependencies")
	flags.Bool("save-exact", false, "pin saved dependencies to exact versions")

	flags.Bool("link-workspace-packages", false, "link workspace packages instead of downloading them")
	flags.StringSlice("workspace-packages", nil, "glob patterns selecting workspace member packages")

	flags.String("virtual-store-dir", "", "directory for the virtual store")
	flags.String("store-dir", "", "directory for the content-addressable store")
	flags.String("global-dir", "", "directory for globally installed packages")
	flags.String("global-bin-dir", "", "directory for globally installed executables")

	flags.String("registry", "", "default package registry URL")
	flags.Bool("check-unknown-settings", false, "warn about unrecognized settings in local files")
}

// registerControlFlags declares flags that steer resolution itself rather
// than describing a setting.
func registerControlFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.Bool("inherit-auth", false, "resolve credentials from the home directory even when local files override them")
	flags.String("workspace-root", "", "treat this directory as the workspace root")
}
