// Package configcmd exposes the configuration inspection commands.
package configcmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	internalconfig "github.com/dobrovols/depctl/internal/config"
	pkgconfig "github.com/dobrovols/depctl/pkg/config"
	"github.com/dobrovols/depctl/pkg/telemetry"
)

// Version is stamped at build time.
var Version = "0.0.0-dev"

// control flags steer the resolution call itself and never become settings.
var controlFlags = map[string]bool{
	"format":         true,
	"inherit-auth":   true,
	"workspace-root": true,
}

// NewConfigCommand constructs the "config" command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(newViewCommand())
	return cmd
}

// viewDeps carries the view command's collaborators so tests can substitute
// them.
type viewDeps struct {
	telemetryEmitter func(io.Writer) *telemetry.Emitter
	structuredLogger func(io.Writer, string) (*telemetry.Logger, error)
}

func defaultViewDeps() viewDeps {
	return viewDeps{
		telemetryEmitter: telemetry.NewEmitter,
		structuredLogger: telemetry.NewLogger,
	}
}

func newViewCommand() *cobra.Command {
	var format string
	deps := defaultViewDeps()
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the resolved configuration with per-setting provenance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, format, deps)
		},
	}
	cmd.Flags().StringVar(&format, "format", pkgconfig.SummaryFormatText, "output format (text|json)")
	return cmd
}

func runView(cmd *cobra.Command, format string, deps viewDeps) error {
	inheritAuth, _ := cmd.Flags().GetBool("inherit-auth")
	workspaceRoot, _ := cmd.Flags().GetString("workspace-root")

	tel := deps.telemetryEmitter(cmd.ErrOrStderr())
	logger, err := deps.structuredLogger(cmd.ErrOrStderr(), newRunID())
	if err != nil {
		return fmt.Errorf("initialize structured logging: %w", err)
	}
	logEnvironment(logger)

	resolved, err := internalconfig.Resolve(cmd.Context(), internalconfig.Options{
		CLI:           CollectSettingFlags(cmd.Flags()),
		WorkspaceRoot: workspaceRoot,
		ToolName:      "depctl",
		ToolVersion:   Version,
		InheritAuth:   inheritAuth,
		BinDirChecker: internalconfig.ProbeBinDirChecker{},
		Emitter:       tel,
	})
	if err != nil {
		logResolutionFailure(logger, err)
		return err
	}
	logResolution(logger, resolved)

	out, err := pkgconfig.FormatSummary(resolved, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderColor(resolved.Config.Color, out))
	return nil
}

// newRunID tags every structured log line from one invocation.
func newRunID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf[:])
}

// CollectSettingFlags converts every changed, setting-bearing flag into the
// flat raw option map the resolver consumes.
func CollectSettingFlags(flags *pflag.FlagSet) map[string]string {
	options := map[string]string{}
	flags.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed || controlFlags[flag.Name] {
			return
		}
		switch flag.Value.Type() {
		case "stringSlice", "stringArray":
			if values, err := flags.GetStringSlice(flag.Name); err == nil {
				options[flag.Name] = strings.Join(values, ",")
				return
			}
			options[flag.Name] = flag.Value.String()
		default:
			options[flag.Name] = flag.Value.String()
		}
	})
	return options
}

const (
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// renderColor honours the resolved color tri-state: warnings are
// highlighted when color is "always", or "auto" on a terminal.
func renderColor(mode, out string) string {
	enabled := mode == "always" || (mode == "auto" && term.IsTerminal(int(os.Stdout.Fd())))
	if !enabled {
		return out
	}
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "Warnings:") {
			lines[i] = ansiYellow + line + ansiReset
		}
	}
	return strings.Join(lines, "\n")
}
