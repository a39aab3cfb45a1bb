package configcmd

import (
	"os"
	"strconv"
	"strings"

	clilogging "github.com/dobrovols/depctl/internal/cli/logging"
	pkgconfig "github.com/dobrovols/depctl/pkg/config"
	"github.com/dobrovols/depctl/pkg/telemetry"
)

// logResolution records a completed resolution. Raw setting values pass
// through the credential sanitizer before reaching the log stream.
func logResolution(logger telemetry.StructuredLogger, resolved *pkgconfig.Resolved) {
	if logger == nil || resolved == nil {
		return
	}
	metadata := clilogging.SanitizeSettings(resolved.LocalRaw)
	metadata["warnings"] = strconv.Itoa(len(resolved.Warnings))
	_ = logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryResolution,
		Message:  "configuration resolved",
		Severity: telemetry.SeverityInfo,
		Metadata: metadata,
	})
}

func logResolutionFailure(logger telemetry.StructuredLogger, err error) {
	if logger == nil || err == nil {
		return
	}
	_ = logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryResolution,
		Message:  "configuration resolution failed",
		Error:    err,
	})
}

// logEnvironment records the tool-scoped environment variables, sanitized.
func logEnvironment(logger telemetry.StructuredLogger) {
	if logger == nil {
		return
	}
	env := map[string]string{}
	for _, pair := range os.Environ() {
		key, value, _ := strings.Cut(pair, "=")
		if strings.HasPrefix(key, "DEPCTL_") || key == "CI" {
			env[key] = value
		}
	}
	if len(env) == 0 {
		return
	}
	_ = logger.Emit(telemetry.Entry{
		Category: telemetry.CategoryDiagnostic,
		Message:  "tool environment",
		Severity: telemetry.SeverityInfo,
		Metadata: clilogging.SanitizeEnv(env),
	})
}
