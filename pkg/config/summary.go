package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	clilogging "github.com/dobrovols/depctl/internal/cli/logging"
)

// Supported summary output formats.
const (
	SummaryFormatText = "text"
	SummaryFormatJSON = "json"
)

const redactedValue = "***"

// settings whose values never appear in a summary, on top of the keys the
// sanitizer recognises as credential-bearing.
var redactedSettings = map[string]bool{
	"ca":   true,
	"cert": true,
	"key":  true,
}

// FormatSummary renders a resolved configuration in the requested format.
// Credential material is redacted in both forms.
func FormatSummary(resolved *Resolved, format string) (string, error) {
	if resolved == nil || resolved.Config == nil {
		return "", fmt.Errorf("resolved configuration is nil")
	}
	switch strings.ToLower(format) {
	case "", SummaryFormatText:
		return formatSummaryText(resolved)
	case SummaryFormatJSON:
		return formatSummaryJSON(resolved)
	default:
		return "", fmt.Errorf("unsupported summary format %q", format)
	}
}

func summaryNames(resolved *Resolved) []string {
	names := make([]string, 0, len(resolved.Merged.Values))
	for name := range resolved.Merged.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func summaryValue(name string, value any) any {
	if redactedSettings[name] || clilogging.IsSensitiveSettingKey(name) {
		return redactedValue
	}
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ",")
	default:
		return v
	}
}

func formatSummaryText(resolved *Resolved) (string, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Dir:\t%s\n", resolved.Config.Dir)
	if resolved.Config.WorkspaceRoot != "" {
		fmt.Fprintf(tw, "Workspace root:\t%s\n", resolved.Config.WorkspaceRoot)
	}
	if resolved.Config.GlobalMode {
		fmt.Fprintf(tw, "Mode:\tglobal\n")
	}
	if len(resolved.Warnings) > 0 {
		fmt.Fprintf(tw, "Warnings:\t%s\n", strings.Join(resolved.Warnings, "; "))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Setting\tValue\tSource")

	for _, name := range summaryNames(resolved) {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", name, summaryValue(name, resolved.Merged.Values[name]), resolved.Merged.Source(name))
	}

	if err := tw.Flush(); err != nil {
		return "", fmt.Errorf("flush summary: %w", err)
	}
	return buf.String(), nil
}

func formatSummaryJSON(resolved *Resolved) (string, error) {
	type settingEntry struct {
		Name   string `json:"name"`
		Value  any    `json:"value"`
		Source Scope  `json:"source"`
	}

	settings := make([]settingEntry, 0, len(resolved.Merged.Values))
	for _, name := range summaryNames(resolved) {
		settings = append(settings, settingEntry{
			Name:   name,
			Value:  summaryValue(name, resolved.Merged.Values[name]),
			Source: resolved.Merged.Source(name),
		})
	}

	payload := map[string]any{
		"dir":      resolved.Config.Dir,
		"global":   resolved.Config.GlobalMode,
		"settings": settings,
	}
	if resolved.Config.WorkspaceRoot != "" {
		payload["workspaceRoot"] = resolved.Config.WorkspaceRoot
	}
	if len(resolved.Warnings) > 0 {
		payload["warnings"] = resolved.Warnings
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary json: %w", err)
	}
	return string(encoded), nil
}
