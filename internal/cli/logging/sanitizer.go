package logging

import "strings"

const redactionPlaceholder = "***"

// env keys that are always safe to print verbatim.
var allowlistedEnvKeys = map[string]struct{}{
	"PATH":    {},
	"HOME":    {},
	"USER":    {},
	"SHELL":   {},
	"PWD":     {},
	"LANG":    {},
	"LC_ALL":  {},
	"TMPDIR":  {},
	"TERM":    {},
	"LOGNAME": {},
	"CI":      {},
}

var sensitiveMarkers = []string{
	"_auth",
	"_password",
	"authtoken",
	"token",
	"secret",
	"password",
	"credential",
}

// IsSensitiveSettingKey reports whether a raw setting key carries credential
// material: path-style credential keys ("//host/:_authToken") and any key
// containing a sensitive marker.
func IsSensitiveSettingKey(key string) bool {
	if strings.HasPrefix(key, "//") {
		return true
	}
	lower := strings.ToLower(key)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SanitizeSettingValue returns the value unless its key is sensitive.
func SanitizeSettingValue(key, value string) string {
	if IsSensitiveSettingKey(key) {
		return redactionPlaceholder
	}
	return value
}

// SanitizeSettings returns a copy of raw settings with credential values
// replaced by a placeholder. Key spellings are preserved.
func SanitizeSettings(settings map[string]string) map[string]string {
	if len(settings) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(settings))
	for key, value := range settings {
		out[key] = SanitizeSettingValue(key, value)
	}
	return out
}

// SanitizeEnv returns a sanitized copy of the provided environment
// variables. Sensitive values are replaced with a placeholder while
// allowlisted keys pass through.
func SanitizeEnv(env map[string]string) map[string]string {
	if len(env) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(env))
	for key, value := range env {
		if _, ok := allowlistedEnvKeys[key]; ok {
			out[key] = value
			continue
		}
		out[key] = SanitizeSettingValue(key, value)
	}
	return out
}
