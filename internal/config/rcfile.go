package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgconfig "github.com/dobrovols/depctl/pkg/config"
)

// ErrMalformedRCFile indicates an rc file contains a line that is neither a
// comment nor a key=value assignment.
var ErrMalformedRCFile = errors.New("malformed rc file")

// ParseRCFile reads an ini-style key=value rc file into a raw layer. Keys
// keep their original spelling, including per-scope registry keys
// ("@scope:registry") and path-style credential keys ("//host/:_authToken").
// Lines starting with "#" or ";" are comments.
func ParseRCFile(scope pkgconfig.Scope, path string) (*pkgconfig.Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	layer := pkgconfig.NewLayer(scope, filepath.Dir(path))
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %s:%d: %q", ErrMalformedRCFile, path, lineNo, line)
		}
		layer.Set(strings.TrimSpace(key), unquote(strings.TrimSpace(value)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rc file %q: %w", path, err)
	}
	return layer, nil
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}
