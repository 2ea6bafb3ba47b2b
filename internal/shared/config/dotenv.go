package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// loadEnvFiles applies KEY=VALUE lines from each existing file. The process
// environment wins over file values and unreadable files are skipped.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			key, val, ok := parseEnvLine(scanner.Text())
			if !ok {
				continue
			}
			if _, set := os.LookupEnv(key); !set {
				_ = os.Setenv(key, val)
			}
		}
		_ = f.Close()
	}
}

// parseEnvLine understands an optional "export " prefix, double quoted values
// with Go escapes, single quoted literals and trailing " #" comments on
// unquoted values.
func parseEnvLine(raw string) (key, val string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	val = strings.TrimSpace(val)

	switch {
	case len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"':
		unquoted, err := strconv.Unquote(val)
		if err != nil {
			return key, val[1 : len(val)-1], true
		}
		return key, unquoted, true
	case len(val) >= 2 && val[0] == '\'' && val[len(val)-1] == '\'':
		return key, val[1 : len(val)-1], true
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	return key, val, true
}
