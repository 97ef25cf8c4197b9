package adapter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// ClassPathAttribute is the manifest attribute listing auxiliary entries.
const ClassPathAttribute = "Class-Path"

// ParseManifest returns the main-section attributes of a manifest. Lines
// starting with a single space continue the previous value.
func ParseManifest(r io.Reader) (map[string]string, error) {
	attrs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			// The main section ends at the first blank line.
			break
		}

		if strings.HasPrefix(line, " ") {
			if current == "" {
				return nil, fmt.Errorf("manifest continuation without attribute: %q", line)
			}

			attrs[current] += line[1:]

			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed manifest line: %q", line)
		}

		current = strings.TrimSpace(key)
		attrs[current] = strings.TrimPrefix(value, " ")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return attrs, nil
}

// SplitClassPath splits a Class-Path attribute into filesystem paths. Entries
// are URLs: a "file:" scheme is dropped and percent-escapes are decoded.
// Undecodable entries are skipped.
func SplitClassPath(value string) []string {
	var entries []string

	for _, field := range strings.Fields(value) {
		entry, err := decodeClassPathEntry(field)
		if err != nil {
			slog.Debug("Skipping undecodable Class-Path entry", "entry", field, "error", err)
			continue
		}

		if entry != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}

func decodeClassPathEntry(field string) (string, error) {
	if !strings.HasPrefix(field, "file:") {
		return url.PathUnescape(field)
	}

	u, err := url.Parse(field)
	if err != nil {
		return "", err
	}

	// "file:relative/a.jar" has no slash after the scheme and parses as opaque.
	if u.Opaque != "" {
		return url.PathUnescape(u.Opaque)
	}

	return u.Path, nil
}
