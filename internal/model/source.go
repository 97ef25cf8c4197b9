// Package model defines the data structures shared by the deployment engine.
package model

import (
	"path/filepath"
	"sort"
	"strings"
)

// Path represents a file system path.
type Path string

// Location identifies one runtime classpath entry: a directory or an archive.
type Location string

// Clean returns the location with a normalized path and no trailing separator.
func (l Location) Clean() Location {
	raw := strings.TrimPrefix(string(l), "file:")
	if raw == "" {
		return ""
	}

	return Location(filepath.Clean(raw))
}

// IsArchive reports whether the location names a packaged archive.
func (l Location) IsArchive() bool {
	ext := strings.ToLower(filepath.Ext(string(l)))
	return ext == ".jar" || ext == ".zip" || ext == ".war"
}

// LocationSet is the immutable set of managed locations produced by
// classification.
type LocationSet struct {
	members map[Location]struct{}
}

// NewLocationSet builds a LocationSet from the given locations.
func NewLocationSet(locations ...Location) LocationSet {
	members := make(map[Location]struct{}, len(locations))
	for _, loc := range locations {
		members[loc.Clean()] = struct{}{}
	}

	return LocationSet{members: members}
}

// Contains reports whether loc is a member of the set.
func (s LocationSet) Contains(loc Location) bool {
	_, ok := s.members[loc.Clean()]
	return ok
}

// Len returns the number of locations in the set.
func (s LocationSet) Len() int {
	return len(s.members)
}

// Sorted returns the members in lexical order.
func (s LocationSet) Sorted() []Location {
	out := make([]Location, 0, len(s.members))
	for loc := range s.members {
		out = append(out, loc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
