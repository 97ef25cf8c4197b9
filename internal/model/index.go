package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Runtime describes the container runtime the deployment is built for.
type Runtime struct {
	// Version is the runtime API version, e.g. "2.4.8".
	Version string `yaml:"version"`
	// Arity is the descriptor construction arity the runtime advertises.
	// Zero means unknown.
	Arity int `yaml:"arity,omitempty"`
	// Markers lists the optional integrations available at runtime.
	Markers []string `yaml:"markers,omitempty"`
}

// TypeIndex maps type identity to the static facts about that type. It is
// built once before a walk and only read afterwards.
type TypeIndex struct {
	Runtime Runtime

	types map[TypeName]*ClassCandidate
	order []TypeName
}

// NewTypeIndex builds an index from candidates. Later duplicates replace
// earlier entries.
func NewTypeIndex(candidates ...*ClassCandidate) *TypeIndex {
	idx := &TypeIndex{types: make(map[TypeName]*ClassCandidate, len(candidates))}
	for _, c := range candidates {
		idx.Add(c)
	}

	return idx
}

// Add registers a candidate.
func (idx *TypeIndex) Add(c *ClassCandidate) {
	if c == nil || c.Name == "" {
		return
	}

	if c.Kind == "" {
		c.Kind = KindClass
	}

	if _, exists := idx.types[c.Name]; !exists {
		idx.order = append(idx.order, c.Name)
	}

	idx.types[c.Name] = c
}

// Merge copies every entry of other into idx. Runtime facts from other win
// when set.
func (idx *TypeIndex) Merge(other *TypeIndex) {
	if other == nil {
		return
	}

	for _, name := range other.order {
		idx.Add(other.types[name])
	}

	if other.Runtime.Version != "" {
		idx.Runtime.Version = other.Runtime.Version
	}

	if other.Runtime.Arity != 0 {
		idx.Runtime.Arity = other.Runtime.Arity
	}

	idx.Runtime.Markers = append(idx.Runtime.Markers, other.Runtime.Markers...)
}

// Lookup returns the candidate registered under name.
func (idx *TypeIndex) Lookup(name TypeName) (*ClassCandidate, bool) {
	c, ok := idx.types[name]
	return c, ok
}

// Len returns the number of indexed types.
func (idx *TypeIndex) Len() int {
	return len(idx.order)
}

// Names returns every indexed name in registration order.
func (idx *TypeIndex) Names() []TypeName {
	return append([]TypeName(nil), idx.order...)
}

// InLocation returns the names of every type that originates from loc.
func (idx *TypeIndex) InLocation(loc Location) []TypeName {
	var out []TypeName

	want := loc.Clean()
	for _, name := range idx.order {
		if idx.types[name].Location.Clean() == want {
			out = append(out, name)
		}
	}

	return out
}

// InPackage returns the names of every type in loc whose package is exactly
// pkg. Sub-packages are not included.
func (idx *TypeIndex) InPackage(loc Location, pkg string) []TypeName {
	var out []TypeName

	for _, name := range idx.InLocation(loc) {
		if name.Package() == pkg {
			out = append(out, name)
		}
	}

	return out
}

// Locations returns the distinct origin locations in registration order.
func (idx *TypeIndex) Locations() []Location {
	seen := make(map[Location]struct{})

	var out []Location

	for _, name := range idx.order {
		loc := idx.types[name].Location.Clean()
		if loc == "" {
			continue
		}

		if _, ok := seen[loc]; ok {
			continue
		}

		seen[loc] = struct{}{}
		out = append(out, loc)
	}

	return out
}

// ParseTypeRef parses "Name" or "Name[Arg, Other[Nested]]" into a TypeRef.
func ParseTypeRef(s string) (TypeRef, error) {
	ref, rest, err := parseTypeRef(strings.TrimSpace(s))
	if err != nil {
		return TypeRef{}, err
	}

	if strings.TrimSpace(rest) != "" {
		return TypeRef{}, fmt.Errorf("unexpected %q after type reference %q", rest, s)
	}

	return ref, nil
}

func parseTypeRef(s string) (TypeRef, string, error) {
	end := strings.IndexAny(s, "[],")
	if end < 0 {
		end = len(s)
	}

	name := strings.TrimSpace(s[:end])
	if name == "" {
		return TypeRef{}, "", fmt.Errorf("empty type name in %q", s)
	}

	ref := TypeRef{Name: TypeName(name)}
	rest := s[end:]

	if !strings.HasPrefix(rest, "[") {
		return ref, rest, nil
	}

	rest = rest[1:]

	for {
		arg, next, err := parseTypeRef(strings.TrimSpace(rest))
		if err != nil {
			return TypeRef{}, "", err
		}

		ref.Args = append(ref.Args, arg)
		next = strings.TrimSpace(next)

		switch {
		case strings.HasPrefix(next, ","):
			rest = next[1:]
		case strings.HasPrefix(next, "]"):
			return ref, next[1:], nil
		default:
			return TypeRef{}, "", fmt.Errorf("unterminated type arguments in %q", s)
		}
	}
}

// String renders the reference in the form accepted by ParseTypeRef.
func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return string(r.Name)
	}

	args := make([]string, 0, len(r.Args))
	for _, a := range r.Args {
		args = append(args, a.String())
	}

	return string(r.Name) + "[" + strings.Join(args, ", ") + "]"
}

// UnmarshalYAML accepts either the mapping form or the shorthand scalar
// "Name[Arg]" for a type reference.
func (r *TypeRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		ref, err := ParseTypeRef(value.Value)
		if err != nil {
			return err
		}

		*r = ref

		return nil
	}

	type plain TypeRef

	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	*r = TypeRef(decoded)

	return nil
}
