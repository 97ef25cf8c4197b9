package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeName is the qualified name of a type: "<package path>.<Name>".
type TypeName string

// Package returns everything before the last dot of the qualified name.
func (n TypeName) Package() string {
	i := strings.LastIndex(string(n), ".")
	if i < 0 {
		return ""
	}

	return string(n)[:i]
}

// Simple returns the unqualified name.
func (n TypeName) Simple() string {
	i := strings.LastIndex(string(n), ".")
	return string(n)[i+1:]
}

// Kind classifies a type in the metadata index.
type Kind string

const (
	// KindClass is an ordinary type that may become a component.
	KindClass Kind = "class"
	// KindAnnotation is a marker type used to annotate other types.
	KindAnnotation Kind = "annotation"
	// KindPrimitive is a built-in value type.
	KindPrimitive Kind = "primitive"
)

// TypeRef is a possibly parameterized reference to a type.
type TypeRef struct {
	Name TypeName  `yaml:"name"`
	Args []TypeRef `yaml:"args,omitempty"`
}

// Annotation is a marker present on a type, field or method. Directive
// annotations carry class references and late-bound class names.
type Annotation struct {
	Type    TypeName   `yaml:"type"`
	Classes []TypeName `yaml:"classes,omitempty"`
	Names   []string   `yaml:"names,omitempty"`
}

// Field is a declared field of a class.
type Field struct {
	Name        string       `yaml:"name"`
	Type        TypeRef      `yaml:"type"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// Method is a declared method of a class.
type Method struct {
	Name        string       `yaml:"name"`
	Params      []TypeRef    `yaml:"params,omitempty"`
	Return      *TypeRef     `yaml:"return,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// ClassCandidate is the read-only static view of one type.
type ClassCandidate struct {
	Name                 TypeName     `yaml:"name"`
	Location             Location     `yaml:"location"`
	Kind                 Kind         `yaml:"kind,omitempty"`
	Abstract             bool         `yaml:"abstract,omitempty"`
	NoDefaultConstructor bool         `yaml:"no_default_constructor,omitempty"`
	Implements           []TypeName   `yaml:"implements,omitempty"`
	Annotations          []Annotation `yaml:"annotations,omitempty"`
	Super                *TypeRef     `yaml:"super,omitempty"`
	Fields               []Field      `yaml:"fields,omitempty"`
	Methods              []Method     `yaml:"methods,omitempty"`
}

// IsAnnotation reports whether the candidate is an annotation type.
func (c *ClassCandidate) IsAnnotation() bool {
	return c.Kind == KindAnnotation
}

// IsPrimitive reports whether the candidate is a primitive type.
func (c *ClassCandidate) IsPrimitive() bool {
	return c.Kind == KindPrimitive || IsPredeclared(c.Name)
}

// Annotation returns the annotation of the given type, if present.
func (c *ClassCandidate) Annotation(t TypeName) (Annotation, bool) {
	return findAnnotation(c.Annotations, t)
}

// HasAnnotation reports whether an annotation of type t is present.
func (c *ClassCandidate) HasAnnotation(t TypeName) bool {
	_, ok := c.Annotation(t)
	return ok
}

// Implementing reports whether the candidate implements the capability.
func (c *ClassCandidate) Implementing(capability TypeName) bool {
	for _, name := range c.Implements {
		if name == capability {
			return true
		}
	}

	return false
}

// HasAnnotation reports whether the field carries an annotation of type t.
func (f Field) HasAnnotation(t TypeName) bool {
	_, ok := findAnnotation(f.Annotations, t)
	return ok
}

// HasAnnotation reports whether the method carries an annotation of type t.
func (m Method) HasAnnotation(t TypeName) bool {
	_, ok := findAnnotation(m.Annotations, t)
	return ok
}

func findAnnotation(annotations []Annotation, t TypeName) (Annotation, bool) {
	for _, a := range annotations {
		if a.Type == t {
			return a, true
		}
	}

	return Annotation{}, false
}

var predeclared = map[TypeName]struct{}{
	"bool": {}, "byte": {}, "rune": {}, "string": {}, "error": {},
	"int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {}, "uintptr": {},
	"float32": {}, "float64": {}, "complex64": {}, "complex128": {},
	"boolean": {}, "char": {}, "short": {}, "long": {}, "float": {}, "double": {}, "void": {},
}

// IsPredeclared reports whether the name is a built-in value type.
func IsPredeclared(name TypeName) bool {
	_, ok := predeclared[name]
	return ok
}

// TypeSet is a set of type names.
type TypeSet map[TypeName]struct{}

// NewTypeSet builds a TypeSet from names.
func NewTypeSet(names ...TypeName) TypeSet {
	set := make(TypeSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}

// Add inserts name into the set.
func (s TypeSet) Add(name TypeName) {
	s[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s TypeSet) Contains(name TypeName) bool {
	_, ok := s[name]
	return ok
}

// UnmarshalYAML accepts a bare type name as shorthand for a marker
// annotation without arguments.
func (a *Annotation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*a = Annotation{Type: TypeName(value.Value)}
		return nil
	}

	type plain Annotation

	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	*a = Annotation(decoded)

	return nil
}
