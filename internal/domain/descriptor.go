package domain

import (
	m "testscope.dev/pkg/testscope/internal/model"
)

// DescriptorAssembler accumulates the descriptor entries discovered during a
// walk. Every list keeps insertion order and ignores repeats.
type DescriptorAssembler struct {
	shape        RuntimeShape
	descriptor   m.DeploymentDescriptor
	seen         map[string]map[string]struct{}
	alternatives []string
}

// NewDescriptorAssembler starts from the empty descriptor built by shape.
func NewDescriptorAssembler(shape RuntimeShape) *DescriptorAssembler {
	return &DescriptorAssembler{
		shape:      shape,
		descriptor: shape.BuildDescriptorContainer(),
		seen:       make(map[string]map[string]struct{}),
	}
}

// AddInterceptor enables an interceptor class.
func (a *DescriptorAssembler) AddInterceptor(name m.TypeName) {
	a.add("interceptor", &a.descriptor.Interceptors, string(name))
}

// AddDecorator enables a decorator class.
func (a *DescriptorAssembler) AddDecorator(name m.TypeName) {
	a.add("decorator", &a.descriptor.Decorators, string(name))
}

// AddAlternativeStereotype enables an alternative stereotype.
func (a *DescriptorAssembler) AddAlternativeStereotype(name m.TypeName) {
	a.add("stereotype", &a.descriptor.AlternativeStereotypes, string(name))
}

// AddAlternativeClass records a class activated as an alternative. Classes
// are only written into the descriptor by Finalize.
func (a *DescriptorAssembler) AddAlternativeClass(name m.TypeName) {
	if a.mark("alternative", string(name)) {
		a.alternatives = append(a.alternatives, string(name))
	}
}

// Finalize appends the built-in alternative stereotype and the activated
// alternative classes that are not stereotypes, then returns the descriptor.
func (a *DescriptorAssembler) Finalize() m.DeploymentDescriptor {
	a.add("stereotype", &a.descriptor.AlternativeStereotypes, string(m.ProducesAlternative))

	for _, name := range a.alternatives {
		if _, isStereotype := a.seen["stereotype"][name]; isStereotype {
			continue
		}

		a.descriptor.AlternativeClasses = append(a.descriptor.AlternativeClasses, a.shape.BuildMetadata(name, name))
	}

	a.alternatives = nil

	return a.descriptor
}

func (a *DescriptorAssembler) add(kind string, list *[]m.Metadata[string], name string) {
	if a.mark(kind, name) {
		*list = append(*list, a.shape.BuildMetadata(name, name))
	}
}

func (a *DescriptorAssembler) mark(kind, name string) bool {
	set, ok := a.seen[kind]
	if !ok {
		set = make(map[string]struct{})
		a.seen[kind] = set
	}

	if _, dup := set[name]; dup {
		return false
	}

	set[name] = struct{}{}

	return true
}
