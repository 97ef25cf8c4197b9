package domain

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-version"
	m "testscope.dev/pkg/testscope/internal/model"
)

// Labels written into descriptors built by shapes that support them.
const (
	descriptorURL           = "file:testscope"
	descriptorDiscoveryMode = "annotated"
	descriptorVersion       = "testscope"
)

// RuntimeShape builds container-internal objects for one API shape of the
// container runtime.
type RuntimeShape interface {
	// Name identifies the shape in logs and reports.
	Name() string
	// Arity is the number of construction slots of the descriptor.
	Arity() int
	// Supports reports whether the shape matches the runtime version.
	Supports(v *version.Version) bool
	// BuildDescriptorContainer returns an empty descriptor.
	BuildDescriptorContainer() m.DeploymentDescriptor
	// MetadataShape names the metadata helper flavour of the shape.
	MetadataShape() string
	// BuildMetadata wraps a deployment value with its origin label.
	BuildMetadata(value string, origin string) m.Metadata[string]
}

// BuildExtensionMetadata wraps an extension with its origin label using the
// metadata flavour of shape.
func BuildExtensionMetadata(shape RuntimeShape, ext m.Extension, origin string) m.ExtensionEntry {
	return m.ExtensionEntry{Value: ext, Location: origin, Shape: shape.MetadataShape()}
}

// runtimeShape is a shape described by its version constraint, the number
// of descriptor slots it accepts and its metadata helper.
type runtimeShape struct {
	name       string
	constraint version.Constraints
	arity      int
	metadata   string
}

func newRuntimeShape(name, constraint string, arity int, metadata string) *runtimeShape {
	return &runtimeShape{
		name:       name,
		constraint: version.MustConstraints(version.NewConstraint(constraint)),
		arity:      arity,
		metadata:   metadata,
	}
}

func (s *runtimeShape) Name() string { return s.name }

func (s *runtimeShape) Arity() int { return s.arity }

func (s *runtimeShape) String() string {
	return fmt.Sprintf("%s (runtime %s, %d slots)", s.name, s.constraint, s.arity)
}

func (s *runtimeShape) Supports(v *version.Version) bool {
	return s.constraint.Check(v)
}

// BuildDescriptorContainer fills the full construction argument list and
// keeps only the slots this shape accepts.
func (s *runtimeShape) BuildDescriptorContainer() m.DeploymentDescriptor {
	trimmed := false
	slots := []func(*m.DeploymentDescriptor){
		func(d *m.DeploymentDescriptor) { d.Interceptors = []m.Metadata[string]{} },
		func(d *m.DeploymentDescriptor) { d.Decorators = []m.Metadata[string]{} },
		func(d *m.DeploymentDescriptor) { d.AlternativeClasses = []m.Metadata[string]{} },
		func(d *m.DeploymentDescriptor) { d.AlternativeStereotypes = []m.Metadata[string]{} },
		func(d *m.DeploymentDescriptor) { d.Scanning = m.Scanning{} },
		func(d *m.DeploymentDescriptor) { d.URL = descriptorURL },
		func(d *m.DeploymentDescriptor) { d.DiscoveryMode = descriptorDiscoveryMode },
		func(d *m.DeploymentDescriptor) { d.Version = descriptorVersion },
		func(d *m.DeploymentDescriptor) { d.Trimmed = &trimmed },
	}

	d := m.DeploymentDescriptor{Shape: s.name}
	for _, fill := range slots[:min(s.arity, len(slots))] {
		fill(&d)
	}

	return d
}

func (s *runtimeShape) MetadataShape() string { return s.metadata }

func (s *runtimeShape) BuildMetadata(value string, origin string) m.Metadata[string] {
	return m.Metadata[string]{Value: value, Location: origin, Shape: s.metadata}
}

// knownShapes lists the supported runtime shapes, newest first.
func knownShapes() []RuntimeShape {
	return []RuntimeShape{
		newRuntimeShape("trimmed", ">= 2.4.2", 9, "relocated"),
		newRuntimeShape("relocated", ">= 2.4, < 2.4.2", 8, "relocated"),
		newRuntimeShape("annotated", ">= 2.0, < 2.4", 8, "legacy"),
		newRuntimeShape("legacy", ">= 1.0, < 2.0", 5, "legacy"),
	}
}

// KnownShapes returns the supported runtime shapes, newest first.
func KnownShapes() []RuntimeShape {
	return knownShapes()
}

// SelectShape detects the runtime shape once per run. The newest shape
// supporting the runtime version wins. When the runtime advertises its
// descriptor arity, shapes with more slots are skipped and the newest
// fitting shape is used if none supports the version.
func SelectShape(runtime m.Runtime) (RuntimeShape, error) {
	return selectShape(runtime, knownShapes())
}

func selectShape(runtime m.Runtime, shapes []RuntimeShape) (RuntimeShape, error) {
	v, err := version.NewVersion(runtime.Version)
	if err != nil {
		slog.Error("Failed to parse runtime version", "version", runtime.Version, "error", err)
		return nil, &CompatibilityError{Version: runtime.Version, Arity: runtime.Arity, Cause: err}
	}

	var fallback RuntimeShape

	for _, shape := range shapes {
		if runtime.Arity > 0 && shape.Arity() > runtime.Arity {
			// Newer shape not available on this runtime.
			continue
		}

		if !shape.Supports(v) {
			if runtime.Arity > 0 && fallback == nil {
				fallback = shape
			}

			continue
		}

		slog.Debug("Selected runtime shape", "shape", shape.Name(), "version", v.String(), "arity", shape.Arity())

		return shape, nil
	}

	if fallback != nil {
		slog.Debug("Selected runtime shape by arity", "shape", fallback.Name(), "version", v.String(), "arity", fallback.Arity())
		return fallback, nil
	}

	slog.Error("No runtime shape matches", "version", runtime.Version, "arity", runtime.Arity)

	return nil, &CompatibilityError{
		Version: runtime.Version,
		Arity:   runtime.Arity,
		Cause:   fmt.Errorf("tried %d shapes", len(shapes)),
	}
}
