package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"testscope.dev/pkg/testscope/internal/adapter"
	m "testscope.dev/pkg/testscope/internal/model"
)

// Defaults for ClassifierOptions.
const (
	DefaultDescriptorResource = "META-INF/beans.xml"
	DefaultOutputSuffix       = "/classes"
	DefaultSourceDescriptor   = "../../src/main/webapp/WEB-INF/beans.xml"
)

// ClassifierOptions configures the conventions used to recognize managed
// locations.
type ClassifierOptions struct {
	// DescriptorResource is looked up inside every location.
	DescriptorResource string
	// OutputSuffix marks compiled-output directories.
	OutputSuffix string
	// SourceDescriptor is resolved relative to a compiled-output directory.
	SourceDescriptor string
}

// DefaultClassifierOptions returns the conventional options.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		DescriptorResource: DefaultDescriptorResource,
		OutputSuffix:       DefaultOutputSuffix,
		SourceDescriptor:   DefaultSourceDescriptor,
	}
}

func (o ClassifierOptions) withDefaults() ClassifierOptions {
	def := DefaultClassifierOptions()
	if o.DescriptorResource == "" {
		o.DescriptorResource = def.DescriptorResource
	}

	if o.OutputSuffix == "" {
		o.OutputSuffix = def.OutputSuffix
	}

	if o.SourceDescriptor == "" {
		o.SourceDescriptor = def.SourceDescriptor
	}

	return o
}

// Classifier partitions runtime locations into managed and external ones.
type Classifier interface {
	// Expand appends the auxiliary entries declared by the first location's
	// manifest.
	Expand(ctx context.Context, locations []m.Location) []m.Location
	// Classify returns the managed subset of the expanded locations.
	Classify(ctx context.Context, locations []m.Location, self m.Location) m.LocationSet
}

type classifier struct {
	adapter.LocationFSAdapter
	opts ClassifierOptions
}

// NewClassifier constructs a Classifier backed by fs.
func NewClassifier(fs adapter.LocationFSAdapter, opts ClassifierOptions) Classifier {
	return &classifier{LocationFSAdapter: fs, opts: opts.withDefaults()}
}

func (c *classifier) Expand(ctx context.Context, locations []m.Location) []m.Location {
	expanded := append([]m.Location(nil), locations...)
	if len(locations) == 0 {
		return expanded
	}

	first := locations[0].Clean()

	attrs, err := c.ReadManifest(ctx, first)
	if err != nil {
		slog.Debug("No manifest on first location", "location", first, "error", fmt.Errorf("%w: %w", ErrProbeFailure, err))
		return expanded
	}

	for _, entry := range adapter.SplitClassPath(attrs[adapter.ClassPathAttribute]) {
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(filepath.Dir(string(first)), entry)
		}

		expanded = append(expanded, m.Location(entry))
	}

	return expanded
}

func (c *classifier) Classify(ctx context.Context, locations []m.Location, self m.Location) m.LocationSet {
	var managed []m.Location

	for _, loc := range c.Expand(ctx, locations) {
		if c.isManaged(ctx, loc.Clean(), self.Clean()) {
			managed = append(managed, loc)
		}
	}

	set := m.NewLocationSet(managed...)

	slog.Debug("Managed locations discovered", "count", set.Len())

	for _, loc := range set.Sorted() {
		slog.Debug("Managed location", "location", loc)
	}

	return set
}

func (c *classifier) isManaged(ctx context.Context, loc, self m.Location) bool {
	if loc == "" {
		return false
	}

	if loc == self {
		return true
	}

	if c.hasDescriptor(ctx, loc) {
		return true
	}

	if c.hasSourceDescriptor(ctx, loc) {
		return true
	}

	return c.IsDir(ctx, loc)
}

// hasDescriptor probes loc for the descriptor resource.
func (c *classifier) hasDescriptor(ctx context.Context, loc m.Location) bool {
	return c.probe(ctx, loc, c.opts.DescriptorResource)
}

// hasSourceDescriptor probes the source tree next to a compiled-output
// directory. The resolver is rooted at the ancestor the source descriptor
// climbs to, so the lookup stays inside one location.
func (c *classifier) hasSourceDescriptor(ctx context.Context, loc m.Location) bool {
	suffix := strings.TrimSuffix(c.opts.OutputSuffix, "/")
	if !strings.HasSuffix(filepath.ToSlash(string(loc)), suffix) {
		return false
	}

	up, resource := splitSourceDescriptor(c.opts.SourceDescriptor)
	if resource == "" {
		return false
	}

	tree := m.Location(filepath.Join(string(loc), filepath.FromSlash(up)))

	return c.probe(ctx, tree, resource)
}

// probe looks resource up through an isolated resolver over loc that is
// closed on every exit path.
func (c *classifier) probe(ctx context.Context, loc m.Location, resource string) bool {
	resolver, err := c.OpenResolver(ctx, loc)
	if err != nil {
		slog.Debug("Location probe failed", "location", loc, "error", fmt.Errorf("%w: %w", ErrProbeFailure, err))
		return false
	}

	defer func() {
		if err := adapter.CloseResolver(resolver); err != nil {
			slog.Debug("Failed to close resolver", "location", loc, "error", err)
		}
	}()

	found, err := resolver.HasResource(ctx, resource)
	if err != nil {
		slog.Debug("Resource probe failed", "location", loc, "resource", resource, "error", fmt.Errorf("%w: %w", ErrProbeFailure, err))
		return false
	}

	return found
}

// splitSourceDescriptor separates the leading parent steps of a relative
// descriptor path from the resource path below them.
func splitSourceDescriptor(descriptor string) (string, string) {
	parts := strings.Split(path.Clean(filepath.ToSlash(descriptor)), "/")

	i := 0
	for i < len(parts) && (parts[i] == ".." || parts[i] == ".") {
		i++
	}

	up := "."
	if i > 0 {
		up = path.Join(parts[:i]...)
	}

	return up, path.Join(parts[i:]...)
}
