// Package domain contains the deployment engine: classpath classification,
// closure discovery and deployment assembly.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"testscope.dev/pkg/testscope/internal/adapter"
	"testscope.dev/pkg/testscope/internal/controller"
	m "testscope.dev/pkg/testscope/internal/model"
)

// DefaultSelfLocation is the engine's own location when none is configured.
const DefaultSelfLocation m.Location = "testscope:engine"

// Target names one test invocation.
type Target struct {
	Class  m.TypeName
	Method string
}

// IndexArgs names the metadata sources and the classpath of a run.
type IndexArgs struct {
	Indexes   []m.Path
	Sources   []m.Location
	Classpath []m.Location
	Self      m.Location
}

// ResolveArgs contains the arguments for resolving deployment units.
type ResolveArgs struct {
	IndexArgs

	Targets           []Target
	AdditionalClasses []m.TypeName
	Runtime           m.Runtime
	Capabilities      map[m.Capability]bool
	Reports           m.Path
	Parallel          int
}

// ClassifyArgs contains the arguments for classifying the classpath.
type ClassifyArgs struct {
	IndexArgs
}

// ViewArgs contains the arguments for viewing saved unit reports.
type ViewArgs struct {
	Reports m.Path
}

// Workflow drives the engine for the command line.
type Workflow interface {
	Resolve(ctx context.Context, args ResolveArgs) error
	Classify(ctx context.Context, args ClassifyArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.LocationFSAdapter
	adapter.IndexFileAdapter
	adapter.GoSourceAdapter
	adapter.UnitStore
	controller.UI
	Classifier
	catalog *ExtensionCatalog
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.LocationFSAdapter,
	indexAdapter adapter.IndexFileAdapter,
	sourceAdapter adapter.GoSourceAdapter,
	unitStore adapter.UnitStore,
	ui controller.UI,
	classifier Classifier,
	catalog *ExtensionCatalog,
) Workflow {
	if catalog == nil {
		catalog = NewExtensionCatalog()
	}

	return &workflow{
		LocationFSAdapter: fsAdapter,
		IndexFileAdapter:  indexAdapter,
		GoSourceAdapter:   sourceAdapter,
		UnitStore:         unitStore,
		UI:                ui,
		Classifier:        classifier,
		catalog:           catalog,
	}
}

func (w *workflow) Resolve(ctx context.Context, args ResolveArgs) error {
	if len(args.Targets) == 0 {
		return fmt.Errorf("no test targets given")
	}

	index, err := w.loadIndex(ctx, args.IndexArgs)
	if err != nil {
		return err
	}

	runtime := index.Runtime
	if args.Runtime.Version != "" {
		runtime.Version = args.Runtime.Version
	}

	if args.Runtime.Arity != 0 {
		runtime.Arity = args.Runtime.Arity
	}

	caps := m.NewCapabilities(index.Runtime.Markers...).With(args.Capabilities)
	deployer := NewDeployer(w.Classifier, index, w.catalog)
	classpath := w.classpath(args.IndexArgs, index)
	self := selfLocation(args.Self)

	reports := make([]m.UnitReport, len(args.Targets))

	var (
		errs   *multierror.Error
		errsMu sync.Mutex
		group  errgroup.Group
	)

	if args.Parallel > 0 {
		group.SetLimit(args.Parallel)
	}

	for i, target := range args.Targets {
		i, target := i, target // per-iteration copies (pre-Go 1.22 loop semantics)
		group.Go(func() error {
			unit, err := deployer.Build(ctx, DeployRequest{
				TestClass:         target.Class,
				TestMethod:        target.Method,
				AdditionalClasses: args.AdditionalClasses,
				Locations:         classpath,
				Self:              self,
				Runtime:           runtime,
				Capabilities:      caps,
			})
			if err != nil {
				slog.Error("Failed to resolve deployment", "testClass", target.Class, "error", err)
				errsMu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", target.Class, err))
				errsMu.Unlock()

				return nil
			}

			reports[i] = m.NewUnitReport(unit)

			return nil
		})
	}

	_ = group.Wait()

	resolved := make([]m.UnitReport, 0, len(reports))
	for _, report := range reports {
		if report.ID != "" {
			resolved = append(resolved, report)
		}
	}

	w.DisplayReports(ctx, resolved)

	if args.Reports != "" && len(resolved) > 0 {
		if err := w.SaveReports(ctx, args.Reports, resolved); err != nil {
			return fmt.Errorf("save reports: %w", err)
		}
	}

	return errs.ErrorOrNil()
}

func (w *workflow) Classify(ctx context.Context, args ClassifyArgs) error {
	index, err := w.loadIndex(ctx, args.IndexArgs)
	if err != nil {
		return err
	}

	self := selfLocation(args.Self)
	managed := w.Classifier.Classify(ctx, withSelf(w.classpath(args.IndexArgs, index), self), self)

	w.DisplayManaged(ctx, managed.Sorted())

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.LoadReports(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	w.DisplayReports(ctx, reports)

	return nil
}

// loadIndex merges every configured index file and source tree into one
// metadata index.
func (w *workflow) loadIndex(ctx context.Context, args IndexArgs) (*m.TypeIndex, error) {
	index := m.NewTypeIndex()

	for _, path := range args.Indexes {
		loaded, err := w.LoadIndex(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}

		index.Merge(loaded)
	}

	for _, loc := range args.Sources {
		loaded, err := w.IndexLocation(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("index sources in %s: %w", loc, err)
		}

		index.Merge(loaded)
	}

	slog.Debug("Metadata index loaded", "types", index.Len(), "indexes", len(args.Indexes), "sources", len(args.Sources))

	return index, nil
}

// classpath returns the configured classpath, or every location the index
// knows about when none is configured.
func (w *workflow) classpath(args IndexArgs, index *m.TypeIndex) []m.Location {
	if len(args.Classpath) > 0 {
		return args.Classpath
	}

	return index.Locations()
}

func selfLocation(self m.Location) m.Location {
	if self == "" {
		return DefaultSelfLocation
	}

	return self
}
