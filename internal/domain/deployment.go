package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	m "testscope.dev/pkg/testscope/internal/model"
)

// unitIDPrefix starts every deployment unit identity token.
const unitIDPrefix = "testscope-"

// DeployRequest holds the inputs for one test's deployment.
type DeployRequest struct {
	TestClass         m.TypeName
	TestMethod        string
	AdditionalClasses []m.TypeName
	Locations         []m.Location
	Self              m.Location
	Runtime           m.Runtime
	Capabilities      m.Capabilities
}

// Deployer builds the deployment unit for one test invocation.
type Deployer interface {
	Build(ctx context.Context, req DeployRequest) (*m.DeploymentUnit, error)
}

type deployer struct {
	Classifier
	index   *m.TypeIndex
	catalog *ExtensionCatalog
}

// NewDeployer constructs a Deployer over a prebuilt metadata index. The
// engine's own types are merged in at the request's self location.
func NewDeployer(classifier Classifier, index *m.TypeIndex, catalog *ExtensionCatalog) Deployer {
	if catalog == nil {
		catalog = NewExtensionCatalog()
	}

	return &deployer{Classifier: classifier, index: index, catalog: catalog}
}

func (d *deployer) Build(ctx context.Context, req DeployRequest) (*m.DeploymentUnit, error) {
	if req.TestClass == "" {
		return nil, fmt.Errorf("missing test class")
	}

	shape, err := SelectShape(req.Runtime)
	if err != nil {
		return nil, err
	}

	index := BuiltinIndex(req.Self)
	index.Merge(d.index)

	test, ok := index.Lookup(req.TestClass)
	if !ok {
		slog.Error("Test class not indexed", "testClass", req.TestClass)
		return nil, &ResolutionError{Name: string(req.TestClass), Requester: req.TestClass}
	}

	managed := d.Classify(ctx, withSelf(req.Locations, req.Self), req.Self)

	descriptor := NewDescriptorAssembler(shape)
	extensions := NewExtensionRegistry(shape)
	extensions.RegisterLeading(req.TestClass, req.TestMethod, req.Capabilities)

	walker := NewClosureWalker(index, NewIndexScanner(index), d.catalog, descriptor, extensions)

	state, err := walker.WalkFor(ctx, req.TestClass, seedClasses(req), managed, MockedTypes(test))
	if err != nil {
		return nil, fmt.Errorf("compute closure for %s: %w", req.TestClass, err)
	}

	extensions.RegisterTrailing(req.Capabilities)

	unit := &m.DeploymentUnit{
		ID:         unitIDPrefix + uuid.NewString(),
		TestClass:  req.TestClass,
		TestMethod: req.TestMethod,
		Classes:    state.Discovered(),
		Descriptor: descriptor.Finalize(),
		Extensions: extensions.Entries(),
		Managed:    managed,
	}

	logDiscovered(ctx, unit)

	return unit, nil
}

// MockedTypes returns the types of the test class fields marked as mocks.
// They are suppressed from the whole closure.
func MockedTypes(test *m.ClassCandidate) m.TypeSet {
	mocked := m.NewTypeSet()

	for _, f := range test.Fields {
		if f.HasAnnotation(m.MockitoMock) || f.HasAnnotation(m.EasyMockMock) {
			mocked.Add(f.Type.Name)
		}
	}

	return mocked
}

func seedClasses(req DeployRequest) []m.TypeName {
	seed := []m.TypeName{req.TestClass}
	seed = append(seed, SupportSeeds(req.Capabilities)...)

	return append(seed, req.AdditionalClasses...)
}

func withSelf(locations []m.Location, self m.Location) []m.Location {
	if self == "" {
		return locations
	}

	for _, loc := range locations {
		if loc.Clean() == self.Clean() {
			return locations
		}
	}

	return append(append([]m.Location(nil), locations...), self)
}

func logDiscovered(ctx context.Context, unit *m.DeploymentUnit) {
	slog.DebugContext(ctx, "Deployment discovered", "id", unit.ID, "testClass", unit.TestClass, "classes", len(unit.Classes))

	for _, name := range unit.Classes {
		if !m.IsInternal(name) {
			slog.DebugContext(ctx, "Discovered class", "class", name)
		}
	}
}
