package domain

import (
	"fmt"
	"log/slog"
	"sync"

	m "testscope.dev/pkg/testscope/internal/model"
)

// Built-in extension types registered by the engine itself.
const (
	TestScopeExtensionType      m.TypeName = m.InternalNamespace + ".TestScopeExtension"
	ProducerConfigExtensionType m.TypeName = m.InternalNamespace + ".ProducerConfigExtension"
	ViewScopeExtensionType      m.TypeName = m.InternalNamespace + "/jsf.ViewScopeExtension"
	MockitoExtensionType        m.TypeName = m.InternalNamespace + "/mockito.MockitoExtension"
	EasyMockExtensionType       m.TypeName = m.InternalNamespace + "/easymock.EasyMockExtension"
	BeanRegistrantExtensionType m.TypeName = m.InternalNamespace + ".BeanRegistrantExtension"
)

// TestScopeExtension binds the test class into the test scope.
type TestScopeExtension struct {
	TestClass m.TypeName
}

// ExtensionName implements m.Extension.
func (e TestScopeExtension) ExtensionName() string { return string(TestScopeExtensionType) }

// ProducerConfigExtension applies method-level producer configuration.
type ProducerConfigExtension struct {
	TestClass m.TypeName
	Method    string
}

// ExtensionName implements m.Extension.
func (e ProducerConfigExtension) ExtensionName() string {
	return string(ProducerConfigExtensionType)
}

// namedExtension covers the integrations that only need their identity.
type namedExtension struct {
	name m.TypeName
}

func (e namedExtension) ExtensionName() string { return string(e.name) }

// DeclaredExtension is an extension type found by the walk.
type DeclaredExtension struct {
	Type m.TypeName
}

// ExtensionName implements m.Extension.
func (e DeclaredExtension) ExtensionName() string { return string(e.Type) }

// ExtensionFactory builds an extension instance.
type ExtensionFactory func(c *m.ClassCandidate) (m.Extension, error)

// ExtensionCatalog instantiates extension types found by the walk.
type ExtensionCatalog struct {
	mu        sync.RWMutex
	factories map[m.TypeName]ExtensionFactory
}

// NewExtensionCatalog returns an empty catalog.
func NewExtensionCatalog() *ExtensionCatalog {
	return &ExtensionCatalog{factories: make(map[m.TypeName]ExtensionFactory)}
}

// Register installs a factory for name.
func (c *ExtensionCatalog) Register(name m.TypeName, factory ExtensionFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[name] = factory
}

// Instantiate builds an instance of candidate. Types without a registered
// factory get a DeclaredExtension unless they have no default constructor.
func (c *ExtensionCatalog) Instantiate(candidate *m.ClassCandidate) (m.Extension, error) {
	c.mu.RLock()
	factory, ok := c.factories[candidate.Name]
	c.mu.RUnlock()

	if ok {
		ext, err := factory(candidate)
		if err != nil {
			return nil, &ExtensionInstantiationError{Type: candidate.Name, Cause: err}
		}

		if ext == nil {
			return nil, &ExtensionInstantiationError{Type: candidate.Name, Cause: fmt.Errorf("factory returned no instance")}
		}

		return ext, nil
	}

	if candidate.NoDefaultConstructor {
		return nil, &ExtensionInstantiationError{Type: candidate.Name, Cause: fmt.Errorf("no default constructor")}
	}

	return DeclaredExtension{Type: candidate.Name}, nil
}

// ExtensionRegistry is the append-only, order-preserving list of extensions
// handed to the container bootstrap.
type ExtensionRegistry struct {
	shape   RuntimeShape
	entries []m.ExtensionEntry
}

// NewExtensionRegistry returns an empty registry building entries with shape.
func NewExtensionRegistry(shape RuntimeShape) *ExtensionRegistry {
	return &ExtensionRegistry{shape: shape}
}

// Register appends ext with its origin label.
func (r *ExtensionRegistry) Register(ext m.Extension, origin string) {
	slog.Debug("Registered extension", "extension", ext.ExtensionName(), "origin", origin)
	r.entries = append(r.entries, BuildExtensionMetadata(r.shape, ext, origin))
}

// Entries returns a copy of the registered entries in order.
func (r *ExtensionRegistry) Entries() []m.ExtensionEntry {
	return append([]m.ExtensionEntry(nil), r.entries...)
}

// RegisterLeading appends the extensions that precede the walk: test scope,
// producer configuration when a test method is given and view scope when
// available.
func (r *ExtensionRegistry) RegisterLeading(testClass m.TypeName, testMethod string, caps m.Capabilities) {
	r.Register(TestScopeExtension{TestClass: testClass}, string(TestScopeExtensionType))

	if testMethod != "" {
		r.Register(ProducerConfigExtension{TestClass: testClass, Method: testMethod}, string(ProducerConfigExtensionType))
	}

	if caps.Enabled(m.CapabilityViewScope) {
		r.Register(namedExtension{name: ViewScopeExtensionType}, string(ViewScopeExtensionType))
	}
}

// RegisterTrailing appends the mock-framework integrations when available
// and the bean registrant, which is always last.
func (r *ExtensionRegistry) RegisterTrailing(caps m.Capabilities) {
	if caps.Enabled(m.CapabilityMockito) {
		r.Register(namedExtension{name: MockitoExtensionType}, string(MockitoExtensionType))
	}

	if caps.Enabled(m.CapabilityEasyMock) {
		r.Register(namedExtension{name: EasyMockExtensionType}, string(EasyMockExtensionType))
	}

	r.Register(namedExtension{name: BeanRegistrantExtensionType}, string(BeanRegistrantExtensionType))
}
