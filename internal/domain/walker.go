package domain

import (
	"context"
	"log/slog"

	m "testscope.dev/pkg/testscope/internal/model"
)

// TypeLookup resolves type names against the metadata index.
type TypeLookup interface {
	Lookup(name m.TypeName) (*m.ClassCandidate, bool)
}

// LocationScanner builds a type index for exactly one location, optionally
// limited to one package.
type LocationScanner interface {
	TypesInLocation(loc m.Location) []m.TypeName
	TypesInPackage(loc m.Location, pkg string) []m.TypeName
}

// indexScanner answers scans from the precomputed metadata index.
type indexScanner struct {
	index *m.TypeIndex
}

// NewIndexScanner returns a LocationScanner over index.
func NewIndexScanner(index *m.TypeIndex) LocationScanner {
	return indexScanner{index: index}
}

func (s indexScanner) TypesInLocation(loc m.Location) []m.TypeName {
	return s.index.InLocation(loc)
}

func (s indexScanner) TypesInPackage(loc m.Location, pkg string) []m.TypeName {
	return s.index.InPackage(loc, pkg)
}

// ClosureState is the walker's working set.
type ClosureState struct {
	queue      []m.TypeName
	processed  m.TypeSet
	ignored    m.TypeSet
	discovered []m.TypeName
	seen       m.TypeSet
}

func newClosureState(seed []m.TypeName, ignored m.TypeSet) *ClosureState {
	s := &ClosureState{
		processed: m.NewTypeSet(),
		ignored:   m.NewTypeSet(),
		seen:      m.NewTypeSet(),
	}

	for name := range ignored {
		s.ignored.Add(name)
	}

	s.enqueue(seed...)

	return s
}

func (s *ClosureState) enqueue(names ...m.TypeName) {
	s.queue = append(s.queue, names...)
}

func (s *ClosureState) dequeue() (m.TypeName, bool) {
	if len(s.queue) == 0 {
		return "", false
	}

	next := s.queue[0]
	s.queue = s.queue[1:]

	return next, true
}

func (s *ClosureState) discover(name m.TypeName) {
	if s.seen.Contains(name) {
		return
	}

	s.seen.Add(name)
	s.discovered = append(s.discovered, name)
}

// Discovered returns the discovered class names in insertion order.
func (s *ClosureState) Discovered() []m.TypeName {
	return append([]m.TypeName(nil), s.discovered...)
}

// Processed reports whether name was expanded by the walk.
func (s *ClosureState) Processed(name m.TypeName) bool {
	return s.processed.Contains(name)
}

// Ignored reports whether name is globally suppressed.
func (s *ClosureState) Ignored(name m.TypeName) bool {
	return s.ignored.Contains(name)
}

// ClosureWalker computes the transitive closure of classes a test needs.
type ClosureWalker struct {
	index      TypeLookup
	scanner    LocationScanner
	catalog    *ExtensionCatalog
	descriptor *DescriptorAssembler
	extensions *ExtensionRegistry
}

// NewClosureWalker wires a walker to the index and the sinks it fills.
func NewClosureWalker(
	index TypeLookup,
	scanner LocationScanner,
	catalog *ExtensionCatalog,
	descriptor *DescriptorAssembler,
	extensions *ExtensionRegistry,
) *ClosureWalker {
	return &ClosureWalker{
		index:      index,
		scanner:    scanner,
		catalog:    catalog,
		descriptor: descriptor,
		extensions: extensions,
	}
}

// Walk expands seed to a fixed point. Only types from managed locations and
// extension types are discovered; types in ignored never are.
func (w *ClosureWalker) Walk(ctx context.Context, seed []m.TypeName, managed m.LocationSet, ignored m.TypeSet) (*ClosureState, error) {
	return w.walk(ctx, newClosureState(seed, ignored), managed)
}

// WalkFor walks seed on behalf of a test class. The test class is
// discovered first even when its location is unmanaged, unless it is
// ignored; it is only expanded when eligible.
func (w *ClosureWalker) WalkFor(ctx context.Context, test m.TypeName, seed []m.TypeName, managed m.LocationSet, ignored m.TypeSet) (*ClosureState, error) {
	state := newClosureState(seed, ignored)
	if !state.ignored.Contains(test) {
		state.discover(test)
	}

	return w.walk(ctx, state, managed)
}

func (w *ClosureWalker) walk(ctx context.Context, state *ClosureState, managed m.LocationSet) (*ClosureState, error) {
	for {
		name, ok := state.dequeue()
		if !ok {
			break
		}

		c, eligible := w.eligible(state, name, managed)
		if !eligible {
			continue
		}

		state.processed.Add(c.Name)

		if !c.IsAnnotation() {
			state.discover(c.Name)
		}

		if err := w.register(c); err != nil {
			return nil, err
		}

		if err := w.expand(state, c); err != nil {
			return nil, err
		}
	}

	slog.DebugContext(ctx, "Closure computed", "discovered", len(state.discovered), "processed", len(state.processed))

	return state, nil
}

func (w *ClosureWalker) eligible(state *ClosureState, name m.TypeName, managed m.LocationSet) (*m.ClassCandidate, bool) {
	if name == "" || m.IsPredeclared(name) || state.processed.Contains(name) || state.ignored.Contains(name) {
		return nil, false
	}

	c, ok := w.index.Lookup(name)
	if !ok || c.IsPrimitive() {
		return nil, false
	}

	if !managed.Contains(c.Location) && !c.Implementing(m.ExtensionCapability) {
		return nil, false
	}

	return c, true
}

func (w *ClosureWalker) register(c *m.ClassCandidate) error {
	if c.Implementing(m.ExtensionCapability) && !c.Abstract {
		ext, err := w.catalog.Instantiate(c)
		if err != nil {
			slog.Error("Failed to instantiate extension", "type", c.Name, "error", err)
			return err
		}

		w.extensions.Register(ext, string(c.Name))
	}

	if c.HasAnnotation(m.Interceptor) {
		w.descriptor.AddInterceptor(c.Name)
	}

	if c.HasAnnotation(m.Decorator) {
		w.descriptor.AddDecorator(c.Name)
	}

	if isAlternativeStereotype(c) {
		w.descriptor.AddAlternativeStereotype(c.Name)
	}

	return nil
}

func (w *ClosureWalker) expand(state *ClosureState, c *m.ClassCandidate) error {
	if err := w.expandAdditionalClasses(state, c); err != nil {
		return err
	}

	w.expandScans(state, c)
	w.expandAlternatives(state, c)

	for _, a := range c.Annotations {
		if a.Type.Package() != m.DirectiveNamespace {
			state.enqueue(a.Type)
		}
	}

	if c.Super != nil && c.Super.Name != m.RootType {
		enqueueRef(state, *c.Super)
	}

	for _, f := range c.Fields {
		if f.HasAnnotation(m.Inject) || f.HasAnnotation(m.Produces) || m.IsWrapper(f.Type.Name) {
			enqueueRef(state, f.Type)
		}
	}

	for _, method := range c.Methods {
		if !method.HasAnnotation(m.Inject) && !method.HasAnnotation(m.Produces) {
			continue
		}

		for _, p := range method.Params {
			enqueueRef(state, p)
		}

		if method.Return != nil {
			enqueueRef(state, *method.Return)
		}
	}

	return nil
}

func (w *ClosureWalker) expandAdditionalClasses(state *ClosureState, c *m.ClassCandidate) error {
	a, ok := c.Annotation(m.AdditionalClasses)
	if !ok {
		return nil
	}

	state.enqueue(a.Classes...)

	for _, lateBound := range a.Names {
		target, found := w.index.Lookup(m.TypeName(lateBound))
		if !found {
			err := &ResolutionError{Name: lateBound, Requester: c.Name}
			slog.Error("Failed to resolve late-bound class", "name", lateBound, "requester", c.Name)

			return err
		}

		state.enqueue(target.Name)
	}

	return nil
}

func (w *ClosureWalker) expandScans(state *ClosureState, c *m.ClassCandidate) {
	if a, ok := c.Annotation(m.AdditionalClasspaths); ok {
		for _, ref := range a.Classes {
			if target, found := w.index.Lookup(ref); found {
				state.enqueue(w.scanner.TypesInLocation(target.Location)...)
			}
		}
	}

	if a, ok := c.Annotation(m.AdditionalPackages); ok {
		for _, ref := range a.Classes {
			if target, found := w.index.Lookup(ref); found {
				state.enqueue(w.scanner.TypesInPackage(target.Location, target.Name.Package())...)
			}
		}
	}
}

func (w *ClosureWalker) expandAlternatives(state *ClosureState, c *m.ClassCandidate) {
	a, ok := c.Annotation(m.ActivatedAlternatives)
	if !ok {
		return
	}

	for _, ref := range a.Classes {
		state.enqueue(ref)

		if target, found := w.index.Lookup(ref); found && isAlternativeStereotype(target) {
			continue
		}

		w.descriptor.AddAlternativeClass(ref)
	}
}

// enqueueRef adds the classes named by ref. Wrappers contribute only their
// type arguments.
func enqueueRef(state *ClosureState, ref m.TypeRef) {
	if !m.IsWrapper(ref.Name) {
		state.enqueue(ref.Name)
	}

	for _, arg := range ref.Args {
		enqueueRef(state, arg)
	}
}

func isAlternativeStereotype(c *m.ClassCandidate) bool {
	return c.HasAnnotation(m.Stereotype) && c.HasAnnotation(m.Alternative)
}
