package adapter

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"
	m "testscope.dev/pkg/testscope/internal/model"
)

// Comment directives understood by the source indexer.
const (
	annotationMarker = "@"
	directivePrefix  = "//testscope:"
)

// wellKnownQualifiers resolve qualifiers that do not need an import.
var wellKnownQualifiers = map[string]string{
	"scope":    m.DirectiveNamespace,
	"di":       "di",
	"mockito":  "mockito",
	"easymock": "easymock",
}

// fieldTags maps struct tag keys to the field annotation they stand for.
var fieldTags = []struct {
	key        string
	annotation m.TypeName
}{
	{"inject", m.Inject},
	{"produces", m.Produces},
	{"mock", m.MockitoMock},
	{"easymock", m.EasyMockMock},
}

// GoSourceAdapter builds metadata index entries from Go source trees so the
// domain can walk real code without a precomputed index file.
type GoSourceAdapter interface {
	// Parse builds an AST using the provided file set and source bytes.
	Parse(ctx context.Context, fileSet *token.FileSet, filename string, src []byte) (*ast.File, error)

	// IndexLocation indexes every named type declared below loc.
	IndexLocation(ctx context.Context, loc m.Location) (*m.TypeIndex, error)
}

// LocalGoSourceAdapter provides a GoSourceAdapter backed by go/parser.
type LocalGoSourceAdapter struct {
	fs LocationFSAdapter
}

// NewLocalGoSourceAdapter constructs a LocalGoSourceAdapter.
func NewLocalGoSourceAdapter(fs LocationFSAdapter) *LocalGoSourceAdapter {
	return &LocalGoSourceAdapter{fs: fs}
}

// Parse builds an AST for the provided filename/source pair.
func (a *LocalGoSourceAdapter) Parse(ctx context.Context, fileSet *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return parser.ParseFile(fileSet, filename, src, parser.ParseComments)
}

// IndexLocation walks loc, parses every Go file and records its named types.
func (a *LocalGoSourceAdapter) IndexLocation(ctx context.Context, loc m.Location) (*m.TypeIndex, error) {
	root := string(loc.Clean())

	modulePath, err := a.modulePath(ctx, root)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	builder := newSourceIndexBuilder(loc.Clean())

	err = a.fs.Walk(ctx, m.Path(root), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if p != root && skipSourceDir(info.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(p) != ".go" {
			return nil
		}

		content, err := a.fs.ReadFile(ctx, m.Path(p))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		file, err := a.Parse(ctx, fset, p, content)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}

		builder.addFile(packagePath(modulePath, rel, file), file)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return builder.build(), nil
}

func (a *LocalGoSourceAdapter) modulePath(ctx context.Context, root string) (string, error) {
	content, err := a.fs.ReadFile(ctx, m.Path(filepath.Join(root, "go.mod")))
	if err != nil {
		// Plain source trees without a module are indexed under their
		// directory name.
		return filepath.Base(root), nil //nolint:nilerr // missing go.mod is not an error
	}

	modulePath := modfile.ModulePath(content)
	if modulePath == "" {
		return "", fmt.Errorf("go.mod in %s declares no module path", root)
	}

	return modulePath, nil
}

func skipSourceDir(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func packagePath(modulePath, rel string, file *ast.File) string {
	pkg := modulePath
	if rel != "." {
		pkg = path.Join(modulePath, filepath.ToSlash(rel))
	}

	if strings.HasSuffix(file.Name.Name, "_test") {
		pkg += "_test"
	}

	return pkg
}

type pendingMethod struct {
	receiver m.TypeName
	method   m.Method
}

type sourceIndexBuilder struct {
	loc        m.Location
	candidates map[m.TypeName]*m.ClassCandidate
	order      []m.TypeName
	methods    []pendingMethod
}

func newSourceIndexBuilder(loc m.Location) *sourceIndexBuilder {
	return &sourceIndexBuilder{loc: loc, candidates: make(map[m.TypeName]*m.ClassCandidate)}
}

func (b *sourceIndexBuilder) addFile(pkg string, file *ast.File) {
	r := newNameResolver(pkg, file)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}

			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}

				b.addType(r, ts, doc)
			}

		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}

			receiver := receiverName(d.Recv.List[0].Type)
			if receiver == "" {
				continue
			}

			b.methods = append(b.methods, pendingMethod{
				receiver: m.TypeName(pkg + "." + receiver),
				method:   r.method(d),
			})
		}
	}
}

func (b *sourceIndexBuilder) addType(r *nameResolver, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	c := &m.ClassCandidate{
		Name:     m.TypeName(r.pkg + "." + ts.Name.Name),
		Location: b.loc,
		Kind:     m.KindClass,
	}

	r.applyDirectives(c, doc)

	switch t := ts.Type.(type) {
	case *ast.InterfaceType:
		c.Abstract = true
	case *ast.StructType:
		for _, field := range t.Fields.List {
			if len(field.Names) == 0 {
				if c.Super == nil {
					c.Super = r.typeRef(field.Type)
				}

				continue
			}

			ref := r.typeRef(field.Type)
			if ref == nil {
				continue
			}

			annotations := append(tagAnnotations(field.Tag), r.annotations(field.Doc)...)
			for _, name := range field.Names {
				c.Fields = append(c.Fields, m.Field{Name: name.Name, Type: *ref, Annotations: annotations})
			}
		}
	}

	if _, exists := b.candidates[c.Name]; !exists {
		b.order = append(b.order, c.Name)
	}

	b.candidates[c.Name] = c
}

func (b *sourceIndexBuilder) build() *m.TypeIndex {
	for _, pm := range b.methods {
		if c, ok := b.candidates[pm.receiver]; ok {
			c.Methods = append(c.Methods, pm.method)
		}
	}

	idx := m.NewTypeIndex()
	for _, name := range b.order {
		c := b.candidates[name]
		sort.SliceStable(c.Methods, func(i, j int) bool { return c.Methods[i].Name < c.Methods[j].Name })
		idx.Add(c)
	}

	return idx
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}

	return ""
}

func tagAnnotations(tag *ast.BasicLit) []m.Annotation {
	if tag == nil {
		return nil
	}

	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return nil
	}

	st := reflect.StructTag(raw)

	var out []m.Annotation

	for _, ft := range fieldTags {
		if _, ok := st.Lookup(ft.key); ok {
			out = append(out, m.Annotation{Type: ft.annotation})
		}
	}

	return out
}

// nameResolver turns identifiers found in one file into qualified names.
type nameResolver struct {
	pkg     string
	imports map[string]string
}

func newNameResolver(pkg string, file *ast.File) *nameResolver {
	imports := make(map[string]string, len(file.Imports))

	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := path.Base(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}

		imports[name] = importPath
	}

	return &nameResolver{pkg: pkg, imports: imports}
}

func (r *nameResolver) resolve(ref string) m.TypeName {
	if strings.Contains(ref, "/") {
		return m.TypeName(ref)
	}

	qualifier, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		if ref == "any" {
			return m.RootType
		}

		if m.IsPredeclared(m.TypeName(ref)) {
			return m.TypeName(ref)
		}

		return m.TypeName(r.pkg + "." + ref)
	}

	if importPath, ok := r.imports[qualifier]; ok {
		return m.TypeName(importPath + "." + name)
	}

	if known, ok := wellKnownQualifiers[qualifier]; ok {
		return m.TypeName(known + "." + name)
	}

	return m.TypeName(ref)
}

func (r *nameResolver) typeRef(expr ast.Expr) *m.TypeRef {
	switch t := expr.(type) {
	case *ast.Ident:
		return &m.TypeRef{Name: r.resolve(t.Name)}
	case *ast.SelectorExpr:
		x, ok := t.X.(*ast.Ident)
		if !ok {
			return nil
		}

		return &m.TypeRef{Name: r.resolve(x.Name + "." + t.Sel.Name)}
	case *ast.StarExpr:
		return r.typeRef(t.X)
	case *ast.IndexExpr:
		return r.parameterized(t.X, t.Index)
	case *ast.IndexListExpr:
		return r.parameterized(t.X, t.Indices...)
	}

	return nil
}

func (r *nameResolver) parameterized(raw ast.Expr, args ...ast.Expr) *m.TypeRef {
	ref := r.typeRef(raw)
	if ref == nil {
		return nil
	}

	for _, arg := range args {
		if a := r.typeRef(arg); a != nil {
			ref.Args = append(ref.Args, *a)
		}
	}

	return ref
}

func (r *nameResolver) method(d *ast.FuncDecl) m.Method {
	method := m.Method{Name: d.Name.Name, Annotations: r.annotations(d.Doc)}

	if d.Type.Params != nil {
		for _, param := range d.Type.Params.List {
			ref := r.typeRef(param.Type)
			if ref == nil {
				continue
			}

			count := len(param.Names)
			if count == 0 {
				count = 1
			}

			for i := 0; i < count; i++ {
				method.Params = append(method.Params, *ref)
			}
		}
	}

	if d.Type.Results != nil && len(d.Type.Results.List) > 0 {
		method.Return = r.typeRef(d.Type.Results.List[0].Type)
	}

	return method
}

func (r *nameResolver) applyDirectives(c *m.ClassCandidate, doc *ast.CommentGroup) {
	c.Annotations = append(c.Annotations, r.annotations(doc)...)

	for _, line := range commentLines(doc) {
		directive, ok := strings.CutPrefix(line, directivePrefix)
		if !ok {
			continue
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(directive), " ")

		switch verb {
		case "annotation":
			c.Kind = m.KindAnnotation
		case "abstract":
			c.Abstract = true
		case "no-default-constructor":
			c.NoDefaultConstructor = true
		case "implements":
			for _, name := range strings.Fields(arg) {
				c.Implements = append(c.Implements, r.resolve(name))
			}
		}
	}
}

// annotations parses "//@Type arg ..." lines. Bare arguments are class
// references and quoted arguments are late-bound names.
func (r *nameResolver) annotations(doc *ast.CommentGroup) []m.Annotation {
	var out []m.Annotation

	for _, line := range commentLines(doc) {
		body, ok := strings.CutPrefix(line, "//")
		if !ok {
			continue
		}

		// gofmt may separate the marker from the slashes.
		body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationMarker)
		if !ok {
			continue
		}

		fields := strings.Fields(body)
		if len(fields) == 0 {
			continue
		}

		a := m.Annotation{Type: r.resolve(fields[0])}

		for _, arg := range fields[1:] {
			if name, err := strconv.Unquote(arg); err == nil {
				a.Names = append(a.Names, name)
				continue
			}

			a.Classes = append(a.Classes, r.resolve(arg))
		}

		out = append(out, a)
	}

	return out
}

func commentLines(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}

	lines := make([]string, 0, len(doc.List))
	for _, c := range doc.List {
		lines = append(lines, strings.TrimSpace(c.Text))
	}

	return lines
}
