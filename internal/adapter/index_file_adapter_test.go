package adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "testscope.dev/pkg/testscope/internal/model"
)

const sampleIndex = `runtime:
  version: 2.4.8
  arity: 9
  markers: [servlet]
types:
  - name: example.com/app.ServiceTest
    location: build/test-classes
    annotations:
      - type: testscope.dev/scope.AdditionalClasses
        classes: [example.com/app.Extra]
        names: [example.com/app.LateBound]
    fields:
      - name: service
        type: example.com/app.Service
        annotations: [di.Inject]
      - name: repo
        type: di.Provider[example.com/app.Repo]
  - name: example.com/app.Service
    location: /abs/classes
    kind: class
    methods:
      - name: Create
        params: [example.com/app.Repo]
        return: example.com/app.Widget
        annotations: [di.Produces]
  - name: example.com/app.Marker
    location: build/classes
    kind: annotation
`

func TestLocalIndexFileAdapter_LoadIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/index.yaml", []byte(sampleIndex), 0o644))

	idx, err := NewLocalIndexFileAdapter(NewLocationFSAdapter(fs)).LoadIndex(context.Background(), "/project/index.yaml")
	require.NoError(t, err)

	assert.Equal(t, m.Runtime{Version: "2.4.8", Arity: 9, Markers: []string{"servlet"}}, idx.Runtime)
	assert.Equal(t, []m.TypeName{"example.com/app.ServiceTest", "example.com/app.Service", "example.com/app.Marker"}, idx.Names())

	test, ok := idx.Lookup("example.com/app.ServiceTest")
	require.True(t, ok)
	assert.Equal(t, m.Location(filepath.Join("/project", "build/test-classes")), test.Location)
	assert.Equal(t, m.KindClass, test.Kind)

	directive, ok := test.Annotation(m.AdditionalClasses)
	require.True(t, ok)
	assert.Equal(t, []m.TypeName{"example.com/app.Extra"}, directive.Classes)
	assert.Equal(t, []string{"example.com/app.LateBound"}, directive.Names)

	require.Len(t, test.Fields, 2)
	assert.True(t, test.Fields[0].HasAnnotation(m.Inject))
	assert.Equal(t, m.TypeRef{Name: m.Provider, Args: []m.TypeRef{{Name: "example.com/app.Repo"}}}, test.Fields[1].Type)

	service, ok := idx.Lookup("example.com/app.Service")
	require.True(t, ok)
	assert.Equal(t, m.Location("/abs/classes"), service.Location)
	require.Len(t, service.Methods, 1)
	assert.Equal(t, m.TypeName("example.com/app.Widget"), service.Methods[0].Return.Name)
	assert.True(t, service.Methods[0].HasAnnotation(m.Produces))

	marker, ok := idx.Lookup("example.com/app.Marker")
	require.True(t, ok)
	assert.True(t, marker.IsAnnotation())
}

func TestLocalIndexFileAdapter_LoadIndex_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	adapter := NewLocalIndexFileAdapter(NewLocationFSAdapter(fs))
	ctx := context.Background()

	_, err := adapter.LoadIndex(ctx, "/missing.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("types: [[["), 0o644))
	_, err = adapter.LoadIndex(ctx, "/bad.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/noname.yaml", []byte("types:\n  - location: x\n"), 0o644))
	_, err = adapter.LoadIndex(ctx, "/noname.yaml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/badref.yaml", []byte("types:\n  - name: a.A\n    super: \"a.B[\"\n"), 0o644))
	_, err = adapter.LoadIndex(ctx, "/badref.yaml")
	require.Error(t, err)
}
