package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "testscope.dev/pkg/testscope/internal/model"
)

func testShape(t *testing.T) RuntimeShape {
	t.Helper()

	shape, err := SelectShape(m.Runtime{Version: "2.4.8"})
	require.NoError(t, err)

	return shape
}

func TestDescriptorAssembler_DefaultStereotype(t *testing.T) {
	d := NewDescriptorAssembler(testShape(t)).Finalize()

	assert.Equal(t, []string{string(m.ProducesAlternative)}, m.MetadataValues(d.AlternativeStereotypes))
	assert.Empty(t, d.Interceptors)
	assert.Empty(t, d.Decorators)
	assert.Empty(t, d.AlternativeClasses)
	assert.Equal(t, "trimmed", d.Shape)
}

func TestDescriptorAssembler_DeduplicatesInOrder(t *testing.T) {
	a := NewDescriptorAssembler(testShape(t))

	a.AddInterceptor("a.Second")
	a.AddInterceptor("a.First")
	a.AddInterceptor("a.Second")
	a.AddDecorator("a.Deco")
	a.AddDecorator("a.Deco")

	d := a.Finalize()

	assert.Equal(t, []string{"a.Second", "a.First"}, m.MetadataValues(d.Interceptors))
	assert.Equal(t, []string{"a.Deco"}, m.MetadataValues(d.Decorators))
	assert.Equal(t, "a.Second", d.Interceptors[0].Location)
	assert.Equal(t, "relocated", d.Interceptors[0].Shape)
}

func TestDescriptorAssembler_StereotypeSupersedesAlternativeClass(t *testing.T) {
	a := NewDescriptorAssembler(testShape(t))

	a.AddAlternativeClass("a.FakeRepo")
	a.AddAlternativeClass("a.Mocks")
	a.AddAlternativeClass("a.FakeRepo")
	a.AddAlternativeStereotype("a.Mocks")

	d := a.Finalize()

	assert.Equal(t, []string{"a.FakeRepo"}, m.MetadataValues(d.AlternativeClasses))
	assert.Equal(t, []string{"a.Mocks", string(m.ProducesAlternative)}, m.MetadataValues(d.AlternativeStereotypes))
}

func TestDescriptorAssembler_BuiltinStereotypeNotDuplicated(t *testing.T) {
	a := NewDescriptorAssembler(testShape(t))
	a.AddAlternativeStereotype(m.ProducesAlternative)

	d := a.Finalize()

	assert.Equal(t, []string{string(m.ProducesAlternative)}, m.MetadataValues(d.AlternativeStereotypes))
}
