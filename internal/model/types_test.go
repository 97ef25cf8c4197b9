package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName_Parts(t *testing.T) {
	tests := []struct {
		name   TypeName
		pkg    string
		simple string
	}{
		{"example.com/app.Service", "example.com/app", "Service"},
		{"di.Inject", "di", "Inject"},
		{"int", "", "int"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.pkg, tt.name.Package())
			assert.Equal(t, tt.simple, tt.name.Simple())
		})
	}
}

func TestClassCandidate_Predicates(t *testing.T) {
	c := &ClassCandidate{
		Name:        "a.A",
		Kind:        KindClass,
		Implements:  []TypeName{ExtensionCapability},
		Annotations: []Annotation{{Type: Interceptor}},
	}

	assert.False(t, c.IsAnnotation())
	assert.False(t, c.IsPrimitive())
	assert.True(t, c.Implementing(ExtensionCapability))
	assert.False(t, c.Implementing("x.Other"))
	assert.True(t, c.HasAnnotation(Interceptor))
	assert.False(t, c.HasAnnotation(Decorator))

	assert.True(t, (&ClassCandidate{Name: "x.P", Kind: KindPrimitive}).IsPrimitive())
	assert.True(t, (&ClassCandidate{Name: "long"}).IsPrimitive())
}

func TestIsPredeclaredAndWrappers(t *testing.T) {
	assert.True(t, IsPredeclared("int64"))
	assert.True(t, IsPredeclared("boolean"))
	assert.False(t, IsPredeclared("a.Int"))

	assert.True(t, IsWrapper(Provider))
	assert.True(t, IsWrapper(Instance))
	assert.False(t, IsWrapper("a.Provider"))

	assert.True(t, IsInternal(InternalNamespace+".TestScopeExtension"))
	assert.True(t, IsInternal(InternalNamespace+"/servlet.MockHTTPSession"))
	assert.False(t, IsInternal(InternalNamespace+"x.Other"))
}

func TestCapabilities(t *testing.T) {
	caps := NewCapabilities("servlet", "unknown", "mockito")

	assert.True(t, caps.Enabled(CapabilityServlet))
	assert.True(t, caps.Enabled(CapabilityMockito))
	assert.False(t, caps.Enabled(CapabilityEasyMock))
	assert.Len(t, caps, 2)

	overridden := caps.With(map[Capability]bool{CapabilityServlet: false, CapabilityEasyMock: true})
	assert.False(t, overridden.Enabled(CapabilityServlet))
	assert.True(t, overridden.Enabled(CapabilityEasyMock))
	assert.True(t, caps.Enabled(CapabilityServlet), "With must not modify the receiver")
}
