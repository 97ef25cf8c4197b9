package model

import "strings"

// Well-known marker and capability types understood by the engine.
const (
	Inject      TypeName = "di.Inject"
	Produces    TypeName = "di.Produces"
	Interceptor TypeName = "di.Interceptor"
	Decorator   TypeName = "di.Decorator"
	Stereotype  TypeName = "di.Stereotype"
	Alternative TypeName = "di.Alternative"

	// Provider and Instance are deferred-resolution wrappers.
	Provider TypeName = "di.Provider"
	Instance TypeName = "di.Instance"

	// ExtensionCapability is implemented by pluggable bootstrap hooks.
	ExtensionCapability TypeName = "di.Extension"

	MockitoMock  TypeName = "mockito.Mock"
	EasyMockMock TypeName = "easymock.Mock"

	// RootType is the universal root of every type hierarchy.
	RootType TypeName = "any"
)

// DirectiveNamespace is the package holding the engine's declarative
// directives. Its annotations never drive annotation expansion.
const DirectiveNamespace = "testscope.dev/scope"

// InternalNamespace prefixes every support type shipped with the engine.
const InternalNamespace = "testscope.dev/internal"

// Directive annotations.
const (
	AdditionalClasses     TypeName = DirectiveNamespace + ".AdditionalClasses"
	AdditionalClasspaths  TypeName = DirectiveNamespace + ".AdditionalClasspaths"
	AdditionalPackages    TypeName = DirectiveNamespace + ".AdditionalPackages"
	ActivatedAlternatives TypeName = DirectiveNamespace + ".ActivatedAlternatives"
	ProducesAlternative   TypeName = DirectiveNamespace + ".ProducesAlternative"
	InRequestScope        TypeName = DirectiveNamespace + ".InRequestScope"
	InSessionScope        TypeName = DirectiveNamespace + ".InSessionScope"
	InConversationScope   TypeName = DirectiveNamespace + ".InConversationScope"
)

// IsWrapper reports whether name is a deferred-resolution wrapper type.
func IsWrapper(name TypeName) bool {
	return name == Provider || name == Instance
}

// IsInternal reports whether name belongs to the engine's own namespace.
func IsInternal(name TypeName) bool {
	return strings.HasPrefix(string(name), InternalNamespace+"/") || strings.HasPrefix(string(name), InternalNamespace+".")
}

// Capability names an optional integration that may be present at runtime.
type Capability string

const (
	CapabilityServlet        Capability = "servlet"
	CapabilityViewScope      Capability = "view-scope"
	CapabilityMockito        Capability = "mockito"
	CapabilityEasyMock       Capability = "easymock"
	CapabilitySyntheticBeans Capability = "synthetic-beans"
)

// Capabilities is the resolved set of optional integrations for one run.
type Capabilities map[Capability]bool

// NewCapabilities enables every named capability and ignores unknown names.
func NewCapabilities(markers ...string) Capabilities {
	caps := Capabilities{}
	for _, marker := range markers {
		switch c := Capability(marker); c {
		case CapabilityServlet, CapabilityViewScope, CapabilityMockito, CapabilityEasyMock, CapabilitySyntheticBeans:
			caps[c] = true
		}
	}

	return caps
}

// Enabled reports whether capability c is on.
func (c Capabilities) Enabled(capability Capability) bool {
	return c[capability]
}

// With returns a copy with overrides applied.
func (c Capabilities) With(overrides map[Capability]bool) Capabilities {
	out := make(Capabilities, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}

	for k, v := range overrides {
		out[k] = v
	}

	return out
}
