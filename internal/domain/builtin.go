package domain

import (
	m "testscope.dev/pkg/testscope/internal/model"
)

// Support types shipped with the engine.
const (
	InRequestInterceptorType      m.TypeName = m.InternalNamespace + ".InRequestInterceptor"
	InSessionInterceptorType      m.TypeName = m.InternalNamespace + ".InSessionInterceptor"
	InConversationInterceptorType m.TypeName = m.InternalNamespace + ".InConversationInterceptor"
	InitialListenerProducerType   m.TypeName = m.InternalNamespace + ".InitialListenerProducer"
	MockServletContextType        m.TypeName = m.InternalNamespace + "/servlet.MockServletContext"
	MockHTTPSessionType           m.TypeName = m.InternalNamespace + "/servlet.MockHTTPSession"
	MockHTTPServletRequestType    m.TypeName = m.InternalNamespace + "/servlet.MockHTTPServletRequest"
	MockHTTPServletResponseType   m.TypeName = m.InternalNamespace + "/servlet.MockHTTPServletResponse"
	ServletObjectsProducerType    m.TypeName = m.InternalNamespace + "/servlet.ServletObjectsProducer"
)

// BuiltinIndex returns the engine's own types, located at self.
func BuiltinIndex(self m.Location) *m.TypeIndex {
	annotation := func(name m.TypeName, annotations ...m.Annotation) *m.ClassCandidate {
		return &m.ClassCandidate{Name: name, Location: self, Kind: m.KindAnnotation, Annotations: annotations}
	}

	interceptor := func(name, binding m.TypeName) *m.ClassCandidate {
		return &m.ClassCandidate{
			Name:        name,
			Location:    self,
			Kind:        m.KindClass,
			Annotations: []m.Annotation{{Type: m.Interceptor}, {Type: binding}},
		}
	}

	class := func(name m.TypeName, annotations ...m.Annotation) *m.ClassCandidate {
		return &m.ClassCandidate{Name: name, Location: self, Kind: m.KindClass, Annotations: annotations}
	}

	produces := []m.Annotation{{Type: m.Produces}}

	return m.NewTypeIndex(
		annotation(m.AdditionalClasses),
		annotation(m.AdditionalClasspaths),
		annotation(m.AdditionalPackages),
		annotation(m.ActivatedAlternatives),
		annotation(m.ProducesAlternative, m.Annotation{Type: m.Stereotype}, m.Annotation{Type: m.Alternative}),
		annotation(m.InRequestScope),
		annotation(m.InSessionScope),
		annotation(m.InConversationScope),
		interceptor(InRequestInterceptorType, m.InRequestScope),
		interceptor(InSessionInterceptorType, m.InSessionScope),
		interceptor(InConversationInterceptorType, m.InConversationScope),
		&m.ClassCandidate{
			Name:     InitialListenerProducerType,
			Location: self,
			Kind:     m.KindClass,
			Methods:  []m.Method{{Name: "Listener", Annotations: produces}},
		},
		class(MockServletContextType),
		class(MockHTTPSessionType),
		class(MockHTTPServletRequestType),
		class(MockHTTPServletResponseType),
		&m.ClassCandidate{
			Name:     ServletObjectsProducerType,
			Location: self,
			Kind:     m.KindClass,
			Methods: []m.Method{
				{Name: "Request", Return: &m.TypeRef{Name: MockHTTPServletRequestType}, Annotations: produces},
				{Name: "Session", Return: &m.TypeRef{Name: MockHTTPSessionType}, Annotations: produces},
				{Name: "Context", Return: &m.TypeRef{Name: MockServletContextType}, Annotations: produces},
			},
		},
	)
}

// SupportSeeds returns the support classes that precede caller-supplied
// seeds when the servlet integration is available.
func SupportSeeds(caps m.Capabilities) []m.TypeName {
	if !caps.Enabled(m.CapabilityServlet) {
		return nil
	}

	seeds := []m.TypeName{
		InRequestInterceptorType,
		InSessionInterceptorType,
		InConversationInterceptorType,
		InitialListenerProducerType,
		MockServletContextType,
		MockHTTPSessionType,
		MockHTTPServletRequestType,
		MockHTTPServletResponseType,
	}

	// Runtimes with synthetic beans register the servlet objects themselves.
	if !caps.Enabled(m.CapabilitySyntheticBeans) {
		seeds = append(seeds, ServletObjectsProducerType)
	}

	return seeds
}
