package model

// Metadata wraps a deployment value with a label describing where it came
// from. Shape names the runtime API shape that built it.
type Metadata[T any] struct {
	Value    T
	Location string
	Shape    string
}

// Scanning holds include/exclude filters of a descriptor. The engine always
// deploys with empty scanning.
type Scanning struct {
	Include []string
	Exclude []string
}

// DeploymentDescriptor is the in-memory equivalent of a declarative
// deployment descriptor.
type DeploymentDescriptor struct {
	Interceptors           []Metadata[string]
	Decorators             []Metadata[string]
	AlternativeClasses     []Metadata[string]
	AlternativeStereotypes []Metadata[string]
	Scanning               Scanning

	// Fields below exist only on newer runtime shapes.
	URL           string
	DiscoveryMode string
	Version       string
	Trimmed       *bool

	Shape string
}

// Extension is a pluggable hook that influences container bootstrap.
type Extension interface {
	ExtensionName() string
}

// ExtensionEntry is a registered extension plus its origin label.
type ExtensionEntry = Metadata[Extension]

// DeploymentUnit is the final artifact handed to the container bootstrap for
// one test.
type DeploymentUnit struct {
	ID         string
	TestClass  TypeName
	TestMethod string
	Classes    []TypeName
	Descriptor DeploymentDescriptor
	Extensions []ExtensionEntry
	Managed    LocationSet
}

// MetadataValues returns the values of entries in order.
func MetadataValues(entries []Metadata[string]) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value)
	}

	return out
}

// ExtensionOrigins returns the origin labels of entries in order.
func ExtensionOrigins(entries []ExtensionEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Location)
	}

	return out
}
