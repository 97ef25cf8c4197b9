package model

// UnitReport is the persisted summary of one resolved deployment unit.
type UnitReport struct {
	ID                     string     `yaml:"id"`
	TestClass              TypeName   `yaml:"test_class"`
	TestMethod             string     `yaml:"test_method,omitempty"`
	Shape                  string     `yaml:"shape"`
	Managed                []Location `yaml:"managed"`
	Classes                []TypeName `yaml:"classes"`
	Interceptors           []string   `yaml:"interceptors,omitempty"`
	Decorators             []string   `yaml:"decorators,omitempty"`
	AlternativeStereotypes []string   `yaml:"alternative_stereotypes"`
	AlternativeClasses     []string   `yaml:"alternative_classes,omitempty"`
	Extensions             []string   `yaml:"extensions"`
}

// NewUnitReport summarizes a deployment unit for display and storage.
func NewUnitReport(unit *DeploymentUnit) UnitReport {
	return UnitReport{
		ID:                     unit.ID,
		TestClass:              unit.TestClass,
		TestMethod:             unit.TestMethod,
		Shape:                  unit.Descriptor.Shape,
		Managed:                unit.Managed.Sorted(),
		Classes:                append([]TypeName(nil), unit.Classes...),
		Interceptors:           MetadataValues(unit.Descriptor.Interceptors),
		Decorators:             MetadataValues(unit.Descriptor.Decorators),
		AlternativeStereotypes: MetadataValues(unit.Descriptor.AlternativeStereotypes),
		AlternativeClasses:     MetadataValues(unit.Descriptor.AlternativeClasses),
		Extensions:             ExtensionOrigins(unit.Extensions),
	}
}
