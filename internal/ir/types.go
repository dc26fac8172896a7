package ir

import (
	"fmt"
	"strings"
)

// PropertyType identifies the repository type of a property value.
type PropertyType int

const (
	TypeUndefined PropertyType = iota
	TypeString
	TypeBinary
	TypeLong
	TypeDouble
	TypeBoolean
	TypeDate
	TypeName
	TypePath
	TypeReference
	TypeWeakReference
	TypeURI
)

var propertyTypeNames = map[PropertyType]string{
	TypeUndefined:     "Undefined",
	TypeString:        "String",
	TypeBinary:        "Binary",
	TypeLong:          "Long",
	TypeDouble:        "Double",
	TypeBoolean:       "Boolean",
	TypeDate:          "Date",
	TypeName:          "Name",
	TypePath:          "Path",
	TypeReference:     "Reference",
	TypeWeakReference: "WeakReference",
	TypeURI:           "URI",
}

// String returns the type name as used in fixtures and operand definitions.
func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// ParsePropertyType resolves a type name case-insensitively.
// "Decimal" is accepted as an alias for Double.
func ParsePropertyType(name string) (PropertyType, error) {
	if strings.EqualFold(name, "decimal") {
		return TypeDouble, nil
	}
	for t, n := range propertyTypeNames {
		if t != TypeUndefined && strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return TypeUndefined, fmt.Errorf("unknown property type %q", name)
}

// Property is a named property of a repository node.
//
// A single-valued property holds exactly one value. A multi-valued property
// holds zero or more values in the order the repository stored them.
type Property struct {
	Name     string
	Type     PropertyType
	Multiple bool
	Values   []Value
}

// Validate checks the property invariants.
func (p Property) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("property name is required")
	}
	if !p.Multiple && len(p.Values) != 1 {
		return fmt.Errorf("property %q: single-valued property must have exactly one value, got %d", p.Name, len(p.Values))
	}
	for i, v := range p.Values {
		if v == nil {
			return fmt.Errorf("property %q: value[%d] is nil", p.Name, i)
		}
		if v.Type() != p.Type {
			return fmt.Errorf("property %q: value[%d] has type %s, want %s", p.Name, i, v.Type(), p.Type)
		}
	}
	return nil
}
