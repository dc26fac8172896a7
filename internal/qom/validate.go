package qom

import (
	"fmt"
	"sort"
)

// ValidationResult reports structural problems in an operand tree.
//
// Trees built through the constructors are always valid. Problems arise
// when operands are declared as zero values (e.g. &Length{}), which the
// unexported fields cannot prevent.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists each defect with its position in the tree.
	Problems []string
}

// Validate walks an operand tree and reports zero-value operands.
//
// Validate is a pure function with no side effects.
func Validate(op DynamicOperand) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateOperand(op, "$")

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(path, format string, args ...any) {
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateOperand(op DynamicOperand, path string) {
	if isNilOperand(op) {
		v.addProblem(path, "nil operand")
		return
	}

	switch o := op.(type) {
	case *PropertyValue:
		if o.property == "" {
			v.addProblem(path, "property name is empty")
		}
	case *Length:
		if o.propertyValue == nil {
			v.addProblem(path, "length has no property value")
			return
		}
		v.validateOperand(o.propertyValue, path+".operand")
	case *LowerCase:
		v.validateOperand(o.operand, path+".operand")
	case *UpperCase:
		v.validateOperand(o.operand, path+".operand")
	case *NodeName, *NodeLocalName, *FullTextSearchScore:
		// Selector-only operands have nothing that can be missing.
	default:
		v.addProblem(path, "unknown operand type %T", op)
	}
}

// SelectorNames returns the distinct selector names an operand tree refers
// to, sorted. The default selector appears as "".
func SelectorNames(op DynamicOperand) []string {
	seen := map[string]bool{}
	walk(op, func(o DynamicOperand) {
		switch n := o.(type) {
		case *PropertyValue:
			seen[n.selector] = true
		case *NodeName:
			seen[n.selector] = true
		case *NodeLocalName:
			seen[n.selector] = true
		case *FullTextSearchScore:
			seen[n.selector] = true
		}
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// walk visits op and its descendants depth first, skipping nil children.
func walk(op DynamicOperand, visit func(DynamicOperand)) {
	if isNilOperand(op) {
		return
	}
	visit(op)
	switch o := op.(type) {
	case *Length:
		if o.propertyValue != nil {
			walk(o.propertyValue, visit)
		}
	case *LowerCase:
		walk(o.operand, visit)
	case *UpperCase:
		walk(o.operand, visit)
	}
}
