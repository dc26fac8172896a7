package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qom/internal/constraint"
	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// Operand variant keys. Each operand struct holds exactly one of them.
const (
	keyProperty  = "property"
	keyLength    = "length"
	keyName      = "name"
	keyLocalName = "local_name"
	keyScore     = "score"
	keyLower     = "lower"
	keyUpper     = "upper"
)

var variantKeys = []string{keyProperty, keyLength, keyName, keyLocalName, keyScore, keyLower, keyUpper}

// Definitions holds the named operands, constraints and orderings declared
// in one CUE value, each sorted by name.
type Definitions struct {
	Operands    []NamedOperand
	Constraints []NamedConstraint
	Orderings   []NamedOrdering
}

// NamedOperand is an operand declared under operand: <name>.
type NamedOperand struct {
	Name        string
	Description string
	Operand     qom.DynamicOperand
}

// NamedConstraint is a comparison declared under constraint: <name>.
type NamedConstraint struct {
	Name       string
	Comparison *constraint.Comparison
}

// NamedOrdering is a sort order declared under order: <name>.
type NamedOrdering struct {
	Name      string
	Orderings []constraint.Ordering
}

// Compile reads every operand, constraint and order declared in v.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	operand: titleLength: length: {selector: "s", property: "title"}
//	constraint: longTitle: {operand: length: {property: "title"}, op: ">", value: 5}
//	order: byTitle: [{operand: property: {property: "title"}, descending: true}]
func Compile(v cue.Value) (*Definitions, error) {
	defs, errs := compile(v, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return defs, nil
}

// CompileAll is Compile that keeps going past bad definitions. It returns
// every definition that compiled and one error per definition that did not.
func CompileAll(v cue.Value) (*Definitions, []error) {
	return compile(v, false)
}

// errStop ends a section walk early in fail-fast mode.
var errStop = fmt.Errorf("stop")

func compile(v cue.Value, failFast bool) (*Definitions, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	defs := &Definitions{}
	var errs []error

	visit := func(section string, fn func(name string, fv cue.Value) error) {
		if failFast && len(errs) > 0 {
			return
		}
		err := eachField(v, section, func(name string, fv cue.Value) error {
			if err := fn(name, fv); err != nil {
				errs = append(errs, err)
				if failFast {
					return errStop
				}
			}
			return nil
		})
		if err != nil && err != errStop {
			errs = append(errs, err)
		}
	}

	visit("operand", func(name string, fv cue.Value) error {
		op, err := CompileOperand(fv)
		if err != nil {
			return err
		}
		desc, err := optionalString(fv, "description")
		if err != nil {
			return err
		}
		defs.Operands = append(defs.Operands, NamedOperand{Name: name, Description: desc, Operand: op})
		return nil
	})

	visit("constraint", func(name string, fv cue.Value) error {
		c, err := CompileConstraint(fv)
		if err != nil {
			return err
		}
		defs.Constraints = append(defs.Constraints, NamedConstraint{Name: name, Comparison: c})
		return nil
	})

	visit("order", func(name string, fv cue.Value) error {
		orderings, err := CompileOrderings(fv)
		if err != nil {
			return err
		}
		defs.Orderings = append(defs.Orderings, NamedOrdering{Name: name, Orderings: orderings})
		return nil
	})

	sort.Slice(defs.Operands, func(i, j int) bool { return defs.Operands[i].Name < defs.Operands[j].Name })
	sort.Slice(defs.Constraints, func(i, j int) bool { return defs.Constraints[i].Name < defs.Constraints[j].Name })
	sort.Slice(defs.Orderings, func(i, j int) bool { return defs.Orderings[i].Name < defs.Orderings[j].Name })
	return defs, errs
}

// Len returns the number of definitions of every kind.
func (d *Definitions) Len() int {
	return len(d.Operands) + len(d.Constraints) + len(d.Orderings)
}

// eachField calls fn for every field of the struct at path, if present.
func eachField(v cue.Value, path string, fn func(name string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// CompileOperand parses one operand struct into an operand tree. The
// struct must hold exactly one variant key:
//
//	property:   {selector?: string, property: string}
//	length:     {selector?: string, property: string}
//	name:       {selector?: string}
//	local_name: {selector?: string}
//	score:      {selector?: string}
//	lower:      <operand>
//	upper:      <operand>
func CompileOperand(v cue.Value) (qom.DynamicOperand, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var found []string
	for _, key := range variantKeys {
		if v.LookupPath(cue.ParsePath(key)).Exists() {
			found = append(found, key)
		}
	}
	switch len(found) {
	case 0:
		return nil, &CompileError{
			Field:   "operand",
			Message: fmt.Sprintf("operand must declare one of %v", variantKeys),
			Pos:     v.Pos(),
		}
	case 1:
	default:
		return nil, &CompileError{
			Field:   "operand",
			Message: fmt.Sprintf("operand declares several variants %v", found),
			Pos:     v.Pos(),
		}
	}

	key := found[0]
	body := v.LookupPath(cue.ParsePath(key))

	switch key {
	case keyProperty:
		selector, property, err := selectorAnd(body, "property")
		if err != nil {
			return nil, err
		}
		pv, err := qom.NewPropertyValue(selector, property)
		return wrap(pv, err, key, body)
	case keyLength:
		selector, property, err := selectorAnd(body, "property")
		if err != nil {
			return nil, err
		}
		pv, err := qom.NewPropertyValue(selector, property)
		if err != nil {
			return nil, constructionError(err, key, body)
		}
		l, err := qom.NewLength(pv)
		return wrap(l, err, key, body)
	case keyName:
		selector, err := optionalString(body, "selector")
		if err != nil {
			return nil, err
		}
		return qom.NewNodeName(selector), nil
	case keyLocalName:
		selector, err := optionalString(body, "selector")
		if err != nil {
			return nil, err
		}
		return qom.NewNodeLocalName(selector), nil
	case keyScore:
		selector, err := optionalString(body, "selector")
		if err != nil {
			return nil, err
		}
		return qom.NewFullTextSearchScore(selector), nil
	case keyLower:
		inner, err := CompileOperand(body)
		if err != nil {
			return nil, err
		}
		lc, err := qom.NewLowerCase(inner)
		return wrap(lc, err, key, body)
	default: // keyUpper
		inner, err := CompileOperand(body)
		if err != nil {
			return nil, err
		}
		uc, err := qom.NewUpperCase(inner)
		return wrap(uc, err, key, body)
	}
}

// CompileConstraint parses {operand: <operand>, op: string, value: _, type?: string}.
// The literal type defaults from the CUE kind: int is Long, float is
// Double, bool is Boolean, string is String.
func CompileConstraint(v cue.Value) (*constraint.Comparison, error) {
	opVal := v.LookupPath(cue.ParsePath("operand"))
	if !opVal.Exists() {
		return nil, &CompileError{Field: "operand", Message: "operand is required", Pos: v.Pos()}
	}
	operand, err := CompileOperand(opVal)
	if err != nil {
		return nil, err
	}

	opText, err := requiredString(v, "op")
	if err != nil {
		return nil, err
	}
	operator, err := constraint.ParseOperator(opText)
	if err != nil {
		return nil, &CompileError{Field: "op", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("op")).Pos()}
	}

	literal, err := compileLiteral(v)
	if err != nil {
		return nil, err
	}

	c, err := constraint.NewComparison(operand, operator, literal)
	if err != nil {
		return nil, constructionError(err, "constraint", v)
	}
	return c, nil
}

// CompileOrderings parses a list of {operand: <operand>, descending?: bool}.
func CompileOrderings(v cue.Value) ([]constraint.Ordering, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var orderings []constraint.Ordering
	for iter.Next() {
		item := iter.Value()
		opVal := item.LookupPath(cue.ParsePath("operand"))
		if !opVal.Exists() {
			return nil, &CompileError{Field: "operand", Message: "operand is required", Pos: item.Pos()}
		}
		operand, err := CompileOperand(opVal)
		if err != nil {
			return nil, err
		}

		o := constraint.Ordering{Operand: operand}
		if dv := item.LookupPath(cue.ParsePath("descending")); dv.Exists() {
			desc, err := dv.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			o.Descending = desc
		}
		orderings = append(orderings, o)
	}

	if len(orderings) == 0 {
		return nil, &CompileError{Field: "order", Message: "at least one ordering is required", Pos: v.Pos()}
	}
	return orderings, nil
}

func compileLiteral(v cue.Value) (ir.Value, error) {
	lv := v.LookupPath(cue.ParsePath("value"))
	if !lv.Exists() {
		return nil, &CompileError{Field: "value", Message: "value is required", Pos: v.Pos()}
	}

	typeName, err := optionalString(v, "type")
	if err != nil {
		return nil, err
	}
	if typeName != "" {
		t, err := ir.ParsePropertyType(typeName)
		if err != nil {
			return nil, &CompileError{Field: "type", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("type")).Pos()}
		}
		text, err := literalText(lv)
		if err != nil {
			return nil, err
		}
		val, err := ir.ParseValue(t, text)
		if err != nil {
			return nil, &CompileError{Field: "value", Message: err.Error(), Pos: lv.Pos()}
		}
		return val, nil
	}

	switch lv.Kind() {
	case cue.IntKind:
		n, err := lv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Long(n), nil
	case cue.FloatKind:
		f, err := lv.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Double(f), nil
	case cue.BoolKind:
		b, err := lv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Boolean(b), nil
	case cue.StringKind:
		s, err := lv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported literal kind: %v", lv.IncompleteKind()),
			Pos:     lv.Pos(),
		}
	}
}

// literalText renders a concrete scalar as text for ir.ParseValue.
func literalText(v cue.Value) (string, error) {
	if s, err := v.String(); err == nil {
		return s, nil
	}
	switch v.Kind() {
	case cue.IntKind, cue.FloatKind, cue.BoolKind:
		b, err := v.MarshalJSON()
		if err != nil {
			return "", formatCUEError(err)
		}
		return string(b), nil
	}
	return "", &CompileError{
		Field:   "value",
		Message: fmt.Sprintf("unsupported literal kind: %v", v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}

// selectorAnd reads an optional selector and a required string field.
func selectorAnd(v cue.Value, field string) (selector, value string, err error) {
	selector, err = optionalString(v, "selector")
	if err != nil {
		return "", "", err
	}
	value, err = requiredString(v, field)
	if err != nil {
		return "", "", err
	}
	return selector, value, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// wrap converts a constructor error into a CompileError at v.
func wrap[T qom.DynamicOperand](op T, err error, field string, v cue.Value) (qom.DynamicOperand, error) {
	if err != nil {
		return nil, constructionError(err, field, v)
	}
	return op, nil
}

func constructionError(err error, field string, v cue.Value) error {
	return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos

	// Err is the underlying construction error, if any.
	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the construction error so qom.IsInvalidArgument sees it.
func (e *CompileError) Unwrap() error { return e.Err }

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
