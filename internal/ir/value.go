package ir

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical string form of Date values.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Value is a sealed interface representing a typed property value.
// Only the types in this file implement it.
type Value interface {
	irValue() // Sealed - only these types implement it

	// Type reports the repository property type of the value.
	Type() PropertyType

	// String returns the canonical string form of the value.
	String() string
}

// String is a STRING property value.
type String string

func (String) irValue() {}
func (String) Type() PropertyType { return TypeString }
func (s String) String() string { return string(s) }

// Binary is a BINARY property value. Its string form is base64.
type Binary []byte

func (Binary) irValue() {}
func (Binary) Type() PropertyType { return TypeBinary }
func (b Binary) String() string { return base64.StdEncoding.EncodeToString(b) }

// Long is a LONG property value.
type Long int64

func (Long) irValue() {}
func (Long) Type() PropertyType { return TypeLong }
func (l Long) String() string { return strconv.FormatInt(int64(l), 10) }

// Double is a DOUBLE property value.
type Double float64

func (Double) irValue() {}
func (Double) Type() PropertyType { return TypeDouble }
func (d Double) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 64) }

// Boolean is a BOOLEAN property value.
type Boolean bool

func (Boolean) irValue() {}
func (Boolean) Type() PropertyType { return TypeBoolean }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Date is a DATE property value.
type Date time.Time

func (Date) irValue() {}
func (Date) Type() PropertyType { return TypeDate }
func (d Date) String() string { return time.Time(d).Format(DateLayout) }

// Name is a NAME property value, e.g. "jcr:content".
type Name string

func (Name) irValue() {}
func (Name) Type() PropertyType { return TypeName }
func (n Name) String() string { return string(n) }

// Path is a PATH property value, e.g. "/content/news".
type Path string

func (Path) irValue() {}
func (Path) Type() PropertyType { return TypePath }
func (p Path) String() string { return string(p) }

// Reference is a REFERENCE or WEAKREFERENCE property value holding the
// identifier of the referenced node.
type Reference struct {
	Target uuid.UUID
	Weak   bool
}

func (Reference) irValue() {}

// Type returns TypeWeakReference for weak references and TypeReference otherwise.
func (r Reference) Type() PropertyType {
	if r.Weak {
		return TypeWeakReference
	}
	return TypeReference
}

func (r Reference) String() string { return r.Target.String() }

// URI is a URI property value.
type URI string

func (URI) irValue() {}
func (URI) Type() PropertyType { return TypeURI }
func (u URI) String() string { return string(u) }

// ParseValue converts the canonical string form of a value of type t into
// a typed Value. It is the inverse of Value.String.
func ParseValue(t PropertyType, text string) (Value, error) {
	switch t {
	case TypeString:
		return String(text), nil
	case TypeBinary:
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("parse binary: %w", err)
		}
		return Binary(b), nil
	case TypeLong:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse long: %w", err)
		}
		return Long(n), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("parse double: %w", err)
		}
		return Double(f), nil
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parse boolean: %w", err)
		}
		return Boolean(b), nil
	case TypeDate:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		return Date(ts), nil
	case TypeName:
		return Name(text), nil
	case TypePath:
		return Path(text), nil
	case TypeReference, TypeWeakReference:
		id, err := uuid.Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parse reference: %w", err)
		}
		return Reference{Target: id, Weak: t == TypeWeakReference}, nil
	case TypeURI:
		return URI(text), nil
	default:
		return nil, fmt.Errorf("unsupported property type: %s", t)
	}
}

// Equal reports whether two values have the same type and canonical form.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Type() == b.Type() && a.String() == b.String()
}
