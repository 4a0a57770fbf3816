package field

import (
	"fmt"
	"reflect"
	"strings"
)

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeUUID
	TypeBytes
	TypeString
	TypeInt32
	TypeInt
	TypeInt64
	TypeFloat64
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeUUID:    "[16]byte",
	TypeBytes:   "[]byte",
	TypeString:  "string",
	TypeInt32:   "int32",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// ConstName returns the constant name of an info type.
// It's used by the code generator to reference the type.
func (t Type) ConstName() string {
	switch {
	case !t.Valid():
		return typeNames[TypeInvalid]
	case t == TypeTime:
		return "TypeTime"
	case t == TypeUUID:
		return "TypeUUID"
	case t == TypeBytes:
		return "TypeBytes"
	default:
		return "Type" + strings.ToUpper(t.String()[:1]) + t.String()[1:]
	}
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt32 && t < endTypes
}

// Integer reports if the given type is an integral type.
func (t Type) Integer() bool {
	return t >= TypeInt32 && t <= TypeInt64
}

// TypeInfo holds the information regarding field type.
// Used by complex types like UUID.
type TypeInfo struct {
	Type     Type
	Ident    string
	PkgPath  string // import path.
	PkgName  string // local package name.
	Nillable bool   // slices or pointers.
}

// String returns the string representation of a type.
func (t TypeInfo) String() string {
	if t.Ident != "" {
		return t.Ident
	}
	return t.Type.String()
}

// Valid reports if the given type if known type.
func (t TypeInfo) Valid() bool {
	return t.Type.Valid()
}

// Numeric reports if the given type is a numeric type.
func (t TypeInfo) Numeric() bool {
	return t.Type.Numeric()
}

// typeInfo returns the TypeInfo of an arbitrary Go value.
func typeInfo(typ Type, v any) (*TypeInfo, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("field: expect a non-nil Go type for %s", typ)
	}
	info := &TypeInfo{
		Type:     typ,
		Ident:    t.String(),
		PkgPath:  t.PkgPath(),
		Nillable: t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice,
	}
	if info.Nillable && info.PkgPath == "" {
		info.PkgPath = t.Elem().PkgPath()
	}
	if parts := strings.Split(info.Ident, "."); len(parts) > 1 {
		info.PkgName = strings.TrimLeft(parts[0], "*[]")
	}
	return info, nil
}
