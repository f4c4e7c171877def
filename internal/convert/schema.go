// Package convert turns record keys and values into DynamoDB attribute values.
package convert

import (
	"fmt"
	"strings"
)

// Type is the logical type of a Schema.
type Type string

const (
	TypeInt8    Type = "int8"
	TypeInt16   Type = "int16"
	TypeInt32   Type = "int32"
	TypeInt64   Type = "int64"
	TypeFloat32 Type = "float32"
	TypeFloat64 Type = "float64"
	TypeBoolean Type = "boolean"
	TypeString  Type = "string"
	TypeBytes   Type = "bytes"
	TypeArray   Type = "array"
	TypeMap     Type = "map"
	TypeStruct  Type = "struct"
)

// Schema describes the shape of a record key or value.
type Schema struct {
	// Type is the logical type.
	Type Type

	// Optional allows a nil value, which converts to NULL.
	Optional bool

	// Name is an optional logical name, used only in error messages.
	Name string

	// KeySchema is the schema of map keys. Only STRING keys are supported.
	KeySchema *Schema

	// ValueSchema is the schema of array elements or map values.
	ValueSchema *Schema

	// Fields lists the fields of a STRUCT in declaration order.
	Fields []Field
}

// Field is a named member of a STRUCT schema.
type Field struct {
	Name   string
	Schema *Schema
}

func (s *Schema) String() string {
	if s == nil {
		return "<schemaless>"
	}
	var b strings.Builder
	b.WriteString(string(s.Type))
	if s.Name != "" {
		fmt.Fprintf(&b, "(%s)", s.Name)
	}
	if s.Optional {
		b.WriteString("?")
	}
	return b.String()
}

// Field returns the named field of a STRUCT schema.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
