package convert

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	json "github.com/goccy/go-json"
)

// Error reports a value that could not be converted.
type Error struct {
	// Path locates the failing element, e.g. "order.lines[2].sku".
	Path string

	// Reason describes the mismatch.
	Reason string

	// Err is the underlying decode or marshal error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "convert: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// JSON is a raw JSON document that is decoded when converted.
type JSON []byte

// number matches json.Number from encoding/json and goccy/go-json.
type number interface {
	String() string
	Float64() (float64, error)
	Int64() (int64, error)
}

var errNilRequired = errors.New("nil value for required schema")

// ToAttributeValue converts value according to schema. A nil schema selects
// schemaless conversion.
func ToAttributeValue(schema *Schema, value any) (types.AttributeValue, error) {
	if schema == nil {
		return schemaless("", value)
	}
	return withSchema("", schema, value)
}

func schemaless(path string, value any) (types.AttributeValue, error) {
	if n, ok := value.(number); ok {
		if _, err := n.Float64(); err != nil {
			return nil, &Error{Path: path, Reason: "invalid number " + strconv.Quote(n.String()), Err: err}
		}
		return &types.AttributeValueMemberN{Value: n.String()}, nil
	}

	switch v := value.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case types.AttributeValue:
		return v, nil
	case JSON:
		decoded, err := decodeJSON(v)
		if err != nil {
			return nil, &Error{Path: path, Reason: "malformed JSON", Err: err}
		}
		return schemaless(path, decoded)
	case bool:
		return &types.AttributeValueMemberBOOL{Value: v}, nil
	case string:
		return &types.AttributeValueMemberS{Value: v}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: v}, nil
	case float32:
		return floatValue(path, float64(v), 32)
	case float64:
		return floatValue(path, v, 64)
	case []any:
		list := make([]types.AttributeValue, 0, len(v))
		for i, elem := range v {
			av, err := schemaless(fmt.Sprintf("%s[%d]", path, i), elem)
			if err != nil {
				return nil, err
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(v))
		for k, elem := range v {
			av, err := schemaless(join(path, k), elem)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	}

	if i, ok := integer(value); ok {
		return &types.AttributeValueMemberN{Value: i}, nil
	}

	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unsupported type %T", value), Err: err}
	}
	// Marshal encodes chan and func values as nothing at all.
	if av == nil {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unsupported type %T", value)}
	}
	return av, nil
}

func withSchema(path string, schema *Schema, value any) (types.AttributeValue, error) {
	if value == nil {
		if schema.Optional {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		return nil, &Error{Path: path, Reason: "schema " + schema.String(), Err: errNilRequired}
	}

	mismatch := func() error {
		return &Error{Path: path, Reason: fmt.Sprintf("value of type %T does not match schema %s", value, schema)}
	}

	switch schema.Type {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		if n, ok := value.(number); ok {
			if _, err := n.Int64(); err != nil {
				return nil, mismatch()
			}
			return &types.AttributeValueMemberN{Value: n.String()}, nil
		}
		i, ok := integer(value)
		if !ok {
			return nil, mismatch()
		}
		return &types.AttributeValueMemberN{Value: i}, nil

	case TypeFloat32, TypeFloat64:
		switch v := value.(type) {
		case float32:
			return floatValue(path, float64(v), 32)
		case float64:
			return floatValue(path, v, 64)
		case number:
			if _, err := v.Float64(); err != nil {
				return nil, mismatch()
			}
			return &types.AttributeValueMemberN{Value: v.String()}, nil
		}
		if i, ok := integer(value); ok {
			return &types.AttributeValueMemberN{Value: i}, nil
		}
		return nil, mismatch()

	case TypeBoolean:
		v, ok := value.(bool)
		if !ok {
			return nil, mismatch()
		}
		return &types.AttributeValueMemberBOOL{Value: v}, nil

	case TypeString:
		v, ok := value.(string)
		if !ok {
			return nil, mismatch()
		}
		return &types.AttributeValueMemberS{Value: v}, nil

	case TypeBytes:
		v, ok := value.([]byte)
		if !ok {
			return nil, mismatch()
		}
		return &types.AttributeValueMemberB{Value: v}, nil

	case TypeArray:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, mismatch()
		}
		if schema.ValueSchema == nil {
			return nil, &Error{Path: path, Reason: "array schema has no element schema"}
		}
		list := make([]types.AttributeValue, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			av, err := withSchema(fmt.Sprintf("%s[%d]", path, i), schema.ValueSchema, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil

	case TypeMap:
		if schema.KeySchema == nil || schema.KeySchema.Type != TypeString {
			return nil, &Error{Path: path, Reason: "map keys must have a string schema, got " + schema.KeySchema.String()}
		}
		if schema.ValueSchema == nil {
			return nil, &Error{Path: path, Reason: "map schema has no value schema"}
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, mismatch()
		}
		m := make(map[string]types.AttributeValue, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			av, err := withSchema(join(path, k), schema.ValueSchema, iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil

	case TypeStruct:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, mismatch()
		}
		for k := range fields {
			if _, ok := schema.Field(k); !ok {
				return nil, &Error{Path: join(path, k), Reason: "field not declared in schema " + schema.String()}
			}
		}
		m := make(map[string]types.AttributeValue, len(schema.Fields))
		for _, f := range schema.Fields {
			av, err := withSchema(join(path, f.Name), f.Schema, fields[f.Name])
			if err != nil {
				return nil, err
			}
			m[f.Name] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	}

	return nil, &Error{Path: path, Reason: "unknown schema type " + strconv.Quote(string(schema.Type))}
}

func floatValue(path string, f float64, bitSize int) (types.AttributeValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("%v cannot be stored as a number", f)}
	}
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'g', -1, bitSize)}, nil
}

// integer formats any integer kind in base 10.
func integer(value any) (string, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	}
	return "", false
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
