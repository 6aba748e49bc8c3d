package types

import (
	"encoding/json"
	"time"
)

// Value is one dynamic attribute of an Object, tagged with the field type
// it was decoded under. Only the member matching Type.Shape() is
// meaningful.
type Value struct {
	Type    FieldType
	String  string
	Number  json.Number
	Bool    bool
	Time    time.Time
	Strings []string
	Blob    json.RawMessage
}

// Fields maps FieldDef keys to values.
type Fields map[string]Value

// StringValue returns a Value of type ft holding s.
func StringValue(ft FieldType, s string) Value {
	return Value{Type: ft, String: s}
}

// NumberValue returns a number Value.
func NumberValue(n json.Number) Value {
	return Value{Type: FieldNumber, Number: n}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{Type: FieldBoolean, Bool: b}
}

// TimeValue returns a datepicker Value.
func TimeValue(t time.Time) Value {
	return Value{Type: FieldDatepicker, Time: t}
}

// StringsValue returns a Value of type ft holding ss.
func StringsValue(ft FieldType, ss []string) Value {
	return Value{Type: ft, Strings: ss}
}

// BlobValue returns a rich text Value.
func BlobValue(raw json.RawMessage) Value {
	return Value{Type: FieldRichText, Blob: raw}
}

// MarshalJSON encodes the value in its canonical shape. Instants are
// rendered as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type.Shape() {
	case ShapeNumber:
		if v.Number == "" {
			return []byte("null"), nil
		}
		return []byte(v.Number), nil
	case ShapeBool:
		return json.Marshal(v.Bool)
	case ShapeInstant:
		return json.Marshal(v.Time.UTC().Format(time.RFC3339Nano))
	case ShapeStrings:
		if v.Strings == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Strings)
	case ShapeBlob:
		if len(v.Blob) == 0 {
			return []byte("null"), nil
		}
		return v.Blob, nil
	default:
		return json.Marshal(v.String)
	}
}
