package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/mesh-intelligence/vellum/pkg/types"
)

// Widget binds a field type to a UI component. The component consumes the
// current value through ValueProp and reports changes with a value that
// Accept takes.
type Widget struct {
	Component string `json:"component"`
	ValueProp string `json:"value_prop"`
}

// Handler is the dispatch entry for one field type.
type Handler struct {
	Type   types.FieldType
	Widget Widget

	// Accept validates a raw payload value against def and returns it in
	// canonical form.
	Accept func(def types.FieldDef, raw json.RawMessage) (types.Value, error)

	// Serialize renders a value in its persisted form.
	Serialize func(v types.Value) (json.RawMessage, error)

	// Deserialize decodes a persisted value. It is more lenient than
	// Accept: option lists are not enforced, since they may have changed
	// after the value was stored.
	Deserialize func(def types.FieldDef, raw json.RawMessage) (types.Value, error)
}

// table is the single dispatch table. Every types.FieldTypes entry has a
// handler.
var table = map[types.FieldType]Handler{
	types.FieldString:       textHandler(types.FieldString, "input"),
	types.FieldPassword:     textHandler(types.FieldPassword, "password"),
	types.FieldTextarea:     textHandler(types.FieldTextarea, "textarea"),
	types.FieldImage:        textHandler(types.FieldImage, "image_selector"),
	types.FieldImageArray:   listHandler(types.FieldImageArray, "image_array_selector", false),
	types.FieldStringArray:  listHandler(types.FieldStringArray, "tags", false),
	types.FieldMultiSelect:  listHandler(types.FieldMultiSelect, "multi_select", true),
	types.FieldRichText:     {Type: types.FieldRichText, Widget: Widget{"rich_text_editor", "value"}, Accept: acceptBlob, Serialize: encode, Deserialize: acceptBlob},
	types.FieldNumber:       {Type: types.FieldNumber, Widget: Widget{"input_number", "value"}, Accept: acceptNumber, Serialize: encode, Deserialize: acceptNumber},
	types.FieldBoolean:      {Type: types.FieldBoolean, Widget: Widget{"checkbox", "checked"}, Accept: acceptBool, Serialize: encode, Deserialize: acceptBool},
	types.FieldDatepicker:   {Type: types.FieldDatepicker, Widget: Widget{"datepicker", "value"}, Accept: acceptInstant, Serialize: encode, Deserialize: acceptInstant},
	types.FieldSingleSelect: {Type: types.FieldSingleSelect, Widget: Widget{"select", "value"}, Accept: acceptSelect, Serialize: encode, Deserialize: textHandler(types.FieldSingleSelect, "").Accept},
}

// Lookup returns the handler for ft. Legacy aliases resolve to their
// canonical type; unrecognized types get the string handler.
func Lookup(ft types.FieldType) Handler {
	c, _ := ft.Canonical()
	return table[c]
}

// Accept validates raw against def through def's handler. It is the
// widget change path as well as the payload validation path.
//
// Accepted values equal the input, with two exceptions: datepicker values
// are normalized to UTC instants, and rich text is compacted, so it equals
// the input as JSON but not byte for byte.
func Accept(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	return Lookup(def.Type).Accept(def, raw)
}

// Decode validates a payload against schema. Every key must be defined by
// the schema; a JSON null leaves the field unset.
func Decode(schema *types.Schema, data map[string]json.RawMessage) (types.Fields, error) {
	out := make(types.Fields, len(data))
	for key, raw := range data {
		def, ok := schema.Field(key)
		if !ok {
			return nil, types.Invalid(key, "is not defined by schema %q", schema.Handle)
		}
		if isNull(raw) {
			continue
		}
		v, err := Accept(def, raw)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Encode renders fields in persisted form.
func Encode(fields types.Fields) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for key, v := range fields {
		raw, err := Lookup(v.Type).Serialize(v)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

// Load decodes persisted data under schema. Only keys the schema defines
// are surfaced, and a stored value that no longer fits its field's type is
// left out rather than failing the read.
func Load(schema *types.Schema, data map[string]json.RawMessage) types.Fields {
	out := make(types.Fields, len(schema.Def))
	for _, def := range schema.Def {
		raw, ok := data[def.Key]
		if !ok || isNull(raw) {
			continue
		}
		v, err := Lookup(def.Type).Deserialize(def, raw)
		if err != nil {
			continue
		}
		out[def.Key] = v
	}
	return out
}

func textHandler(ft types.FieldType, component string) Handler {
	accept := func(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return types.Value{}, types.Invalid(def.Key, "must be a string")
		}
		return types.StringValue(ft, s), nil
	}
	return Handler{Type: ft, Widget: Widget{component, "value"}, Accept: accept, Serialize: encode, Deserialize: accept}
}

func listHandler(ft types.FieldType, component string, enforceOptions bool) Handler {
	decode := func(def types.FieldDef, raw json.RawMessage, enforce bool) (types.Value, error) {
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil || ss == nil {
			return types.Value{}, types.Invalid(def.Key, "must be an array of strings")
		}
		if enforce && len(def.Options) > 0 {
			for _, s := range ss {
				if !slices.Contains(def.Options, s) {
					return types.Value{}, types.Invalid(def.Key, "%q is not one of the options", s)
				}
			}
		}
		return types.StringsValue(ft, ss), nil
	}
	return Handler{
		Type:   ft,
		Widget: Widget{component, "value"},
		Accept: func(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
			return decode(def, raw, enforceOptions)
		},
		Serialize: encode,
		Deserialize: func(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
			return decode(def, raw, false)
		},
	}
}

func acceptSelect(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Value{}, types.Invalid(def.Key, "must be a string")
	}
	if len(def.Options) > 0 && !slices.Contains(def.Options, s) {
		return types.Value{}, types.Invalid(def.Key, "%q is not one of the options", s)
	}
	return types.StringValue(types.FieldSingleSelect, s), nil
}

func acceptNumber(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return types.Value{}, types.Invalid(def.Key, "must be a number")
	}
	n, ok := v.(json.Number)
	if !ok {
		return types.Value{}, types.Invalid(def.Key, "must be a number")
	}
	return types.NumberValue(n), nil
}

func acceptBool(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return types.Value{}, types.Invalid(def.Key, "must be a boolean")
	}
	return types.BoolValue(b), nil
}

// instantLayouts are tried in order when parsing a datepicker value.
// Layouts without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func acceptInstant(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Value{}, types.Invalid(def.Key, "must be an ISO-8601 date string")
	}
	t, err := ParseInstant(s)
	if err != nil {
		return types.Value{}, types.Invalid(def.Key, "must be an ISO-8601 date string")
	}
	return types.TimeValue(t), nil
}

// ParseInstant parses an ISO-8601 instant or calendar date.
func ParseInstant(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// acceptBlob compacts the document. encoding/json compacts Marshaler
// output on every encode, so whitespace could not survive a read anyway.
func acceptBlob(def types.FieldDef, raw json.RawMessage) (types.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return types.Value{}, types.Invalid(def.Key, "must be valid JSON")
	}
	switch trimmed[0] {
	case '"', '{', '[':
	default:
		return types.Value{}, types.Invalid(def.Key, "must be a string, object or array")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return types.Value{}, types.Invalid(def.Key, "must be valid JSON")
	}
	return types.BlobValue(buf.Bytes()), nil
}

// encode serializes through Value's canonical JSON form. Datepicker
// values thereby become plain UTC RFC 3339 instants.
func encode(v types.Value) (json.RawMessage, error) {
	return json.Marshal(v)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
