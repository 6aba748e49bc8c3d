package types

// FieldType names the type of a FieldDef. The set is closed; anything
// outside it is treated as FieldString.
type FieldType string

// Field types.
const (
	FieldString       FieldType = "string"
	FieldPassword     FieldType = "password"
	FieldNumber       FieldType = "number"
	FieldBoolean      FieldType = "boolean"
	FieldTextarea     FieldType = "textarea"
	FieldDatepicker   FieldType = "datepicker"
	FieldImage        FieldType = "image"
	FieldImageArray   FieldType = "image_array"
	FieldStringArray  FieldType = "string_array"
	FieldRichText     FieldType = "rich_text"
	FieldSingleSelect FieldType = "single_select"
	FieldMultiSelect  FieldType = "multi_select"
)

// Legacy wire names still accepted for the select types.
const (
	legacySingleSelect FieldType = "string_single_select"
	legacyMultiSelect  FieldType = "string_multi_select"
)

// FieldTypes lists every field type in declaration order.
var FieldTypes = []FieldType{
	FieldString,
	FieldPassword,
	FieldNumber,
	FieldBoolean,
	FieldTextarea,
	FieldDatepicker,
	FieldImage,
	FieldImageArray,
	FieldStringArray,
	FieldRichText,
	FieldSingleSelect,
	FieldMultiSelect,
}

// Shape is the canonical in-memory form of a field value.
type Shape int

// Value shapes.
const (
	ShapeString  Shape = iota // Plain string.
	ShapeNumber               // Decimal number kept as its exact text.
	ShapeBool                 // Boolean.
	ShapeInstant              // Point in time.
	ShapeStrings              // Ordered sequence of strings.
	ShapeBlob                 // Opaque JSON (rich text).
)

// Canonical returns the enumerated type ft denotes, resolving legacy
// aliases. Unrecognized types resolve to FieldString with ok false.
func (ft FieldType) Canonical() (canonical FieldType, ok bool) {
	switch ft {
	case FieldString, FieldPassword, FieldNumber, FieldBoolean, FieldTextarea,
		FieldDatepicker, FieldImage, FieldImageArray, FieldStringArray,
		FieldRichText, FieldSingleSelect, FieldMultiSelect:
		return ft, true
	case legacySingleSelect:
		return FieldSingleSelect, true
	case legacyMultiSelect:
		return FieldMultiSelect, true
	default:
		return FieldString, false
	}
}

// Known reports whether ft is one of the enumerated types or an alias.
func (ft FieldType) Known() bool {
	_, ok := ft.Canonical()
	return ok
}

// Shape returns the canonical value shape for ft.
func (ft FieldType) Shape() Shape {
	c, _ := ft.Canonical()
	switch c {
	case FieldNumber:
		return ShapeNumber
	case FieldBoolean:
		return ShapeBool
	case FieldDatepicker:
		return ShapeInstant
	case FieldImageArray, FieldStringArray, FieldMultiSelect:
		return ShapeStrings
	case FieldRichText:
		return ShapeBlob
	default:
		return ShapeString
	}
}
