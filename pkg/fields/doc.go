// Package fields is the field-type dispatch engine. One table keyed by
// types.FieldType holds, for every type, its value shape, its widget
// binding, and the rules that accept, serialize and deserialize its
// values. The object store validates and persists through it; the
// presentation layer renders forms through it.
package fields
