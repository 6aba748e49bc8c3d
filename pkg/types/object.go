package types

import "encoding/json"

// Object is a document shaped by one Schema.
type Object struct {
	ObjectID     string
	Handle       string
	SchemaHandle string
	Fields       Fields
}

// ObjectMeta addresses Objects through their Collection and Schema
// handles.
type ObjectMeta struct {
	CollectionHandle string
	SchemaHandle     string
}

// ObjectInput is an Object create or update payload: the required handle
// plus raw field values keyed by FieldDef key.
type ObjectInput struct {
	Handle string
	Data   map[string]json.RawMessage
}

// ObjectRecord is the persisted form of an Object. Data holds serialized
// field values.
type ObjectRecord struct {
	ObjectID     string
	Handle       string
	SchemaHandle string
	Data         map[string]json.RawMessage
}

// ObjectEnvelope is the composite read of an Object merged with its Schema
// and Collection.
type ObjectEnvelope struct {
	Object *Object
	Schema *SchemaWithCollection
}

// MarshalJSON flattens the object: id, _handle, _schema_handle and every
// field sit at the top level.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.flatten())
}

// MarshalJSON flattens the envelope and adds the inlined schema.
func (e ObjectEnvelope) MarshalJSON() ([]byte, error) {
	m := e.Object.flatten()
	m[KeySchema] = e.Schema
	return json.Marshal(m)
}

func (o *Object) flatten() map[string]any {
	m := make(map[string]any, len(o.Fields)+3)
	for k, v := range o.Fields {
		m[k] = v
	}
	m[KeyID] = o.ObjectID
	m[KeyHandle] = o.Handle
	m[KeySchemaHandle] = o.SchemaHandle
	return m
}

// ParseObjectInput splits a JSON object body into an ObjectInput. It
// checks structure only: the body must be an object with a string
// _handle. Field values are validated later against the Schema.
func ParseObjectInput(body []byte) (ObjectInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return ObjectInput{}, Invalid("", "payload must be a JSON object")
	}
	h, ok := raw[KeyHandle]
	if !ok {
		return ObjectInput{}, Invalid(KeyHandle, "is required")
	}
	var handle string
	if err := json.Unmarshal(h, &handle); err != nil {
		return ObjectInput{}, Invalid(KeyHandle, "must be a string")
	}
	delete(raw, KeyHandle)
	// Envelope keys echoed back from a previous read are not field data.
	delete(raw, KeyID)
	delete(raw, KeySchema)
	delete(raw, KeySchemaHandle)
	return ObjectInput{Handle: handle, Data: raw}, nil
}
