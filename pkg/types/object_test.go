package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectInput(t *testing.T) {
	in, err := ParseObjectInput([]byte(`{"_handle":"first-post","title":"Hello","id":"x","_schema_handle":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, "first-post", in.Handle)
	assert.Equal(t, map[string]json.RawMessage{"title": json.RawMessage(`"Hello"`)}, in.Data)

	_, err = ParseObjectInput([]byte(`{"title":"Hello"}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseObjectInput([]byte(`{"_handle":3}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseObjectInput([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseObjectInput([]byte(`null`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestObjectEnvelopeMarshal(t *testing.T) {
	env := ObjectEnvelope{
		Object: &Object{
			ObjectID:     "o1",
			Handle:       "first-post",
			SchemaHandle: "post",
			Fields: Fields{
				"title":     StringValue(FieldString, "Hello"),
				"views":     NumberValue("12.50"),
				"draft":     BoolValue(false),
				"published": TimeValue(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)),
				"tags":      StringsValue(FieldStringArray, nil),
				"body":      BlobValue(json.RawMessage(`{"ops":[]}`)),
			},
		},
		Schema: &SchemaWithCollection{
			Schema:     Schema{SchemaID: "s1", Handle: "post", Def: []FieldDef{}},
			Collection: &Collection{CollectionID: "c1", Handle: "blog"},
		},
	}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "o1", got["id"])
	assert.Equal(t, "first-post", got["_handle"])
	assert.Equal(t, "post", got["_schema_handle"])
	assert.Equal(t, "Hello", got["title"])
	assert.Equal(t, 12.5, got["views"])
	assert.Equal(t, false, got["draft"])
	assert.Equal(t, "2024-05-01T08:00:00Z", got["published"])
	assert.Equal(t, []any{}, got["tags"])
	assert.Equal(t, map[string]any{"ops": []any{}}, got["body"])

	schema := got["schema"].(map[string]any)
	assert.Equal(t, "post", schema["handle"])
	assert.Equal(t, "blog", schema["collection"].(map[string]any)["handle"])
}

func TestCursorRoundTrip(t *testing.T) {
	c := EncodeCursor("0190-abc")
	id, err := DecodeCursor(c)
	require.NoError(t, err)
	assert.Equal(t, "0190-abc", id)

	id, err = DecodeCursor("")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = DecodeCursor("***")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKind(t *testing.T) {
	assert.Nil(t, Kind(nil))
	assert.Equal(t, ErrNotFound, Kind(NotFound("schema", "post")))
	assert.Equal(t, ErrConflict, Kind(Conflict("object", "a")))
	assert.Equal(t, ErrValidation, Kind(Invalid("name", "is required")))
	assert.Equal(t, ErrStoreFault, Kind(assert.AnError))
}
