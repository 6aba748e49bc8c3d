package fields

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mesh-intelligence/vellum/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryFieldTypeHasHandler(t *testing.T) {
	for _, ft := range types.FieldTypes {
		h, ok := table[ft]
		require.True(t, ok, "missing handler for %s", ft)
		assert.Equal(t, ft, h.Type)
		assert.NotEmpty(t, h.Widget.Component)
		assert.NotNil(t, h.Accept)
		assert.NotNil(t, h.Serialize)
		assert.NotNil(t, h.Deserialize)
	}
	assert.Len(t, table, len(types.FieldTypes))
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name    string
		def     types.FieldDef
		raw     string
		want    string // canonical JSON of the accepted value
		wantErr bool
	}{
		{name: "string", def: types.FieldDef{Key: "k", Type: types.FieldString}, raw: `"Hello"`, want: `"Hello"`},
		{name: "string rejects number", def: types.FieldDef{Key: "k", Type: types.FieldString}, raw: `3`, wantErr: true},
		{name: "password", def: types.FieldDef{Key: "k", Type: types.FieldPassword}, raw: `"s3cret"`, want: `"s3cret"`},
		{name: "textarea", def: types.FieldDef{Key: "k", Type: types.FieldTextarea}, raw: `"a\nb"`, want: `"a\nb"`},
		{name: "number keeps exact text", def: types.FieldDef{Key: "k", Type: types.FieldNumber}, raw: `12.50`, want: `12.50`},
		{name: "number rejects string", def: types.FieldDef{Key: "k", Type: types.FieldNumber}, raw: `"12"`, wantErr: true},
		{name: "number rejects trailing data", def: types.FieldDef{Key: "k", Type: types.FieldNumber}, raw: `1 2`, wantErr: true},
		{name: "boolean", def: types.FieldDef{Key: "k", Type: types.FieldBoolean}, raw: `true`, want: `true`},
		{name: "boolean rejects string", def: types.FieldDef{Key: "k", Type: types.FieldBoolean}, raw: `"true"`, wantErr: true},
		{name: "datepicker normalizes to UTC", def: types.FieldDef{Key: "k", Type: types.FieldDatepicker}, raw: `"2024-05-01T10:00:00+02:00"`, want: `"2024-05-01T08:00:00Z"`},
		{name: "datepicker accepts date", def: types.FieldDef{Key: "k", Type: types.FieldDatepicker}, raw: `"2024-05-01"`, want: `"2024-05-01T00:00:00Z"`},
		{name: "datepicker rejects garbage", def: types.FieldDef{Key: "k", Type: types.FieldDatepicker}, raw: `"yesterday"`, wantErr: true},
		{name: "image", def: types.FieldDef{Key: "k", Type: types.FieldImage}, raw: `"https://cdn.example/a.png"`, want: `"https://cdn.example/a.png"`},
		{name: "image array", def: types.FieldDef{Key: "k", Type: types.FieldImageArray}, raw: `["a.png","b.png"]`, want: `["a.png","b.png"]`},
		{name: "string array rejects mixed", def: types.FieldDef{Key: "k", Type: types.FieldStringArray}, raw: `["a",1]`, wantErr: true},
		{name: "string array rejects null element list", def: types.FieldDef{Key: "k", Type: types.FieldStringArray}, raw: `{}`, wantErr: true},
		{name: "rich text object", def: types.FieldDef{Key: "k", Type: types.FieldRichText}, raw: `{ "ops": [ {"insert": "hi"} ] }`, want: `{"ops":[{"insert":"hi"}]}`},
		{name: "rich text string", def: types.FieldDef{Key: "k", Type: types.FieldRichText}, raw: `"<p>hi</p>"`, want: `"<p>hi</p>"`},
		{name: "rich text rejects number", def: types.FieldDef{Key: "k", Type: types.FieldRichText}, raw: `4`, wantErr: true},
		{name: "single select in options", def: types.FieldDef{Key: "k", Type: types.FieldSingleSelect, Options: []string{"a", "b"}}, raw: `"b"`, want: `"b"`},
		{name: "single select outside options", def: types.FieldDef{Key: "k", Type: types.FieldSingleSelect, Options: []string{"a", "b"}}, raw: `"c"`, wantErr: true},
		{name: "single select without options", def: types.FieldDef{Key: "k", Type: types.FieldSingleSelect}, raw: `"c"`, want: `"c"`},
		{name: "legacy single select alias", def: types.FieldDef{Key: "k", Type: "string_single_select", Options: []string{"a"}}, raw: `"a"`, want: `"a"`},
		{name: "multi select", def: types.FieldDef{Key: "k", Type: types.FieldMultiSelect, Options: []string{"a", "b"}}, raw: `["b","a"]`, want: `["b","a"]`},
		{name: "multi select outside options", def: types.FieldDef{Key: "k", Type: types.FieldMultiSelect, Options: []string{"a"}}, raw: `["a","z"]`, wantErr: true},
		{name: "unknown type degrades to string", def: types.FieldDef{Key: "k", Type: "color"}, raw: `"#fff"`, want: `"#fff"`},
		{name: "unknown type keeps string contract", def: types.FieldDef{Key: "k", Type: "color"}, raw: `255`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Accept(tt.def, json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrValidation)
				return
			}
			require.NoError(t, err)
			got, err := Lookup(v.Type).Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRichTextRoundTrip(t *testing.T) {
	schema := &types.Schema{Handle: "page", Def: []types.FieldDef{{Key: "body", Type: types.FieldRichText}}}
	in := `{ "ops": [ {"insert": "hi\n", "attributes": {"bold": true}} ] }`

	fields, err := Decode(schema, map[string]json.RawMessage{"body": json.RawMessage(in)})
	require.NoError(t, err)
	stored, err := Encode(fields)
	require.NoError(t, err)
	loaded := Load(schema, stored)

	out, err := json.Marshal(loaded["body"])
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
	assert.Equal(t, `{"ops":[{"insert":"hi\n","attributes":{"bold":true}}]}`, string(out))

	// Compact input is kept byte for byte.
	again, err := Accept(schema.Def[0], out)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again.Blob))
}

func TestDatepickerCoercion(t *testing.T) {
	def := types.FieldDef{Key: "at", Type: types.FieldDatepicker}
	v, err := Accept(def, json.RawMessage(`"2024-05-01T10:00:00.5+02:00"`))
	require.NoError(t, err)

	persisted, err := Encode(types.Fields{"at": v})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01T08:00:00.5Z"`, string(persisted["at"]))

	schema := &types.Schema{Handle: "s", Def: []types.FieldDef{def}}
	loaded := Load(schema, persisted)
	require.Contains(t, loaded, "at")
	assert.Equal(t, types.FieldDatepicker, loaded["at"].Type)
	want := time.Date(2024, 5, 1, 8, 0, 0, 500_000_000, time.UTC)
	assert.True(t, want.Equal(loaded["at"].Time))
}

func TestDecode(t *testing.T) {
	schema := &types.Schema{
		Handle: "post",
		Def: []types.FieldDef{
			{Key: "title", Type: types.FieldString, Name: "Title"},
			{Key: "views", Type: types.FieldNumber, Name: "Views"},
		},
	}

	got, err := Decode(schema, map[string]json.RawMessage{
		"title": json.RawMessage(`"Hello"`),
		"views": json.RawMessage(`null`),
	})
	require.NoError(t, err)
	assert.Equal(t, types.Fields{"title": types.StringValue(types.FieldString, "Hello")}, got)

	_, err = Decode(schema, map[string]json.RawMessage{"body": json.RawMessage(`"x"`)})
	require.Error(t, err)
	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "body", ve.Field)
}

func TestLoadSkipsMismatchedAndUnknownKeys(t *testing.T) {
	schema := &types.Schema{
		Handle: "post",
		Def: []types.FieldDef{
			{Key: "title", Type: types.FieldString},
			{Key: "views", Type: types.FieldNumber},
			{Key: "state", Type: types.FieldSingleSelect, Options: []string{"live"}},
		},
	}
	got := Load(schema, map[string]json.RawMessage{
		"title":   json.RawMessage(`"Hello"`),
		"views":   json.RawMessage(`"not a number"`),
		"state":   json.RawMessage(`"archived"`),
		"removed": json.RawMessage(`true`),
	})
	assert.Equal(t, types.Fields{
		"title": types.StringValue(types.FieldString, "Hello"),
		"state": types.StringValue(types.FieldSingleSelect, "archived"),
	}, got)
}

func TestForm(t *testing.T) {
	schema := &types.Schema{
		Handle: "post",
		Def: []types.FieldDef{
			{Key: "title", Type: types.FieldString, Name: "Title", Helper: "Shown in lists"},
			{Key: "live", Type: types.FieldBoolean, Name: "Live", Grid: 6},
			{Key: "tone", Type: "color", Name: "Tone"},
		},
	}
	current := types.Fields{"live": types.BoolValue(true)}

	form := Form(schema, current)
	require.Len(t, form, 3)

	assert.Equal(t, "title", form[0].Key)
	assert.Equal(t, Widget{Component: "input", ValueProp: "value"}, form[0].Widget)
	assert.Nil(t, form[0].Value)
	assert.Equal(t, DefaultGrid, form[0].Grid)
	assert.Equal(t, []string{}, form[0].Options)

	assert.Equal(t, Widget{Component: "checkbox", ValueProp: "checked"}, form[1].Widget)
	require.NotNil(t, form[1].Value)
	assert.True(t, form[1].Value.Bool)
	assert.Equal(t, 6, form[1].Grid)

	assert.Equal(t, types.FieldString, form[2].Type)
	assert.Equal(t, "input", form[2].Widget.Component)
}
