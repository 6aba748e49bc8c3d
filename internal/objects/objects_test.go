package objects

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/vellum/internal/registry"
	"github.com/mesh-intelligence/vellum/internal/store"
	"github.com/mesh-intelligence/vellum/pkg/types"
)

var tc = types.TenantContext{APIKey: "key-a", AccountID: "acct-a", Tier: types.TierPro}

var blogPost = types.ObjectMeta{CollectionHandle: "blog", SchemaHandle: "post"}

type fixture struct {
	svc        *Service
	reg        *registry.Registry
	backend    *store.Backend
	collection *types.Collection
	schema     *types.Schema
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	b, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	reg := registry.New(b, zap.NewNop())
	c, err := reg.CreateCollection(ctx, tc, types.Collection{Handle: "blog", Name: "Blog"})
	require.NoError(t, err)
	s, err := reg.Create(ctx, tc, types.Schema{
		Handle:       "post",
		Name:         "Post",
		CollectionID: c.CollectionID,
		Def: []types.FieldDef{
			{Key: "title", Type: types.FieldString, Name: "Title"},
			{Key: "views", Type: types.FieldNumber, Name: "Views"},
			{Key: "draft", Type: types.FieldBoolean, Name: "Draft"},
			{Key: "published_at", Type: types.FieldDatepicker, Name: "Published"},
			{Key: "tags", Type: types.FieldStringArray, Name: "Tags"},
			{Key: "body", Type: types.FieldRichText, Name: "Body"},
			{Key: "status", Type: types.FieldSingleSelect, Name: "Status", Options: []string{"open", "closed"}},
		},
	})
	require.NoError(t, err)
	return &fixture{svc: New(b, zap.NewNop()), reg: reg, backend: b, collection: c, schema: s}
}

func input(t *testing.T, body string) types.ObjectInput {
	t.Helper()
	in, err := types.ParseObjectInput([]byte(body))
	require.NoError(t, err)
	return in
}

// flatten renders an envelope the way clients receive it.
func flatten(t *testing.T, v any) map[string]json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

// --- Scenario ---

func TestScenario_BlogFirstPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"first-post","title":"Hello"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ObjectID)
	assert.Equal(t, "post", created.SchemaHandle)

	env, err := f.svc.GetByHandle(ctx, tc, blogPost, "first-post")
	require.NoError(t, err)

	got := flatten(t, env)
	assert.JSONEq(t, `"`+created.ObjectID+`"`, string(got["id"]))
	assert.JSONEq(t, `"first-post"`, string(got["_handle"]))
	assert.JSONEq(t, `"post"`, string(got["_schema_handle"]))
	assert.JSONEq(t, `"Hello"`, string(got["title"]))

	var schema struct {
		Handle     string `json:"handle"`
		Collection struct {
			Handle string `json:"handle"`
		} `json:"collection"`
	}
	require.NoError(t, json.Unmarshal(got["schema"], &schema))
	assert.Equal(t, "post", schema.Handle)
	assert.Equal(t, "blog", schema.Collection.Handle)
}

// --- Create ---

func TestCreate_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"taken","title":"x"}`))
	require.NoError(t, err)

	tests := []struct {
		name string
		meta types.ObjectMeta
		body string
		want error
	}{
		{"missing schema", types.ObjectMeta{CollectionHandle: "blog", SchemaHandle: "page"}, `{"_handle":"a"}`, types.ErrNotFound},
		{"missing collection", types.ObjectMeta{CollectionHandle: "news", SchemaHandle: "post"}, `{"_handle":"a"}`, types.ErrNotFound},
		{"case differs", types.ObjectMeta{CollectionHandle: "Blog", SchemaHandle: "post"}, `{"_handle":"a"}`, types.ErrNotFound},
		{"bad handle", blogPost, `{"_handle":"a b"}`, types.ErrValidation},
		{"unknown key", blogPost, `{"_handle":"a","colour":"red"}`, types.ErrValidation},
		{"wrong type", blogPost, `{"_handle":"a","views":"many"}`, types.ErrValidation},
		{"option not allowed", blogPost, `{"_handle":"a","status":"maybe"}`, types.ErrValidation},
		{"handle taken", blogPost, `{"_handle":"taken"}`, types.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc, tt.meta, input(t, tt.body))
			assert.ErrorIs(t, err, tt.want)

			_, err = f.backend.ObjectByHandle(ctx, tc.Key(), "a")
			assert.ErrorIs(t, err, types.ErrNotFound, "nothing may be persisted")
		})
	}
}

func TestCreate_NullFieldIsAbsent(t *testing.T) {
	f := newFixture(t)
	obj, err := f.svc.Create(context.Background(), tc, blogPost, input(t, `{"_handle":"a","title":null}`))
	require.NoError(t, err)
	_, ok := obj.Fields["title"]
	assert.False(t, ok)
}

func TestCreate_ConcurrentSameHandleOneWins(t *testing.T) {
	f := newFixture(t)
	const n = 8
	in := input(t, `{"_handle":"race","title":"x"}`)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), tc, blogPost, in)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, types.ErrConflict)
	}
	assert.Equal(t, 1, wins)

	page, err := f.svc.GetList(context.Background(), tc, blogPost, types.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

// --- Reads ---

func TestRoundTrip_FieldsMatchInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := `{
		"_handle": "rt",
		"title": "Hello",
		"views": 12.50,
		"draft": false,
		"published_at": "2024-05-01T10:00:00+02:00",
		"tags": ["go", "db"],
		"body": {"ops": [{"insert": "hi"}]},
		"status": "open"
	}`
	created, err := f.svc.Create(ctx, tc, blogPost, input(t, body))
	require.NoError(t, err)

	env, err := f.svc.GetByID(ctx, tc, blogPost, created.ObjectID)
	require.NoError(t, err)
	got := flatten(t, env)

	var want map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &want))
	for key, raw := range want {
		switch key {
		case types.KeyHandle:
			continue
		case "published_at":
			var in, out string
			require.NoError(t, json.Unmarshal(raw, &in))
			require.NoError(t, json.Unmarshal(got[key], &out))
			wantT, err := time.Parse(time.RFC3339, in)
			require.NoError(t, err)
			gotT, err := time.Parse(time.RFC3339, out)
			require.NoError(t, err)
			assert.True(t, wantT.Equal(gotT), "published_at: %s != %s", in, out)
		case "views":
			assert.Equal(t, "12.50", string(got[key]))
		default:
			assert.JSONEq(t, string(raw), string(got[key]), key)
		}
	}
	assert.Equal(t, time.UTC, env.Object.Fields["published_at"].Time.Location())
}

func TestGetByID_ReflectsCollectionRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a"}`))
	require.NoError(t, err)

	_, err = f.reg.UpdateCollection(ctx, tc, f.collection.CollectionID, types.Collection{Handle: "blog", Name: "Journal"})
	require.NoError(t, err)

	env, err := f.svc.GetByID(ctx, tc, blogPost, created.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, "Journal", env.Schema.Collection.Name)
}

func TestGetByID_WrongSchemaHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.reg.Create(ctx, tc, types.Schema{Handle: "page", Name: "Page", CollectionID: f.collection.CollectionID, Def: []types.FieldDef{}})
	require.NoError(t, err)
	created, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a"}`))
	require.NoError(t, err)

	page := types.ObjectMeta{CollectionHandle: "blog", SchemaHandle: s.Handle}
	_, err = f.svc.GetByID(ctx, tc, page, created.ObjectID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.svc.GetByHandle(ctx, tc, page, "a")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.svc.DeleteByID(ctx, tc, page, created.ObjectID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteSchema_OrphansObjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a","title":"kept"}`))
	require.NoError(t, err)

	_, err = f.reg.DeleteByID(ctx, tc, f.schema.SchemaID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, tc, blogPost, created.ObjectID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	rec, err := f.backend.GetObject(ctx, tc.Key(), created.ObjectID)
	require.NoError(t, err, "the document must still exist")
	assert.JSONEq(t, `"kept"`, string(rec.Data["title"]))
}

func TestRead_SkipsValuesThatNoLongerFitTheDef(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a","title":"Hello","views":3}`))
	require.NoError(t, err)

	next := *f.schema
	next.Def = []types.FieldDef{
		{Key: "title", Type: types.FieldString, Name: "Title"},
		{Key: "views", Type: types.FieldBoolean, Name: "Views"},
	}
	_, err = f.reg.UpdateByID(ctx, tc, f.schema.SchemaID, next)
	require.NoError(t, err)

	env, err := f.svc.GetByID(ctx, tc, blogPost, created.ObjectID)
	require.NoError(t, err)
	assert.Contains(t, env.Object.Fields, "title")
	assert.NotContains(t, env.Object.Fields, "views")
}

func TestGetList_Pages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, h := range []string{"a", "b", "c"} {
		_, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"`+h+`","title":"`+h+`"}`))
		require.NoError(t, err)
	}

	first, err := f.svc.GetList(ctx, tc, blogPost, types.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "a", first.Items[0].Handle)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.GetList(ctx, tc, blogPost, types.PageRequest{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "c", second.Items[0].Handle)
	assert.Equal(t, "c", second.Items[0].Fields["title"].String)
}

// --- Update and delete ---

func TestUpdateByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a","title":"one","views":1}`))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"b"}`))
	require.NoError(t, err)

	// Keeping the handle is not a conflict with itself.
	env, err := f.svc.UpdateByID(ctx, tc, blogPost, a.ObjectID, input(t, `{"_handle":"a","title":"two"}`))
	require.NoError(t, err)
	assert.Equal(t, "two", env.Object.Fields["title"].String)
	assert.NotContains(t, env.Object.Fields, "views", "update replaces the full payload")
	assert.Equal(t, "blog", env.Schema.Collection.Handle)

	_, err = f.svc.UpdateByID(ctx, tc, blogPost, a.ObjectID, input(t, `{"_handle":"b"}`))
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = f.svc.UpdateByID(ctx, tc, blogPost, a.ObjectID, input(t, `{"_handle":"a","draft":"yes"}`))
	assert.ErrorIs(t, err, types.ErrValidation)

	env, err = f.svc.UpdateByID(ctx, tc, blogPost, a.ObjectID, input(t, `{"_handle":"a2"}`))
	require.NoError(t, err)
	assert.Equal(t, "a2", env.Object.Handle)

	got, err := f.svc.GetByHandle(ctx, tc, blogPost, "a2")
	require.NoError(t, err)
	assert.Equal(t, a.ObjectID, got.Object.ObjectID)

	_, err = f.svc.UpdateByID(ctx, tc, blogPost, "missing", input(t, `{"_handle":"z"}`))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a","title":"bye"}`))
	require.NoError(t, err)

	env, err := f.svc.DeleteByID(ctx, tc, blogPost, a.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, "bye", env.Object.Fields["title"].String)
	assert.Equal(t, "post", env.Schema.Handle)

	_, err = f.svc.GetByID(ctx, tc, blogPost, a.ObjectID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.svc.DeleteByID(ctx, tc, blogPost, a.ObjectID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// The handle is free again.
	_, err = f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a"}`))
	assert.NoError(t, err)
}

// --- Form ---

func TestForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blank, err := f.svc.Form(ctx, tc, blogPost, "")
	require.NoError(t, err)
	require.Len(t, blank, len(f.schema.Def))
	assert.Equal(t, "title", blank[0].Key)
	assert.Nil(t, blank[0].Value)
	assert.Equal(t, "checkbox", blank[2].Widget.Component)

	a, err := f.svc.Create(ctx, tc, blogPost, input(t, `{"_handle":"a","title":"Hello","published_at":"2024-05-01"}`))
	require.NoError(t, err)
	filled, err := f.svc.Form(ctx, tc, blogPost, a.ObjectID)
	require.NoError(t, err)
	require.NotNil(t, filled[0].Value)
	assert.Equal(t, "Hello", filled[0].Value.String)
	require.NotNil(t, filled[3].Value)
	assert.Equal(t, 2024, filled[3].Value.Time.Year())
	assert.Nil(t, filled[1].Value)

	_, err = f.svc.Form(ctx, tc, types.ObjectMeta{CollectionHandle: "blog", SchemaHandle: "nope"}, "")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
