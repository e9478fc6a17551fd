package threads

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func author(name string) []RawAuthor { return []RawAuthor{{Username: name}} }

func TestReconcileOrdersSiblingsAtEveryLevel(t *testing.T) {
	in := []RawComment{
		{UUID: "b", Timestamp: "2021-01-02T00:00:00Z", Wrote: author("bob")},
		{
			UUID: "a", Timestamp: "2021-01-01T00:00:00Z", Wrote: author("alice"),
			AsReplyTo: []RawComment{
				{UUID: "a2", Timestamp: "2021-01-05T00:00:00Z", Wrote: author("carol")},
				{UUID: "a1", Timestamp: "2021-01-03T00:00:00Z", Wrote: author("dave")},
			},
		},
	}

	got, err := Reconcile(in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].UUID)
	assert.Equal(t, "alice", got[0].Author)
	assert.Equal(t, "b", got[1].UUID)
	require.Len(t, got[0].Children, 2)
	assert.Equal(t, "a1", got[0].Children[0].UUID)
	assert.Equal(t, "dave", got[0].Children[0].Author)
	assert.Equal(t, "a2", got[0].Children[1].UUID)
	assert.Equal(t, 4, Count(got))
}

func TestReconcileComparesInstantsNotStrings(t *testing.T) {
	in := []RawComment{
		{UUID: "later", Timestamp: "2021-01-01T10:00:00+00:00", Wrote: author("x")},
		{UUID: "earlier", Timestamp: "2021-01-01T11:00:00+02:00", Wrote: author("y")},
	}
	got, err := Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, "earlier", got[0].UUID)
	assert.Equal(t, "later", got[1].UUID)
}

func TestReconcileTiesKeepInputOrder(t *testing.T) {
	ts := "2021-01-01T00:00:00Z"
	in := []RawComment{
		{UUID: "first", Timestamp: ts, Wrote: author("x")},
		{UUID: "second", Timestamp: ts, Wrote: author("y")},
		{UUID: "third", Timestamp: ts, Wrote: author("z")},
	}
	got, err := Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].UUID, got[1].UUID, got[2].UUID})
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	in := []RawComment{
		{UUID: "b", Timestamp: "2021-01-02T00:00:00Z", Wrote: author("x")},
		{UUID: "a", Timestamp: "2021-01-01T00:00:00Z", Wrote: author("y")},
	}
	_, err := Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, "b", in[0].UUID)
}

func TestReconcileMissingAuthor(t *testing.T) {
	in := []RawComment{{
		UUID: "a", Timestamp: "2021-01-01T00:00:00Z", Wrote: author("x"),
		AsReplyTo: []RawComment{{UUID: "orphan", Timestamp: "2021-01-02T00:00:00Z"}},
	}}
	_, err := Reconcile(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAuthor))
	assert.Contains(t, err.Error(), "orphan")
}

func TestReconcileEmpty(t *testing.T) {
	got, err := Reconcile(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, Count(got))
}

func TestDecodeApocTree(t *testing.T) {
	tree := map[string]any{
		"slug":      "hello",
		"timestamp": "2020-12-31T00:00:00Z",
		"as_reply_to": []any{
			map[string]any{
				"uuid":      "c1",
				"content":   "top level",
				"timestamp": "2021-01-01T00:00:00Z",
				"wrote":     []any{map[string]any{"username": "alice-1a2b3"}},
				"as_reply_to": []any{
					map[string]any{
						"uuid":      "c2",
						"content":   "reply",
						"timestamp": "2021-01-02T00:00:00Z",
						"wrote":     []any{map[string]any{"username": "bob-4c5d6"}},
					},
				},
			},
		},
	}

	raw, err := Decode(tree)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "c1", raw[0].UUID)
	assert.Equal(t, "alice-1a2b3", raw[0].Wrote[0].Username)
	require.Len(t, raw[0].AsReplyTo, 1)
	assert.Equal(t, "reply", raw[0].AsReplyTo[0].Content)

	threads, err := Reconcile(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, Count(threads))
}

func TestDecodeEmptyTree(t *testing.T) {
	raw, err := Decode(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, raw)

	raw, err = Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestDecodeRejectsUnexpectedShape(t *testing.T) {
	_, err := Decode("not a tree")
	assert.Error(t, err)

	_, err = Decode(map[string]any{"as_reply_to": "nope"})
	assert.Error(t, err)
}
