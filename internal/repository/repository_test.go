package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/graphdb/graphdbtest"
	"conceptblog/internal/models"
)

func TestFindBySlugDecodesConcepts(t *testing.T) {
	store := graphdbtest.New(func(cypher string, params map[string]any) ([]graphdb.Record, error) {
		assert.Equal(t, "hello-world", params["slug"])
		return graphdbtest.Rows(map[string]any{"article": map[string]any{
			"uuid":                "u1",
			"title":               "Hello World",
			"slug":                "hello-world",
			"published":           true,
			"finished_confidence": int64(80),
			"concepts": []any{
				map[string]any{"name": "memory", "mentions": []any{"one", "two"}},
			},
		}}), nil
	})
	repo := NewArticleRepository(store)

	a, err := repo.FindBySlug(context.Background(), "hello-world")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Hello World", a.Title)
	assert.True(t, a.Published)
	assert.Equal(t, 80, a.FinishedConfidence)
	assert.Equal(t, []models.ConceptRef{{Name: "memory", Mentions: []string{"one", "two"}}}, a.Concepts)
}

func TestFindBySlugMissing(t *testing.T) {
	repo := NewArticleRepository(graphdbtest.New(nil))
	a, err := repo.FindBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestPublishedPaging(t *testing.T) {
	store := graphdbtest.New(nil)
	repo := NewArticleRepository(store)

	_, err := repo.Published(context.Background(), 10, 6)
	require.NoError(t, err)
	_, err = repo.Published(context.Background(), 0, 0)
	require.NoError(t, err)

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Cypher, "SKIP $skip LIMIT $limit")
	assert.Equal(t, 10, calls[0].Params["skip"])
	assert.Equal(t, 6, calls[0].Params["limit"])
	assert.NotContains(t, calls[1].Cypher, "LIMIT")
}

func TestByConceptNormalizesName(t *testing.T) {
	store := graphdbtest.New(nil)
	_, err := NewArticleRepository(store).ByConcept(context.Background(), " Spaced Repetition ", 0, 6)
	require.NoError(t, err)
	assert.Equal(t, "spaced repetition", store.Calls()[0].Params["name"])
}

func TestSearchMapsClientErrors(t *testing.T) {
	store := graphdbtest.New(func(string, map[string]any) ([]graphdb.Record, error) {
		return nil, &neo4j.Neo4jError{Code: "Neo.ClientError.Procedure.ProcedureCallFailed", Msg: "Cannot parse 'AND'"}
	})
	_, err := NewArticleRepository(store).Search(context.Background(), "AND", 0, 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSearch))
}

func TestThreadsDecodesTree(t *testing.T) {
	store := graphdbtest.New(func(cypher string, _ map[string]any) ([]graphdb.Record, error) {
		require.Contains(t, cypher, "apoc.convert.toTree")
		return graphdbtest.Rows(map[string]any{"value": map[string]any{
			"slug": "s",
			"as_reply_to": []any{
				map[string]any{"uuid": "2", "content": "late", "timestamp": "2021-02-01T00:00:00Z",
					"wrote": []any{map[string]any{"username": "b"}}},
				map[string]any{"uuid": "1", "content": "early", "timestamp": "2021-01-01T00:00:00Z",
					"wrote": []any{map[string]any{"username": "a"}}},
			},
		}}), nil
	})
	got, err := NewArticleRepository(store).Threads(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].UUID)
	assert.Equal(t, "a", got[0].Author)
}

func TestOwnerHelpers(t *testing.T) {
	store := graphdbtest.New(func(cypher string, _ map[string]any) ([]graphdb.Record, error) {
		if strings.Contains(cypher, "count(o) > 0") {
			return graphdbtest.Rows(map[string]any{"found": true}), nil
		}
		if strings.Contains(cypher, "RETURN coalesce(o.content") {
			return graphdbtest.Rows(map[string]any{"content": "<p>x</p>"}), nil
		}
		return nil, nil
	})
	ctx := context.Background()
	ref := models.OwnerRef{Label: models.LabelLink, Key: "Go"}

	ok, err := OwnerExists(ctx, store, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	content, found, err := OwnerContent(ctx, store, ref)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<p>x</p>", content)

	require.NoError(t, SetOwnerProperties(ctx, store, ref, nil))
	assert.Len(t, store.Calls(), 2, "empty update issues no query")

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SetOwnerContent(ctx, store, ref, "<p>y</p>", nil, now))
	last := store.Calls()[2]
	assert.Contains(t, last.Cypher, "MATCH (o:Link {title: $key}) SET o += $props")
	props := last.Params["props"].(map[string]any)
	assert.Equal(t, "<p>y</p>", props["content"])
	assert.Equal(t, "2024-05-01T00:00:00Z", props["last_edited"])

	_, err = OwnerExists(ctx, store, models.OwnerRef{Label: models.LabelUser, Key: "a@b.c"})
	assert.Error(t, err)
}

func TestCommentCreateTargets(t *testing.T) {
	store := graphdbtest.New(func(cypher string, _ map[string]any) ([]graphdb.Record, error) {
		return graphdbtest.Rows(map[string]any{"uuid": "c1"}), nil
	})
	repo := NewCommentRepository(store)
	ctx := context.Background()
	c := &models.Comment{UUID: "c1", Content: "hi"}

	found, err := repo.Create(ctx, store, c, "a@b.c", "post", models.ReplyToArticle, "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, store.Calls()[0].Cypher, "MATCH (parent:Article {slug: $slug})")

	_, err = repo.Create(ctx, store, c, "a@b.c", "post", models.ReplyToComment, "p1")
	require.NoError(t, err)
	assert.Contains(t, store.Calls()[1].Cypher, "(parent:Comment {uuid: $parent})-[:AS_REPLY_TO*1..]->(:Article {slug: $slug})")

	_, err = repo.Create(ctx, store, c, "a@b.c", "post", models.ReplyTarget("user"), "")
	assert.Error(t, err)
}

func TestSetRelatedSkipsSelf(t *testing.T) {
	store := graphdbtest.New(nil)
	repo := NewConceptRepository(store)
	err := repo.SetRelated(context.Background(), store, "Memory", []models.Related{
		{Name: "memory", Weight: 1},
		{Name: "Recall", Weight: 0.5},
	}, time.Now())
	require.NoError(t, err)

	writes := store.Find("UNWIND $rows")
	require.Len(t, writes, 1)
	rows := writes[0].Params["rows"].([]map[string]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "recall", rows[0]["name"])
}
