package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
	"conceptblog/internal/threads"
)

// ErrInvalidSearch is returned when the full-text index rejects a query.
var ErrInvalidSearch = errors.New("invalid search query")

type ArticleRepository struct {
	store graphdb.Store
}

func NewArticleRepository(store graphdb.Store) *ArticleRepository {
	return &ArticleRepository{store: store}
}

const articleProjection = `
OPTIONAL MATCH (article)-[rel:HAS_CONCEPT]->(concept:Concept)
WITH article, COLLECT(rel{.*, name: concept.name}) AS concepts
RETURN article{.*, concepts: concepts} AS article`

func (r *ArticleRepository) find(ctx context.Context, match string, params map[string]any) (*models.Article, error) {
	rows, err := r.store.Run(ctx, match+articleProjection, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return articleFromMap(rows[0].Map("article")), nil
}

// FindByTitle returns nil, nil when no article has the title.
func (r *ArticleRepository) FindByTitle(ctx context.Context, title string) (*models.Article, error) {
	a, err := r.find(ctx, "MATCH (article:Article {title: $title})", map[string]any{"title": title})
	if err != nil {
		return nil, fmt.Errorf("find article %q: %w", title, err)
	}
	return a, nil
}

// FindBySlug returns nil, nil when no article has the slug.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a, err := r.find(ctx, "MATCH (article:Article {slug: $slug})", map[string]any{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("find article by slug %q: %w", slug, err)
	}
	return a, nil
}

// SlugOwner returns the title of the article using slug, or "".
func (r *ArticleRepository) SlugOwner(ctx context.Context, tx graphdb.Runner, slug string) (string, error) {
	v, err := graphdb.EvaluateWith(ctx, tx, "MATCH (a:Article {slug: $slug}) RETURN a.title AS title LIMIT 1", map[string]any{"slug": slug})
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", slug, err)
	}
	return graphdb.AsString(v), nil
}

func (r *ArticleRepository) list(ctx context.Context, cypher string, params map[string]any) ([]*models.Article, error) {
	rows, err := r.store.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return collect(rows, "article", articleFromMap), nil
}

// Published lists published articles newest first. limit <= 0 means all.
func (r *ArticleRepository) Published(ctx context.Context, skip, limit int) ([]*models.Article, error) {
	cypher := "MATCH (article:Article {published: true})" + articleProjection +
		"\nORDER BY article.timestamp DESC"
	params := map[string]any{}
	if limit > 0 {
		cypher += "\nSKIP $skip LIMIT $limit"
		params["skip"] = skip
		params["limit"] = limit
	}
	articles, err := r.list(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	return articles, nil
}

// ByConcept lists published articles that mention the concept.
func (r *ArticleRepository) ByConcept(ctx context.Context, concept string, skip, limit int) ([]*models.Article, error) {
	cypher := "MATCH (:Concept {name: $name})<-[:HAS_CONCEPT]-(article:Article {published: true})" +
		articleProjection +
		"\nORDER BY article.timestamp DESC\nSKIP $skip LIMIT $limit"
	articles, err := r.list(ctx, cypher, map[string]any{
		"name":  models.NormalizeConceptName(concept),
		"skip":  skip,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles for concept %q: %w", concept, err)
	}
	return articles, nil
}

const searchCypher = `
CALL db.index.fulltext.queryNodes("articleContent", $search) YIELD node AS article, score
WHERE article.published = true
OPTIONAL MATCH (article)-[rel:HAS_CONCEPT]->(concept:Concept)
WITH article, score, COLLECT(rel{.*, name: concept.name}) AS concepts
RETURN article{.*, concepts: concepts} AS article
ORDER BY score DESC
SKIP $skip LIMIT $limit`

// Search runs a full-text query over published articles.
func (r *ArticleRepository) Search(ctx context.Context, query string, skip, limit int) ([]*models.Article, error) {
	articles, err := r.list(ctx, searchCypher, map[string]any{"search": query, "skip": skip, "limit": limit})
	if err != nil {
		var dbErr *neo4j.Neo4jError
		if errors.As(err, &dbErr) && dbErr.Classification() == "ClientError" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSearch, dbErr.Msg)
		}
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return articles, nil
}

const similarCypher = `
MATCH (this:Article {slug: $slug})-[:HAS_CONCEPT]->(c:Concept)<-[rel:HAS_CONCEPT]-(other:Article {published: true})
WHERE this <> other
WITH other, COLLECT(DISTINCT rel{.*, name: c.name}) AS concepts
RETURN other{.*, concepts: concepts} AS article
ORDER BY size(concepts) DESC, other.timestamp DESC
LIMIT $limit`

// Similar returns the published articles sharing the most concepts with
// slug.
func (r *ArticleRepository) Similar(ctx context.Context, slug string, limit int) ([]*models.Article, error) {
	articles, err := r.list(ctx, similarCypher, map[string]any{"slug": slug, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("similar articles for %q: %w", slug, err)
	}
	return articles, nil
}

// Requires the APOC plugin.
const threadsCypher = `
MATCH r=(:Article {slug: $slug})<-[:AS_REPLY_TO*..]-(:Comment)<-[:WROTE]-(:User)
WITH COLLECT(r) AS rs
CALL apoc.convert.toTree(rs, true, {
    nodes: {
        Comment: ['uuid', 'content', 'timestamp'],
        User: ['username'],
        Article: ['slug', 'timestamp']
    }
}) YIELD value
RETURN value`

// Threads returns the article's comment forest ordered for display.
func (r *ArticleRepository) Threads(ctx context.Context, slug string) ([]threads.CommentThread, error) {
	v, err := r.store.Evaluate(ctx, threadsCypher, map[string]any{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("load comments for %q: %w", slug, err)
	}
	raw, err := threads.Decode(v)
	if err != nil {
		return nil, err
	}
	return threads.Reconcile(raw)
}
