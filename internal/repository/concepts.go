package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

const upsertConceptCypher = `
MERGE (c:Concept {name: $name})
ON CREATE SET c += $props, c.upsert_token = $token
WITH c, coalesce(c.upsert_token = $token, false) AS created
REMOVE c.upsert_token
SET c.content = $content, c.last_edited = $last_edited
RETURN created`

// UpsertConcept merges c by name and writes its content. An existing node
// keeps its display name and timestamp.
func UpsertConcept(ctx context.Context, r graphdb.Runner, c *models.Concept) (created bool, err error) {
	rows, err := r.Run(ctx, upsertConceptCypher, map[string]any{
		"name":        c.Name,
		"props":       c.Properties(),
		"token":       uuid.NewString(),
		"content":     c.Content,
		"last_edited": c.LastEdited,
	})
	if err != nil {
		return false, fmt.Errorf("upsert concept %q: %w", c.Name, err)
	}
	if len(rows) == 0 {
		return false, fmt.Errorf("upsert concept %q: no row returned", c.Name)
	}
	return graphdb.AsBool(rows[0]["created"]), nil
}

// LinkedItem is any node pointing at a concept through HAS_CONCEPT.
type LinkedItem struct {
	Label string `json:"label"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

type ConceptListing struct {
	Concept *models.Concept `json:"concept"`
	Links   []LinkedItem    `json:"links"`
}

type ConceptCount struct {
	Concept *models.Concept `json:"concept"`
	Count   int             `json:"count"`
}

type ConceptRepository struct {
	store graphdb.Store
}

func NewConceptRepository(store graphdb.Store) *ConceptRepository {
	return &ConceptRepository{store: store}
}

// Find looks a concept up by name in any casing. Returns nil, nil when
// missing.
func (r *ConceptRepository) Find(ctx context.Context, name string) (*models.Concept, error) {
	rows, err := r.store.Run(ctx, "MATCH (c:Concept {name: $name}) RETURN c{.*} AS concept",
		map[string]any{"name": models.NormalizeConceptName(name)})
	if err != nil {
		return nil, fmt.Errorf("find concept %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return conceptFromMap(rows[0].Map("concept")), nil
}

const conceptLinksCypher = `
MATCH (c:Concept)
OPTIONAL MATCH (c)<-[:HAS_CONCEPT]-(n)
WITH c, COLLECT(n{label: head(labels(n)), title: coalesce(n.title, n.display_name, n.name), slug: n.slug}) AS links
RETURN c{.*} AS concept, links
ORDER BY c.name`

// WithLinks lists every concept with the nodes that mention it.
func (r *ConceptRepository) WithLinks(ctx context.Context) ([]ConceptListing, error) {
	rows, err := r.store.Run(ctx, conceptLinksCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	out := make([]ConceptListing, 0, len(rows))
	for _, row := range rows {
		listing := ConceptListing{Concept: conceptFromMap(row.Map("concept"))}
		for _, item := range graphdb.AsSlice(row["links"]) {
			m := graphdb.AsMap(item)
			if m == nil {
				continue
			}
			listing.Links = append(listing.Links, LinkedItem{
				Label: graphdb.AsString(m["label"]),
				Title: graphdb.AsString(m["title"]),
				Slug:  graphdb.AsString(m["slug"]),
			})
		}
		out = append(out, listing)
	}
	return out, nil
}

const conceptCountsCypher = `
MATCH (c:Concept)<-[:HAS_CONCEPT]-(a:Article {published: true})
WITH c, COUNT(DISTINCT a) AS n
RETURN c{.*} AS concept, n AS count
ORDER BY n DESC, c.name`

// InArticles counts published articles per concept.
func (r *ConceptRepository) InArticles(ctx context.Context) ([]ConceptCount, error) {
	rows, err := r.store.Run(ctx, conceptCountsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("count concepts: %w", err)
	}
	out := make([]ConceptCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ConceptCount{Concept: conceptFromMap(row.Map("concept")), Count: row.Int("count")})
	}
	return out, nil
}

// Related lists RELATED_TO neighbours by descending weight.
func (r *ConceptRepository) Related(ctx context.Context, name string) ([]models.Related, error) {
	rows, err := r.store.Run(ctx, `
MATCH (:Concept {name: $name})-[rel:RELATED_TO]-(other:Concept)
RETURN coalesce(other.display_name, other.name) AS name, rel.weight AS weight
ORDER BY weight DESC`, map[string]any{"name": models.NormalizeConceptName(name)})
	if err != nil {
		return nil, fmt.Errorf("related concepts for %q: %w", name, err)
	}
	out := make([]models.Related, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Related{Name: row.String("name"), Weight: graphdb.AsFloat(row["weight"])})
	}
	return out, nil
}

// SetRelated replaces the RELATED_TO edges leaving name. Missing neighbour
// concepts are created.
func (r *ConceptRepository) SetRelated(ctx context.Context, tx graphdb.Runner, name string, related []models.Related, now time.Time) error {
	key := models.NormalizeConceptName(name)
	if _, err := tx.Run(ctx, "MATCH (:Concept {name: $name})-[rel:RELATED_TO]->(:Concept) DELETE rel",
		map[string]any{"name": key}); err != nil {
		return fmt.Errorf("clear related concepts of %q: %w", name, err)
	}
	rows := make([]map[string]any, 0, len(related))
	for _, rel := range related {
		c := models.NewConcept(rel.Name, "", now)
		if c.Name == "" || c.Name == key {
			continue
		}
		rows = append(rows, map[string]any{"name": c.Name, "props": c.Properties(), "weight": rel.Weight})
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.Run(ctx, `
MATCH (main:Concept {name: $name})
UNWIND $rows AS row
MERGE (other:Concept {name: row.name})
ON CREATE SET other += row.props
MERGE (main)-[rel:RELATED_TO]->(other)
SET rel.weight = row.weight`, map[string]any{"name": key, "rows": rows})
	if err != nil {
		return fmt.Errorf("write related concepts of %q: %w", name, err)
	}
	return nil
}
