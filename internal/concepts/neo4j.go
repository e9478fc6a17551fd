package concepts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

// GraphEdges is the Neo4j EdgeStore.
type GraphEdges struct{}

var _ EdgeStore = GraphEdges{}

func ownerMatch(owner models.OwnerRef) (string, error) {
	if !owner.Label.IsOwner() {
		return "", fmt.Errorf("label %q cannot own concepts", owner.Label)
	}
	return fmt.Sprintf("(o:%s {%s: $key})", owner.Label, owner.Label.KeyProperty()), nil
}

func (GraphEdges) DeleteEdges(ctx context.Context, r graphdb.Runner, owner models.OwnerRef) error {
	match, err := ownerMatch(owner)
	if err != nil {
		return err
	}
	cypher := "MATCH " + match + "-[rel:HAS_CONCEPT]->(:Concept) DELETE rel"
	_, err = r.Run(ctx, cypher, map[string]any{"key": owner.Key})
	return err
}

const mergeConceptCypher = `
MERGE (c:Concept {name: $name})
ON CREATE SET c += $props, c.sync_token = $token
WITH c, coalesce(c.sync_token = $token, false) AS created
REMOVE c.sync_token
RETURN created, coalesce(c.content, '') AS content`

func (GraphEdges) MergeConcept(ctx context.Context, r graphdb.Runner, c *models.Concept) (bool, string, error) {
	rows, err := r.Run(ctx, mergeConceptCypher, map[string]any{
		"name":  c.Name,
		"props": c.Properties(),
		"token": uuid.NewString(),
	})
	if err != nil {
		return false, "", err
	}
	if len(rows) == 0 {
		return false, "", fmt.Errorf("merge returned no row")
	}
	return graphdb.AsBool(rows[0]["created"]), rows[0].String("content"), nil
}

func (GraphEdges) MergeEdge(ctx context.Context, r graphdb.Runner, owner models.OwnerRef, concept string, mentions []string) error {
	match, err := ownerMatch(owner)
	if err != nil {
		return err
	}
	cypher := "MATCH " + match + ", (c:Concept {name: $name})\n" +
		"MERGE (o)-[rel:HAS_CONCEPT]->(c)\n" +
		"SET rel.mentions = $mentions\n" +
		"RETURN count(rel) AS linked"
	rows, err := r.Run(ctx, cypher, map[string]any{
		"key":      owner.Key,
		"name":     concept,
		"mentions": mentions,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 || rows[0].Int("linked") == 0 {
		return fmt.Errorf("%s not found", owner)
	}
	return nil
}
