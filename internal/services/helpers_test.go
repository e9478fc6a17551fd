package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"conceptblog/internal/concepts"
	"conceptblog/internal/config"
	"conceptblog/internal/graphdb"
	"conceptblog/internal/graphdb/graphdbtest"
	"conceptblog/internal/ledger"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
)

var errBoom = errors.New("boom")

// fakeGraph answers the queries the services issue. Articles, notes and
// the like are looked up in the maps keyed by title; failOn makes any query
// containing that text fail.
type fakeGraph struct {
	mu       sync.Mutex
	owners   map[string]map[string]any
	content  string
	failOn   string
	slugUsed string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{owners: map[string]map[string]any{}}
}

func (g *fakeGraph) handle(cypher string, params map[string]any) ([]graphdb.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failOn != "" && strings.Contains(cypher, g.failOn) {
		return nil, errBoom
	}
	switch {
	case strings.Contains(cypher, "c.upsert_token"):
		name := params["name"].(string)
		existing, ok := g.owners[name]
		if !ok {
			g.owners[name] = params["props"].(map[string]any)
		} else {
			existing["content"] = params["content"]
		}
		return graphdbtest.Rows(map[string]any{"created": !ok}), nil
	case strings.Contains(cypher, "ON CREATE SET c += $props, c.sync_token"):
		return graphdbtest.Rows(map[string]any{"created": true, "content": ""}), nil
	case strings.Contains(cypher, "RETURN count(rel) AS linked"):
		return graphdbtest.Rows(map[string]any{"linked": int64(1)}), nil
	case strings.Contains(cypher, "RETURN coalesce(o.content"):
		return graphdbtest.Rows(map[string]any{"content": g.content}), nil
	case strings.Contains(cypher, "RETURN a.title AS title"):
		if g.slugUsed != "" {
			return graphdbtest.Rows(map[string]any{"title": g.slugUsed}), nil
		}
		return nil, nil
	case strings.Contains(cypher, "CREATE (n:"):
		props := params["props"].(map[string]any)
		key := props["title"]
		if key == nil {
			key = props["name"]
		}
		g.owners[key.(string)] = props
		return nil, nil
	case strings.HasPrefix(strings.TrimSpace(cypher), "MATCH (article:Article {title: $title})"),
		strings.HasPrefix(strings.TrimSpace(cypher), "MATCH (n:"):
		key, _ := params["title"].(string)
		if key == "" {
			key, _ = params["key"].(string)
		}
		if props, ok := g.owners[key]; ok {
			alias := "item"
			if strings.Contains(cypher, "AS article") {
				alias = "article"
			}
			return graphdbtest.Rows(map[string]any{alias: props}), nil
		}
		return nil, nil
	case strings.Contains(cypher, "MATCH (c:Concept {name: $name}) RETURN c{.*}"):
		if props, ok := g.owners[params["name"].(string)]; ok {
			return graphdbtest.Rows(map[string]any{"concept": props}), nil
		}
		return nil, nil
	}
	return nil, nil
}

type fakeIssues struct {
	recorded []models.OwnerRef
	resolved []models.OwnerRef
	issues   map[uint]*ledger.ReconcileIssue
}

func (f *fakeIssues) Record(_ context.Context, owner models.OwnerRef, _ error) (*ledger.ReconcileIssue, error) {
	f.recorded = append(f.recorded, owner)
	return &ledger.ReconcileIssue{OwnerLabel: string(owner.Label), OwnerKey: owner.Key}, nil
}

func (f *fakeIssues) Resolve(_ context.Context, owner models.OwnerRef) error {
	f.resolved = append(f.resolved, owner)
	return nil
}

func (f *fakeIssues) Open(context.Context) ([]ledger.ReconcileIssue, error) {
	var out []ledger.ReconcileIssue
	for _, i := range f.issues {
		out = append(out, *i)
	}
	return out, nil
}

func (f *fakeIssues) Get(_ context.Context, id uint) (*ledger.ReconcileIssue, error) {
	return f.issues[id], nil
}

func newTestWriter(g *fakeGraph, mode string, issues IssueRecorder) (*ContentWriter, *graphdbtest.Store) {
	store := graphdbtest.New(g.handle)
	log := logger.NewNop()
	sync := concepts.NewSynchronizer(concepts.GraphEdges{}, concepts.DefaultMaxDepth, log)
	if mode == "" {
		mode = config.SyncAtomic
	}
	return NewContentWriter(store, sync, mode, issues, log), store
}

func strPtr(s string) *string { return &s }
