// Package concepts keeps HAS_CONCEPT edges in step with the concept markers
// found in an owner's content.
package concepts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/parser"
)

const DefaultMaxDepth = 2

// EdgeStore is the graph surface the synchronizer writes through. Every call
// receives the runner of the caller's transaction.
type EdgeStore interface {
	// DeleteEdges removes every outgoing HAS_CONCEPT edge of owner.
	DeleteEdges(ctx context.Context, r graphdb.Runner, owner models.OwnerRef) error
	// MergeConcept makes sure the concept exists. created reports whether
	// this call made the node; content is the node's current content.
	MergeConcept(ctx context.Context, r graphdb.Runner, c *models.Concept) (created bool, content string, err error)
	// MergeEdge links owner to the concept and stores the mention sentences.
	MergeEdge(ctx context.Context, r graphdb.Runner, owner models.OwnerRef, concept string, mentions []string) error
}

type Result struct {
	// Concepts linked to the root owner, in first-seen order.
	Concepts []string
	// Created lists concept nodes that did not exist before this pass.
	Created []string
	// Expanded lists concepts whose own content was reconciled.
	Expanded []string
}

type Synchronizer struct {
	edges    EdgeStore
	maxDepth int
	log      *logger.Logger
	now      func() time.Time
}

func NewSynchronizer(edges EdgeStore, maxDepth int, log *logger.Logger) *Synchronizer {
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Synchronizer{edges: edges, maxDepth: maxDepth, log: log, now: time.Now}
}

// Reconcile replaces owner's HAS_CONCEPT edges with exactly the set parsed
// from content. An empty parse still clears stale edges.
func (s *Synchronizer) Reconcile(ctx context.Context, r graphdb.Runner, owner models.OwnerRef, content string) (Result, error) {
	if !owner.Label.IsOwner() {
		return Result{}, fmt.Errorf("concepts: %s cannot own concepts", owner.Label)
	}
	var res Result
	visited := map[models.OwnerRef]bool{owner: true}
	if err := s.reconcile(ctx, r, owner, content, 0, visited, &res); err != nil {
		return Result{}, err
	}
	s.log.Debug("Concept edges reconciled",
		"owner", owner.String(),
		"concepts", len(res.Concepts),
		"created", len(res.Created),
		"expanded", len(res.Expanded))
	return res, nil
}

func (s *Synchronizer) reconcile(ctx context.Context, r graphdb.Runner, owner models.OwnerRef, content string, depth int, visited map[models.OwnerRef]bool, res *Result) error {
	groups := Group(parser.ParseConcepts(content))

	if err := s.edges.DeleteEdges(ctx, r, owner); err != nil {
		return fmt.Errorf("delete concept edges of %s: %w", owner, err)
	}

	for _, g := range groups {
		created, body, err := s.edges.MergeConcept(ctx, r, models.NewConcept(g.DisplayName, "", s.now()))
		if err != nil {
			return fmt.Errorf("merge concept %q: %w", g.Name, err)
		}
		if err := s.edges.MergeEdge(ctx, r, owner, g.Name, g.Mentions); err != nil {
			return fmt.Errorf("link %s to concept %q: %w", owner, g.Name, err)
		}
		if depth == 0 {
			res.Concepts = append(res.Concepts, g.Name)
		}
		if created {
			res.Created = append(res.Created, g.Name)
		}

		// Concepts with stored content are owners too; their own edges are
		// refreshed down to maxDepth.
		if strings.TrimSpace(body) == "" || depth >= s.maxDepth {
			continue
		}
		ref := models.OwnerRef{Label: models.LabelConcept, Key: g.Name}
		if visited[ref] {
			continue
		}
		visited[ref] = true
		res.Expanded = append(res.Expanded, g.Name)
		if err := s.reconcile(ctx, r, ref, body, depth+1, visited, res); err != nil {
			return err
		}
	}
	return nil
}

// Mention is every occurrence of one normalized concept name in a document.
type Mention struct {
	Name        string
	DisplayName string
	Mentions    []string
}

// Group merges parser output whose names differ only in case or
// surrounding space. The first spelling seen becomes the display name.
func Group(found []parser.ConceptMention) []Mention {
	index := map[string]int{}
	var out []Mention
	for _, m := range found {
		name := models.NormalizeConceptName(m.Name)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Mention{Name: name, DisplayName: strings.TrimSpace(m.Name), Mentions: []string{}})
		}
		out[i].Mentions = append(out[i].Mentions, m.Mentions...)
	}
	return out
}
