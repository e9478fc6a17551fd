package repository

import (
	"context"
	"fmt"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

// withConcepts projects node n with its HAS_CONCEPT edges as "item".
const withConcepts = `
OPTIONAL MATCH (n)-[rel:HAS_CONCEPT]->(concept:Concept)
WITH n, COLLECT(rel{.*, name: concept.name}) AS concepts
RETURN n{.*, concepts: concepts} AS item`

func findOne[T any](ctx context.Context, store graphdb.Store, label models.Label, key string, decode func(map[string]any) *T) (*T, error) {
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $key})", label, label.KeyProperty()) + withConcepts
	rows, err := store.Run(ctx, cypher, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("find %s %q: %w", label, key, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decode(rows[0].Map("item")), nil
}

func listAll[T any](ctx context.Context, store graphdb.Store, label models.Label, orderBy string, decode func(map[string]any) *T) ([]*T, error) {
	cypher := fmt.Sprintf("MATCH (n:%s)", label) + withConcepts + "\nORDER BY " + orderBy
	rows, err := store.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", label, err)
	}
	return collect(rows, "item", decode), nil
}

type NoteRepository struct{ store graphdb.Store }

func NewNoteRepository(store graphdb.Store) *NoteRepository { return &NoteRepository{store: store} }

func (r *NoteRepository) Find(ctx context.Context, title string) (*models.Note, error) {
	return findOne(ctx, r.store, models.LabelNote, title, noteFromMap)
}

func (r *NoteRepository) List(ctx context.Context) ([]*models.Note, error) {
	return listAll(ctx, r.store, models.LabelNote, "n.timestamp DESC", noteFromMap)
}

type LinkRepository struct{ store graphdb.Store }

func NewLinkRepository(store graphdb.Store) *LinkRepository { return &LinkRepository{store: store} }

func (r *LinkRepository) Find(ctx context.Context, title string) (*models.Link, error) {
	return findOne(ctx, r.store, models.LabelLink, title, linkFromMap)
}

func (r *LinkRepository) List(ctx context.Context) ([]*models.Link, error) {
	return listAll(ctx, r.store, models.LabelLink, "n.timestamp DESC", linkFromMap)
}

type PodcastRepository struct{ store graphdb.Store }

func NewPodcastRepository(store graphdb.Store) *PodcastRepository {
	return &PodcastRepository{store: store}
}

func (r *PodcastRepository) Find(ctx context.Context, title string) (*models.Podcast, error) {
	return findOne(ctx, r.store, models.LabelPodcast, title, podcastFromMap)
}

// List orders episodes by air date, falling back to creation time.
func (r *PodcastRepository) List(ctx context.Context) ([]*models.Podcast, error) {
	return listAll(ctx, r.store, models.LabelPodcast, "coalesce(n.date, n.timestamp) DESC", podcastFromMap)
}
