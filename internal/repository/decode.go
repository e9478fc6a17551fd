package repository

import (
	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

// Listing queries project nodes as maps with their HAS_CONCEPT edges
// collected as rel{.*, name: concept.name}.

func conceptRefs(v any) []models.ConceptRef {
	items := graphdb.AsSlice(v)
	out := make([]models.ConceptRef, 0, len(items))
	for _, item := range items {
		m := graphdb.AsMap(item)
		if m == nil {
			continue
		}
		out = append(out, models.ConceptRef{
			Name:     graphdb.AsString(m["name"]),
			Mentions: graphdb.AsStrings(m["mentions"]),
		})
	}
	return out
}

func articleFromMap(m map[string]any) *models.Article {
	if m == nil {
		return nil
	}
	return &models.Article{
		UUID:               graphdb.AsString(m["uuid"]),
		Title:              graphdb.AsString(m["title"]),
		Slug:               graphdb.AsString(m["slug"]),
		Author:             graphdb.AsString(m["author"]),
		Content:            graphdb.AsString(m["content"]),
		Summary:            graphdb.AsString(m["summary"]),
		Published:          graphdb.AsBool(m["published"]),
		FinishedConfidence: graphdb.AsInt(m["finished_confidence"]),
		Timestamp:          graphdb.AsString(m["timestamp"]),
		LastEdited:         graphdb.AsString(m["last_edited"]),
		Concepts:           conceptRefs(m["concepts"]),
	}
}

func noteFromMap(m map[string]any) *models.Note {
	if m == nil {
		return nil
	}
	return &models.Note{
		Title:      graphdb.AsString(m["title"]),
		Slug:       graphdb.AsString(m["slug"]),
		Content:    graphdb.AsString(m["content"]),
		Timestamp:  graphdb.AsString(m["timestamp"]),
		LastEdited: graphdb.AsString(m["last_edited"]),
		Concepts:   conceptRefs(m["concepts"]),
	}
}

func linkFromMap(m map[string]any) *models.Link {
	if m == nil {
		return nil
	}
	return &models.Link{
		Title:      graphdb.AsString(m["title"]),
		URL:        graphdb.AsString(m["url"]),
		Author:     graphdb.AsString(m["author"]),
		Content:    graphdb.AsString(m["content"]),
		Excerpt:    graphdb.AsString(m["excerpt"]),
		Timestamp:  graphdb.AsString(m["timestamp"]),
		LastEdited: graphdb.AsString(m["last_edited"]),
		Concepts:   conceptRefs(m["concepts"]),
	}
}

func podcastFromMap(m map[string]any) *models.Podcast {
	if m == nil {
		return nil
	}
	return &models.Podcast{
		UUID:        graphdb.AsString(m["uuid"]),
		Title:       graphdb.AsString(m["title"]),
		Date:        graphdb.AsString(m["date"]),
		URL:         graphdb.AsString(m["url"]),
		Description: graphdb.AsString(m["description"]),
		Content:     graphdb.AsString(m["content"]),
		Transcript:  graphdb.AsString(m["transcript"]),
		Feedback:    graphdb.AsString(m["feedback"]),
		Timestamp:   graphdb.AsString(m["timestamp"]),
		LastEdited:  graphdb.AsString(m["last_edited"]),
		Concepts:    conceptRefs(m["concepts"]),
	}
}

func conceptFromMap(m map[string]any) *models.Concept {
	if m == nil {
		return nil
	}
	c := &models.Concept{
		Name:        graphdb.AsString(m["name"]),
		DisplayName: graphdb.AsString(m["display_name"]),
		Slug:        graphdb.AsString(m["slug"]),
		Content:     graphdb.AsString(m["content"]),
		Timestamp:   graphdb.AsString(m["timestamp"]),
		LastEdited:  graphdb.AsString(m["last_edited"]),
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	return c
}

func collect[T any](rows []graphdb.Record, key string, decode func(map[string]any) *T) []*T {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		if v := decode(row.Map(key)); v != nil {
			out = append(out, v)
		}
	}
	return out
}
