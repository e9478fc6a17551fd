package models

import (
	"time"

	"conceptblog/internal/utils"
)

// Note is a short working note.
type Note struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	LastEdited string `json:"last_edited"`

	Concepts []ConceptRef `json:"concepts,omitempty"`
}

type NoteInput struct {
	Title   string  `json:"title" binding:"required,max=300"`
	Content *string `json:"content" binding:"required"`
}

type NoteUpdate struct {
	Content *string
}

func (in NoteInput) Update() NoteUpdate { return NoteUpdate{Content: in.Content} }

func NewNote(in NoteInput, now time.Time) *Note {
	ts := Timestamp(now)
	n := &Note{Title: in.Title, Slug: utils.Slugify(in.Title), Timestamp: ts, LastEdited: ts}
	if in.Content != nil {
		n.Content = *in.Content
	}
	return n
}

func (n *Note) Label() string             { return string(LabelNote) }
func (n *Note) PrimaryKey() (string, any) { return "title", n.Title }
func (n *Note) Ref() OwnerRef             { return OwnerRef{Label: LabelNote, Key: n.Title} }
func (n *Note) Body() string              { return n.Content }

func (n *Note) Properties() map[string]any {
	return map[string]any{
		"title":       n.Title,
		"slug":        n.Slug,
		"content":     n.Content,
		"timestamp":   n.Timestamp,
		"last_edited": n.LastEdited,
	}
}
