package models

import (
	"time"

	"conceptblog/internal/utils"
)

// Concept is a shared idea node. Name is the normalized key; DisplayName
// keeps the casing it was first written with.
type Concept struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
	LastEdited  string `json:"last_edited"`
}

type ConceptInput struct {
	Name    string  `json:"name" binding:"required,max=200"`
	Content *string `json:"content" binding:"required"`
}

type ConceptUpdate struct {
	Content *string
}

func (in ConceptInput) Update() ConceptUpdate { return ConceptUpdate{Content: in.Content} }

func NewConcept(displayName, content string, now time.Time) *Concept {
	ts := Timestamp(now)
	return &Concept{
		Name:        NormalizeConceptName(displayName),
		DisplayName: displayName,
		Slug:        utils.Slugify(displayName),
		Content:     content,
		Timestamp:   ts,
		LastEdited:  ts,
	}
}

func (c *Concept) Label() string             { return string(LabelConcept) }
func (c *Concept) PrimaryKey() (string, any) { return "name", c.Name }
func (c *Concept) Ref() OwnerRef             { return OwnerRef{Label: LabelConcept, Key: c.Name} }
func (c *Concept) Body() string              { return c.Content }

func (c *Concept) Properties() map[string]any {
	return map[string]any{
		"name":         c.Name,
		"display_name": c.DisplayName,
		"slug":         c.Slug,
		"content":      c.Content,
		"timestamp":    c.Timestamp,
		"last_edited":  c.LastEdited,
	}
}

// Related is a RELATED_TO neighbour written by enrichment.
type Related struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
