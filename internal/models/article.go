package models

import (
	"time"

	"github.com/google/uuid"

	"conceptblog/internal/utils"
)

type Article struct {
	UUID               string `json:"uuid"`
	Title              string `json:"title"`
	Slug               string `json:"slug"`
	Author             string `json:"author"`
	Content            string `json:"content"`
	Summary            string `json:"summary"`
	Published          bool   `json:"published"`
	FinishedConfidence int    `json:"finished_confidence"`
	Timestamp          string `json:"timestamp"`
	LastEdited         string `json:"last_edited"`

	// 非持久化字段，查询时填充
	Concepts []ConceptRef `json:"concepts,omitempty"`
}

// ArticleInput is the POST /articles payload. Title selects the article;
// the remaining fields are optional on update and partly required on create.
type ArticleInput struct {
	Title              string  `json:"title" binding:"required,max=300"`
	Author             *string `json:"author"`
	Content            *string `json:"content"`
	Published          *bool   `json:"published"`
	FinishedConfidence *int    `json:"finished_confidence" binding:"omitempty,min=0,max=100"`
}

// ArticleUpdate lists the only properties an update may touch. Title and
// slug are immutable; summary and last_edited follow content.
type ArticleUpdate struct {
	Author             *string
	Content            *string
	Published          *bool
	FinishedConfidence *int
}

func (in ArticleInput) Update() ArticleUpdate {
	return ArticleUpdate{
		Author:             in.Author,
		Content:            in.Content,
		Published:          in.Published,
		FinishedConfidence: in.FinishedConfidence,
	}
}

func (u ArticleUpdate) Properties() map[string]any {
	props := map[string]any{}
	setIf(props, "author", u.Author)
	setIf(props, "published", u.Published)
	setIf(props, "finished_confidence", u.FinishedConfidence)
	return props
}

func NewArticle(in ArticleInput, summary string, now time.Time) *Article {
	ts := Timestamp(now)
	a := &Article{
		UUID:       uuid.NewString(),
		Title:      in.Title,
		Slug:       utils.Slugify(in.Title),
		Summary:    summary,
		Timestamp:  ts,
		LastEdited: ts,
	}
	if in.Author != nil {
		a.Author = *in.Author
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	if in.Published != nil {
		a.Published = *in.Published
	}
	if in.FinishedConfidence != nil {
		a.FinishedConfidence = *in.FinishedConfidence
	}
	return a
}

func (a *Article) Label() string             { return string(LabelArticle) }
func (a *Article) PrimaryKey() (string, any) { return "title", a.Title }
func (a *Article) Ref() OwnerRef             { return OwnerRef{Label: LabelArticle, Key: a.Title} }
func (a *Article) Body() string              { return a.Content }

func (a *Article) Properties() map[string]any {
	return map[string]any{
		"uuid":                a.UUID,
		"title":               a.Title,
		"slug":                a.Slug,
		"author":              a.Author,
		"content":             a.Content,
		"summary":             a.Summary,
		"published":           a.Published,
		"finished_confidence": a.FinishedConfidence,
		"timestamp":           a.Timestamp,
		"last_edited":         a.LastEdited,
	}
}
