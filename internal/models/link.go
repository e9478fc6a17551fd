package models

import "time"

// Link is an external page shared on the links page, with the author's
// commentary as content.
type Link struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	Excerpt    string `json:"excerpt"`
	Timestamp  string `json:"timestamp"`
	LastEdited string `json:"last_edited"`

	Concepts []ConceptRef `json:"concepts,omitempty"`
}

type LinkInput struct {
	Title   string  `json:"title" binding:"required,max=300"`
	URL     *string `json:"url" binding:"omitempty,url"`
	Author  *string `json:"author"`
	Content *string `json:"content"`
}

type LinkUpdate struct {
	URL     *string
	Author  *string
	Content *string
	Excerpt *string
}

func (in LinkInput) Update() LinkUpdate {
	return LinkUpdate{URL: in.URL, Author: in.Author, Content: in.Content}
}

func (u LinkUpdate) Properties() map[string]any {
	props := map[string]any{}
	setIf(props, "url", u.URL)
	setIf(props, "author", u.Author)
	setIf(props, "excerpt", u.Excerpt)
	return props
}

func NewLink(in LinkInput, now time.Time) *Link {
	ts := Timestamp(now)
	l := &Link{Title: in.Title, Timestamp: ts, LastEdited: ts}
	if in.URL != nil {
		l.URL = *in.URL
	}
	if in.Author != nil {
		l.Author = *in.Author
	}
	if in.Content != nil {
		l.Content = *in.Content
	}
	return l
}

func (l *Link) Label() string             { return string(LabelLink) }
func (l *Link) PrimaryKey() (string, any) { return "title", l.Title }
func (l *Link) Ref() OwnerRef             { return OwnerRef{Label: LabelLink, Key: l.Title} }
func (l *Link) Body() string              { return l.Content }

func (l *Link) Properties() map[string]any {
	return map[string]any{
		"title":       l.Title,
		"url":         l.URL,
		"author":      l.Author,
		"content":     l.Content,
		"excerpt":     l.Excerpt,
		"timestamp":   l.Timestamp,
		"last_edited": l.LastEdited,
	}
}
