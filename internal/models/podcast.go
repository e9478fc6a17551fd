package models

import (
	"time"

	"github.com/google/uuid"
)

// Podcast is one episode. Content holds the show notes that carry concept
// markers; Transcript and Feedback are stored as-is.
type Podcast struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Transcript  string `json:"transcript"`
	Feedback    string `json:"feedback"`
	Timestamp   string `json:"timestamp"`
	LastEdited  string `json:"last_edited"`

	Concepts []ConceptRef `json:"concepts,omitempty"`
}

type PodcastInput struct {
	Title       string  `json:"title" binding:"required,max=300"`
	Date        *string `json:"date"`
	URL         *string `json:"url" binding:"omitempty,url"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Transcript  *string `json:"transcript"`
	Feedback    *string `json:"feedback"`
}

type PodcastUpdate struct {
	Date        *string
	URL         *string
	Description *string
	Content     *string
	Transcript  *string
	Feedback    *string
}

func (in PodcastInput) Update() PodcastUpdate {
	return PodcastUpdate{
		Date:        in.Date,
		URL:         in.URL,
		Description: in.Description,
		Content:     in.Content,
		Transcript:  in.Transcript,
		Feedback:    in.Feedback,
	}
}

func (u PodcastUpdate) Properties() map[string]any {
	props := map[string]any{}
	setIf(props, "date", u.Date)
	setIf(props, "url", u.URL)
	setIf(props, "description", u.Description)
	setIf(props, "transcript", u.Transcript)
	setIf(props, "feedback", u.Feedback)
	return props
}

func NewPodcast(in PodcastInput, now time.Time) *Podcast {
	ts := Timestamp(now)
	p := &Podcast{UUID: uuid.NewString(), Title: in.Title, Timestamp: ts, LastEdited: ts}
	u := in.Update()
	for dst, src := range map[*string]*string{
		&p.Date:        u.Date,
		&p.URL:         u.URL,
		&p.Description: u.Description,
		&p.Content:     u.Content,
		&p.Transcript:  u.Transcript,
		&p.Feedback:    u.Feedback,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return p
}

func (p *Podcast) Label() string             { return string(LabelPodcast) }
func (p *Podcast) PrimaryKey() (string, any) { return "title", p.Title }
func (p *Podcast) Ref() OwnerRef             { return OwnerRef{Label: LabelPodcast, Key: p.Title} }
func (p *Podcast) Body() string              { return p.Content }

func (p *Podcast) Properties() map[string]any {
	return map[string]any{
		"uuid":        p.UUID,
		"title":       p.Title,
		"date":        p.Date,
		"url":         p.URL,
		"description": p.Description,
		"content":     p.Content,
		"transcript":  p.Transcript,
		"feedback":    p.Feedback,
		"timestamp":   p.Timestamp,
		"last_edited": p.LastEdited,
	}
}
