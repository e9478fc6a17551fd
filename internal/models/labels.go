package models

import (
	"fmt"
	"strings"
	"time"
)

// Label is a persisted node label. Cypher text only ever receives values
// from this fixed set.
type Label string

const (
	LabelArticle Label = "Article"
	LabelNote    Label = "Note"
	LabelLink    Label = "Link"
	LabelPodcast Label = "Podcast"
	LabelConcept Label = "Concept"
	LabelComment Label = "Comment"
	LabelUser    Label = "User"
)

// Relationship types.
const (
	RelHasConcept = "HAS_CONCEPT"
	RelAsReplyTo  = "AS_REPLY_TO"
	RelWrote      = "WROTE"
	RelRelatedTo  = "RELATED_TO"
)

// KeyProperty is the unique property each label is addressed by.
func (l Label) KeyProperty() string {
	switch l {
	case LabelConcept:
		return "name"
	case LabelComment:
		return "uuid"
	case LabelUser:
		return "email"
	default:
		return "title"
	}
}

// IsOwner reports whether nodes with this label own HAS_CONCEPT edges.
func (l Label) IsOwner() bool {
	switch l {
	case LabelArticle, LabelNote, LabelLink, LabelPodcast, LabelConcept:
		return true
	}
	return false
}

// ParseOwnerLabel maps a user-supplied kind ("article", "Note", ...) to an
// owner label.
func ParseOwnerLabel(s string) (Label, error) {
	for _, l := range []Label{LabelArticle, LabelNote, LabelLink, LabelPodcast, LabelConcept} {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown owner kind %q", s)
}

// OwnerRef identifies an owner node by label and key value.
type OwnerRef struct {
	Label Label  `json:"label"`
	Key   string `json:"key"`
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s{%s: %q}", o.Label, o.Label.KeyProperty(), o.Key)
}

// ContentOwner is any node whose HTML content carries concept markers.
type ContentOwner interface {
	Ref() OwnerRef
	Body() string
}

// ConceptRef is one HAS_CONCEPT edge as projected by listing queries:
// the target concept's name plus the stored mention sentences.
type ConceptRef struct {
	Name     string   `json:"name"`
	Mentions []string `json:"mentions"`
}

// Timestamp formats t the way every node stores time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// NormalizeConceptName returns the key a concept is stored under.
func NormalizeConceptName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func setIf[T any](props map[string]any, key string, v *T) {
	if v != nil {
		props[key] = *v
	}
}
