package models

import (
	"time"

	"github.com/google/uuid"
)

// ReplyTarget says what a new comment answers.
type ReplyTarget string

const (
	ReplyToArticle ReplyTarget = "article"
	ReplyToComment ReplyTarget = "comment"
)

type Comment struct {
	UUID      string `json:"uuid"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// CommentForm is the article page comment form.
type CommentForm struct {
	Username string `form:"username" binding:"required,max=64"`
	Email    string `form:"email" binding:"required,email"`
	Comment  string `form:"comment" binding:"required,max=5000"`
}

func NewComment(content string, now time.Time) *Comment {
	return &Comment{UUID: uuid.NewString(), Content: content, Timestamp: Timestamp(now)}
}

func (c *Comment) Label() string             { return string(LabelComment) }
func (c *Comment) PrimaryKey() (string, any) { return "uuid", c.UUID }

func (c *Comment) Properties() map[string]any {
	return map[string]any{
		"uuid":      c.UUID,
		"content":   c.Content,
		"timestamp": c.Timestamp,
	}
}
