package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/repository"
)

type CommentService struct {
	store    graphdb.Store
	comments *repository.CommentRepository
	articles *repository.ArticleRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewCommentService(store graphdb.Store, comments *repository.CommentRepository, articles *repository.ArticleRepository, log *logger.Logger) *CommentService {
	return &CommentService{store: store, comments: comments, articles: articles, log: log, now: time.Now}
}

// Submit stores a reader comment on the article with slug. parentID names
// the comment being answered when target is ReplyToComment.
func (s *CommentService) Submit(ctx context.Context, slug string, target models.ReplyTarget, parentID string, form models.CommentForm) (*models.Comment, error) {
	content := strings.TrimSpace(form.Comment)
	username := strings.TrimSpace(form.Username)
	email := strings.ToLower(strings.TrimSpace(form.Email))
	switch {
	case content == "":
		return nil, invalid("comment is required")
	case username == "":
		return nil, invalid("username is required")
	case email == "":
		return nil, invalid("email is required")
	}
	switch target {
	case models.ReplyToArticle:
	case models.ReplyToComment:
		if parentID == "" {
			return nil, invalid("parent_id is required when replying to a comment")
		}
	default:
		return nil, invalid("parent must be %q or %q", models.ReplyToArticle, models.ReplyToComment)
	}

	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound("article %q", slug)
	}

	user := models.NewUser(username, email)
	comment := models.NewComment(content, s.now())
	err = s.store.WriteTx(ctx, func(tx graphdb.Runner) error {
		if err := s.comments.UpsertUser(ctx, tx, user); err != nil {
			return err
		}
		found, err := s.comments.Create(ctx, tx, comment, email, slug, target, parentID)
		if err != nil {
			return err
		}
		if !found {
			return notFound("comment %q on article %q", parentID, slug)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit comment: %w", err)
	}
	s.log.Info("Comment created", "slug", slug, "uuid", comment.UUID, "target", string(target))
	return comment, nil
}
