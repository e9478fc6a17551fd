package repository

import (
	"context"
	"fmt"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

type CommentRepository struct {
	store graphdb.Store
}

func NewCommentRepository(store graphdb.Store) *CommentRepository {
	return &CommentRepository{store: store}
}

// UpsertUser keeps one User per email. The username chosen on first
// comment sticks.
func (r *CommentRepository) UpsertUser(ctx context.Context, tx graphdb.Runner, u *models.User) error {
	_, err := tx.Run(ctx, "MERGE (u:User {email: $email}) ON CREATE SET u.username = $username",
		map[string]any{"email": u.Email, "username": u.Username})
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

const (
	replyToArticleCypher = `
MATCH (u:User {email: $email})
MATCH (parent:Article {slug: $slug})`
	replyToCommentCypher = `
MATCH (u:User {email: $email})
MATCH (parent:Comment {uuid: $parent})-[:AS_REPLY_TO*1..]->(:Article {slug: $slug})`
	attachCommentCypher = `
WITH u, parent LIMIT 1
CREATE (c:Comment)
SET c = $props
CREATE (u)-[:WROTE]->(c)
CREATE (c)-[:AS_REPLY_TO]->(parent)
RETURN c.uuid AS uuid`
)

// Create stores a comment by the user with email as a reply to the article
// with slug, or to parentID within that article's threads. found is false
// when the reply target does not exist.
func (r *CommentRepository) Create(ctx context.Context, tx graphdb.Runner, c *models.Comment, email, slug string, target models.ReplyTarget, parentID string) (found bool, err error) {
	var cypher string
	switch target {
	case models.ReplyToArticle:
		cypher = replyToArticleCypher + attachCommentCypher
	case models.ReplyToComment:
		cypher = replyToCommentCypher + attachCommentCypher
	default:
		return false, fmt.Errorf("unknown reply target %q", target)
	}

	rows, err := tx.Run(ctx, cypher, map[string]any{
		"email":  email,
		"slug":   slug,
		"parent": parentID,
		"props":  c.Properties(),
	})
	if err != nil {
		return false, fmt.Errorf("create comment: %w", err)
	}
	return len(rows) > 0, nil
}
