package graphdb

import (
	"context"

	"conceptblog/internal/logger"
)

var schemaStatements = []string{
	`CREATE CONSTRAINT article_uuid IF NOT EXISTS FOR (a:Article) REQUIRE a.uuid IS UNIQUE`,
	`CREATE CONSTRAINT article_title IF NOT EXISTS FOR (a:Article) REQUIRE a.title IS UNIQUE`,
	`CREATE CONSTRAINT note_title IF NOT EXISTS FOR (n:Note) REQUIRE n.title IS UNIQUE`,
	`CREATE CONSTRAINT link_title IF NOT EXISTS FOR (l:Link) REQUIRE l.title IS UNIQUE`,
	`CREATE CONSTRAINT podcast_title IF NOT EXISTS FOR (p:Podcast) REQUIRE p.title IS UNIQUE`,
	`CREATE CONSTRAINT concept_name IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`,
	`CREATE CONSTRAINT comment_uuid IF NOT EXISTS FOR (c:Comment) REQUIRE c.uuid IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE INDEX article_slug IF NOT EXISTS FOR (a:Article) ON (a.slug)`,
	`CREATE FULLTEXT INDEX articleContent IF NOT EXISTS FOR (a:Article) ON EACH [a.title, a.content, a.author, a.summary]`,
}

// EnsureSchema creates the uniqueness constraints MERGE relies on plus the
// article full-text index. Failures are logged and skipped so that restricted
// database users can still start the server.
func EnsureSchema(ctx context.Context, r Runner, log *logger.Logger) {
	for _, stmt := range schemaStatements {
		if _, err := r.Run(ctx, stmt, nil); err != nil {
			log.Warn("neo4j schema init failed (continuing)", "statement", stmt, "error", err)
		}
	}
}
