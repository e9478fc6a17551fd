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

// Previewer fetches a short excerpt for a shared URL.
type Previewer interface {
	Excerpt(ctx context.Context, pageURL string) (string, error)
}

type LinkService struct {
	writer  *ContentWriter
	links   *repository.LinkRepository
	preview Previewer
	log     *logger.Logger
	now     func() time.Time
}

// NewLinkService wires the link service. preview may be nil.
func NewLinkService(writer *ContentWriter, links *repository.LinkRepository, preview Previewer, log *logger.Logger) *LinkService {
	return &LinkService{writer: writer, links: links, preview: preview, log: log, now: time.Now}
}

func (s *LinkService) List(ctx context.Context) ([]*models.Link, error) {
	return s.links.List(ctx)
}

func (s *LinkService) excerpt(ctx context.Context, pageURL string) *string {
	if s.preview == nil || pageURL == "" {
		return nil
	}
	text, err := s.preview.Excerpt(ctx, pageURL)
	if err != nil {
		s.log.Warn("Link preview failed", "url", pageURL, "error", err)
		return nil
	}
	return &text
}

func (s *LinkService) Upsert(ctx context.Context, in models.LinkInput) (*models.Link, bool, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, false, invalid("title is required")
	}

	existing, err := s.links.Find(ctx, in.Title)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		switch {
		case in.URL == nil || *in.URL == "":
			return nil, false, invalid("url is required")
		case in.Author == nil:
			return nil, false, invalid("author is required")
		case in.Content == nil:
			return nil, false, invalid("content is required")
		}
		l := models.NewLink(in, s.now())
		if text := s.excerpt(ctx, l.URL); text != nil {
			l.Excerpt = *text
		}
		_, err := s.writer.WriteOwner(ctx, l, func(tx graphdb.Runner) error {
			return repository.CreateOwner(ctx, tx, l)
		})
		if err != nil {
			return nil, false, conflictOr(err, fmt.Sprintf("link %q", l.Title))
		}
		s.log.Info("Link created", "title", l.Title, "url", l.URL)
		return l, true, nil
	}

	upd := in.Update()
	if upd.URL != nil && *upd.URL != existing.URL {
		upd.Excerpt = s.excerpt(ctx, *upd.URL)
	}
	props := upd.Properties()
	if len(props) == 0 && upd.Content == nil {
		return nil, false, invalid("no fields to update")
	}

	ref := existing.Ref()
	_, err = s.writer.Write(ctx, ref, func(tx graphdb.Runner) error {
		if err := repository.SetOwnerProperties(ctx, tx, ref, props); err != nil {
			return err
		}
		if upd.Content == nil {
			return nil
		}
		return repository.SetOwnerContent(ctx, tx, ref, *upd.Content, nil, s.now())
	}, upd.Content)
	if err != nil {
		return nil, false, fmt.Errorf("update link %q: %w", in.Title, err)
	}
	s.log.Info("Link updated", "title", in.Title)

	l, err := s.links.Find(ctx, in.Title)
	return l, false, err
}
