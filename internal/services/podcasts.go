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

type PodcastService struct {
	writer   *ContentWriter
	podcasts *repository.PodcastRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewPodcastService(writer *ContentWriter, podcasts *repository.PodcastRepository, log *logger.Logger) *PodcastService {
	return &PodcastService{writer: writer, podcasts: podcasts, log: log, now: time.Now}
}

func (s *PodcastService) List(ctx context.Context) ([]*models.Podcast, error) {
	return s.podcasts.List(ctx)
}

func (s *PodcastService) Upsert(ctx context.Context, in models.PodcastInput) (*models.Podcast, bool, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, false, invalid("title is required")
	}

	existing, err := s.podcasts.Find(ctx, in.Title)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		p := models.NewPodcast(in, s.now())
		_, err := s.writer.WriteOwner(ctx, p, func(tx graphdb.Runner) error {
			return repository.CreateOwner(ctx, tx, p)
		})
		if err != nil {
			return nil, false, conflictOr(err, fmt.Sprintf("podcast %q", p.Title))
		}
		s.log.Info("Podcast created", "title", p.Title)
		return p, true, nil
	}

	upd := in.Update()
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
		return nil, false, fmt.Errorf("update podcast %q: %w", in.Title, err)
	}
	s.log.Info("Podcast updated", "title", in.Title)

	p, err := s.podcasts.Find(ctx, in.Title)
	return p, false, err
}

// Exists reports whether an episode with title is stored.
func (s *PodcastService) Exists(ctx context.Context, title string) (bool, error) {
	p, err := s.podcasts.Find(ctx, title)
	return p != nil, err
}
