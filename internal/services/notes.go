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
	"conceptblog/internal/utils"
)

type NoteService struct {
	writer *ContentWriter
	notes  *repository.NoteRepository
	log    *logger.Logger
	now    func() time.Time
}

func NewNoteService(writer *ContentWriter, notes *repository.NoteRepository, log *logger.Logger) *NoteService {
	return &NoteService{writer: writer, notes: notes, log: log, now: time.Now}
}

func (s *NoteService) List(ctx context.Context) ([]*models.Note, error) {
	return s.notes.List(ctx)
}

func (s *NoteService) Upsert(ctx context.Context, in models.NoteInput) (*models.Note, bool, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, false, invalid("title is required")
	}
	if in.Content == nil {
		return nil, false, invalid("content is required")
	}

	existing, err := s.notes.Find(ctx, in.Title)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		n := models.NewNote(in, s.now())
		_, err := s.writer.WriteOwner(ctx, n, func(tx graphdb.Runner) error {
			return repository.CreateOwner(ctx, tx, n)
		})
		if err != nil {
			return nil, false, conflictOr(err, fmt.Sprintf("note %q", n.Title))
		}
		s.log.Info("Note created", "title", n.Title)
		return n, true, nil
	}

	upd := in.Update()
	ref := existing.Ref()
	_, err = s.writer.Write(ctx, ref, func(tx graphdb.Runner) error {
		extra := map[string]any{}
		if existing.Slug == "" {
			extra["slug"] = utils.Slugify(existing.Title)
		}
		return repository.SetOwnerContent(ctx, tx, ref, *upd.Content, extra, s.now())
	}, upd.Content)
	if err != nil {
		return nil, false, fmt.Errorf("update note %q: %w", in.Title, err)
	}
	s.log.Info("Note updated", "title", in.Title)

	n, err := s.notes.Find(ctx, in.Title)
	return n, false, err
}
