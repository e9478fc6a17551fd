package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/pagination"
	"conceptblog/internal/parser"
	"conceptblog/internal/repository"
	"conceptblog/internal/threads"
	"conceptblog/internal/utils"
)

const similarLimit = 3

// ArticleDetail is everything the article page shows.
type ArticleDetail struct {
	Article      *models.Article
	Threads      []threads.CommentThread
	CommentCount int
	Similar      []*models.Article
}

type ArticleService struct {
	writer   *ContentWriter
	articles *repository.ArticleRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewArticleService(writer *ContentWriter, articles *repository.ArticleRepository, log *logger.Logger) *ArticleService {
	return &ArticleService{writer: writer, articles: articles, log: log, now: time.Now}
}

// Upsert creates the article named by in.Title or updates the fields in
// that are set. created reports which happened.
func (s *ArticleService) Upsert(ctx context.Context, in models.ArticleInput) (*models.Article, bool, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, false, invalid("title is required")
	}

	existing, err := s.articles.FindByTitle(ctx, in.Title)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		a, err := s.create(ctx, in)
		return a, true, err
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
		summary := map[string]any{"summary": parser.ParseSummary(*upd.Content)}
		return repository.SetOwnerContent(ctx, tx, ref, *upd.Content, summary, s.now())
	}, upd.Content)
	if err != nil {
		return nil, false, fmt.Errorf("update article %q: %w", in.Title, err)
	}
	s.log.Info("Article updated", "title", in.Title)

	a, err := s.articles.FindByTitle(ctx, in.Title)
	return a, false, err
}

func (s *ArticleService) create(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	if in.Author == nil || strings.TrimSpace(*in.Author) == "" {
		return nil, invalid("author is required")
	}
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, invalid("content is required")
	}

	a := models.NewArticle(in, parser.ParseSummary(*in.Content), s.now())
	if a.Slug == "" {
		return nil, invalid("title %q has no usable characters for a slug", in.Title)
	}

	_, err := s.writer.WriteOwner(ctx, a, func(tx graphdb.Runner) error {
		taken, err := s.articles.SlugOwner(ctx, tx, a.Slug)
		if err != nil {
			return err
		}
		if taken != "" {
			return fmt.Errorf("%w: slug %q is used by %q", ErrConflict, a.Slug, taken)
		}
		return repository.CreateOwner(ctx, tx, a)
	})
	if err != nil {
		return nil, conflictOr(err, fmt.Sprintf("article %q", a.Title))
	}
	s.log.Info("Article created", "title", a.Title, "slug", a.Slug)
	return a, nil
}

// Detail loads an article page by slug.
func (s *ArticleService) Detail(ctx context.Context, slug string) (*ArticleDetail, error) {
	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound("article %q", slug)
	}

	d := &ArticleDetail{Article: a}
	if d.Threads, err = s.articles.Threads(ctx, slug); err != nil {
		return nil, err
	}
	d.CommentCount = threads.Count(d.Threads)

	// similar articles are a nicety; the page renders without them
	if d.Similar, err = s.articles.Similar(ctx, slug, similarLimit); err != nil {
		s.log.Warn("Failed to load similar articles", "slug", slug, "error", err)
		d.Similar = nil
	}
	return d, nil
}

// Popup returns the article behind an article-link hover card.
func (s *ArticleService) Popup(ctx context.Context, slug string) (*models.Article, error) {
	a, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound("article %q", slug)
	}
	return a, nil
}

func (s *ArticleService) Published(ctx context.Context, endpoint string, page, perPage int) (pagination.Paginated[*models.Article], error) {
	skip, limit := pagination.Window(page, perPage)
	rows, err := s.articles.Published(ctx, skip, limit)
	if err != nil {
		return pagination.Paginated[*models.Article]{}, err
	}
	return pagination.Paginate(endpoint, rows, page, perPage, nil), nil
}

// AllPublished is the unpaginated list used on the home page.
func (s *ArticleService) AllPublished(ctx context.Context) ([]*models.Article, error) {
	return s.articles.Published(ctx, 0, 0)
}

func (s *ArticleService) ByConcept(ctx context.Context, endpoint, concept string, page, perPage int) (pagination.Paginated[*models.Article], error) {
	skip, limit := pagination.Window(page, perPage)
	rows, err := s.articles.ByConcept(ctx, concept, skip, limit)
	if err != nil {
		return pagination.Paginated[*models.Article]{}, err
	}
	return pagination.Paginate(endpoint, rows, page, perPage, url.Values{"concept": {concept}}), nil
}

func (s *ArticleService) Search(ctx context.Context, endpoint, query string, page, perPage int) (pagination.Paginated[*models.Article], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return pagination.Paginated[*models.Article]{}, invalid("search query is required")
	}
	skip, limit := pagination.Window(page, perPage)
	rows, err := s.articles.Search(ctx, query, skip, limit)
	if errors.Is(err, repository.ErrInvalidSearch) {
		return pagination.Paginated[*models.Article]{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return pagination.Paginated[*models.Article]{}, err
	}
	return pagination.Paginate(endpoint, rows, page, perPage, url.Values{"q": {query}}), nil
}

// Excerpt is the short text shown in listings: the summary when the author
// wrote one, else the start of the body.
func Excerpt(a *models.Article, n int) string {
	if a.Summary != "" {
		return a.Summary
	}
	return utils.Truncate(parser.PlainText(a.Content), n)
}
