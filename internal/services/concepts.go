package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/repository"
	"conceptblog/internal/utils"
)

const (
	popupTTL      = 10 * time.Minute
	conceptsTTL   = 5 * time.Minute
	homeConceptsK = "concepts:home"
)

// Related concept lookup, implemented by Enricher.
type RelatedFinder interface {
	Related(ctx context.Context, concept string) ([]models.Related, error)
}

type ConceptGroup struct {
	Letter   string
	Concepts []repository.ConceptListing
}

type ConceptPopup struct {
	Concept *models.Concept
	Related []models.Related
}

type ConceptService struct {
	writer   *ContentWriter
	concepts *repository.ConceptRepository
	store    graphdb.Store
	cache    *utils.Cache
	related  RelatedFinder
	log      *logger.Logger
	now      func() time.Time
}

// NewConceptService wires the concept service. related may be nil when
// enrichment is off.
func NewConceptService(writer *ContentWriter, store graphdb.Store, concepts *repository.ConceptRepository, cache *utils.Cache, related RelatedFinder, log *logger.Logger) *ConceptService {
	s := &ConceptService{
		writer:   writer,
		concepts: concepts,
		store:    store,
		cache:    cache,
		related:  related,
		log:      log,
		now:      time.Now,
	}
	return s
}

// Upsert writes a concept's own content. The concept then owns HAS_CONCEPT
// edges to the concepts its content marks.
func (s *ConceptService) Upsert(ctx context.Context, in models.ConceptInput) (*models.Concept, bool, error) {
	display := strings.TrimSpace(in.Name)
	name := models.NormalizeConceptName(display)
	if name == "" {
		return nil, false, invalid("name is required")
	}
	if in.Content == nil {
		return nil, false, invalid("content is required")
	}

	upd := in.Update()
	if strings.TrimSpace(*upd.Content) == "" {
		return nil, false, invalid("content must not be empty")
	}

	c := models.NewConcept(display, *upd.Content, s.now())
	var created bool
	_, err := s.writer.WriteOwner(ctx, c, func(tx graphdb.Runner) error {
		var err error
		created, err = repository.UpsertConcept(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("save concept %q: %w", name, err)
	}
	s.log.Info("Concept saved", "name", name, "created", created)

	s.enrich(ctx, name)
	c, err = s.concepts.Find(ctx, name)
	return c, created, err
}

// enrich refreshes RELATED_TO edges. Failures only cost the suggestions.
func (s *ConceptService) enrich(ctx context.Context, name string) {
	if s.related == nil {
		return
	}
	related, err := s.related.Related(ctx, name)
	if IsBreakerOpen(err) {
		s.log.Debug("Concept enrichment skipped, circuit open", "name", name)
		return
	}
	if err != nil {
		s.log.Warn("Concept enrichment failed", "name", name, "error", err)
		return
	}
	err = s.store.WriteTx(ctx, func(tx graphdb.Runner) error {
		return s.concepts.SetRelated(ctx, tx, name, related, s.now())
	})
	if err != nil {
		s.log.Warn("Failed to store related concepts", "name", name, "error", err)
		return
	}
	s.cache.Delete(popupKey(name))
}

func popupKey(name string) string {
	return "concept:popup:" + models.NormalizeConceptName(name)
}

// Popup returns the hover card data for a concept marker.
func (s *ConceptService) Popup(ctx context.Context, name string) (*ConceptPopup, error) {
	key := popupKey(name)
	if v, ok := s.cache.Get(key).(*ConceptPopup); ok {
		return v, nil
	}

	c, err := s.concepts.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("concept %q", name)
	}
	related, err := s.concepts.Related(ctx, name)
	if err != nil {
		return nil, err
	}

	p := &ConceptPopup{Concept: c, Related: related}
	s.cache.Set(key, p, popupTTL)
	return p, nil
}

// Index groups every concept by its first letter, both levels sorted.
func (s *ConceptService) Index(ctx context.Context) ([]ConceptGroup, error) {
	listings, err := s.concepts.WithLinks(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByLetter(listings), nil
}

// InArticles returns concepts with their published-article counts for the
// home page.
func (s *ConceptService) InArticles(ctx context.Context) ([]repository.ConceptCount, error) {
	if v, ok := s.cache.Get(homeConceptsK).([]repository.ConceptCount); ok {
		return v, nil
	}
	counts, err := s.concepts.InArticles(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(homeConceptsK, counts, conceptsTTL)
	return counts, nil
}

// GroupByLetter buckets concepts under the upper-cased first rune of their
// name. Names starting with anything but a letter share the "#" bucket.
func GroupByLetter(listings []repository.ConceptListing) []ConceptGroup {
	buckets := map[string][]repository.ConceptListing{}
	for _, l := range listings {
		if l.Concept == nil || l.Concept.Name == "" {
			continue
		}
		letter := "#"
		if r, _ := utf8.DecodeRuneInString(l.Concept.Name); unicode.IsLetter(r) {
			letter = string(unicode.ToUpper(r))
		}
		buckets[letter] = append(buckets[letter], l)
	}

	out := make([]ConceptGroup, 0, len(buckets))
	for letter, items := range buckets {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Concept.Name < items[j].Concept.Name })
		out = append(out, ConceptGroup{Letter: letter, Concepts: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}
