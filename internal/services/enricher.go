package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"conceptblog/internal/config"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
)

// Enricher looks up related terms for a concept in ConceptNet. Calls go
// through a circuit breaker so an unreachable API stops being hit, and
// transient failures are retried with exponential backoff.
type Enricher struct {
	baseURL    string
	limit      int
	maxRetries uint64
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *logger.Logger
}

func NewEnricher(cfg config.Enrichment, log *logger.Logger) *Enricher {
	log = log.With("component", "enricher")
	limit := cfg.Limit
	if limit <= 0 {
		limit = 5
	}
	return &Enricher{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limit:      limit,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "conceptnet",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
		log: log,
	}
}

type conceptNetResponse struct {
	Related []struct {
		ID     string  `json:"@id"`
		Weight float64 `json:"weight"`
	} `json:"related"`
}

// Related returns up to limit English neighbours of concept, strongest
// first.
func (e *Enricher) Related(ctx context.Context, concept string) ([]models.Related, error) {
	term := conceptNetTerm(concept)
	if term == "" {
		return nil, nil
	}

	v, err := e.breaker.Execute(func() (interface{}, error) {
		var body conceptNetResponse
		op := func() error {
			var err error
			body, err = e.fetch(ctx, term)
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("conceptnet lookup %q: %w", concept, err)
	}
	return e.toRelated(term, v.(conceptNetResponse)), nil
}

func (e *Enricher) fetch(ctx context.Context, term string) (conceptNetResponse, error) {
	var body conceptNetResponse
	endpoint := fmt.Sprintf("%s/related/c/en/%s?filter=/c/en&limit=%d", e.baseURL, url.PathEscape(term), e.limit+1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return body, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return body, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return body, fmt.Errorf("conceptnet: HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return body, backoff.Permanent(fmt.Errorf("conceptnet: HTTP %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return body, backoff.Permanent(fmt.Errorf("decode conceptnet response: %w", err))
	}
	return body, nil
}

func (e *Enricher) toRelated(term string, body conceptNetResponse) []models.Related {
	out := make([]models.Related, 0, e.limit)
	for _, item := range body.Related {
		name := strings.TrimPrefix(item.ID, "/c/en/")
		if name == item.ID || name == term {
			continue
		}
		out = append(out, models.Related{Name: strings.ReplaceAll(name, "_", " "), Weight: item.Weight})
		if len(out) == e.limit {
			break
		}
	}
	return out
}

// conceptNetTerm maps "Spaced Repetition" to "spaced_repetition".
func conceptNetTerm(concept string) string {
	return strings.Join(strings.Fields(models.NormalizeConceptName(concept)), "_")
}

// IsBreakerOpen reports whether err came from an open circuit.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
