package services

import (
	"context"
	"strings"

	"conceptblog/internal/concepts"
	"conceptblog/internal/ledger"
	"conceptblog/internal/models"
)

// IssueStore is the read side of the ledger used by the admin pages.
type IssueStore interface {
	IssueRecorder
	Open(ctx context.Context) ([]ledger.ReconcileIssue, error)
	Get(ctx context.Context, id uint) (*ledger.ReconcileIssue, error)
}

type ReconcileService struct {
	writer *ContentWriter
	issues IssueStore
}

func NewReconcileService(writer *ContentWriter, issues IssueStore) *ReconcileService {
	return &ReconcileService{writer: writer, issues: issues}
}

func (s *ReconcileService) Open(ctx context.Context) ([]ledger.ReconcileIssue, error) {
	return s.issues.Open(ctx)
}

// Retry rebuilds the edges of the owner behind issue id. A failed retry
// is recorded against the same issue.
func (s *ReconcileService) Retry(ctx context.Context, id uint) (concepts.Result, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return concepts.Result{}, err
	}
	if issue == nil {
		return concepts.Result{}, notFound("reconcile issue %d", id)
	}
	if issue.ResolvedAt != nil {
		return concepts.Result{}, invalid("reconcile issue %d is already resolved", id)
	}

	res, err := s.writer.Resync(ctx, issue.Owner())
	if err != nil {
		if _, lerr := s.issues.Record(ctx, issue.Owner(), err); lerr != nil {
			s.writer.log.Error("Failed to record reconcile issue", "id", id, "error", lerr)
		}
		return concepts.Result{}, err
	}
	return res, nil
}

// ResyncOwner rebuilds the edges of any owner, named by kind ("article",
// "concept", ...) and key, whether or not an issue was recorded for it.
func (s *ReconcileService) ResyncOwner(ctx context.Context, kind, key string) (concepts.Result, error) {
	label, err := models.ParseOwnerLabel(kind)
	if err != nil {
		return concepts.Result{}, invalid("%v", err)
	}
	key = strings.TrimSpace(key)
	if label == models.LabelConcept {
		key = models.NormalizeConceptName(key)
	}
	if key == "" {
		return concepts.Result{}, invalid("key is required")
	}
	return s.writer.Resync(ctx, models.OwnerRef{Label: label, Key: key})
}
