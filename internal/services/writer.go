package services

import (
	"context"
	"fmt"
	"time"

	"conceptblog/internal/concepts"
	"conceptblog/internal/config"
	"conceptblog/internal/graphdb"
	"conceptblog/internal/ledger"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/repository"
)

// IssueRecorder is the part of the reconciliation ledger the writer uses.
type IssueRecorder interface {
	Record(ctx context.Context, owner models.OwnerRef, cause error) (*ledger.ReconcileIssue, error)
	Resolve(ctx context.Context, owner models.OwnerRef) error
}

// ContentWriter commits owner writes together with the concept edge
// rebuild their content requires.
type ContentWriter struct {
	store    graphdb.Store
	sync     *concepts.Synchronizer
	mode     string
	issues   IssueRecorder
	log      *logger.Logger
	onChange []func()
	now      func() time.Time
}

func NewContentWriter(store graphdb.Store, sync *concepts.Synchronizer, mode string, issues IssueRecorder, log *logger.Logger) *ContentWriter {
	if mode == "" {
		mode = config.SyncAtomic
	}
	return &ContentWriter{
		store:  store,
		sync:   sync,
		mode:   mode,
		issues: issues,
		log:    log.With("component", "content_writer"),
		now:    time.Now,
	}
}

// OnChange registers a hook run after every successful write, e.g. to
// drop cached pages.
func (w *ContentWriter) OnChange(fn func()) {
	w.onChange = append(w.onChange, fn)
}

func (w *ContentWriter) changed() {
	for _, fn := range w.onChange {
		fn()
	}
}

// Write runs write and, when content is non-nil, rebuilds owner's concept
// edges from it.
//
// In atomic mode both happen in one transaction. In split mode the write
// commits first; a failed rebuild is logged and recorded in the ledger while
// Write still reports success.
func (w *ContentWriter) Write(ctx context.Context, owner models.OwnerRef, write func(tx graphdb.Runner) error, content *string) (concepts.Result, error) {
	var res concepts.Result

	if content == nil {
		if err := w.store.WriteTx(ctx, write); err != nil {
			return res, err
		}
		w.changed()
		return res, nil
	}

	if w.mode != config.SyncSplit {
		err := w.store.WriteTx(ctx, func(tx graphdb.Runner) error {
			if err := write(tx); err != nil {
				return err
			}
			var err error
			res, err = w.sync.Reconcile(ctx, tx, owner, *content)
			return err
		})
		if err != nil {
			return concepts.Result{}, err
		}
		w.changed()
		return res, nil
	}

	if err := w.store.WriteTx(ctx, write); err != nil {
		return res, err
	}
	w.changed()

	err := w.store.WriteTx(ctx, func(tx graphdb.Runner) error {
		var err error
		res, err = w.sync.Reconcile(ctx, tx, owner, *content)
		return err
	})
	if err != nil {
		w.log.Error("Concept edge rebuild failed after content commit",
			"owner", owner.String(), "error", err)
		w.record(ctx, owner, err)
		return concepts.Result{}, nil
	}
	return res, nil
}

// WriteOwner is Write for a new owner: its whole body is reconciled.
func (w *ContentWriter) WriteOwner(ctx context.Context, owner models.ContentOwner, write func(tx graphdb.Runner) error) (concepts.Result, error) {
	body := owner.Body()
	return w.Write(ctx, owner.Ref(), write, &body)
}

func (w *ContentWriter) record(ctx context.Context, owner models.OwnerRef, cause error) {
	if w.issues == nil {
		return
	}
	if _, err := w.issues.Record(ctx, owner, cause); err != nil {
		w.log.Error("Failed to record reconcile issue", "owner", owner.String(), "error", err)
	}
}

// Resync rebuilds owner's edges from its stored content and closes any
// open ledger issue for it.
func (w *ContentWriter) Resync(ctx context.Context, owner models.OwnerRef) (concepts.Result, error) {
	var res concepts.Result
	err := w.store.WriteTx(ctx, func(tx graphdb.Runner) error {
		content, found, err := repository.OwnerContent(ctx, tx, owner)
		if err != nil {
			return err
		}
		if !found {
			return notFound("%s", owner)
		}
		res, err = w.sync.Reconcile(ctx, tx, owner, content)
		return err
	})
	if err != nil {
		return concepts.Result{}, fmt.Errorf("resync %s: %w", owner, err)
	}
	w.changed()
	if w.issues != nil {
		if err := w.issues.Resolve(ctx, owner); err != nil {
			w.log.Warn("Failed to resolve reconcile issue", "owner", owner.String(), "error", err)
		}
	}
	return res, nil
}
