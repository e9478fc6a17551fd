// Package ledger records concept-edge rebuilds that failed after their
// content had already been committed, so an operator can retry them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"conceptblog/internal/models"
)

type ReconcileIssue struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OwnerLabel string     `gorm:"size:32;not null;index:idx_issue_owner" json:"owner_label"`
	OwnerKey   string     `gorm:"size:512;not null;index:idx_issue_owner" json:"owner_key"`
	Error      string     `gorm:"type:text" json:"error"`
	Attempts   int        `gorm:"default:1" json:"attempts"`
	ResolvedAt *time.Time `gorm:"index" json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (i ReconcileIssue) Owner() models.OwnerRef {
	return models.OwnerRef{Label: models.Label(i.OwnerLabel), Key: i.OwnerKey}
}

type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Record stores a failed rebuild. A second failure for the same owner
// updates the open issue instead of adding another.
func (l *Ledger) Record(ctx context.Context, owner models.OwnerRef, cause error) (*ReconcileIssue, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	var issue ReconcileIssue
	err := l.db.WithContext(ctx).
		Where("owner_label = ? AND owner_key = ? AND resolved_at IS NULL", string(owner.Label), owner.Key).
		First(&issue).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		issue = ReconcileIssue{OwnerLabel: string(owner.Label), OwnerKey: owner.Key, Error: msg, Attempts: 1}
		if err := l.db.WithContext(ctx).Create(&issue).Error; err != nil {
			return nil, fmt.Errorf("create reconcile issue: %w", err)
		}
		return &issue, nil
	case err != nil:
		return nil, fmt.Errorf("find reconcile issue: %w", err)
	}

	issue.Error = msg
	issue.Attempts++
	if err := l.db.WithContext(ctx).Save(&issue).Error; err != nil {
		return nil, fmt.Errorf("update reconcile issue: %w", err)
	}
	return &issue, nil
}

// Open lists unresolved issues, newest first.
func (l *Ledger) Open(ctx context.Context) ([]ReconcileIssue, error) {
	var issues []ReconcileIssue
	err := l.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("updated_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("list reconcile issues: %w", err)
	}
	return issues, nil
}

// Get returns nil, nil when the id is unknown.
func (l *Ledger) Get(ctx context.Context, id uint) (*ReconcileIssue, error) {
	var issue ReconcileIssue
	err := l.db.WithContext(ctx).First(&issue, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reconcile issue %d: %w", id, err)
	}
	return &issue, nil
}

// Resolve closes every open issue of owner.
func (l *Ledger) Resolve(ctx context.Context, owner models.OwnerRef) error {
	now := time.Now()
	err := l.db.WithContext(ctx).Model(&ReconcileIssue{}).
		Where("owner_label = ? AND owner_key = ? AND resolved_at IS NULL", string(owner.Label), owner.Key).
		Update("resolved_at", &now).Error
	if err != nil {
		return fmt.Errorf("resolve reconcile issues: %w", err)
	}
	return nil
}
