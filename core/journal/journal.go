package journal

import (
	"context"
	"fmt"
	"time"

	"cloud-manager/core/reconcile"

	"gorm.io/gorm"
)

// Outcome values stored in Entry.Outcome.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Entry is one recorded create or update attempt.
type Entry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        string    `gorm:"size:36;index" json:"run_id"`
	ResourceType string    `gorm:"size:64;index:idx_resource" json:"resource_type"`
	ResourceKey  string    `gorm:"size:255;index:idx_resource" json:"resource_key"`
	Action       string    `gorm:"size:16" json:"action"`
	Outcome      string    `gorm:"size:16" json:"outcome"`
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the journal table name.
func (Entry) TableName() string {
	return "sync_journal"
}

// Journal writes sync outcomes to the database. It implements
// reconcile.Recorder.
type Journal struct {
	db *gorm.DB
}

// New creates a journal on db.
func New(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates or updates the journal table.
func (j *Journal) Migrate(ctx context.Context) error {
	if err := j.db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

// Record implements reconcile.Recorder.
func (j *Journal) Record(ctx context.Context, o reconcile.Outcome) error {
	entry := Entry{
		RunID:        o.RunID,
		ResourceType: o.ResourceType,
		ResourceKey:  o.Key,
		Action:       string(o.Action),
		Outcome:      OutcomeSucceeded,
	}
	if o.Err != nil {
		entry.Outcome = OutcomeFailed
		entry.Error = o.Err.Error()
	}

	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries for a resource, newest first.
func (j *Journal) Recent(ctx context.Context, resourceType, key string, limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.WithContext(ctx).
		Where("resource_type = ? AND resource_key = ?", resourceType, key).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	return entries, nil
}
