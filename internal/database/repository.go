package database

import (
	"time"

	"github.com/winfind/winfind/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles all database operations for usage records and search
// history.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertUsage writes the current selection count for a signature.
func (r *Repository) UpsertUsage(signature string, count int, lastSelected time.Time) error {
	record := models.UsageRecord{
		Signature:    signature,
		Count:        count,
		LastSelected: lastSelected,
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signature"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "last_selected", "updated_at"}),
	}).Create(&record)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to upsert usage record")
	}
	return nil
}

// LoadUsage retrieves every usage record.
func (r *Repository) LoadUsage() ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	result := r.db.Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to load usage records")
	}
	return records, nil
}

// TopSelections returns the most-selected signatures, highest count first.
func (r *Repository) TopSelections(limit int) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	result := r.db.Order("count DESC, last_selected DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query top selections")
	}
	return records, nil
}

// ReplaceQueries rewrites the whole persisted search history in
// most-recent-first order. The history is small (capped at 50) so a full
// rewrite inside one transaction is simpler than diffing positions.
func (r *Repository) ReplaceQueries(queries []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM search_queries").Error; err != nil {
			return err
		}
		for i, q := range queries {
			entry := models.SearchQuery{Text: q, Position: i}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to replace search history")
	}
	return nil
}

// LoadQueries retrieves the search history, most recent first.
func (r *Repository) LoadQueries() ([]string, error) {
	var entries []models.SearchQuery
	result := r.db.Order("position ASC").Find(&entries)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to load search history")
	}
	queries := make([]string, len(entries))
	for i, e := range entries {
		queries[i] = e.Text
	}
	return queries, nil
}

// Clear removes all usage records and search history.
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM usage_records"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear usage records")
	}
	if result := r.db.Exec("DELETE FROM search_queries"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear search history")
	}
	return nil
}
