package ingest

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns refreshed when an upsert hits an existing grant_id. Everything the
// transformer populates is merged; created_at keeps the first-seen time.
var grantMergeColumns = []string{
	"grant_number",
	"agency_code",
	"award_ceiling",
	"award_floor",
	"cost_sharing",
	"title",
	"cfda_list",
	"open_date",
	"close_date",
	"description",
	"eligibility_codes",
	"opportunity_category",
	"opportunity_status",
	"status",
	"notes",
	"search_terms",
	"reviewer_name",
	"raw_body",
	"updated_at",
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&GrantRecord{})
}

// Upsert inserts the record, merging into the existing row on grant_id
// conflict. Safe to call any number of times for the same grant; the stored
// row reflects the most recent merge.
func (r *Repository) Upsert(ctx context.Context, rec *GrantRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "grant_id"}},
		DoUpdates: clause.AssignmentColumns(grantMergeColumns),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("upserting grant %s: %w", rec.GrantID, err)
	}
	return nil
}
