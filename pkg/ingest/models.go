package ingest

import "time"

const (
	// StatusInbox marks a freshly ingested grant awaiting downstream review.
	StatusInbox = "inbox"

	// OpportunityStatusPosted is the status of every newly ingested opportunity.
	OpportunityStatusPosted = "posted"

	// SentinelCloseDate is substituted when a close date is absent or unparsable.
	SentinelCloseDate = "2100-01-01"

	defaultNotes        = "auto-inserted by script"
	defaultSearchTerms  = "[in title/desc]+"
	defaultReviewerName = "none"
)

// GrantRecord is one row of the grants table. The grant ID is the upsert key;
// re-ingesting the same ID merges into the existing row instead of creating a
// duplicate. Award amounts are nil when the source value is not an integer.
type GrantRecord struct {
	GrantID             string    `json:"grant_id" gorm:"primaryKey;column:grant_id"`
	GrantNumber         string    `json:"grant_number" gorm:"column:grant_number"`
	AgencyCode          string    `json:"agency_code" gorm:"column:agency_code"`
	AwardCeiling        *int64    `json:"award_ceiling,omitempty" gorm:"column:award_ceiling"`
	AwardFloor          *int64    `json:"award_floor,omitempty" gorm:"column:award_floor"`
	CostSharing         string    `json:"cost_sharing" gorm:"column:cost_sharing"`
	Title               string    `json:"title" gorm:"column:title"`
	CFDAList            string    `json:"cfda_list" gorm:"column:cfda_list"`
	OpenDate            string    `json:"open_date" gorm:"column:open_date"`
	CloseDate           string    `json:"close_date" gorm:"column:close_date"`
	Description         string    `json:"description" gorm:"column:description"`
	EligibilityCodes    string    `json:"eligibility_codes" gorm:"column:eligibility_codes"`
	OpportunityCategory string    `json:"opportunity_category" gorm:"column:opportunity_category"`
	OpportunityStatus   string    `json:"opportunity_status" gorm:"column:opportunity_status"`
	Status              string    `json:"status" gorm:"column:status"`
	Notes               string    `json:"notes" gorm:"column:notes"`
	SearchTerms         string    `json:"search_terms" gorm:"column:search_terms"`
	ReviewerName        string    `json:"reviewer_name" gorm:"column:reviewer_name"`
	RawBody             string    `json:"raw_body" gorm:"column:raw_body;type:text"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (GrantRecord) TableName() string {
	return "grants"
}
