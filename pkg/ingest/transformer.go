package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Transformer maps one raw opportunity message body into a GrantRecord. It
// never panics past its boundary: every failure comes back as a
// TransformError with a classified reason.
type Transformer struct {
	categories CategoryMap
}

func NewTransformer(categories CategoryMap) *Transformer {
	if categories == nil {
		categories, _ = LoadCategoryMap("")
	}
	return &Transformer{categories: categories}
}

// Transform parses body and builds the record to upsert. A missing grant ID
// or an unparsable PostDate fails the whole message; everything else has a
// safe default and never does.
func (t *Transformer) Transform(body string) (*GrantRecord, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, TransformError{Reason: ReasonMalformedPayload, Err: err}
	}

	// The identifier is opaque: numeric and non-numeric values are both
	// accepted as-is.
	grantID := getString(data["OpportunityId"])
	if grantID == "" {
		grantID = getString(data["grant_id"])
	}
	if grantID == "" {
		return nil, TransformError{Reason: ReasonMissingGrantID, Err: errors.New("no opportunity identifier in payload")}
	}

	openDate, err := parseDate(getString(data["PostDate"]))
	if err != nil {
		return nil, TransformError{Reason: ReasonUnparsableDate, Err: fmt.Errorf("PostDate: %w", err)}
	}

	closeDate, err := parseDate(getString(data["CloseDate"]))
	if err != nil {
		closeDate = SentinelCloseDate
	}

	record := &GrantRecord{
		GrantID:             grantID,
		GrantNumber:         getString(data["OpportunityNumber"]),
		AgencyCode:          getString(data["AgencyCode"]),
		AwardCeiling:        parseAmount(data["AwardCeiling"]),
		AwardFloor:          parseAmount(data["AwardFloor"]),
		CostSharing:         yesNo(data["CostSharingOrMatchingRequirement"]),
		Title:               getString(data["OpportunityTitle"]),
		CFDAList:            joinValues(data["CFDANumbers"], ", "),
		OpenDate:            openDate,
		CloseDate:           closeDate,
		Description:         getString(data["Description"]),
		EligibilityCodes:    joinValues(data["EligibleApplicants"], " "),
		OpportunityCategory: t.categories.Label(getString(data["OpportunityCategory"])),
		OpportunityStatus:   OpportunityStatusPosted,
		Status:              StatusInbox,
		Notes:               defaultNotes,
		SearchTerms:         defaultSearchTerms,
		ReviewerName:        defaultReviewerName,
		RawBody:             body,
	}

	return record, nil
}

// parseDate accepts canonical YYYY-MM-DD only. time.Parse rejects trailing
// text, so shapes like "2023-06-05 PM" or "05062023" fail here.
func parseDate(value string) (string, error) {
	if value == "" {
		return "", errors.New("empty date")
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", err
	}
	return parsed.Format(dateLayout), nil
}

// parseAmount returns nil for anything that is not an integer: absent field,
// empty string, "unparseable", fractional numbers.
func parseAmount(v interface{}) *int64 {
	s := getString(v)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func yesNo(v interface{}) string {
	if b, ok := v.(bool); ok && b {
		return "Yes"
	}
	return "No"
}

// joinValues joins list elements verbatim; empty elements keep their slot.
func joinValues(v interface{}, sep string) string {
	items, ok := v.([]interface{})
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, getString(item))
	}
	return strings.Join(parts, sep)
}

func getString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
