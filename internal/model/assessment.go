// Package model defines the wizard's domain types: project, evidence,
// per-category results, and the aggregate assessment.
package model

import "time"

// Category identifies one independently evidenced assessment section.
type Category string

const (
	CategoryWebsite      Category = "website"
	CategorySocial       Category = "social"
	CategoryAIReputation Category = "ai-reputation"
	CategoryEarnedMedia  Category = "earned-media"
)

// CategoryOrder is the canonical fold order for aggregation. When two
// categories score the same attribute, the later category in this order
// wins.
var CategoryOrder = []Category{
	CategoryWebsite,
	CategorySocial,
	CategoryAIReputation,
	CategoryEarnedMedia,
}

// ValidCategory reports whether c is one of the four assessment categories.
func ValidCategory(c Category) bool {
	for _, v := range CategoryOrder {
		if c == v {
			return true
		}
	}
	return false
}

// Project holds brand identity plus the business model selection that
// drives weighting for every category.
type Project struct {
	BrandName     string `json:"brand_name"`
	WebsiteURL    string `json:"website_url"`
	Industry      string `json:"industry"`
	BusinessModel string `json:"business_model"`
	Audience      string `json:"audience"`
	Notes         string `json:"notes"`
}

// ImageAttachment is one encoded raster image ready for the model call.
// Data is the raw encoded bytes; MediaType is its MIME type.
type ImageAttachment struct {
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
	Filename  string `json:"filename,omitempty"`
}

// EvidenceBundle is the user-supplied input for one category: free-text
// fields keyed by field id plus an ordered image list, primary first.
type EvidenceBundle struct {
	Fields map[string]string `json:"fields"`
	Images []ImageAttachment `json:"images,omitempty"`
}

// Field returns a named evidence field, "" when unset.
func (b EvidenceBundle) Field(key string) string {
	if b.Fields == nil {
		return ""
	}
	return b.Fields[key]
}

// RawScore is one attribute's score as parsed from a category response.
type RawScore struct {
	AttributeID   string `json:"attribute_id"`
	Score         int    `json:"score"`
	Justification string `json:"justification,omitempty"`
}

// TokenUsage tracks model token consumption for one category run.
type TokenUsage struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.Cost += other.Cost
}

// CategoryResult is the settled outcome of one category's analysis run.
type CategoryResult struct {
	Category   Category   `json:"category"`
	Narrative  string     `json:"narrative"`
	Scores     []RawScore `json:"scores"`
	Strengths  []string   `json:"strengths,omitempty"`
	Gaps       []string   `json:"gaps,omitempty"`
	TokenUsage TokenUsage `json:"token_usage"`
	Duration   int64      `json:"duration_ms"`
	RanAt      time.Time  `json:"ran_at"`
}

// AttributeScore is one attribute's weighted contribution to the aggregate.
type AttributeScore struct {
	Raw           int     `json:"raw"`
	Weight        float64 `json:"weight"`
	Weighted      float64 `json:"weighted"`
	Label         string  `json:"label"`
	Justification string  `json:"justification,omitempty"`
	Source        string  `json:"source,omitempty"` // category that supplied the raw score
}

// AggregateResult is the merged assessment across all scored categories.
// Immutable once computed; recomputation replaces it wholesale.
type AggregateResult struct {
	PerAttribute map[string]AttributeScore `json:"per_attribute"`
	Overall      int                       `json:"overall"`
	StageID      string                    `json:"stage_id"`
	ComputedAt   time.Time                 `json:"computed_at"`
}

// Session is the wizard's unit of ownership: one project, one evidence
// bundle per category, at most one aggregate.
type Session struct {
	ID        string                      `json:"id"`
	Project   Project                     `json:"project"`
	Evidence  map[Category]EvidenceBundle `json:"evidence,omitempty"`
	Results   map[Category]CategoryResult `json:"results,omitempty"`
	Aggregate *AggregateResult            `json:"aggregate,omitempty"`
	Unlocked  bool                        `json:"unlocked"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}
