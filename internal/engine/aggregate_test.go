package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

func mustModel(t *testing.T, id string) rubric.BusinessModel {
	t.Helper()
	bm, ok := rubric.BusinessModelByID(id)
	require.True(t, ok, "business model %s must exist", id)
	return bm
}

func TestAggregate_B2BWebsiteOnly(t *testing.T) {
	// b2b weights: Influence & Narrative 1.15, Trust 1.10, everything else 1.0.
	// 80*1.15 + 60*1.10 = 92 + 66 = 158; 158/8 = 19.75 -> rounds to 20.
	results := map[model.Category]model.CategoryResult{
		model.CategoryWebsite: {
			Category: model.CategoryWebsite,
			Scores: []model.RawScore{
				{AttributeID: "AWAKE", Score: 80, Justification: "story travels"},
				{AttributeID: "ATTENTIVE", Score: 60},
			},
		},
	}

	agg := Aggregate(results, mustModel(t, "b2b"), time.Now())

	assert.Equal(t, 20, agg.Overall)
	assert.Equal(t, "pre-foundational", agg.StageID)

	awake := agg.PerAttribute["AWAKE"]
	assert.Equal(t, 80, awake.Raw)
	assert.InDelta(t, 1.15, awake.Weight, 1e-9)
	assert.InDelta(t, 92.0, awake.Weighted, 1e-9)
	assert.Equal(t, rubric.LabelStrong, awake.Label)
	assert.Equal(t, "website", awake.Source)
	assert.Equal(t, "story travels", awake.Justification)

	attentive := agg.PerAttribute["ATTENTIVE"]
	assert.InDelta(t, 66.0, attentive.Weighted, 1e-9)
}

func TestAggregate_MissingAttributesScoreZero(t *testing.T) {
	agg := Aggregate(nil, mustModel(t, "b2b"), time.Now())

	require.Len(t, agg.PerAttribute, rubric.AttributeCount())
	for id, as := range agg.PerAttribute {
		assert.Equal(t, 0, as.Raw, "attribute %s", id)
		assert.Equal(t, rubric.LabelAbsent, as.Label)
		assert.Empty(t, as.Source)
	}
	assert.Equal(t, 0, agg.Overall)
	assert.Equal(t, "pre-foundational", agg.StageID)
}

func TestAggregate_LaterCategoryWins(t *testing.T) {
	// Both website and earned-media score AWAKE; earned-media is later in
	// the canonical order so its score stands.
	results := map[model.Category]model.CategoryResult{
		model.CategoryWebsite: {
			Scores: []model.RawScore{{AttributeID: "AWAKE", Score: 40, Justification: "from website"}},
		},
		model.CategoryEarnedMedia: {
			Scores: []model.RawScore{{AttributeID: "AWAKE", Score: 75, Justification: "from press"}},
		},
	}

	agg := Aggregate(results, mustModel(t, "b2b"), time.Now())

	awake := agg.PerAttribute["AWAKE"]
	assert.Equal(t, 75, awake.Raw)
	assert.Equal(t, "earned-media", awake.Source)
	assert.Equal(t, "from press", awake.Justification)
}

func TestAggregate_FoldOrderNotMapOrder(t *testing.T) {
	// social precedes ai-reputation regardless of map iteration order.
	results := map[model.Category]model.CategoryResult{
		model.CategoryAIReputation: {
			Scores: []model.RawScore{{AttributeID: "ASSURED", Score: 90}},
		},
		model.CategorySocial: {
			Scores: []model.RawScore{{AttributeID: "ASSURED", Score: 10}},
		},
	}

	for i := 0; i < 20; i++ {
		agg := Aggregate(results, mustModel(t, "b2c"), time.Now())
		assert.Equal(t, 90, agg.PerAttribute["ASSURED"].Raw)
	}
}

func TestAggregate_UnknownAttributeSkipped(t *testing.T) {
	results := map[model.Category]model.CategoryResult{
		model.CategoryWebsite: {
			Scores: []model.RawScore{
				{AttributeID: "NOT_A_DIMENSION", Score: 99},
				{AttributeID: "ADEPT", Score: 50},
			},
		},
	}

	agg := Aggregate(results, mustModel(t, "b2b"), time.Now())

	_, ok := agg.PerAttribute["NOT_A_DIMENSION"]
	assert.False(t, ok)
	assert.Equal(t, 50, agg.PerAttribute["ADEPT"].Raw)
}

func TestAggregate_StageBoundaries(t *testing.T) {
	// All eight attributes at the same raw score with neutral weights puts
	// overall exactly at that score.
	tests := []struct {
		score int
		stage string
	}{
		{25, "pre-foundational"},
		{26, "foundational"},
		{45, "foundational"},
		{46, "emerging"},
		{65, "emerging"},
		{66, "strategic"},
		{85, "strategic"},
		{86, "conscious"},
		{100, "conscious"},
	}

	neutral := rubric.BusinessModel{ID: "neutral", Name: "Neutral"}
	for _, tt := range tests {
		var scores []model.RawScore
		for _, attr := range rubric.Attributes() {
			scores = append(scores, model.RawScore{AttributeID: attr.ID, Score: tt.score})
		}
		results := map[model.Category]model.CategoryResult{
			model.CategoryWebsite: {Scores: scores},
		}

		agg := Aggregate(results, neutral, time.Now())
		assert.Equal(t, tt.score, agg.Overall, "score %d", tt.score)
		assert.Equal(t, tt.stage, agg.StageID, "score %d", tt.score)
	}
}

func TestAggregate_NoClampOnWeightedValues(t *testing.T) {
	// A raw 100 under a >1.0 weight keeps its full weighted value.
	results := map[model.Category]model.CategoryResult{
		model.CategoryWebsite: {
			Scores: []model.RawScore{{AttributeID: "AWAKE", Score: 100}},
		},
	}

	agg := Aggregate(results, mustModel(t, "b2b"), time.Now())
	assert.InDelta(t, 115.0, agg.PerAttribute["AWAKE"].Weighted, 1e-9)
}

func TestAggregate_ComputedAtUTC(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, loc)

	agg := Aggregate(nil, mustModel(t, "b2b"), now)
	assert.Equal(t, now.UTC(), agg.ComputedAt)
	assert.Equal(t, time.UTC, agg.ComputedAt.Location())
}

func TestWeighted(t *testing.T) {
	assert.InDelta(t, 92.0, Weighted(80, 1.15), 1e-9)
	assert.InDelta(t, 0.0, Weighted(0, 1.15), 1e-9)
	assert.InDelta(t, 50.0, Weighted(50, 1.0), 1e-9)
}
