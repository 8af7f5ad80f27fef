// Package engine folds the per-category raw scores into the single
// aggregate assessment: business-model weighting, the overall average,
// and the maturity stage.
package engine

import (
	"math"
	"time"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

// Aggregate combines all settled category results into one AggregateResult.
//
// Combination policy: categories are folded in model.CategoryOrder; when
// two categories score the same attribute the later category wins. An
// attribute never scored contributes 0 (ungraded = lowest).
//
// Weighting is a direct multiplier on the raw score. The sum is not
// renormalized by the weights and the overall value is not clamped, so a
// weight table straying far from 1.0 can push overall outside [0,100].
// That matches the shipped behavior this engine reproduces.
func Aggregate(results map[model.Category]model.CategoryResult, bm rubric.BusinessModel, now time.Time) model.AggregateResult {
	type winner struct {
		score         int
		justification string
		source        model.Category
	}
	winners := make(map[string]winner)
	for _, cat := range model.CategoryOrder {
		res, ok := results[cat]
		if !ok {
			continue
		}
		for _, rs := range res.Scores {
			if _, known := rubric.AttributeByID(rs.AttributeID); !known {
				continue
			}
			winners[rs.AttributeID] = winner{
				score:         rs.Score,
				justification: rs.Justification,
				source:        cat,
			}
		}
	}

	perAttribute := make(map[string]model.AttributeScore, rubric.AttributeCount())
	var sum float64
	for _, attr := range rubric.Attributes() {
		w := bm.WeightFor(attr.ID)
		as := model.AttributeScore{Weight: w}
		if win, ok := winners[attr.ID]; ok {
			as.Raw = win.score
			as.Justification = win.justification
			as.Source = string(win.source)
		}
		as.Weighted = Weighted(as.Raw, w)
		as.Label = rubric.LabelForScore(as.Raw)
		perAttribute[attr.ID] = as
		sum += as.Weighted
	}

	overall := int(math.Round(sum / float64(rubric.AttributeCount())))

	return model.AggregateResult{
		PerAttribute: perAttribute,
		Overall:      overall,
		StageID:      rubric.StageForScore(overall).ID,
		ComputedAt:   now.UTC(),
	}
}

// Weighted applies a business-model multiplier to a raw score. Linear, no
// clamping.
func Weighted(raw int, weight float64) float64 {
	return float64(raw) * weight
}
