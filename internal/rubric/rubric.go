// Package rubric holds the static assessment model: the eight scored
// attributes, per-business-model weight tables, and the maturity stage
// bands. All tables are embedded YAML loaded once at init and read-only
// afterwards.
package rubric

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Attribute is one of the fixed brand-consciousness dimensions.
type Attribute struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Description  string  `yaml:"description" json:"description"`
	Contribution float64 `yaml:"contribution" json:"contribution"`
}

// BusinessModel carries per-attribute score multipliers for one company
// archetype. Attributes absent from Weights multiply by 1.0.
type BusinessModel struct {
	ID      string             `yaml:"id" json:"id"`
	Name    string             `yaml:"name" json:"name"`
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// WeightFor returns the multiplier for an attribute, defaulting to 1.0.
func (bm BusinessModel) WeightFor(attributeID string) float64 {
	if w, ok := bm.Weights[attributeID]; ok {
		return w
	}
	return 1.0
}

// Stage is a named band of the 0-100 overall-score axis.
type Stage struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	MinScore    int    `yaml:"min_score" json:"min_score"`
	MaxScore    int    `yaml:"max_score" json:"max_score"`
	Color       string `yaml:"color" json:"color"`
	Description string `yaml:"description" json:"description"`
}

// Score labels, coarser than stages, used for per-attribute display.
const (
	LabelExceptional = "Exceptional"
	LabelStrong      = "Strong"
	LabelAdequate    = "Adequate"
	LabelWeak        = "Weak"
	LabelAbsent      = "Absent"
)

var (
	attributes     []Attribute
	attributeIndex map[string]Attribute
	businessModels []BusinessModel
	modelIndex     map[string]BusinessModel
	stages         []Stage
)

// categoryAttributes maps assessment category ids to the attributes that
// category's evidence is primarily responsible for scoring. A category's
// model response may still score any attribute it finds evidence for.
var categoryAttributes = map[string][]string{
	"website":       {"AWAKE", "ADEPT", "ARTFUL", "ASTUTE"},
	"social":        {"ATTENTIVE", "AUTHENTIC"},
	"ai-reputation": {"ASSURED", "AHEAD"},
	"earned-media":  {"ASSURED", "AWAKE", "AHEAD"},
}

func init() {
	if err := load(); err != nil {
		panic(fmt.Sprintf("rubric: invalid embedded tables: %v", err))
	}
}

func load() error {
	var attrDoc struct {
		Attributes []Attribute `yaml:"attributes"`
	}
	if err := unmarshalFile("data/attributes.yaml", &attrDoc); err != nil {
		return err
	}
	attributes = attrDoc.Attributes

	var bmDoc struct {
		BusinessModels []BusinessModel `yaml:"business_models"`
	}
	if err := unmarshalFile("data/business_models.yaml", &bmDoc); err != nil {
		return err
	}
	businessModels = bmDoc.BusinessModels

	var stageDoc struct {
		Stages []Stage `yaml:"stages"`
	}
	if err := unmarshalFile("data/stages.yaml", &stageDoc); err != nil {
		return err
	}
	stages = stageDoc.Stages

	attributeIndex = make(map[string]Attribute, len(attributes))
	for _, a := range attributes {
		attributeIndex[a.ID] = a
	}
	modelIndex = make(map[string]BusinessModel, len(businessModels))
	for _, bm := range businessModels {
		modelIndex[bm.ID] = bm
	}

	return validate()
}

func unmarshalFile(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// validate enforces the table invariants: stages partition [0,100] with no
// gaps or overlaps, weights are positive and reference known attributes,
// and category ownership references known attributes.
func validate() error {
	if len(attributes) == 0 {
		return fmt.Errorf("no attributes defined")
	}
	for _, a := range attributes {
		if a.ID == "" || a.Name == "" {
			return fmt.Errorf("attribute with empty id or name")
		}
	}

	if len(stages) == 0 {
		return fmt.Errorf("no stages defined")
	}
	ordered := make([]Stage, len(stages))
	copy(ordered, stages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].MinScore < ordered[j].MinScore })
	if ordered[0].MinScore != 0 {
		return fmt.Errorf("stage bands must start at 0, got %d", ordered[0].MinScore)
	}
	if ordered[len(ordered)-1].MaxScore != 100 {
		return fmt.Errorf("stage bands must end at 100, got %d", ordered[len(ordered)-1].MaxScore)
	}
	for i, s := range ordered {
		if s.MaxScore < s.MinScore {
			return fmt.Errorf("stage %s: max %d < min %d", s.ID, s.MaxScore, s.MinScore)
		}
		if i > 0 && s.MinScore != ordered[i-1].MaxScore+1 {
			return fmt.Errorf("stage %s: band starts at %d, previous ends at %d", s.ID, s.MinScore, ordered[i-1].MaxScore)
		}
	}
	stages = ordered

	for _, bm := range businessModels {
		for attrID, w := range bm.Weights {
			if _, ok := attributeIndex[attrID]; !ok {
				return fmt.Errorf("business model %s: unknown attribute %s", bm.ID, attrID)
			}
			if w <= 0 {
				return fmt.Errorf("business model %s: non-positive weight %.2f for %s", bm.ID, w, attrID)
			}
		}
	}

	for cat, attrs := range categoryAttributes {
		for _, attrID := range attrs {
			if _, ok := attributeIndex[attrID]; !ok {
				return fmt.Errorf("category %s: unknown attribute %s", cat, attrID)
			}
		}
	}

	return nil
}

// Attributes returns the canonical attribute list in table order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributes))
	copy(out, attributes)
	return out
}

// AttributeCount is the live attribute count. The aggregation divisor is
// derived from this, never hardcoded.
func AttributeCount() int {
	return len(attributes)
}

// AttributeByID looks up an attribute by its id.
func AttributeByID(id string) (Attribute, bool) {
	a, ok := attributeIndex[id]
	return a, ok
}

// BusinessModels returns all defined business models in table order.
func BusinessModels() []BusinessModel {
	out := make([]BusinessModel, len(businessModels))
	copy(out, businessModels)
	return out
}

// BusinessModelByID looks up a business model by its id.
func BusinessModelByID(id string) (BusinessModel, bool) {
	bm, ok := modelIndex[id]
	return bm, ok
}

// Stages returns the maturity stages ordered by band.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// StageForScore returns the stage whose band contains score. Scores outside
// [0,100] and any table hole fail closed to the lowest stage.
func StageForScore(score int) Stage {
	for _, s := range stages {
		if score >= s.MinScore && score <= s.MaxScore {
			return s
		}
	}
	return stages[0]
}

// LabelForScore classifies a 0-100 score into a display label.
func LabelForScore(score int) string {
	switch {
	case score >= 90:
		return LabelExceptional
	case score >= 70:
		return LabelStrong
	case score >= 50:
		return LabelAdequate
	case score >= 30:
		return LabelWeak
	default:
		return LabelAbsent
	}
}

// AttributesForCategory returns the attribute ids a category is primarily
// responsible for. Unknown categories return nil.
func AttributesForCategory(category string) []string {
	attrs, ok := categoryAttributes[category]
	if !ok {
		return nil
	}
	out := make([]string, len(attrs))
	copy(out, attrs)
	return out
}
