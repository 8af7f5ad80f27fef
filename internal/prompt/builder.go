// Package prompt renders the per-category evaluation prompt sent to the
// model. Construction is pure: missing evidence degrades to explicit
// placeholder sentences, never to an error or blank interpolation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

// Built is a rendered prompt plus its ordered image attachments, primary
// image first. Images are never embedded in the text.
type Built struct {
	Text        string
	Attachments []model.ImageAttachment
}

const header = `You are a brand strategist conducting a brand consciousness assessment.

Brand: %s
Website: %s
Industry: %s
Business model: %s
Target audience: %s`

const closing = `After your analysis, finish with this exact structure:

RATINGS:
%s
TOP 3 STRENGTHS:
1. ...
2. ...
3. ...

TOP 3 GAPS:
1. ...
2. ...
3. ...

Each rating line must use the form "NAME: <number>/100 - one sentence of justification".
Rate only what the evidence supports; omit a line if you truly cannot assess it.`

// categoryIntro opens the evidence section for each category.
var categoryIntro = map[model.Category]string{
	model.CategoryWebsite:      "Evaluate the brand's website presence using the evidence below. Screenshots of key pages are attached.",
	model.CategorySocial:       "Evaluate the brand's social presence and public reputation using the evidence below. Screenshots of profiles and representative posts are attached.",
	model.CategoryAIReputation: "Evaluate how AI assistants represent this brand. The evidence below contains queries posed to AI assistants and the verbatim responses.",
	model.CategoryEarnedMedia:  "Evaluate the brand's earned media footprint: press coverage, rankings, citations, and third-party mentions.",
}

// fieldSpec is one free-text evidence field with its prompt label and the
// placeholder substituted when the user left it empty.
type fieldSpec struct {
	key         string
	label       string
	placeholder string
}

var categoryFields = map[model.Category][]fieldSpec{
	model.CategoryWebsite: {
		{"copy", "Key page copy (pasted by the user)", "No page copy was provided; rely on the attached screenshots and the URL."},
		{"observations", "User observations", "The user recorded no observations about the website."},
	},
	model.CategorySocial: {
		{"profiles", "Social profiles and handles", "No social profiles were provided for this brand."},
		{"observations", "User observations", "The user recorded no observations about the social presence."},
	},
	model.CategoryAIReputation: {
		{"queries", "Queries posed to AI assistants", "No AI assistant queries were recorded."},
		{"responses", "Verbatim AI assistant responses", "No AI assistant responses were captured; assess only what the attached screenshots show."},
	},
	model.CategoryEarnedMedia: {
		{"coverage", "Press coverage and rankings", "No press coverage was provided for this brand."},
		{"mentions", "Notable third-party mentions", "No third-party mentions were recorded."},
	},
}

// Build renders the prompt for one category. Pure; no error conditions.
func Build(p model.Project, cat model.Category, ev model.EvidenceBundle) Built {
	var b strings.Builder

	fmt.Fprintf(&b, header,
		orPlaceholder(p.BrandName, "(brand name not provided)"),
		orPlaceholder(p.WebsiteURL, "(no website URL provided)"),
		orPlaceholder(p.Industry, "(industry not specified)"),
		businessModelContext(p.BusinessModel),
		orPlaceholder(p.Audience, "(audience not specified)"),
	)
	b.WriteString("\n\n")
	b.WriteString(categoryIntro[cat])
	b.WriteString("\n")

	for _, f := range categoryFields[cat] {
		b.WriteString("\n--- " + f.label + " ---\n")
		val := strings.TrimSpace(ev.Field(f.key))
		if val == "" {
			val = f.placeholder
		}
		b.WriteString(val)
		b.WriteString("\n")
	}

	b.WriteString("\nAssess each dimension below. For every dimension, address the sub-questions before settling on a rating:\n")
	for i, attrID := range rubric.AttributesForCategory(string(cat)) {
		attr, ok := rubric.AttributeByID(attrID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, attr.Name, attr.ID, attr.Description)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, closing, ratingsSkeleton(cat))

	return Built{
		Text:        b.String(),
		Attachments: orderedAttachments(ev),
	}
}

// ratingsSkeleton enumerates the rating lines the model must fill in for
// the category's owned attributes.
func ratingsSkeleton(cat model.Category) string {
	var b strings.Builder
	for _, attrID := range rubric.AttributesForCategory(string(cat)) {
		attr, ok := rubric.AttributeByID(attrID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: <number>/100 - <justification>\n", attr.Name)
	}
	return b.String()
}

// businessModelContext expands the business model id into assessment
// context so the model weighs evidence appropriately.
func businessModelContext(id string) string {
	bm, ok := rubric.BusinessModelByID(id)
	if !ok {
		return "(business model not specified)"
	}

	var emphasized []string
	for _, attr := range rubric.Attributes() {
		if bm.WeightFor(attr.ID) > 1.0 {
			emphasized = append(emphasized, attr.Name)
		}
	}
	if len(emphasized) == 0 {
		return bm.Name
	}
	return fmt.Sprintf("%s (for this archetype, %s carry extra weight)",
		bm.Name, strings.Join(emphasized, ", "))
}

func orPlaceholder(v, placeholder string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return placeholder
	}
	return v
}

// orderedAttachments returns the evidence images in their stored order,
// which already places the primary image first.
func orderedAttachments(ev model.EvidenceBundle) []model.ImageAttachment {
	if len(ev.Images) == 0 {
		return nil
	}
	out := make([]model.ImageAttachment, len(ev.Images))
	copy(out, ev.Images)
	return out
}
