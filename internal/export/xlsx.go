// Package export serializes a finished assessment into downloadable
// report formats: XLSX workbook, portable markdown, and an optional
// Notion page. Pure reporting sinks; nothing here mutates the session.
package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

// categoryDisplay maps category ids to report headings.
var categoryDisplay = map[model.Category]string{
	model.CategoryWebsite:      "Website",
	model.CategorySocial:       "Social & Reputation",
	model.CategoryAIReputation: "AI Reputation",
	model.CategoryEarnedMedia:  "Earned Media",
}

// WriteXLSX writes the full assessment workbook: a summary sheet, a
// per-attribute breakdown, and one narrative sheet per scored category.
func WriteXLSX(w io.Writer, sess *model.Session) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, sess); err != nil {
		return err
	}
	if err := addAttributeSheet(f, sess); err != nil {
		return err
	}
	if err := addNarrativeSheet(f, sess); err != nil {
		return err
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addSummarySheet(f *xlsx.File, sess *model.Session) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addRow(sheet, "Brand", sess.Project.BrandName)
	addRow(sheet, "Website", sess.Project.WebsiteURL)
	addRow(sheet, "Business Model", businessModelName(sess.Project.BusinessModel))
	addRow(sheet)

	if sess.Aggregate == nil {
		addRow(sheet, "Overall Score", "not yet computed")
		return nil
	}

	stage := rubric.StageForScore(sess.Aggregate.Overall)
	addRow(sheet, "Overall Score", fmt.Sprintf("%d", sess.Aggregate.Overall))
	addRow(sheet, "Maturity Stage", stage.Name)
	addRow(sheet, "Stage Description", stage.Description)
	addRow(sheet, "Computed At", sess.Aggregate.ComputedAt.Format("2006-01-02 15:04 MST"))
	return nil
}

func addAttributeSheet(f *xlsx.File, sess *model.Session) error {
	sheet, err := f.AddSheet("Attributes")
	if err != nil {
		return eris.Wrap(err, "export: add attribute sheet")
	}

	addRow(sheet, "Attribute", "Raw Score", "Weight", "Weighted", "Label", "Source Category", "Justification")
	if sess.Aggregate == nil {
		return nil
	}

	for _, attr := range rubric.Attributes() {
		as, ok := sess.Aggregate.PerAttribute[attr.ID]
		if !ok {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().Value = attr.Name
		row.AddCell().SetInt(as.Raw)
		row.AddCell().SetFloat(as.Weight)
		row.AddCell().SetFloat(as.Weighted)
		row.AddCell().Value = as.Label
		row.AddCell().Value = as.Source
		row.AddCell().Value = as.Justification
	}
	return nil
}

func addNarrativeSheet(f *xlsx.File, sess *model.Session) error {
	sheet, err := f.AddSheet("Narratives")
	if err != nil {
		return eris.Wrap(err, "export: add narrative sheet")
	}

	addRow(sheet, "Category", "Narrative", "Strengths", "Gaps")
	for _, cat := range model.CategoryOrder {
		res, ok := sess.Results[cat]
		if !ok {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().Value = categoryDisplay[cat]
		row.AddCell().Value = res.Narrative
		row.AddCell().Value = joinLines(res.Strengths)
		row.AddCell().Value = joinLines(res.Gaps)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func businessModelName(id string) string {
	if bm, ok := rubric.BusinessModelByID(id); ok {
		return bm.Name
	}
	return id
}

func joinLines(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%d. %s", i+1, item)
	}
	return out
}
