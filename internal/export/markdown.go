package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

var titler = cases.Title(language.English)

// WriteMarkdown writes the portable text report: summary, attribute
// table, and per-category narratives.
func WriteMarkdown(w io.Writer, sess *model.Session) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Brand Consciousness Assessment: %s\n\n", sess.Project.BrandName)
	if sess.Project.WebsiteURL != "" {
		fmt.Fprintf(&b, "Website: %s\n\n", sess.Project.WebsiteURL)
	}
	fmt.Fprintf(&b, "Business model: %s\n\n", businessModelName(sess.Project.BusinessModel))

	if sess.Aggregate != nil {
		stage := rubric.StageForScore(sess.Aggregate.Overall)
		fmt.Fprintf(&b, "## Overall: %d — %s\n\n", sess.Aggregate.Overall, stage.Name)
		fmt.Fprintf(&b, "%s\n\n", stage.Description)

		b.WriteString("| Attribute | Raw | Weight | Weighted | Label |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, attr := range rubric.Attributes() {
			as := sess.Aggregate.PerAttribute[attr.ID]
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.1f | %s |\n",
				attr.Name, as.Raw, as.Weight, as.Weighted, as.Label)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("_No categories have been analyzed yet._\n\n")
	}

	for _, cat := range model.CategoryOrder {
		res, ok := sess.Results[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", categoryDisplay[cat])

		if len(res.Strengths) > 0 {
			b.WriteString("**Strengths**\n\n")
			for _, s := range res.Strengths {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
		if len(res.Gaps) > 0 {
			b.WriteString("**Gaps**\n\n")
			for _, g := range res.Gaps {
				fmt.Fprintf(&b, "- %s\n", g)
			}
			b.WriteString("\n")
		}

		b.WriteString(res.Narrative)
		b.WriteString("\n\n")
	}

	if ev := evidenceAppendix(sess); ev != "" {
		b.WriteString("## Evidence Provided\n\n")
		b.WriteString(ev)
	}

	_, err := io.WriteString(w, b.String())
	return eris.Wrap(err, "export: write markdown")
}

// evidenceAppendix lists the free-text evidence fields supplied per
// category, for report traceability.
func evidenceAppendix(sess *model.Session) string {
	var b strings.Builder
	for _, cat := range model.CategoryOrder {
		bundle, ok := sess.Evidence[cat]
		if !ok || len(bundle.Fields) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", categoryDisplay[cat])
		for _, key := range sortedKeys(bundle.Fields) {
			val := strings.TrimSpace(bundle.Fields[key])
			if val == "" {
				continue
			}
			fmt.Fprintf(&b, "**%s**: %s\n\n", titler.String(key), val)
		}
		if n := len(bundle.Images); n > 0 {
			fmt.Fprintf(&b, "_%d screenshot(s) attached._\n\n", n)
		}
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
