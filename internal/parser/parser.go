// Package parser extracts per-attribute scores from the model's free-form
// response text. The matching heuristic (name anchor + bounded integer
// lookahead) is deliberately isolated here so it can be hardened without
// touching aggregation.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/rubric"
)

// lookaheadWindow bounds how far past an anchor the parser searches for
// the attribute's integer rating.
const lookaheadWindow = 160

var intPattern = regexp.MustCompile(`\d{1,3}`)

// Parse scans response text for attribute-name anchors and returns the
// scores it can extract. Attributes with no anchor, or no integer within
// the lookahead window, are simply absent. Never fails.
func Parse(text string) []model.RawScore {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Prefer the machine-parseable closing section when the model emitted
	// one; fall back to scanning the whole response.
	searchText := text
	lower := lowerASCII(text)
	if idx := strings.Index(lower, "ratings:"); idx >= 0 {
		searchText = text[idx:]
		lower = lower[idx:]
	}

	var scores []model.RawScore
	for _, attr := range rubric.Attributes() {
		if rs, ok := scoreForAttribute(searchText, lower, attr); ok {
			scores = append(scores, rs)
		}
	}
	return scores
}

// scoreForAttribute finds the first anchor occurrence (display name or id,
// case-insensitive) followed by an integer within the lookahead window.
func scoreForAttribute(text, lower string, attr rubric.Attribute) (model.RawScore, bool) {
	for _, anchor := range []string{lowerASCII(attr.Name), lowerASCII(attr.ID)} {
		from := 0
		for {
			rel := strings.Index(lower[from:], anchor)
			if rel < 0 {
				break
			}
			pos := from + rel
			end := pos + len(anchor)

			if score, numEnd, ok := firstInt(text, end); ok {
				return model.RawScore{
					AttributeID:   attr.ID,
					Score:         score,
					Justification: justification(text, pos, numEnd),
				}, true
			}
			from = end
		}
	}
	return model.RawScore{}, false
}

// firstInt returns the first integer within the lookahead window starting
// at offset, clamped to [0,100], plus the index just past the match.
func firstInt(text string, offset int) (int, int, bool) {
	limit := offset + lookaheadWindow
	if limit > len(text) {
		limit = len(text)
	}
	loc := intPattern.FindStringIndex(text[offset:limit])
	if loc == nil {
		return 0, 0, false
	}
	n, err := strconv.Atoi(text[offset+loc[0] : offset+loc[1]])
	if err != nil {
		return 0, 0, false
	}
	if n > 100 {
		n = 100
	}
	return n, offset + loc[1], true
}

// justification prefers the remainder of the rating line after the score
// (the "NAME: 80/100 - reason" form); when that is empty it falls back to
// the paragraph enclosing the anchor.
func justification(text string, anchorPos, numEnd int) string {
	lineEnd := strings.IndexByte(text[numEnd:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - numEnd
	}
	rest := text[numEnd : numEnd+lineEnd]
	rest = strings.TrimLeft(rest, "/0123456789")
	rest = strings.TrimLeft(rest, " \t-–—:.")
	if trimmed := strings.TrimSpace(rest); trimmed != "" {
		return trimmed
	}
	return enclosingParagraph(text, anchorPos)
}

// lowerASCII folds A-Z to a-z byte for byte. Unlike strings.ToLower it
// never changes byte length (some Unicode case folds do, e.g. U+0130),
// so indices found in the folded copy stay valid in the original text.
// Anchors are ASCII, so ASCII folding is all the match needs.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// enclosingParagraph returns the blank-line-delimited block containing pos.
func enclosingParagraph(text string, pos int) string {
	start := strings.LastIndex(text[:pos], "\n\n")
	if start < 0 {
		start = 0
	} else {
		start += 2
	}
	end := strings.Index(text[pos:], "\n\n")
	if end < 0 {
		end = len(text)
	} else {
		end += pos
	}
	return strings.TrimSpace(text[start:end])
}

// ParseHighlights extracts the strengths and gaps lists from the fixed
// closing structure. Missing sections return nil slices.
func ParseHighlights(text string) (strengths, gaps []string) {
	return sectionItems(text, "strengths:"), sectionItems(text, "gaps:")
}

// sectionItems collects numbered or bulleted lines following a section
// header containing marker, stopping at the first non-item line.
func sectionItems(text, marker string) []string {
	lower := lowerASCII(text)
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return nil
	}

	var items []string
	lines := strings.Split(text[idx:], "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(items) > 0 {
				break
			}
			continue
		}
		item := strings.TrimLeft(trimmed, "0123456789.-*) \t")
		if item == trimmed {
			// Not a list line; section is over.
			break
		}
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
