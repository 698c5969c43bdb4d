package rules

import (
	"strings"

	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// EmptyHeadingRule flags headings that present no text to a reader: no
// visible content, no aria-label, and no image with meaningful alt text.
type EmptyHeadingRule struct{}

func (r *EmptyHeadingRule) Slug() string { return "empty-heading" }
func (r *EmptyHeadingRule) Severity() model.Severity { return model.SeverityError }

func (r *EmptyHeadingRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, h := range doc.Find(headingSelector) {
		if visibleContent(h) != "" {
			continue
		}
		if label, ok := h.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			continue
		}
		if containsImageWithAlt(h) {
			continue
		}
		out = append(out, violationFor(r, h))
	}
	return out
}

func containsImageWithAlt(e *dom.Element) bool {
	for _, c := range e.Children {
		if c.IsText() {
			continue
		}
		if c.Tag == "img" && hasMeaningfulAlt(c) {
			return true
		}
		if containsImageWithAlt(c) {
			return true
		}
	}
	return false
}

// MissingHeadingsRule flags long-form content that has no headings at all.
// Short content is exempt: the threshold keeps brief pages from being
// penalized for a structure they don't need.
type MissingHeadingsRule struct {
	MinWordCount int
}

func (r *MissingHeadingsRule) Slug() string { return "missing-headings" }
func (r *MissingHeadingsRule) Severity() model.Severity { return model.SeverityWarning }

func (r *MissingHeadingsRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	if doc.WordCount() <= r.MinWordCount {
		return nil
	}
	if len(doc.Find(headingSelector)) > 0 {
		return nil
	}
	return []model.Violation{{
		RuleSlug: r.Slug(),
		Severity: r.Severity(),
		Snippet:  documentSnippet(doc),
	}}
}

// documentSnippet produces a stable fragment to stand in for a
// document-level defect: the first element of the body, or a truncated
// text excerpt when the body is bare text.
func documentSnippet(doc *dom.Document) string {
	for _, c := range doc.Root().Children {
		if !c.IsText() {
			return c.Render()
		}
	}
	text := strings.TrimSpace(doc.Root().VisibleText())
	if len(text) > 120 {
		text = text[:120]
	}
	return "<p>" + text + "</p>"
}
