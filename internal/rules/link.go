package rules

import (
	"strings"

	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// EmptyLinkRule flags anchors that navigate somewhere but give a reader
// nothing to announce: no visible text, no aria-label or title, and no
// image with alt text inside.
type EmptyLinkRule struct{}

func (r *EmptyLinkRule) Slug() string { return "empty-link" }
func (r *EmptyLinkRule) Severity() model.Severity { return model.SeverityError }

func (r *EmptyLinkRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, a := range doc.Find("a[href]") {
		if visibleContent(a) != "" {
			continue
		}
		if label, ok := a.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			continue
		}
		if title, ok := a.Attr("title"); ok && strings.TrimSpace(title) != "" {
			continue
		}
		if containsImageWithAlt(a) {
			continue
		}
		out = append(out, violationFor(r, a))
	}
	return out
}

// IframeMissingTitleRule flags iframes without an accessible name. Frames
// opted out via role=presentation or aria-hidden are skipped.
type IframeMissingTitleRule struct{}

func (r *IframeMissingTitleRule) Slug() string { return "iframe-missing-title" }
func (r *IframeMissingTitleRule) Severity() model.Severity { return model.SeverityError }

func (r *IframeMissingTitleRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, f := range doc.Find("iframe") {
		if isDecorative(f) {
			continue
		}
		if title, ok := f.Attr("title"); ok && strings.TrimSpace(title) != "" {
			continue
		}
		if label, ok := f.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			continue
		}
		out = append(out, violationFor(r, f))
	}
	return out
}
