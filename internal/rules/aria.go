package rules

import (
	"strings"

	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// BrokenARIAReferenceRule checks aria-labelledby and aria-describedby:
// every space-separated id token must resolve to an element id in the
// same document.
type BrokenARIAReferenceRule struct{}

func (r *BrokenARIAReferenceRule) Slug() string { return "aria-broken-reference" }
func (r *BrokenARIAReferenceRule) Severity() model.Severity { return model.SeverityError }

var ariaRefAttrs = []string{"aria-labelledby", "aria-describedby"}

func (r *BrokenARIAReferenceRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	doc.Walk(func(e *dom.Element) {
		for _, attr := range ariaRefAttrs {
			val, ok := e.Attr(attr)
			if !ok {
				continue
			}
			for _, token := range strings.Fields(val) {
				if doc.ElementByID(token) == nil {
					out = append(out, violationFor(r, e))
					return
				}
			}
		}
	})
	return out
}
