package rules

import (
	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// TableHeadersRule flags data tables that declare no usable header cell:
// at least one row must contain a th with non-empty text whose scope, if
// present, is one of the four valid values.
type TableHeadersRule struct{}

func (r *TableHeadersRule) Slug() string { return "table-missing-headers" }
func (r *TableHeadersRule) Severity() model.Severity { return model.SeverityError }

var validScopes = map[string]bool{
	"row": true, "col": true, "rowgroup": true, "colgroup": true,
}

func (r *TableHeadersRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, table := range doc.Find("table") {
		if tableHasHeader(table) {
			continue
		}
		out = append(out, violationFor(r, table))
	}
	return out
}

func tableHasHeader(table *dom.Element) bool {
	for _, row := range findDescendants(table, "tr") {
		for _, th := range findDescendants(row, "th") {
			if visibleContent(th) == "" {
				continue
			}
			scope, ok := th.Attr("scope")
			if !ok || validScopes[scope] {
				return true
			}
		}
	}
	return false
}
