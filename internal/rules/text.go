package rules

import (
	"regexp"
	"strings"

	"github.com/sitelint/sitelint/internal/dom"
)

// visibleContent strips markup from an element's subtree and collapses
// whitespace, non-breaking spaces, and dash/underscore runs. A heading
// whose visibleContent is empty carries no information for a reader.
func visibleContent(e *dom.Element) string {
	text := e.VisibleText()
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case ' ', '\u00a0', '-', '_', '–', '—':
			sb.WriteByte(' ')
		default:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// meaningfulAlt is permissive about punctuation but requires at least one
// letter or digit somewhere in the alt text.
var meaningfulAlt = regexp.MustCompile(`[\p{L}\p{N}]`)

// hasMeaningfulAlt reports whether the element carries alt text that
// conveys something beyond whitespace and punctuation.
func hasMeaningfulAlt(e *dom.Element) bool {
	alt, ok := e.Attr("alt")
	if !ok {
		return false
	}
	return meaningfulAlt.MatchString(alt)
}

// isDecorative reports whether the element opts out of accessible-name
// requirements.
func isDecorative(e *dom.Element) bool {
	if role, ok := e.Attr("role"); ok && strings.EqualFold(strings.TrimSpace(role), "presentation") {
		return true
	}
	if hidden, ok := e.Attr("aria-hidden"); ok && strings.EqualFold(strings.TrimSpace(hidden), "true") {
		return true
	}
	return false
}
