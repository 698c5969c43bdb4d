// Package rules holds the accessibility check catalog. Every rule is a
// pure function of the document tree: no rule mutates shared state, and
// the registry is assembled once at startup in a fixed order.
package rules

import (
	"github.com/sitelint/sitelint/internal/content"
	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// Rule inspects a parsed document and reports violations. Implementations
// must be stateless and side-effect free.
type Rule interface {
	Slug() string
	Severity() model.Severity
	Check(doc *dom.Document, meta model.ContentMeta) []model.Violation
}

// Options tunes rule thresholds and wires the media source into rules
// that inspect image bytes.
type Options struct {
	// Keywords drive the alt-text heuristics. Nil means DefaultKeywords.
	Keywords *Keywords

	// MinWordCount is the document length below which missing headings
	// are not flagged. Zero means 400.
	MinWordCount int

	// LinkTextMinLen is the visible link text length that counts as
	// accessible for images inside anchors. Zero means 5.
	LinkTextMinLen int

	// Media supplies image bytes for the animated-image rule. Nil
	// disables that rule.
	Media content.MediaSource
}

func (o Options) withDefaults() Options {
	if o.Keywords == nil {
		o.Keywords = DefaultKeywords()
	}
	if o.MinWordCount == 0 {
		o.MinWordCount = 400
	}
	if o.LinkTextMinLen == 0 {
		o.LinkTextMinLen = 5
	}
	return o
}

// Registry is the fixed, enumerable rule set for one engine instance.
type Registry struct {
	rules []Rule
}

// NewRegistry builds the full rule catalog in its canonical order.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()

	rules := []Rule{
		&EmptyHeadingRule{},
		&MissingHeadingsRule{MinWordCount: opts.MinWordCount},
		&ImageAltInvalidRule{Keywords: opts.Keywords},
		&ImageAltMissingRule{LinkTextMinLen: opts.LinkTextMinLen},
		&BrokenARIAReferenceRule{},
		&TableHeadersRule{},
		&SliderPresentRule{},
		&EmptyLinkRule{},
		&IframeMissingTitleRule{},
	}
	if opts.Media != nil {
		rules = append(rules, &AnimatedImageRule{Media: opts.Media})
	}
	return &Registry{rules: rules}
}

// Rules returns the registered rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// violationFor builds a violation for one offending element.
func violationFor(r Rule, e *dom.Element) model.Violation {
	return model.Violation{
		RuleSlug: r.Slug(),
		Severity: r.Severity(),
		Snippet:  e.Render(),
	}
}
