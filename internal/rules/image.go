package rules

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/content"
	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/media"
	"github.com/sitelint/sitelint/internal/model"
)

// imageElements returns every img plus every image-type input.
func imageElements(doc *dom.Document) []*dom.Element {
	return doc.Find(`img, input[type=image]`)
}

// ImageAltInvalidRule flags alt text that is present but useless: filler
// prefixes/suffixes, filename extensions, curated filler words, tell-tale
// substrings, or digits-only. Checks run in a fixed order and stop at the
// first match; ordering affects only which check fires, not the outcome.
type ImageAltInvalidRule struct {
	Keywords *Keywords
}

func (r *ImageAltInvalidRule) Slug() string { return "image-alt-invalid" }
func (r *ImageAltInvalidRule) Severity() model.Severity { return model.SeverityError }

func (r *ImageAltInvalidRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, img := range imageElements(doc) {
		alt, ok := img.Attr("alt")
		if !ok {
			continue // handled by image-alt-missing
		}
		if r.altInvalid(alt) {
			out = append(out, violationFor(r, img))
		}
	}
	return out
}

func (r *ImageAltInvalidRule) altInvalid(alt string) bool {
	trimmed := strings.TrimSpace(alt)
	lower := strings.ToLower(trimmed)

	switch {
	case alt != "" && trimmed == "":
		return true // whitespace-only
	case trimmed == "":
		return false // intentionally empty, decorative
	case r.matchesPrefix(lower):
		return true
	case r.matchesSuffix(lower):
		return true
	case r.matchesExtension(lower):
		return true
	case r.matchesExact(lower):
		return true
	case r.matchesSubstring(lower):
		return true
	case digitsOnly(trimmed):
		return true
	}
	return false
}

func (r *ImageAltInvalidRule) matchesPrefix(alt string) bool {
	for _, p := range r.Keywords.Prefixes {
		if strings.HasPrefix(alt, p) {
			return true
		}
	}
	return false
}

func (r *ImageAltInvalidRule) matchesSuffix(alt string) bool {
	for _, s := range r.Keywords.Suffixes {
		if alt != s && strings.HasSuffix(alt, s) {
			return true
		}
	}
	return false
}

func (r *ImageAltInvalidRule) matchesExtension(alt string) bool {
	for _, ext := range r.Keywords.Extensions {
		if alt == ext || strings.HasSuffix(alt, "."+ext) {
			return true
		}
	}
	return false
}

func (r *ImageAltInvalidRule) matchesExact(alt string) bool {
	for _, w := range r.Keywords.Exact {
		if alt == w {
			return true
		}
	}
	return false
}

func (r *ImageAltInvalidRule) matchesSubstring(alt string) bool {
	for _, s := range r.Keywords.Substrings {
		if strings.Contains(alt, s) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ImageAltMissingRule flags images with no alt attribute at all. Two
// escape hatches suppress false positives: a figure wrapper with a
// non-empty caption, and an anchor that already has an accessible name.
type ImageAltMissingRule struct {
	LinkTextMinLen int
}

func (r *ImageAltMissingRule) Slug() string { return "image-alt-missing" }
func (r *ImageAltMissingRule) Severity() model.Severity { return model.SeverityError }

func (r *ImageAltMissingRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, img := range imageElements(doc) {
		if img.HasAttr("alt") {
			continue
		}
		if isDecorative(img) {
			continue
		}
		if inCaptionedFigure(img) {
			continue
		}
		if r.inAccessibleAnchor(img) {
			continue
		}
		out = append(out, violationFor(r, img))
	}
	return out
}

func inCaptionedFigure(img *dom.Element) bool {
	fig := img.Closest("figure")
	if fig == nil {
		return false
	}
	for _, fc := range findDescendants(fig, "figcaption") {
		if visibleContent(fc) != "" {
			return true
		}
	}
	return false
}

func (r *ImageAltMissingRule) inAccessibleAnchor(img *dom.Element) bool {
	a := img.Closest("a")
	if a == nil {
		return false
	}
	if label, ok := a.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		return true
	}
	if title, ok := a.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return true
	}
	return len(visibleContent(a)) >= r.LinkTextMinLen
}

func findDescendants(e *dom.Element, tag string) []*dom.Element {
	var out []*dom.Element
	var walk func(*dom.Element)
	walk = func(n *dom.Element) {
		for _, c := range n.Children {
			if c.IsText() {
				continue
			}
			if c.Tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// AnimatedImageRule flags img elements whose bytes turn out to be an
// animated GIF or WebP. Unreadable media is not flagged; a fetch problem
// must not masquerade as an accessibility defect.
type AnimatedImageRule struct {
	Media content.MediaSource
}

func (r *AnimatedImageRule) Slug() string { return "animated-image" }
func (r *AnimatedImageRule) Severity() model.Severity { return model.SeverityWarning }

func (r *AnimatedImageRule) Check(doc *dom.Document, meta model.ContentMeta) []model.Violation {
	var out []model.Violation
	for _, img := range doc.Find("img[src]") {
		src, _ := img.Attr("src")
		if !animatableExtension(src) {
			continue
		}
		data, err := r.Media.Read(context.Background(), src)
		if err != nil {
			zap.L().Debug("rules: media unreadable, skipping",
				zap.String("src", src),
				zap.String("content_id", meta.ContentID),
				zap.Error(err),
			)
			continue
		}
		if media.IsAnimated(data) {
			out = append(out, violationFor(r, img))
		}
	}
	return out
}

func animatableExtension(src string) bool {
	src = strings.ToLower(src)
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return strings.HasSuffix(src, ".gif") || strings.HasSuffix(src, ".webp")
}
