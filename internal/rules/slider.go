package rules

import (
	"strings"

	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// sliderSignature identifies one slider/carousel library by a class token
// or by the presence of a data attribute. This is a static lookup table of
// known UI library conventions, not a heuristic.
type sliderSignature struct {
	library string
	class   string
	attr    string
}

var sliderSignatures = []sliderSignature{
	{library: "slick", class: "slick-slider"},
	{library: "slick", attr: "data-slick"},
	{library: "owl-carousel", class: "owl-carousel"},
	{library: "swiper", class: "swiper-container"},
	{library: "swiper", class: "swiper"},
	{library: "flickity", attr: "data-flickity"},
	{library: "flickity", class: "flickity-enabled"},
	{library: "revolution", class: "rev_slider"},
	{library: "layerslider", class: "ls-container"},
	{library: "metaslider", class: "metaslider"},
	{library: "soliloquy", class: "soliloquy-container"},
	{library: "royalslider", class: "royalSlider"},
	{library: "splide", class: "splide"},
}

// SliderPresentRule flags slider/carousel widgets by their library
// signatures. Sliders that auto-advance are an accessibility hazard, so
// their presence is surfaced for review.
type SliderPresentRule struct{}

func (r *SliderPresentRule) Slug() string { return "slider-present" }
func (r *SliderPresentRule) Severity() model.Severity { return model.SeverityWarning }

func (r *SliderPresentRule) Check(doc *dom.Document, _ model.ContentMeta) []model.Violation {
	var out []model.Violation
	doc.Walk(func(e *dom.Element) {
		if matchesSliderSignature(e) {
			out = append(out, violationFor(r, e))
		}
	})
	return out
}

func matchesSliderSignature(e *dom.Element) bool {
	classes := classTokens(e)
	for _, sig := range sliderSignatures {
		if sig.class != "" && classes[sig.class] {
			return true
		}
		if sig.attr != "" && e.HasAttr(sig.attr) {
			return true
		}
	}
	return false
}

func classTokens(e *dom.Element) map[string]bool {
	out := make(map[string]bool)
	for _, c := range strings.Fields(e.AttrOr("class", "")) {
		out[c] = true
	}
	return out
}
