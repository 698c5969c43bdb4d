package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliderPresent(t *testing.T) {
	r := &SliderPresentRule{}

	tests := []struct {
		name    string
		raw     string
		flagged int
	}{
		{"slick class", `<div class="slick-slider"><div>a</div></div>`, 1},
		{"slick data attribute", `<div data-slick='{"arrows":true}'>x</div>`, 1},
		{"owl carousel", `<div class="owl-carousel owl-theme">x</div>`, 1},
		{"swiper", `<div class="swiper"><div class="swiper-wrapper">x</div></div>`, 1},
		{"flickity attr", `<div data-flickity="{}">x</div>`, 1},
		{"partial class token no match", `<div class="slick-slider-custom">x</div>`, 0},
		{"plain div", `<div class="content">x</div>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, checkRule(t, r, tt.raw), tt.flagged)
		})
	}
}
