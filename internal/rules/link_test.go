package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyLink(t *testing.T) {
	r := &EmptyLinkRule{}

	tests := []struct {
		name    string
		raw     string
		flagged int
	}{
		{"empty anchor", `<a href="/about"></a>`, 1},
		{"whitespace anchor", `<a href="/about">  </a>`, 1},
		{"text anchor", `<a href="/about">About us</a>`, 0},
		{"aria-label", `<a href="/about" aria-label="About"></a>`, 0},
		{"title", `<a href="/about" title="About"></a>`, 0},
		{"image with alt inside", `<a href="/"><img src="logo.png" alt="Home"></a>`, 0},
		{"image without alt inside", `<a href="/"><img src="logo.png"></a>`, 1},
		{"anchor without href ignored", `<a name="top"></a>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, checkRule(t, r, tt.raw), tt.flagged)
		})
	}
}

func TestIframeMissingTitle(t *testing.T) {
	r := &IframeMissingTitleRule{}

	tests := []struct {
		name    string
		raw     string
		flagged int
	}{
		{"no title", `<iframe src="https://example.com/embed"></iframe>`, 1},
		{"empty title", `<iframe src="/x" title=" "></iframe>`, 1},
		{"titled", `<iframe src="/x" title="Video player"></iframe>`, 0},
		{"aria-label", `<iframe src="/x" aria-label="Map"></iframe>`, 0},
		{"aria-hidden", `<iframe src="/x" aria-hidden="true"></iframe>`, 0},
		{"role presentation", `<iframe src="/x" role="presentation"></iframe>`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, checkRule(t, r, tt.raw), tt.flagged)
		})
	}
}
