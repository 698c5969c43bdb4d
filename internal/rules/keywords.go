package rules

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Keywords holds the curated word lists behind the alt-text heuristics.
// The zero value is unusable; use DefaultKeywords or LoadKeywords.
type Keywords struct {
	// Prefixes flag alt text that opens with filler ("image of ...").
	Prefixes []string `yaml:"prefixes"`
	// Suffixes flag alt text that trails off into filler ("... graphic").
	Suffixes []string `yaml:"suffixes"`
	// Exact flags alt text that is nothing but a single filler word.
	Exact []string `yaml:"exact"`
	// Substrings flag alt text containing tell-tale fragments ("img_").
	Substrings []string `yaml:"substrings"`
	// Extensions flag alt text that is just a file extension.
	Extensions []string `yaml:"extensions"`
}

// DefaultKeywords returns the compiled-in keyword lists.
func DefaultKeywords() *Keywords {
	return &Keywords{
		Prefixes: []string{
			"image of", "picture of", "photo of", "photograph of", "graphic of",
		},
		Suffixes: []string{
			"image", "graphic",
		},
		Exact: []string{
			"image", "graphic", "photo", "photograph", "picture", "drawing",
			"painting", "artwork", "logo", "bullet", "button", "arrow", "more",
			"spacer", "blank", "chart", "table", "diagram", "graph",
			"placeholder", "icon", "untitled",
		},
		Substrings: []string{
			"img", "logo", "dsc", "screenshot", "screen shot", "placeholder",
		},
		Extensions: []string{
			"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "tif", "tiff",
		},
	}
}

// LoadKeywords reads keyword lists from a YAML file. An empty path returns
// the defaults; a list omitted from the file keeps its default.
func LoadKeywords(path string) (*Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read keywords %s", path)
	}
	var override Keywords
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "rules: parse keywords %s", path)
	}
	if override.Prefixes != nil {
		kw.Prefixes = override.Prefixes
	}
	if override.Suffixes != nil {
		kw.Suffixes = override.Suffixes
	}
	if override.Exact != nil {
		kw.Exact = override.Exact
	}
	if override.Substrings != nil {
		kw.Substrings = override.Substrings
	}
	if override.Extensions != nil {
		kw.Extensions = override.Extensions
	}
	return kw, nil
}
