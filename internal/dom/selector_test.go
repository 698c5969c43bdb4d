package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := Parse(raw)
	require.NoError(t, err)
	return doc
}

func TestFind_ByTag(t *testing.T) {
	doc := mustParse(t, `<h1>a</h1><p>b</p><h1>c</h1>`)
	assert.Len(t, doc.Find("h1"), 2)
	assert.Len(t, doc.Find("p"), 1)
	assert.Empty(t, doc.Find("table"))
}

func TestFind_AttributePresence(t *testing.T) {
	doc := mustParse(t, `<img src="a.png" alt=""><img src="b.png">`)
	assert.Len(t, doc.Find("img[alt]"), 1)
	assert.Len(t, doc.Find("[src]"), 2)
}

func TestFind_AttributeEquality(t *testing.T) {
	doc := mustParse(t, `<input type="image"><input type="text"><input type="image">`)
	assert.Len(t, doc.Find(`input[type=image]`), 2)
	assert.Len(t, doc.Find(`input[type="text"]`), 1)
}

func TestFind_Descendant(t *testing.T) {
	doc := mustParse(t, `
		<table><tr><td scope="row">x</td></tr></table>
		<div><td scope="row">stray</td></div>`)
	// Stray td outside a table is dropped or reparented by the parser;
	// the combinator must only match the one under table.
	got := doc.Find("table td[scope]")
	assert.Len(t, got, 1)
}

func TestFind_Group(t *testing.T) {
	doc := mustParse(t, `<h1>a</h1><h2>b</h2><h3>c</h3>`)
	assert.Len(t, doc.Find("h1, h2, h3"), 3)
}

func TestFind_DocumentOrder(t *testing.T) {
	doc := mustParse(t, `<h2>first</h2><h1>second</h1>`)
	got := doc.Find("h1, h2")
	require.Len(t, got, 2)
	assert.Equal(t, "h2", got[0].Tag)
	assert.Equal(t, "h1", got[1].Tag)
}
