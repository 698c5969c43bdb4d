package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta() ContentMeta {
	return ContentMeta{
		SiteID:      "site-1",
		ContentID:   "post-42",
		ContentType: "post",
	}
}

func TestNewIssueRecord_Defaults(t *testing.T) {
	v := Violation{RuleSlug: "empty-heading", Severity: SeverityError, Snippet: "<h1></h1>"}

	rec, err := NewIssueRecord(testMeta(), v, "scanner")
	require.NoError(t, err)

	assert.True(t, rec.ConfirmedPresent)
	assert.False(t, rec.Ignored)
	assert.Equal(t, IgnoreScopeNone, rec.IgnoredScope)
	assert.Equal(t, "scanner", rec.DiscoveredBy)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestNewIssueRecord_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		meta ContentMeta
		v    Violation
	}{
		{"empty snippet", testMeta(), Violation{RuleSlug: "r", Severity: SeverityError}},
		{"empty rule slug", testMeta(), Violation{Severity: SeverityError, Snippet: "<p>"}},
		{"empty site", ContentMeta{ContentID: "c", ContentType: "post"}, Violation{RuleSlug: "r", Severity: SeverityError, Snippet: "<p>"}},
		{"bad severity", testMeta(), Violation{RuleSlug: "r", Severity: "fatal", Snippet: "<p>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIssueRecord(tt.meta, tt.v, "scanner")
			assert.Error(t, err)
		})
	}
}

func TestNaturalKey_SnippetHashStable(t *testing.T) {
	k1 := NaturalKey{SiteID: "s", ContentID: "c", ContentType: "post", RuleSlug: "r", Snippet: `<img src="a.png">`}
	k2 := k1
	assert.Equal(t, k1.SnippetHash(), k2.SnippetHash())

	k2.Snippet = `<img src="b.png">`
	assert.NotEqual(t, k1.SnippetHash(), k2.SnippetHash())
}

func TestScanResult_Count(t *testing.T) {
	r := &ScanResult{Violations: []Violation{
		{RuleSlug: "a", Severity: SeverityError},
		{RuleSlug: "b", Severity: SeverityError},
		{RuleSlug: "c", Severity: SeverityWarning},
	}}
	assert.Equal(t, 2, r.Count(SeverityError))
	assert.Equal(t, 1, r.Count(SeverityWarning))
	assert.Equal(t, 0, r.Count(SeverityNotice))
}
