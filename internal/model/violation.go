package model

import "time"

// Violation is a single rule failure produced during one scan pass.
// It is ephemeral: the reconciler folds it into an IssueRecord.
type Violation struct {
	RuleSlug string   `json:"rule_slug"`
	Severity Severity `json:"severity"`
	Snippet  string   `json:"snippet"`
}

// ScanResult is the outcome of running every registered rule against one
// content item. It is consumed by the reconciler and returned to callers;
// it is never persisted itself.
type ScanResult struct {
	ContentID  string      `json:"content_id"`
	Violations []Violation `json:"violations"`
	ScannedAt  time.Time   `json:"scanned_at"`
}

// Count returns the number of violations at the given severity.
func (r *ScanResult) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// Stats summarizes the issue store for a site.
type Stats struct {
	SiteID       string    `json:"site_id"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	Notices      int       `json:"notices"`
	Ignored      int       `json:"ignored"`
	PassedTests  int       `json:"passed_tests"`
	PostsScanned int       `json:"posts_scanned"`
	GeneratedAt  time.Time `json:"generated_at"`
}
