package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rotisserie/eris"
)

// Severity classifies how serious a rule violation is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// AllSeverities returns all defined severities.
func AllSeverities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityNotice}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityNotice:
		return true
	}
	return false
}

// IgnoreScope records at what level a reviewer dismissed an issue.
type IgnoreScope string

const (
	IgnoreScopeNone   IgnoreScope = "none"
	IgnoreScopeUser   IgnoreScope = "user"
	IgnoreScopeGlobal IgnoreScope = "global"
)

// NaturalKey identifies a logical issue across scans. Two violations with
// the same natural key are the same issue, even if found months apart.
type NaturalKey struct {
	SiteID      string `json:"site_id"`
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	RuleSlug    string `json:"rule_slug"`
	Snippet     string `json:"snippet"`
}

// SnippetHash returns the SHA-256 hex digest of the snippet. Stores index
// the hash instead of the raw snippet, which can be arbitrarily long.
func (k NaturalKey) SnippetHash() string {
	sum := sha256.Sum256([]byte(k.Snippet))
	return hex.EncodeToString(sum[:])
}

// Validate checks that every component of the key is populated.
func (k NaturalKey) Validate() error {
	switch {
	case k.SiteID == "":
		return eris.New("model: natural key: empty site_id")
	case k.ContentID == "":
		return eris.New("model: natural key: empty content_id")
	case k.ContentType == "":
		return eris.New("model: natural key: empty content_type")
	case k.RuleSlug == "":
		return eris.New("model: natural key: empty rule_slug")
	case k.Snippet == "":
		return eris.New("model: natural key: empty snippet")
	}
	return nil
}

// IssueRecord is the persisted, reconciled representation of a violation,
// tracked across scans under its natural key.
type IssueRecord struct {
	ID               string      `json:"id"`
	SiteID           string      `json:"site_id"`
	ContentID        string      `json:"content_id"`
	ContentType      string      `json:"content_type"`
	RuleSlug         string      `json:"rule_slug"`
	Severity         Severity    `json:"severity"`
	Snippet          string      `json:"snippet"`
	ConfirmedPresent bool        `json:"confirmed_present"`
	Ignored          bool        `json:"ignored"`
	IgnoredScope     IgnoreScope `json:"ignored_scope"`
	IgnoredBy        string      `json:"ignored_by,omitempty"`
	IgnoredAt        *time.Time  `json:"ignored_at,omitempty"`
	IgnoredComment   string      `json:"ignored_comment,omitempty"`
	DiscoveredBy     string      `json:"discovered_by,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewIssueRecord builds a fresh, confirmed, un-ignored record for a
// violation observed on the given content. The store assigns no ID here;
// backends fill it on insert.
func NewIssueRecord(meta ContentMeta, v Violation, discoveredBy string) (*IssueRecord, error) {
	rec := &IssueRecord{
		SiteID:           meta.SiteID,
		ContentID:        meta.ContentID,
		ContentType:      meta.ContentType,
		RuleSlug:         v.RuleSlug,
		Severity:         v.Severity,
		Snippet:          v.Snippet,
		ConfirmedPresent: true,
		Ignored:          false,
		IgnoredScope:     IgnoreScopeNone,
		DiscoveredBy:     discoveredBy,
		CreatedAt:        time.Now().UTC(),
	}
	if err := rec.Key().Validate(); err != nil {
		return nil, err
	}
	if !rec.Severity.Valid() {
		return nil, eris.Errorf("model: issue record: invalid severity %q", rec.Severity)
	}
	return rec, nil
}

// Key returns the record's natural key.
func (r *IssueRecord) Key() NaturalKey {
	return NaturalKey{
		SiteID:      r.SiteID,
		ContentID:   r.ContentID,
		ContentType: r.ContentType,
		RuleSlug:    r.RuleSlug,
		Snippet:     r.Snippet,
	}
}

// ContentMeta describes the content item a scan operates on.
type ContentMeta struct {
	SiteID      string `json:"site_id"`
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
}
