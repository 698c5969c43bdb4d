package rules

import (
	"time"

	"go.uber.org/zap"

	"github.com/sitelint/sitelint/internal/dom"
	"github.com/sitelint/sitelint/internal/model"
)

// Executor runs every registered rule against one document. A failing
// rule is isolated: its panic is recovered and logged, and it simply
// contributes no violations for that run.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an Executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Run evaluates all rules in registry order and aggregates their
// violations into a ScanResult.
func (x *Executor) Run(doc *dom.Document, meta model.ContentMeta) *model.ScanResult {
	result := &model.ScanResult{
		ContentID: meta.ContentID,
		ScannedAt: time.Now().UTC(),
	}
	for _, rule := range x.registry.Rules() {
		result.Violations = append(result.Violations, runOne(rule, doc, meta)...)
	}
	return result
}

func runOne(rule Rule, doc *dom.Document, meta model.ContentMeta) (violations []model.Violation) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("rules: rule panicked, skipping",
				zap.String("rule", rule.Slug()),
				zap.String("content_id", meta.ContentID),
				zap.Any("panic", r),
			)
			violations = nil
		}
	}()
	return rule.Check(doc, meta)
}
