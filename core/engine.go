// Package core has core logic for scoring, validation, mode toggling and history.
package core

import (
	"github.com/huangsam/kpiboard/schema"
	"go.uber.org/zap"
)

// Engine scores KPI templates. It holds only immutable settings, so a single
// Engine may be shared across goroutines.
type Engine struct {
	vocab  schema.Vocabulary
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithVocabulary sets the keywords used to classify template labels.
func WithVocabulary(v schema.Vocabulary) Option {
	return func(e *Engine) {
		e.vocab = v.Merge()
	}
}

// WithLogger sets the logger used for formula and reconciliation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Engine with the default vocabulary and a no-op logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		vocab:  schema.DefaultVocabulary(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Vocabulary returns the keywords in use.
func (e *Engine) Vocabulary() schema.Vocabulary {
	return e.vocab
}

var defaultEngine = NewEngine()

// ComputeScores scores a template with the default vocabulary.
func ComputeScores(template []schema.KpiTemplateItem, raw schema.RawInputs, op schema.Operator) schema.ScoreResult {
	return defaultEngine.ComputeScores(template, raw, op)
}

// Validate lists missing inputs with the default vocabulary.
func Validate(template []schema.KpiTemplateItem, raw schema.RawInputs) []schema.ValidationGap {
	return defaultEngine.Validate(template, raw)
}
