package logic

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/observability"

	"go.uber.org/zap"
)

// Engine runs extraction, classification and remediation against an
// Environment. It holds no per-page state; every call reads env afresh.
// The rule set can be swapped at runtime with SetPatterns.
type Engine struct {
	extractor  Extractor
	classifier atomic.Pointer[Classifier]
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// NewEngine builds an Engine. A nil logger or metrics registry is replaced
// with a no-op implementation.
func NewEngine(patterns PatternSet, logger *zap.Logger, metrics observability.MetricsRegistry) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	e := &Engine{
		extractor: Extractor{Logger: logger},
		logger:    logger,
		metrics:   metrics,
	}
	e.classifier.Store(NewClassifier(patterns))
	return e
}

// Classifier exposes the engine's current matching predicates.
func (e *Engine) Classifier() *Classifier {
	return e.classifier.Load()
}

// SetPatterns replaces the rule set used by subsequent calls.
func (e *Engine) SetPatterns(p PatternSet) {
	e.classifier.Store(NewClassifier(p))
}

// Extract returns the raw observations of env.
func (e *Engine) Extract(env Environment) models.Observations {
	return e.extractor.Extract(env)
}

// Evaluate extracts and classifies env. It never panics: an internal fault
// is logged and reported as a neutral verdict.
func (e *Engine) Evaluate(env Environment) (v models.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("evaluation fault", zap.Any("panic", r))
			e.metrics.IncrementEvaluationFaults()
			v = models.NeutralVerdict()
		}
	}()

	if env == nil {
		return models.NeutralVerdict()
	}
	v = e.Classifier().Classify(e.extractor.Extract(env))

	e.metrics.IncrementEvaluations(v.Label())
	for _, b := range v.Beneficiaries {
		e.metrics.IncrementBeneficiaries(string(b.Type))
	}
	if observability.ShouldSample(observability.GetSamplingRate()) {
		e.logger.Info("evaluation",
			zap.String("verdict", v.Label()),
			zap.Int("beneficiaries", len(v.Beneficiaries)))
	}
	return v
}

// Remove neutralizes b in env. See the package-level Remove.
func (e *Engine) Remove(env Environment, b models.Beneficiary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("removal fault", zap.Any("panic", r), zap.String("name", b.Name))
			err = fmt.Errorf("removal fault: %v", r)
		}
		e.metrics.IncrementRemovals(string(b.Type), removalOutcome(err))
	}()

	err = Remove(env, b)
	switch {
	case err == nil:
		e.logger.Debug("signal removed", zap.String("name", b.Name))
	case errors.Is(err, ErrNotRemovable):
		e.logger.Debug("removal ignored", zap.String("name", b.Name))
	default:
		e.logger.Warn("removal failed", zap.String("name", b.Name), zap.Error(err))
	}
	return err
}

// RemoveByName evaluates env, removes the beneficiary called name when it
// is present and removable, and returns the refreshed verdict. Unknown or
// non-removable names leave env untouched and are not reported as errors.
func (e *Engine) RemoveByName(env Environment, name string) (models.Verdict, error) {
	current := e.Evaluate(env)
	b, ok := current.Find(name)
	if !ok {
		return current, nil
	}
	if err := e.Remove(env, b); err != nil {
		if errors.Is(err, ErrNotRemovable) {
			return current, nil
		}
		return current, err
	}
	return e.Evaluate(env), nil
}

// Diagnose returns the read-only diagnostics dump for env.
func (e *Engine) Diagnose(env Environment) (d Diagnostics) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("diagnostics fault", zap.Any("panic", r))
			d = Diagnostics{Parameters: []models.Observation{}, Cookies: []models.Observation{}}
		}
	}()
	if env == nil {
		return Diagnostics{Parameters: []models.Observation{}, Cookies: []models.Observation{}}
	}
	return Diagnose(env, e.extractor, e.Classifier())
}

func removalOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotRemovable):
		return "not_removable"
	default:
		return "error"
	}
}
