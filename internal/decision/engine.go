// Package decision turns a validation result into a claim decision using a
// fixed, documented scoring formula.
package decision

import (
	"fmt"
	"math"
	"strings"

	"superclaims/internal/models"

	"go.uber.org/zap"
)

// Policy holds the scoring constants.
type Policy struct {
	HardBase    float64
	HardPenalty float64
	SoftBase    float64
	SoftPenalty float64
	SoftFloor   float64
	Approved    float64
}

// DefaultPolicy returns the product defaults:
// hard failures score 0.5 − 0.1·n, soft ones 0.7 − 0.05·n floored at 0.3,
// a clean claim scores 0.95.
func DefaultPolicy() Policy {
	return Policy{
		HardBase:    0.5,
		HardPenalty: 0.1,
		SoftBase:    0.7,
		SoftPenalty: 0.05,
		SoftFloor:   0.3,
		Approved:    0.95,
	}
}

type Engine struct {
	policy Policy
	logger *zap.Logger
}

func NewEngine(policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{policy: policy, logger: logger}
}

// Decide maps result to a decision. Rules are evaluated top to bottom and the
// first match wins: missing documents, hard failures, any discrepancy, approval.
func (e *Engine) Decide(result models.ValidationResult) models.ClaimDecision {
	var d models.ClaimDecision

	hard, soft := split(result.Discrepancies)
	switch {
	case len(result.MissingDocuments) > 0:
		names := make([]string, len(result.MissingDocuments))
		for i, t := range result.MissingDocuments {
			names[i] = string(t)
		}
		d = models.ClaimDecision{
			Status:          models.ClaimStatusRejected,
			Reason:          "missing required document(s): " + strings.Join(names, ", "),
			ConfidenceScore: 0,
		}
	case len(hard) > 0:
		d = models.ClaimDecision{
			Status:          models.ClaimStatusRejected,
			Reason:          "hard validation failure(s): " + summarize(hard),
			ConfidenceScore: math.Max(0, e.policy.HardBase-e.policy.HardPenalty*float64(len(hard))),
		}
	case len(soft) > 0:
		d = models.ClaimDecision{
			Status:          models.ClaimStatusPendingReview,
			Reason:          "manual review required: " + summarize(soft),
			ConfidenceScore: math.Max(e.policy.SoftFloor, e.policy.SoftBase-e.policy.SoftPenalty*float64(len(soft))),
		}
	default:
		d = models.ClaimDecision{
			Status:          models.ClaimStatusApproved,
			Reason:          "all documents present and verified",
			ConfidenceScore: e.policy.Approved,
		}
	}

	d.ConfidenceScore = clamp(d.ConfidenceScore)
	e.logger.Info("Claim decision made",
		zap.String("status", string(d.Status)),
		zap.Float64("confidence_score", d.ConfidenceScore),
	)
	return d
}

func split(ds []models.Discrepancy) (hard, soft []models.Discrepancy) {
	for _, d := range ds {
		if d.RuleViolated.Hard() {
			hard = append(hard, d)
		} else {
			soft = append(soft, d)
		}
	}
	return hard, soft
}

// summarize lists each violated rule once, in first-seen order, with its
// count when it fired more than once.
func summarize(ds []models.Discrepancy) string {
	var order []models.RuleKind
	counts := make(map[models.RuleKind]int)
	for _, d := range ds {
		if counts[d.RuleViolated] == 0 {
			order = append(order, d.RuleViolated)
		}
		counts[d.RuleViolated]++
	}
	parts := make([]string, len(order))
	for i, k := range order {
		if counts[k] > 1 {
			parts[i] = fmt.Sprintf("%s (x%d)", k, counts[k])
		} else {
			parts[i] = string(k)
		}
	}
	return strings.Join(parts, ", ")
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
