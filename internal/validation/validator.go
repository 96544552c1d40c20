package validation

import (
	"errors"
	"fmt"

	"superclaims/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrValidationInternal marks a bundle whose records break the record
// contract (nil record, unknown concrete type, wrong discriminant). It is the
// only error Validate returns.
var ErrValidationInternal = errors.New("validation internal error")

type Validator struct {
	policy    Policy
	rules     []Rule
	structure *validator.Validate
	logger    *zap.Logger
}

// NewValidator builds a validator running DefaultRules(policy).
func NewValidator(policy Policy, logger *zap.Logger) *Validator {
	return NewValidatorWithRules(policy, DefaultRules(policy), logger)
}

// NewValidatorWithRules builds a validator running the given rules in order.
func NewValidatorWithRules(policy Policy, rules []Rule, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		policy:    policy,
		rules:     rules,
		structure: validator.New(),
		logger:    logger,
	}
}

// Rules returns the names of the configured rules in evaluation order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.Name
	}
	return names
}

// Validate checks presence and cross-document consistency of bundle.
// Malformed field values become discrepancies; only a broken record
// structure yields an error.
func (v *Validator) Validate(bundle models.Bundle) (models.ValidationResult, error) {
	if err := v.checkStructure(bundle); err != nil {
		return models.ValidationResult{}, err
	}

	view := NewBundleView(bundle)
	result := models.ValidationResult{
		MissingDocuments: v.missing(view),
		Discrepancies:    []models.Discrepancy{},
	}
	if len(result.MissingDocuments) > 0 {
		v.logger.Warn("Missing documents", zap.Any("missing_documents", result.MissingDocuments))
	}

	for _, rule := range v.rules {
		found := rule.Check(view)
		if len(found) > 0 {
			v.logger.Warn("Validation rule reported discrepancies",
				zap.String("rule", rule.Name),
				zap.Int("count", len(found)),
			)
		}
		result.Discrepancies = append(result.Discrepancies, found...)
	}

	v.logger.Info("Validation complete",
		zap.Int("records", len(bundle)),
		zap.Int("missing", len(result.MissingDocuments)),
		zap.Int("discrepancies", len(result.Discrepancies)),
	)
	return result, nil
}

func (v *Validator) checkStructure(bundle models.Bundle) error {
	for i, rec := range bundle {
		switch r := rec.(type) {
		case *models.Bill:
			if r == nil {
				return fmt.Errorf("%w: record %d is a nil bill", ErrValidationInternal, i)
			}
		case *models.DischargeSummary:
			if r == nil {
				return fmt.Errorf("%w: record %d is a nil discharge summary", ErrValidationInternal, i)
			}
		case *models.IDCard:
			if r == nil {
				return fmt.Errorf("%w: record %d is a nil id card", ErrValidationInternal, i)
			}
		case nil:
			return fmt.Errorf("%w: record %d is nil", ErrValidationInternal, i)
		default:
			return fmt.Errorf("%w: record %d has unsupported type %T", ErrValidationInternal, i, rec)
		}
		if err := v.structure.Struct(rec); err != nil {
			return fmt.Errorf("%w: record %d: discriminant %q: %v", ErrValidationInternal, i, rec.Type(), err)
		}
	}
	return nil
}

func (v *Validator) missing(view BundleView) []models.DocumentType {
	required := make(map[models.DocumentType]bool, len(v.policy.RequiredTypes))
	for _, t := range v.policy.RequiredTypes {
		required[t] = true
	}
	missing := []models.DocumentType{}
	for _, t := range models.DocumentTypes {
		if required[t] && !view.Has(t) {
			missing = append(missing, t)
		}
	}
	return missing
}
