package validation

import (
	"fmt"
	"strings"
	"time"

	"superclaims/internal/models"
)

// Rule is one named consistency check. Check must be pure: it only reads the
// bundle view and returns the discrepancies it found, in document-type order.
type Rule struct {
	Name  string
	Check func(b BundleView) []models.Discrepancy
}

// BundleView indexes a structurally valid bundle. The first record of each
// type, in bundle order, is the canonical one; later records of the same type
// are kept as duplicates.
type BundleView struct {
	Records    models.Bundle
	Bill       *models.Bill
	Discharge  *models.DischargeSummary
	IDCard     *models.IDCard
	Duplicates []models.Record
}

// NewBundleView indexes b. Records of unknown concrete type are ignored; the
// validator rejects those before building a view.
func NewBundleView(b models.Bundle) BundleView {
	v := BundleView{Records: b}
	for _, rec := range b {
		switch r := rec.(type) {
		case *models.Bill:
			if v.Bill == nil {
				v.Bill = r
				continue
			}
		case *models.DischargeSummary:
			if v.Discharge == nil {
				v.Discharge = r
				continue
			}
		case *models.IDCard:
			if v.IDCard == nil {
				v.IDCard = r
				continue
			}
		default:
			continue
		}
		v.Duplicates = append(v.Duplicates, rec)
	}
	return v
}

// Canonical returns the canonical records in document-type order.
func (v BundleView) Canonical() []models.Record {
	var out []models.Record
	if v.Bill != nil {
		out = append(out, v.Bill)
	}
	if v.Discharge != nil {
		out = append(out, v.Discharge)
	}
	if v.IDCard != nil {
		out = append(out, v.IDCard)
	}
	return out
}

// Has reports whether a record of type t is present.
func (v BundleView) Has(t models.DocumentType) bool {
	switch t {
	case models.DocumentTypeBill:
		return v.Bill != nil
	case models.DocumentTypeDischargeSummary:
		return v.Discharge != nil
	case models.DocumentTypeIDCard:
		return v.IDCard != nil
	}
	return false
}

// Policy tunes the rule set.
type Policy struct {
	RequiredTypes    []models.DocumentType
	DateGrace        time.Duration
	CheckIdentifiers bool
}

// DefaultPolicy requires all three document types and allows one day of slack
// around the admission window.
func DefaultPolicy() Policy {
	return Policy{
		RequiredTypes: append([]models.DocumentType(nil), models.DocumentTypes...),
		DateGrace:     24 * time.Hour,
	}
}

// NewPolicy builds a policy from configuration values. Required types are
// kept in enumeration order.
func NewPolicy(requiredTypes []string, graceDays int, checkIdentifiers bool) (Policy, error) {
	if graceDays < 0 {
		return Policy{}, fmt.Errorf("date grace must not be negative: %d days", graceDays)
	}
	required := make(map[models.DocumentType]bool, len(requiredTypes))
	for _, raw := range requiredTypes {
		t, err := models.ParseDocumentType(raw)
		if err != nil {
			return Policy{}, err
		}
		required[t] = true
	}
	p := Policy{
		DateGrace:        time.Duration(graceDays) * 24 * time.Hour,
		CheckIdentifiers: checkIdentifiers,
	}
	for _, t := range models.DocumentTypes {
		if required[t] {
			p.RequiredTypes = append(p.RequiredTypes, t)
		}
	}
	return p, nil
}

// DefaultRules returns the rule list in evaluation order.
func DefaultRules(p Policy) []Rule {
	rules := []Rule{
		PatientNameRule(),
		DateLogicRule(p.DateGrace),
		AmountRule(),
		DuplicateRule(),
	}
	if p.CheckIdentifiers {
		rules = append(rules, IdentifierRule())
	}
	return rules
}

// PatientNameRule emits a single name_mismatch when any two canonical records
// carry names that do not match.
func PatientNameRule() Rule {
	return Rule{
		Name: "patient_name",
		Check: func(b BundleView) []models.Discrepancy {
			var (
				docs  []models.DocumentType
				names []string
			)
			for _, rec := range b.Canonical() {
				named, ok := rec.(models.NamedRecord)
				if !ok || named.PatientNameField().Blank() || NormalizeName(named.PatientNameField().String()) == "" {
					continue
				}
				docs = append(docs, rec.Type())
				names = append(names, named.PatientNameField().String())
			}

			for i := 0; i < len(names); i++ {
				for j := i + 1; j < len(names); j++ {
					if !NamesMatch(names[i], names[j]) {
						return []models.Discrepancy{{
							Field:             "patient_name",
							DocumentsInvolved: docs,
							ValuesObserved:    names,
							RuleViolated:      models.RuleNameMismatch,
						}}
					}
				}
			}
			return nil
		},
	}
}

// DateLogicRule checks that the stay is ordered and that the billed service
// date falls inside it, give or take grace.
func DateLogicRule(grace time.Duration) Rule {
	return Rule{
		Name: "date_logic",
		Check: func(b BundleView) []models.Discrepancy {
			var out []models.Discrepancy

			var service *time.Time
			if b.Bill != nil && !b.Bill.DateOfService.Blank() {
				if t, err := NormalizeDate(b.Bill.DateOfService.String()); err != nil {
					out = append(out, unparseableDate("date_of_service", models.DocumentTypeBill, b.Bill.DateOfService))
				} else {
					service = &t
				}
			}

			if b.Discharge == nil {
				return out
			}

			var admission, discharge *time.Time
			if !b.Discharge.AdmissionDate.Blank() {
				if t, err := NormalizeDate(b.Discharge.AdmissionDate.String()); err != nil {
					out = append(out, unparseableDate("admission_date", models.DocumentTypeDischargeSummary, b.Discharge.AdmissionDate))
				} else {
					admission = &t
				}
			}
			if !b.Discharge.DischargeDate.Blank() {
				if t, err := NormalizeDate(b.Discharge.DischargeDate.String()); err != nil {
					out = append(out, unparseableDate("discharge_date", models.DocumentTypeDischargeSummary, b.Discharge.DischargeDate))
				} else {
					discharge = &t
				}
			}

			if admission == nil || discharge == nil {
				return out
			}
			if admission.After(*discharge) {
				return append(out, models.Discrepancy{
					Field:             "admission_date",
					DocumentsInvolved: []models.DocumentType{models.DocumentTypeDischargeSummary},
					ValuesObserved:    []string{b.Discharge.AdmissionDate.String(), b.Discharge.DischargeDate.String()},
					RuleViolated:      models.RuleDateOrder,
				})
			}

			if service == nil {
				return out
			}
			if service.Before(admission.Add(-grace)) || service.After(discharge.Add(grace)) {
				out = append(out, models.Discrepancy{
					Field: "date_of_service",
					DocumentsInvolved: []models.DocumentType{
						models.DocumentTypeBill,
						models.DocumentTypeDischargeSummary,
					},
					ValuesObserved: []string{
						b.Bill.DateOfService.String(),
						b.Discharge.AdmissionDate.String(),
						b.Discharge.DischargeDate.String(),
					},
					RuleViolated: models.RuleDateOutOfRange,
				})
			}
			return out
		},
	}
}

func unparseableDate(field string, doc models.DocumentType, value models.FieldText) models.Discrepancy {
	return models.Discrepancy{
		Field:             field,
		DocumentsInvolved: []models.DocumentType{doc},
		ValuesObserved:    []string{value.String()},
		RuleViolated:      models.RuleUnparseableDate,
	}
}

// AmountRule requires the billed total to be a positive amount.
func AmountRule() Rule {
	return Rule{
		Name: "amount",
		Check: func(b BundleView) []models.Discrepancy {
			if b.Bill == nil || b.Bill.TotalAmount.Blank() {
				return nil
			}
			d := models.Discrepancy{
				Field:             "total_amount",
				DocumentsInvolved: []models.DocumentType{models.DocumentTypeBill},
				ValuesObserved:    []string{b.Bill.TotalAmount.String()},
			}
			amount, err := NormalizeAmount(b.Bill.TotalAmount.String())
			switch {
			case err != nil:
				d.RuleViolated = models.RuleUnparseableAmount
			case !amount.IsPositive():
				d.RuleViolated = models.RuleInvalidAmount
			default:
				return nil
			}
			return []models.Discrepancy{d}
		},
	}
}

// DuplicateRule flags every record beyond the first of its type.
func DuplicateRule() Rule {
	return Rule{
		Name: "duplicates",
		Check: func(b BundleView) []models.Discrepancy {
			if len(b.Duplicates) == 0 {
				return nil
			}
			counts := make(map[models.DocumentType]int)
			for _, rec := range b.Duplicates {
				counts[rec.Type()]++
			}
			var out []models.Discrepancy
			for _, t := range models.DocumentTypes {
				n := counts[t]
				if n == 0 {
					continue
				}
				docs := make([]models.DocumentType, n+1)
				for i := range docs {
					docs[i] = t
				}
				out = append(out, models.Discrepancy{
					Field:             "type",
					DocumentsInvolved: docs,
					ValuesObserved:    []string{string(t)},
					RuleViolated:      models.RuleDuplicateDocument,
				})
			}
			return out
		},
	}
}

var identifierPlaceholders = map[string]struct{}{
	"unknown": {}, "n/a": {}, "na": {}, "none": {}, "null": {}, "-": {},
}

// IdentifierRule requires the insurance card to carry a policy number and a member id.
func IdentifierRule() Rule {
	return Rule{
		Name: "identifiers",
		Check: func(b BundleView) []models.Discrepancy {
			if b.IDCard == nil {
				return nil
			}
			var out []models.Discrepancy
			for _, f := range []struct {
				name  string
				value models.FieldText
			}{
				{"policy_number", b.IDCard.PolicyNumber},
				{"member_id", b.IDCard.MemberID},
			} {
				v := strings.ToLower(strings.TrimSpace(f.value.String()))
				if _, placeholder := identifierPlaceholders[v]; v != "" && !placeholder {
					continue
				}
				out = append(out, models.Discrepancy{
					Field:             f.name,
					DocumentsInvolved: []models.DocumentType{models.DocumentTypeIDCard},
					ValuesObserved:    []string{f.value.String()},
					RuleViolated:      models.RuleInvalidIdentifier,
				})
			}
			return out
		},
	}
}
