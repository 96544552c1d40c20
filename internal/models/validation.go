package models

// RuleKind names the check a discrepancy violated.
type RuleKind string

const (
	RuleNameMismatch      RuleKind = "name_mismatch"
	RuleDateOrder         RuleKind = "date_order"
	RuleDateOutOfRange    RuleKind = "date_out_of_range"
	RuleUnparseableDate   RuleKind = "unparseable_date"
	RuleUnparseableAmount RuleKind = "unparseable_amount"
	RuleInvalidAmount     RuleKind = "invalid_amount"
	RuleDuplicateDocument RuleKind = "duplicate_document"
	RuleInvalidIdentifier RuleKind = "invalid_identifier"
)

// Hard reports whether a violation of k forces rejection.
func (k RuleKind) Hard() bool {
	return k == RuleNameMismatch || k == RuleDateOrder
}

type Discrepancy struct {
	Field             string         `json:"field"`
	DocumentsInvolved []DocumentType `json:"documents_involved"`
	ValuesObserved    []string       `json:"values_observed"`
	RuleViolated      RuleKind       `json:"rule_violated"`
}

type ValidationResult struct {
	MissingDocuments []DocumentType `json:"missing_documents"`
	Discrepancies    []Discrepancy  `json:"discrepancies"`
}

// Clean reports whether nothing is missing and no discrepancy was found.
func (r ValidationResult) Clean() bool {
	return len(r.MissingDocuments) == 0 && len(r.Discrepancies) == 0
}
