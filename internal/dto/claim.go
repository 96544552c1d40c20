package dto

import "superclaims/internal/models"

type ProcessClaimResponse struct {
	ClaimID            string                  `json:"claim_id"`
	Documents          []DocumentResponse      `json:"documents"`
	Validation         models.ValidationResult `json:"validation"`
	ClaimDecision      models.ClaimDecision    `json:"claim_decision"`
	ProcessingMetadata ProcessingMetadata      `json:"processing_metadata"`
}

// DocumentResponse is one successfully classified and extracted upload.
type DocumentResponse struct {
	FileName string              `json:"file_name"`
	Type     models.DocumentType `json:"type"`
	Content  models.Record       `json:"content"`
}

type ProcessingMetadata struct {
	TotalFilesProcessed int                   `json:"total_files_processed"`
	DocumentTypesFound  []models.DocumentType `json:"document_types_found"`
	ValidationStatus    string                `json:"validation_status"`
	FailedDocuments     []DocumentFailure     `json:"failed_documents"`
	ProcessingTimeMS    int64                 `json:"processing_time_ms"`
}

// DocumentFailure records an upload dropped from the bundle and the stage that failed.
type DocumentFailure struct {
	FileName string `json:"file_name"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

const (
	ValidationStatusPassed      = "passed"
	ValidationStatusIssuesFound = "issues_found"
)

// ValidateBundleResponse is the offline validation output of claimctl.
type ValidateBundleResponse struct {
	Validation    models.ValidationResult `json:"validation"`
	ClaimDecision models.ClaimDecision    `json:"claim_decision"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
