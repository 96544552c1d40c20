package service

import (
	"context"
	"fmt"
	"strings"

	"superclaims/internal/models"

	"go.uber.org/zap"
)

// ExtractionError reports that the fields of a classified document could not be read.
type ExtractionError struct {
	Type models.DocumentType
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed: %v", e.Type, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type ExtractionService struct {
	llm    Generator
	logger *zap.Logger
}

func NewExtractionService(llm Generator, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		llm:    llm,
		logger: logger,
	}
}

// Extract asks the model for the fields of docType and decodes them into a record.
func (s *ExtractionService) Extract(ctx context.Context, text string, docType models.DocumentType) (models.Record, error) {
	schema, ok := extractionSchemas[docType]
	if !ok {
		return nil, &ExtractionError{Type: docType, Err: fmt.Errorf("%w: %q", models.ErrInvalidDocumentType, docType)}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ExtractionError{Type: docType, Err: ErrNoText}
	}

	content, err := s.llm.Generate(ctx, buildExtractionPrompt(docType, schema, text))
	if err != nil {
		return nil, &ExtractionError{Type: docType, Err: err}
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, &ExtractionError{Type: docType, Err: err}
	}

	rec, err := models.DecodeRecordAs(docType, []byte(raw))
	if err != nil {
		return nil, &ExtractionError{Type: docType, Err: err}
	}

	s.logger.Info("Document fields extracted", zap.String("type", string(docType)))
	return rec, nil
}

var extractionSchemas = map[models.DocumentType]string{
	models.DocumentTypeBill: `{
  "hospital_name": "name of the hospital",
  "total_amount": "total billed amount as written",
  "date_of_service": "date of service as written",
  "patient_name": "full patient name",
  "bill_items": ["one string per billed line item"]
}`,
	models.DocumentTypeDischargeSummary: `{
  "patient_name": "full patient name",
  "diagnosis": "primary diagnosis",
  "admission_date": "admission date as written",
  "discharge_date": "discharge date as written",
  "treating_doctor": "name of the treating doctor",
  "procedures": ["one string per procedure"]
}`,
	models.DocumentTypeIDCard: `{
  "patient_name": "full name of the insured person",
  "policy_number": "insurance policy number",
  "member_id": "member or card id",
  "insurance_provider": "insurance company name"
}`,
}

func buildExtractionPrompt(docType models.DocumentType, schema, text string) string {
	return fmt.Sprintf(`Extract the fields of the %s document below.

Document text:
%s

Return a JSON object in this format:
%s

RULES:
- Use null for any field that is not present in the document.
- Lists must be arrays of strings; use [] when there are none.
- Return ONLY the JSON object.`, strings.ReplaceAll(string(docType), "_", " "), clipText(text, maxPromptText), schema)
}
