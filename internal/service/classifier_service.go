package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"superclaims/internal/models"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// maxPromptText is the number of characters of document text sent to the model.
const maxPromptText = 12000

var ErrUnknownDocument = errors.New("document does not match any known type")

// ClassificationError reports that a document could not be assigned a type.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

type ClassifierService struct {
	llm    Generator
	logger *zap.Logger
}

func NewClassifierService(llm Generator, logger *zap.Logger) *ClassifierService {
	return &ClassifierService{
		llm:    llm,
		logger: logger,
	}
}

type classification struct {
	Type string `json:"type"`
}

// Classify asks the model which document type text belongs to.
func (s *ClassifierService) Classify(ctx context.Context, text string) (models.DocumentType, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ClassificationError{Err: ErrNoText}
	}

	content, err := s.llm.Generate(ctx, buildClassificationPrompt(text))
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	var c classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return "", &ClassificationError{Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}

	if strings.EqualFold(strings.TrimSpace(c.Type), "unknown") {
		return "", &ClassificationError{Err: ErrUnknownDocument}
	}
	docType, err := models.ParseDocumentType(c.Type)
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	s.logger.Info("Document classified", zap.String("type", string(docType)))
	return docType, nil
}

func buildClassificationPrompt(text string) string {
	return fmt.Sprintf(`Classify the medical insurance claim document below.

Document text:
%s

Return a JSON object in exactly this format:
{"type": "bill" | "discharge_summary" | "id_card" | "unknown"}

RULES:
- "bill": a hospital bill or invoice with charges and a total amount.
- "discharge_summary": a clinical summary with admission and discharge dates and a diagnosis.
- "id_card": an insurance or member identity card with a policy number.
- Use "unknown" when the document is none of these.`, clipText(text, maxPromptText))
}
