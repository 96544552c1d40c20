package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"superclaims/internal/models"
	"superclaims/internal/service"
)

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

func TestClassifierService_Classify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  models.DocumentType
	}{
		{"plain json", `{"type": "bill"}`, models.DocumentTypeBill},
		{"fenced json", "```json\n{\"type\": \"discharge_summary\"}\n```", models.DocumentTypeDischargeSummary},
		{"prose around json", `Sure! Here is the answer: {"type": "ID_CARD"} Hope this helps.`, models.DocumentTypeIDCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{reply: tt.reply}
			got, err := service.NewClassifierService(gen, zap.NewNop()).Classify(context.Background(), "CITY HOSPITAL INVOICE")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, gen.prompt, "CITY HOSPITAL INVOICE")
		})
	}
}

func TestClassifierService_Errors(t *testing.T) {
	llmDown := errors.New("gigachat unavailable")
	tests := []struct {
		name    string
		text    string
		gen     *stubGenerator
		wantErr error
	}{
		{"empty text", "  ", &stubGenerator{}, service.ErrNoText},
		{"llm error", "text", &stubGenerator{err: llmDown}, llmDown},
		{"unknown type", "text", &stubGenerator{reply: `{"type": "unknown"}`}, service.ErrUnknownDocument},
		{"unsupported type", "text", &stubGenerator{reply: `{"type": "receipt"}`}, models.ErrInvalidDocumentType},
		{"no json", "text", &stubGenerator{reply: "I cannot tell."}, nil},
		{"broken json", "text", &stubGenerator{reply: `{"type": bill}`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.NewClassifierService(tt.gen, zap.NewNop()).Classify(context.Background(), tt.text)
			var classErr *service.ClassificationError
			require.ErrorAs(t, err, &classErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClassifierService_InvalidReplyIsClippedByRune(t *testing.T) {
	gen := &stubGenerator{reply: "a" + strings.Repeat("я", 300)}
	_, err := service.NewClassifierService(gen, zap.NewNop()).Classify(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), "a"+strings.Repeat("я", 199)+"...")
	assert.True(t, strings.HasSuffix(err.Error(), "..."), err.Error())
}

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

func TestExtractionService_Extract(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
  "type": "invoice",
  "hospital_name": "City Hospital",
  "total_amount": 12500.5,
  "date_of_service": "03/01/2025",
  "patient_name": "John Doe",
  "bill_items": ["Room", "Surgery"]
}` + "\n```"}

	rec, err := service.NewExtractionService(gen, zap.NewNop()).Extract(context.Background(), "bill text", models.DocumentTypeBill)
	require.NoError(t, err)

	b, ok := rec.(*models.Bill)
	require.True(t, ok)
	assert.Equal(t, models.DocumentTypeBill, b.Type())
	assert.Equal(t, models.FieldText("12500.5"), b.TotalAmount)
	assert.Equal(t, models.FieldText("John Doe"), b.PatientName)
	assert.Equal(t, models.FieldList{"Room", "Surgery"}, b.BillItems)
	assert.True(t, strings.Contains(gen.prompt, "bill text"))
	assert.Contains(t, gen.prompt, "hospital_name")
}

func TestExtractionService_NullFields(t *testing.T) {
	gen := &stubGenerator{reply: `{"patient_name": null, "policy_number": "P-1", "member_id": null, "insurance_provider": "Acme"}`}

	rec, err := service.NewExtractionService(gen, zap.NewNop()).Extract(context.Background(), "card", models.DocumentTypeIDCard)
	require.NoError(t, err)

	card := rec.(*models.IDCard)
	assert.True(t, card.PatientName.Blank())
	assert.True(t, card.MemberID.Blank())
	assert.Equal(t, models.FieldText("P-1"), card.PolicyNumber)
}

func TestExtractionService_OddFieldShapesSurvive(t *testing.T) {
	gen := &stubGenerator{reply: `{
  "patient_name": "John Doe",
  "total_amount": {"value": 1000, "currency": "INR"},
  "date_of_service": false,
  "bill_items": "X-ray, MRI"
}`}

	rec, err := service.NewExtractionService(gen, zap.NewNop()).Extract(context.Background(), "bill text", models.DocumentTypeBill)
	require.NoError(t, err)

	b := rec.(*models.Bill)
	assert.JSONEq(t, `{"value": 1000, "currency": "INR"}`, b.TotalAmount.String())
	assert.Equal(t, models.FieldText("false"), b.DateOfService)
	assert.Equal(t, models.FieldList{"X-ray, MRI"}, b.BillItems)
	assert.Equal(t, models.FieldText("John Doe"), b.PatientName)
}

func TestExtractionService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		docType models.DocumentType
		gen     *stubGenerator
	}{
		{"unknown type", models.DocumentType("receipt"), &stubGenerator{reply: `{}`}},
		{"llm error", models.DocumentTypeBill, &stubGenerator{err: service.ErrEmptyCompletion}},
		{"no json", models.DocumentTypeBill, &stubGenerator{reply: "nothing here"}},
		{"truncated json", models.DocumentTypeDischargeSummary, &stubGenerator{reply: `{"patient_name": "John", "procedures": [}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.NewExtractionService(tt.gen, zap.NewNop()).Extract(context.Background(), "text", tt.docType)
			var extErr *service.ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.docType, extErr.Type)
		})
	}
}

func TestOCRService_RejectsNonPDF(t *testing.T) {
	_, err := service.NewOCRService(zap.NewNop()).ExtractText(context.Background(), service.Upload{FileName: "scan.png", Data: []byte{1}})
	assert.ErrorIs(t, err, service.ErrUnsupportedFormat)
}
