package api_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"superclaims/internal/api"
	"superclaims/internal/api/handlers"
	"superclaims/internal/dto"
	"superclaims/internal/models"
	"superclaims/internal/service"
	"superclaims/internal/validation"
)

type stubProcessor struct {
	got  []service.Upload
	resp *dto.ProcessClaimResponse
	err  error
}

func (p *stubProcessor) ProcessClaim(ctx context.Context, uploads []service.Upload) (*dto.ProcessClaimResponse, error) {
	p.got = uploads
	return p.resp, p.err
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, field string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func setup(p *stubProcessor, limits handlers.UploadLimits) func(*http.Request) (*http.Response, error) {
	logger := zap.NewNop()
	app := api.SetupRouter(
		handlers.NewClaimHandler(p, limits, logger),
		handlers.NewHealthHandler(map[string]string{"llm": "stub"}),
		api.RouterConfig{BodyLimit: 1024 * 1024},
		logger,
	)
	return func(req *http.Request) (*http.Response, error) { return app.Test(req, -1) }
}

var defaultLimits = handlers.UploadLimits{MaxFiles: 3, MaxFileSize: 64}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestProcessClaim_OK(t *testing.T) {
	p := &stubProcessor{resp: &dto.ProcessClaimResponse{
		ClaimID:       "c-1",
		ClaimDecision: models.ClaimDecision{Status: models.ClaimStatusApproved, Reason: "ok", ConfidenceScore: 0.95},
	}}
	do := setup(p, defaultLimits)

	resp, err := do(multipartRequest(t, handlers.FormFieldFiles,
		formFile{"bill.pdf", []byte("%PDF bill")},
		formFile{"Discharge.PDF", []byte("%PDF discharge")},
	))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "c-1", body["claim_id"])

	require.Len(t, p.got, 2)
	assert.Equal(t, "bill.pdf", p.got[0].FileName)
	assert.Equal(t, []byte("%PDF bill"), p.got[0].Data)
	assert.Equal(t, "Discharge.PDF", p.got[1].FileName)
}

func TestProcessClaim_UploadValidation(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		files   []formFile
		wantErr string
	}{
		{"no files", handlers.FormFieldFiles, nil, "At least one file is required"},
		{"wrong field name", "file", []formFile{{"bill.pdf", []byte("x")}}, "At least one file is required"},
		{"not a pdf", handlers.FormFieldFiles, []formFile{{"bill.png", []byte("x")}}, "Invalid claim files"},
		{"empty file", handlers.FormFieldFiles, []formFile{{"bill.pdf", nil}}, "Invalid claim files"},
		{"file too large", handlers.FormFieldFiles, []formFile{{"bill.pdf", bytes.Repeat([]byte("x"), 65)}}, "Invalid claim files"},
		{"too many files", handlers.FormFieldFiles, []formFile{
			{"a.pdf", []byte("x")}, {"b.pdf", []byte("x")}, {"c.pdf", []byte("x")}, {"d.pdf", []byte("x")},
		}, "Too many files: 4 (maximum 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProcessor{}
			resp, err := setup(p, defaultLimits)(multipartRequest(t, tt.field, tt.files...))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tt.wantErr, body.Error)
			assert.Nil(t, p.got, "processor must not be called")
		})
	}
}

func TestProcessClaim_UploadProblemDetails(t *testing.T) {
	resp, err := setup(&stubProcessor{}, defaultLimits)(multipartRequest(t, handlers.FormFieldFiles,
		formFile{"notes.txt", []byte("x")},
		formFile{"empty.pdf", nil},
	))
	require.NoError(t, err)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, []string{
		"notes.txt: only PDF files are supported",
		"empty.pdf: file is empty",
	}, body.Details)
}

func TestProcessClaim_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/process", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := setup(&stubProcessor{}, defaultLimits)(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessClaim_ProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "malformed bundle is reported",
			err:     fmt.Errorf("failed to validate claim: %w", validation.ErrValidationInternal),
			wantMsg: "failed to validate claim: validation internal error",
		},
		{
			name:    "other failures are hidden",
			err:     errors.New("boom"),
			wantMsg: "Failed to process claim",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProcessor{err: tt.err}
			resp, err := setup(p, defaultLimits)(multipartRequest(t, handlers.FormFieldFiles, formFile{"bill.pdf", []byte("x")}))
			require.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, decode[dto.ErrorResponse](t, resp).Error)
		})
	}
}

func TestHealth(t *testing.T) {
	resp, err := setup(&stubProcessor{}, defaultLimits)(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, handlers.ServiceName, body.Service)
	assert.Equal(t, "stub", body.Checks["llm"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "0b5c7a4e-7f43-4c8e-9a55-3f1f7b9d2c11")
	resp, err := setup(&stubProcessor{}, defaultLimits)(req)
	require.NoError(t, err)
	assert.Equal(t, "0b5c7a4e-7f43-4c8e-9a55-3f1f7b9d2c11", resp.Header.Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	resp, err := setup(&stubProcessor{}, defaultLimits)(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
