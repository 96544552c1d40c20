package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoText            = errors.New("no text found in document")
)

type OCRService struct {
	logger *zap.Logger
}

// NewOCRService creates a text extractor backed by the PDF text layer.
func NewOCRService(logger *zap.Logger) *OCRService {
	return &OCRService{
		logger: logger,
	}
}

// ExtractText extracts the text layer of an uploaded PDF.
func (s *OCRService) ExtractText(ctx context.Context, upload Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if ext != ".pdf" {
		return "", fmt.Errorf("%w: %s (supported: pdf)", ErrUnsupportedFormat, ext)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := s.extractTextFromPDF(upload)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	s.logger.Info("Text extraction completed",
		zap.String("file", upload.FileName),
		zap.String("method", "go-fitz"),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func (s *OCRService) extractTextFromPDF(upload Upload) (string, error) {
	doc, err := fitz.NewFromMemory(upload.Data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder

	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			s.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", upload.FileName),
				zap.Error(err),
			)
			continue
		}

		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(sanitizeUTF8(textBuilder.String()))
	if text == "" {
		return "", ErrNoText
	}

	s.logger.Debug("PDF text extracted using go-fitz",
		zap.String("file", upload.FileName),
		zap.Int("pages", doc.NumPage()),
	)
	return text, nil
}
