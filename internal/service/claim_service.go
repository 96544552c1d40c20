package service

import (
	"context"
	"fmt"
	"time"

	"superclaims/internal/decision"
	"superclaims/internal/dto"
	"superclaims/internal/models"
	"superclaims/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Upload is one file submitted with a claim.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type TextExtractor interface {
	ExtractText(ctx context.Context, upload Upload) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) (models.DocumentType, error)
}

type Extractor interface {
	Extract(ctx context.Context, text string, docType models.DocumentType) (models.Record, error)
}

// Processing stages reported in failed_documents.
const (
	StageTextExtraction = "text_extraction"
	StageClassification = "classification"
	StageExtraction     = "extraction"
)

type ClaimOptions struct {
	MaxConcurrency int
	RequestTimeout time.Duration
}

type ClaimService struct {
	text       TextExtractor
	classifier Classifier
	extractor  Extractor
	validator  *validation.Validator
	engine     *decision.Engine
	opts       ClaimOptions
	logger     *zap.Logger
}

func NewClaimService(
	text TextExtractor,
	classifier Classifier,
	extractor Extractor,
	validator *validation.Validator,
	engine *decision.Engine,
	opts ClaimOptions,
	logger *zap.Logger,
) *ClaimService {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &ClaimService{
		text:       text,
		classifier: classifier,
		extractor:  extractor,
		validator:  validator,
		engine:     engine,
		opts:       opts,
		logger:     logger,
	}
}

type documentResult struct {
	record  models.Record
	failure *dto.DocumentFailure
}

// ProcessClaim runs every upload through text extraction, classification and
// field extraction, then validates the resulting bundle and decides the claim.
// A document that fails any stage is left out of the bundle and reported in
// the processing metadata. Only a structurally broken bundle or a cancelled
// caller context produces an error.
func (s *ClaimService) ProcessClaim(ctx context.Context, uploads []Upload) (*dto.ProcessClaimResponse, error) {
	start := time.Now()
	claimID := uuid.New().String()
	logger := s.logger.With(zap.String("claim_id", claimID))

	workCtx := ctx
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		workCtx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	logger.Info("Processing claim", zap.Int("files", len(uploads)))

	// Each worker writes only its own slot, so the bundle keeps upload order.
	results := make([]documentResult, len(uploads))
	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			results[i] = s.processDocument(workCtx, upload, logger)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("claim processing cancelled: %w", err)
	}

	bundle := make(models.Bundle, 0, len(uploads))
	names := make([]string, 0, len(uploads))
	failures := make([]dto.DocumentFailure, 0)
	for i, r := range results {
		if r.failure != nil {
			failures = append(failures, *r.failure)
			continue
		}
		bundle = append(bundle, r.record)
		names = append(names, uploads[i].FileName)
	}

	result, err := s.validator.Validate(bundle)
	if err != nil {
		logger.Error("Claim bundle is malformed", zap.Error(err))
		return nil, fmt.Errorf("failed to validate claim: %w", err)
	}

	documents := make([]dto.DocumentResponse, len(bundle))
	for i, rec := range bundle {
		documents[i] = dto.DocumentResponse{
			FileName: names[i],
			Type:     rec.Type(),
			Content:  rec,
		}
	}
	claimDecision := s.engine.Decide(result)

	status := dto.ValidationStatusPassed
	if !result.Clean() {
		status = dto.ValidationStatusIssuesFound
	}

	elapsed := time.Since(start)
	logger.Info("Claim processed",
		zap.String("status", string(claimDecision.Status)),
		zap.Int("documents", len(bundle)),
		zap.Int("failed", len(failures)),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.ProcessClaimResponse{
		ClaimID:       claimID,
		Documents:     documents,
		Validation:    result,
		ClaimDecision: claimDecision,
		ProcessingMetadata: dto.ProcessingMetadata{
			TotalFilesProcessed: len(uploads),
			DocumentTypesFound:  typesFound(bundle),
			ValidationStatus:    status,
			FailedDocuments:     failures,
			ProcessingTimeMS:    elapsed.Milliseconds(),
		},
	}, nil
}

func (s *ClaimService) processDocument(ctx context.Context, upload Upload, logger *zap.Logger) documentResult {
	fail := func(stage string, err error) documentResult {
		logger.Warn("Document dropped from claim",
			zap.String("file", upload.FileName),
			zap.String("stage", stage),
			zap.Error(err),
		)
		return documentResult{failure: &dto.DocumentFailure{
			FileName: upload.FileName,
			Stage:    stage,
			Error:    err.Error(),
		}}
	}

	if err := ctx.Err(); err != nil {
		return fail(StageTextExtraction, err)
	}
	text, err := s.text.ExtractText(ctx, upload)
	if err != nil {
		return fail(StageTextExtraction, err)
	}

	docType, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return fail(StageClassification, err)
	}

	rec, err := s.extractor.Extract(ctx, text, docType)
	if err != nil {
		return fail(StageExtraction, err)
	}
	if rec == nil {
		return fail(StageExtraction, &ExtractionError{Type: docType, Err: fmt.Errorf("extractor returned no record")})
	}

	logger.Debug("Document processed",
		zap.String("file", upload.FileName),
		zap.String("type", string(docType)),
	)
	return documentResult{record: rec}
}

// typesFound lists the distinct types in the bundle in enumeration order.
func typesFound(bundle models.Bundle) []models.DocumentType {
	seen := make(map[models.DocumentType]bool)
	for _, t := range bundle.Types() {
		seen[t] = true
	}
	found := make([]models.DocumentType, 0, len(seen))
	for _, t := range models.DocumentTypes {
		if seen[t] {
			found = append(found, t)
		}
	}
	return found
}
