package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"superclaims/internal/dto"
	"superclaims/internal/service"
	"superclaims/internal/validation"
	"superclaims/pkg/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FormFieldFiles is the multipart field carrying the claim documents.
const FormFieldFiles = "files"

type ClaimProcessor interface {
	ProcessClaim(ctx context.Context, uploads []service.Upload) (*dto.ProcessClaimResponse, error)
}

type UploadLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

type ClaimHandler struct {
	claims   ClaimProcessor
	limits   UploadLimits
	validate *validator.Validate
	logger   *zap.Logger
}

func NewClaimHandler(claims ClaimProcessor, limits UploadLimits, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{
		claims:   claims,
		limits:   limits,
		validate: validator.New(),
		logger:   logger,
	}
}

type uploadedFile struct {
	FileName string `validate:"required,endswith=.pdf"`
	Size     int64  `validate:"gt=0,ltefield=MaxSize"`
	MaxSize  int64
}

// ProcessClaim godoc
// @Summary Process a medical insurance claim
// @Description Upload the claim documents (bill, discharge summary, ID card) as PDFs. Each file is read, classified and extracted, then the bundle is validated and a decision is returned.
// @Tags claims
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Claim documents (PDF, repeat the field for each file)"
// @Success 200 {object} dto.ProcessClaimResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/claims/process [post]
func (h *ClaimHandler) ProcessClaim(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Multipart form with claim files is required",
		})
	}

	files := form.File[FormFieldFiles]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "At least one file is required",
		})
	}
	if h.limits.MaxFiles > 0 && len(files) > h.limits.MaxFiles {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: fmt.Sprintf("Too many files: %d (maximum %d)", len(files), h.limits.MaxFiles),
		})
	}

	if problems := h.checkFiles(files); len(problems) > 0 {
		h.logger.Warn("Claim upload rejected",
			zap.String("request_id", middleware.RequestID(c)),
			zap.Strings("problems", problems),
		)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "Invalid claim files",
			Details: problems,
		})
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, file := range files {
		upload, err := readUpload(file)
		if err != nil {
			h.logger.Error("Failed to read uploaded file", zap.String("file", file.Filename), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Failed to read file " + file.Filename,
			})
		}
		uploads = append(uploads, upload)
	}

	resp, err := h.claims.ProcessClaim(c.UserContext(), uploads)
	if err != nil {
		h.logger.Error("Failed to process claim",
			zap.String("request_id", middleware.RequestID(c)),
			zap.Error(err),
		)
		msg := "Failed to process claim"
		if errors.Is(err, validation.ErrValidationInternal) {
			msg = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: msg,
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *ClaimHandler) checkFiles(files []*multipart.FileHeader) []string {
	var problems []string
	for _, file := range files {
		f := uploadedFile{
			FileName: strings.ToLower(strings.TrimSpace(file.Filename)),
			Size:     file.Size,
			MaxSize:  h.limits.MaxFileSize,
		}
		if h.limits.MaxFileSize <= 0 {
			f.MaxSize = file.Size
		}
		err := h.validate.Struct(f)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			problems = append(problems, fmt.Sprintf("%s: %v", file.Filename, err))
			continue
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeUploadProblem(file, fe, h.limits.MaxFileSize))
		}
	}
	return problems
}

func describeUploadProblem(file *multipart.FileHeader, fe validator.FieldError, maxSize int64) string {
	switch {
	case fe.Field() == "FileName" && fe.Tag() == "required":
		return "file name is required"
	case fe.Field() == "FileName":
		return fmt.Sprintf("%s: only PDF files are supported", file.Filename)
	case fe.Tag() == "gt":
		return fmt.Sprintf("%s: file is empty", file.Filename)
	default:
		return fmt.Sprintf("%s: file exceeds %d MB", file.Filename, maxSize/(1024*1024))
	}
}

func readUpload(file *multipart.FileHeader) (service.Upload, error) {
	src, err := file.Open()
	if err != nil {
		return service.Upload{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return service.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}
	return service.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
