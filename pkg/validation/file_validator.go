package validation

import (
	"fmt"
	"path"
	"strings"

	apperrors "github.com/NatiBytes/crispy-vison/internal/errors"
)

// FileValidator enforces the accepted upload formats: common raster images
// selected by extension, with an image/* MIME type when one is declared.
type FileValidator struct {
	allowedExtensions map[string]struct{}
}

// NewFileValidator creates a file validator with the default image formats
func NewFileValidator() *FileValidator {
	return &FileValidator{
		allowedExtensions: map[string]struct{}{
			".png":  {},
			".jpg":  {},
			".jpeg": {},
			".gif":  {},
			".webp": {},
		},
	}
}

// NewFileValidatorWithExtensions creates a file validator with custom extensions
func NewFileValidatorWithExtensions(extensions []string) *FileValidator {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &FileValidator{allowedExtensions: allowed}
}

// ValidateImageFile checks whether an uploaded file is acceptable for
// analysis. ContentType may be empty; extensions decide.
func (v *FileValidator) ValidateImageFile(name, contentType string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("file name cannot be empty", nil)
	}

	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return apperrors.NewValidationError("file has no extension", nil)
	}
	if _, ok := v.allowedExtensions[ext]; !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}

	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported content type %q", contentType), nil)
	}

	return nil
}
