// Package validation checks upload metadata and dashboard queries with
// go-playground/validator and reports failures as API errors.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"advisingdash/internal/dataset"
	apierrors "advisingdash/internal/errors"
)

// Upload describes a file submitted to a dashboard.
type Upload struct {
	Kind     string `json:"kind" validate:"required,oneof=advising workshop"`
	Filename string `json:"filename" validate:"required,max=255,safe_filename,dataset_file"`
	Size     int64  `json:"size" validate:"gt=0"`
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate       *validator.Validate
	maxUploadBytes int64
}

// New builds a Validator. maxUploadBytes bounds Upload.Size; zero disables
// the bound.
func New(maxUploadBytes int64) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("dataset_file", isDatasetFile)
	_ = v.RegisterValidation("safe_filename", isSafeFilename)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, maxUploadBytes: maxUploadBytes}
}

// Struct validates s against its tags. Failures come back as a
// VALIDATION_FAILED *apierrors.APIError listing every field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	return apierrors.NewValidationErrors(FieldErrors(fieldErrs))
}

// Upload validates upload metadata. An unsupported extension yields 415
// and an oversized file 413; other problems are reported as 400.
func (v *Validator) Upload(u Upload) error {
	if v.maxUploadBytes > 0 && u.Size > v.maxUploadBytes {
		return apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.ErrPayloadTooLarge.ErrorCode,
			apierrors.ErrPayloadTooLarge.Message,
			map[string]interface{}{
				"max_size": v.maxUploadBytes,
				"size":     u.Size,
			},
		)
	}

	err := v.validate.Struct(u)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "dataset_file" {
			return apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				apierrors.ErrUnsupportedFile.ErrorCode,
				apierrors.ErrUnsupportedFile.Message,
				FieldErrors(fieldErrs),
			)
		}
	}
	return apierrors.NewValidationErrors(FieldErrors(fieldErrs))
}

// FieldErrors converts validator failures to API validation details.
func FieldErrors(errs validator.ValidationErrors) []apierrors.ValidationError {
	out := make([]apierrors.ValidationError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, param)
		}
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "dataset_file":
		return fmt.Sprintf("%s must be a .csv or .xlsx file", field)
	case "safe_filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isDatasetFile(fl validator.FieldLevel) bool {
	return dataset.SupportedExtension(fl.Field().String())
}

// isSafeFilename rejects traversal and control characters. Browsers send
// bare names, so any separator is suspicious.
func isSafeFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
