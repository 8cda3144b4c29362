package services

import "errors"

// Service errors. Handlers map them to problem responses with errors.Is.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrWrongKind       = errors.New("dataset belongs to another dashboard")
	ErrUnknownChart    = errors.New("unknown chart")
	ErrUnknownTable    = errors.New("unknown table")
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrUploadTooLarge  = errors.New("uploaded file exceeds the size limit")
	ErrUnknownKind     = errors.New("unknown dashboard kind")
)
