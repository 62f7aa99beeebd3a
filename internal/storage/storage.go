package storage

import "errors"

var (
	ErrKeyNotFound         = errors.New("no such key")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrCategoryNotFound    = errors.New("category not found")
)

var (
	ErrNoFiles         = errors.New("no files selected")
	ErrTooManyFiles    = errors.New("too many files")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
)
