package domain

import "errors"

var (
	ErrInvalidPath         = errors.New("path is empty or malformed")
	ErrInvalidURI          = errors.New("unsupported or malformed source URI")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrDocumentNotFound    = errors.New("document not found")
)
