package ingest

import "errors"

var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrDuplicateDocument = errors.New("file already uploaded")
	ErrEmptyDocument     = errors.New("document contains no readable text")
	ErrUnsupportedFile   = errors.New("unsupported file type, only PDF is accepted")
	ErrFileTooLarge      = errors.New("file exceeds the upload size limit")
)
