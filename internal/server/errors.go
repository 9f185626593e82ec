package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/opticqa/internal/ingest"
)

// Client-facing messages. Server-side failures never leak their cause.
const (
	msgNoFile           = "No file uploaded"
	msgDuplicate        = "File already uploaded"
	msgEmptyDocument    = "PDF contains no readable text"
	msgUnsupported      = "Only PDF files are supported"
	msgTooLarge         = "File too large"
	msgUploadFailed     = "Upload failed"
	msgListFailed       = "Failed to fetch documents"
	msgInvalidID        = "Invalid document id"
	msgDocumentNotFound = "Document not found"
	msgDeleteFailed     = "Delete failed"
	msgInvalidBody      = "Invalid request body"
	msgAskFailed        = "Something went wrong."
)

func uploadError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if he.Code == http.StatusRequestEntityTooLarge {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msgTooLarge).SetInternal(err)
		}
		return he
	case errors.Is(err, ingest.ErrNoFile):
		return echo.NewHTTPError(http.StatusBadRequest, msgNoFile)
	case errors.Is(err, ingest.ErrDuplicateDocument):
		return echo.NewHTTPError(http.StatusBadRequest, msgDuplicate)
	case errors.Is(err, ingest.ErrEmptyDocument):
		return echo.NewHTTPError(http.StatusBadRequest, msgEmptyDocument)
	case errors.Is(err, ingest.ErrUnsupportedFile):
		return echo.NewHTTPError(http.StatusBadRequest, msgUnsupported)
	case errors.Is(err, ingest.ErrFileTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msgTooLarge)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgUploadFailed).SetInternal(err)
	}
}
