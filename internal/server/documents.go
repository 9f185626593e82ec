package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/ingest"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
	"github.com/mohammad-safakhou/opticqa/internal/store"
)

type documentStore interface {
	ListDocuments(ctx context.Context) ([]store.DocumentRecord, error)
	DeleteDocument(ctx context.Context, id string) error
}

type uploader interface {
	Ingest(ctx context.Context, up ingest.Upload) (ingest.Result, error)
}

// DocumentsHandler serves the admin document routes.
type DocumentsHandler struct {
	store          documentStore
	pipeline       uploader
	maxUploadBytes int64
	uploadTimeout  time.Duration
}

func NewDocumentsHandler(st documentStore, pipeline uploader, maxUploadBytes int64, uploadTimeout time.Duration) *DocumentsHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = ingest.DefaultMaxUploadBytes
	}
	return &DocumentsHandler{store: st, pipeline: pipeline, maxUploadBytes: maxUploadBytes, uploadTimeout: uploadTimeout}
}

// Register mounts the routes on g behind the admin key check. Extra
// middleware (body limits, timeouts) applies to the upload route only.
func (h *DocumentsHandler) Register(g *echo.Group, sec config.SecurityConfig, upload ...echo.MiddlewareFunc) {
	admin := runtime.EchoAdminMiddleware(sec)
	g.POST("/upload", h.upload, append([]echo.MiddlewareFunc{admin}, upload...)...)
	g.GET("/documents", h.list, admin)
	g.DELETE("/documents/:id", h.delete, admin)
}

func (h *DocumentsHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return echo.NewHTTPError(http.StatusBadRequest, msgNoFile)
		}
		return uploadError(err)
	}
	if fh.Size > h.maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, msgTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgUploadFailed).SetInternal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgUploadFailed).SetInternal(err)
	}

	ctx := c.Request().Context()
	if h.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.uploadTimeout)
		defer cancel()
	}
	res, err := h.pipeline.Ingest(ctx, ingest.Upload{Filename: fh.Filename, Data: data})
	if err != nil {
		return uploadError(err)
	}
	return c.JSON(http.StatusOK, uploadResponse{
		Message: "File uploaded and processed successfully",
		ID:      res.DocumentID,
		Chunks:  res.Chunks,
	})
}

func (h *DocumentsHandler) list(c echo.Context) error {
	docs, err := h.store.ListDocuments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgListFailed).SetInternal(err)
	}
	out := make([]documentPayload, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentPayload{ID: d.ID, Filename: d.Filename, Size: d.FileSize, CreatedAt: d.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DocumentsHandler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}
	if err := h.store.DeleteDocument(c.Request().Context(), id.String()); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgDocumentNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, msgDeleteFailed).SetInternal(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Document deleted successfully"})
}
