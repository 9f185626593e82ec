package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/opticqa/internal/rag"
)

type answerer interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
}

// AskHandler serves the public question route.
type AskHandler struct {
	service answerer
}

func NewAskHandler(svc answerer) *AskHandler {
	return &AskHandler{service: svc}
}

func (h *AskHandler) Register(g *echo.Group) {
	g.POST("/ask", h.ask)
}

func (h *AskHandler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	ans, err := h.service.Ask(c.Request().Context(), req.Question)
	if err != nil {
		var ve *rag.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Reason)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, msgAskFailed).SetInternal(err)
	}
	typ := answerSuccess
	if ans.Refused {
		typ = answerRefused
	}
	return c.JSON(http.StatusOK, askResponse{Type: typ, Answer: ans.Text})
}
