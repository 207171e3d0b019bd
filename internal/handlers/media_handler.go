package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/anonto42/yatube/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves uploaded files from storage
type MediaHandler struct {
	storage storage.Storage
}

func NewMediaHandler(store storage.Storage) *MediaHandler {
	return &MediaHandler{storage: store}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/media/*", h.Serve)
}

func (h *MediaHandler) Serve(c echo.Context) error {
	rc, err := h.storage.Open(c.Request().Context(), c.Param("*"))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, mimetype.Detect(data).String(), data)
}
