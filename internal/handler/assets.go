package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
	"github.com/iliyamo/apparte-kost/internal/storage"
)

// AssetHandler serves stored images under /uploads when the public URL
// points back at this server.
type AssetHandler struct {
	Files *storage.BlobStore
	Log   logrus.FieldLogger
}

func NewAssetHandler(files *storage.BlobStore, log logrus.FieldLogger) *AssetHandler {
	return &AssetHandler{Files: files, Log: log}
}

// Serve: GET /uploads/*.
func (h *AssetHandler) Serve(c echo.Context) error {
	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || strings.Contains(key, "..") {
		return response.NotFound(c, "File tidak ditemukan")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.Files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return response.NotFound(c, "File tidak ditemukan")
	}
	if err != nil {
		h.Log.WithError(err).WithField("key", key).Error("open upload")
		return response.Fail(c, http.StatusInternalServerError, service.MsgInternal)
	}
	defer r.Close()

	ct := r.ContentType()
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(r.Size(), 10))
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, ct, r)
}
