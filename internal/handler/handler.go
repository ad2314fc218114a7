// Package handler holds the echo handlers of the mobile and web surfaces.
// Handlers bind and convert the request, call one service method and wrap
// the result in the response envelope.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
)

// MsgInvalidID is returned for a non-numeric path or query id.
const MsgInvalidID = "ID harus berupa angka!"

const requestTimeout = 15 * time.Second

// requestContext bounds the work of one request.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusOf maps a business rule failure to its HTTP status.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindInvalidCredentials, service.KindNotConfirmed,
		service.KindConflict, service.KindPreconditionFailed:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as an envelope.  Internal failures are logged with the
// route and answered with a generic message.
func fail(c echo.Context, log logrus.FieldLogger, err error) error {
	var e *service.Error
	if errors.As(err, &e) && e.Kind != service.KindInternal {
		return response.Fail(c, statusOf(e.Kind), e.Message)
	}
	log.WithFields(logrus.Fields{
		"method": c.Request().Method,
		"route":  c.Path(),
	}).WithError(err).Error("request failed")
	return response.Fail(c, http.StatusInternalServerError, service.MsgInternal)
}

func principal(c echo.Context) service.Principal {
	return service.Principal{ID: middleware.UserID(c), Role: middleware.Role(c)}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// flexInt accepts a JSON number, a numeric string or an empty value, as
// mobile clients send ids either way.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func (f *flexInt) UnmarshalParam(s string) error { return f.UnmarshalJSON([]byte(s)) }

// id returns the value as an id; non-positive values count as missing.
func (f flexInt) id() uint64 {
	if f <= 0 {
		return 0
	}
	return uint64(f)
}

// flexText keeps a JSON string or number as text so the service can apply
// its own numeric rules.
type flexText string

func (f *flexText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexText(b)
	return nil
}

func (f *flexText) UnmarshalParam(s string) error {
	*f = flexText(s)
	return nil
}

// formFile opens the single file uploaded under field.  It returns nil when
// the field is absent; the caller closes the returned closer.
func formFile(c echo.Context, field string) (*model.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	up, closer, err := openUpload(fh)
	if err != nil {
		return nil, func() {}, err
	}
	return &up, closer, nil
}

// formFiles opens every file uploaded under field.
func formFiles(c echo.Context, field string) ([]model.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	var (
		uploads []model.Upload
		closers []func()
	)
	closeAll := func() {
		for _, cl := range closers {
			cl()
		}
	}
	for _, fh := range form.File[field] {
		up, cl, err := openUpload(fh)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		uploads = append(uploads, up)
		closers = append(closers, cl)
	}
	return uploads, closeAll, nil
}

func openUpload(fh *multipart.FileHeader) (model.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, nil, err
	}
	return model.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
