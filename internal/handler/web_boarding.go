package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// WebBoardingHandler serves /api/web/boardings.  Owners act on their own
// listing whatever :id they send.
type WebBoardingHandler struct {
	Listings *service.ListingService
	Log      logrus.FieldLogger
}

func NewWebBoardingHandler(listings *service.ListingService, log logrus.FieldLogger) *WebBoardingHandler {
	return &WebBoardingHandler{Listings: listings, Log: log}
}

type confirmReq struct {
	IsConfirmed *bool `json:"isConfirmed" form:"isConfirmed"`
}

// List: GET /boardings (admin).
func (h *WebBoardingHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.AdminList(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Data semua kos", out)
}

// Dashboard: GET /boardings/dashboard (admin).
func (h *WebBoardingHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Dashboard(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Data dashboard", out)
}

// Detail: GET /boardings/:id.
func (h *WebBoardingHandler) Detail(c echo.Context) error {
	id, ok := h.target(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Managed(ctx, principal(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Detail Kos", out)
}

// Edit: PUT /boardings/:id.
func (h *WebBoardingHandler) Edit(c echo.Context) error {
	id, ok := h.target(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	var req ListingForm
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Edit(ctx, principal(c), id, req.details())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mengubah data", out)
}

// Confirm: PATCH /boardings/:id/confirm (admin).
func (h *WebBoardingHandler) Confirm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil || req.IsConfirmed == nil {
		return response.BadRequest(c, service.MsgConfirmationBoolean)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Confirm(ctx, id, *req.IsConfirmed)
	if err != nil {
		return fail(c, h.Log, err)
	}
	msg := "Kos dinonaktifkan"
	if *req.IsConfirmed {
		msg = "Kos dikonfirmasi"
	}
	return response.OK(c, msg, out)
}

// ToggleActive: PATCH /boardings/:id/active.
func (h *WebBoardingHandler) ToggleActive(c echo.Context) error {
	id, ok := h.target(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.ToggleActive(ctx, principal(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	msg := "Berhasil menonaktifkan"
	if out.IsActive {
		msg = "Berhasil mengaktifkan"
	}
	return response.OK(c, msg, out)
}

// AddPanorama: PATCH /boardings/:id/panorama, multipart field "panorama".
func (h *WebBoardingHandler) AddPanorama(c echo.Context) error {
	id, ok := h.target(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	up, closeFile, err := formFile(c, "panorama")
	if err != nil {
		return response.BadRequest(c, service.MsgPanoramaRequired)
	}
	defer closeFile()
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.AddPanorama(ctx, principal(c), id, up)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil menambahkan gambar panorama", out)
}

// DeletePanorama: DELETE /boardings/:id/panorama?panoramaId=N.
func (h *WebBoardingHandler) DeletePanorama(c echo.Context) error {
	id, ok := h.target(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	panoramaID, err := strconv.ParseUint(c.QueryParam("panoramaId"), 10, 64)
	if err != nil || panoramaID == 0 {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Listings.DeletePanorama(ctx, principal(c), id, panoramaID); err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil menghapus gambar panorama", nil)
}

// OwnerPicture: PATCH /boardings/owner/picture, multipart field
// "ownerPicture".
func (h *WebBoardingHandler) OwnerPicture(c echo.Context) error {
	up, closeFile, err := formFile(c, "ownerPicture")
	if err != nil {
		return response.BadRequest(c, service.MsgPictureRequired)
	}
	defer closeFile()
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.SetOwnerPicture(ctx, middleware.UserID(c), up)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mengganti foto profil pemilik", out)
}

// target parses :id for admins.  Owners are pinned to their own listing by
// the service, so their :id is ignored.
func (h *WebBoardingHandler) target(c echo.Context) (uint64, bool) {
	if middleware.Role(c) == utils.RoleBoardingHouse {
		return 0, true
	}
	return pathID(c)
}
