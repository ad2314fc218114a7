package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
)

// BoardingHandler serves /api/mobile/boardings for app users.
type BoardingHandler struct {
	Listings *service.ListingService
	Bookings *service.BookingService
	Reviews  *service.ReviewService
	Log      logrus.FieldLogger
}

func NewBoardingHandler(l *service.ListingService, b *service.BookingService, r *service.ReviewService, log logrus.FieldLogger) *BoardingHandler {
	return &BoardingHandler{Listings: l, Bookings: b, Reviews: r, Log: log}
}

type listingRefReq struct {
	BoardingHouseID flexInt `json:"boardingHouseId" form:"boardingHouseId"`
}

type reviewReq struct {
	BoardingHouseID flexInt `json:"boardingHouseId" form:"boardingHouseId"`
	Rating          flexInt `json:"rating" form:"rating"`
	Comment         string  `json:"comment" form:"comment"`
}

// List: GET /boardings.
func (h *BoardingHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Discover(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Data semua kos", out)
}

// KeyLocations: GET /boardings/key-location.
func (h *BoardingHandler) KeyLocations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.KeyLocations(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Data lokasi", out)
}

// Detail: GET /boardings/:id.
func (h *BoardingHandler) Detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Listings.Detail(ctx, middleware.UserID(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Detail Kos", out)
}

// Bookmark: PUT /boardings toggles the caller's bookmark.
func (h *BoardingHandler) Bookmark(c echo.Context) error {
	var req listingRefReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	on, err := h.Reviews.ToggleBookmark(ctx, middleware.UserID(c), service.ListingRef{BoardingHouseID: req.BoardingHouseID.id()})
	if err != nil {
		return fail(c, h.Log, err)
	}
	msg := "Berhasil menghapus bookmark"
	if on {
		msg = "Berhasil menambahkan bookmark"
	}
	return response.OK(c, msg, echo.Map{"isBookmarked": on})
}

// Review: PATCH /boardings.
func (h *BoardingHandler) Review(c echo.Context) error {
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	rv, err := h.Reviews.Review(ctx, middleware.UserID(c), service.ReviewInput{
		BoardingHouseID: req.BoardingHouseID.id(),
		Rating:          int(req.Rating),
		Comment:         req.Comment,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil menambahkan review", rv)
}

// Book: POST /boardings.
func (h *BoardingHandler) Book(c echo.Context) error {
	var req listingRefReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	bk, err := h.Bookings.Book(ctx, middleware.UserID(c), service.ListingRef{BoardingHouseID: req.BoardingHouseID.id()})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil memesan kos", bk)
}
