package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
)

// TransactionHandler serves /api/web/transactions for listing accounts.
type TransactionHandler struct {
	Bookings *service.BookingService
	Log      logrus.FieldLogger
}

func NewTransactionHandler(bookings *service.BookingService, log logrus.FieldLogger) *TransactionHandler {
	return &TransactionHandler{Bookings: bookings, Log: log}
}

// List: GET /transactions[?active=true].
func (h *TransactionHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Bookings.Transactions(ctx, middleware.UserID(c), activeOnly)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Data Transaksi", out)
}

// SetInactive: PATCH /transactions/:id checks the booking out.
func (h *TransactionHandler) SetInactive(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, MsgInvalidID)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Bookings.SetInactive(ctx, middleware.UserID(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil menghapus keaktifan kamar", out)
}
