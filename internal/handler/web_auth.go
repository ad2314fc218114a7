package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
)

// WebAuthHandler serves /api/web/auth for admins and listing owners.
type WebAuthHandler struct {
	Auth     *service.AuthService
	Listings *service.ListingService
	Log      logrus.FieldLogger
}

func NewWebAuthHandler(auth *service.AuthService, listings *service.ListingService, log logrus.FieldLogger) *WebAuthHandler {
	return &WebAuthHandler{Auth: auth, Listings: listings, Log: log}
}

// ListingForm carries the descriptive listing fields from a form or JSON.
// It is exported because the form binder skips unexported embedded structs.
type ListingForm struct {
	Name        string   `json:"name" form:"name"`
	Owner       string   `json:"owner" form:"owner"`
	Phone       string   `json:"phone" form:"phone"`
	Description string   `json:"description" form:"description"`
	District    string   `json:"district" form:"district"`
	Subdistrict string   `json:"subdistrict" form:"subdistrict"`
	Location    string   `json:"location" form:"location"`
	MaxCapacity flexText `json:"maxCapacity" form:"maxCapacity"`
	Price       flexText `json:"price" form:"price"`
}

func (f ListingForm) details() service.ListingDetails {
	return service.ListingDetails{
		Name:        f.Name,
		Owner:       f.Owner,
		Phone:       f.Phone,
		Description: f.Description,
		District:    f.District,
		Subdistrict: f.Subdistrict,
		Location:    f.Location,
		MaxCapacity: string(f.MaxCapacity),
		Price:       string(f.Price),
	}
}

type registerBoardingReq struct {
	ListingForm
	Email string `json:"email" form:"email"`
}

// Login: POST /auth/login.
func (h *WebAuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgLoginRequired)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.WebLogin(ctx, service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Login berhasil!", sess)
}

// RegisterBoarding: POST /auth/register-boarding, multipart with the
// listing fields and one or more "pictures".
func (h *WebAuthHandler) RegisterBoarding(c echo.Context) error {
	var req registerBoardingReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	pictures, closeFiles, err := formFiles(c, "pictures")
	if err != nil {
		return response.BadRequest(c, service.MsgPictureRequired)
	}
	defer closeFiles()
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.Register(ctx, service.RegisterListingInput{ListingDetails: req.details(), Email: req.Email}, pictures)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Pendaftaran berhasil!, tunggu konfirmasi dalam 3x24 jam!", v)
}
