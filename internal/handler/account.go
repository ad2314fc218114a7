package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/response"
	"github.com/iliyamo/apparte-kost/internal/service"
)

// AccountHandler serves /api/mobile/account.
type AccountHandler struct {
	Auth    *service.AuthService
	Account *service.AccountService
	Log     logrus.FieldLogger
}

func NewAccountHandler(auth *service.AuthService, account *service.AccountService, log logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{Auth: auth, Account: account, Log: log}
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type registerReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Phone    string `json:"phone" form:"phone"`
}

type editProfileReq struct {
	Name  string `json:"name" form:"name"`
	Phone string `json:"phone" form:"phone"`
	Email string `json:"email" form:"email"`
}

type changePasswordReq struct {
	OldPassword     string `json:"oldPassword" form:"oldPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// Login: POST /account/login.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgLoginRequired)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.MobileLogin(ctx, service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Login berhasil!", sess)
}

// Register: POST /account/register.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	reg, err := h.Auth.RegisterUser(ctx, service.RegisterUserInput{
		Email: req.Email, Password: req.Password, Name: req.Name, Phone: req.Phone,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Register berhasil!", reg)
}

// Profile: GET /account.
func (h *AccountHandler) Profile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Account.Profile(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Detail akun", u)
}

// Edit: PUT /account.
func (h *AccountHandler) Edit(c echo.Context) error {
	var req editProfileReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Account.Edit(ctx, middleware.UserID(c), service.EditProfileInput{Name: req.Name, Phone: req.Phone, Email: req.Email})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mengubah profile", u)
}

// SetPicture: PATCH /account, multipart field "picture".
func (h *AccountHandler) SetPicture(c echo.Context) error {
	up, closeFile, err := formFile(c, "picture")
	if err != nil {
		return response.BadRequest(c, service.MsgPictureRequired)
	}
	defer closeFile()
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Account.SetPicture(ctx, middleware.UserID(c), up)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mengubah foto profile", u)
}

// DeletePicture: DELETE /account.
func (h *AccountHandler) DeletePicture(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Account.DeletePicture(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil menghapus foto profile", u)
}

// ChangePassword: PUT /account/change-password.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, service.MsgIncomplete)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Account.ChangePassword(ctx, middleware.UserID(c), service.ChangePasswordInput{
		OldPassword: req.OldPassword, NewPassword: req.NewPassword, ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mengubah password", u)
}

// History: GET /account/history.
func (h *AccountHandler) History(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	events, err := h.Account.History(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return response.OK(c, "Berhasil mendapatkan riwayat", events)
}
