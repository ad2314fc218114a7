package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/iliyamo/apparte-kost/internal/middleware"
	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/repository"
	"github.com/iliyamo/apparte-kost/internal/service"
	"github.com/iliyamo/apparte-kost/internal/storage"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

var tokens = utils.NewTokenIssuer("handler-test-secret", 0)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return env
}

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := tokens.Issue(id, role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body, auth string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	return req
}

func quietLog() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// Stores embed the interface so only the methods a test needs are defined.

type stubUsers struct {
	service.UserStore
	byEmail map[string]*model.User
}

func (s stubUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type stubListings struct {
	service.BoardingHouseStore
	byID     map[uint64]*model.BoardingHouse
	pictures map[uint64][]model.Picture
}

func (s stubListings) GetByID(_ context.Context, id uint64) (*model.BoardingHouse, error) {
	if b, ok := s.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

// Create mirrors the repository: the row comes back pending with its pictures.
func (s stubListings) Create(_ context.Context, b *model.BoardingHouse, pictures []string) error {
	b.ID = uint64(len(s.byID) + 1)
	b.IsPending = true
	cp := *b
	s.byID[b.ID] = &cp
	for i, url := range pictures {
		s.pictures[b.ID] = append(s.pictures[b.ID], model.Picture{ID: uint64(i + 1), BoardingHouseID: b.ID, Picture: url})
	}
	return nil
}

func (s stubListings) Pictures(_ context.Context, ids []uint64) (map[uint64][]model.Picture, error) {
	out := map[uint64][]model.Picture{}
	for _, id := range ids {
		out[id] = s.pictures[id]
	}
	return out, nil
}

type stubIdentity struct{ service.IdentityStore }

func (stubIdentity) EmailOwner(context.Context, string) (*model.EmailOwner, error) {
	return nil, repository.ErrNotFound
}

type stubReviews struct{ service.ReviewStore }

func (stubReviews) Ratings(context.Context, []uint64) (map[uint64][]int, error) {
	return map[uint64][]int{}, nil
}

type stubBookings struct {
	service.BookingStore
	byID        map[uint64]*model.Booking
	rows        []model.BookingWithUser
	deactivated []uint64
}

func (s *stubBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	if b, ok := s.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubBookings) ListByListing(_ context.Context, _ uint64, activeOnly bool) ([]model.BookingWithUser, error) {
	var out []model.BookingWithUser
	for _, r := range s.rows {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubBookings) Deactivate(_ context.Context, id uint64) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

func (s *stubBookings) CountByListing(context.Context, []uint64, bool) (map[uint64]int, error) {
	return map[uint64]int{}, nil
}

func TestStatusOf(t *testing.T) {
	cases := map[service.Kind]int{
		service.KindValidation:         http.StatusBadRequest,
		service.KindInvalidCredentials: http.StatusBadRequest,
		service.KindNotConfirmed:       http.StatusBadRequest,
		service.KindConflict:           http.StatusBadRequest,
		service.KindPreconditionFailed: http.StatusBadRequest,
		service.KindUnauthenticated:    http.StatusUnauthorized,
		service.KindForbidden:          http.StatusForbidden,
		service.KindNotFound:           http.StatusNotFound,
		service.KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusOf(kind), "kind %v", kind)
	}
}

func TestFail_HidesInternalCause(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		return fail(c, log, errors.New("dial tcp: connection refused"))
	})

	rec := do(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	env := decode(t, rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.MsgInternal, env.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/boom", hook.LastEntry().Data["route"])
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A flexInt `json:"a"`
		B flexInt `json:"b"`
		C flexInt `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "12", "c": ""}`), &v))
	assert.Equal(t, uint64(7), v.A.id())
	assert.Equal(t, uint64(12), v.B.id())
	assert.Equal(t, uint64(0), v.C.id())
	assert.Equal(t, uint64(0), flexInt(-3).id())

	assert.Error(t, json.Unmarshal([]byte(`{"a": "seven"}`), &v))
}

func TestFlexText(t *testing.T) {
	var v struct {
		Price    flexText `json:"price"`
		Capacity flexText `json:"maxCapacity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 750000, "maxCapacity": "4"}`), &v))
	assert.Equal(t, flexText("750000"), v.Price)
	assert.Equal(t, flexText("4"), v.Capacity)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/", Hello)
	e.GET("/healthz", Health(pingFunc(func(context.Context) error { return errors.New("down") })))

	rec := do(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Hello World", decode(t, rec).Message)

	rec = do(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestAccountLogin(t *testing.T) {
	hash, err := utils.HashPassword("rahasia", 4)
	require.NoError(t, err)
	stores := service.Stores{Users: stubUsers{byEmail: map[string]*model.User{
		"budi@example.com": {ID: 3, Email: "budi@example.com", PasswordHash: hash},
	}}}
	h := NewAccountHandler(service.NewAuthService(stores, tokens, service.Options{}), nil, quietLog())
	e := echo.New()
	e.POST("/login", h.Login)

	rec := do(e, jsonRequest(http.MethodPost, "/login", `{"email":"budi@example.com","password":"rahasia"}`, ""))
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login berhasil!", env.Message)
	var sess model.Session
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, utils.RoleUser, sess.Role)
	claims, err := tokens.Parse(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), claims.ID)

	rec = do(e, jsonRequest(http.MethodPost, "/login", `{"email":"budi@example.com","password":"salah"}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgWrongPassword, decode(t, rec).Message)

	rec = do(e, jsonRequest(http.MethodPost, "/login", `{}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgLoginRequired, decode(t, rec).Message)
}

func transactionEcho(bookings *stubBookings) *echo.Echo {
	stores := service.Stores{
		Listings: stubListings{byID: map[uint64]*model.BoardingHouse{
			5: {ID: 5, Name: "Kos Melati", MaxCapacity: 3},
		}},
		Bookings: bookings,
	}
	h := NewTransactionHandler(service.NewBookingService(stores, service.Options{}), quietLog())
	e := echo.New()
	g := e.Group("/transactions", middleware.JWTAuth(tokens))
	g.GET("", h.List)
	g.PATCH("/:id", h.SetInactive)
	return e
}

func TestTransactionList(t *testing.T) {
	bookings := &stubBookings{rows: []model.BookingWithUser{
		{ID: 11, IsActive: true, BookedDate: time.Now()},
		{ID: 10, IsActive: false, BookedDate: time.Now().Add(-time.Hour)},
	}}
	e := transactionEcho(bookings)
	auth := bearer(t, 5, utils.RoleBoardingHouse)

	rec := do(e, jsonRequest(http.MethodGet, "/transactions", "", auth))
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Data Transaksi", env.Message)
	var out model.Transactions
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.Bookings, 2)
	assert.Equal(t, model.RoomSummary{Total: 3, Available: 2, Active: 1}, out.Room)

	rec = do(e, jsonRequest(http.MethodGet, "/transactions?active=true", "", auth))
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out))
	assert.Len(t, out.Bookings, 1)
}

func TestTransactionSetInactive(t *testing.T) {
	bookings := &stubBookings{byID: map[uint64]*model.Booking{
		11: {ID: 11, BoardingHouseID: 5, IsActive: true},
		12: {ID: 12, BoardingHouseID: 6, IsActive: true},
	}}
	e := transactionEcho(bookings)
	auth := bearer(t, 5, utils.RoleBoardingHouse)

	rec := do(e, jsonRequest(http.MethodPatch, "/transactions/11", "", auth))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Berhasil menghapus keaktifan kamar", decode(t, rec).Message)
	assert.Equal(t, []uint64{11}, bookings.deactivated)

	rec = do(e, jsonRequest(http.MethodPatch, "/transactions/12", "", auth))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, jsonRequest(http.MethodPatch, "/transactions/99", "", auth))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, jsonRequest(http.MethodPatch, "/transactions/abc", "", auth))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidID, decode(t, rec).Message)

	rec = do(e, jsonRequest(http.MethodPatch, "/transactions/11", "", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func webBoardingEcho() *echo.Echo {
	h := NewWebBoardingHandler(service.NewListingService(service.Stores{}, nil, nil, service.Options{}), quietLog())
	e := echo.New()
	g := e.Group("/boardings", middleware.JWTAuth(tokens))
	g.PATCH("/:id/confirm", h.Confirm)
	g.DELETE("/:id/panorama", h.DeletePanorama)
	g.PATCH("/:id/panorama", h.AddPanorama)
	return e
}

func TestWebBoardingConfirm_RequiresBoolean(t *testing.T) {
	e := webBoardingEcho()
	auth := bearer(t, 1, utils.RoleAdmin)

	for _, body := range []string{`{}`, `{"isConfirmed":"ya"}`} {
		rec := do(e, jsonRequest(http.MethodPatch, "/boardings/4/confirm", body, auth))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, service.MsgConfirmationBoolean, decode(t, rec).Message, body)
	}

	rec := do(e, jsonRequest(http.MethodPatch, "/boardings/x/confirm", `{"isConfirmed":true}`, auth))
	assert.Equal(t, MsgInvalidID, decode(t, rec).Message)
}

func TestWebBoardingPanorama_Validation(t *testing.T) {
	e := webBoardingEcho()

	rec := do(e, jsonRequest(http.MethodDelete, "/boardings/4/panorama?panoramaId=abc", "", bearer(t, 1, utils.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidID, decode(t, rec).Message)

	// owners ignore the path id but still need a file
	rec = do(e, jsonRequest(http.MethodPatch, "/boardings/whatever/panorama", "", bearer(t, 5, utils.RoleBoardingHouse)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgPanoramaRequired, decode(t, rec).Message)
}

func TestRegisterBoarding_RequiresPictures(t *testing.T) {
	h := NewWebAuthHandler(nil, service.NewListingService(service.Stores{}, nil, nil, service.Options{}), quietLog())
	e := echo.New()
	e.POST("/register-boarding", h.RegisterBoarding)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name": "Kos Melati", "owner": "Bu Sri", "phone": "081234", "description": "Dekat kampus",
		"district": "Sleman", "subdistrict": "Depok", "location": "Jl. Colombo 1",
		"maxCapacity": "4", "price": "750000", "email": "melati@example.com",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/register-boarding", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec := do(e, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgPictureRequired, decode(t, rec).Message)
}

func TestRegisterBoarding_Multipart(t *testing.T) {
	listings := stubListings{byID: map[uint64]*model.BoardingHouse{}, pictures: map[uint64][]model.Picture{}}
	files := storage.New(memblob.OpenBucket(nil), "http://localhost:8080/uploads")
	dispatcher := service.NewDispatcher(service.LogNotifier{Log: quietLog()}, "log", quietLog())
	svc := service.NewListingService(service.Stores{
		Identity: stubIdentity{},
		Listings: listings,
		Reviews:  stubReviews{},
		Bookings: &stubBookings{},
	}, files, dispatcher, service.Options{AppName: "ApparteKost"})
	h := NewWebAuthHandler(nil, svc, quietLog())
	e := echo.New()
	e.POST("/register-boarding", h.RegisterBoarding)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name": "Kos Melati", "owner": "Bu Sri", "phone": "081234", "description": "Dekat kampus",
		"district": "Sleman", "subdistrict": "Depok", "location": "Jl. Colombo 1",
		"maxCapacity": "4", "price": "750000", "email": "melati@example.com",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("pictures", "kamar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/register-boarding", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	rec := do(e, req)
	dispatcher.Wait()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Pendaftaran berhasil!, tunggu konfirmasi dalam 3x24 jam!", env.Message)

	var view model.ListingView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.IsPending)
	assert.Equal(t, "Kos Melati", view.Name)
	assert.Equal(t, "Sleman", view.District)
	assert.Equal(t, 4, view.MaxCapacity)
	assert.Equal(t, int64(750000), view.Price)
	require.Len(t, view.Pictures, 1)
	assert.True(t, strings.HasPrefix(view.Pictures[0].Picture, "http://localhost:8080/uploads/"), view.Pictures[0].Picture)

	saved := listings.byID[view.ID]
	require.NotNil(t, saved)
	assert.Equal(t, "melati@example.com", saved.Email)
	assert.Equal(t, "Bu Sri", saved.Owner)
}

func TestRegisterBoarding_NumericFields(t *testing.T) {
	h := NewWebAuthHandler(nil, service.NewListingService(service.Stores{}, nil, nil, service.Options{}), quietLog())
	e := echo.New()
	e.POST("/register-boarding", h.RegisterBoarding)

	body := `{"name":"Kos Melati","owner":"Bu Sri","phone":"081234","description":"Dekat kampus",
		"district":"Sleman","subdistrict":"Depok","location":"Jl. Colombo 1",
		"maxCapacity":"empat","price":750000,"email":"melati@example.com"}`
	rec := do(e, jsonRequest(http.MethodPost, "/register-boarding", body, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgNumeric, decode(t, rec).Message)
}

func TestAssetServe(t *testing.T) {
	ctx := context.Background()
	files := storage.New(memblob.OpenBucket(nil), "http://localhost:8080/uploads")
	url, err := files.Save(ctx, service.CategoryBoarding, model.Upload{
		Filename: "kamar.png", ContentType: "image/png", Body: strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	key, ok := files.Key(url)
	require.True(t, ok)

	h := NewAssetHandler(files, quietLog())
	e := echo.New()
	e.GET("/uploads/*", h.Serve)

	rec := do(e, httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = do(e, httptest.NewRequest(http.MethodGet, "/uploads/boarding/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, httptest.NewRequest(http.MethodGet, "/uploads/boarding/..%2F..%2Fetc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
