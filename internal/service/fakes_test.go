package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/repository"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

// memDB is an in-memory stand-in for the MySQL repositories.  It applies the
// same unique keys as the schema.
type memDB struct {
	mu        sync.Mutex
	nextID    uint64
	users     map[uint64]*model.User
	admins    map[uint64]*model.Admin
	listings  map[uint64]*model.BoardingHouse
	pictures  map[uint64][]model.Picture
	panoramas map[uint64]*model.Panorama
	bookings  map[uint64]*model.Booking
	reviews   map[uint64]*model.Review
	bookmarks map[uint64]*model.Bookmark
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uint64]*model.User{},
		admins:    map[uint64]*model.Admin{},
		listings:  map[uint64]*model.BoardingHouse{},
		pictures:  map[uint64][]model.Picture{},
		panoramas: map[uint64]*model.Panorama{},
		bookings:  map[uint64]*model.Booking{},
		reviews:   map[uint64]*model.Review{},
		bookmarks: map[uint64]*model.Bookmark{},
	}
}

func (db *memDB) id() uint64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) stores() Stores {
	return Stores{
		Users:     memUsers{db},
		Admins:    memAdmins{db},
		Identity:  memIdentity{db},
		Listings:  memListings{db},
		Panoramas: memPanoramas{db},
		Bookings:  memBookings{db},
		Reviews:   memReviews{db},
		Bookmarks: memBookmarks{db},
	}
}

// seed helpers

func (db *memDB) addUser(t testingT, email, password string) *model.User {
	hash, err := utils.HashPassword(password, testCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{Email: email, PasswordHash: hash, Name: "User " + email, Phone: "0811"}
	if err := (memUsers{db}).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (db *memDB) addAdmin(t testingT, email, password string) *model.Admin {
	hash, err := utils.HashPassword(password, testCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	a := &model.Admin{ID: db.id(), Email: email, PasswordHash: hash, Name: "Admin"}
	db.admins[a.ID] = a
	return a
}

// addListing stores a listing in the discoverable state.
func (db *memDB) addListing(name string, capacity int, mutate ...func(*model.BoardingHouse)) *model.BoardingHouse {
	db.mu.Lock()
	defer db.mu.Unlock()
	b := &model.BoardingHouse{
		ID:          db.id(),
		Name:        name,
		Owner:       "Owner " + name,
		Email:       strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@kos.id",
		Phone:       "081234",
		District:    "Sleman",
		Subdistrict: "Depok",
		Location:    "Jl. Kaliurang",
		MaxCapacity: capacity,
		Price:       500000,
		IsConfirmed: true,
		IsActive:    true,
		CreatedAt:   testNow,
	}
	for _, m := range mutate {
		m(b)
	}
	db.listings[b.ID] = b
	return b
}

func (db *memDB) addPanorama(listingID uint64) {
	_, _ = (memPanoramas{db}).Add(context.Background(), listingID, fmt.Sprintf("http://cdn/pano-%d.jpg", listingID))
}

type testingT interface{ Fatalf(string, ...any) }

const testCost = 4

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testOptions() (Options, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return Options{BcryptCost: testCost, AppName: "ApparteKost", Now: func() time.Time { return testNow }, Log: log}, hook
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

// users

type memUsers struct{ db *memDB }

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, x := range m.db.users {
		if x.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = m.db.id()
	u.CreatedAt, u.UpdatedAt = testNow, testNow
	m.db.users[u.ID] = copyOf(u)
	return nil
}

func (m memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if u, ok := m.db.users[id]; ok {
		return copyOf(u), nil
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.db.users {
		if u.Email == email {
			return copyOf(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) UpdateProfile(_ context.Context, id uint64, name, phone, email string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name, u.Phone, u.Email = name, phone, strings.ToLower(email)
	return nil
}

func (m memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m memUsers) UpdatePicture(_ context.Context, id uint64, picture *string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Picture = picture
	return nil
}

func (m memUsers) Count(context.Context) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return len(m.db.users), nil
}

// admins

type memAdmins struct{ db *memDB }

func (m memAdmins) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, a := range m.db.admins {
		if a.Email == strings.ToLower(email) {
			return copyOf(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

// identity

type memIdentity struct{ db *memDB }

func (m memIdentity) EmailOwner(_ context.Context, email string) (*model.EmailOwner, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range m.db.admins {
		if a.Email == email {
			return &model.EmailOwner{Kind: utils.RoleAdmin, ID: a.ID}, nil
		}
	}
	for _, b := range m.db.listings {
		if b.Email == email {
			return &model.EmailOwner{Kind: utils.RoleBoardingHouse, ID: b.ID}, nil
		}
	}
	for _, u := range m.db.users {
		if u.Email == email {
			return &model.EmailOwner{Kind: utils.RoleUser, ID: u.ID}, nil
		}
	}
	return nil, repository.ErrNotFound
}

// listings

type memListings struct{ db *memDB }

func (m memListings) Create(_ context.Context, b *model.BoardingHouse, pictures []string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b.Email = strings.ToLower(b.Email)
	for _, x := range m.db.listings {
		if x.Email == b.Email {
			return repository.ErrDuplicate
		}
	}
	b.ID = m.db.id()
	b.IsPending, b.IsConfirmed, b.IsActive = true, false, false
	b.CreatedAt = testNow
	m.db.listings[b.ID] = copyOf(b)
	for _, p := range pictures {
		m.db.pictures[b.ID] = append(m.db.pictures[b.ID], model.Picture{ID: m.db.id(), BoardingHouseID: b.ID, Picture: p})
	}
	return nil
}

func (m memListings) GetByID(_ context.Context, id uint64) (*model.BoardingHouse, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if b, ok := m.db.listings[id]; ok {
		return copyOf(b), nil
	}
	return nil, repository.ErrNotFound
}

func (m memListings) GetByEmail(_ context.Context, email string) (*model.BoardingHouse, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.listings {
		if b.Email == strings.ToLower(email) {
			return copyOf(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memListings) sorted(keep func(*model.BoardingHouse) bool) []model.BoardingHouse {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.BoardingHouse
	for _, b := range m.db.listings {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m memListings) List(context.Context) ([]model.BoardingHouse, error) {
	return m.sorted(func(*model.BoardingHouse) bool { return true }), nil
}

func (m memListings) ListDiscoverable(context.Context) ([]model.BoardingHouse, error) {
	return m.sorted(func(b *model.BoardingHouse) bool { return b.Discoverable() }), nil
}

func (m memListings) UpdateDetails(_ context.Context, b *model.BoardingHouse) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.listings[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	email, flags := cur.Email, [3]bool{cur.IsPending, cur.IsConfirmed, cur.IsActive}
	*cur = *b
	cur.Email = email
	cur.IsPending, cur.IsConfirmed, cur.IsActive = flags[0], flags[1], flags[2]
	return nil
}

func (m memListings) SetConfirmation(_ context.Context, id uint64, confirmed bool, hash *string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.IsConfirmed, b.IsPending = confirmed, false
	if hash != nil {
		h := *hash
		b.PasswordHash = &h
	}
	return nil
}

func (m memListings) SetActive(_ context.Context, id uint64, active bool) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.IsActive = active
	return nil
}

func (m memListings) SetOwnerPicture(_ context.Context, id uint64, picture *string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.OwnerPicture = picture
	return nil
}

func (m memListings) Pictures(_ context.Context, ids []uint64) (map[uint64][]model.Picture, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := map[uint64][]model.Picture{}
	for _, id := range ids {
		if p := m.db.pictures[id]; len(p) > 0 {
			out[id] = append([]model.Picture(nil), p...)
		}
	}
	return out, nil
}

func (m memListings) Counts(context.Context) (model.ListingCounts, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var c model.ListingCounts
	for _, b := range m.db.listings {
		c.Total++
		if b.IsPending {
			c.Pending++
		}
		if b.IsConfirmed {
			c.Confirmed++
		}
		if b.IsActive {
			c.Active++
		}
	}
	return c, nil
}

// panoramas

type memPanoramas struct{ db *memDB }

func (m memPanoramas) Add(_ context.Context, listingID uint64, picture string) (*model.Panorama, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p := &model.Panorama{ID: m.db.id(), BoardingHouseID: listingID, Picture: picture, CreatedAt: testNow}
	m.db.panoramas[p.ID] = p
	return copyOf(p), nil
}

func (m memPanoramas) GetByID(_ context.Context, id uint64) (*model.Panorama, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if p, ok := m.db.panoramas[id]; ok {
		return copyOf(p), nil
	}
	return nil, repository.ErrNotFound
}

func (m memPanoramas) ListByListing(_ context.Context, listingID uint64) ([]model.Panorama, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []model.Panorama{}
	for _, p := range m.db.panoramas {
		if p.BoardingHouseID == listingID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memPanoramas) CountByListing(ctx context.Context, listingID uint64) (int, error) {
	list, _ := m.ListByListing(ctx, listingID)
	return len(list), nil
}

func (m memPanoramas) Delete(_ context.Context, id uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.panoramas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.panoramas, id)
	return nil
}

// bookings

type memBookings struct{ db *memDB }

func (m memBookings) Create(_ context.Context, userID, listingID uint64, at time.Time) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookings {
		if b.UserID == userID && b.BoardingHouseID == listingID && b.IsActive {
			return nil, repository.ErrDuplicate
		}
	}
	b := &model.Booking{ID: m.db.id(), UserID: userID, BoardingHouseID: listingID, IsActive: true, BookedDate: at}
	m.db.bookings[b.ID] = b
	return copyOf(b), nil
}

func (m memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if b, ok := m.db.bookings[id]; ok {
		return copyOf(b), nil
	}
	return nil, repository.ErrNotFound
}

func (m memBookings) FindActive(_ context.Context, userID, listingID uint64) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookings {
		if b.UserID == userID && b.BoardingHouseID == listingID && b.IsActive {
			return copyOf(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memBookings) Deactivate(_ context.Context, id uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.IsActive = false
	return nil
}

func (m memBookings) CountByListing(_ context.Context, ids []uint64, activeOnly bool) (map[uint64]int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[uint64]int{}
	for _, b := range m.db.bookings {
		if want[b.BoardingHouseID] && (!activeOnly || b.IsActive) {
			out[b.BoardingHouseID]++
		}
	}
	return out, nil
}

func (m memBookings) ListByListing(_ context.Context, listingID uint64, activeOnly bool) ([]model.BookingWithUser, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []model.BookingWithUser{}
	for _, b := range m.db.bookings {
		if b.BoardingHouseID != listingID || (activeOnly && !b.IsActive) {
			continue
		}
		u := m.db.users[b.UserID]
		out = append(out, model.BookingWithUser{ID: b.ID, IsActive: b.IsActive, BookedDate: b.BookedDate,
			User: model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memBookings) ListByUser(_ context.Context, userID uint64) ([]model.BookingActivity, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.BookingActivity
	for _, b := range m.db.bookings {
		if b.UserID == userID {
			out = append(out, model.BookingActivity{Booking: *b, Listing: m.db.summary(b.BoardingHouseID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedDate.After(out[j].BookedDate) })
	return out, nil
}

func (m memBookings) Totals(context.Context) (int, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	active := 0
	for _, b := range m.db.bookings {
		if b.IsActive {
			active++
		}
	}
	return len(m.db.bookings), active, nil
}

// summary must be called with mu held.
func (db *memDB) summary(listingID uint64) model.ListingSummary {
	b := db.listings[listingID]
	s := model.ListingSummary{ID: b.ID, Name: b.Name, District: b.District, Subdistrict: b.Subdistrict}
	if pics := db.pictures[listingID]; len(pics) > 0 {
		p := pics[0].Picture
		s.Picture = &p
	}
	return s
}

// reviews

type memReviews struct{ db *memDB }

func (m memReviews) Create(_ context.Context, rv *model.Review) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, x := range m.db.reviews {
		if x.UserID == rv.UserID && x.BoardingHouseID == rv.BoardingHouseID {
			return repository.ErrDuplicate
		}
	}
	rv.ID = m.db.id()
	m.db.reviews[rv.ID] = copyOf(rv)
	return nil
}

func (m memReviews) Find(_ context.Context, userID, listingID uint64) (*model.Review, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, x := range m.db.reviews {
		if x.UserID == userID && x.BoardingHouseID == listingID {
			return copyOf(x), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memReviews) ListByListing(_ context.Context, listingID uint64) ([]model.ReviewWithUser, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []model.ReviewWithUser{}
	for _, x := range m.db.reviews {
		if x.BoardingHouseID == listingID {
			u := m.db.users[x.UserID]
			out = append(out, model.ReviewWithUser{Review: *x, User: model.UserSummary{ID: u.ID, Name: u.Name}})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memReviews) ListByUser(_ context.Context, userID uint64) ([]model.ReviewActivity, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.ReviewActivity
	for _, x := range m.db.reviews {
		if x.UserID == userID {
			out = append(out, model.ReviewActivity{Review: *x, Listing: m.db.summary(x.BoardingHouseID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memReviews) Ratings(_ context.Context, ids []uint64) (map[uint64][]int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[uint64][]int{}
	for _, x := range m.db.reviews {
		if want[x.BoardingHouseID] {
			out[x.BoardingHouseID] = append(out[x.BoardingHouseID], x.Rating)
		}
	}
	return out, nil
}

func (m memReviews) Count(context.Context) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return len(m.db.reviews), nil
}

// bookmarks

type memBookmarks struct{ db *memDB }

func (m memBookmarks) Find(_ context.Context, userID, listingID uint64) (*model.Bookmark, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookmarks {
		if b.UserID == userID && b.BoardingHouseID == listingID {
			return copyOf(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memBookmarks) Create(_ context.Context, userID, listingID uint64, at time.Time) (*model.Bookmark, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookmarks {
		if b.UserID == userID && b.BoardingHouseID == listingID {
			return nil, repository.ErrDuplicate
		}
	}
	b := &model.Bookmark{ID: m.db.id(), UserID: userID, BoardingHouseID: listingID, BookmarkDate: at}
	m.db.bookmarks[b.ID] = b
	return copyOf(b), nil
}

func (m memBookmarks) Delete(_ context.Context, id uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.bookmarks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.bookmarks, id)
	return nil
}

func (m memBookmarks) ListByUser(_ context.Context, userID uint64) ([]model.Bookmark, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Bookmark
	for _, b := range m.db.bookmarks {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookmarkDate.After(out[j].BookmarkDate) })
	return out, nil
}

// memFiles records stored and removed objects.
type memFiles struct {
	mu      sync.Mutex
	n       int
	saved   []string
	removed []string
	failOn  int // fail the n-th Save when > 0
}

func (f *memFiles) Save(_ context.Context, category string, u model.Upload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if f.failOn > 0 && f.n == f.failOn {
		return "", errors.New("bucket unavailable")
	}
	url := fmt.Sprintf("http://cdn/%s/%d-%s", category, f.n, u.Filename)
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *memFiles) Remove(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}

// recorder collects dispatched notifications.
type recorder struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (r *recorder) Notify(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) all() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.sent...)
}

func upload(name string) *model.Upload {
	return &model.Upload{Filename: name, ContentType: "image/jpeg", Body: strings.NewReader("jpeg")}
}
