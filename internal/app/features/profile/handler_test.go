package profile_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/features/profile"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeBlobStore is an in-memory object store for avatar tests.
type fakeBlobStore struct {
	objects map[string]string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]string)}
}

func (s *fakeBlobStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[path] = string(b)
	return nil
}

func (s *fakeBlobStore) Delete(_ context.Context, path string) error {
	delete(s.objects, path)
	return nil
}

func (s *fakeBlobStore) PresignedURL(_ context.Context, path string, _ *storage.PresignOptions) (string, error) {
	return "https://files.example.test/" + path, nil
}

func (s *fakeBlobStore) URL(path string) string {
	return "https://files.example.test/" + path
}

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	return profile.NewHandler(db, newFakeBlobStore(), errLog, logger), db
}

// render calls a handler and swallows template panics; these tests
// assert on database effects, not markup.
func render(h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = recover()
	}()
	h(w, r)
}

func postForm(path string, user testutil.TestUser, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func TestHandleUpdate_SavesName(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Old Name", "old@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/profile", user, url.Values{"full_name": {"New Name"}})
	rec := httptest.NewRecorder()

	handler.HandleUpdate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "New Name" {
		t.Errorf("FullName = %q, want %q", got.FullName, "New Name")
	}
}

func TestHandleUpdate_RejectsEmptyName(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Keep Me", "keep@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/profile", user, url.Values{"full_name": {"   "}})
	rec := httptest.NewRecorder()

	render(handler.HandleUpdate, rec, req)

	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "Keep Me" {
		t.Errorf("FullName = %q, want unchanged", got.FullName)
	}
}

func TestHandleChangePassword(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Pat", "pat@example.com")
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldsecret1"), bcrypt.MinCost)
	if err := profilestore.New(db).SetPasswordHash(ctx, p.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/profile/password", user, url.Values{
		"current_password": {"oldsecret1"},
		"new_password":     {"newsecret1"},
	})
	rec := httptest.NewRecorder()

	handler.HandleChangePassword(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(got.PasswordHash, []byte("newsecret1")); err != nil {
		t.Error("new password does not verify against stored hash")
	}
}

func TestHandleChangePassword_WrongCurrent(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Pat", "pat2@example.com")
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldsecret1"), bcrypt.MinCost)
	if err := profilestore.New(db).SetPasswordHash(ctx, p.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	user := testutil.UserFor(p.ID, p.FullName)

	req := postForm("/profile/password", user, url.Values{
		"current_password": {"not-it"},
		"new_password":     {"newsecret1"},
	})
	rec := httptest.NewRecorder()

	render(handler.HandleChangePassword, rec, req)

	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(got.PasswordHash, []byte("oldsecret1")); err != nil {
		t.Error("password changed despite wrong current password")
	}
}

// multipartAvatar builds a multipart avatar upload request.
func multipartAvatar(t *testing.T, user testutil.TestUser, filename, contentType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create avatar part: %v", err)
	}
	if _, err := part.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("write avatar part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/profile/avatar", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return testutil.WithUser(req, user)
}

func TestHandleAvatarUpload_StoresImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	blobs := newFakeBlobStore()
	handler := profile.NewHandler(db, blobs, uierrors.NewErrorLogger(logger), logger)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Smiler", "smiler@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := multipartAvatar(t, user, "me.png", "image/png")
	rec := httptest.NewRecorder()

	handler.HandleAvatarUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AvatarPath == "" {
		t.Fatal("avatar path not recorded")
	}
	if !strings.HasPrefix(got.AvatarPath, "avatars/"+p.ID.Hex()+"/") {
		t.Errorf("avatar path = %q, want it keyed by the profile ID", got.AvatarPath)
	}
	if got.AvatarURL == "" || !strings.Contains(got.AvatarURL, got.AvatarPath) {
		t.Errorf("avatar URL = %q, want it to reference %q", got.AvatarURL, got.AvatarPath)
	}
	if _, ok := blobs.objects[got.AvatarPath]; !ok {
		t.Errorf("object missing from storage at %q", got.AvatarPath)
	}
}

func TestHandleAvatarUpload_RejectsNonImage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	blobs := newFakeBlobStore()
	handler := profile.NewHandler(db, blobs, uierrors.NewErrorLogger(logger), logger)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Trickster", "trickster@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := multipartAvatar(t, user, "notes.pdf", "application/pdf")
	rec := httptest.NewRecorder()

	render(handler.HandleAvatarUpload, rec, req)

	got, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AvatarPath != "" || got.AvatarURL != "" {
		t.Error("non-image upload changed the avatar")
	}
	if len(blobs.objects) != 0 {
		t.Errorf("non-image upload reached storage: %v", blobs.objects)
	}
}

func TestHandleAvatarUpload_ReplacesPreviousObject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	blobs := newFakeBlobStore()
	handler := profile.NewHandler(db, blobs, uierrors.NewErrorLogger(logger), logger)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Changer", "changer@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	first := multipartAvatar(t, user, "one.png", "image/png")
	handler.HandleAvatarUpload(httptest.NewRecorder(), first)
	before, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	second := multipartAvatar(t, user, "two.jpg", "image/jpeg")
	handler.HandleAvatarUpload(httptest.NewRecorder(), second)
	after, err := profilestore.New(db).GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if after.AvatarPath == before.AvatarPath {
		t.Fatal("second upload did not produce a new object")
	}
	if _, ok := blobs.objects[before.AvatarPath]; ok {
		t.Error("previous avatar object not removed")
	}
	if _, ok := blobs.objects[after.AvatarPath]; !ok {
		t.Error("new avatar object missing from storage")
	}
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()

	render(handler.ServeProfile, rec, req)

	if rec.Code == http.StatusOK && rec.Body.Len() > 0 {
		t.Error("unauthenticated request produced a profile page")
	}
}
