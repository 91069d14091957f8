package reports_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/features/reports"
	"github.com/takimhub/takimhub/internal/domain/models"
	"github.com/takimhub/takimhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeBlobStore is an in-memory object store for handler tests.
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

func newTestHandler(t *testing.T) (*reports.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	return reports.NewHandler(db, nil, errLog, logger), db
}

// render calls a handler and swallows template panics; these tests
// assert on database effects, not markup.
func render(h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = recover()
	}()
	h(w, r)
}

func TestNewHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestHandleDelete_NonOwnerKeepsRecord(t *testing.T) {
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateProfile(ctx, "Owner", "owner@example.com")
	rep := fx.CreateReport(ctx, "Quarterly", models.ScopePersonal, nil, owner.ID)

	intruder := testutil.SomeUser()
	req := testutil.NewAuthenticatedRequest("POST", "/reports/"+rep.ID.Hex()+"/delete", intruder)
	req = testutil.WithChiURLParam(req, "id", rep.ID.Hex())
	rec := httptest.NewRecorder()

	render(handler.HandleDelete, rec, req)

	n, err := db.Collection("reports").CountDocuments(ctx, bson.M{"_id": rep.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("report rows = %d, want 1 (non-owner must not delete)", n)
	}
}

func TestHandleDelete_MissingReportRedirects(t *testing.T) {
	handler, _ := newTestHandler(t)

	user := testutil.SomeUser()
	id := primitive.NewObjectID().Hex()
	req := testutil.NewAuthenticatedRequest("POST", "/reports/"+id+"/delete", user)
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303 (double delete is success)", rec.Code)
	}
}

func TestHandleDelete_BadID(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/reports/nope/delete", testutil.SomeUser())
	req = testutil.WithChiURLParam(req, "id", "nope")
	rec := httptest.NewRecorder()

	render(handler.HandleDelete, rec, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("bad ID must not redirect as success")
	}
}

// multipartUpload builds a multipart report upload request.
func multipartUpload(t *testing.T, user testutil.TestUser, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	part, err := w.CreateFormFile("file", "summary.pdf")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/reports", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return testutil.WithUser(req, user)
}

func TestHandleUpload_StoresTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	handler := reports.NewHandler(db, newFakeBlobStore(), uierrors.NewErrorLogger(logger), logger)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProfile(ctx, "Tagger", "tagger@example.com")
	user := testutil.UserFor(p.ID, p.FullName)

	req := multipartUpload(t, user, map[string]string{
		"title": "Weekly numbers",
		"scope": "personal",
		"tags":  " finance, weekly ,,",
	})
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var rep models.Report
	if err := db.Collection("reports").FindOne(ctx, bson.M{"owner_id": p.ID}).Decode(&rep); err != nil {
		t.Fatalf("report not inserted: %v", err)
	}
	want := []string{"finance", "weekly"}
	if !reflect.DeepEqual(rep.Tags, want) {
		t.Errorf("tags = %v, want %v", rep.Tags, want)
	}
}

func TestHandleDownload_MissingReport(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := primitive.NewObjectID().Hex()
	req := testutil.NewAuthenticatedRequest("GET", "/reports/"+id+"/download", testutil.SomeUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	render(handler.HandleDownload, rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a missing report", rec.Code)
	}
}

func TestHandleDownload_LookupFaultIsNotNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := primitive.NewObjectID().Hex()
	req := testutil.NewAuthenticatedRequest("GET", "/reports/"+id+"/download", testutil.SomeUser())
	req = testutil.WithChiURLParam(req, "id", id)

	// A dead context makes the lookup fail without touching the data,
	// standing in for a database outage.
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	render(handler.HandleDownload, rec, req)

	if rec.Code == http.StatusNotFound {
		t.Error("lookup failure reported as a missing report")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for a lookup failure", rec.Code)
	}
}

func TestServeList_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/reports", nil)
	rec := httptest.NewRecorder()

	render(handler.ServeList, rec, req)

	if rec.Code == http.StatusOK && rec.Body.Len() > 0 {
		// Rendering may have panicked before a status was written;
		// the only wrong outcome is a successful listing.
		t.Error("unauthenticated request produced a listing")
	}
}
