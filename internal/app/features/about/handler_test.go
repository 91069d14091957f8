package about_test

import (
	"net/http/httptest"
	"testing"

	"github.com/takimhub/takimhub/internal/app/features/about"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *about.Handler {
	t.Helper()
	return about.NewHandler(zap.NewNop())
}

func TestNewHandler(t *testing.T) {
	h := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestServeAbout_DoesNotRequireSession(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/about", nil)
	rec := httptest.NewRecorder()

	// Rendering panics without a booted template engine; the page data
	// setup itself must not.
	func() {
		defer func() { _ = recover() }()
		handler.ServeAbout(rec, req)
	}()
}
