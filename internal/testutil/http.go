package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents a signed-in user for handler tests.
type TestUser struct {
	ID    string
	Name  string
	Email string
}

// UserFor builds a TestUser from an existing profile ID.
func UserFor(id primitive.ObjectID, name string) TestUser {
	return TestUser{
		ID:    id.Hex(),
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.com",
	}
}

// SomeUser returns a TestUser with a fresh random ID.
func SomeUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test User",
		Email: "user@test.com",
	}
}

// WithUser adds a user to the request context, bypassing the session
// middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// NewAuthenticatedRequest creates an HTTP request with a user in
// context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call chi.URLParam directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
