// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func basePageData(r *http.Request, title, msg, backURL, fallback string) pageData {
	u, signed := auth.CurrentUser(r)
	name := ""
	if signed && u != nil {
		name = u.Name
	}
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, fallback)
	}
	return pageData{
		Title:      title,
		IsLoggedIn: signed,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}
}

// RenderUnauthorized shows a friendly "sign in required" page. If
// backURL is empty, it defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	data := basePageData(r, "Sign in required", "Please sign in to continue.", backURL, "/login")
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page", data)
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default
// fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	data := basePageData(r, "Access denied", msg, backURL, "/")
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}

// RenderNotFound shows a friendly "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	data := basePageData(r, "Not found", msg, backURL, "/")
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", data)
}

// RenderServerError shows a friendly "something went wrong" page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	data := basePageData(r, "Something went wrong", msg, backURL, "/")
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", data)
}

// RenderBadRequest shows a friendly "bad request" page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	data := basePageData(r, "Bad request", msg, backURL, "/")
	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_page", data)
}
