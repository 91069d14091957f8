// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/inputval"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	FullName   string
	Email      string
	AvatarURL  string
	AuthMethod string

	TotalXP        int
	Level          int
	NextLevelXP    int
	CompletedCount int64

	ShowPasswordSection bool

	Error   string
	Success string
}

// ServeProfile renders the signed-in user's profile with XP and level.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.profiles.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Profile not found.", "/")
		return
	}

	completed, err := h.progress.CountFor(ctx, uid)
	if err != nil {
		h.Log.Warn("failed to count completed learnings", zap.Error(err))
	}

	data := h.profileData(r, p)
	data.CompletedCount = completed

	switch r.URL.Query().Get("success") {
	case "profile":
		data.Success = "Profile updated."
	case "avatar":
		data.Success = "Avatar updated."
	case "password":
		data.Success = "Password changed successfully."
	}

	templates.Render(w, r, "profile", data)
}

// HandleUpdate processes the display name / avatar form.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.profiles.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Profile not found.", "/")
		return
	}

	fullName := htmlsanitize.StripAll(r.FormValue("full_name"))
	avatarURL := r.FormValue("avatar_url")

	if fullName == "" {
		h.renderWithError(w, r, p, "Name cannot be empty.")
		return
	}
	if avatarURL != "" && !urlutil.IsValidAbsHTTPURL(avatarURL) {
		h.renderWithError(w, r, p, "Avatar URL must be an absolute http(s) URL.")
		return
	}

	upd := profilestore.ProfileUpdate{FullName: fullName, AvatarURL: avatarURL}
	if err := h.profiles.Update(ctx, uid, upd); err != nil {
		h.ErrLog.LogServerError(w, r, "profile update failed", err, "Could not save your profile.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=profile", http.StatusSeeOther)
}

// HandleChangePassword processes the password change form. Only password
// accounts can use it; Google accounts have no hash to verify against.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.profiles.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Profile not found.", "/")
		return
	}

	if p.AuthMethod != models.AuthMethodPassword {
		h.renderWithError(w, r, p, "Password change is only available for password accounts.")
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	if err := bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(current)); err != nil {
		h.renderWithError(w, r, p, "Current password is incorrect.")
		return
	}
	if !inputval.IsValidPassword(next) {
		h.renderWithError(w, r, p, "New password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password hash failed", err, "Could not change your password.", "/profile")
		return
	}
	if err := h.profiles.SetPasswordHash(ctx, uid, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "password update failed", err, "Could not change your password.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

func (h *Handler) profileData(r *http.Request, p *models.Profile) profileData {
	return profileData{
		BaseVM:              viewdata.NewBaseVM(r, "Profile", "/"),
		FullName:            p.FullName,
		Email:               p.Email,
		AvatarURL:           p.AvatarURL,
		AuthMethod:          p.AuthMethod,
		TotalXP:             p.TotalXP,
		Level:               p.Level,
		NextLevelXP:         p.Level * profilestore.XPPerLevel,
		ShowPasswordSection: p.AuthMethod == models.AuthMethodPassword,
	}
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, p *models.Profile, msg string) {
	data := h.profileData(r, p)
	data.Error = msg
	templates.Render(w, r, "profile", data)
}
