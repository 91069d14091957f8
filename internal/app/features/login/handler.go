// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/app/system/auth"
	"github.com/takimhub/takimhub/internal/app/system/inputval"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	GoogleEnabled bool // true if Google OAuth is configured

	profiles *profilestore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		GoogleEnabled: googleEnabled,
		profiles:      profilestore.New(db),
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	viewdata.BaseVM
	Error    string
	FullName string
	Email    string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	data := loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	}
	templates.Render(w, r, "login", data)
}

// HandleLoginPost handles POST /login: email + password sign-in.
// Lookup misses and wrong passwords get the same message so the form
// never confirms whether an address is registered.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := r.FormValue("return")

	reRender := func(msg string) {
		data := loginFormData{
			BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
			Error:         msg,
			Email:         email,
			ReturnURL:     returnURL,
			GoogleEnabled: h.GoogleEnabled,
		}
		templates.Render(w, r, "login", data)
	}

	if email == "" || password == "" {
		reRender("Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.profiles.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		reRender("Incorrect email or password.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile lookup failed", err, "A database error occurred.", "/login")
		return
	}
	if len(p.PasswordHash) == 0 {
		// OAuth-only account; no password to check.
		reRender("This account signs in with Google.")
		return
	}
	if err := bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)); err != nil {
		reRender("Incorrect email or password.")
		return
	}

	if err := h.signIn(w, r, p); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Could not sign you in. Please try again.", "/login")
		return
	}

	dest := urlutil.SafeReturn(returnURL, "", "/reports")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// ServeSignup handles GET /login/signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	data := signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Create account", "/login"),
	}
	templates.Render(w, r, "signup", data)
}

// HandleSignupPost handles POST /login/signup: password-based account
// creation followed by an immediate sign-in.
func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login/signup")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	reRender := func(msg string) {
		data := signupFormData{
			BaseVM:   viewdata.NewBaseVM(r, "Create account", "/login"),
			Error:    msg,
			FullName: fullName,
			Email:    email,
		}
		templates.Render(w, r, "signup", data)
	}

	if fullName == "" {
		reRender("Name is required.")
		return
	}
	if !inputval.IsValidEmail(email) {
		reRender("Enter a valid email address.")
		return
	}
	if !inputval.IsValidPassword(password) {
		reRender("Password must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password hash failed", err, "Could not create your account.", "/login/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.profiles.Create(ctx, models.Profile{
		Email:        email,
		FullName:     fullName,
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, profilestore.ErrDuplicateEmail) {
			reRender("An account with this email already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "profile create failed", err, "A database error occurred.", "/login/signup")
		return
	}

	h.Log.Info("account created", zap.String("profile_id", p.ID.Hex()))

	if err := h.signIn(w, r, &p); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Account created; please sign in.", "/login")
		return
	}
	http.Redirect(w, r, "/reports", http.StatusSeeOther)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, p *models.Profile) error {
	return h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:        p.ID.Hex(),
		Name:      p.FullName,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	})
}
