// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/store/oauthstate"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	"github.com/takimhub/takimhub/internal/app/system/auth"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication. Accounts are created on
// first sign-in; returning users are matched by email.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string

	profiles *profilestore.Store
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		profiles:     profilestore.New(db),
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code for tokens, fetches user info, finds or creates the      |
| matching profile, and signs the user in.                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxShort, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxShort, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if googleUser.Email == "" {
		h.Log.Warn("Google user info missing email", zap.String("google_id", googleUser.ID))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	p, err := h.findOrCreateProfile(ctx, googleUser)
	if err != nil {
		h.Log.Error("failed to resolve profile for Google sign-in",
			zap.String("email", googleUser.Email),
			zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	su := &auth.SessionUser{
		ID:        p.ID.Hex(),
		Name:      p.FullName,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Could not sign you in. Please try again.", "/login")
		return
	}

	dest := urlutil.SafeReturn(returnURL, "", "/reports")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// findOrCreateProfile matches the Google account to an existing profile by
// email, creating one on first sign-in. Password accounts keep their auth
// method; linking is not attempted.
func (h *Handler) findOrCreateProfile(ctx context.Context, gu *googleUserInfo) (*models.Profile, error) {
	ctxShort, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	existing, err := h.profiles.GetByEmail(ctxShort, gu.Email)
	if err == nil {
		if existing.AvatarURL != gu.Picture && gu.Picture != "" {
			upd := profilestore.ProfileUpdate{FullName: existing.FullName, AvatarURL: gu.Picture}
			if uerr := h.profiles.Update(ctxShort, existing.ID, upd); uerr != nil {
				h.Log.Warn("failed to refresh avatar from Google", zap.Error(uerr))
			} else {
				existing.AvatarURL = gu.Picture
			}
		}
		return existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	created, err := h.profiles.Create(ctxShort, models.Profile{
		FullName:   gu.Name,
		Email:      gu.Email,
		AvatarURL:  gu.Picture,
		AuthMethod: models.AuthMethodGoogle,
	})
	if err == profilestore.ErrDuplicateEmail {
		// Lost a race with a concurrent first sign-in; the profile exists now.
		return h.profiles.GetByEmail(ctxShort, gu.Email)
	}
	if err != nil {
		return nil, err
	}
	h.Log.Info("created profile from Google sign-in",
		zap.String("profile_id", created.ID.Hex()),
		zap.String("email", created.Email))
	return &created, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
