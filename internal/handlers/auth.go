package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/httpjson"
	"gym-manager/backend/internal/middleware"
	"gym-manager/backend/internal/utils"
)

// AuthClient is the subset of *auth.Client used for accounts and sessions.
type AuthClient interface {
	middleware.TokenVerifier
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
}

// ProfileWriter keeps the users/{uid} documents.
type ProfileWriter interface {
	TouchLogin(ctx context.Context, id user.Identity) error
	Create(ctx context.Context, p user.Profile) error
}

type Auth struct {
	cfg      config.Config
	client   AuthClient
	access   middleware.AccessChecker
	profiles ProfileWriter
}

func NewAuth(cfg config.Config, client AuthClient, access middleware.AccessChecker, profiles ProfileWriter) *Auth {
	return &Auth{cfg: cfg, client: client, access: access, profiles: profiles}
}

type signupReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// Signup creates a Firebase account and its profile. The caller signs in
// separately once the email is verified.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if msg := utils.Validate(req); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.Name).
		EmailVerified(false)
	rec, err := h.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			httpjson.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		log.Printf("[auth] create user %s: %v", req.Email, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	p := user.Profile{UID: rec.UID, Email: req.Email, DisplayName: req.Name, Phone: req.Phone}
	if h.profiles != nil {
		if err := h.profiles.Create(ctx, p); err != nil {
			log.Printf("[auth] create profile for %s: %v", rec.UID, err)
		}
	}
	httpjson.Write(w, http.StatusCreated, map[string]any{
		"success":     true,
		"uid":         rec.UID,
		"email":       req.Email,
		"displayName": req.Name,
		"message":     "Account created! Please verify your email before signing in.",
	})
}

type loginReq struct {
	IDToken string `json:"idToken"`
}

// Login exchanges a Firebase ID token for an HTTP-only session cookie.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpjson.Read(r, &req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		httpjson.Error(w, http.StatusBadRequest, "idToken is required")
		return
	}
	ctx := r.Context()
	tok, err := h.client.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid id token")
		return
	}
	cookie, err := h.client.SessionCookie(ctx, req.IDToken, h.cfg.SessionTTL)
	if err != nil {
		log.Printf("[auth] session cookie for %s: %v", tok.UID, err)
		httpjson.Error(w, http.StatusUnauthorized, "failed to create session")
		return
	}
	http.SetCookie(w, h.cookie(cookie, int(h.cfg.SessionTTL.Seconds())))

	id := identity(tok)
	if h.profiles != nil {
		if err := h.profiles.TouchLogin(ctx, id); err != nil {
			log.Printf("[auth] record login for %s: %v", id.UID, err)
		}
	}
	httpjson.OK(w, http.StatusOK, id)
}

// VerifyUser reports the identity behind the current session.
func (h *Auth) VerifyUser(w http.ResponseWriter, r *http.Request) {
	u, ok := authctx.GetUser(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, map[string]any{"authenticated": false, "error": "No session"})
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": user.Identity{
			UID:           u.UID,
			Email:         u.Email,
			EmailVerified: u.EmailVerified,
			DisplayName:   u.Name,
		},
	})
}

// VerifyGymAccess answers 403 with a reason when the caller administers no
// gym. The 403 body is a regular answer, not a failure.
func (h *Auth) VerifyGymAccess(w http.ResponseWriter, r *http.Request) {
	u, ok := authctx.GetUser(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, map[string]any{"authorized": false, "error": "No session"})
		return
	}
	res, err := h.access.VerifyAccess(r.Context(), u.UID, u.Email)
	if err != nil {
		if gym.IsErrUnauthorized(err) {
			httpjson.Write(w, http.StatusForbidden, map[string]any{"authorized": false, "error": gym.DenialNoGym})
			return
		}
		log.Printf("[auth] verify gym access for %s: %v", u.UID, err)
		httpjson.Write(w, http.StatusInternalServerError, map[string]any{"authorized": false, "error": "failed to verify gym access"})
		return
	}
	if !res.Authorized {
		httpjson.Write(w, http.StatusForbidden, res)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

// Logout clears the session cookie. Revoking refresh tokens is best effort.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := authctx.UID(r.Context()); ok {
		if err := h.client.RevokeRefreshTokens(r.Context(), uid); err != nil {
			log.Printf("[auth] revoke tokens for %s: %v", uid, err)
		}
	}
	http.SetCookie(w, h.cookie("", -1))
	httpjson.OK(w, http.StatusOK, nil)
}

func (h *Auth) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func identity(tok *auth.Token) user.Identity {
	id := user.Identity{UID: tok.UID}
	id.Email, _ = tok.Claims["email"].(string)
	id.EmailVerified, _ = tok.Claims["email_verified"].(bool)
	id.DisplayName, _ = tok.Claims["name"].(string)
	id.Admin = middleware.IsAdmin(tok.Claims)
	return id
}
