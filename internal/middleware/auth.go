package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/httpjson"
)

// TokenVerifier is the part of the Firebase auth client used to identify
// callers. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// AccessChecker resolves which gyms a caller administers.
type AccessChecker interface {
	VerifyAccess(ctx context.Context, uid, email string) (*gym.AccessResult, error)
}

// Identify attaches the caller to the context when a valid session cookie or
// bearer ID token is present. It never rejects; see RequireUser.
func Identify(v TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := verify(r, v, cookieName)
			if tok == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := authctx.WithUser(r.Context(), userFromToken(tok))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a verified caller.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authctx.GetUser(r.Context()); !ok {
			httpjson.Error(w, http.StatusUnauthorized, "No session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccess rejects callers that are not registered to any gym and
// stores the access result for handlers.
func RequireAccess(checker AccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := authctx.GetUser(r.Context())
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "No session")
				return
			}
			res, err := checker.VerifyAccess(r.Context(), u.UID, u.Email)
			if err != nil {
				if gym.IsErrUnauthorized(err) {
					httpjson.Error(w, http.StatusUnauthorized, err.Error())
					return
				}
				log.Printf("[auth] access check failed for %s: %v", u.UID, err)
				httpjson.Error(w, http.StatusInternalServerError, "failed to verify gym access")
				return
			}
			if !res.Authorized {
				httpjson.Error(w, http.StatusForbidden, res.Error)
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithAccess(r.Context(), res)))
		})
	}
}

func verify(r *http.Request, v TokenVerifier, cookieName string) *auth.Token {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		if tok, err := v.VerifySessionCookieAndCheckRevoked(r.Context(), c.Value); err == nil {
			return tok
		}
	}
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil
	}
	idToken := strings.TrimSpace(h[len("Bearer "):])
	tok, err := v.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		return nil
	}
	return tok
}

func userFromToken(tok *auth.Token) *authctx.User {
	u := &authctx.User{UID: tok.UID, Claims: tok.Claims}
	if v, ok := tok.Claims["email"].(string); ok {
		u.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		u.EmailVerified = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		u.Name = v
	}
	return u
}

// IsAdmin checks the admin custom claim set by cmd/grant-access.
func IsAdmin(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	if role, ok := claims["role"].(string); ok && role == "admin" {
		return true
	}
	return false
}
