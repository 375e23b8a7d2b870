package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/domain/gym"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, tok string) (*auth.Token, error) {
	if tok == "good" {
		return &auth.Token{UID: "bearer-user", Claims: map[string]any{"email": "a@b.co"}}, nil
	}
	return nil, errors.New("invalid")
}

func (stubVerifier) VerifySessionCookieAndCheckRevoked(_ context.Context, c string) (*auth.Token, error) {
	switch c {
	case "sess":
		return &auth.Token{UID: "cookie-user", Claims: map[string]any{"email": "a@b.co"}}, nil
	case "revoked":
		return nil, errors.New("session cookie revoked")
	}
	return nil, errors.New("invalid")
}

type stubChecker struct {
	res *gym.AccessResult
	err error
}

func (s stubChecker) VerifyAccess(context.Context, string, string) (*gym.AccessResult, error) {
	return s.res, s.err
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		bearer string
		want   string
	}{
		{"cookie", "sess", "", "cookie-user"},
		{"cookie wins over bearer", "sess", "good", "cookie-user"},
		{"bad cookie falls back to bearer", "stale", "good", "bearer-user"},
		{"nothing valid", "stale", "bad", ""},
		{"revoked cookie", "revoked", "", ""},
		{"revoked cookie falls back to bearer", "revoked", "good", "bearer-user"},
		{"no credentials", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Identify(stubVerifier{}, "session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = authctx.UID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRequireAccess(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, found := authctx.Access(r.Context()); !found {
			t.Error("access result missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	signedIn := authctx.WithUser(context.Background(), &authctx.User{UID: "u1", Email: "a@b.co"})

	tests := []struct {
		name    string
		ctx     context.Context
		checker stubChecker
		want    int
	}{
		{"no user", context.Background(), stubChecker{}, 401},
		{"unauthorized", signedIn, stubChecker{err: gym.ErrUnauthorized}, 401},
		{"store failure", signedIn, stubChecker{err: errors.New("down")}, 500},
		{"not registered", signedIn, stubChecker{res: &gym.AccessResult{Error: gym.DenialNoGym}}, 403},
		{"authorized", signedIn, stubChecker{res: &gym.AccessResult{Authorized: true}}, 204},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)
			RequireAccess(tt.checker)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(map[string]any{"admin": true}) || !IsAdmin(map[string]any{"role": "admin"}) {
		t.Error("admin claims not recognized")
	}
	if IsAdmin(nil) || IsAdmin(map[string]any{"admin": "true", "role": "coach"}) {
		t.Error("non-admin claims treated as admin")
	}
}
