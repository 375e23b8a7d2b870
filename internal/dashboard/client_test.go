package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "://x"} {
		if _, err := NewClient(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestClient_VerifyUser(t *testing.T) {
	mux := http.NewServeMux()
	status := http.StatusUnauthorized
	mux.HandleFunc("GET /api/auth/verify-user", func(w http.ResponseWriter, r *http.Request) {
		switch status {
		case http.StatusOK:
			writeJSON(w, status, map[string]any{"authenticated": true, "user": map[string]any{"uid": "u1", "email": "a@b.co"}})
		default:
			writeJSON(w, status, map[string]any{"authenticated": false, "error": "No session"})
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := c.VerifyUser(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("401 should map to ErrNoSession, got %v", err)
	}

	status = http.StatusInternalServerError
	if _, err := c.VerifyUser(ctx); !IsStatus(err, 500) {
		t.Errorf("expected APIError 500, got %v", err)
	}

	status = http.StatusOK
	id, err := c.VerifyUser(ctx)
	if err != nil || !id.Authenticated || id.User == nil || id.User.UID != "u1" {
		t.Errorf("unexpected identity %+v (%v)", id, err)
	}
}

func TestClient_VerifyGymAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/verify-gym-access", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"authorized": false, "error": "Your account is not registered to any gym"})
	})
	c := newTestClient(t, mux)

	res, err := c.VerifyGymAccess(context.Background())
	if err != nil {
		t.Fatalf("403 is a regular answer, got error %v", err)
	}
	if res.Authorized || res.Error == "" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestClient_EnvelopeAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/trainers", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("gymIds") != `["g1","g2"]` {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad gymIds " + r.URL.Query().Get("gymIds")})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"data":       []map[string]any{{"id": "t1", "name": "Ana", "gymId": "g1"}},
			"failedGyms": []map[string]any{{"gymId": "g2", "gymName": "Uptown", "error": "unavailable"}},
		})
	})
	mux.HandleFunc("DELETE /api/admin/trainers/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trainer not found"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	items, failed, err := c.ListTrainers(ctx, "org1", []string{"g1", "g2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Errorf("unexpected items %+v", items)
	}
	if len(failed) != 1 || failed[0].GymID != "g2" {
		t.Errorf("unexpected failures %+v", failed)
	}

	err = c.DeleteTrainer(ctx, "org1", "g1", "nope")
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Message != "trainer not found" {
		t.Errorf("expected APIError 404, got %v", err)
	}

	if err := c.Logout(ctx); !IsStatus(err, http.StatusBadGateway) {
		t.Errorf("non-JSON error bodies should still map to APIError, got %v", err)
	}
}

func TestClient_BearerToken(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/devices", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL, WithIDToken("tok"))
	if err != nil {
		t.Fatal(err)
	}
	devices, err := c.ListDevices(context.Background(), "org1", nil)
	if err != nil || len(devices) != 0 {
		t.Fatalf("unexpected result %v (%v)", devices, err)
	}
	if got != "Bearer tok" {
		t.Errorf("unexpected authorization header %q", got)
	}
}

func TestClient_EscapedIDs(t *testing.T) {
	var rawPath, path string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /gym/api/admin/trainers/", func(w http.ResponseWriter, r *http.Request) {
		rawPath, path = r.URL.EscapedPath(), r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(srv.URL + "/gym/")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteTrainer(context.Background(), "org1", "g1", "a/b c"); err != nil {
		t.Fatal(err)
	}
	if rawPath != "/gym/api/admin/trainers/a%2Fb%20c" {
		t.Errorf("id escaped wrongly: %q", rawPath)
	}
	if path != "/gym/api/admin/trainers/a/b c" {
		t.Errorf("unexpected decoded path %q", path)
	}
}
