package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"configured origin", []string{"https://admin.example.com/"}, "https://admin.example.com", "https://admin.example.com"},
		{"unknown origin", []string{"https://admin.example.com"}, "https://evil.example.com", ""},
		{"no configuration echoes", nil, "http://localhost:3000", "http://localhost:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.allowed)(ok)
			req := httptest.NewRequest(http.MethodOptions, "/api/admin/trainers", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow-origin: want %q, got %q", tt.want, got)
			}
			if tt.want != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials must be allowed for the session cookie")
			}
		})
	}
}
