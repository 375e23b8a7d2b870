package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gym-manager/backend/internal/scope"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data"`
	FailedGyms []scope.Failure `json:"failedGyms,omitempty"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Read decodes a JSON body, rejecting unknown fields. An empty body is an
// error.
func Read(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]any{"error": msg})
}

// OK writes {"success":true,"data":v}.
func OK(w http.ResponseWriter, status int, v any) {
	Write(w, status, envelope{Success: true, Data: v})
}

// Partial writes data gathered across gyms together with the gyms that
// failed.
func Partial(w http.ResponseWriter, v any, failed []scope.Failure) {
	Write(w, http.StatusOK, envelope{Success: true, Data: v, FailedGyms: failed})
}

// List writes a scoped collection.
func List[T any](w http.ResponseWriter, res scope.Result[T]) {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	Partial(w, items, res.Failures)
}
