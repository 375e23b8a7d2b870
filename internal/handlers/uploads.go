package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/httpjson"
	"gym-manager/backend/internal/media"
)

type Uploads struct {
	signer media.URLSigner
}

func NewUploads(signer media.URLSigner) *Uploads {
	return &Uploads{signer: signer}
}

type photoURLReq struct {
	OrganizationID string `json:"organizationId"`
	GymID          string `json:"gymId"`
	Kind           string `json:"kind"` // trainer | user
	PersonID       string `json:"personId"`
	ContentType    string `json:"contentType"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty"`
}

// CreatePhotoUploadURL returns a signed PUT URL for a trainer or member photo
// in one of the caller's gyms.
func (h *Uploads) CreatePhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	var req photoURLReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	access, ok := authctx.Access(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusForbidden, gym.DenialNoGym)
		return
	}
	if _, err := access.Scope(req.OrganizationID, []string{req.GymID}); err != nil {
		if gym.IsErrBadRequest(err) {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpjson.Error(w, http.StatusForbidden, err.Error())
		return
	}

	objectPath, err := media.PhotoPath(
		strings.TrimSpace(req.OrganizationID),
		strings.TrimSpace(req.GymID),
		strings.TrimSpace(req.Kind),
		strings.TrimSpace(req.PersonID),
		strings.TrimSpace(req.ContentType),
	)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.signer == nil {
		httpjson.Error(w, http.StatusServiceUnavailable, media.ErrNotConfigured.Error())
		return
	}

	out, err := h.signer.Upload(r.Context(), objectPath, req.ContentType, time.Duration(req.ExpiresSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, media.ErrNotConfigured) {
			httpjson.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		log.Printf("[uploads] sign %s: %v", objectPath, err)
		httpjson.Error(w, http.StatusInternalServerError, "failed to sign upload url")
		return
	}
	httpjson.OK(w, http.StatusOK, out)
}
