package http

import (
	"io"
	"net/http"

	"tripmate/internal/log"
)

const maxPhotoBytes = 5 << 20

type profileResponse struct {
	User  userPayload  `json:"user"`
	Stats statsPayload `json:"stats"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := s.deps.Profile.Stats(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		User:  toUserPayload(user),
		Stats: toStatsPayload(stats),
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := s.deps.Profile.Stats(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsPayload(stats))
}

// handleUploadPhoto accepts the raw JPEG body and stores it under the
// user's fixed photo path, overwriting any previous upload.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	body := http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	url, err := s.deps.Profile.UploadPhoto(r.Context(), user.ID, body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "profile photo uploaded",
		log.FieldUserID, user.ID,
	)
	writeJSON(w, http.StatusOK, map[string]string{"photoUrl": url})
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	photo, err := s.deps.Profile.OpenPhoto(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer photo.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, photo)
}
