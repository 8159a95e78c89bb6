package services

import (
	"context"
	"fmt"
	"io"

	"tripmate/internal/blob"
	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/storage"
)

// ProfileService serves the profile screen: account info, the one-shot
// trip and spending stats, and the profile photo.
type ProfileService struct {
	storage *storage.SQLiteRepository
	blobs   blob.Store
	logger  *log.Logger
}

func NewProfileService(repo *storage.SQLiteRepository, blobs blob.Store, logger *log.Logger) *ProfileService {
	return &ProfileService{
		storage: repo,
		blobs:   blobs,
		logger:  logger.WithComponent(log.ComponentApp),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*core.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}

// Stats computes the trip count and the total spent across all of the
// user's trips. Unlike the ledger views this is a one-shot read, not a
// subscription.
func (s *ProfileService) Stats(ctx context.Context, userID string) (core.ProfileStats, error) {
	return s.storage.ProfileStats(ctx, userID)
}

// UploadPhoto replaces the user's profile photo and stores its URL on the
// account. One object per user; a new upload overwrites the old one.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID string, r io.Reader) (string, error) {
	url, err := s.blobs.Upload(ctx, blob.ProfilePhotoPath(userID), r)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	if err := s.storage.UpdatePhotoURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("store photo url: %w", err)
	}

	s.logger.InfoContext(ctx, "Profile photo updated", log.FieldUserID, userID)
	return url, nil
}

// OpenPhoto streams the stored photo for serving.
func (s *ProfileService) OpenPhoto(ctx context.Context, userID string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, blob.ProfilePhotoPath(userID))
}
