package service

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/recorder"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/storage"
)

var (
	ErrUploadFailed        = errors.New("clip upload failed")
	ErrMetadataWriteFailed = errors.New("clip metadata write failed")
	ErrNotClipAuthor       = errors.New("not the clip author")
)

// SubmissionService commits finished recordings: blob upload first, then
// the metadata record, then the quota increment. The order is strict
// because a record pointing at a missing blob breaks playback, while an
// orphaned blob is merely wasted storage.
type SubmissionService struct {
	clipRepo   repository.ClipRepository
	ratingRepo repository.RatingRepository
	quota      *QuotaService
	storage    storage.Storage
}

func NewSubmissionService(clipRepo repository.ClipRepository, ratingRepo repository.RatingRepository, quota *QuotaService, storage storage.Storage) *SubmissionService {
	return &SubmissionService{
		clipRepo:   clipRepo,
		ratingRepo: ratingRepo,
		quota:      quota,
		storage:    storage,
	}
}

// Submit uploads the clip payload and registers its metadata record,
// returning the new clip's ID. On any failure the caller's clip is
// untouched and no quota is consumed, so the user can retry without
// re-recording.
func (s *SubmissionService) Submit(actorID string, clip *recorder.Clip) (string, error) {
	// Re-check quota; the session checked at start, but time has passed.
	remaining, err := s.quota.Remaining(actorID, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to check quota: %w", err)
	}
	if remaining <= 0 {
		return "", ErrQuotaExceeded
	}

	// Path is unique per actor and submission instant.
	path := fmt.Sprintf("clips/%s/%d.webm", actorID, time.Now().UnixNano())

	err = s.storage.Save(path, bytes.NewReader(clip.Data), clip.MimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	clipModel := &model.Clip{
		ID:        uuid.New().String(),
		AuthorID:  actorID,
		BlobPath:  path,
		MimeType:  clip.MimeType,
		SizeBytes: int64(len(clip.Data)),
		CreatedAt: time.Now(),
	}

	err = s.clipRepo.Create(clipModel)
	if err != nil {
		// The blob exists without a record. Try to clean it up so it does
		// not linger as an orphan; if that fails too, log and move on.
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Error("failed to delete blob during cleanup", "error", delErr, "path", path)
		}
		return "", fmt.Errorf("%w: %v", ErrMetadataWriteFailed, err)
	}

	err = s.quota.RecordSuccess(actorID, time.Now())
	if err != nil {
		// The clip is committed; a lost race on the counter is not worth
		// failing the submission over at this point.
		slog.Warn("failed to record quota attempt after submission", "error", err, "actor_id", actorID)
	}

	return clipModel.ID, nil
}

// ByAuthor returns the actor's own submitted clips, newest first.
func (s *SubmissionService) ByAuthor(actorID string) ([]*model.Clip, error) {
	return s.clipRepo.ByAuthor(actorID)
}

// URL returns the playback URL for a stored clip.
func (s *SubmissionService) URL(clip *model.Clip) string {
	return s.storage.URL(clip.BlobPath)
}

// Delete removes a clip's blob, its metadata record and its ratings
// together. Only the clip's author may delete it.
func (s *SubmissionService) Delete(actorID, clipID string) error {
	clip, err := s.clipRepo.ByID(clipID)
	if err != nil {
		return err
	}
	if clip.AuthorID != actorID {
		return ErrNotClipAuthor
	}

	// Blob first, best effort: the physical file may already be gone.
	err = s.storage.Delete(clip.BlobPath)
	if err != nil {
		slog.Warn("failed to delete blob from storage", "error", err, "path", clip.BlobPath)
	}

	err = s.ratingRepo.DeleteByClip(clipID)
	if err != nil {
		return fmt.Errorf("failed to delete clip ratings: %w", err)
	}

	err = s.clipRepo.Delete(clipID)
	if err != nil {
		return fmt.Errorf("failed to delete clip record: %w", err)
	}

	return nil
}
