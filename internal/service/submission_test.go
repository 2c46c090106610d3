package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/recorder"
	"github.com/soundjury/soundjury/internal/repository"
)

type submissionEnv struct {
	clips   *fakeClipRepo
	ratings *fakeRatingRepo
	quota   *fakeQuotaRepo
	storage *fakeStorage
	svc     *SubmissionService
}

func newSubmissionEnv() *submissionEnv {
	clips := newFakeClipRepo()
	ratings := newFakeRatingRepo()
	quota := newFakeQuotaRepo()
	storage := newFakeStorage()
	return &submissionEnv{
		clips:   clips,
		ratings: ratings,
		quota:   quota,
		storage: storage,
		svc:     NewSubmissionService(clips, ratings, NewQuotaService(quota, 3), storage),
	}
}

func testClip() *recorder.Clip {
	return &recorder.Clip{
		Data:       []byte("webm bytes"),
		MimeType:   "audio/webm",
		Duration:   4 * time.Second,
		RecordedAt: time.Now(),
	}
}

func TestSubmitCommitsBlobAndRecord(t *testing.T) {
	env := newSubmissionEnv()

	id, err := env.svc.Submit("alice", testClip())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	clip, err := env.clips.ByID(id)
	if err != nil {
		t.Fatalf("clip record missing after submit: %v", err)
	}
	if clip.AuthorID != "alice" {
		t.Errorf("AuthorID = %q, want alice", clip.AuthorID)
	}
	if clip.SizeBytes != int64(len("webm bytes")) {
		t.Errorf("SizeBytes = %d, want %d", clip.SizeBytes, len("webm bytes"))
	}

	blob, ok := env.storage.saved[clip.BlobPath]
	if !ok {
		t.Fatalf("no blob stored at %q", clip.BlobPath)
	}
	if string(blob) != "webm bytes" {
		t.Errorf("stored blob = %q, want original payload", blob)
	}

	used, _ := env.quota.Used("alice", model.QuotaDate(time.Now()))
	if used != 1 {
		t.Errorf("quota used = %d, want 1", used)
	}
}

func TestSubmitUploadFailure(t *testing.T) {
	env := newSubmissionEnv()
	env.storage.saveErr = errors.New("s3 down")

	_, err := env.svc.Submit("alice", testClip())
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("Submit() error = %v, want ErrUploadFailed", err)
	}

	if len(env.clips.clips) != 0 {
		t.Error("clip record created despite failed upload")
	}
	used, _ := env.quota.Used("alice", model.QuotaDate(time.Now()))
	if used != 0 {
		t.Errorf("quota used = %d after failed upload, want 0", used)
	}
}

func TestSubmitMetadataFailureCleansUpBlob(t *testing.T) {
	env := newSubmissionEnv()
	env.clips.createErr = errors.New("insert failed")

	_, err := env.svc.Submit("alice", testClip())
	if !errors.Is(err, ErrMetadataWriteFailed) {
		t.Fatalf("Submit() error = %v, want ErrMetadataWriteFailed", err)
	}

	if len(env.storage.deleted) != 1 {
		t.Fatalf("blob delete calls = %d, want 1", len(env.storage.deleted))
	}
	if len(env.storage.saved) != 0 {
		t.Error("orphaned blob left in storage")
	}
	used, _ := env.quota.Used("alice", model.QuotaDate(time.Now()))
	if used != 0 {
		t.Errorf("quota used = %d after failed submit, want 0", used)
	}
}

func TestSubmitQuotaExhausted(t *testing.T) {
	env := newSubmissionEnv()
	env.quota.used[quotaKey("alice", model.QuotaDate(time.Now()))] = 3

	_, err := env.svc.Submit("alice", testClip())
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Submit() error = %v, want ErrQuotaExceeded", err)
	}
	if len(env.storage.saved) != 0 {
		t.Error("blob uploaded despite exhausted quota")
	}
}

func TestSubmitThreeTimesThenBlocked(t *testing.T) {
	env := newSubmissionEnv()

	for i := 0; i < 3; i++ {
		if _, err := env.svc.Submit("alice", testClip()); err != nil {
			t.Fatalf("Submit() #%d error = %v", i+1, err)
		}
	}

	_, err := env.svc.Submit("alice", testClip())
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("fourth Submit() error = %v, want ErrQuotaExceeded", err)
	}
	if len(env.clips.clips) != 3 {
		t.Errorf("clip count = %d, want 3", len(env.clips.clips))
	}
}

func TestDeleteRemovesClipBlobAndRatings(t *testing.T) {
	env := newSubmissionEnv()

	id, err := env.svc.Submit("alice", testClip())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	clip, _ := env.clips.ByID(id)
	blobPath := clip.BlobPath

	_ = env.ratings.Create(&model.Rating{ID: uuid.New().String(), AuthorID: "bob", ClipID: id, Score: 7})
	_ = env.ratings.Create(&model.Rating{ID: uuid.New().String(), AuthorID: "carol", ClipID: id, Score: 9})

	if err := env.svc.Delete("alice", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.clips.ByID(id); !errors.Is(err, repository.ErrClipNotFound) {
		t.Error("clip record still present after delete")
	}
	if _, ok := env.storage.saved[blobPath]; ok {
		t.Error("blob still present after delete")
	}
	ratings, _ := env.ratings.ByClip(id)
	if len(ratings) != 0 {
		t.Errorf("ratings remaining = %d, want 0", len(ratings))
	}
}

func TestDeleteRejectsNonAuthor(t *testing.T) {
	env := newSubmissionEnv()

	id, err := env.svc.Submit("alice", testClip())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	err = env.svc.Delete("bob", id)
	if !errors.Is(err, ErrNotClipAuthor) {
		t.Fatalf("Delete() error = %v, want ErrNotClipAuthor", err)
	}
	if _, err := env.clips.ByID(id); err != nil {
		t.Error("clip removed by a non-author")
	}
}

func TestDeleteUnknownClip(t *testing.T) {
	env := newSubmissionEnv()

	err := env.svc.Delete("alice", "missing")
	if !errors.Is(err, repository.ErrClipNotFound) {
		t.Fatalf("Delete() error = %v, want ErrClipNotFound", err)
	}
}

func TestDeleteSurvivesBlobFailure(t *testing.T) {
	env := newSubmissionEnv()

	id, err := env.svc.Submit("alice", testClip())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	env.storage.deleteErr = errors.New("s3 down")

	if err := env.svc.Delete("alice", id); err != nil {
		t.Fatalf("Delete() error = %v, want nil when only the blob delete fails", err)
	}
	if _, err := env.clips.ByID(id); !errors.Is(err, repository.ErrClipNotFound) {
		t.Error("clip record still present after delete")
	}
}
