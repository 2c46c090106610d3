package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/soundjury/soundjury/internal/config"
	"github.com/soundjury/soundjury/internal/ctxkeys"
	"github.com/soundjury/soundjury/internal/metrics"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/recorder"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/service"
	"github.com/soundjury/soundjury/internal/validation"
)

type ClipHandler struct {
	submissions *service.SubmissionService
	feed        *service.FeedService
	quota       *service.QuotaService
	cfg         *config.Config
}

func NewClipHandler(submissions *service.SubmissionService, feed *service.FeedService, quota *service.QuotaService, cfg *config.Config) *ClipHandler {
	return &ClipHandler{
		submissions: submissions,
		feed:        feed,
		quota:       quota,
		cfg:         cfg,
	}
}

type clipResponse struct {
	ID            string       `json:"id"`
	AuthorID      string       `json:"author_id"`
	AuthorName    string       `json:"author_name,omitempty"`
	AuthorCountry string       `json:"author_country,omitempty"`
	URL           string       `json:"url"`
	CreatedAt     time.Time    `json:"created_at"`
	Average       float64      `json:"average"`
	RatingCount   int          `json:"rating_count"`
	Histogram     map[int]int  `json:"histogram,omitempty"`
	Ratings       []ratingItem `json:"ratings,omitempty"`
}

type ratingItem struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ratingItems(ratings []model.Rating) []ratingItem {
	items := make([]ratingItem, 0, len(ratings))
	for _, r := range ratings {
		items = append(items, ratingItem{
			ID:        r.ID,
			AuthorID:  r.AuthorID,
			Score:     r.Score,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return items
}

// Feed returns all submitted clips, newest first, with author and
// aggregate rating data.
func (h *ClipHandler) Feed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feed.LoadAll()
	if err != nil {
		slog.Error("failed to load feed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "Feed unavailable")
		return
	}

	clips := make([]clipResponse, 0, len(entries))
	for _, e := range entries {
		clips = append(clips, clipResponse{
			ID:            e.ID,
			AuthorID:      e.AuthorID,
			AuthorName:    e.AuthorName,
			AuthorCountry: e.AuthorCountry,
			URL:           e.URL,
			CreatedAt:     e.CreatedAt,
			Average:       e.Average,
			RatingCount:   e.RatingCount,
			Histogram:     e.Histogram,
			Ratings:       ratingItems(e.Ratings),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"clips": clips})
}

// Submit accepts a finished recording as a multipart upload and commits it
// through the submission pipeline.
func (h *ClipHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxClipBytes)
	err := r.ParseMultipartForm(h.cfg.MaxClipBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.AudioConstraints)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read audio file")
		return
	}

	clip := &recorder.Clip{
		Data:       data,
		MimeType:   header.Header.Get("Content-Type"),
		RecordedAt: time.Now(),
	}

	id, err := h.submissions.Submit(user.ID, clip)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, service.ErrQuotaExceeded):
			respondError(w, http.StatusTooManyRequests, "Daily limit reached, come back tomorrow")
		case errors.Is(err, service.ErrUploadFailed):
			slog.Error("clip upload failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusBadGateway, "Upload failed, your recording was kept - try again")
		case errors.Is(err, service.ErrMetadataWriteFailed):
			slog.Error("clip metadata write failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusBadGateway, "Saving failed, your recording was kept - try again")
		default:
			slog.Error("failed to submit clip", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "Failed to submit clip")
		}
		return
	}
	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()

	remaining, err := h.quota.Remaining(user.ID, time.Now())
	if err != nil {
		slog.Warn("failed to read remaining quota", "error", err, "user_id", user.ID)
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":        id,
		"remaining": remaining,
	})
}

// MyClips returns the caller's own submissions.
func (h *ClipHandler) MyClips(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	clips, err := h.submissions.ByAuthor(user.ID)
	if err != nil {
		slog.Error("failed to load own clips", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to load clips")
		return
	}

	out := make([]clipResponse, 0, len(clips))
	for _, c := range clips {
		out = append(out, clipResponse{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			URL:       h.submissions.URL(c),
			CreatedAt: c.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"clips": out})
}

// Delete removes one of the caller's clips, blob and record together.
func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	clipID := r.PathValue("id")

	err := h.submissions.Delete(user.ID, clipID)
	switch {
	case errors.Is(err, repository.ErrClipNotFound):
		respondError(w, http.StatusNotFound, "Clip not found")
		return
	case errors.Is(err, service.ErrNotClipAuthor):
		respondError(w, http.StatusForbidden, "Not your clip")
		return
	case err != nil:
		slog.Error("failed to delete clip", "error", err, "user_id", user.ID, "clip_id", clipID)
		respondError(w, http.StatusInternalServerError, "Failed to delete clip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Quota reports how many submissions the caller has left today.
func (h *ClipHandler) Quota(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	remaining, err := h.quota.Remaining(user.ID, time.Now())
	if err != nil {
		slog.Error("failed to read quota", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to read quota")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"limit":     h.quota.Limit(),
		"remaining": remaining,
	})
}
