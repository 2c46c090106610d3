package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/soundjury/soundjury/internal/ctxkeys"
	"github.com/soundjury/soundjury/internal/metrics"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/service"
)

type RatingHandler struct {
	ratings *service.RatingService
}

func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{
		ratings: ratings,
	}
}

// Rate creates or replaces the caller's rating for a clip.
func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	clipID := r.PathValue("id")

	var req struct {
		Score   int    `json:"score"`
		Comment string `json:"comment"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rating, err := h.ratings.Rate(user.ID, clipID, req.Score, req.Comment)
	switch {
	case errors.Is(err, service.ErrInvalidScore):
		respondError(w, http.StatusUnprocessableEntity, "Score must be between 1 and 10")
		return
	case errors.Is(err, service.ErrCommentTooLong):
		respondError(w, http.StatusUnprocessableEntity, "Comment must be 50 characters or fewer")
		return
	case errors.Is(err, service.ErrSelfRating):
		respondError(w, http.StatusForbidden, "You cannot rate your own clip")
		return
	case errors.Is(err, repository.ErrClipNotFound):
		respondError(w, http.StatusNotFound, "Clip not found")
		return
	case err != nil:
		slog.Error("failed to rate clip", "error", err, "user_id", user.ID, "clip_id", clipID)
		respondError(w, http.StatusInternalServerError, "Failed to save rating")
		return
	}
	metrics.RatingsTotal.WithLabelValues("rate").Inc()

	respondJSON(w, http.StatusOK, ratingItem{
		ID:        rating.ID,
		AuthorID:  rating.AuthorID,
		Score:     rating.Score,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
	})
}

// Unrate deletes the caller's rating for a clip. Deleting a rating that
// does not exist still succeeds.
func (h *RatingHandler) Unrate(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	clipID := r.PathValue("id")

	err := h.ratings.Unrate(user.ID, clipID)
	if err != nil {
		slog.Error("failed to delete rating", "error", err, "user_id", user.ID, "clip_id", clipID)
		respondError(w, http.StatusInternalServerError, "Failed to delete rating")
		return
	}
	metrics.RatingsTotal.WithLabelValues("unrate").Inc()

	w.WriteHeader(http.StatusNoContent)
}

// List returns a clip's ratings, newest first, with aggregates.
func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	clipID := r.PathValue("id")

	ratings, err := h.ratings.RatingsFor(clipID)
	if err != nil {
		slog.Error("failed to load ratings", "error", err, "clip_id", clipID)
		respondError(w, http.StatusInternalServerError, "Failed to load ratings")
		return
	}

	// The store gives no ordering; sort by recency for display.
	sort.Slice(ratings, func(i, j int) bool {
		return ratings[i].CreatedAt.After(ratings[j].CreatedAt)
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"average":   model.AverageScore(ratings),
		"count":     len(ratings),
		"histogram": model.ScoreHistogram(ratings),
		"ratings":   ratingItems(ratings),
	})
}
