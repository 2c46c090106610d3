package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
)

var (
	ErrInvalidScore   = errors.New("score must be between 1 and 10")
	ErrCommentTooLong = errors.New("comment must be 50 characters or fewer")
	ErrSelfRating     = errors.New("cannot rate your own clip")
)

// RatingService enforces at-most-one rating per (actor, clip) pair.
// Re-rating replaces the score and comment in place; the rating keeps its
// identity and original timestamp.
type RatingService struct {
	ratingRepo repository.RatingRepository
	clipRepo   repository.ClipRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, clipRepo repository.ClipRepository) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		clipRepo:   clipRepo,
	}
}

// Rate creates or updates the actor's rating for a clip and returns the
// resulting rating. Rating your own clip is rejected.
func (s *RatingService) Rate(actorID, clipID string, score int, comment string) (*model.Rating, error) {
	if score < model.MinScore || score > model.MaxScore {
		return nil, ErrInvalidScore
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > model.MaxCommentLen {
		return nil, ErrCommentTooLong
	}

	clip, err := s.clipRepo.ByID(clipID)
	if err != nil {
		return nil, err
	}
	if clip.AuthorID == actorID {
		return nil, ErrSelfRating
	}

	existing, err := s.ratingRepo.ByAuthorAndClip(actorID, clipID)
	if err != nil && err != repository.ErrRatingNotFound {
		return nil, err
	}

	if existing != nil {
		err = s.ratingRepo.UpdateScore(existing.ID, score, comment)
		if err != nil {
			return nil, err
		}
		existing.Score = score
		existing.Comment = comment
		return existing, nil
	}

	rating := &model.Rating{
		ID:        uuid.New().String(),
		AuthorID:  actorID,
		ClipID:    clipID,
		Score:     score,
		Comment:   comment,
		CreatedAt: time.Now(),
	}

	err = s.ratingRepo.Create(rating)
	if err != nil {
		return nil, err
	}

	return rating, nil
}

// Unrate deletes the actor's rating for a clip. Deleting a rating that
// does not exist is not an error.
func (s *RatingService) Unrate(actorID, clipID string) error {
	existing, err := s.ratingRepo.ByAuthorAndClip(actorID, clipID)
	if err == repository.ErrRatingNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	return s.ratingRepo.Delete(existing.ID)
}

// RatingsFor returns all ratings attached to a clip. The store gives no
// ordering guarantee; the presentation layer sorts by recency.
func (s *RatingService) RatingsFor(clipID string) ([]model.Rating, error) {
	return s.ratingRepo.ByClip(clipID)
}
