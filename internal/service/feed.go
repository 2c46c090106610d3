package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundjury/soundjury/internal/metrics"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/storage"
)

var (
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// FeedEntry is a clip prepared for display: author, playback URL and
// aggregated rating data. Count distinguishes "no ratings yet" from a
// genuinely zero average.
type FeedEntry struct {
	model.FeedClip
	URL         string
	Average     float64
	RatingCount int
	Histogram   map[int]int
	Ratings     []model.Rating
}

// FeedService loads all submitted clips with their author and rating data.
// It prefers a single joined query and degrades to per-clip author lookups
// when the join is unavailable: the feed renders slower rather than not at
// all.
type FeedService struct {
	clipRepo    repository.ClipRepository
	profileRepo repository.ProfileRepository
	ratingRepo  repository.RatingRepository
	storage     storage.Storage
}

func NewFeedService(clipRepo repository.ClipRepository, profileRepo repository.ProfileRepository, ratingRepo repository.RatingRepository, storage storage.Storage) *FeedService {
	return &FeedService{
		clipRepo:    clipRepo,
		profileRepo: profileRepo,
		ratingRepo:  ratingRepo,
		storage:     storage,
	}
}

// LoadAll returns every submitted clip, newest first, enriched with author
// name and country and aggregate scores. Only a failure to read the clips
// collection itself aborts; everything else degrades.
func (s *FeedService) LoadAll() ([]FeedEntry, error) {
	clips, err := s.clipRepo.AllWithAuthors()
	if err != nil {
		slog.Warn("joined feed query failed, falling back to per-clip author lookup", "error", err)
		metrics.FeedFallbackTotal.Inc()
		clips, err = s.loadDegraded()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
		}
	}

	ratingsByClip := s.loadRatings()

	entries := make([]FeedEntry, 0, len(clips))
	for _, clip := range clips {
		ratings := ratingsByClip[clip.ID]
		entries = append(entries, FeedEntry{
			FeedClip:    *clip,
			URL:         s.storage.URL(clip.BlobPath),
			Average:     model.AverageScore(ratings),
			RatingCount: len(ratings),
			Histogram:   model.ScoreHistogram(ratings),
			Ratings:     ratings,
		})
	}

	return entries, nil
}

// loadDegraded is the fallback tier: fetch clips alone, then resolve each
// author individually. A failed author lookup substitutes a sentinel
// rather than dropping the clip; this costs O(N) extra round trips by
// choice.
func (s *FeedService) loadDegraded() ([]*model.FeedClip, error) {
	clips, err := s.clipRepo.All()
	if err != nil {
		return nil, err
	}

	feedClips := make([]*model.FeedClip, 0, len(clips))
	for _, clip := range clips {
		fc := &model.FeedClip{Clip: *clip}

		profile, err := s.profileRepo.ByUserID(clip.AuthorID)
		if err != nil {
			slog.Warn("author lookup failed, using sentinel", "error", err, "author_id", clip.AuthorID)
			fc.AuthorName = model.AnonymousName
		} else {
			fc.AuthorName = profile.Name
			fc.AuthorCountry = profile.Country
		}

		feedClips = append(feedClips, fc)
	}

	return feedClips, nil
}

// loadRatings groups all ratings by clip. A failure here leaves the feed
// without aggregates instead of failing it.
func (s *FeedService) loadRatings() map[string][]model.Rating {
	ratings, err := s.ratingRepo.All()
	if err != nil {
		slog.Warn("failed to load ratings for feed", "error", err)
		return map[string][]model.Rating{}
	}

	byClip := make(map[string][]model.Rating)
	for _, r := range ratings {
		byClip[r.ClipID] = append(byClip[r.ClipID], r)
	}
	return byClip
}
