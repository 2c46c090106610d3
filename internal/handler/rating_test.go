package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soundjury/soundjury/internal/ctxkeys"
	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/service"
)

type stubClipRepo struct {
	clips map[string]*model.Clip
}

func (s *stubClipRepo) Create(clip *model.Clip) error { return nil }
func (s *stubClipRepo) ByID(id string) (*model.Clip, error) {
	clip, ok := s.clips[id]
	if !ok {
		return nil, repository.ErrClipNotFound
	}
	return clip, nil
}
func (s *stubClipRepo) ByAuthor(authorID string) ([]*model.Clip, error) { return nil, nil }
func (s *stubClipRepo) AllWithAuthors() ([]*model.FeedClip, error)      { return nil, nil }
func (s *stubClipRepo) All() ([]*model.Clip, error)                     { return nil, nil }
func (s *stubClipRepo) Delete(id string) error                          { return nil }

type stubRatingRepo struct {
	ratings map[string]*model.Rating
}

func (s *stubRatingRepo) Create(rating *model.Rating) error {
	r := *rating
	s.ratings[rating.ID] = &r
	return nil
}
func (s *stubRatingRepo) UpdateScore(id string, score int, comment string) error {
	r, ok := s.ratings[id]
	if !ok {
		return repository.ErrRatingNotFound
	}
	r.Score = score
	r.Comment = comment
	return nil
}
func (s *stubRatingRepo) ByID(id string) (*model.Rating, error) {
	r, ok := s.ratings[id]
	if !ok {
		return nil, repository.ErrRatingNotFound
	}
	return r, nil
}
func (s *stubRatingRepo) ByAuthorAndClip(authorID, clipID string) (*model.Rating, error) {
	for _, r := range s.ratings {
		if r.AuthorID == authorID && r.ClipID == clipID {
			return r, nil
		}
	}
	return nil, repository.ErrRatingNotFound
}
func (s *stubRatingRepo) ByClip(clipID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range s.ratings {
		if r.ClipID == clipID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (s *stubRatingRepo) All() ([]model.Rating, error) { return nil, nil }
func (s *stubRatingRepo) Delete(id string) error {
	delete(s.ratings, id)
	return nil
}
func (s *stubRatingRepo) DeleteByClip(clipID string) error { return nil }

func newRatingHandler() (*RatingHandler, *stubRatingRepo) {
	clips := &stubClipRepo{clips: map[string]*model.Clip{
		"c1": {ID: "c1", AuthorID: "alice", CreatedAt: time.Now()},
	}}
	ratings := &stubRatingRepo{ratings: make(map[string]*model.Rating)}
	return NewRatingHandler(service.NewRatingService(ratings, clips)), ratings
}

func rateRequest(userID, clipID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/clips/"+clipID+"/rating", strings.NewReader(body))
	req.SetPathValue("id", clipID)
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: userID}))
	return req
}

func TestRateEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		clipID     string
		body       string
		wantStatus int
	}{
		{"valid rating", "bob", "c1", `{"score":8,"comment":"nice"}`, http.StatusOK},
		{"score too low", "bob", "c1", `{"score":0}`, http.StatusUnprocessableEntity},
		{"score too high", "bob", "c1", `{"score":11}`, http.StatusUnprocessableEntity},
		{"comment too long", "bob", "c1", `{"score":5,"comment":"` + strings.Repeat("x", 51) + `"}`, http.StatusUnprocessableEntity},
		{"own clip", "alice", "c1", `{"score":8}`, http.StatusForbidden},
		{"unknown clip", "bob", "missing", `{"score":8}`, http.StatusNotFound},
		{"malformed body", "bob", "c1", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newRatingHandler()
			rec := httptest.NewRecorder()

			h.Rate(rec, rateRequest(tt.userID, tt.clipID, tt.body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRateEndpointReturnsRating(t *testing.T) {
	h, _ := newRatingHandler()
	rec := httptest.NewRecorder()

	h.Rate(rec, rateRequest("bob", "c1", `{"score":9,"comment":"bravo"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got struct {
		ID      string `json:"id"`
		Score   int    `json:"score"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" || got.Score != 9 || got.Comment != "bravo" {
		t.Errorf("response = %+v, want score 9 comment bravo with an id", got)
	}
}

func TestUnrateEndpointIdempotent(t *testing.T) {
	h, ratings := newRatingHandler()

	rec := httptest.NewRecorder()
	h.Rate(rec, rateRequest("bob", "c1", `{"score":6}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("Rate status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/clips/c1/rating", nil)
	req.SetPathValue("id", "c1")
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "bob"}))

	rec = httptest.NewRecorder()
	h.Unrate(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Unrate status = %d, want 204", rec.Code)
	}
	if len(ratings.ratings) != 0 {
		t.Errorf("ratings remaining = %d, want 0", len(ratings.ratings))
	}

	// A second delete still succeeds.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/clips/c1/rating", nil)
	req.SetPathValue("id", "c1")
	req = req.WithContext(ctxkeys.WithUser(req.Context(), &model.User{ID: "bob"}))
	h.Unrate(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("repeat Unrate status = %d, want 204", rec.Code)
	}
}

func TestListEndpointAggregates(t *testing.T) {
	h, ratings := newRatingHandler()
	now := time.Now()
	_ = ratings.Create(&model.Rating{ID: "r1", AuthorID: "bob", ClipID: "c1", Score: 7, CreatedAt: now.Add(-time.Minute)})
	_ = ratings.Create(&model.Rating{ID: "r2", AuthorID: "carol", ClipID: "c1", Score: 9, CreatedAt: now})
	_ = ratings.Create(&model.Rating{ID: "r3", AuthorID: "dave", ClipID: "c1", Score: 10, CreatedAt: now.Add(-time.Hour)})

	req := httptest.NewRequest(http.MethodGet, "/clips/c1/ratings", nil)
	req.SetPathValue("id", "c1")
	rec := httptest.NewRecorder()

	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got struct {
		Average float64 `json:"average"`
		Count   int     `json:"count"`
		Ratings []struct {
			ID string `json:"id"`
		} `json:"ratings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Average != 8.7 {
		t.Errorf("average = %v, want 8.7", got.Average)
	}
	if got.Count != 3 {
		t.Errorf("count = %d, want 3", got.Count)
	}
	if len(got.Ratings) != 3 || got.Ratings[0].ID != "r2" {
		t.Errorf("ratings not sorted newest first: %+v", got.Ratings)
	}
}
