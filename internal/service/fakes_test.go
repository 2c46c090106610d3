package service

import (
	"fmt"
	"io"
	"sort"

	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
)

// In-memory fakes for the repository and storage interfaces, shared by the
// service tests in this package.

type fakeQuotaRepo struct {
	used    map[string]int
	usedErr error
	incErr  error
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{used: make(map[string]int)}
}

func quotaKey(actorID, date string) string {
	return fmt.Sprintf("%s|%s", actorID, date)
}

func (f *fakeQuotaRepo) Used(actorID, date string) (int, error) {
	if f.usedErr != nil {
		return 0, f.usedErr
	}
	return f.used[quotaKey(actorID, date)], nil
}

func (f *fakeQuotaRepo) Increment(actorID, date string, limit int) (bool, error) {
	if f.incErr != nil {
		return false, f.incErr
	}
	key := quotaKey(actorID, date)
	if f.used[key] >= limit {
		return false, nil
	}
	f.used[key]++
	return true, nil
}

type fakeClipRepo struct {
	clips     map[string]*model.Clip
	createErr error
	allErr    error
	joined    []*model.FeedClip
	joinErr   error
	deleted   []string
}

func newFakeClipRepo() *fakeClipRepo {
	return &fakeClipRepo{clips: make(map[string]*model.Clip)}
}

func (f *fakeClipRepo) Create(clip *model.Clip) error {
	if f.createErr != nil {
		return f.createErr
	}
	c := *clip
	f.clips[clip.ID] = &c
	return nil
}

func (f *fakeClipRepo) ByID(id string) (*model.Clip, error) {
	clip, ok := f.clips[id]
	if !ok {
		return nil, repository.ErrClipNotFound
	}
	return clip, nil
}

func (f *fakeClipRepo) ByAuthor(authorID string) ([]*model.Clip, error) {
	var out []*model.Clip
	for _, c := range f.clips {
		if c.AuthorID == authorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClipRepo) AllWithAuthors() ([]*model.FeedClip, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.joined, nil
}

func (f *fakeClipRepo) All() ([]*model.Clip, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var out []*model.Clip
	for _, c := range f.clips {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeClipRepo) Delete(id string) error {
	delete(f.clips, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRatingRepo struct {
	ratings map[string]*model.Rating
	allErr  error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*model.Rating)}
}

func (f *fakeRatingRepo) Create(rating *model.Rating) error {
	r := *rating
	f.ratings[rating.ID] = &r
	return nil
}

func (f *fakeRatingRepo) UpdateScore(id string, score int, comment string) error {
	r, ok := f.ratings[id]
	if !ok {
		return repository.ErrRatingNotFound
	}
	r.Score = score
	r.Comment = comment
	return nil
}

func (f *fakeRatingRepo) ByID(id string) (*model.Rating, error) {
	r, ok := f.ratings[id]
	if !ok {
		return nil, repository.ErrRatingNotFound
	}
	return r, nil
}

func (f *fakeRatingRepo) ByAuthorAndClip(authorID, clipID string) (*model.Rating, error) {
	for _, r := range f.ratings {
		if r.AuthorID == authorID && r.ClipID == clipID {
			return r, nil
		}
	}
	return nil, repository.ErrRatingNotFound
}

func (f *fakeRatingRepo) ByClip(clipID string) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range f.ratings {
		if r.ClipID == clipID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) All() ([]model.Rating, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var out []model.Rating
	for _, r := range f.ratings {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRatingRepo) Delete(id string) error {
	delete(f.ratings, id)
	return nil
}

func (f *fakeRatingRepo) DeleteByClip(clipID string) error {
	for id, r := range f.ratings {
		if r.ClipID == clipID {
			delete(f.ratings, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ByID(id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) ByUserID(userID string) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Create(profile *model.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

type fakeStorage struct {
	saved     map[string][]byte
	saveErr   error
	deleted   []string
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (f *fakeStorage) Save(path string, blob io.Reader, contentType string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := io.ReadAll(blob)
	if err != nil {
		return err
	}
	f.saved[path] = data
	return nil
}

func (f *fakeStorage) Delete(paths ...string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, p := range paths {
		delete(f.saved, p)
		f.deleted = append(f.deleted, p)
	}
	return nil
}

func (f *fakeStorage) URL(path string) string {
	return "https://blobs.test/" + path
}
