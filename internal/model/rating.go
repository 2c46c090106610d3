package model

import (
	"math"
	"time"
)

const (
	MinScore      = 1
	MaxScore      = 10
	MaxCommentLen = 50
)

// Rating is one participant's score for one clip. At most one rating exists
// per (author, clip) pair; re-rating replaces score and comment in place.
type Rating struct {
	ID        string    `db:"id"`
	AuthorID  string    `db:"author_id"`
	ClipID    string    `db:"clip_id"`
	Score     int       `db:"score"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// AverageScore returns the mean score rounded to one decimal place.
// An empty set yields 0; callers must use the rating count, not the
// average alone, to tell "no ratings yet" apart from a zero average.
func AverageScore(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// ScoreHistogram returns score -> count for display. Only scores that
// actually occur are present.
func ScoreHistogram(ratings []Rating) map[int]int {
	hist := make(map[int]int)
	for _, r := range ratings {
		hist[r.Score]++
	}
	return hist
}
