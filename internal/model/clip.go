package model

import "time"

// Clip is a submitted recording's metadata record. The audio payload itself
// lives in blob storage under BlobPath.
type Clip struct {
	ID        string    `db:"id"`
	AuthorID  string    `db:"author_id"`
	BlobPath  string    `db:"blob_path"`
	MimeType  string    `db:"mime_type"`
	SizeBytes int64     `db:"size_bytes"`
	CreatedAt time.Time `db:"created_at"`
}

// FeedClip is a clip joined with its author's public profile for display.
// When the author lookup is unavailable the feed substitutes AnonymousName
// and an empty country rather than dropping the clip.
type FeedClip struct {
	Clip
	AuthorName    string `db:"author_name"`
	AuthorCountry string `db:"author_country"`
}

// AnonymousName is the sentinel author name used when a clip's author
// profile cannot be resolved.
const AnonymousName = "Anonymous"
