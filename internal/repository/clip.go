package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/soundjury/soundjury/internal/model"
)

var (
	ErrClipNotFound = errors.New("clip not found")
)

type ClipRepository interface {
	Create(clip *model.Clip) error
	ByID(id string) (*model.Clip, error)
	ByAuthor(authorID string) ([]*model.Clip, error)
	// AllWithAuthors is the efficient feed query: clips joined with their
	// authors' profiles, newest first.
	AllWithAuthors() ([]*model.FeedClip, error)
	// All is the degraded feed tier: clips alone, newest first. Author
	// profiles are resolved one by one by the caller.
	All() ([]*model.Clip, error)
	Delete(id string) error
}

type clipRepository struct {
	db *sqlx.DB
}

func NewClipRepository(db *sqlx.DB) ClipRepository {
	return &clipRepository{db: db}
}

func (r *clipRepository) Create(clip *model.Clip) error {
	query := `INSERT INTO clips (id, author_id, blob_path, mime_type, size_bytes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		clip.ID,
		clip.AuthorID,
		clip.BlobPath,
		clip.MimeType,
		clip.SizeBytes,
		clip.CreatedAt,
	)

	return err
}

func (r *clipRepository) ByID(id string) (*model.Clip, error) {
	clip := &model.Clip{}
	query := `SELECT * FROM clips WHERE id = $1`

	err := r.db.Get(clip, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrClipNotFound
	}

	return clip, err
}

func (r *clipRepository) ByAuthor(authorID string) ([]*model.Clip, error) {
	var clips []*model.Clip
	query := `SELECT * FROM clips WHERE author_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&clips, query, authorID)
	if err != nil {
		return nil, err
	}

	return clips, nil
}

func (r *clipRepository) AllWithAuthors() ([]*model.FeedClip, error) {
	var clips []*model.FeedClip
	query := `SELECT c.*, p.name AS author_name, p.country AS author_country
	          FROM clips c
	          INNER JOIN profiles p ON p.user_id = c.author_id
	          ORDER BY c.created_at DESC`

	err := r.db.Select(&clips, query)
	if err != nil {
		return nil, err
	}

	return clips, nil
}

func (r *clipRepository) All() ([]*model.Clip, error) {
	var clips []*model.Clip
	query := `SELECT * FROM clips ORDER BY created_at DESC`

	err := r.db.Select(&clips, query)
	if err != nil {
		return nil, err
	}

	return clips, nil
}

func (r *clipRepository) Delete(id string) error {
	query := `DELETE FROM clips WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}
