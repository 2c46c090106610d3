package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/soundjury/soundjury/internal/model"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
)

type RatingRepository interface {
	Create(rating *model.Rating) error
	// UpdateScore replaces score and comment in place. ID and created_at
	// are preserved, which makes re-rating an upsert rather than a
	// duplicate insert.
	UpdateScore(id string, score int, comment string) error
	ByID(id string) (*model.Rating, error)
	ByAuthorAndClip(authorID, clipID string) (*model.Rating, error)
	ByClip(clipID string) ([]model.Rating, error)
	All() ([]model.Rating, error)
	Delete(id string) error
	DeleteByClip(clipID string) error
}

type ratingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	query := `INSERT INTO ratings (id, author_id, clip_id, score, comment, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		rating.ID,
		rating.AuthorID,
		rating.ClipID,
		rating.Score,
		rating.Comment,
		rating.CreatedAt,
	)

	return err
}

func (r *ratingRepository) UpdateScore(id string, score int, comment string) error {
	result, err := r.db.Exec(`UPDATE ratings SET score = $1, comment = $2 WHERE id = $3`, score, comment, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRatingNotFound
	}

	return nil
}

func (r *ratingRepository) ByID(id string) (*model.Rating, error) {
	rating := &model.Rating{}
	err := r.db.Get(rating, `SELECT * FROM ratings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrRatingNotFound
	}

	return rating, err
}

func (r *ratingRepository) ByAuthorAndClip(authorID, clipID string) (*model.Rating, error) {
	rating := &model.Rating{}
	query := `SELECT * FROM ratings WHERE author_id = $1 AND clip_id = $2`

	err := r.db.Get(rating, query, authorID, clipID)
	if err == sql.ErrNoRows {
		return nil, ErrRatingNotFound
	}

	return rating, err
}

func (r *ratingRepository) ByClip(clipID string) ([]model.Rating, error) {
	var ratings []model.Rating
	query := `SELECT * FROM ratings WHERE clip_id = $1`

	err := r.db.Select(&ratings, query, clipID)
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *ratingRepository) All() ([]model.Rating, error) {
	var ratings []model.Rating
	query := `SELECT * FROM ratings ORDER BY created_at DESC`

	err := r.db.Select(&ratings, query)
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

func (r *ratingRepository) Delete(id string) error {
	query := `DELETE FROM ratings WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}

func (r *ratingRepository) DeleteByClip(clipID string) error {
	query := `DELETE FROM ratings WHERE clip_id = $1`
	_, err := r.db.Exec(query, clipID)
	return err
}
