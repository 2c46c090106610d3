package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// QuotaRepository tracks per-actor per-day submission counts. The counter
// lives in the database rather than client state so that concurrent
// submissions for the same actor cannot race past the daily limit.
type QuotaRepository interface {
	// Used returns the attempts recorded for the actor on the given day.
	// A missing row means zero.
	Used(actorID, date string) (int, error)
	// Increment atomically adds one attempt, but only while the counter is
	// below limit. It reports whether the increment was applied.
	Increment(actorID, date string, limit int) (bool, error)
}

type quotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

func (r *quotaRepository) Used(actorID, date string) (int, error) {
	var used int
	query := `SELECT used_attempts FROM quotas WHERE actor_id = $1 AND date = $2`

	err := r.db.Get(&used, query, actorID, date)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return used, nil
}

func (r *quotaRepository) Increment(actorID, date string, limit int) (bool, error) {
	// Conditional upsert: the WHERE clause on the conflict branch makes the
	// increment a no-op once the limit is reached, so two concurrent
	// submissions cannot both pass. Works on SQLite and PostgreSQL.
	query := `INSERT INTO quotas (actor_id, date, used_attempts)
	          VALUES ($1, $2, 1)
	          ON CONFLICT (actor_id, date) DO UPDATE
	          SET used_attempts = quotas.used_attempts + 1
	          WHERE quotas.used_attempts < $3`

	result, err := r.db.Exec(query, actorID, date, limit)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
