package service

import (
	"errors"
	"time"

	"github.com/soundjury/soundjury/internal/model"
	"github.com/soundjury/soundjury/internal/repository"
)

var (
	ErrQuotaExceeded = errors.New("daily submission quota exceeded")
)

// QuotaService tracks successful submissions per actor per calendar day
// against a fixed daily limit. The counter is database-backed and
// incremented atomically, so concurrent submissions from the same actor
// (two tabs, two devices) cannot both slip past the limit.
type QuotaService struct {
	quotaRepo repository.QuotaRepository
	limit     int
}

func NewQuotaService(quotaRepo repository.QuotaRepository, limit int) *QuotaService {
	return &QuotaService{
		quotaRepo: quotaRepo,
		limit:     limit,
	}
}

// Limit returns the daily submission cap.
func (s *QuotaService) Limit() int {
	return s.limit
}

// Remaining returns how many submissions the actor has left on the given
// day, clamped at 0. A day with no record means the full limit remains;
// the quota resets implicitly when the date changes.
func (s *QuotaService) Remaining(actorID string, day time.Time) (int, error) {
	used, err := s.quotaRepo.Used(actorID, model.QuotaDate(day))
	if err != nil {
		return 0, err
	}

	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordSuccess counts one successful submission. Callers invoke it exactly
// once per committed submission; there is no decrement, quota is never
// restored within a day. Returns ErrQuotaExceeded if the counter was
// already at the limit.
func (s *QuotaService) RecordSuccess(actorID string, day time.Time) error {
	ok, err := s.quotaRepo.Increment(actorID, model.QuotaDate(day), s.limit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}
