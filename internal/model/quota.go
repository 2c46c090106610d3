package model

import "time"

// QuotaDateLayout is the calendar-day key format for quota records.
// Quota is tracked per actor per calendar day; a missing record means
// zero attempts used.
const QuotaDateLayout = "2006-01-02"

// QuotaRecord counts an actor's successful submissions on one calendar day.
type QuotaRecord struct {
	ActorID      string `db:"actor_id"`
	Date         string `db:"date"`
	UsedAttempts int    `db:"used_attempts"`
}

// QuotaDate formats t as a quota record's calendar-day key.
func QuotaDate(t time.Time) string {
	return t.Format(QuotaDateLayout)
}
