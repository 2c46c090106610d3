package model

import "time"

// User is the opaque actor owned by the identity collaborator. The core
// only ever reads its ID; everything else is presentation convenience.
type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}
