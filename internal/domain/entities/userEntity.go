package entities

import "time"

// User is an account backed by a Google identity. The ID is the Google
// subject and never changes.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
