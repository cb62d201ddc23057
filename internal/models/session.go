package models

import "time"

// Session is an operator session. Deleting the session invalidates the
// access token that references it, even before the token expires.
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
