package models

import "time"

// Session is the authenticated context of one signed-in user. It is created
// on sign-in, passed explicitly to every permission check and record call,
// and discarded on sign-out.
type Session struct {
	ID        string    `json:"id"`
	UserID    ID        `json:"user_id"`
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Profile   User      `json:"user"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
