package models

import "time"

type User struct {
	ID         ID        `json:"id" bson:"_id"`
	AuthID     ID        `json:"auth_id,omitempty" bson:"auth_id,omitempty"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email" bson:"email"`
	Role       string    `json:"role" bson:"role"`
	Department string    `json:"department" bson:"department"`
	Avatar     *string   `json:"avatar" bson:"avatar"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Credential is the authentication account behind a user profile.
type Credential struct {
	ID           ID        `json:"id" bson:"_id"`
	UserID       ID        `json:"user_id" bson:"user_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"password_hash" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
