package model

// User represents a registered account.
// The password hash is never serialized into API responses.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
