package domain

import "context"

// User represents a registered account. Password holds the argon2id hash and
// is never serialized in API responses.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// Ref returns the display reference embedded in enriched messages.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}

// UserRef is the denormalized sender/receiver view joined onto messages.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRepository defines the contract for user storage. It lives in the
// domain because it's a requirement OF the domain, not of the database
// implementation.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
}
