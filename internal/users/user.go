package users

import "time"

// User is a registered account, as kept in the credential store.
// The password hash never leaves this package in API responses -
// use Session for the signed-in identity snapshot.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Weight       float64   `json:"weight"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the identity snapshot of the currently signed-in user.
type Session struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Weight float64 `json:"weight"`
}

func (u User) Session() Session {
	return Session{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Weight: u.Weight,
	}
}
