package auth

import "context"

// Checker is what the auth middleware needs to validate a token.
// Satisfied by the redis backed LoginChecker and by the in-memory
// LoginTestChecker.
type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

var (
	_ Checker = (*LoginChecker)(nil)
	_ Checker = (*LoginTestChecker)(nil)
)
