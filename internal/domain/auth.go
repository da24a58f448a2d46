package domain

import "context"

// Principal is an authenticated admin caller.
type Principal struct {
	UID   string
	Email string
}

// TokenVerifier validates bearer tokens presented to write endpoints.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}
