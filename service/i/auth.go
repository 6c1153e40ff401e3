package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
)

// Authenticator registers players and signs them in.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	SignIn(ctx context.Context, username, password string) (*dmn.User, string, error)
}
