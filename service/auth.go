package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/google/uuid"
)

const (
	tokenLifetime = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is taken")
)

var _ i.Authenticator = &Auth{}

// Auth registers players and issues their access tokens.
type Auth struct {
	userRepo  i.UserRepo
	tokenizer i.Tokenizer
	logger    i.Logger
}

// NewAuth creates an Auth service.
func NewAuth(userRepo i.UserRepo, tokenizer i.Tokenizer, logger i.Logger) *Auth {
	return &Auth{
		userRepo:  userRepo,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Register creates a player account.
func (a *Auth) Register(ctx context.Context, username, password string) error {
	if _, err := a.userRepo.ByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}

	user, err := dmn.NewUser(dmn.UserConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	})
	if err != nil {
		return err
	}

	if err := a.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	a.logger.Info(fmt.Sprintf("registered player %s", username))
	return nil
}

// SignIn verifies the credentials and returns the player with a fresh token.
func (a *Auth) SignIn(ctx context.Context, username, password string) (*dmn.User, string, error) {
	user, err := a.userRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]interface{}{
		"userID":   user.ID.String(),
		"username": user.Username,
	}, tokenLifetime)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	return user, token, nil
}
