package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrMissingCredentials = errors.New("username and password are required")
)

// CredentialStore persists password hashes.
type CredentialStore interface {
	UpsertUser(ctx context.Context, username, passwordHash string) error
	GetPasswordHash(ctx context.Context, username string) (string, bool, error)
}

// Authenticator registers and verifies users. Only bcrypt hashes leave it.
type Authenticator struct {
	store CredentialStore
	cost  int
}

// NewAuthenticator creates an authenticator over store.
func NewAuthenticator(store CredentialStore) *Authenticator {
	return &Authenticator{store: store, cost: bcrypt.DefaultCost}
}

// Register stores a new user. An existing username is never overwritten.
func (a *Authenticator) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	_, exists, err := a.store.GetPasswordHash(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.store.UpsertUser(ctx, username, string(hash)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// Verify checks password against the stored hash of username.
func (a *Authenticator) Verify(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	hash, exists, err := a.store.GetPasswordHash(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
