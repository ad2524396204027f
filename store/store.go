package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/switchboard/internal/profile"
)

// Store provides database access to users and persisted chat history.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// UpsertUser stores or replaces the password hash of username.
func (s *Store) UpsertUser(ctx context.Context, username, passwordHash string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	_, err := s.driver.UpsertUser(ctx, &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedTs:    time.Now().Unix(),
	})
	return err
}

// GetUser returns the user or nil when none exists.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	return s.driver.GetUser(ctx, &FindUser{Username: &username})
}

// GetPasswordHash returns the stored hash and whether the user exists.
func (s *Store) GetPasswordHash(ctx context.Context, username string) (string, bool, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return "", false, err
	}
	if user == nil {
		return "", false, nil
	}
	return user.PasswordHash, true, nil
}

// AppendMessage persists one history entry for username.
func (s *Store) AppendMessage(ctx context.Context, username, role, content string) error {
	_, err := s.driver.CreateMessage(ctx, &Message{
		Username:  username,
		Role:      role,
		Content:   content,
		CreatedTs: time.Now().Unix(),
	})
	return err
}

// LoadHistory returns every message of username in insertion order.
func (s *Store) LoadHistory(ctx context.Context, username string) ([]*Message, error) {
	return s.driver.ListMessages(ctx, &FindMessage{Username: &username})
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}
