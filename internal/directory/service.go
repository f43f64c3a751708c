// Package directory maps identity-provider accounts to internal users.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

var ErrMissingExternalID = errors.New("identity has no external id")

type Service struct {
	users *store.UserStore
	now   func() time.Time
}

func NewService(users *store.UserStore) *Service {
	return &Service{users: users, now: time.Now}
}

// CreateIfAbsent returns the user for ident, creating it on first sight.
// Profile fields of an existing user are left as first recorded.
func (s *Service) CreateIfAbsent(ctx context.Context, ident model.Identity) (*model.User, error) {
	if strings.TrimSpace(ident.ExternalID) == "" {
		return nil, ErrMissingExternalID
	}
	existing, err := s.users.GetByExternalID(ctx, ident.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.users.CreateIfAbsent(ctx, ident, s.now())
}

// Lookup returns the user for externalID, or nil if none exists.
func (s *Service) Lookup(ctx context.Context, externalID string) (*model.User, error) {
	return s.users.GetByExternalID(ctx, externalID)
}
