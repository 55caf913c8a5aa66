package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/green-tasty/preorder-gateway/internal/storage"
)

// Store keeps the bearer token for the signed-in session in durable
// client-side storage. The token is opaque to this process except for its
// expiry claim; signature verification belongs to the backend.
type Store struct {
	storage storage.Storage
	now     func() time.Time
}

func New(s storage.Storage) *Store {
	return &Store{storage: s, now: time.Now}
}

func (s *Store) Token(ctx context.Context) (string, bool) {

	var token string

	found, err := s.storage.Get(ctx, storage.AuthTokenKey, &token)
	if err != nil {
		slog.Warn("Failed to read auth token from storage", slog.String("error", err.Error()))
		return "", false
	}

	if !found || token == "" {
		return "", false
	}

	return token, true
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.storage.Set(ctx, storage.AuthTokenKey, token)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Delete(ctx, storage.AuthTokenKey)
}

// LoggedIn reports whether a token is present and not past its exp claim.
// Tokens that do not parse as JWTs, or carry no exp, are treated as live and
// left for the backend to reject.
func (s *Store) LoggedIn(ctx context.Context) bool {

	token, ok := s.Token(ctx)
	if !ok {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		slog.Debug("Auth token is not a parseable JWT", slog.String("error", err.Error()))
		return true
	}

	expiresAt, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return true
	}

	return expiresAt.After(s.now())
}
