package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/gabrielasoto/aurelia-backend/pkg/config"
	redisclient "github.com/gabrielasoto/aurelia-backend/pkg/redis"
)

const (
	tokenField = "token"
	userField  = "user"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrNoSession signals that no persisted session exists for the ID.
	ErrNoSession = errors.New("no session")
	// ErrSessionExpired signals a rehydrated token past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// User is the identity record returned by the auth service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may reach admin routes.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the client-held identity: opaque upstream token plus the
// user record, keyed by the gateway session ID.
type Session struct {
	ID    string
	Token string
	User  User
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID, field string) string
}

// Store persists sessions to Redis under one canonical key per field:
// the token and a single user record, nothing duplicated.
type Store struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewStore constructs a session store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.SessionConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Store{store: client, keyer: client, ttl: ttl}, nil
}

// NewSessionID produces the opaque gateway session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Login replaces the session, persisting both token and user.
func (s *Store) Login(ctx context.Context, sessionID string, user User, token string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, s.keyer.SessionKey(sessionID, tokenField), token, s.ttl); err != nil {
		return err
	}
	return s.store.Set(ctx, s.keyer.SessionKey(sessionID, userField), string(encoded), s.ttl)
}

// Logout removes every persisted key for the session.
func (s *Store) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return s.store.Del(ctx,
		s.keyer.SessionKey(sessionID, tokenField),
		s.keyer.SessionKey(sessionID, userField),
	)
}

// UpdateUser replaces the persisted user record only; the token is
// untouched. The session must already exist.
func (s *Store) UpdateUser(ctx context.Context, sessionID string, user User) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if _, err := s.store.Get(ctx, s.keyer.SessionKey(sessionID, tokenField)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return ErrNoSession
		}
		return err
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.store.Set(ctx, s.keyer.SessionKey(sessionID, userField), string(encoded), s.ttl)
}

// Rehydrate loads the session from Redis. A session counts as logged in
// only when both token and user are present. Tokens that parse as JWTs
// additionally have their expiry checked; expired sessions are purged
// rather than trusted indefinitely.
func (s *Store) Rehydrate(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}

	token, err := s.store.Get(ctx, s.keyer.SessionKey(sessionID, tokenField))
	if err != nil {
		return nil, wrapMiss(err)
	}
	rawUser, err := s.store.Get(ctx, s.keyer.SessionKey(sessionID, userField))
	if err != nil {
		return nil, wrapMiss(err)
	}

	if tokenExpired(token, time.Now()) {
		s.Logout(ctx, sessionID) //nolint:errcheck
		return nil, ErrSessionExpired
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	return &Session{ID: sessionID, Token: token, User: user}, nil
}

// tokenExpired inspects the exp claim of a JWT-shaped token. Opaque
// tokens cannot be inspected locally and are accepted as-is; the
// upstream services reject them on use.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

func wrapMiss(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrNoSession
	}
	return err
}
