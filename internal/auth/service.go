package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabrielasoto/aurelia-backend/internal/session"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
)

type authenticator interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, input RegisterInput) (*session.User, error)
}

type sessionWriter interface {
	Login(ctx context.Context, sessionID string, user session.User, token string) error
	Logout(ctx context.Context, sessionID string) error
	UpdateUser(ctx context.Context, sessionID string, user session.User) error
}

type cartDropper interface {
	Drop(sessionID string)
}

type discountClearer interface {
	Clear(sessionID string)
}

// LoginResult is what a successful gateway login hands back to the client.
type LoginResult struct {
	SessionID string       `json:"sessionId"`
	User      session.User `json:"user"`
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Upstream  authenticator
	Sessions  sessionWriter
	Carts     cartDropper
	Discounts discountClearer
}

// Service runs the gateway side of authentication: it exchanges
// credentials upstream, then owns the session lifecycle locally.
type Service struct {
	upstream  authenticator
	sessions  sessionWriter
	carts     cartDropper
	discounts discountClearer
}

// NewService validates params and builds the auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Upstream == nil {
		return nil, fmt.Errorf("upstream auth client is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart registry is required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount service is required")
	}
	return &Service{
		upstream:  params.Upstream,
		sessions:  params.Sessions,
		carts:     params.Carts,
		discounts: params.Discounts,
	}, nil
}

// Login authenticates upstream and mints a fresh gateway session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	creds, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID := session.NewSessionID()
	if err := s.sessions.Login(ctx, sessionID, creds.User, creds.Token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist session")
	}
	return &LoginResult{SessionID: sessionID, User: creds.User}, nil
}

// Register creates the account upstream. It does not log the user in;
// clients call Login afterwards.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*session.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and password are required")
	}
	return s.upstream.Register(ctx, input)
}

// Logout tears down everything tied to the session: the persisted
// session, the in-memory cart and any applied discount.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Logout(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear session")
	}
	s.carts.Drop(sessionID)
	s.discounts.Clear(sessionID)
	return nil
}

// UpdateProfile re-persists the user half of an existing session.
func (s *Service) UpdateProfile(ctx context.Context, sessionID string, user session.User) error {
	if err := s.sessions.UpdateUser(ctx, sessionID, user); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update session user")
	}
	return nil
}
