package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabrielasoto/aurelia-backend/internal/session"
	pkgerrors "github.com/gabrielasoto/aurelia-backend/pkg/errors"
	"github.com/gabrielasoto/aurelia-backend/pkg/httpx"
)

const invalidCredentialsMessage = "invalid credentials"

// Credentials holds the upstream auth service's login response.
type Credentials struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Client talks to the external auth service. Passwords are only ever
// relayed; the gateway never stores or hashes them.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds the auth client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("auth base url is required")
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(0)
	}
	return &Client{httpClient: httpClient, baseURL: trimmed}, nil
}

// Login exchanges credentials for an upstream token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	payload := map[string]string{"email": email, "password": password}
	resp, err := httpx.PostJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, "/auth/login"), payload, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auth service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp, "login failed")
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode login response")
	}
	if strings.TrimSpace(creds.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth service returned no token")
	}
	return &creds, nil
}

// RegisterInput mirrors the upstream registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account upstream and returns the created user.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*session.User, error) {
	resp, err := httpx.PostJSON(ctx, c.httpClient, httpx.JoinURL(c.baseURL, "/auth/register"), input, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auth service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		msg := httpx.ErrorMessage(resp)
		if msg == "" {
			msg = "an account with this email already exists"
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, msg)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp, "registration failed")
	}

	var user session.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode register response")
	}
	return &user, nil
}

func upstreamError(resp *http.Response, fallback string) error {
	msg := httpx.ErrorMessage(resp)
	if msg == "" {
		msg = fallback
	}
	if resp.StatusCode >= 400 && resp.StatusCode <= 499 {
		return pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	return pkgerrors.New(pkgerrors.CodeDependency, msg)
}
