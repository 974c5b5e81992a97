package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClient wraps the hosted service's auth endpoints (GoTrue-style):
// email/password sign-in and sign-up, token refresh, and sign-out.
type AuthClient struct {
	client *Client
}

// NewAuthClient creates an auth client sharing the service HTTP client.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

// SignIn exchanges email/password credentials for a session.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}

	var session Session
	err := a.client.Post(ctx, "/auth/v1/token", query, "",
		passwordGrant{Email: email, Password: password}, &session)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	return &session, nil
}

// SignUp registers a new account. Depending on server settings the
// returned session may lack tokens until the email is confirmed.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := a.client.Post(ctx, "/auth/v1/signup", nil, "",
		passwordGrant{Email: email, Password: password}, &session)
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	return &session, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}

	var session Session
	err := a.client.Post(ctx, "/auth/v1/token", query, "",
		refreshGrant{RefreshToken: refreshToken}, &session)
	if err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}

	return &session, nil
}

// RequestPasswordReset asks the auth service to email a password reset
// link. The service replies identically whether or not the address has an
// account, so success only means the request was accepted.
func (a *AuthClient) RequestPasswordReset(ctx context.Context, email string) error {
	err := a.client.Post(ctx, "/auth/v1/recover", nil, "",
		recoverRequest{Email: email}, nil)
	if err != nil {
		return fmt.Errorf("requesting password reset: %w", err)
	}
	return nil
}

// SignOut revokes the current session server-side. Local token cleanup is
// the caller's responsibility.
func (a *AuthClient) SignOut(ctx context.Context) error {
	if err := a.client.Post(ctx, "/auth/v1/logout", nil, "", nil, nil); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}

// PrincipalFromToken extracts the account id (subject claim) from a stored
// access token without a network round-trip. The token signature is
// enforced server-side on every request; locally we only need the subject
// and expiry. Returns ErrUnauthenticated for missing or expired tokens.
func PrincipalFromToken(raw string) (string, error) {
	if raw == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("%w: parsing access token: %v", ErrUnauthenticated, err)
	}

	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return "", fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: access token has no subject", ErrUnauthenticated)
	}

	return claims.Subject, nil
}
