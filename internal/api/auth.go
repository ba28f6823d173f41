package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
)

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// MessageResponse is returned by the password and account endpoints.
// ResetToken is only filled in by development servers.
type MessageResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// NormalizeEmail trims and lowercases an address before it is sent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// defaultDisplayName is the local part of email.
func defaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body: map[string]string{
			"email":    NormalizeEmail(email),
			"password": password,
		},
	}, &out, "Login failed", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. An empty display name defaults to the
// local part of the email.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*AuthResponse, error) {
	email = NormalizeEmail(email)
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultDisplayName(email)
	}

	var out AuthResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body: map[string]string{
			"email":       email,
			"password":    password,
			"displayName": name,
		},
	}, &out, "Registration failed", http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user that token belongs to. Any answer from the server
// other than the user fails with an error matching
// apperrors.ErrSessionExpired; transport failures do not.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.ErrSessionExpired
	}
	var out domain.User
	err := c.call(ctx, Request{Path: "/api/auth/me", Token: token}, &out, "Session expired", http.StatusOK)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Status != 0 {
			reqErr.Cause = errors.Join(apperrors.ErrSessionExpired, reqErr.Cause)
		}
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the server to send a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/forgot-password",
		Body:   map[string]string{"email": NormalizeEmail(email)},
	}, &out, "Request failed", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) (*MessageResponse, error) {
	var out MessageResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/reset-password",
		Body: map[string]string{
			"token":       resetToken,
			"newPassword": newPassword,
		},
	}, &out, "Reset failed", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the signed-in account after re-checking password.
func (c *Client) DeleteAccount(ctx context.Context, token, password string) (*MessageResponse, error) {
	var out MessageResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/delete-account",
		Body:   map[string]string{"password": password},
		Token:  token,
	}, &out, "Failed to delete account", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the fields set in update and returns the new profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	err := c.call(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/auth/profile",
		Body:   update,
		Token:  token,
	}, &out, "Update failed", http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
