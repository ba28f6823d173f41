// Package auth keeps the signed-in session on this device in step with the
// server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shhac/mipo/internal/api"
	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/storage"
)

// API is the subset of the server client the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, displayName string) (*api.AuthResponse, error)
	Me(ctx context.Context, token string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (*api.MessageResponse, error)
	DeleteAccount(ctx context.Context, token, password string) (*api.MessageResponse, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
}

// Service stores the bearer token and last known user.
type Service struct {
	api    API
	repo   storage.Repository
	logger *slog.Logger
}

// NewService returns a session service backed by repo.
func NewService(client API, repo storage.Repository, logger *slog.Logger) *Service {
	return &Service{api: client, repo: repo, logger: logger}
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Service) Token() string {
	creds, err := s.repo.Credentials()
	if err != nil {
		s.logger.Warn("failed to read credentials", slog.Any("error", err))
		return ""
	}
	return creds.Token
}

// CachedUser returns the last user seen by the server without a request.
func (s *Service) CachedUser() *domain.User {
	creds, err := s.repo.Credentials()
	if err != nil || !creds.SignedIn() {
		return nil
	}
	return creds.User
}

// CurrentUser refreshes the signed-in user from the server. It returns
// nil, nil when signed out. A token the server rejects is erased; other
// failures leave the session in place and are returned.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionExpired) {
			s.logger.Info("stored session rejected, signing out")
			if clearErr := s.repo.ClearCredentials(); clearErr != nil {
				return nil, errors.Join(err, clearErr)
			}
		}
		return nil, err
	}

	if err := s.save(token, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.save(resp.Token, &resp.User); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", slog.Int("user_id", resp.User.ID))
	return &resp.User, nil
}

// Register creates an account and stores the session.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	resp, err := s.api.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	if err := s.save(resp.Token, &resp.User); err != nil {
		return nil, err
	}
	s.logger.Info("registered", slog.Int("user_id", resp.User.ID))
	return &resp.User, nil
}

// Logout erases the stored session.
func (s *Service) Logout() error {
	if err := s.repo.ClearCredentials(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// ForgotPassword asks the server to send a reset link to email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*api.MessageResponse, error) {
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password with the token from the reset link.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) (*api.MessageResponse, error) {
	return s.api.ResetPassword(ctx, resetToken, newPassword)
}

// DeleteAccount deletes the signed-in account and erases the session.
func (s *Service) DeleteAccount(ctx context.Context, password string) error {
	token := s.Token()
	if token == "" {
		return apperrors.ErrNotSignedIn
	}
	if _, err := s.api.DeleteAccount(ctx, token, password); err != nil {
		return err
	}
	s.logger.Info("account deleted")
	return s.Logout()
}

// UpdateProfile changes profile fields and stores the returned user.
func (s *Service) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	token := s.Token()
	if token == "" {
		return nil, apperrors.ErrNotSignedIn
	}
	user, err := s.api.UpdateProfile(ctx, token, update)
	if err != nil {
		return nil, err
	}
	if err := s.save(token, user); err != nil {
		return nil, err
	}
	return user, nil
}

// save stores the session and carries a server-granted paid plan into the
// local flag.
func (s *Service) save(token string, user *domain.User) error {
	if err := s.repo.SaveCredentials(storage.Credentials{Token: token, User: user}); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if user != nil && user.HasPaidAccess {
		if _, err := s.repo.UpdatePreferences(func(p *storage.Preferences) { p.HasPaidPlan = true }); err != nil {
			return fmt.Errorf("store paid plan: %w", err)
		}
	}
	return nil
}
