package main

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/i18n"
)

type loginCmd struct {
	Email    string `required:"" help:"Account email."`
	Password string `required:"" env:"MIPO_PASSWORD" help:"Account password."`
}

func (c *loginCmd) Run(rc *runContext) error {
	user, err := rc.app.Auth().Login(rc.ctx, c.Email, c.Password)
	if err != nil {
		return err
	}
	rc.out.Success("Signed in as %s", user.Email)
	return nil
}

type registerCmd struct {
	Email    string `required:"" help:"Account email."`
	Password string `required:"" env:"MIPO_PASSWORD" help:"Account password."`
	Name     string `help:"Display name. Defaults to the part of the email before @."`
}

func (c *registerCmd) Run(rc *runContext) error {
	user, err := rc.app.Auth().Register(rc.ctx, c.Email, c.Password, c.Name)
	if err != nil {
		return err
	}
	rc.out.Success("Welcome, %s", user.DisplayName)
	return nil
}

type logoutCmd struct{}

func (c *logoutCmd) Run(rc *runContext) error {
	if err := rc.app.Auth().Logout(); err != nil {
		return err
	}
	rc.out.Success("%s", i18n.T(rc.app.Locale(), i18n.KeyLogout))
	return nil
}

type whoamiCmd struct{}

func (c *whoamiCmd) Run(rc *runContext) error {
	auth := rc.app.Auth()
	user, err := auth.CurrentUser(rc.ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionExpired) {
			return err
		}
		// Offline: fall back to the last user the server confirmed.
		if user = auth.CachedUser(); user == nil {
			return err
		}
		rc.out.Warn("%s (showing saved profile)", apperrors.UserMessage(err))
	}
	if user == nil {
		rc.out.Println("%s", i18n.T(rc.app.Locale(), i18n.KeyNotSignedIn))
		return nil
	}
	printUser(rc, user)
	return nil
}

func printUser(rc *runContext, user *domain.User) {
	rc.out.Heading(user.DisplayName)
	rc.out.Println("Email:    %s", user.Email)
	if user.Language != "" {
		rc.out.Println("Language: %s", user.Language)
	}
	plan := user.PlanID
	if plan == "" {
		plan = string(domain.PlanFree)
	}
	rc.out.Println("Plan:     %s", plan)
	if user.SubscriptionExpiresAt != nil {
		if t, err := time.Parse(time.RFC3339, *user.SubscriptionExpiresAt); err == nil {
			rc.out.Println("Renews:   %s", humanize.Time(t))
		}
	}
}

type forgotPasswordCmd struct {
	Email string `arg:"" help:"Account email."`
}

func (c *forgotPasswordCmd) Run(rc *runContext) error {
	resp, err := rc.app.Auth().ForgotPassword(rc.ctx, c.Email)
	if err != nil {
		return err
	}
	rc.out.Success("%s", resp.Message)
	if resp.ResetToken != "" {
		rc.out.Println("Reset token: %s", resp.ResetToken)
	}
	return nil
}

type resetPasswordCmd struct {
	Token    string `required:"" help:"Reset token from the email."`
	Password string `required:"" env:"MIPO_NEW_PASSWORD" help:"New password."`
}

func (c *resetPasswordCmd) Run(rc *runContext) error {
	resp, err := rc.app.Auth().ResetPassword(rc.ctx, c.Token, c.Password)
	if err != nil {
		return err
	}
	rc.out.Success("%s", resp.Message)
	return nil
}

type deleteAccountCmd struct {
	Password string `required:"" env:"MIPO_PASSWORD" help:"Current password."`
	Yes      bool   `help:"Confirm the deletion."`
}

func (c *deleteAccountCmd) Run(rc *runContext) error {
	if !c.Yes {
		return apperrors.ValidationError{Field: "yes", Message: "Pass --yes to delete your account"}
	}
	if err := rc.app.Auth().DeleteAccount(rc.ctx, c.Password); err != nil {
		return err
	}
	rc.out.Success("Account deleted")
	return nil
}

type profileCmd struct {
	Language string `help:"Preferred language code."`
	Plan     string `help:"Plan id."`
	Expires  string `help:"Subscription expiry, RFC 3339."`
}

func (c *profileCmd) Run(rc *runContext) error {
	var update domain.ProfileUpdate
	if c.Language != "" {
		code, ok := i18n.Match(c.Language)
		if !ok {
			return apperrors.ValidationError{Field: "language", Message: "Unsupported language " + c.Language}
		}
		update.Language = &code
	}
	if c.Plan != "" {
		update.PlanID = &c.Plan
	}
	if c.Expires != "" {
		if _, err := time.Parse(time.RFC3339, c.Expires); err != nil {
			return apperrors.ValidationError{Field: "expires", Message: "Use an RFC 3339 time such as 2025-01-31T00:00:00Z"}
		}
		update.SubscriptionExpiresAt = &c.Expires
	}
	if update == (domain.ProfileUpdate{}) {
		return apperrors.ValidationError{Message: "Nothing to update"}
	}

	user, err := rc.app.Auth().UpdateProfile(rc.ctx, update)
	if err != nil {
		return err
	}
	printUser(rc, user)
	return nil
}
