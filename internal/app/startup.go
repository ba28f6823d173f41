package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/shhac/mipo/internal/domain"
	"github.com/shhac/mipo/internal/i18n"
	"github.com/shhac/mipo/internal/storage"
)

// Startup is everything loaded when the app opens. A slice that failed to
// load holds its zero value and the failure is listed in Warnings.
type Startup struct {
	Templates   []domain.Template
	Backgrounds []domain.Background
	User        *domain.User
	Gallery     []domain.GalleryEntry
	Preferences storage.Preferences
	Locale      string

	// Warnings is a *multierror.Error, or nil when everything loaded.
	Warnings error
}

// Bootstrap loads the catalog, session, gallery and preferences
// concurrently. It never fails as a whole.
func (a *App) Bootstrap(ctx context.Context) *Startup {
	var (
		out      Startup
		mu       sync.Mutex
		warnings *multierror.Error
		g        errgroup.Group
	)

	// Each task reports into warnings and returns nil, so one failure
	// cannot cut the others short.
	guard := func(slice string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				a.logger.Warn("startup slice degraded",
					slog.String("slice", slice),
					slog.Any("error", err))
				mu.Lock()
				warnings = multierror.Append(warnings, fmt.Errorf("%s: %w", slice, err))
				mu.Unlock()
			}
			return nil
		})
	}

	guard("templates", func() error {
		list, err := a.client.FetchTemplates(ctx)
		out.Templates = list
		return err
	})
	guard("backgrounds", func() error {
		list, err := a.client.FetchBackgrounds(ctx)
		out.Backgrounds = list
		return err
	})
	guard("session", func() error {
		user, err := a.auth.CurrentUser(ctx)
		out.User = user
		return err
	})
	guard("gallery", func() error {
		entries, err := a.storage.GalleryEntries()
		out.Gallery = entries
		return err
	})
	guard("preferences", func() error {
		prefs, err := a.storage.Preferences()
		out.Preferences = prefs
		return err
	})

	_ = g.Wait()

	if out.Templates == nil {
		out.Templates = []domain.Template{}
	}
	if out.Backgrounds == nil {
		out.Backgrounds = []domain.Background{}
	}
	if out.Gallery == nil {
		out.Gallery = []domain.GalleryEntry{}
	}
	out.Locale = i18n.Normalize(out.Preferences.Locale)

	if err := warnings.ErrorOrNil(); err != nil {
		out.Warnings = err
	}
	a.logger.Info("startup complete",
		slog.Int("templates", len(out.Templates)),
		slog.Int("backgrounds", len(out.Backgrounds)),
		slog.Bool("signed_in", out.User != nil),
		slog.Int("gallery", len(out.Gallery)),
		slog.Bool("degraded", out.Warnings != nil))
	return &out
}
