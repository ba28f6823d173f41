// Package app wires the mipo components together.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shhac/mipo/internal/api"
	"github.com/shhac/mipo/internal/auth"
	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/generate"
	"github.com/shhac/mipo/internal/i18n"
	"github.com/shhac/mipo/internal/logging"
	"github.com/shhac/mipo/internal/model"
	"github.com/shhac/mipo/internal/photo"
	"github.com/shhac/mipo/internal/purchase"
	"github.com/shhac/mipo/internal/storage"
)

// App is the main application coordinator, responsible for wiring
// together all components and managing their lifecycle.
type App struct {
	config    *Config
	logger    *slog.Logger
	logCloser io.Closer
	client    *api.Client
	storage   storage.Repository
	auth      *auth.Service
	purchases *purchase.Service
	generator *generate.Generator
	wizard    *model.Wizard
}

// Option customises New.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	repo       storage.Repository
	store      purchase.Store
	httpClient api.Doer
}

// WithLogger uses logger instead of opening the log file.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRepository replaces the JSON repository in the storage directory.
func WithRepository(repo storage.Repository) Option {
	return func(o *options) { o.repo = repo }
}

// WithPurchaseStore enables in-app purchases.
func WithPurchaseStore(store purchase.Store) Option {
	return func(o *options) { o.store = store }
}

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(doer api.Doer) Option {
	return func(o *options) { o.httpClient = doer }
}

// New creates a new App instance with the given configuration.
// This performs all dependency injection and wiring.
func New(cfg *Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{config: cfg, logger: o.logger}
	if a.logger == nil {
		logger, closer, err := logging.InitLogger("mipo", logging.Options{Debug: cfg.Debug})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger, a.logCloser = logger, closer
	}

	a.logger.Info("initializing mipo",
		slog.Bool("debug", cfg.Debug),
		slog.String("server_url", cfg.ServerURL),
		slog.String("storage_path", cfg.StoragePath),
	)

	a.storage = o.repo
	if a.storage == nil {
		a.storage = storage.NewJSONRepository(cfg.StoragePath, a.logger)
	}

	clientOpts := []api.Option{
		api.WithLogger(a.logger),
		api.WithTimeouts(cfg.RequestTimeout, cfg.StripTimeout),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	a.client = api.NewClient(cfg.ServerURL, clientOpts...)

	a.auth = auth.NewService(a.client, a.storage, a.logger)
	a.purchases = purchase.NewService(o.store, a.storage, a.logger)
	a.generator = generate.NewGenerator(a.client, photo.NewEncoder(cfg.PhotoMaxEdge, a.logger), a.auth, a.logger)
	a.wizard = model.NewWizard()

	a.logger.Info("application initialized successfully")
	return a, nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

// Config returns the resolved configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Client returns the API client.
func (a *App) Client() *api.Client { return a.client }

// Storage returns the storage repository.
func (a *App) Storage() storage.Repository { return a.storage }

// Auth returns the session service.
func (a *App) Auth() *auth.Service { return a.auth }

// Purchases returns the purchase service.
func (a *App) Purchases() *purchase.Service { return a.purchases }

// Wizard returns the strip wizard.
func (a *App) Wizard() *model.Wizard { return a.wizard }

// Generate finishes the capture step with photos and runs the generation.
// The result lands in the wizard unless the user has moved on meanwhile.
func (a *App) Generate(ctx context.Context, photos []string) (*generate.Outcome, error) {
	ticket, err := a.wizard.DoneCapture(photos)
	if err != nil {
		return nil, err
	}
	s := a.wizard.Snapshot()

	out, err := a.generator.Run(ctx, generate.Input{
		Template:   *s.Template,
		Background: s.Background,
		SlotCount:  s.SlotCount,
		Photos:     s.Photos,
		Title:      s.Title,
		Names:      s.Names,
		Date:       s.Date,
	})
	if err != nil {
		if !a.wizard.FailGeneration(ticket, apperrors.UserMessage(err)) {
			a.logger.Debug("dropping stale generation failure")
		}
		return nil, err
	}
	if !a.wizard.CompleteGeneration(ticket, out) {
		a.logger.Debug("dropping stale generation result")
	}
	return out, nil
}

// SaveResult records the wizard's strip in the gallery. An inline image
// is written into dir first; a hosted strip is recorded by URL.
func (a *App) SaveResult(dir string) (domain.GalleryEntry, error) {
	s := a.wizard.Snapshot()
	if s.Step != model.StepResult || s.Result == nil {
		return domain.GalleryEntry{}, fmt.Errorf("save strip: %w", model.ErrWrongStep)
	}

	uri := s.Result.StripURL
	if uri == "" {
		path, err := writeStrip(dir, s.Result)
		if err != nil {
			return domain.GalleryEntry{}, err
		}
		uri = path
	}

	var name string
	if s.Template != nil {
		name = s.Template.Name
	}
	entry, err := a.storage.AddGalleryEntry(domain.GalleryEntry{URI: uri, TemplateName: name})
	if err != nil {
		return domain.GalleryEntry{}, err
	}
	a.logger.Info("saved strip", slog.String("id", entry.ID))
	return entry, nil
}

// ShareURL returns the save-frame page for out. An inline image is
// uploaded first so the page can load it.
func (a *App) ShareURL(ctx context.Context, out *generate.Outcome) (string, error) {
	imageURL := out.StripURL
	if imageURL == "" {
		if out.ImageBase64 == "" {
			return "", apperrors.ErrMissingImageURL
		}
		u, err := a.client.UploadTempImage(ctx, out.ImageBase64)
		if err != nil {
			return "", err
		}
		imageURL = u
	}
	return a.client.SaveFrameURL(imageURL), nil
}

// Locale returns the stored locale, or the default.
func (a *App) Locale() string {
	prefs, err := a.storage.Preferences()
	if err != nil {
		return i18n.Default
	}
	return i18n.Normalize(prefs.Locale)
}

// SetLocale stores code after matching it to a supported locale.
func (a *App) SetLocale(code string) (string, error) {
	normalized, ok := i18n.Match(code)
	if !ok {
		return "", apperrors.ValidationError{
			Field:   "locale",
			Message: fmt.Sprintf("unsupported locale %q, choose one of %s", code, strings.Join(i18n.Supported, ", ")),
		}
	}
	if _, err := a.storage.UpdatePreferences(func(p *storage.Preferences) { p.Locale = normalized }); err != nil {
		return "", err
	}
	return normalized, nil
}

// CompleteOnboarding records that the welcome and permission screens
// have been shown.
func (a *App) CompleteOnboarding(welcome, permissions bool) (storage.Preferences, error) {
	return a.storage.UpdatePreferences(func(p *storage.Preferences) {
		p.WelcomeSeen = p.WelcomeSeen || welcome
		p.PermissionsDone = p.PermissionsDone || permissions
	})
}

// ResetOnboarding clears both onboarding flags.
func (a *App) ResetOnboarding() (storage.Preferences, error) {
	return a.storage.UpdatePreferences(func(p *storage.Preferences) {
		p.WelcomeSeen = false
		p.PermissionsDone = false
	})
}

func writeStrip(dir string, out *generate.Outcome) (string, error) {
	data, err := base64.StdEncoding.DecodeString(out.ImageBase64)
	if err != nil {
		return "", errors.Join(apperrors.ErrMalformedResponse, fmt.Errorf("decode strip image: %w", err))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "mipo-strip-*"+extensionFor(out.MimeType))
	if err != nil {
		return "", fmt.Errorf("create strip file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write strip file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close strip file: %w", err)
	}
	return filepath.Abs(f.Name())
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
