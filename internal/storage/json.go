package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shhac/mipo/internal/domain"
)

const (
	preferencesFile = "preferences.json"
	galleryFile     = "gallery.json"
	credentialsFile = "credentials.json"
	filePermission  = 0644
	// Credentials hold a bearer token.
	secretPermission = 0600
	dirPermission    = 0755
)

// JSONRepository implements Repository using JSON files
type JSONRepository struct {
	basePath string
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// NewJSONRepository creates a new JSON-based storage repository
func NewJSONRepository(basePath string, logger *slog.Logger) *JSONRepository {
	return &JSONRepository{
		basePath: basePath,
		logger:   logger,
		now:      time.Now,
	}
}

// Path returns the directory the repository writes to.
func (r *JSONRepository) Path() string { return r.basePath }

// Preferences loads the stored preferences.
func (r *JSONRepository) Preferences() (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadPreferences(), nil
}

// UpdatePreferences applies update to the stored preferences and saves them.
func (r *JSONRepository) UpdatePreferences(update func(*Preferences)) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefs := r.loadPreferences()
	update(&prefs)
	if err := r.writeJSON(preferencesFile, prefs, filePermission); err != nil {
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}

	r.logger.Debug("saved preferences",
		slog.Bool("welcome_seen", prefs.WelcomeSeen),
		slog.Bool("permissions_done", prefs.PermissionsDone),
		slog.Bool("has_paid_plan", prefs.HasPaidPlan),
		slog.String("locale", prefs.Locale))
	return prefs, nil
}

// AddGalleryEntry assigns an id to entry and puts it at the front of the
// gallery.
func (r *JSONRepository) AddGalleryEntry(entry domain.GalleryEntry) (domain.GalleryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	full, err := newGalleryEntry(entry, r.now())
	if err != nil {
		return domain.GalleryEntry{}, err
	}

	gallery := append([]domain.GalleryEntry{full}, r.loadGallery()...)
	if err := r.writeJSON(galleryFile, gallery, filePermission); err != nil {
		return domain.GalleryEntry{}, fmt.Errorf("save gallery: %w", err)
	}

	r.logger.Debug("saved gallery entry",
		slog.String("id", full.ID),
		slog.String("template", full.TemplateName))
	return full, nil
}

// GalleryEntries returns the gallery, newest first.
func (r *JSONRepository) GalleryEntries() ([]domain.GalleryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gallery := r.loadGallery()
	r.logger.Debug("loaded gallery", slog.Int("count", len(gallery)))
	return gallery, nil
}

// RemoveGalleryEntry deletes the entry with id. Unknown ids are ignored.
func (r *JSONRepository) RemoveGalleryEntry(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gallery := withoutEntry(r.loadGallery(), id)
	if err := r.writeJSON(galleryFile, gallery, filePermission); err != nil {
		return fmt.Errorf("save gallery: %w", err)
	}

	r.logger.Debug("removed gallery entry", slog.String("id", id))
	return nil
}

// Credentials returns the stored session, or a zero value when there is
// none or it cannot be read.
func (r *JSONRepository) Credentials() (Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var creds Credentials
	if !r.readJSON(credentialsFile, &creds) {
		return Credentials{}, nil
	}
	if creds.User != nil && creds.User.Email == "" {
		creds.User = nil
	}
	return creds, nil
}

// SaveCredentials stores the session. An empty token erases it instead.
func (r *JSONRepository) SaveCredentials(creds Credentials) error {
	if creds.Token == "" {
		return r.ClearCredentials()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeJSON(credentialsFile, creds, secretPermission); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	r.logger.Debug("saved credentials", slog.Bool("has_user", creds.User != nil))
	return nil
}

// ClearCredentials erases the stored session.
func (r *JSONRepository) ClearCredentials() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(credentialsFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Already signed out, not an error
			return nil
		}
		return fmt.Errorf("delete credentials file: %w", err)
	}

	r.logger.Debug("cleared credentials")
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file
// in the same directory, syncing, then renaming over the target path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	// Clean up temp file on any failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// Helper methods

func (r *JSONRepository) path(name string) string {
	return filepath.Join(r.basePath, name)
}

func (r *JSONRepository) writeJSON(name string, v any, perm os.FileMode) error {
	if err := os.MkdirAll(r.basePath, dirPermission); err != nil {
		return fmt.Errorf("create base directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return atomicWriteFile(r.path(name), data, perm)
}

// readJSON decodes the named file into v. It reports false, logging why,
// when the file is missing or unreadable.
func (r *JSONRepository) readJSON(name string, v any) bool {
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("failed to read storage file",
				slog.String("file", name),
				slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.logger.Warn("ignoring corrupt storage file",
			slog.String("file", name),
			slog.Any("error", err))
		return false
	}
	return true
}

func (r *JSONRepository) loadPreferences() Preferences {
	var prefs Preferences
	if !r.readJSON(preferencesFile, &prefs) {
		return Preferences{}
	}
	return prefs
}

func (r *JSONRepository) loadGallery() []domain.GalleryEntry {
	var gallery []domain.GalleryEntry
	if !r.readJSON(galleryFile, &gallery) || gallery == nil {
		return []domain.GalleryEntry{}
	}
	return gallery
}
