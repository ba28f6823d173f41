package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/generate"
	"github.com/shhac/mipo/internal/logging"
	"github.com/shhac/mipo/internal/model"
	"github.com/shhac/mipo/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp returns an App talking to a chi router and storing into
// memory.
func newTestApp(t *testing.T, setup func(r chi.Router)) (*App, *storage.MemoryRepository) {
	t.Helper()
	r := chi.NewRouter()
	setup(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	cfg := DefaultConfig()
	cfg.ServerURL = ts.URL
	cfg.StoragePath = t.TempDir()
	cfg.RequestTimeout = 5 * time.Second
	cfg.StripTimeout = 5 * time.Second

	repo := storage.NewMemoryRepository()
	a, err := New(cfg, WithLogger(logging.NewNopLogger()), WithRepository(repo))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, repo
}

func catalogRoutes(r chi.Router) {
	r.Get("/api/templates", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "t1", "name": "Classic", "imageUrl": nil, "slotCount": 3},
		})
	})
	r.Get("/api/backgrounds", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "b1", "name": "Beach", "imageUrl": "http://img/b1.png"},
		})
	})
}

func TestBootstrap_AllSlicesLoad(t *testing.T) {
	a, repo := newTestApp(t, func(r chi.Router) {
		catalogRoutes(r)
		r.Get("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "a@b.co", "displayName": "A"})
		})
	})
	require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "tok"}))
	_, err := repo.AddGalleryEntry(domain.GalleryEntry{URI: "file:///x.png"})
	require.NoError(t, err)
	_, err = repo.UpdatePreferences(func(p *storage.Preferences) { p.Locale = "vi"; p.HasPaidPlan = true })
	require.NoError(t, err)

	s := a.Bootstrap(context.Background())

	assert.NoError(t, s.Warnings)
	require.Len(t, s.Templates, 1)
	assert.Equal(t, 3, s.Templates[0].SlotCount)
	require.Len(t, s.Backgrounds, 1)
	require.NotNil(t, s.User)
	assert.Equal(t, 7, s.User.ID)
	assert.Len(t, s.Gallery, 1)
	assert.True(t, s.Preferences.HasPaidPlan)
	assert.Equal(t, "vi", s.Locale)
}

func TestBootstrap_FailuresDegradeIndividually(t *testing.T) {
	a, repo := newTestApp(t, func(r chi.Router) {
		r.Get("/api/templates", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		})
		r.Get("/api/backgrounds", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "b1", "name": "Beach", "imageUrl": nil}})
		})
		r.Get("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		})
	})
	require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "stale"}))
	_, err := repo.AddGalleryEntry(domain.GalleryEntry{URI: "file:///x.png"})
	require.NoError(t, err)

	s := a.Bootstrap(context.Background())

	assert.Empty(t, s.Templates)
	assert.NotNil(t, s.Templates)
	assert.Len(t, s.Backgrounds, 1)
	assert.Nil(t, s.User)
	assert.Len(t, s.Gallery, 1)
	assert.Equal(t, "en", s.Locale)

	var merr *multierror.Error
	require.ErrorAs(t, s.Warnings, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, s.Warnings, apperrors.ErrSessionExpired)

	creds, err := repo.Credentials()
	require.NoError(t, err)
	assert.False(t, creds.SignedIn(), "rejected session should be erased")
}

func TestBootstrap_ServerDown(t *testing.T) {
	repo := storage.NewMemoryRepository()
	cfg := DefaultConfig()
	cfg.ServerURL = "http://127.0.0.1:1"
	cfg.RequestTimeout = 2 * time.Second
	a, err := New(cfg, WithLogger(logging.NewNopLogger()), WithRepository(repo))
	require.NoError(t, err)

	s := a.Bootstrap(context.Background())
	assert.Empty(t, s.Templates)
	assert.Empty(t, s.Backgrounds)
	assert.Empty(t, s.Gallery)
	assert.ErrorIs(t, s.Warnings, apperrors.ErrConnectionFailed)
}

// walkToCapture picks the first template and moves to the capture step.
func walkToCapture(t *testing.T, w *model.Wizard) {
	t.Helper()
	require.NoError(t, w.Start())
	require.NoError(t, w.SelectTemplate(domain.Template{ID: "t1", Name: "Classic", SlotCount: 2}))
	require.NoError(t, w.Continue())
	require.NoError(t, w.SetDetails("Party", "An", "2024-05-01"))
	require.NoError(t, w.Continue())
}

func writePhotos(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "photo"+string(rune('a'+i))+".jpg")
		require.NoError(t, os.WriteFile(paths[i], []byte{byte(i), 1, 2, 3}, 0644))
	}
	return paths
}

func TestGenerate_StoresResultAndSaves(t *testing.T) {
	var got map[string]any
	a, repo := newTestApp(t, func(r chi.Router) {
		r.Post("/api/generate-strip", func(w http.ResponseWriter, req *http.Request) {
			_ = json.NewDecoder(req.Body).Decode(&got)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "stripUrl": "http://cdn/strip.png"})
		})
	})
	walkToCapture(t, a.Wizard())

	out, err := a.Generate(context.Background(), writePhotos(t, 2))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/strip.png", out.StripURL)

	assert.Equal(t, "t1", got["templateId"])
	assert.Equal(t, "Party", got["title"])
	assert.Len(t, got["photoBase64s"], 2)

	s := a.Wizard().Snapshot()
	assert.Equal(t, model.StepResult, s.Step)

	entry, err := a.SaveResult(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/strip.png", entry.URI)
	assert.Equal(t, "Classic", entry.TemplateName)

	gallery, err := repo.GalleryEntries()
	require.NoError(t, err)
	require.Len(t, gallery, 1)
	assert.Equal(t, entry.ID, gallery[0].ID)
}

func TestGenerate_FailureStaysOnGenerating(t *testing.T) {
	a, _ := newTestApp(t, func(r chi.Router) {
		r.Post("/api/generate-strip", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "quota exceeded"})
		})
	})
	walkToCapture(t, a.Wizard())

	_, err := a.Generate(context.Background(), writePhotos(t, 2))
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", apperrors.UserMessage(err))

	s := a.Wizard().Snapshot()
	assert.Equal(t, model.StepGenerating, s.Step)
	assert.Equal(t, "quota exceeded", s.Error)

	require.NoError(t, a.Wizard().BackToCapture())
	_, err = a.SaveResult(t.TempDir())
	assert.ErrorIs(t, err, model.ErrWrongStep)
}

func TestGenerate_WrongStep(t *testing.T) {
	a, _ := newTestApp(t, func(chi.Router) {})
	_, err := a.Generate(context.Background(), []string{"x.jpg"})
	assert.ErrorIs(t, err, model.ErrWrongStep)
}

func TestSaveResult_WritesInlineImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	a, _ := newTestApp(t, func(r chi.Router) {
		r.Post("/api/generate-strip", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":     true,
				"imageBase64": base64.StdEncoding.EncodeToString(png),
				"mimeType":    "image/jpeg",
			})
		})
	})
	walkToCapture(t, a.Wizard())
	_, err := a.Generate(context.Background(), writePhotos(t, 2))
	require.NoError(t, err)

	dir := t.TempDir()
	entry, err := a.SaveResult(dir)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(entry.URI))

	data, err := os.ReadFile(entry.URI)
	require.NoError(t, err)
	assert.Equal(t, png, data)
}

func TestShareURL(t *testing.T) {
	var uploaded string
	a, _ := newTestApp(t, func(r chi.Router) {
		r.Post("/api/temp-upload", func(w http.ResponseWriter, req *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(req.Body).Decode(&body)
			uploaded = body["imageBase64"]
			writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "http://tmp/a b.png"})
		})
	})
	base := a.Config().ServerURL

	u, err := a.ShareURL(context.Background(), &generate.Outcome{ImageBase64: "AAAA"})
	require.NoError(t, err)
	assert.Equal(t, "AAAA", uploaded)
	assert.Equal(t, base+"/save-frame.html?imageUrl=http%3A%2F%2Ftmp%2Fa%20b.png", u)

	u, err = a.ShareURL(context.Background(), &generate.Outcome{StripURL: "http://cdn/s.png"})
	require.NoError(t, err)
	assert.Equal(t, base+"/save-frame.html?imageUrl=http%3A%2F%2Fcdn%2Fs.png", u)

	_, err = a.ShareURL(context.Background(), &generate.Outcome{})
	assert.ErrorIs(t, err, apperrors.ErrMissingImageURL)
}

func TestLocale(t *testing.T) {
	a, _ := newTestApp(t, func(chi.Router) {})
	assert.Equal(t, "en", a.Locale())

	code, err := a.SetLocale("vi-VN")
	require.NoError(t, err)
	assert.Equal(t, "vi", code)
	assert.Equal(t, "vi", a.Locale())

	_, err = a.SetLocale("de")
	var verr apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "locale", verr.Field)
	assert.Equal(t, "vi", a.Locale())
}

func TestOnboarding(t *testing.T) {
	a, _ := newTestApp(t, func(chi.Router) {})

	prefs, err := a.CompleteOnboarding(true, false)
	require.NoError(t, err)
	assert.True(t, prefs.WelcomeSeen)
	assert.False(t, prefs.PermissionsDone)

	prefs, err = a.CompleteOnboarding(false, true)
	require.NoError(t, err)
	assert.True(t, prefs.WelcomeSeen)
	assert.True(t, prefs.PermissionsDone)

	prefs, err = a.ResetOnboarding()
	require.NoError(t, err)
	assert.False(t, prefs.WelcomeSeen)
	assert.False(t, prefs.PermissionsDone)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", extensionFor(""))
	assert.Equal(t, ".png", extensionFor("image/png"))
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
}
