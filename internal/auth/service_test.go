package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/mipo/internal/api"
	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/logging"
	"github.com/shhac/mipo/internal/storage"
)

var _ API = (*api.Client)(nil)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	authResp  *api.AuthResponse
	authErr   error
	me        *domain.User
	meErr     error
	deleteErr error
	profile   *domain.User

	gotToken string
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*api.AuthResponse, error) {
	return f.authResp, f.authErr
}

func (f *fakeAPI) Register(_ context.Context, email, password, name string) (*api.AuthResponse, error) {
	return f.authResp, f.authErr
}

func (f *fakeAPI) Me(_ context.Context, token string) (*domain.User, error) {
	f.gotToken = token
	return f.me, f.meErr
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) (*api.MessageResponse, error) {
	return &api.MessageResponse{Message: "sent"}, nil
}

func (f *fakeAPI) ResetPassword(_ context.Context, token, pw string) (*api.MessageResponse, error) {
	return &api.MessageResponse{Message: "reset"}, nil
}

func (f *fakeAPI) DeleteAccount(_ context.Context, token, password string) (*api.MessageResponse, error) {
	f.gotToken = token
	return &api.MessageResponse{Message: "deleted"}, f.deleteErr
}

func (f *fakeAPI) UpdateProfile(_ context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	f.gotToken = token
	return f.profile, nil
}

func newService(t *testing.T, fake *fakeAPI) (*Service, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	return NewService(fake, repo, logging.NewNopLogger()), repo
}

func TestLoginStoresSession(t *testing.T) {
	fake := &fakeAPI{authResp: &api.AuthResponse{
		Token: "tok",
		User:  domain.User{ID: 2, Email: "a@b.c", HasPaidAccess: true},
	}}
	svc, repo := newService(t, fake)

	user, err := svc.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, user.ID)
	assert.Equal(t, "tok", svc.Token())
	assert.Equal(t, "a@b.c", svc.CachedUser().Email)

	prefs, _ := repo.Preferences()
	assert.True(t, prefs.HasPaidPlan)
}

func TestLoginFailureKeepsSignedOut(t *testing.T) {
	fake := &fakeAPI{authErr: &api.RequestError{Kind: api.KindServer, Message: "Invalid email or password", Status: 401}}
	svc, _ := newService(t, fake)

	_, err := svc.Login(context.Background(), "a@b.c", "bad")
	assert.EqualError(t, err, "Invalid email or password")
	assert.Empty(t, svc.Token())
	assert.Nil(t, svc.CachedUser())
}

func TestRegisterStoresSession(t *testing.T) {
	fake := &fakeAPI{authResp: &api.AuthResponse{Token: "new", User: domain.User{ID: 9, Email: "n@b.c"}}}
	svc, repo := newService(t, fake)

	_, err := svc.Register(context.Background(), "n@b.c", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "new", svc.Token())

	prefs, _ := repo.Preferences()
	assert.False(t, prefs.HasPaidPlan)
}

func TestCurrentUser(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		svc, _ := newService(t, &fakeAPI{})
		user, err := svc.CurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("refreshes cached user", func(t *testing.T) {
		fake := &fakeAPI{me: &domain.User{ID: 1, Email: "a@b.c", Language: "ja"}}
		svc, repo := newService(t, fake)
		require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "tok", User: &domain.User{ID: 1, Email: "a@b.c"}}))

		user, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ja", user.Language)
		assert.Equal(t, "tok", fake.gotToken)
		assert.Equal(t, "ja", svc.CachedUser().Language)
	})

	t.Run("rejected token is erased", func(t *testing.T) {
		fake := &fakeAPI{meErr: &api.RequestError{Kind: api.KindServer, Message: "Session expired", Status: 401, Cause: apperrors.ErrSessionExpired}}
		svc, repo := newService(t, fake)
		require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "old"}))

		_, err := svc.CurrentUser(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
		assert.Empty(t, svc.Token())
	})

	t.Run("offline keeps session", func(t *testing.T) {
		fake := &fakeAPI{meErr: &api.RequestError{Kind: api.KindConnectivity, Message: api.MsgConnectivity}}
		svc, repo := newService(t, fake)
		require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "tok"}))

		_, err := svc.CurrentUser(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrConnectionFailed)
		assert.Equal(t, "tok", svc.Token())
	})
}

func TestRequiresSignIn(t *testing.T) {
	svc, _ := newService(t, &fakeAPI{})

	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), "pw"), apperrors.ErrNotSignedIn)
	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrNotSignedIn)
}

func TestDeleteAccountSignsOut(t *testing.T) {
	fake := &fakeAPI{}
	svc, repo := newService(t, fake)
	require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "tok"}))

	require.NoError(t, svc.DeleteAccount(context.Background(), "pw"))
	assert.Equal(t, "tok", fake.gotToken)
	assert.Empty(t, svc.Token())
}

func TestUpdateProfileStoresUser(t *testing.T) {
	fake := &fakeAPI{profile: &domain.User{ID: 1, Email: "a@b.c", Language: "fil"}}
	svc, repo := newService(t, fake)
	require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "tok"}))

	lang := "fil"
	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "fil", svc.CachedUser().Language)
}

func TestCurrentUser_AgainstServer(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
	}{
		{"json error", http.StatusUnauthorized, "application/json", `{"error":"Invalid or expired token"}`, "Invalid or expired token"},
		{"plain text 401", http.StatusUnauthorized, "text/plain", "Unauthorized", "Unauthorized"},
		{"html 403", http.StatusForbidden, "text/html", "<h1>Forbidden</h1>", "<h1>Forbidden</h1>"},
		{"empty 401", http.StatusUnauthorized, "", "", "Session expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			ts := httptest.NewServer(r)
			defer ts.Close()

			repo := storage.NewMemoryRepository()
			require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "stale"}))
			svc := NewService(api.NewClient(ts.URL), repo, logging.NewNopLogger())

			_, err := svc.CurrentUser(context.Background())
			assert.EqualError(t, err, tt.wantMsg)
			assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
			assert.Empty(t, svc.Token())
		})
	}
}

func TestCurrentUser_ServerDownKeepsSession(t *testing.T) {
	repo := storage.NewMemoryRepository()
	require.NoError(t, repo.SaveCredentials(storage.Credentials{Token: "keep"}))
	svc := NewService(api.NewClient("http://127.0.0.1:1"), repo, logging.NewNopLogger())

	_, err := svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConnectionFailed)
	assert.NotErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.Equal(t, "keep", svc.Token())
}
