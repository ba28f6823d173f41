package storage

import "github.com/shhac/mipo/internal/domain"

// Preferences are the small device-local settings.
type Preferences struct {
	WelcomeSeen     bool   `json:"welcomeSeen"`
	PermissionsDone bool   `json:"permissionsDone"`
	HasPaidPlan     bool   `json:"hasPaidPlan"`
	Locale          string `json:"locale,omitempty"`
}

// Credentials is the stored session. A zero value means signed out.
type Credentials struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// SignedIn reports whether a token is stored.
func (c Credentials) SignedIn() bool { return c.Token != "" }

// Repository defines persistence operations for mipo.
//
// Reads degrade: unreadable or corrupt data comes back as the zero value
// (or an empty list) rather than an error. Writes report failures.
type Repository interface {
	// Preferences
	Preferences() (Preferences, error)
	UpdatePreferences(update func(*Preferences)) (Preferences, error)

	// Gallery, newest first
	AddGalleryEntry(entry domain.GalleryEntry) (domain.GalleryEntry, error)
	GalleryEntries() ([]domain.GalleryEntry, error)
	RemoveGalleryEntry(id string) error

	// Session
	Credentials() (Credentials, error)
	SaveCredentials(creds Credentials) error
	ClearCredentials() error
}
