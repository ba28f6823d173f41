package storage

import (
	"slices"
	"sync"
	"time"

	"github.com/shhac/mipo/internal/domain"
)

// MemoryRepository implements Repository using in-memory storage for tests
type MemoryRepository struct {
	prefs   Preferences
	gallery []domain.GalleryEntry
	creds   Credentials
	now     func() time.Time
	mu      sync.RWMutex
}

// NewMemoryRepository creates a new in-memory storage repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		gallery: []domain.GalleryEntry{},
		now:     time.Now,
	}
}

// Preferences returns the stored preferences
func (m *MemoryRepository) Preferences() (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs, nil
}

// UpdatePreferences applies update to the stored preferences
func (m *MemoryRepository) UpdatePreferences(update func(*Preferences)) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	update(&m.prefs)
	return m.prefs, nil
}

// AddGalleryEntry puts an entry at the front of the gallery
func (m *MemoryRepository) AddGalleryEntry(entry domain.GalleryEntry) (domain.GalleryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	full, err := newGalleryEntry(entry, m.now())
	if err != nil {
		return domain.GalleryEntry{}, err
	}
	m.gallery = append([]domain.GalleryEntry{full}, m.gallery...)
	return full, nil
}

// GalleryEntries returns a copy of the gallery
func (m *MemoryRepository) GalleryEntries() ([]domain.GalleryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.gallery), nil
}

// RemoveGalleryEntry deletes an entry by id
func (m *MemoryRepository) RemoveGalleryEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gallery = withoutEntry(m.gallery, id)
	return nil
}

// Credentials returns the stored session
func (m *MemoryRepository) Credentials() (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

// SaveCredentials stores the session; an empty token erases it
func (m *MemoryRepository) SaveCredentials(creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if creds.Token == "" {
		creds = Credentials{}
	}
	m.creds = creds
	return nil
}

// ClearCredentials erases the stored session
func (m *MemoryRepository) ClearCredentials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
