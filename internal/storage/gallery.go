package storage

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/shhac/mipo/internal/domain"
)

const (
	galleryIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	galleryIDSuffix   = 7
)

// newGalleryEntry stamps entry with an id of the form g_<unix-ms>_<suffix>
// and a creation time when it has none.
func newGalleryEntry(entry domain.GalleryEntry, now time.Time) (domain.GalleryEntry, error) {
	suffix, err := gonanoid.Generate(galleryIDAlphabet, galleryIDSuffix)
	if err != nil {
		return domain.GalleryEntry{}, fmt.Errorf("generate gallery id: %w", err)
	}
	entry.ID = fmt.Sprintf("g_%d_%s", now.UnixMilli(), suffix)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now.UTC()
	}
	return entry, nil
}

func withoutEntry(entries []domain.GalleryEntry, id string) []domain.GalleryEntry {
	out := make([]domain.GalleryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
