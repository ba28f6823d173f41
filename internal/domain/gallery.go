package domain

import "time"

// GalleryEntry records a strip the user saved on this device.
type GalleryEntry struct {
	ID           string    `json:"id"`
	URI          string    `json:"uri"`
	CreatedAt    time.Time `json:"createdAt"`
	TemplateName string    `json:"templateName,omitempty"`
}
