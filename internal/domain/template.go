package domain

// Slot counts a template may offer.
const (
	MinSlots     = 1
	MaxSlots     = 4
	DefaultSlots = 3
	// MinStripSlots is the fewest photos the server composites into a strip.
	MinStripSlots = 2
)

// Template is a strip frame served by the generation server.
type Template struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
	// SlotCount is the default number of photos for this template.
	SlotCount int `json:"slotCount"`
	// SlotOptions lists the slot counts a user may choose between. Empty
	// means any count from MinSlots to MaxSlots.
	SlotOptions []int `json:"slotOptions,omitempty"`
}

// Image returns the template image URL or "" when the server sent null.
func (t Template) Image() string {
	if t.ImageURL == nil {
		return ""
	}
	return *t.ImageURL
}

// AllowsSlots reports whether n photos can be used with this template.
func (t Template) AllowsSlots(n int) bool {
	if n < MinSlots || n > MaxSlots {
		return false
	}
	if len(t.SlotOptions) == 0 {
		return true
	}
	for _, opt := range t.SlotOptions {
		if opt == n {
			return true
		}
	}
	return false
}

// Background is a backdrop image composited behind the photos.
type Background struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// Image returns the background image URL or "" when the server sent null.
func (b Background) Image() string {
	if b.ImageURL == nil {
		return ""
	}
	return *b.ImageURL
}
