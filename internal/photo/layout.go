// Package photo prepares captured photos for upload and knows the strip
// layout the server composites them into.
package photo

import "math"

// Strip layout in logical pixels. Template artwork is designed against
// these numbers; exports are rendered at ExportScale.
const (
	StripWidth      = 280
	StripPadding    = 8
	SlotWidth       = StripWidth - StripPadding*2 // 264
	SlotAspect      = 0.75                        // width / height, 3:4 portrait
	SlotGap         = 6
	TextPanelHeight = 100
	ExportScale     = 2
)

// SlotHeight is the height of one photo slot.
var SlotHeight = int(math.Round(SlotWidth / SlotAspect)) // 352

// StripHeight is the full strip height for slots photos.
func StripHeight(slots int) int {
	if slots < 0 {
		slots = 0
	}
	photoArea := SlotHeight*slots + SlotGap*max(0, slots-1)
	return StripPadding*2 + photoArea + TextPanelHeight
}

// ExportSize is the pixel size of an exported strip.
func ExportSize(slots int) (width, height int) {
	return StripWidth * ExportScale, StripHeight(slots) * ExportScale
}
