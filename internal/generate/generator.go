// Package generate runs the strip generation flow: encode the captured
// photos, ask the server for a strip, and report what came back.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shhac/mipo/internal/api"
	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
)

const defaultMimeType = "image/png"

// Slot counts the server composites.
const (
	minStripSlots = domain.MinStripSlots
	maxStripSlots = 4
)

// StripGenerator is the server call. *api.Client satisfies it.
type StripGenerator interface {
	GenerateStrip(ctx context.Context, token string, req api.StripRequest) *api.StripResult
}

// PhotoEncoder turns photo files into base64, keeping their order.
type PhotoEncoder interface {
	EncodeFiles(ctx context.Context, paths []string) ([]string, error)
}

// TokenSource supplies the optional bearer credential.
type TokenSource interface {
	Token() string
}

// Input is everything the user chose for one strip.
type Input struct {
	Template   domain.Template
	Background *domain.Background
	SlotCount  int
	Photos     []string // file paths, in slot order
	Title      string
	Names      string
	Date       string
}

// Outcome is a generated strip. At least one of StripURL and ImageBase64
// is set; displays prefer StripURL.
type Outcome struct {
	StripURL    string
	ImageBase64 string
	MimeType    string
}

// Failure is a generation that did not produce a strip. Message is
// displayable.
type Failure struct {
	Message string
	Cause   error
}

func (f *Failure) Error() string       { return f.Message }
func (f *Failure) UserMessage() string { return f.Message }
func (f *Failure) Unwrap() error       { return f.Cause }

// Generator runs one generation at a time.
type Generator struct {
	strips  StripGenerator
	encoder PhotoEncoder
	tokens  TokenSource
	guard   Guard
	logger  *slog.Logger
}

// NewGenerator wires a generator. tokens may be nil for anonymous use.
func NewGenerator(strips StripGenerator, encoder PhotoEncoder, tokens TokenSource, logger *slog.Logger) *Generator {
	return &Generator{strips: strips, encoder: encoder, tokens: tokens, logger: logger}
}

// InFlight reports whether a generation is running.
func (g *Generator) InFlight() bool { return g.guard.InFlight() }

// Run encodes in.Photos, requests a strip and returns it. A second Run while
// one is pending fails immediately with apperrors.ErrGenerationInFlight.
func (g *Generator) Run(ctx context.Context, in Input) (*Outcome, error) {
	release, ok := g.guard.TryAcquire()
	if !ok {
		g.logger.Debug("generation already in flight, ignoring request")
		return nil, apperrors.ErrGenerationInFlight
	}
	defer release()

	if len(in.Photos) == 0 {
		return nil, apperrors.ValidationError{Field: "photos", Message: "Take at least one photo"}
	}

	slots := stripSlots(in.SlotCount, len(in.Photos))
	if slots != len(in.Photos) {
		return nil, apperrors.ValidationError{
			Field:   "photos",
			Message: fmt.Sprintf("Take %d photos for this strip", slots),
		}
	}

	log := g.logger.With(
		slog.String("template", in.Template.ID),
		slog.Int("photos", len(in.Photos)),
	)
	start := time.Now()

	photos, err := g.encoder.EncodeFiles(ctx, in.Photos)
	if err != nil {
		log.Error("failed to read photos", slog.Any("error", err))
		return nil, &Failure{Message: "Could not read your photos", Cause: err}
	}

	req := api.StripRequest{
		TemplateID:       in.Template.ID,
		TemplateImageURL: in.Template.ImageURL,
		SlotCount:        slots,
		PhotoBase64s:     photos,
		Title:            in.Title,
		Names:            in.Names,
		Date:             in.Date,
	}
	if in.Background != nil {
		req.BackgroundImageURL = in.Background.ImageURL
	}

	token := ""
	if g.tokens != nil {
		token = g.tokens.Token()
	}

	res := g.strips.GenerateStrip(ctx, token, req)
	if res == nil || !res.Success || !res.HasImage() {
		msg := "Failed to generate strip"
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		log.Warn("generation failed",
			slog.String("reason", msg),
			slog.Duration("elapsed", time.Since(start)))
		return nil, &Failure{Message: msg}
	}

	out := &Outcome{StripURL: res.StripURL, ImageBase64: res.ImageBase64, MimeType: res.MimeType}
	if out.MimeType == "" {
		out.MimeType = defaultMimeType
	}
	log.Info("strip generated",
		slog.Bool("hosted", out.StripURL != ""),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

// stripSlots clamps the chosen slot count to what the server composites,
// falling back to the number of photos when none was chosen.
func stripSlots(selected, photos int) int {
	n := selected
	if n <= 0 {
		n = photos
	}
	return min(maxStripSlots, max(minStripSlots, n))
}
