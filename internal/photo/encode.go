package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/shhac/mipo/internal/logging"
)

const (
	defaultJPEGQuality = 85
	maxParallelReads   = 4
)

// Encoder turns captured photo files into base64 strings for the
// generate-strip request.
type Encoder struct {
	// MaxEdge, when positive, downsizes photos whose longer side exceeds
	// it. Zero sends files unchanged.
	MaxEdge int
	// Quality is the JPEG quality for downsized photos.
	Quality int
	Logger  *slog.Logger
}

// NewEncoder returns an Encoder; maxEdge 0 disables resizing.
func NewEncoder(maxEdge int, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Encoder{MaxEdge: maxEdge, Quality: defaultJPEGQuality, Logger: logger}
}

// EncodeFiles encodes every path, keeping the input order. It stops at the
// first failure.
func (e *Encoder) EncodeFiles(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			encoded, err := e.EncodeFile(path)
			if err != nil {
				return err
			}
			out[i] = encoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeFile reads one photo and returns it base64 encoded.
func (e *Encoder) EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read photo %s: %w", path, err)
	}

	if e.MaxEdge > 0 {
		resized, ok, err := e.downsize(data)
		if err != nil {
			return "", fmt.Errorf("resize photo %s: %w", path, err)
		}
		if ok {
			e.Logger.Debug("downsized photo",
				slog.String("path", path),
				slog.String("before", humanize.Bytes(uint64(len(data)))),
				slog.String("after", humanize.Bytes(uint64(len(resized)))))
			data = resized
		}
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// downsize re-encodes data as JPEG fitted within MaxEdge. It reports false
// when the photo is already small enough.
func (e *Encoder) downsize(data []byte) ([]byte, bool, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, err
	}
	if !tooLarge(img.Bounds(), e.MaxEdge) {
		return nil, false, nil
	}

	fitted := imaging.Fit(img, e.MaxEdge, e.MaxEdge, imaging.Lanczos)
	quality := e.Quality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

func tooLarge(b image.Rectangle, maxEdge int) bool {
	return b.Dx() > maxEdge || b.Dy() > maxEdge
}
