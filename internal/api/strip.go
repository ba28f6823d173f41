package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/shhac/mipo/internal/errors"
)

// StripRequest is the body of POST /api/generate-strip.
type StripRequest struct {
	TemplateID         string   `json:"templateId,omitempty"`
	TemplateImageURL   *string  `json:"templateImageUrl"`
	BackgroundImageURL *string  `json:"backgroundImageUrl"`
	SlotCount          int      `json:"slotCount"`
	PhotoBase64s       []string `json:"photoBase64s"`
	Title              string   `json:"title"`
	Names              string   `json:"names"`
	Date               string   `json:"date"`
}

// StripResult is what the server reported for a generation. A failed
// generation is a result with Success false, not an error.
type StripResult struct {
	Success     bool   `json:"success"`
	StripURL    string `json:"stripUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HasImage reports whether the result carries a strip to show.
func (r *StripResult) HasImage() bool {
	return r.StripURL != "" || r.ImageBase64 != ""
}

func stripFailure(msg string) *StripResult {
	return &StripResult{Success: false, Error: msg}
}

// GenerateStrip asks the server to composite the photos. It never returns
// an error: transport failures, bad statuses and unparseable bodies all
// come back as a result with Success false and a displayable Error, so the
// caller can offer an inline retry. token may be empty.
func (c *Client) GenerateStrip(ctx context.Context, token string, req StripRequest) *StripResult {
	env, err := c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    "/api/generate-strip",
		Body:    req,
		Token:   token,
		Timeout: c.stripTimeout,
	})
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Kind == KindMalformed {
			return stripFailure(fmt.Sprintf(
				"Server error (%d). Check that the server is running and the URL is correct.", reqErr.Status))
		}
		return stripFailure(apperrors.UserMessage(err))
	}
	if env.Malformed {
		return stripFailure("Server returned invalid response")
	}
	if !env.OK() {
		return stripFailure(env.ErrorMessage(fallbackStatusText(env.Status)))
	}

	var res StripResult
	if err := env.Decode(&res); err != nil {
		return stripFailure("Server returned invalid response")
	}
	return &res
}

// UploadTempImage stores a base64 image on the server for the save-frame
// page and returns its public URL. A success status without an imageUrl
// fails with apperrors.ErrMissingImageURL.
func (c *Client) UploadTempImage(ctx context.Context, imageBase64 string) (string, error) {
	env, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/temp-upload",
		Body:   map[string]string{"imageBase64": imageBase64},
	})
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Kind == KindMalformed {
			return "", &RequestError{Kind: KindMalformed, Message: "Invalid response", Status: reqErr.Status}
		}
		return "", err
	}
	if env.Malformed {
		return "", &RequestError{Kind: KindMalformed, Message: "Invalid response", Status: env.Status}
	}
	if !env.OK() {
		return "", &RequestError{
			Kind:    KindServer,
			Message: env.ErrorMessage(fallbackStatusText(env.Status)),
			Status:  env.Status,
		}
	}

	var body struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := env.Decode(&body); err != nil {
		return "", &RequestError{Kind: KindMalformed, Message: "Invalid response", Status: env.Status, Cause: err}
	}
	if body.ImageURL == "" {
		return "", apperrors.ErrMissingImageURL
	}
	return body.ImageURL, nil
}

// SaveFrameURL is the server-rendered page that displays imageURL so it can
// be captured from an embedded web view.
func (c *Client) SaveFrameURL(imageURL string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(imageURL), "+", "%20")
	return c.baseURL + "/save-frame.html?imageUrl=" + escaped
}

func fallbackStatusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}
