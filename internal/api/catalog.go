package api

import (
	"context"
	"net/http"

	"github.com/shhac/mipo/internal/domain"
)

// FetchTemplates lists the strip templates the server offers.
func (c *Client) FetchTemplates(ctx context.Context) ([]domain.Template, error) {
	var out []domain.Template
	if err := c.list(ctx, "/api/templates", "Failed to fetch templates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBackgrounds lists the background images the server offers.
func (c *Client) FetchBackgrounds(ctx context.Context) ([]domain.Background, error) {
	var out []domain.Background
	if err := c.list(ctx, "/api/backgrounds", "Failed to fetch backgrounds", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// list fetches a catalog. Only 200 is accepted and the server's own error
// text is not surfaced; the fixed failure message is.
func (c *Client) list(ctx context.Context, path, failure string, out any) error {
	env, err := c.Do(ctx, Request{Path: path})
	if err != nil {
		return err
	}
	if env.Status != http.StatusOK {
		return &RequestError{Kind: KindServer, Message: failure, Status: env.Status}
	}
	if err := env.Decode(out); err != nil {
		return &RequestError{Kind: KindMalformed, Message: failure, Status: env.Status, Cause: err}
	}
	return nil
}
