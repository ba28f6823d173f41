package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// response is a fully read HTTP response.
type response struct {
	status     int
	statusText string
	body       []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// send issues one request bounded by timeout. Reading the body counts
// against the same window, and the timer is released on every exit path.
func (c *Client) send(ctx context.Context, method, target string, header http.Header, body []byte, timeout time.Duration) (*response, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header = header

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, withContextErr(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, withContextErr(ctx, err)
	}

	return &response{
		status:     resp.StatusCode,
		statusText: statusText(resp),
		body:       data,
	}, nil
}

// withContextErr makes an expired or cancelled context visible to
// errors.Is even when the transport reports something vaguer.
func withContextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// statusText is the reason phrase the server sent, or the canonical one.
func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d", resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
