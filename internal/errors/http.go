package errors

import (
	"fmt"
	"net/http"
)

// classifyHTTPStatus converts a server-declared failure into a UIError based
// on its HTTP status code. The message is replaced by the server's own text
// by ClassifyError when the error carries one.
func classifyHTTPStatus(err error, status int) *UIError {
	details := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))

	switch {
	case status == http.StatusUnauthorized:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Authentication Required",
			Message:  "Please sign in to continue.",
			Recovery: []string{"Sign in again"},
			Actions:  []ErrorAction{{Label: "Sign In"}},
			Details:  details,
		}

	case status == http.StatusForbidden || status == http.StatusPaymentRequired:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Access Denied",
			Message:  "Your plan does not include this feature.",
			Recovery: []string{"Upgrade your plan", "Choose a free template"},
			Actions:  []ErrorAction{{Label: "View Plans"}},
			Details:  details,
		}

	case status == http.StatusNotFound:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Not Found",
			Message:  "The requested resource was not found.",
			Recovery: []string{"Check that the server URL is correct"},
			Details:  details,
		}

	case status == http.StatusConflict:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Already Exists",
			Message:  "The resource already exists.",
			Recovery: []string{"Use a different email address"},
			Details:  details,
		}

	case status == http.StatusRequestEntityTooLarge:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Photos Too Large",
			Message:  "The photos are too large to upload.",
			Recovery: []string{"Retake the photos at a lower resolution"},
			Details:  details,
		}

	case status == http.StatusTooManyRequests:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Too Many Requests",
			Message:  "You have reached the limit for now.",
			Recovery: []string{"Try again later", "Upgrade your plan"},
			Actions:  []ErrorAction{{Label: "Retry"}},
			Details:  details,
		}

	case status >= 400 && status < 500:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Invalid Request",
			Message:  "The request contains invalid data.",
			Recovery: []string{"Check the values you entered"},
			Details:  details,
		}

	case status >= 500:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Server Error",
			Message:  "The server encountered an unexpected error.",
			Recovery: []string{"Try again later"},
			Actions:  []ErrorAction{{Label: "Retry"}},
			Details:  details,
		}

	default:
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Request Failed",
			Message:  "The request failed.",
			Recovery: []string{"Try again"},
			Details:  details,
		}
	}
}
