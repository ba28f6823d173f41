package errors

import (
	"context"
	"errors"
)

// ErrorSeverity indicates the severity of an error for UI presentation.
type ErrorSeverity int

const (
	SeverityInfo    ErrorSeverity = iota // User should know, not blocking
	SeverityWarning                      // Degraded functionality
	SeverityError                        // Operation failed, can retry
	SeverityFatal                        // Application must exit
)

// String returns the lowercase name of the severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrorAction represents a user action that can be taken in response to an error.
type ErrorAction struct {
	Label   string
	Handler func()
}

// UIError wraps an error with UI-friendly presentation metadata.
type UIError struct {
	Err      error
	Severity ErrorSeverity
	Title    string        // Short user-facing title
	Message  string        // Detailed user-facing message
	Recovery []string      // Suggested actions (bullet points)
	Actions  []ErrorAction // Buttons for user actions
	Details  string        // Technical details (collapsed by default)
}

func (e UIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Title
}

// Unwrap returns the underlying error.
func (e UIError) Unwrap() error {
	return e.Err
}

// ClassifyError converts a standard error into a UIError with appropriate
// severity, title, message, and recovery suggestions.
//
// Errors that carry their own user-facing message (see UserFacing) keep it;
// the classification only decides title, severity and recovery hints.
func ClassifyError(err error) *UIError {
	if err == nil {
		return nil
	}

	// Check if already a UIError
	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}

	ui := classifySentinel(err)
	if ui == nil {
		var sc StatusCarrier
		if errors.As(err, &sc) && sc.HTTPStatus() > 0 {
			ui = classifyHTTPStatus(err, sc.HTTPStatus())
		}
	}
	if ui == nil {
		// Validation errors
		var validationErr ValidationError
		if errors.As(err, &validationErr) {
			ui = &UIError{
				Err:      err,
				Severity: SeverityError,
				Title:    "Validation Error",
				Message:  validationErr.Message,
				Recovery: []string{"Correct the field value and try again"},
				Details:  validationErr.Error(),
			}
		}
	}
	if ui == nil {
		// Default fallback for unknown errors
		ui = &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Unexpected Error",
			Message:  "An unexpected error occurred.",
			Recovery: []string{"Try again"},
			Details:  err.Error(),
		}
	}

	var uf UserFacing
	if errors.As(err, &uf) && uf.UserMessage() != "" {
		ui.Message = uf.UserMessage()
	}
	return ui
}

func classifySentinel(err error) *UIError {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Request Timeout",
			Message:  "Request timed out. Please try again.",
			Recovery: []string{"Try again"},
			Actions:  []ErrorAction{{Label: "Retry"}},
		}

	case errors.Is(err, context.Canceled):
		return &UIError{
			Err:      err,
			Severity: SeverityInfo,
			Title:    "Request Cancelled",
			Message:  "The operation was cancelled.",
			Recovery: []string{},
		}

	case errors.Is(err, ErrConnectionFailed):
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Connection Failed",
			Message:  "Unable to connect. Please check your internet connection and try again.",
			Recovery: []string{
				"Check your network connection",
				"Check that the server URL is correct",
			},
			Actions: []ErrorAction{{Label: "Retry"}},
		}

	case errors.Is(err, ErrSessionExpired):
		return &UIError{
			Err:      err,
			Severity: SeverityWarning,
			Title:    "Session Expired",
			Message:  "Session expired",
			Recovery: []string{"Sign in again"},
			Actions:  []ErrorAction{{Label: "Sign In"}},
		}

	case errors.Is(err, ErrNotSignedIn):
		return &UIError{
			Err:      err,
			Severity: SeverityWarning,
			Title:    "Not Signed In",
			Message:  "Not signed in",
			Recovery: []string{"Sign in and try again"},
			Actions:  []ErrorAction{{Label: "Sign In"}},
		}

	case errors.Is(err, ErrGenerationInFlight):
		return &UIError{
			Err:      err,
			Severity: SeverityInfo,
			Title:    "Already Generating",
			Message:  "Your strip is still being created.",
			Recovery: []string{"Wait for the current strip to finish"},
		}

	case errors.Is(err, ErrMissingImageURL):
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Save Failed",
			Message:  "No image URL returned",
			Recovery: []string{"Try again"},
			Actions:  []ErrorAction{{Label: "Retry"}},
		}

	case errors.Is(err, ErrMalformedResponse):
		return &UIError{
			Err:      err,
			Severity: SeverityError,
			Title:    "Invalid Response",
			Message:  "The server returned an invalid response.",
			Recovery: []string{"Check that the server is running and the URL is correct"},
			Details:  err.Error(),
		}

	case errors.Is(err, ErrPurchaseUnavailable):
		return &UIError{
			Err:      err,
			Severity: SeverityWarning,
			Title:    "In-App Purchase",
			Message:  "In-app purchases are only available on a store build.",
			Recovery: []string{"Install the app from TestFlight or the App Store"},
		}

	case errors.Is(err, ErrPurchaseCancelled):
		return &UIError{
			Err:      err,
			Severity: SeverityInfo,
			Title:    "Cancelled",
			Message:  "Cancelled",
			Recovery: []string{},
		}
	}
	return nil
}
