package api

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"

	apperrors "github.com/shhac/mipo/internal/errors"
)

// Messages shown when a request never reached a usable response.
const (
	MsgTimeout      = "Request timed out. Please try again."
	MsgConnectivity = "Unable to connect. Please check your internet connection and try again."
)

// ErrorKind tells callers which failure class a RequestError belongs to.
type ErrorKind int

const (
	// KindTransport is any transport failure that is neither a timeout nor
	// a connectivity problem (bad URL, unencodable body, ...).
	KindTransport ErrorKind = iota
	KindTimeout
	KindConnectivity
	// KindServer is a response whose status the caller does not accept.
	KindServer
	// KindMalformed is a response body that could not be parsed.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindConnectivity:
		return "connectivity"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTimeout:
		return apperrors.ErrTimeout
	case KindConnectivity:
		return apperrors.ErrConnectionFailed
	case KindServer:
		return apperrors.ErrServerRejected
	case KindMalformed:
		return apperrors.ErrMalformedResponse
	default:
		return nil
	}
}

// RequestError is returned by the envelope builder and the endpoint callers.
// Message is always safe to show to an end user.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Status  int // 0 when no response was received
	Cause   error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// UserMessage implements apperrors.UserFacing.
func (e *RequestError) UserMessage() string { return e.Message }

// HTTPStatus implements apperrors.StatusCarrier.
func (e *RequestError) HTTPStatus() int { return e.Status }

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *RequestError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// classifyTransportError turns a failure from send into one of the three
// transport classes.
func classifyTransportError(err error) *RequestError {
	switch {
	case isTimeout(err):
		return &RequestError{Kind: KindTimeout, Message: MsgTimeout, Cause: err}
	case isConnectivity(err):
		return &RequestError{Kind: KindConnectivity, Message: MsgConnectivity, Cause: err}
	default:
		return &RequestError{Kind: KindTransport, Message: innerMessage(err), Cause: err}
	}
}

// isTimeout treats an aborted request like an expired one: the only way a
// request is aborted is its own deadline or the caller giving up on it.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectivity(err error) bool {
	var (
		opErr   *net.OpError
		dnsErr  *net.DNSError
		addrErr *net.AddrError
		certErr *tls.CertificateVerificationError
		recErr  tls.RecordHeaderError
	)
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr), errors.As(err, &addrErr):
		return true
	case errors.As(err, &certErr), errors.As(err, &recErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}

// innerMessage strips the "Get \"url\": " prefix net/http adds.
func innerMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
