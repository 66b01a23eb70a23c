package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

// ErrorCode is a coarse tag describing why a fetch failed
type ErrorCode string

// enum of fetch error codes
const (
	CodeNotFound     ErrorCode = "not_found"
	CodeForbidden    ErrorCode = "forbidden"
	CodeGone         ErrorCode = "gone"
	CodeMalformedXML ErrorCode = "malformed_xml"
	CodeTimeout      ErrorCode = "timeout"
	CodeServerError  ErrorCode = "server_error"
	CodeUnknown      ErrorCode = "unknown"

	// CodeNoItems tags the audit record of a feed that parsed fine but had no entries
	CodeNoItems ErrorCode = "no_items"
)

// Severity tells whether a fetch failure is expected to heal by itself
type Severity int

// enum of severities
const (
	Transient Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "transient"
}

// FetchError is a failed feed fetch tagged with a coarse code
type FetchError struct {
	Code ErrorCode
	Err  error
}

func (e *FetchError) Error() string {
	return string(e.Code) + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err with a code derived from it, nil stays nil
func NewFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Code: codeOf(err), Err: err}
}

// Classify reports whether the fetch error is permanent (fatal) or may self-heal (transient)
func Classify(fe *FetchError) Severity {
	if fe == nil {
		return Transient
	}
	switch fe.Code {
	case CodeNotFound, CodeForbidden, CodeGone, CodeMalformedXML:
		return Fatal
	default:
		return Transient
	}
}

var statusRe = regexp.MustCompile(`status code:? (\d{3})`)

// codeOf maps a transport or parse error to a code. Typed checks go first,
// the error text is the fallback for wrapped errors from the http stack.
func codeOf(err error) ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return CodeMalformedXML
	}
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return CodeMalformedXML
	}

	msg := strings.ToLower(err.Error())
	if m := statusRe.FindStringSubmatch(msg); len(m) == 2 {
		code, _ := strconv.Atoi(m[1])
		return codeOfStatus(code)
	}

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return CodeTimeout
	case strings.Contains(msg, "failed to detect feed type") || strings.Contains(msg, "xml syntax error") ||
		strings.HasPrefix(msg, "parse feed"):
		return CodeMalformedXML
	}
	return CodeUnknown
}

func codeOfStatus(status int) ErrorCode {
	switch {
	case status == 404:
		return CodeNotFound
	case status == 401 || status == 403:
		return CodeForbidden
	case status == 410:
		return CodeGone
	case status >= 500 && status < 600:
		return CodeServerError
	default:
		return CodeUnknown
	}
}
