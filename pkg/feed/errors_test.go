package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o wait" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNewFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"status 404", errors.New("unexpected status code: 404"), CodeNotFound},
		{"status 403", errors.New("unexpected status code: 403"), CodeForbidden},
		{"status 401", errors.New("unexpected status code: 401"), CodeForbidden},
		{"status 410", errors.New("unexpected status code: 410"), CodeGone},
		{"status 503", errors.New("unexpected status code: 503"), CodeServerError},
		{"status 429", errors.New("unexpected status code: 429"), CodeUnknown},
		{"wrapped status", fmt.Errorf("fetch: %w", errors.New("Status code 500")), CodeServerError},
		{"deadline", fmt.Errorf("fetch URL: %w", context.DeadlineExceeded), CodeTimeout},
		{"net timeout", fmt.Errorf("fetch URL: %w", timeoutErr{}), CodeTimeout},
		{"timeout text", errors.New("dial tcp: i/o timeout"), CodeTimeout},
		{"feed type", fmt.Errorf("parse feed: %w", gofeed.ErrFeedTypeNotDetected), CodeMalformedXML},
		{"xml syntax", fmt.Errorf("parse feed: %w", &xml.SyntaxError{Msg: "unexpected EOF", Line: 1}), CodeMalformedXML},
		{"parse prefix", errors.New("parse feed: unexpected token"), CodeMalformedXML},
		{"dns", errors.New("dial tcp: lookup nowhere.example: no such host"), CodeUnknown},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), CodeUnknown},
		{"read body", errors.New("read body: unexpected EOF"), CodeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fe := NewFetchError(tc.err)
			require.NotNil(t, fe)
			assert.Equal(t, tc.code, fe.Code)
			assert.ErrorIs(t, fe, tc.err)
			assert.Equal(t, string(tc.code)+": "+tc.err.Error(), fe.Error())
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, NewFetchError(nil))
	})

	t.Run("already classified", func(t *testing.T) {
		orig := &FetchError{Code: CodeGone, Err: errors.New("gone away")}
		fe := NewFetchError(fmt.Errorf("wrap: %w", orig))
		assert.Same(t, orig, fe)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want Severity
	}{
		{CodeNotFound, Fatal},
		{CodeForbidden, Fatal},
		{CodeGone, Fatal},
		{CodeMalformedXML, Fatal},
		{CodeTimeout, Transient},
		{CodeServerError, Transient},
		{CodeUnknown, Transient},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(&FetchError{Code: tc.code, Err: errors.New("x")}))
		})
	}

	assert.Equal(t, Transient, Classify(nil))
	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "transient", Transient.String())
}
