package stt

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when the ASR service replies 200 OK with an
// empty or whitespace-only body. A blank transcript is treated as a failure
// rather than silently forwarded as a valid result.
var ErrEmptyTranscript = errors.New("transcription service returned empty text")

// RequestError describes a failed transcription request: a transport or
// timeout failure, or a non-200 response from the ASR service. The response
// body (or transport error text) is carried as an opaque diagnostic string;
// no error schema is assumed on the service side.
type RequestError struct {
	StatusCode int    // HTTP status, 0 if the request never completed
	Detail     string // response body or transport error text
	Err        error  // underlying transport error, if any
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transcription request failed: %s", e.Detail)
	}

	return fmt.Sprintf("transcription request failed: HTTP %d: %s", e.StatusCode, e.Detail)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports an audio profile outside what the ASR
// service accepts. It is raised by caller-side validation before framing,
// never by the framer itself.
type UnsupportedFormatError struct {
	Field string // which profile attribute failed
	Value string // the offending value
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio %s: %s", e.Field, e.Value)
}
