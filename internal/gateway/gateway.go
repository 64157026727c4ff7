// Package gateway speaks the remote translation service's wire contract.
//
// A Gateway turns a text or audio payload into a TranslationRequest, posts it
// to the service and decodes the reply into plain UTF-8 text. Failures are
// never retried; they are returned as typed errors so callers can surface
// them to the user.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrTransport covers DNS, connection and timeout failures.
	ErrTransport = errors.New("translation service unreachable")

	// ErrStatus is returned for any non-2xx reply.
	ErrStatus = errors.New("translation service error")

	// ErrDecode means the reply violated the wire contract: malformed JSON,
	// invalid base64 or invalid UTF-8.
	ErrDecode = errors.New("invalid translation service response")
)

// Gateway is the interface the session controller uses to reach the service.
type Gateway interface {
	// Translate converts text from source to target language.
	Translate(ctx context.Context, text, source, target string) (string, error)

	// Transcribe converts raw audio bytes into text in the target language.
	Transcribe(ctx context.Context, audio []byte, source, target string) (string, error)

	// TranscribeEncoded is Transcribe for audio that is already base64-encoded.
	TranscribeEncoded(ctx context.Context, encoded, source, target string) (string, error)
}
