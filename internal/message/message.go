// Package message defines the data types exchanged with the remote translation service.
package message

import (
	"encoding/base64"
	"encoding/json"
)

// Task selects what the translation service does with the input.
type Task string

const (
	// TaskText2Text translates plain text.
	TaskText2Text Task = "text2text"

	// TaskSpeech2Text transcribes base64-encoded audio into the target language.
	TaskSpeech2Text Task = "speech2text"
)

// TranslationRequest is the service's request body. It is built once per call
// and never mutated afterwards.
type TranslationRequest struct {
	// Input is the text to translate, or base64 audio for speech2text.
	Input string `json:"input"`

	// SourceLanguage is the display name of the input language (e.g., "French").
	SourceLanguage string `json:"source_language"`

	// TargetLanguage is the display name of the requested output language.
	TargetLanguage string `json:"target_language"`

	// Task is serialized as "task_string" on the wire.
	Task Task `json:"task_string"`
}

// NewTextRequest builds a text2text request.
func NewTextRequest(text, source, target string) TranslationRequest {
	return TranslationRequest{
		Input:          text,
		SourceLanguage: source,
		TargetLanguage: target,
		Task:           TaskText2Text,
	}
}

// NewSpeechRequest builds a speech2text request, encoding the raw audio bytes.
func NewSpeechRequest(audio []byte, source, target string) TranslationRequest {
	return NewEncodedSpeechRequest(EncodeBytes(audio), source, target)
}

// NewEncodedSpeechRequest builds a speech2text request from already-encoded audio.
func NewEncodedSpeechRequest(encoded, source, target string) TranslationRequest {
	return TranslationRequest{
		Input:          encoded,
		SourceLanguage: source,
		TargetLanguage: target,
		Task:           TaskSpeech2Text,
	}
}

// Envelope wraps a request under a "data" key, as the legacy endpoint expects.
type Envelope struct {
	Data TranslationRequest `json:"data"`
}

// Marshal serializes the request, optionally wrapped in an Envelope.
func (r TranslationRequest) Marshal(wrap bool) ([]byte, error) {
	if wrap {
		return json.Marshal(Envelope{Data: r})
	}
	return json.Marshal(r)
}

// TranslationResponse is the decoded service reply.
type TranslationResponse struct {
	OutputText string `json:"output_text"`
}

// EncodeBytes base64-encodes a binary payload for transport.
func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeString reverses EncodeBytes.
func DecodeString(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
