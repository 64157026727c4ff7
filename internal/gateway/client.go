package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/nadzzz/sylliba/internal/config"
	"github.com/nadzzz/sylliba/internal/message"
)

// Encoding describes how the service wraps the result string.
type Encoding string

const (
	EncodingPlain  Encoding = "plain"
	EncodingBase64 Encoding = "base64"
	// EncodingAuto decodes base64 when the string is valid base64 of UTF-8 text.
	EncodingAuto Encoding = "auto"
)

// maxResponseBytes bounds the reply body read into memory.
const maxResponseBytes = 10 << 20

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL        string
	translatePath  string
	transcribePath string
	wrapData       bool
	textEncoding   Encoding
	speechEncoding Encoding
	client         *http.Client
	logger         *slog.Logger
}

// New creates a gateway client from config.
func New(cfg config.TranslationConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		translatePath:  cfg.TranslatePath,
		transcribePath: cfg.TranscribePath,
		wrapData:       cfg.WrapData,
		textEncoding:   Encoding(cfg.TextEncoding),
		speechEncoding: Encoding(cfg.SpeechEncoding),
		client:         &http.Client{Timeout: cfg.Timeout},
		logger:         slog.With("component", "gateway"),
	}
}

// Translate sends a text2text request.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := message.NewTextRequest(text, source, target)
	return c.do(ctx, c.translatePath, req, c.textEncoding)
}

// Transcribe sends a speech2text request for raw audio bytes.
func (c *Client) Transcribe(ctx context.Context, audio []byte, source, target string) (string, error) {
	req := message.NewSpeechRequest(audio, source, target)
	return c.do(ctx, c.transcribePath, req, c.speechEncoding)
}

// TranscribeEncoded sends a speech2text request for base64 audio.
func (c *Client) TranscribeEncoded(ctx context.Context, encoded, source, target string) (string, error) {
	req := message.NewEncodedSpeechRequest(encoded, source, target)
	return c.do(ctx, c.transcribePath, req, c.speechEncoding)
}

func (c *Client) do(ctx context.Context, path string, tr message.TranslationRequest, enc Encoding) (string, error) {
	body, err := tr.Marshal(c.wrapData)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	endpoint := c.baseURL + path
	logger := c.logger.With("task", tr.Task, "source", tr.SourceLanguage, "target", tr.TargetLanguage)
	logger.Info("translation request",
		"endpoint", endpoint,
		"input_bytes", len(tr.Input),
		"input_preview", preview(tr.Input, 64),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	logger.Info("translation response", "status", resp.StatusCode, "body", preview(string(respData), 512))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w (status %d): %s", ErrStatus, resp.StatusCode, preview(string(respData), 2048))
	}

	result, err := decodeResult(respData, enc)
	if err != nil {
		return "", err
	}

	logger.Info("translation complete", "output_length", len(result.OutputText))
	return result.OutputText, nil
}

// decodeResult unpacks the JSON string body and applies the response encoding.
func decodeResult(data []byte, enc Encoding) (message.TranslationResponse, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return message.TranslationResponse{}, fmt.Errorf("%w: body is not a JSON string: %v", ErrDecode, err)
	}

	switch enc {
	case EncodingBase64:
		text, err := decodeBase64Text(s)
		if err != nil {
			return message.TranslationResponse{}, err
		}
		s = text
	case EncodingAuto:
		if looksBase64(s) {
			if text, err := decodeBase64Text(s); err == nil {
				s = text
			}
		}
	}
	return message.TranslationResponse{OutputText: s}, nil
}

func decodeBase64Text(s string) (string, error) {
	raw, err := message.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: decoded payload is not valid UTF-8", ErrDecode)
	}
	return string(raw), nil
}

// looksBase64 filters out ordinary sentences before attempting a decode.
func looksBase64(s string) bool {
	if s == "" || len(s)%4 != 0 {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}

// preview truncates s to at most n bytes without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
