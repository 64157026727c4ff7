// Package http implements the HTTP API transport for sylliba.
//
// The API exposes the same detection and translation path the chat commands
// use, without the interactive selection step: callers name the target
// language up front. It is meant for scripts and other services.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/sylliba/internal/docs" // registers the OpenAPI document
	"github.com/nadzzz/sylliba/internal/gateway"
	"github.com/nadzzz/sylliba/internal/language"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text string `json:"text" example:"Bonjour le monde"`
	// SourceLanguage is detected when empty.
	SourceLanguage string `json:"source_language,omitempty" example:"French"`
	TargetLanguage string `json:"target_language" example:"English"`
}

// TranslateResponse is returned by POST /translate.
type TranslateResponse struct {
	OutputText     string `json:"output_text" example:"Hello world"`
	SourceLanguage string `json:"source_language" example:"French"`
	TargetLanguage string `json:"target_language" example:"English"`
}

// DetectRequest is the body of POST /detect.
type DetectRequest struct {
	Text string `json:"text" example:"Bonjour le monde"`
}

// Score is one entry of a detection ranking.
type Score struct {
	Language   string  `json:"language" example:"French"`
	Confidence float64 `json:"confidence" example:"0.93"`
}

// DetectResponse is returned by POST /detect.
type DetectResponse struct {
	// Language is empty when the text is not in a supported language.
	Language string  `json:"language,omitempty" example:"French"`
	Likely   string  `json:"likely,omitempty" example:"Russian"`
	Ranking  []Score `json:"ranking"`
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Name string `json:"name" example:"French"`
	Code string `json:"code" example:"fr"`
	Flag string `json:"flag" example:"🇫🇷"`
}

// ErrorResponse carries a user-facing error.
type ErrorResponse struct {
	Error  string `json:"error"`
	Likely string `json:"likely,omitempty"`
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port       int
	identifier *language.Identifier
	gateway    gateway.Gateway
	server     *http.Server
	logger     *slog.Logger
}

// New creates a new HTTP transport on the given port.
func New(port int, identifier *language.Identifier, gw gateway.Gateway) *Transport {
	return &Transport{
		port:       port,
		identifier: identifier,
		gateway:    gw,
		logger:     slog.With("component", "http"),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the API routes.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /translate", t.handleTranslate)
	mux.HandleFunc("POST /detect", t.handleDetect)
	mux.HandleFunc("GET /languages", t.handleLanguages)

	// Swagger UI serves the OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	t.logger.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		t.logger.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleTranslate processes a POST /translate request.
//
// @Summary     Translate text
// @Description Detects the source language when it is omitted, then forwards the text to the translation service.
// @Tags        translation
// @Accept      json
// @Produce     json
// @Param       request  body      TranslateRequest  true  "Text and languages"
// @Success     200      {object}  TranslateResponse
// @Failure     400      {object}  ErrorResponse  "Invalid body or unsupported language"
// @Failure     422      {object}  ErrorResponse  "Source language could not be identified"
// @Failure     502      {object}  ErrorResponse  "Translation service failed"
// @Router      /translate [post]
func (t *Transport) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		return
	}

	registry := t.identifier.Registry()
	target, ok := registry.Lookup(req.TargetLanguage)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported target language %q", req.TargetLanguage)})
		return
	}

	var source language.Language
	if req.SourceLanguage != "" {
		if source, ok = registry.Lookup(req.SourceLanguage); !ok {
			writeError(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported source language %q", req.SourceLanguage)})
			return
		}
	} else {
		var err error
		source, err = t.identifier.BestMatch(req.Text)
		if err != nil {
			resp := ErrorResponse{Error: err.Error()}
			var nc *language.NotConfidentError
			if errors.As(err, &nc) {
				resp.Likely = nc.Likely
			}
			writeError(w, http.StatusUnprocessableEntity, resp)
			return
		}
	}

	out, err := t.gateway.Translate(r.Context(), req.Text, source.Name, target.Name)
	if err != nil {
		t.logger.Error("translation failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrorResponse{Error: "translation failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{
		OutputText:     out,
		SourceLanguage: source.Name,
		TargetLanguage: target.Name,
	})
}

// handleDetect processes a POST /detect request.
//
// @Summary     Detect the language of text
// @Description Ranks the supported languages and reports the single best match, or the likely unsupported language.
// @Tags        detection
// @Accept      json
// @Produce     json
// @Param       request  body      DetectRequest  true  "Text to classify"
// @Success     200      {object}  DetectResponse
// @Failure     400      {object}  ErrorResponse
// @Router      /detect [post]
func (t *Transport) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp := DetectResponse{}
	for _, s := range t.identifier.Detect(req.Text) {
		resp.Ranking = append(resp.Ranking, Score{Language: s.Name, Confidence: s.Confidence})
	}

	best, err := t.identifier.BestMatch(req.Text)
	var nc *language.NotConfidentError
	switch {
	case err == nil:
		resp.Language = best.Name
	case errors.As(err, &nc):
		resp.Likely = nc.Likely
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLanguages processes a GET /languages request.
//
// @Summary     List supported languages
// @Tags        languages
// @Produce     json
// @Success     200  {array}  LanguageInfo
// @Router      /languages [get]
func (t *Transport) handleLanguages(w http.ResponseWriter, r *http.Request) {
	langs := t.identifier.Registry().All()
	out := make([]LanguageInfo, len(langs))
	for i, l := range langs {
		out[i] = LanguageInfo{Name: l.Name, Code: l.Code, Flag: l.Flag}
	}
	writeJSON(w, http.StatusOK, out)
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}
