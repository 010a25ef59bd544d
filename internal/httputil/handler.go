// Package httputil adapts the calculator's request router to net/http.
package httputil

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/app"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	"github.com/mpz/devops/tools/value-distribution/internal/jsonutil"
)

// RequestHandler serves the calculator's form, assets and JSON API.
type RequestHandler struct {
	calc   *app.App
	logger *slog.Logger
}

// NewRequestHandler creates a handler for calc. A nil logger disables
// transport level logging.
func NewRequestHandler(calc *app.App, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		calc:   calc,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *RequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.debug("rejected request body", r, slog.String("error", err.Error()))
		writeResponse(w, app.Response{
			StatusCode:  status,
			ContentType: "application/json",
			Body:        jsonutil.ErrorBody("unable to read request body"),
		})
		return
	}

	resp := h.calc.HandleRequest(r.Context(), app.Request{
		Type:    app.RequestTypeHTTP,
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: lowerHeaders(r.Header),
		Body:    body,
	})

	if n, err := writeResponse(w, resp); err != nil {
		h.debug("failed to write response body", r, slog.Int("written", n), slog.String("error", err.Error()))
	}
}

// lowerHeaders flattens h to its first values keyed by lower case name, the
// shape function URL events use.
func lowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) > 0 {
			headers[strings.ToLower(key)] = values[0]
		}
	}
	return headers
}

func writeResponse(w http.ResponseWriter, resp app.Response) (int, error) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.ContentType != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}

	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) == 0 {
		return 0, nil
	}
	return w.Write(resp.Body)
}

func (h *RequestHandler) debug(msg string, r *http.Request, attrs ...any) {
	if h.logger == nil {
		return
	}
	attrs = append(attrs, slog.String("method", r.Method), slog.String("path", r.URL.Path))
	h.logger.Debug(msg, attrs...)
}
