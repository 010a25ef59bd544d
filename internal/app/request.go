package app

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mpz/devops/tools/value-distribution/internal/app/templates"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	internalerrors "github.com/mpz/devops/tools/value-distribution/internal/errors"
	"github.com/mpz/devops/tools/value-distribution/internal/jsonutil"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// RequestType identifies where a request came from.
type RequestType string

const (
	// RequestTypeHTTP is a request received by the HTTP server.
	RequestTypeHTTP RequestType = "http"
	// RequestTypeLambda is a request received through a Lambda function URL.
	RequestTypeLambda RequestType = "lambda"
)

// Request represents an HTTP request.
type Request struct {
	Type    RequestType       `json:"type,omitempty"`
	Method  string            `json:"method,omitempty"`
	Path    string            `json:"path,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// Response is a unified response type.
type Response struct {
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
}

// HandleRequest routes incoming requests to the appropriate handler.
func (a *App) HandleRequest(ctx context.Context, req Request) Response {
	start := time.Now()
	requestID := uuid.New().String()

	resp := a.handleHTTPRequest(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["X-Request-Id"] = requestID

	// Log API requests (skip static assets)
	if !isStaticPath(req.Path) {
		a.Logger.Info("request",
			"request_id", requestID,
			"source", string(req.Type),
			"method", req.Method,
			"path", req.Path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}

	return resp
}

// isStaticPath returns true for paths that should not be logged.
func isStaticPath(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/favicon")
}

// handleHTTPRequest routes HTTP requests.
func (a *App) handleHTTPRequest(ctx context.Context, req Request) Response {
	path := req.Path
	if a.Config.BasePath != "" {
		path = strings.TrimPrefix(path, a.Config.BasePath)
		if path == "" {
			path = "/"
		}
	}

	switch {
	case path == "/" && req.Method == "GET":
		return a.handleUI()
	case path == "/actions" && req.Method == "POST":
		return a.handleFormSubmit(ctx, req)
	case path == "/static/styles.css" && req.Method == "GET":
		return a.handleStaticFile("styles.css", "text/css")
	case path == "/static/main.js" && req.Method == "GET":
		return a.handleStaticFile("main.js", "application/javascript")

	case path == "/server/status" && req.Method == "GET":
		return a.handleStatusRequest(req)
	case path == "/server/config" && req.Method == "GET":
		return a.handleConfigRequest(req)
	case path == "/api/state" && req.Method == "GET":
		return jsonResponse(200, a.GetView())
	case path == "/api/actions" && req.Method == "POST":
		return a.handleDispatch(ctx, req)
	case path == "/api/events" && req.Method == "GET":
		return jsonResponse(200, a.ListEvents())
	case path == "/api/config" && req.Method == "GET":
		return a.handlePublicConfig()
	default:
		err := errors.Wrapf(internalerrors.ErrNotFound, "%s %s", req.Method, path)
		return errorResponse(statusForError(err), "endpoint not found")
	}
}

// handleStatusRequest returns application status.
func (a *App) handleStatusRequest(req Request) Response {
	if resp := a.checkAdminAuth(req); resp != nil {
		return *resp
	}
	return jsonResponse(200, a.GetStatus())
}

// handleConfigRequest returns redacted configuration.
func (a *App) handleConfigRequest(req Request) Response {
	if resp := a.checkAdminAuth(req); resp != nil {
		return *resp
	}
	return jsonResponse(200, a.Config.Redacted())
}

// handlePublicConfig returns public configuration (no auth required).
func (a *App) handlePublicConfig() Response {
	return jsonResponse(200, map[string]any{
		"locale":            a.Formatter.Locale(),
		"base_path":         a.Config.BasePath,
		"max_distributions": constants.MaxDistributions,
	})
}

// handleDispatch applies a single JSON encoded action.
func (a *App) handleDispatch(ctx context.Context, req Request) Response {
	var action types.Action
	if err := jsonutil.DecodeStrict(req.Body, &action); err != nil {
		return errorResponse(400, "invalid action request body: "+err.Error())
	}

	view, err := a.Dispatch(ctx, action)
	if err != nil {
		return errorResponse(statusForError(err), err.Error())
	}
	return jsonResponse(200, view)
}

// handleFormSubmit applies an urlencoded form post and redirects back to the form.
func (a *App) handleFormSubmit(ctx context.Context, req Request) Response {
	form, err := url.ParseQuery(string(req.Body))
	if err != nil {
		return errorResponse(400, "invalid form body")
	}

	if err := a.SubmitForm(ctx, form); err != nil {
		return errorResponse(statusForError(err), err.Error())
	}

	return Response{
		StatusCode: 303,
		Headers:    map[string]string{"Location": a.Config.BasePath + "/"},
	}
}

// handleUI serves the rendered form.
func (a *App) handleUI() Response {
	html, err := a.getFormHTML()
	if err != nil {
		return errorResponse(500, "failed to render form: "+err.Error())
	}
	return Response{
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Headers:     map[string]string{"Cache-Control": "no-store"},
		Body:        []byte(html),
	}
}

// handleStaticFile serves an embedded asset.
func (a *App) handleStaticFile(filename, contentType string) Response {
	data, err := templates.FS.ReadFile(filename)
	if err != nil {
		return errorResponse(500, "failed to load "+filename+": "+err.Error())
	}
	return Response{
		StatusCode:  200,
		ContentType: contentType,
		Headers:     map[string]string{"Cache-Control": "public, max-age=" + strconv.Itoa(constants.StaticFileCacheDuration)},
		Body:        data,
	}
}

func statusForError(err error) int {
	switch {
	case internalerrors.IsInvalidInput(err):
		return 400
	case internalerrors.IsNotFound(err):
		return 404
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 503
	default:
		return 500
	}
}

func jsonResponse(status int, data any) Response {
	body, err := json.Marshal(data)
	if err != nil {
		return errorResponse(500, "failed to encode response")
	}
	return Response{
		StatusCode:  status,
		ContentType: "application/json",
		Headers:     map[string]string{"Content-Type": "application/json"},
		Body:        body,
	}
}

func errorResponse(status int, message string) Response {
	return Response{
		StatusCode:  status,
		ContentType: "application/json",
		Headers:     map[string]string{"Content-Type": "application/json"},
		Body:        jsonutil.ErrorBody(message),
	}
}

func (a *App) checkAdminAuth(req Request) *Response {
	if a.Config.AdminToken == "" {
		return nil
	}

	authHeader := req.Headers["authorization"]
	if authHeader == "" {
		resp := errorResponse(401, "missing authorization header")
		return &resp
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		token = strings.TrimPrefix(authHeader, "bearer ")
	}

	if token != a.Config.AdminToken {
		resp := errorResponse(401, "invalid authorization token")
		return &resp
	}

	return nil
}
