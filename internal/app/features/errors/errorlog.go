// internal/app/features/errors/errorlog.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger pairs server-side logging with user-facing error pages
// so handlers report failures in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger around the given logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs the underlying error with request context and
// renders a friendly error page with userMsg. The logged message and
// the user-facing message are deliberately separate so internals never
// leak into the page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	data := basePageData(r, "Something went wrong", userMsg, backURL, "/")
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", data)
}

// LogBadRequest logs a malformed request at warn level and renders a
// friendly bad-request page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	data := basePageData(r, "Bad request", userMsg, backURL, "/")
	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_page", data)
}

// LogIntegrityViolation logs a data-integrity denial (for example a
// resource with no owner) at error level with a distinct marker, then
// renders an access-denied page. These are never ordinary permission
// misses and need to stand out in the logs.
func (e *ErrorLogger) LogIntegrityViolation(w http.ResponseWriter, r *http.Request, detail string, backURL string) {
	e.log.Error("integrity violation",
		zap.String("detail", detail),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	data := basePageData(r, "Access denied", "You don't have permission to do that.", backURL, "/")
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}
