package web

// errors.go turns service errors into HTTP responses.
//
// Record endpoints answer with a coded middleware.ErrorResponse built from
// core.MapError. The exportUserData callable answers in the callable wire
// shape instead: {"error": {"status": ..., "message": ...}}. Either way the
// technical error is logged with the request ID and never sent to the
// client.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/mealplan/internal/core"
	"github.com/JonMunkholm/mealplan/internal/logging"
	"github.com/JonMunkholm/mealplan/internal/web/middleware"
)

// respondError logs err and writes its mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	writeJSON(w, r, status, middleware.NewErrorResponse(msg))
}

// statusFor picks the HTTP status for a record operation error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrUnknownCollection), errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Callable wire statuses.
const (
	statusUnauthenticated = "UNAUTHENTICATED"
	statusInvalidArgument = "INVALID_ARGUMENT"
	statusInternal        = "INTERNAL"
)

type callableError struct {
	Error callableStatus `json:"error"`
}

type callableStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// respondCallableError writes an export failure in the callable shape.
// Errors that are not *core.ExportError are treated as internal.
func respondCallableError(w http.ResponseWriter, r *http.Request, err error) {
	var ee *core.ExportError
	if !errors.As(err, &ee) {
		ee = &core.ExportError{Kind: core.KindInternal, Message: core.MsgExportFailed, Err: err}
	}

	status, code := statusInternal, http.StatusInternalServerError
	switch ee.Kind {
	case core.KindUnauthenticated:
		status, code = statusUnauthenticated, http.StatusUnauthorized
	case core.KindInvalidArgument:
		status, code = statusInvalidArgument, http.StatusBadRequest
	}

	log := logging.FromContext(r.Context())
	if code == http.StatusInternalServerError {
		log.Error("callable error", "path", r.URL.Path, "status", status, "error", err)
	} else {
		log.Warn("callable rejected", "path", r.URL.Path, "status", status, "reason", ee.Message)
	}

	writeJSON(w, r, code, callableError{Error: callableStatus{Status: status, Message: ee.Message}})
}
