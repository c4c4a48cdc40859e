package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	svcerrors "github.com/R3E-Network/stockboard/internal/errors"
	"github.com/R3E-Network/stockboard/internal/logging"
)

const maxBodyBytes = 1 << 20

// TraceIDHeader carries the request trace id in both directions.
const TraceIDHeader = "X-Trace-ID"

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes data as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes the standard error body. The trace id, when the
// request carries one, travels in the X-Trace-ID header rather than the body.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string, details map[string]interface{}) {
	if r != nil {
		if traceID := logging.GetTraceID(r.Context()); traceID != "" && w.Header().Get(TraceIDHeader) == "" {
			w.Header().Set(TraceIDHeader, traceID)
		}
	}
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// WriteError renders err, using its ServiceError status when it has one and
// 500 otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := svcerrors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = svcerrors.Internal("", err)
	}
	WriteErrorResponse(w, r, serviceErr.HTTPStatus, serviceErr.Message, serviceErr.Details)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, svcerrors.Unauthorized(""))
}

// BadRequest writes a 400 response with message.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, svcerrors.Validation(message, nil))
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, svcerrors.NotFound("", nil))
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set, and is an error otherwise.
func DecodeJSON(r *http.Request, dst interface{}, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return svcerrors.Validation("request body required", nil)
	}
	defer r.Body.Close()

	body, err := ReadAllStrict(r.Body, maxBodyBytes)
	if err != nil {
		return svcerrors.Validation("request body too large", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		if allowEmpty {
			return nil
		}
		return svcerrors.Validation("request body required", nil)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return svcerrors.Validation("invalid JSON body", err)
		}
		return svcerrors.Validation(fmt.Sprintf("invalid request body: %v", err), err)
	}
	return nil
}
