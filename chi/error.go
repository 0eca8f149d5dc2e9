package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fwojciec/opra"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	opra.ECONFLICT:    http.StatusConflict,
	opra.EINVALID:     http.StatusBadRequest,
	opra.ENOTFOUND:    http.StatusNotFound,
	opra.EUNAVAILABLE: http.StatusBadGateway,
	opra.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body of a failed call.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`

	// Reasoning explains a failed discovery.
	Reasoning []string `json:"reasoning,omitempty"`
}

// Error writes err as JSON. Internal errors are logged and hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, reasoning []string) {
	code, message := opra.ErrorCode(err), opra.ErrorMessage(err)
	if code == opra.EINTERNAL {
		slog.Default().Error("internal error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, ErrorStatusCode(code), &ErrorResponse{Code: code, Error: message, Reasoning: reasoning})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
