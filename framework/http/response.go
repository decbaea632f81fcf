package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/goboot/framework/container"
	"github.com/km-arc/goboot/framework/module"
)

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// JSON sends v with the given status.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, v any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(v)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Error sends {"message": message} with status.
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// Problem maps a bootstrap or container error onto a status code and sends
// it with the error's kind:
//
//	{"message": "...", "kind": "module_not_found"}
func (res *Response) Problem(err error) {
	status, kind := Classify(err)
	res.JSON(status, envelope{"message": err.Error(), "kind": kind})
}

// Classify returns the HTTP status and a stable kind string for err.
func Classify(err error) (int, string) {
	var (
		unresolvable *module.UnresolvableModuleError
		notFound     *module.NotFoundError
		importErr    *module.ImportError
		notBound     container.NotBoundError
		missing      container.MissingDependencyError
		cycle        container.CircularDependencyError
	)
	switch {
	case errors.As(err, &unresolvable):
		return http.StatusBadRequest, "unresolvable_module"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "module_not_found"
	case errors.As(err, &importErr):
		return http.StatusInternalServerError, "module_import_failed"
	case errors.As(err, &notBound):
		return http.StatusNotFound, "not_bound"
	case errors.As(err, &missing):
		return http.StatusInternalServerError, "missing_dependency"
	case errors.As(err, &cycle):
		return http.StatusInternalServerError, "circular_dependency"
	case errors.Is(err, container.ErrFactoryPanic):
		return http.StatusInternalServerError, "factory_panic"
	}
	return http.StatusInternalServerError, "internal"
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
