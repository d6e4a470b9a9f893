package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Stack   []string `json:"stack,omitempty"`
}

// boundary carries what handlers need to turn errors into responses.
type boundary struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	devMode bool
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writeList[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	n := len(rows)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: rows, Count: &n})
}

func writeError(w http.ResponseWriter, status int, msg string, stack []string) {
	writeJSON(w, status, envelope{Success: false, Error: msg, Stack: stack})
}

// ============================================================
// Request decoding
// ============================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// decodeBody strictly decodes the JSON body into dst and validates it.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return &domain.ErrValidation{Message: "request body must contain a single JSON object"}
	}
	return validateStruct(dst)
}

func bodyError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return &domain.ErrValidation{Message: "request body is required"}
	case errors.As(err, &typeErr):
		return &domain.ErrValidation{Field: typeErr.Field, Message: fmt.Sprintf("must be a %s", typeErr.Type)}
	case errors.As(err, &syntaxErr):
		return &domain.ErrValidation{Message: "invalid request body"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &domain.ErrValidation{Field: field, Message: "unknown field"}
	}
	return &domain.ErrValidation{Message: "invalid request body"}
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ErrValidation{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &domain.ErrValidation{Field: fe.Field(), Message: describeFieldError(fe)}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	}
	return "is invalid"
}

// ============================================================
// Path & query parameters
// ============================================================

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryIDs returns the value of an optional positive integer query
// parameter as a one-element filter slice.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, &domain.ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return []int64{id}, nil
}

type queryParam struct {
	name string
	dst  *[]int64
}

// bindQueryIDs fills each destination from its query parameter, stopping at
// the first invalid value.
func bindQueryIDs(r *http.Request, params ...queryParam) error {
	for _, p := range params {
		ids, err := queryIDs(r, p.name)
		if err != nil {
			return err
		}
		*p.dst = ids
	}
	return nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &domain.ErrValidation{Field: name, Message: "must be true or false"}
	}
	return &v, nil
}

// ============================================================
// Error boundary
// ============================================================

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, b *boundary) {
	var notFound *domain.ErrNotFound
	var validation *domain.ErrValidation
	var invalidRef *domain.ErrInvalidReference
	var invariant *domain.ErrInvariantViolation
	var conflict *domain.ErrConflict
	var converted *domain.ErrAlreadyConverted
	var selfDeletion *domain.ErrSelfDeletion
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden

	var status int
	var kind, msg string
	switch {
	case errors.As(err, &validation):
		status, kind, msg = http.StatusBadRequest, "validation", validation.Error()
		b.logger.Debug("validation error", zap.String("error", err.Error()))
	case errors.As(err, &invalidRef):
		status, kind, msg = http.StatusBadRequest, "invalid_reference", invalidRef.Error()
		b.logger.Debug("invalid reference", zap.String("field", invalidRef.Field))
	case errors.As(err, &invariant):
		status, kind, msg = http.StatusBadRequest, "invariant_violation", invariant.Error()
		b.logger.Debug("invariant violation", zap.String("error", err.Error()))
	case errors.As(err, &converted):
		status, kind, msg = http.StatusBadRequest, "already_converted", converted.Error()
		b.logger.Debug("lead already converted", zap.Int64("lead_id", converted.LeadID))
	case errors.As(err, &selfDeletion):
		status, kind, msg = http.StatusBadRequest, "self_deletion", selfDeletion.Error()
		b.logger.Debug("self deletion attempt")
	case errors.As(err, &conflict):
		status, kind, msg = http.StatusConflict, "duplicate_conflict", conflict.Error()
		b.logger.Debug("duplicate resource", zap.Strings("fields", conflict.Fields))
	case errors.As(err, &notFound):
		status, kind, msg = http.StatusNotFound, "not_found", notFound.Error()
		b.logger.Debug("not found", zap.String("error", err.Error()))
	case errors.As(err, &unauthorized):
		status, kind, msg = http.StatusUnauthorized, "unauthorized", unauthorized.Error()
		b.metrics.IncrAuthFailure(unauthorized.Reason)
		b.logger.Warn("unauthorized",
			zap.String("reason", unauthorized.Reason),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
	case errors.As(err, &forbidden):
		status, kind, msg = http.StatusForbidden, "forbidden", forbidden.Error()
		b.metrics.IncrAuthFailure(forbidden.Reason)
		b.logger.Warn("forbidden access",
			zap.String("reason", forbidden.Reason),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
	default:
		b.metrics.IncrDomainError("internal")
		b.logger.Error("unhandled error", zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, "internal server error", b.stack(err))
		return
	}

	b.metrics.IncrDomainError(kind)
	writeError(w, status, msg, b.stack(err))
}

// stack renders the wrapped error chain followed by the goroutine stack.
// Only development builds expose it.
func (b *boundary) stack(err error) []string {
	if !b.devMode {
		return nil
	}
	var out []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, fmt.Sprintf("%T: %s", e, e.Error()))
	}
	return append(out, strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")...)
}
