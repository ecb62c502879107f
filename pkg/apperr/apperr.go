// Package apperr holds the error classes shared by the evaluation pipeline,
// the stores and the upstream clients. Every terminal action and HTTP handler
// classifies failures through these types.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError is raised before any external call when input is missing,
// non-numeric or otherwise rejected.
type ValidationError struct {
	Fields []string // offending field names, if any
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Fields) > 0 && e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
	case len(e.Fields) > 0:
		return "missing or non-numeric: " + strings.Join(e.Fields, ", ")
	case e.Reason != "":
		return e.Reason
	}
	return "invalid input"
}

// Invalid builds a ValidationError without field names.
func Invalid(reason string) error { return &ValidationError{Reason: reason} }

// MissingFields builds a ValidationError naming the offending fields.
func MissingFields(fields ...string) error { return &ValidationError{Fields: fields} }

// EngineErrorKind separates a crashed engine from one that produced garbage.
type EngineErrorKind string

const (
	ProcessFailed EngineErrorKind = "process_failed"
	BadOutput     EngineErrorKind = "bad_output"
)

// EngineError is returned by the prediction engine adapters.
type EngineError struct {
	Kind   EngineErrorKind
	Detail string // stderr or the raw document, for logs only
	Err    error
}

func (e *EngineError) Error() string {
	msg := "engine " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EngineError) Unwrap() error { return e.Err }

// PersistError wraps a durable-store failure.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist %s: %v", e.Op, e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// Persist wraps err unless it is nil or already classified.
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &PersistError{Op: op, Err: err}
}

// UpstreamError is a failure reported by the weather or AI collaborators.
type UpstreamError struct {
	Service string
	Message string // provider message, may be empty
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Service + " unavailable"
	if e.Message != "" {
		msg = e.Service + ": " + e.Message
	}
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream builds an UpstreamError.
func Upstream(service, message string, err error) error {
	return &UpstreamError{Service: service, Message: message, Err: err}
}

// Describe renders err as a short human-readable message. Internal detail
// (stderr, raw output, driver errors) never reaches the caller.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		ee *EngineError
		pe *PersistError
		ue *UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ee):
		return "evaluation unavailable"
	case errors.As(err, &pe):
		return "could not save"
	case errors.As(err, &ue):
		if ue.Message != "" {
			return ue.Message
		}
		return ue.Service + " unavailable, please try again later"
	}
	return "service error, please try again later"
}

// Kind names the class of err for logs and metrics.
func Kind(err error) string {
	var (
		ve *ValidationError
		ee *EngineError
		pe *PersistError
		ue *UpstreamError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ee):
		return string(ee.Kind)
	case errors.As(err, &pe):
		return "persist"
	case errors.As(err, &ue):
		return "upstream"
	}
	return "internal"
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch Kind(err) {
	case "ok":
		return http.StatusOK
	case "validation":
		return http.StatusBadRequest
	case string(ProcessFailed), string(BadOutput), "upstream":
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Response builds the status and JSON body an HTTP handler returns for err.
func Response(err error) (int, map[string]any) {
	body := map[string]any{"message": Describe(err), "kind": Kind(err)}
	var ve *ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		body["fields"] = ve.Fields
	}
	return Status(err), body
}
