// Package toolerr defines the typed error payload returned by every texture
// synchronization operation.
//
// An Error is never thrown across the core boundary; it is returned as a value
// and serialized as-is by the server:
//
//	{
//	  "code": "usage_mismatch",
//	  "message": "uv usage id does not match the current layout",
//	  "fix": "Call texture_preflight and retry with the refreshed uvUsageId.",
//	  "details": {"reason": "usage_mismatch", "expected": "...", "current": "..."}
//	}
//
// Details["reason"] is the stable discriminator. The recovery coordinator keys
// its retry predicate on it, so reasons must never be renamed.
package toolerr

import (
	"errors"
	"fmt"
)

// Code classifies an error into the taxonomy exposed to callers.
type Code string

// Error codes.
const (
	CodeInvalidPayload         Code = "invalid_payload"
	CodeInvalidState           Code = "invalid_state"
	CodeRevisionMissing        Code = "revision_missing"
	CodeRevisionMismatch       Code = "revision_mismatch"
	CodeUsageMismatch          Code = "usage_mismatch"
	CodeUvOverlap              Code = "uv_overlap"
	CodeUvScaleMismatch        Code = "uv_scale_mismatch"
	CodeUnresolvedReferences   Code = "unresolved_references"
	CodeAtlasOverflow          Code = "atlas_overflow"
	CodeNotImplemented         Code = "not_implemented"
	CodeRecoveryGuardTriggered Code = "recovery_guard_triggered"
	CodeUnknown                Code = "unknown"
)

// Stable reasons carried in Details["reason"].
const (
	ReasonInvalidPayload   = "invalid_payload"
	ReasonInvalidOp        = "invalid_op"
	ReasonOutsideTarget    = "outside_target"
	ReasonTextureNotFound  = "texture_not_found"
	ReasonRevisionMissing  = "revision_missing"
	ReasonRevisionMismatch = "revision_mismatch"
	ReasonUsageMismatch    = "usage_mismatch"
	ReasonUvOverlap        = "uv_overlap"
	ReasonUvScaleMismatch  = "uv_scale_mismatch"
	ReasonUnresolvedRefs   = "unresolved_refs"
	ReasonNoRects          = "no_rects"
	ReasonNoBounds         = "no_bounds"
	ReasonNoTextures       = "no_textures"
	ReasonResolutionMiss   = "resolution_missing"
	ReasonAtlasOverflow    = "atlas_overflow"
	ReasonNotImplemented   = "not_implemented"
	ReasonRecoveryGuard    = "recovery_guard"
	ReasonNoProject        = "no_project"
	ReasonUnknown          = "unknown"
)

// Error is the typed failure result of a core operation.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Fix     string         `json:"fix,omitempty"`
	Details map[string]any `json:"details"`
}

// New creates an Error with the given code, reason and message.
func New(code Code, reason, message, fix string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Fix:     fix,
		Details: map[string]any{"reason": reason},
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Reason returns Details["reason"], or ReasonUnknown when absent.
func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	if r, ok := e.Details["reason"].(string); ok {
		return r
	}
	return ReasonUnknown
}

// With sets a detail field and returns the receiver for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// From converts any error into an *Error. Foreign errors become CodeUnknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return New(CodeUnknown, ReasonUnknown, err.Error(), "Inspect the message and retry; report the failure if it persists.")
}

// ReasonOf returns the stable reason of err, or "" for nil.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	return From(err).Reason()
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return From(err).Code == code
}
