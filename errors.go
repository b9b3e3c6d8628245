package corepipe

import (
	"fmt"
	"strings"
)

// FatalError is an error that stops processing of the whole file: a
// malformed header, or an internal invariant violated so badly that no
// further entity can be trusted (scheduler-fatal). Distinguished from RecoverableError by type so a caller
// can `errors.As` for it specifically instead of string-matching.
type FatalError struct {
	Phase   string
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal [%s]: %s", e.Phase, e.Message)
}

// NewFatalError returns a FatalError for phase with a formatted message.
func NewFatalError(phase, format string, args ...any) *FatalError {
	return &FatalError{Phase: phase, Message: fmt.Sprintf(format, args...)}
}

// RecoverableError concerns a single entity: a malformed attribute, an
// unsupported representation item, or a geometry fault. Processing of
// every other entity continues; the entity this error names simply
// produces no mesh.
type RecoverableError struct {
	Phase    string
	EntityID int64
	Message  string
}

func (e *RecoverableError) Error() string {
	return fmt.Sprintf("recoverable [%s] #%d: %s", e.Phase, e.EntityID, e.Message)
}

// NewRecoverableError returns a RecoverableError for entityID with a
// formatted message.
func NewRecoverableError(phase string, entityID int64, format string, args ...any) *RecoverableError {
	return &RecoverableError{Phase: phase, EntityID: entityID, Message: fmt.Sprintf(format, args...)}
}

// ParseErrors collects independent tokenizer/index faults discovered while
// scanning a file, mirroring ir.Validate's []ValidationError return: the
// caller gets every fault found in one pass rather than only the first.
type ParseErrors []*FatalError

func (el ParseErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d parse errors:\n%s", len(el), strings.Join(parts, "\n"))
}

// ValidationErrors collects independent geometry/void/placement faults
// found while processing a file's entities, one RecoverableError per
// affected entity.
type ValidationErrors []*RecoverableError

func (el ValidationErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors:\n%s", len(el), strings.Join(parts, "\n"))
}
