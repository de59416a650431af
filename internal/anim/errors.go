package anim

import (
	"errors"
	"fmt"
)

// MisuseErrorCode categorizes authoring bugs detected while tracing.
type MisuseErrorCode string

const (
	// ErrCodeSharedVariable: a variable is already claimed by another live
	// animation.
	ErrCodeSharedVariable MisuseErrorCode = "SHARED_VARIABLE"

	// ErrCodeShapeMismatch: a value's kind differs from the variable's kind.
	ErrCodeShapeMismatch MisuseErrorCode = "SHAPE_MISMATCH"

	// ErrCodeSegmentOverlap: a tween was started on a variable before its
	// previous tween ended.
	ErrCodeSegmentOverlap MisuseErrorCode = "SEGMENT_OVERLAP"
)

// MisuseError reports an authoring bug. The write that triggered it has been
// skipped.
type MisuseError struct {
	Code       MisuseErrorCode
	Message    string
	VariableID string
	Owner      OwnerID
	Details    map[string]string
}

// Error implements the error interface.
func (e *MisuseError) Error() string {
	if e.VariableID != "" {
		return fmt.Sprintf("%s: %s (variable=%s, owner=%d)", e.Code, e.Message, e.VariableID, e.Owner)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewSharedVariableError creates an error for a variable claimed twice.
func NewSharedVariableError(variableID string, owner, holder OwnerID) *MisuseError {
	return &MisuseError{
		Code:       ErrCodeSharedVariable,
		Message:    "a variable cannot be shared across multiple animations",
		VariableID: variableID,
		Owner:      owner,
		Details: map[string]string{
			"held_by": fmt.Sprintf("%d", holder),
		},
	}
}

// NewShapeMismatchError creates an error for a value of the wrong kind.
func NewShapeMismatchError(variableID string, owner OwnerID, want, got Kind) *MisuseError {
	return &MisuseError{
		Code:       ErrCodeShapeMismatch,
		Message:    fmt.Sprintf("value shape mismatch (expected %s, got %s)", want, got),
		VariableID: variableID,
		Owner:      owner,
		Details: map[string]string{
			"expected": string(want),
			"got":      string(got),
		},
	}
}

// NewSegmentOverlapError creates an error for a tween starting before the
// variable's previous tween ended.
func NewSegmentOverlapError(variableID string, owner OwnerID, start, prevEnd int) *MisuseError {
	return &MisuseError{
		Code:       ErrCodeSegmentOverlap,
		Message:    fmt.Sprintf("tween starts at frame %d before previous tween ends at %d", start, prevEnd),
		VariableID: variableID,
		Owner:      owner,
	}
}

// IsMisuse reports whether err is a *MisuseError.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}

// IsSharedVariable reports whether err is a shared-variable misuse.
func IsSharedVariable(err error) bool {
	return hasCode(err, ErrCodeSharedVariable)
}

// IsShapeMismatch reports whether err is a shape misuse.
func IsShapeMismatch(err error) bool {
	return hasCode(err, ErrCodeShapeMismatch)
}

func hasCode(err error, code MisuseErrorCode) bool {
	var me *MisuseError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
