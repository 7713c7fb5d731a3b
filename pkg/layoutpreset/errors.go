package layoutpreset

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNodeNotFound indicates a content node was not found
	ErrNodeNotFound = errors.New("content node not found")

	// ErrTypeNotFound indicates a type descriptor was not found
	ErrTypeNotFound = errors.New("type descriptor not found")

	// ErrDeviceNotFound indicates a layout has no variant for the requested device
	ErrDeviceNotFound = errors.New("device variant not found")

	// ErrAnchorNotFound indicates a preset layout has no anchor rendering
	ErrAnchorNotFound = errors.New("preset anchor rendering not found")

	// ErrMissingArgument indicates a mandatory argument was empty
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidLayout indicates a raw layout document could not be parsed
	ErrInvalidLayout = errors.New("invalid layout document")
)

// IntegrityError is a fatal contract violation that aborts the calling action.
// Identifier names the missing or inconsistent piece for diagnostics.
type IntegrityError struct {
	Op         string
	Identifier string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity failure in %s (%s): %v", e.Op, e.Identifier, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// NodeError represents a repository failure for a content node
type NodeError struct {
	NodeID uuid.UUID
	Op     string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node operation %s failed for node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsIntegrityError reports whether err is or wraps an *IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

func missingArgument(op, name string) error {
	return &IntegrityError{Op: op, Identifier: name, Err: ErrMissingArgument}
}
