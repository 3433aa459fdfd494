package diagram

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by ModelError.
var (
	ErrEmptyID         = errors.New("empty id")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownNode     = errors.New("unknown node")
	ErrClusterConflict = errors.New("node belongs to more than one cluster")
	ErrInvalidValue    = errors.New("invalid value")
)

// ModelError reports an inconsistency in a diagram model.
type ModelError struct {
	Kind   Kind   // diagram kind being validated
	ID     string // offending node, edge or group id
	Detail string // where the id was found, e.g. "edge 3 target"
	Err    error  // one of the sentinel errors above
}

func (e *ModelError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s diagram: %q: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s diagram: %s %q: %v", e.Kind, e.Detail, e.ID, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func modelErr(k Kind, id, detail string, err error) *ModelError {
	return &ModelError{Kind: k, ID: id, Detail: detail, Err: err}
}
