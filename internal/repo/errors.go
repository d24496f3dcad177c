package repo

import (
	"errors"
	"fmt"
	"strings"

	"tasknav/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// BackendUnavailableError wraps a transport or storage failure.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e BackendUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: backend unavailable", e.Op)
	}
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e BackendUnavailableError) Unwrap() error { return e.Err }

type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: invalid operation: %s", e.Op, e.Reason)
}

func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	// Keep the innermost classification when a backend error is re-wrapped.
	var nf NotFoundError
	var inv InvalidOperationError
	var un BackendUnavailableError
	if errors.As(err, &nf) || errors.As(err, &inv) || errors.As(err, &un) {
		return err
	}
	return BackendUnavailableError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var e NotFoundError
	return errors.As(err, &e)
}

func IsUnavailable(err error) bool {
	var e BackendUnavailableError
	return errors.As(err, &e)
}

func IsInvalid(err error) bool {
	var e InvalidOperationError
	return errors.As(err, &e)
}

// ValidateOrder checks that newOrder is a permutation of the children's ids.
func ValidateOrder(children []model.Task, newOrder []string) error {
	if len(newOrder) != len(children) {
		return InvalidOperationError{
			Op:     "reorder",
			Reason: fmt.Sprintf("expected %d ids, got %d", len(children), len(newOrder)),
		}
	}
	known := make(map[string]bool, len(children))
	for _, c := range children {
		known[c.ID] = true
	}
	seen := make(map[string]bool, len(newOrder))
	for _, id := range newOrder {
		if !known[id] {
			return InvalidOperationError{Op: "reorder", Reason: "not a child: " + id}
		}
		if seen[id] {
			return InvalidOperationError{Op: "reorder", Reason: "duplicate id: " + id}
		}
		seen[id] = true
	}
	return nil
}

// ValidateTitle rejects blank titles.
func ValidateTitle(op, title string) error {
	if strings.TrimSpace(title) == "" {
		return InvalidOperationError{Op: op, Reason: "empty title"}
	}
	return nil
}
