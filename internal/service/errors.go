package service

import (
	"errors"
	"fmt"
	"strings"

	"product-catalog/internal/repository"
	"product-catalog/internal/validation"
)

// ValidationError reports that the request broke one or more catalog rules
type ValidationError struct {
	Failures []validation.Failure
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the failure messages in rule order
func (e *ValidationError) Messages() []string {
	return validation.Outcome{Failures: e.Failures}.Messages()
}

// DuplicateKeyError reports a SKU or name+brand collision detected after
// validation passed, typically a concurrent insert of the same product.
type DuplicateKeyError struct {
	Field string
	Value string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps any other storage fault. Integrity violations
// reported by the store are still PersistenceErrors; see ConstraintViolation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConstraintViolation reports whether the store rejected the write on an
// integrity constraint rather than failing outright.
func (e *PersistenceError) ConstraintViolation() bool {
	return errors.Is(e.Err, repository.ErrConstraintViolation)
}
