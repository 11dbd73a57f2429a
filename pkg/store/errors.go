package store

import "fmt"

// NotFoundError reports that an identity did not resolve to an entity
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ConflictError reports a uniqueness or revision violation
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	_, ok := err.(*ConflictError)
	return ok
}

// RevisionError reports a conditional update whose expected revision was stale
type RevisionError struct {
	Resource string
	ID       string
	Expected int64
	Actual   int64
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("%s %s revision mismatch: expected %d, have %d", e.Resource, e.ID, e.Expected, e.Actual)
}

// IsRevisionMismatch checks if an error is a RevisionError
func IsRevisionMismatch(err error) bool {
	_, ok := err.(*RevisionError)
	return ok
}

// LimitExceededError reports an organization usage limit violation
type LimitExceededError struct {
	Resource string
	Current  int
	Limit    int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("organization limit reached for %s (%d/%d)", e.Resource, e.Current, e.Limit)
}

// IsLimitExceeded checks if an error is a LimitExceededError
func IsLimitExceeded(err error) bool {
	_, ok := err.(*LimitExceededError)
	return ok
}

// DependentResourcesError reports a removal blocked by dependent entities
type DependentResourcesError struct {
	Resource  string
	Dependent string
	Count     int
}

func (e *DependentResourcesError) Error() string {
	return fmt.Sprintf("%s still owns %d %s", e.Resource, e.Count, e.Dependent)
}

// HasDependents checks if an error is a DependentResourcesError
func HasDependents(err error) bool {
	_, ok := err.(*DependentResourcesError)
	return ok
}

// ImmutableFieldError reports an attempt to reassign an owning-parent
// reference through a plain update
type ImmutableFieldError struct {
	Resource string
	Field    string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s.%s cannot be changed by update", e.Resource, e.Field)
}
