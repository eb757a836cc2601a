// Package errs defines the error taxonomy shared by the resolution and
// location-assignment paths.
//
// Per-record outcomes (validation, unresolved, ambiguous) are summarised by the
// batch orchestrator and never abort a request. Per-request faults
// (referential, persistence) abort the whole unit of work.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnresolved
	KindAmbiguous
	KindNothingToCommit
	KindReferential
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnresolved:
		return "unresolved"
	case KindAmbiguous:
		return "ambiguous"
	case KindNothingToCommit:
		return "nothing_to_commit"
	case KindReferential:
		return "product_reference_missing"
	case KindPersistence:
		return "persistence_fault"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the operation that failed and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrUnresolved)
// holds for every unresolved error regardless of Op or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

var (
	ErrValidation              = &Error{Kind: KindValidation}
	ErrUnresolved              = &Error{Kind: KindUnresolved}
	ErrAmbiguous               = &Error{Kind: KindAmbiguous}
	ErrNothingToCommit         = &Error{Kind: KindNothingToCommit}
	ErrProductReferenceMissing = &Error{Kind: KindReferential}
	ErrPersistence             = &Error{Kind: KindPersistence}
)

func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Persistence(op string, err error) error {
	return E(KindPersistence, op, err)
}

func Referential(op string, err error) error {
	return E(KindReferential, op, err)
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether resubmitting the same request unchanged may succeed.
// A referential fault needs a catalog re-sync first.
func Retryable(err error) bool {
	return KindOf(err) == KindPersistence
}
