package registration

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound                  = errors.New("registration not found")
	ErrAlreadyVerified           = errors.New("coupon already verified")
	ErrCodeMismatch              = errors.New("verification code does not match")
	ErrDuplicatePaymentReference = errors.New("payment reference already used")
	ErrAmbiguousCode             = errors.New("verification code matches more than one registration")
)

// ValidationError lists the fields of a submission that need fixing.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid registration: " + strings.Join(parts, "; ")
}

// DuplicatePaymentReferenceError names the team that already used the reference.
type DuplicatePaymentReferenceError struct {
	Reference string
	Team      string
}

func (e *DuplicatePaymentReferenceError) Error() string {
	return fmt.Sprintf("payment reference %s already used by team %q", e.Reference, e.Team)
}

func (e *DuplicatePaymentReferenceError) Is(target error) bool {
	return target == ErrDuplicatePaymentReference
}

type AmbiguousCodeError struct {
	Code  string
	Count int
}

func (e *AmbiguousCodeError) Error() string {
	return fmt.Sprintf("code %s matches %d registrations, team name required", e.Code, e.Count)
}

func (e *AmbiguousCodeError) Is(target error) bool {
	return target == ErrAmbiguousCode
}

// StoreError is a failure of the backing store itself, not a business outcome.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// UpstreamError is a failure of a non-critical collaborator (object storage, email).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Service + " unavailable: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }
