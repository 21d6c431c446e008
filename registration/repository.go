package registration

import (
	"context"
	"time"
)

// Repository is the only writer of registration state.
//
// Create must reject a second registration with the same payment reference with a
// *DuplicatePaymentReferenceError, even when two inserts race. SetVerified must be a
// single conditional update on is_verified that also stores the caller's redemption
// token, and return ErrAlreadyVerified when the registration was already redeemed. Lookups of a missing id return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByCode(ctx context.Context, code string) ([]Registration, error)
	GetByPaymentReference(ctx context.Context, ref string) (*Registration, error)
	ListAll(ctx context.Context) ([]Registration, error)
	SetVerified(ctx context.Context, id string, at time.Time, token string) (*Registration, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Registration, error)
}
