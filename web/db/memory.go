package db

import (
	"context"
	"sync"
	"time"

	"meal-coupon/metrics"
	"meal-coupon/registration"

	"github.com/google/btree"
)

type createdKey struct {
	at time.Time
	id string
}

func createdLess(a, b createdKey) bool {
	if !a.at.Equal(b.at) {
		return a.at.Before(b.at)
	}
	return a.id < b.id
}

// MemoryStore keeps registrations in process, for development runs and tests.
// Records are ordered by creation time in a B-tree so listing needs no sort.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*registration.Registration
	byRef  map[string]string
	byCode map[string][]string
	order  *btree.BTreeG[createdKey]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*registration.Registration),
		byRef:  make(map[string]string),
		byCode: make(map[string][]string),
		order:  btree.NewG(8, createdLess),
	}
}

func (s *MemoryStore) Create(_ context.Context, reg *registration.Registration) error {
	defer metrics.RecordStoreOperation("create", "memory", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byRef[reg.PaymentReference]; ok {
		return &registration.DuplicatePaymentReferenceError{
			Reference: reg.PaymentReference,
			Team:      s.byID[id].TeamName,
		}
	}

	stored := clone(reg)
	s.byID[reg.ID] = stored
	s.byRef[reg.PaymentReference] = reg.ID
	s.byCode[reg.VerificationCode] = append(s.byCode[reg.VerificationCode], reg.ID)
	s.order.ReplaceOrInsert(createdKey{at: reg.CreatedAt, id: reg.ID})
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.byID[id]
	if !ok {
		return nil, registration.ErrNotFound
	}
	return clone(reg), nil
}

func (s *MemoryStore) GetByCode(_ context.Context, code string) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCode[code]
	out := make([]registration.Registration, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *clone(s.byID[ids[i]]))
	}
	return out, nil
}

func (s *MemoryStore) GetByPaymentReference(_ context.Context, ref string) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[ref]
	if !ok {
		return nil, registration.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]registration.Registration, 0, s.order.Len())
	s.order.Descend(func(k createdKey) bool {
		out = append(out, *clone(s.byID[k.id]))
		return true
	})
	return out, nil
}

func (s *MemoryStore) SetVerified(_ context.Context, id string, at time.Time, token string) (*registration.Registration, error) {
	defer metrics.RecordStoreOperation("set_verified", "memory", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byID[id]
	if !ok {
		return nil, registration.ErrNotFound
	}
	if reg.IsVerified {
		return nil, registration.ErrAlreadyVerified
	}
	reg.IsVerified = true
	reg.VerifiedAt = &at
	reg.RedemptionID = token
	return clone(reg), nil
}

func (s *MemoryStore) SetPaymentStatus(_ context.Context, id string, status registration.PaymentStatus) (*registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.byID[id]
	if !ok {
		return nil, registration.ErrNotFound
	}
	reg.PaymentStatus = status
	return clone(reg), nil
}

func clone(r *registration.Registration) *registration.Registration {
	c := *r
	if r.MealCounts != nil {
		c.MealCounts = make(registration.MealCounts, len(r.MealCounts))
		for k, v := range r.MealCounts {
			c.MealCounts[k] = v
		}
	}
	if r.VerifiedAt != nil {
		at := *r.VerifiedAt
		c.VerifiedAt = &at
	}
	return &c
}
