package db

import (
	"context"
	"errors"
	"time"

	"meal-coupon/metrics"
	"meal-coupon/registration"

	"gorm.io/gorm"
)

// GormStore is the SQL implementation of registration.Repository.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, reg *registration.Registration) error {
	defer metrics.RecordStoreOperation("create", "gorm", time.Now())

	row := fromDomain(reg)
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		dup := &registration.DuplicatePaymentReferenceError{Reference: reg.PaymentReference}
		if existing, gerr := s.GetByPaymentReference(ctx, reg.PaymentReference); gerr == nil {
			dup.Team = existing.TeamName
		}
		return dup
	}
	if err != nil {
		return &registration.StoreError{Op: "create", Err: err}
	}
	return nil
}

func (s *GormStore) GetByID(ctx context.Context, id string) (*registration.Registration, error) {
	defer metrics.RecordStoreOperation("get_by_id", "gorm", time.Now())
	return s.first(ctx, "get_by_id", "id = ?", id)
}

func (s *GormStore) GetByPaymentReference(ctx context.Context, ref string) (*registration.Registration, error) {
	defer metrics.RecordStoreOperation("get_by_payment_reference", "gorm", time.Now())
	return s.first(ctx, "get_by_payment_reference", "payment_reference = ?", ref)
}

func (s *GormStore) first(ctx context.Context, op, query string, arg interface{}) (*registration.Registration, error) {
	var row Registration
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, registration.ErrNotFound
	}
	if err != nil {
		return nil, &registration.StoreError{Op: op, Err: err}
	}
	reg := row.toDomain()
	return &reg, nil
}

func (s *GormStore) GetByCode(ctx context.Context, code string) ([]registration.Registration, error) {
	defer metrics.RecordStoreOperation("get_by_code", "gorm", time.Now())

	var rows []Registration
	err := s.db.WithContext(ctx).
		Where("verification_code = ?", code).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, &registration.StoreError{Op: "get_by_code", Err: err}
	}
	return toDomainSlice(rows), nil
}

func (s *GormStore) ListAll(ctx context.Context) ([]registration.Registration, error) {
	defer metrics.RecordStoreOperation("list_all", "gorm", time.Now())

	var rows []Registration
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id").Find(&rows).Error; err != nil {
		return nil, &registration.StoreError{Op: "list_all", Err: err}
	}
	return toDomainSlice(rows), nil
}

// SetVerified flips is_verified with a single conditional UPDATE. Only the caller whose
// update touches the row wins, every other caller gets ErrAlreadyVerified.
func (s *GormStore) SetVerified(ctx context.Context, id string, at time.Time, token string) (*registration.Registration, error) {
	defer metrics.RecordStoreOperation("set_verified", "gorm", time.Now())

	res := s.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]interface{}{
			"is_verified":   true,
			"verified_at":   at,
			"redemption_id": token,
		})
	if res.Error != nil {
		return nil, &registration.StoreError{Op: "set_verified", Err: res.Error}
	}

	if res.RowsAffected == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, registration.ErrAlreadyVerified
	}
	return s.GetByID(ctx, id)
}

func (s *GormStore) SetPaymentStatus(ctx context.Context, id string, status registration.PaymentStatus) (*registration.Registration, error) {
	defer metrics.RecordStoreOperation("set_payment_status", "gorm", time.Now())

	// MySQL reports zero affected rows for an unchanged value, so existence is checked by reading back
	err := s.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ?", id).
		Update("payment_status", string(status)).Error
	if err != nil {
		return nil, &registration.StoreError{Op: "set_payment_status", Err: err}
	}
	return s.GetByID(ctx, id)
}

func toDomainSlice(rows []Registration) []registration.Registration {
	out := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
