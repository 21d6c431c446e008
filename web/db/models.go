package db

import (
	"time"

	"meal-coupon/registration"
)

// Registration is the persisted form of registration.Registration.
type Registration struct {
	ID               string                  `gorm:"type:varchar(36);primaryKey"`
	TeamName         string                  `gorm:"type:varchar(100);not null"`
	ContactName      string                  `gorm:"type:varchar(100);not null"`
	Phone            string                  `gorm:"type:varchar(20);not null"`
	Email            string                  `gorm:"type:varchar(254);not null"`
	College          string                  `gorm:"type:varchar(150);not null"`
	MealCounts       registration.MealCounts `gorm:"serializer:json;type:text;not null"`
	TotalPrice       int64                   `gorm:"not null"`
	PaymentReference string                  `gorm:"type:varchar(128);uniqueIndex;not null"`
	PaymentProofRef  string                  `gorm:"type:varchar(512)"`
	PaymentStatus    string                  `gorm:"type:varchar(16);not null;index"`
	VerificationCode string                  `gorm:"type:varchar(6);not null;index"`
	IsVerified       bool                    `gorm:"not null"`
	VerifiedAt       *time.Time
	RedemptionID     string    `gorm:"type:varchar(36)"`
	CreatedAt        time.Time `gorm:"not null;index"`
}

func (Registration) TableName() string { return "registrations" }

func fromDomain(r *registration.Registration) Registration {
	return Registration{
		ID:               r.ID,
		TeamName:         r.TeamName,
		ContactName:      r.ContactName,
		Phone:            r.Phone,
		Email:            r.Email,
		College:          r.College,
		MealCounts:       r.MealCounts,
		TotalPrice:       r.TotalPrice,
		PaymentReference: r.PaymentReference,
		PaymentProofRef:  r.PaymentProofRef,
		PaymentStatus:    string(r.PaymentStatus),
		VerificationCode: r.VerificationCode,
		IsVerified:       r.IsVerified,
		VerifiedAt:       r.VerifiedAt,
		RedemptionID:     r.RedemptionID,
		CreatedAt:        r.CreatedAt,
	}
}

func (row Registration) toDomain() registration.Registration {
	return registration.Registration{
		ID:               row.ID,
		TeamName:         row.TeamName,
		ContactName:      row.ContactName,
		Phone:            row.Phone,
		Email:            row.Email,
		College:          row.College,
		MealCounts:       row.MealCounts,
		TotalPrice:       row.TotalPrice,
		PaymentReference: row.PaymentReference,
		PaymentProofRef:  row.PaymentProofRef,
		PaymentStatus:    registration.PaymentStatus(row.PaymentStatus),
		VerificationCode: row.VerificationCode,
		IsVerified:       row.IsVerified,
		VerifiedAt:       row.VerifiedAt,
		RedemptionID:     row.RedemptionID,
		CreatedAt:        row.CreatedAt,
	}
}
