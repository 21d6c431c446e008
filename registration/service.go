package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"meal-coupon/coupon"
	"meal-coupon/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultNotifyTimeout = 30 * time.Second

// Notifier delivers the coupon of a freshly created registration. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, reg Registration) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, reg Registration) error

func (f NotifierFunc) Notify(ctx context.Context, reg Registration) error { return f(ctx, reg) }

// Notifiers fans a registration out to every notifier. All are attempted.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, reg Registration) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(ctx, reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Service struct {
	repo          Repository
	menu          Menu
	notifier      Notifier
	log           *zap.Logger
	now           func() time.Time
	newCode       func() (string, error)
	newID         func() string
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

type Option func(*Service)

func WithMenu(m Menu) Option { return func(s *Service) { s.menu = m } }
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithNotifyTimeout(d time.Duration) Option { return func(s *Service) { s.notifyTimeout = d } }

// WithCodeGenerator replaces the random verification code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		menu:          DefaultMenu(),
		log:           zap.NewNop(),
		now:           time.Now,
		newCode:       coupon.GenerateCode,
		newID:         func() string { return uuid.New().String() },
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Menu() Menu { return s.menu }

// Register validates a submission, guards the payment reference, issues a code and
// persists the registration. The coupon notification is sent after the write commits
// and never affects the result.
func (s *Service) Register(ctx context.Context, sub Submission) (*Registration, error) {
	sub.normalize()
	if err := sub.Validate(s.menu); err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := s.checkUnique(ctx, sub.PaymentReference); err != nil {
		if errors.Is(err, ErrDuplicatePaymentReference) {
			metrics.Registrations.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	reg := &Registration{
		ID:               s.newID(),
		TeamName:         sub.TeamName,
		ContactName:      sub.ContactName,
		Phone:            sub.Phone,
		Email:            sub.Email,
		College:          sub.College,
		MealCounts:       sub.MealCounts.clone(),
		TotalPrice:       s.menu.Price(sub.MealCounts),
		PaymentReference: sub.PaymentReference,
		PaymentProofRef:  sub.PaymentProofRef,
		PaymentStatus:    PaymentPending,
		VerificationCode: code,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, ErrDuplicatePaymentReference) {
			metrics.Registrations.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.Registrations.WithLabelValues("created").Inc()
	s.log.Info("registration created",
		zap.String("id", reg.ID),
		zap.String("team", reg.TeamName),
		zap.Int("meals", reg.MealCounts.Total()),
		zap.Int64("total_price", reg.TotalPrice),
	)

	s.dispatch(*reg)
	return reg, nil
}

func (s *Service) checkUnique(ctx context.Context, ref string) error {
	existing, err := s.repo.GetByPaymentReference(ctx, ref)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check payment reference: %w", err)
	}
	return &DuplicatePaymentReferenceError{Reference: ref, Team: existing.TeamName}
}

func (s *Service) dispatch(reg Registration) {
	if s.notifier == nil {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, reg); err != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			s.log.Error("coupon notification failed",
				zap.String("id", reg.ID),
				zap.String("email", reg.Email),
				zap.Error(err),
			)
			return
		}
		metrics.Notifications.WithLabelValues("sent").Inc()
		s.log.Info("coupon notification sent", zap.String("id", reg.ID))
	}()
}

// Wait blocks until every notification started so far has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// ReviewPayment records the outcome of the manual payment screenshot review.
// It does not gate redemption.
func (s *Service) ReviewPayment(ctx context.Context, id string, status PaymentStatus) (*Registration, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"status": "must be pending, confirmed or rejected"}}
	}
	reg, err := s.repo.SetPaymentStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("payment reviewed", zap.String("id", id), zap.String("status", string(status)))
	return reg, nil
}

// List returns every registration, newest first.
func (s *Service) List(ctx context.Context) ([]Registration, error) {
	return s.repo.ListAll(ctx)
}
