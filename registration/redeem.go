package registration

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"meal-coupon/metrics"

	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeRedeemed        Outcome = "redeemed"
	OutcomeAlreadyVerified Outcome = "already_verified"
)

// RedeemResult is the non-error result of a redemption. AlreadyVerified is reported here
// rather than as an error because it means the meal was already served.
type RedeemResult struct {
	Outcome      Outcome       `json:"outcome"`
	Registration *Registration `json:"registration"`
}

// Redeem moves registration id from pending to verified when code matches its
// verification code. The transition happens at most once per registration no matter
// how many stations submit the code concurrently.
func (s *Service) Redeem(ctx context.Context, id, code string) (RedeemResult, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.observeRedeem("error", err)
		return RedeemResult{}, err
	}

	if reg.IsVerified {
		s.observeRedeem(string(OutcomeAlreadyVerified), nil)
		return RedeemResult{Outcome: OutcomeAlreadyVerified, Registration: reg}, nil
	}

	if subtle.ConstantTimeCompare([]byte(reg.VerificationCode), []byte(code)) != 1 {
		s.observeRedeem("code_mismatch", nil)
		return RedeemResult{}, ErrCodeMismatch
	}

	at := s.now().UTC().Truncate(time.Millisecond)
	token := s.newID()
	updated, retried, err := s.markVerified(ctx, id, at, token)
	if errors.Is(err, ErrAlreadyVerified) {
		current, gerr := s.repo.GetByID(ctx, id)
		if gerr != nil {
			return RedeemResult{}, gerr
		}
		// a retried update may have landed on the first attempt
		if retried && current.RedemptionID == token {
			s.observeRedeem(string(OutcomeRedeemed), nil)
			return RedeemResult{Outcome: OutcomeRedeemed, Registration: current}, nil
		}
		s.observeRedeem(string(OutcomeAlreadyVerified), nil)
		return RedeemResult{Outcome: OutcomeAlreadyVerified, Registration: current}, nil
	}
	if err != nil {
		s.observeRedeem("error", err)
		return RedeemResult{}, err
	}

	s.observeRedeem(string(OutcomeRedeemed), nil)
	s.log.Info("coupon redeemed", zap.String("id", id), zap.String("team", updated.TeamName))
	return RedeemResult{Outcome: OutcomeRedeemed, Registration: updated}, nil
}

// markVerified retries a failed store update once.
func (s *Service) markVerified(ctx context.Context, id string, at time.Time, token string) (*Registration, bool, error) {
	reg, err := s.repo.SetVerified(ctx, id, at, token)

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		return reg, false, err
	}

	s.log.Warn("retrying redemption update", zap.String("id", id), zap.Error(err))
	reg, err = s.repo.SetVerified(ctx, id, at, token)
	return reg, true, err
}

// RedeemByCode is the manual entry path at the counter. The code is resolved first,
// with team disambiguating colliding codes, then redeemed against that registration.
func (s *Service) RedeemByCode(ctx context.Context, code, team string) (RedeemResult, error) {
	reg, err := s.ByCode(ctx, code, team)
	if err != nil {
		return RedeemResult{}, err
	}
	return s.Redeem(ctx, reg.ID, code)
}

func (s *Service) observeRedeem(outcome string, err error) {
	if errors.Is(err, ErrNotFound) {
		outcome = "not_found"
	}
	metrics.Redemptions.WithLabelValues(outcome).Inc()
}
