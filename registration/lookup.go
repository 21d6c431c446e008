package registration

import (
	"context"
	"strings"

	"meal-coupon/coupon"
)

func (s *Service) ByID(ctx context.Context, id string) (*Registration, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	return s.repo.GetByID(ctx, id)
}

// ByCode resolves a manually entered code. Codes are not unique, so when more than one
// registration shares the code the caller must supply the team name.
func (s *Service) ByCode(ctx context.Context, code, team string) (*Registration, error) {
	if !coupon.IsValidCode(code) {
		return nil, &ValidationError{Fields: map[string]string{"code": "must be 6 digits"}}
	}

	matches, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if team = strings.TrimSpace(team); team != "" {
		filtered := matches[:0:0]
		for _, m := range matches {
			if strings.EqualFold(m.TeamName, team) {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, &AmbiguousCodeError{Code: code, Count: len(matches)}
	}
}

// Resolve finds the registration a scanned QR payload refers to.
func (s *Service) Resolve(ctx context.Context, p coupon.Payload) (*Registration, error) {
	if p.HasID() {
		return s.ByID(ctx, p.ID)
	}
	return s.ByCode(ctx, p.Code, p.Team)
}
