package registration

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is a registrant's request for a team meal coupon.
type Submission struct {
	TeamName         string     `json:"team_name" validate:"required,max=100"`
	ContactName      string     `json:"contact_name" validate:"required,max=100"`
	Phone            string     `json:"phone" validate:"required,max=20"`
	Email            string     `json:"email" validate:"required,email,max=254"`
	College          string     `json:"college" validate:"required,max=150"`
	MealCounts       MealCounts `json:"meal_counts"`
	PaymentReference string     `json:"payment_reference" validate:"required,max=128"`
	PaymentProofRef  string     `json:"payment_proof_ref" validate:"omitempty,max=512"`
}

// MaxMealsPerCategory bounds each meal count so totals and prices stay far from overflow.
const MaxMealsPerCategory = 500

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizeReference is the canonical form payment references are compared in.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

func (s *Submission) normalize() {
	s.TeamName = strings.TrimSpace(s.TeamName)
	s.ContactName = strings.TrimSpace(s.ContactName)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	s.College = strings.TrimSpace(s.College)
	s.PaymentReference = NormalizeReference(s.PaymentReference)
	s.PaymentProofRef = strings.TrimSpace(s.PaymentProofRef)
}

// Validate checks required fields and the meal counts against the menu.
func (s Submission) Validate(menu Menu) error {
	fields := map[string]string{}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
	}

	for c, n := range s.MealCounts {
		if _, ok := menu[c]; !ok {
			fields["meal_counts"] = fmt.Sprintf("unknown meal category %q", c)
			break
		}
		if n < 0 {
			fields["meal_counts"] = fmt.Sprintf("count for %s cannot be negative", c)
			break
		}
		if n > MaxMealsPerCategory {
			fields["meal_counts"] = fmt.Sprintf("count for %s cannot exceed %d", c, MaxMealsPerCategory)
			break
		}
	}
	if _, bad := fields["meal_counts"]; !bad && s.MealCounts.Total() == 0 {
		fields["meal_counts"] = "at least one meal is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
