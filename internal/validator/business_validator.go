package validator

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	addressPattern = regexp.MustCompile(`^[0-9A-Za-z:_\-.]{1,128}$`)
	loginIDPattern = regexp.MustCompile(`^[[:graph:]]{1,64}$`)
)

// BusinessValidator handles registry rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags including the registry rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateVar validates a single value against a tag
func (bv *BusinessValidator) ValidateVar(field string, value interface{}, tag string) ValidationErrors {
	err := bv.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	errs := ToValidationErrors(err)
	for i := range errs {
		errs[i].Field = field
	}
	return errs
}

// ValidateCourseFields checks the mutable course fields that are not
// covered by struct tags.
func (bv *BusinessValidator) ValidateCourseFields(credits int) ValidationErrors {
	return bv.ValidateVar("credits", credits, "credits_range")
}

// ValidateScore checks an evaluation score.
func (bv *BusinessValidator) ValidateScore(score int) ValidationErrors {
	return bv.ValidateVar("score", score, "score_range")
}

// registerBusinessRules registers custom registry validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Account address
	bv.validate.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return addressPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	// Client-side password digest
	bv.validate.RegisterValidation("password_hash", func(fl validator.FieldLevel) bool {
		_, err := models.ParsePasswordHash(fl.Field().String())
		return err == nil
	})

	// Login handle
	bv.validate.RegisterValidation("login_id", func(fl validator.FieldLevel) bool {
		return loginIDPattern.MatchString(fl.Field().String())
	})

	// Self-assignable role names
	bv.validate.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		role, err := models.ParseRole(fl.Field().String())
		return err == nil && role.SelfAssignable()
	})

	// Evaluation score (1-5)
	bv.validate.RegisterValidation("score_range", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= models.MinScore && score <= models.MaxScore
	})

	// Course credits (1-10)
	bv.validate.RegisterValidation("credits_range", func(fl validator.FieldLevel) bool {
		credits := fl.Field().Int()
		return credits >= models.MinCredits && credits <= models.MaxCredits
	})
}
