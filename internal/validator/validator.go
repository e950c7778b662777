package validator

// Validator is the entry point shared by handlers and services.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate returns nil or a ValidationErrors value.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// Var validates a single named value against a tag.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	if errs := v.business.ValidateVar(field, value, tag); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
