package invoicing

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Rules configures the checks that differ between deployments.
type Rules struct {
	RequireUnitOfMeasure bool
	VATRates             []VATRate
	DefaultVATRate       VATRate
}

// DefaultRules accepts the 0% and 20% rates and leaves the unit optional.
func DefaultRules() Rules {
	return Rules{
		VATRates:       []VATRate{VATRateZero, VATRateStandard},
		DefaultVATRate: VATRateStandard,
	}
}

// AllowsRate reports whether rate belongs to the configured closed set.
func (r Rules) AllowsRate(rate VATRate) bool {
	for _, allowed := range r.VATRates {
		if allowed == rate {
			return true
		}
	}
	return false
}

// Validator checks line items and invoice headers. It is safe for concurrent use.
type Validator struct {
	rules    Rules
	validate *validator.Validate
}

// NewValidator constructs a Validator for rules.
func NewValidator(rules Rules) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	validations := map[string]validator.Func{
		"vatrate": func(fl validator.FieldLevel) bool {
			return rules.AllowsRate(VATRate(fl.Field().Int()))
		},
		"dpositive": decimalRule(func(d decimal.Decimal) bool { return d.IsPositive() }),
		"dpercent": decimalRule(func(d decimal.Decimal) bool {
			return !d.IsNegative() && !d.GreaterThan(hundred)
		}),
	}
	// Tags and funcs are static, so registration cannot fail at runtime.
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("invoicing: register %s validation: %v", tag, err))
		}
	}
	return &Validator{rules: rules, validate: v}
}

// decimalRule adapts an exact decimal predicate to a validator func. Fields
// that are not decimals fail.
func decimalRule(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, isDecimal := fl.Field().Interface().(decimal.Decimal)
		return isDecimal && ok(d)
	}
}

// Rules returns the configured rules.
func (v *Validator) Rules() Rules { return v.rules }

// ValidateLine returns the recomputed item when it is acceptable, otherwise the
// violations for every failing field. Never both.
func (v *Validator) ValidateLine(item LineItem) (LineItem, Violations) {
	item = normalizeLine(item)
	violations := v.structViolations(item)
	if v.rules.RequireUnitOfMeasure && item.UnitOfMeasure == "" {
		violations.Add("unitOfMeasure", MissingField("unitOfMeasure"))
	}
	if !violations.Empty() {
		return LineItem{}, violations
	}
	return item.Recompute(), nil
}

// ValidateHeader reports every reason the draft cannot be submitted yet.
// An empty item list is always reported, whatever the header looks like.
func (v *Validator) ValidateHeader(d Draft) Violations {
	violations := v.structViolations(d)
	if len(d.Items) == 0 {
		violations.Add("items", ErrEmptyInvoice)
	}
	for i, item := range d.Items {
		if _, itemViolations := v.ValidateLine(item); !itemViolations.Empty() {
			violations.Merge(fmt.Sprintf("items[%d].", i), itemViolations)
		}
	}
	return violations
}

func (v *Validator) structViolations(s any) Violations {
	violations := make(Violations)
	err := v.validate.Struct(s)
	if err == nil {
		return violations
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		violations.Add("_", fmt.Errorf("%w: %v", ErrInvalidValue, err))
		return violations
	}
	for _, fieldErr := range fieldErrs {
		field := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required", "required_if":
			violations.Add(field, MissingField(field))
		default:
			violations.Add(field, InvalidValue(field))
		}
	}
	return violations
}

func normalizeLine(item LineItem) LineItem {
	item.ProductName = strings.TrimSpace(item.ProductName)
	item.ProductDescription = strings.TrimSpace(item.ProductDescription)
	item.UnitOfMeasure = strings.TrimSpace(item.UnitOfMeasure)
	item.AccountNumber = strings.TrimSpace(item.AccountNumber)
	return item
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
