// Package validation bridges form records to a rule schema keyed by the same
// field names as the form descriptor. The engine treats the schema as an
// opaque predicate plus message source: rules either pass or contribute a
// field-scoped message, and nothing here ever panics on user input.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fieldservice/reportgen/pkg/form"
)

// Rule couples a go-playground/validator tag expression with the message
// shown when the rule fails.
type Rule struct {
	Tag     string
	Message string
}

// Required fails on empty scalars, zero dates, and instance lists with no
// populated entry.
func Required(message string) Rule {
	return Rule{Tag: "required", Message: message}
}

// MinRunes fails strings shorter than n runes.
func MinRunes(n int, message string) Rule {
	return Rule{Tag: fmt.Sprintf("min=%d", n), Message: message}
}

// Email applies the validator email predicate.
func Email(message string) Rule {
	return Rule{Tag: "email", Message: message}
}

// Decimal accepts a non-negative decimal with up to two fractional digits.
func Decimal(message string) Rule {
	return Rule{Tag: "report_decimal", Message: message}
}

// Integer accepts a non-negative integer. Empty input passes; pair with
// Required when the field is mandatory.
func Integer(message string) Rule {
	return Rule{Tag: "omitempty,report_integer", Message: message}
}

var (
	decimalPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	integerPattern = regexp.MustCompile(`^\d+$`)
)

// Schema holds rules per field name. Field registration order is preserved so
// validation output is deterministic.
type Schema struct {
	validate *validator.Validate
	order    []string
	rules    map[string][]Rule
}

// NewSchema constructs an empty schema with the report-specific predicates
// registered.
func NewSchema() *Schema {
	v := validator.New()
	// Registration only fails for blank tags or nil funcs.
	_ = v.RegisterValidation("report_decimal", func(fl validator.FieldLevel) bool {
		return decimalPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("report_integer", func(fl validator.FieldLevel) bool {
		return integerPattern.MatchString(fl.Field().String())
	})
	return &Schema{
		validate: v,
		rules:    make(map[string][]Rule),
	}
}

// Field appends rules for a field name, creating the entry on first use.
func (s *Schema) Field(name string, rules ...Rule) *Schema {
	name = strings.TrimSpace(name)
	if name == "" || len(rules) == 0 {
		return s
	}
	if _, exists := s.rules[name]; !exists {
		s.order = append(s.order, name)
	}
	s.rules[name] = append(s.rules[name], rules...)
	return s
}

// Result is the outcome of validating one record: a validity flag and
// field-scoped messages keyed by field name.
type Result struct {
	Valid  bool
	Fields map[string][]string
}

// Messages returns the messages recorded for a field.
func (r Result) Messages(field string) []string {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

// Validate applies every rule to the record's current values. Fields the
// record does not carry validate against their zero value, so a missing
// mandatory field still fails.
func (s *Schema) Validate(record *form.Record) Result {
	result := Result{Valid: true}

	for _, name := range s.order {
		var messages []string
		value := record.Value(name)
		for _, rule := range s.rules[name] {
			if s.passes(rule, value) {
				continue
			}
			messages = append(messages, rule.Message)
		}
		if len(messages) == 0 {
			continue
		}
		if result.Fields == nil {
			result.Fields = make(map[string][]string)
		}
		result.Valid = false
		result.Fields[name] = dedupe(messages)
	}

	return result
}

func (s *Schema) passes(rule Rule, value any) bool {
	required := strings.Contains(rule.Tag, "required")

	switch v := value.(type) {
	case nil:
		return !required
	case string:
		return s.validate.Var(v, rule.Tag) == nil
	case time.Time:
		if required {
			return !v.IsZero()
		}
		return true
	case []string:
		if required {
			for _, item := range v {
				if strings.TrimSpace(item) != "" {
					return true
				}
			}
			return false
		}
		// Non-required rules apply to every populated instance.
		for _, item := range v {
			if strings.TrimSpace(item) == "" {
				continue
			}
			if s.validate.Var(item, rule.Tag) != nil {
				return false
			}
		}
		return true
	case []form.PartSelection:
		if required {
			for _, item := range v {
				if !item.Part.Empty() {
					return true
				}
			}
			return false
		}
		return true
	default:
		// Unknown value shapes are a schema/descriptor mismatch, not a user
		// error; treat as passing so the field stays usable.
		return true
	}
}

func dedupe(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
