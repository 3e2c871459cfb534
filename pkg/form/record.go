package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/schema"
)

// ErrUnknownField is returned when an operation names a field the descriptor
// does not declare.
var ErrUnknownField = errors.New("form: unknown field")

// ErrNotRepeatable is returned when instance mechanics are applied to a
// single-value field.
var ErrNotRepeatable = errors.New("form: field is not repeatable")

// PartSelection pairs a searchable selection with a quantity. Quantities
// below one are normalized to one.
type PartSelection struct {
	Part     refdata.ID `json:"part"`
	Quantity int        `json:"quantity"`
}

// Normalize coerces an absent or non-positive quantity to the default of one.
func (p PartSelection) Normalize() PartSelection {
	if p.Quantity < 1 {
		p.Quantity = 1
	}
	return p
}

// Record holds the working values of one form, keyed by field name. Every
// edit replaces the affected value; list values are copied before mutation so
// previously observed slices never change underneath a caller.
//
// Repeatable fields always hold a list representation, never a bare scalar,
// and the list is never empty: removing the final instance resets the field
// to a single default instance.
type Record struct {
	descriptor *schema.FormDescriptor
	values     map[string]any
}

// NewRecord creates a record seeded with the descriptor's default values.
func NewRecord(descriptor *schema.FormDescriptor) *Record {
	record := &Record{
		descriptor: descriptor,
		values:     make(map[string]any, descriptor.Len()),
	}
	for _, field := range descriptor.Fields() {
		record.values[field.Name] = initialValue(field.FieldDescriptor)
	}
	return record
}

// Descriptor returns the descriptor the record was built from.
func (r *Record) Descriptor() *schema.FormDescriptor {
	return r.descriptor
}

// Value returns the current value of a field, or nil when undeclared.
func (r *Record) Value(name string) any {
	return r.values[name]
}

// Values returns a shallow copy of the value map keyed by field name.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, value := range r.values {
		out[name] = value
	}
	return out
}

// Set replaces a field's value. Repeatable fields are normalized to the
// always-list representation; an empty list collapses to one default
// instance.
func (r *Record) Set(name string, value any) error {
	field, ok := r.descriptor.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Repeatable {
		normalized, err := normalizeList(field, value)
		if err != nil {
			return fmt.Errorf("form: field %q: %w", name, err)
		}
		r.values[name] = normalized
		return nil
	}
	r.values[name] = value
	return nil
}

// String returns a scalar field's text value.
func (r *Record) String(name string) string {
	value, _ := r.values[name].(string)
	return value
}

// Date returns a date field's value; the zero time means absent.
func (r *Record) Date(name string) time.Time {
	value, _ := r.values[name].(time.Time)
	return value
}

// Strings returns the instance list of a repeatable text-like field.
func (r *Record) Strings(name string) []string {
	value, _ := r.values[name].([]string)
	return value
}

// Selections returns the instance list of a quantity-combobox field.
func (r *Record) Selections(name string) []PartSelection {
	value, _ := r.values[name].([]PartSelection)
	return value
}

// Images returns the attached image references of an image field.
func (r *Record) Images(name string) []string {
	value, _ := r.values[name].([]string)
	return value
}

// initialValue derives the uninitialized value for a field. Repeatable
// fields start with exactly one default instance.
func initialValue(field schema.FieldDescriptor) any {
	if field.Repeatable {
		switch field.Kind {
		case schema.KindQuantityCombobox:
			return []PartSelection{defaultSelection(field)}
		default:
			return []string{defaultString(field)}
		}
	}

	switch field.Kind {
	case schema.KindDate:
		if value, ok := field.Default.(time.Time); ok {
			return value
		}
		return time.Time{}
	case schema.KindImage:
		return []string{}
	case schema.KindQuantityCombobox:
		return defaultSelection(field)
	default:
		return defaultString(field)
	}
}

func defaultString(field schema.FieldDescriptor) string {
	if value, ok := field.Default.(string); ok {
		return value
	}
	return ""
}

func defaultSelection(field schema.FieldDescriptor) PartSelection {
	if value, ok := field.Default.(PartSelection); ok {
		return value.Normalize()
	}
	return PartSelection{Quantity: 1}
}

// defaultInstance is the per-kind zero instance used when growing or
// resetting a repeatable field's list.
func defaultInstance(field schema.FieldDescriptor) any {
	if field.Kind == schema.KindQuantityCombobox {
		return PartSelection{Quantity: 1}
	}
	return ""
}

func normalizeList(field schema.FieldDescriptor, value any) (any, error) {
	switch field.Kind {
	case schema.KindQuantityCombobox:
		list, ok := value.([]PartSelection)
		if !ok {
			if scalar, scalarOK := value.(PartSelection); scalarOK {
				list = []PartSelection{scalar}
			} else {
				return nil, fmt.Errorf("expected []PartSelection, got %T", value)
			}
		}
		if len(list) == 0 {
			return []PartSelection{defaultSelection(field)}, nil
		}
		out := make([]PartSelection, len(list))
		for i, item := range list {
			out[i] = item.Normalize()
		}
		return out, nil
	default:
		list, ok := value.([]string)
		if !ok {
			if scalar, scalarOK := value.(string); scalarOK {
				list = []string{scalar}
			} else {
				return nil, fmt.Errorf("expected []string, got %T", value)
			}
		}
		if len(list) == 0 {
			return []string{defaultString(field)}, nil
		}
		return append([]string(nil), list...), nil
	}
}
