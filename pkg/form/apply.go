package form

import (
	"fmt"

	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/schema"
)

// ApplyValues copies a decoded JSON payload onto the record, field by field,
// following each field's kind. Unknown payload keys are rejected so a typo in
// an integration surfaces instead of silently dropping data. Image lists go
// through AttachImages, so capacity violations come back as CapacityError.
func (r *Record) ApplyValues(payload map[string]any) error {
	for name, raw := range payload {
		field, ok := r.descriptor.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}

		switch {
		case field.Kind == schema.KindImage:
			refs, err := stringValues(raw)
			if err != nil {
				return fmt.Errorf("form: field %q: %w", name, err)
			}
			if err := r.AttachImages(name, refs...); err != nil {
				return err
			}
		case field.Kind == schema.KindQuantityCombobox:
			selections, err := selectionValues(raw)
			if err != nil {
				return fmt.Errorf("form: field %q: %w", name, err)
			}
			if err := r.Set(name, selections); err != nil {
				return err
			}
		case field.Repeatable:
			values, err := stringValues(raw)
			if err != nil {
				return fmt.Errorf("form: field %q: %w", name, err)
			}
			if err := r.Set(name, values); err != nil {
				return err
			}
		default:
			value, ok := raw.(string)
			if !ok {
				return fmt.Errorf("form: field %q expects a string, got %T", name, raw)
			}
			if err := r.Set(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func stringValues(raw any) ([]string, error) {
	switch value := raw.(type) {
	case string:
		return []string{value}, nil
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string list, found %T", item)
			}
			out = append(out, text)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string list, got %T", raw)
	}
}

func selectionValues(raw any) ([]PartSelection, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a selection list, got %T", raw)
	}
	out := make([]PartSelection, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected a selection object, found %T", item)
		}
		part, _ := entry["part"].(string)
		selection := PartSelection{Part: refdata.ID(part)}
		if quantity, ok := entry["quantity"].(float64); ok {
			selection.Quantity = int(quantity)
		}
		out = append(out, selection.Normalize())
	}
	return out, nil
}
