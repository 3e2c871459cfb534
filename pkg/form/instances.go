package form

import (
	"fmt"

	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/schema"
)

// CanAdd reports whether the field accepts another instance. UIs use this to
// hide or disable the add affordance once MaxInstances is reached.
func (r *Record) CanAdd(name string) bool {
	field, ok := r.descriptor.Field(name)
	if !ok || !field.Repeatable {
		return false
	}
	if field.MaxInstances == 0 {
		return true
	}
	return r.instanceCount(name, field) < field.MaxInstances
}

// AddInstance appends a default instance to a repeatable field. Reaching
// MaxInstances makes this a silent no-op; the bound is surfaced through
// CanAdd, not through an error.
func (r *Record) AddInstance(name string) error {
	field, err := r.repeatableField(name)
	if err != nil {
		return err
	}
	if field.MaxInstances > 0 && r.instanceCount(name, field) >= field.MaxInstances {
		return nil
	}

	switch field.Kind {
	case schema.KindQuantityCombobox:
		current := r.Selections(name)
		next := make([]PartSelection, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, defaultInstance(field).(PartSelection))
		r.values[name] = next
	default:
		current := r.Strings(name)
		next := make([]string, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, defaultInstance(field).(string))
		r.values[name] = next
	}
	return nil
}

// RemoveInstance removes the instance at index. A removal that would leave
// the list empty instead resets it to a single default instance; the list is
// never allowed to become empty.
func (r *Record) RemoveInstance(name string, index int) error {
	field, err := r.repeatableField(name)
	if err != nil {
		return err
	}

	switch field.Kind {
	case schema.KindQuantityCombobox:
		current := r.Selections(name)
		if index < 0 || index >= len(current) {
			return fmt.Errorf("form: field %q has no instance %d", name, index)
		}
		next := make([]PartSelection, 0, len(current)-1)
		next = append(next, current[:index]...)
		next = append(next, current[index+1:]...)
		if len(next) == 0 {
			next = []PartSelection{defaultInstance(field).(PartSelection)}
		}
		r.values[name] = next
	default:
		current := r.Strings(name)
		if index < 0 || index >= len(current) {
			return fmt.Errorf("form: field %q has no instance %d", name, index)
		}
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:index]...)
		next = append(next, current[index+1:]...)
		if len(next) == 0 {
			next = []string{defaultInstance(field).(string)}
		}
		r.values[name] = next
	}
	return nil
}

// UpdateInstance replaces the instance at index with a new value of the
// field's base type.
func (r *Record) UpdateInstance(name string, index int, value any) error {
	field, err := r.repeatableField(name)
	if err != nil {
		return err
	}

	switch field.Kind {
	case schema.KindQuantityCombobox:
		item, ok := value.(PartSelection)
		if !ok {
			return fmt.Errorf("form: field %q expects a PartSelection, got %T", name, value)
		}
		current := r.Selections(name)
		if index < 0 || index >= len(current) {
			return fmt.Errorf("form: field %q has no instance %d", name, index)
		}
		next := append([]PartSelection(nil), current...)
		next[index] = item.Normalize()
		r.values[name] = next
	default:
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("form: field %q expects a string, got %T", name, value)
		}
		current := r.Strings(name)
		if index < 0 || index >= len(current) {
			return fmt.Errorf("form: field %q has no instance %d", name, index)
		}
		next := append([]string(nil), current...)
		next[index] = text
		r.values[name] = next
	}
	return nil
}

// UpdatePartAt replaces only the selection of a quantity-combobox instance,
// preserving its quantity.
func (r *Record) UpdatePartAt(name string, index int, part refdata.ID) error {
	current := r.Selections(name)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("form: field %q has no instance %d", name, index)
	}
	return r.UpdateInstance(name, index, PartSelection{
		Part:     part,
		Quantity: current[index].Quantity,
	})
}

// UpdateQuantityAt replaces only the quantity of a quantity-combobox
// instance, preserving its selection. Non-positive quantities collapse to
// the default of one.
func (r *Record) UpdateQuantityAt(name string, index int, quantity int) error {
	current := r.Selections(name)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("form: field %q has no instance %d", name, index)
	}
	return r.UpdateInstance(name, index, PartSelection{
		Part:     current[index].Part,
		Quantity: quantity,
	})
}

func (r *Record) repeatableField(name string) (schema.FieldDescriptor, error) {
	field, ok := r.descriptor.Field(name)
	if !ok {
		return schema.FieldDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if !field.Repeatable {
		return schema.FieldDescriptor{}, fmt.Errorf("%w: %q", ErrNotRepeatable, name)
	}
	return field, nil
}

func (r *Record) instanceCount(name string, field schema.FieldDescriptor) int {
	if field.Kind == schema.KindQuantityCombobox {
		return len(r.Selections(name))
	}
	return len(r.Strings(name))
}
