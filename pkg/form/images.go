package form

import (
	"fmt"

	"github.com/fieldservice/reportgen/pkg/schema"
)

// CapacityError reports a selection that would exceed an image field's
// MaxFiles bound. The whole selection is rejected; nothing is attached.
type CapacityError struct {
	Field     string
	Max       int
	Attempted int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("form: field %q accepts at most %d images, selection would make %d", e.Field, e.Max, e.Attempted)
}

// Message is the user-facing capacity notice.
func (e *CapacityError) Message() string {
	return fmt.Sprintf("Poti incarca pana la %d poze", e.Max)
}

// AttachImages appends image references to an image field. A selection that
// would push the field past MaxFiles is rejected in full with a
// CapacityError, leaving the current value untouched.
func (r *Record) AttachImages(name string, refs ...string) error {
	field, ok := r.descriptor.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Kind != schema.KindImage {
		return fmt.Errorf("form: field %q is not an image field", name)
	}
	if len(refs) == 0 {
		return nil
	}

	current := r.Images(name)
	if field.MaxFiles > 0 && len(current)+len(refs) > field.MaxFiles {
		return &CapacityError{
			Field:     name,
			Max:       field.MaxFiles,
			Attempted: len(current) + len(refs),
		}
	}

	next := make([]string, 0, len(current)+len(refs))
	next = append(next, current...)
	next = append(next, refs...)
	r.values[name] = next
	return nil
}

// RemoveImage drops the image reference at index. Unlike repeatable
// instances, an image list may become empty.
func (r *Record) RemoveImage(name string, index int) error {
	field, ok := r.descriptor.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if field.Kind != schema.KindImage {
		return fmt.Errorf("form: field %q is not an image field", name)
	}

	current := r.Images(name)
	if index < 0 || index >= len(current) {
		return fmt.Errorf("form: field %q has no image %d", name, index)
	}
	next := make([]string, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	r.values[name] = next
	return nil
}
