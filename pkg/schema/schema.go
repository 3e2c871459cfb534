package schema

import (
	"fmt"
	"strings"
)

// FieldKind enumerates the closed set of control kinds the form engine can
// render. Anything outside this set is ignored at render time so a single bad
// descriptor cannot take down the rest of a form.
type FieldKind string

const (
	KindText             FieldKind = "text"
	KindTextArea         FieldKind = "textarea"
	KindEmail            FieldKind = "email"
	KindNumber           FieldKind = "number"
	KindDate             FieldKind = "date"
	KindToggle           FieldKind = "toggle"
	KindCombobox         FieldKind = "combobox"
	KindQuantityCombobox FieldKind = "quantity-combobox"
	KindImage            FieldKind = "image"
	KindSignature        FieldKind = "signature"
)

// Kinds returns every valid field kind in a stable order.
func Kinds() []FieldKind {
	return []FieldKind{
		KindText,
		KindTextArea,
		KindEmail,
		KindNumber,
		KindDate,
		KindToggle,
		KindCombobox,
		KindQuantityCombobox,
		KindImage,
		KindSignature,
	}
}

// Valid reports whether the kind belongs to the closed set.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindTextArea, KindEmail, KindNumber, KindDate,
		KindToggle, KindCombobox, KindQuantityCombobox, KindImage, KindSignature:
		return true
	default:
		return false
	}
}

// Selection reports whether the kind draws its values from a choice list.
func (k FieldKind) Selection() bool {
	switch k {
	case KindToggle, KindCombobox, KindQuantityCombobox:
		return true
	default:
		return false
	}
}

// Option is a single selectable choice. Choices keep the order the reference
// data was fetched in.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldDescriptor declares one form field: its control kind, display strings,
// default, repetition bounds and choice list.
type FieldDescriptor struct {
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Label       string    `yaml:"label" json:"label"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Default     any       `yaml:"default,omitempty" json:"default,omitempty"`

	// Repeatable fields hold an ordered list of instances of the base kind.
	// MaxInstances of zero means unbounded. AddLabel captions the add
	// affordance.
	Repeatable   bool   `yaml:"repeatable,omitempty" json:"repeatable,omitempty"`
	MaxInstances int    `yaml:"maxInstances,omitempty" json:"maxInstances,omitempty"`
	AddLabel     string `yaml:"addLabel,omitempty" json:"addLabel,omitempty"`

	// Choices is required for selection kinds.
	Choices []Option `yaml:"choices,omitempty" json:"choices,omitempty"`

	// MaxFiles bounds image attachments. Zero means unbounded.
	MaxFiles int `yaml:"maxFiles,omitempty" json:"maxFiles,omitempty"`
}

// Validate checks the descriptor for authoring mistakes.
func (f FieldDescriptor) Validate() error {
	if !f.Kind.Valid() {
		return fmt.Errorf("schema: unknown field kind %q", f.Kind)
	}
	if f.Kind.Selection() && len(f.Choices) == 0 {
		return fmt.Errorf("schema: kind %q requires choices", f.Kind)
	}
	if f.MaxInstances < 0 {
		return fmt.Errorf("schema: maxInstances must not be negative")
	}
	if f.MaxFiles < 0 {
		return fmt.Errorf("schema: maxFiles must not be negative")
	}
	if f.MaxInstances > 0 && !f.Repeatable {
		return fmt.Errorf("schema: maxInstances set on a non-repeatable field")
	}
	return nil
}

// ChoiceLabel resolves a choice value to its label. Unknown values fall back
// to the raw value so stale data still renders.
func (f FieldDescriptor) ChoiceLabel(value string) string {
	for _, opt := range f.Choices {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// NamedField pairs a descriptor with its field name for ordered traversal.
type NamedField struct {
	Name string
	FieldDescriptor
}

// FormDescriptor is a named, ordered mapping of field names to descriptors.
// Insertion order defines render order.
type FormDescriptor struct {
	name   string
	order  []string
	fields map[string]FieldDescriptor
}

// NewFormDescriptor creates an empty descriptor for the named form.
func NewFormDescriptor(name string) *FormDescriptor {
	return &FormDescriptor{
		name:   strings.TrimSpace(name),
		fields: make(map[string]FieldDescriptor),
	}
}

// Name returns the form name.
func (d *FormDescriptor) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Add appends a field. Duplicate names and invalid descriptors are rejected.
func (d *FormDescriptor) Add(name string, field FieldDescriptor) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("schema: field name is required")
	}
	if _, exists := d.fields[name]; exists {
		return fmt.Errorf("schema: field %q already declared", name)
	}
	if err := field.Validate(); err != nil {
		return fmt.Errorf("schema: field %q: %w", name, err)
	}
	d.order = append(d.order, name)
	d.fields[name] = field
	return nil
}

// MustAdd panics on error. Useful for descriptor literals wired at init time.
func (d *FormDescriptor) MustAdd(name string, field FieldDescriptor) *FormDescriptor {
	if err := d.Add(name, field); err != nil {
		panic(err)
	}
	return d
}

// Field looks up a descriptor by name.
func (d *FormDescriptor) Field(name string) (FieldDescriptor, bool) {
	if d == nil {
		return FieldDescriptor{}, false
	}
	field, ok := d.fields[name]
	return field, ok
}

// Fields returns the declared fields in insertion order.
func (d *FormDescriptor) Fields() []NamedField {
	if d == nil || len(d.order) == 0 {
		return nil
	}
	out := make([]NamedField, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, NamedField{Name: name, FieldDescriptor: d.fields[name]})
	}
	return out
}

// Names returns the field names in insertion order.
func (d *FormDescriptor) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// Len reports the number of declared fields.
func (d *FormDescriptor) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}
