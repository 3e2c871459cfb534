package vanilla

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/schema"
)

// ControlContext carries everything a control needs to render one instance of
// a field.
type ControlContext struct {
	// Name is the field name; Index is the instance index for repeatable
	// fields and -1 for scalar ones.
	Name  string
	Index int

	Descriptor schema.FieldDescriptor

	// Value holds the current string value for scalar and list kinds.
	Value string
	// Selection holds the current value for quantity-combobox instances.
	Selection form.PartSelection
	// Images holds the attached data URLs for image kinds.
	Images []string
}

// ControlID derives the DOM id for this instance.
func (c ControlContext) ControlID() string {
	if c.Index < 0 {
		return "field-" + c.Name
	}
	return fmt.Sprintf("field-%s-%d", c.Name, c.Index)
}

// InputName derives the submitted form name for this instance.
func (c ControlContext) InputName() string {
	if c.Index < 0 {
		return c.Name
	}
	return fmt.Sprintf("%s[%d]", c.Name, c.Index)
}

// Control writes the markup for one field instance.
type Control func(b *strings.Builder, ctx ControlContext) error

// ComponentRegistry maps field kinds to controls. Kinds without an entry
// render nothing; the surrounding form still renders.
type ComponentRegistry struct {
	mu       sync.RWMutex
	controls map[schema.FieldKind]Control
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{controls: make(map[schema.FieldKind]Control)}
}

// Register adds a control for a kind. Duplicate kinds return an error.
func (r *ComponentRegistry) Register(kind schema.FieldKind, control Control) error {
	if control == nil {
		return fmt.Errorf("vanilla: control is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.controls[kind]; exists {
		return fmt.Errorf("vanilla: control %q already registered", kind)
	}
	r.controls[kind] = control
	return nil
}

// MustRegister panics on registration failure.
func (r *ComponentRegistry) MustRegister(kind schema.FieldKind, control Control) {
	if err := r.Register(kind, control); err != nil {
		panic(err)
	}
}

// Get retrieves the control for a kind.
func (r *ComponentRegistry) Get(kind schema.FieldKind) (Control, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	control, ok := r.controls[kind]
	return control, ok
}

// NewDefaultComponentRegistry constructs a registry pre-populated with the
// built-in controls.
func NewDefaultComponentRegistry() *ComponentRegistry {
	registry := NewComponentRegistry()

	registry.MustRegister(schema.KindText, inputControl("text"))
	registry.MustRegister(schema.KindEmail, inputControl("email"))
	registry.MustRegister(schema.KindNumber, inputControl("number"))
	registry.MustRegister(schema.KindDate, inputControl("date"))
	registry.MustRegister(schema.KindTextArea, textareaControl)
	registry.MustRegister(schema.KindToggle, toggleControl)
	registry.MustRegister(schema.KindCombobox, comboboxControl)
	registry.MustRegister(schema.KindQuantityCombobox, quantityComboboxControl)
	registry.MustRegister(schema.KindImage, imageControl)
	registry.MustRegister(schema.KindSignature, signatureControl)

	return registry
}

func inputControl(inputType string) Control {
	return func(b *strings.Builder, ctx ControlContext) error {
		b.WriteString(`<input type="`)
		b.WriteString(inputType)
		b.WriteString(`" id="`)
		b.WriteString(html.EscapeString(ctx.ControlID()))
		b.WriteString(`" name="`)
		b.WriteString(html.EscapeString(ctx.InputName()))
		b.WriteString(`"`)
		if ctx.Value != "" {
			b.WriteString(` value="`)
			b.WriteString(html.EscapeString(ctx.Value))
			b.WriteString(`"`)
		}
		writePlaceholder(b, ctx.Descriptor.Placeholder)
		b.WriteString(` class="form-control">`)
		return nil
	}
}

func textareaControl(b *strings.Builder, ctx ControlContext) error {
	b.WriteString(`<textarea id="`)
	b.WriteString(html.EscapeString(ctx.ControlID()))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(ctx.InputName()))
	b.WriteString(`"`)
	writePlaceholder(b, ctx.Descriptor.Placeholder)
	b.WriteString(` rows="4" class="form-control">`)
	b.WriteString(html.EscapeString(ctx.Value))
	b.WriteString(`</textarea>`)
	return nil
}

func toggleControl(b *strings.Builder, ctx ControlContext) error {
	b.WriteString(`<input type="checkbox" id="`)
	b.WriteString(html.EscapeString(ctx.ControlID()))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(ctx.InputName()))
	b.WriteString(`" value="true"`)
	if ctx.Value == "true" {
		b.WriteString(` checked`)
	}
	b.WriteString(` class="form-toggle">`)
	return nil
}

func comboboxControl(b *strings.Builder, ctx ControlContext) error {
	writeSelect(b, ctx.ControlID(), ctx.InputName(), ctx.Descriptor, ctx.Value)
	return nil
}

// quantityComboboxControl renders the part selector alongside its quantity
// input. Both carry the same instance index so partial updates target one
// instance without touching its sibling.
func quantityComboboxControl(b *strings.Builder, ctx ControlContext) error {
	selection := ctx.Selection.Normalize()

	b.WriteString(`<div class="quantity-combobox">`)
	writeSelect(b, ctx.ControlID(), ctx.InputName(), ctx.Descriptor, string(selection.Part))
	b.WriteString(`<input type="number" min="1" id="`)
	b.WriteString(html.EscapeString(ctx.ControlID() + "-quantity"))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(ctx.InputName() + ".quantity"))
	b.WriteString(`" value="`)
	b.WriteString(strconv.Itoa(selection.Quantity))
	b.WriteString(`" class="form-control quantity-input">`)
	b.WriteString(`</div>`)
	return nil
}

func imageControl(b *strings.Builder, ctx ControlContext) error {
	b.WriteString(`<div class="image-set" data-field="`)
	b.WriteString(html.EscapeString(ctx.Name))
	b.WriteString(`" data-max-files="`)
	b.WriteString(strconv.Itoa(ctx.Descriptor.MaxFiles))
	b.WriteString(`">`)

	for i, image := range ctx.Images {
		b.WriteString(`<figure class="image-set-item"><img src="`)
		b.WriteString(html.EscapeString(image))
		b.WriteString(`" alt="">`)
		b.WriteString(`<button type="button" class="image-set-remove" data-index="`)
		b.WriteString(strconv.Itoa(i))
		b.WriteString(`">&times;</button></figure>`)
	}

	b.WriteString(`<input type="file" accept="image/*" multiple id="`)
	b.WriteString(html.EscapeString(ctx.ControlID()))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(ctx.InputName()))
	b.WriteString(`" class="image-set-input">`)
	b.WriteString(`</div>`)
	return nil
}

func signatureControl(b *strings.Builder, ctx ControlContext) error {
	b.WriteString(`<div class="signature-pad" data-field="`)
	b.WriteString(html.EscapeString(ctx.Name))
	b.WriteString(`">`)
	b.WriteString(`<canvas class="signature-canvas" width="400" height="150"></canvas>`)
	if ctx.Value != "" {
		b.WriteString(`<img class="signature-preview" src="`)
		b.WriteString(html.EscapeString(ctx.Value))
		b.WriteString(`" alt="">`)
	}
	b.WriteString(`<input type="hidden" id="`)
	b.WriteString(html.EscapeString(ctx.ControlID()))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(ctx.InputName()))
	b.WriteString(`" value="`)
	b.WriteString(html.EscapeString(ctx.Value))
	b.WriteString(`">`)
	b.WriteString(`<button type="button" class="signature-clear">Sterge</button>`)
	b.WriteString(`</div>`)
	return nil
}

func writeSelect(b *strings.Builder, id, name string, descriptor schema.FieldDescriptor, selected string) {
	b.WriteString(`<select id="`)
	b.WriteString(html.EscapeString(id))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(name))
	b.WriteString(`" class="form-control">`)

	b.WriteString(`<option value="">`)
	if descriptor.Placeholder != "" {
		b.WriteString(html.EscapeString(descriptor.Placeholder))
	}
	b.WriteString(`</option>`)

	for _, choice := range descriptor.Choices {
		b.WriteString(`<option value="`)
		b.WriteString(html.EscapeString(choice.Value))
		b.WriteString(`"`)
		if selected != "" && choice.Value == selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(choice.Label))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select>`)
}

func writePlaceholder(b *strings.Builder, placeholder string) {
	if placeholder == "" {
		return
	}
	b.WriteString(` placeholder="`)
	b.WriteString(html.EscapeString(placeholder))
	b.WriteString(`"`)
}
