// Package vanilla renders form descriptors as dependency-free HTML. Controls
// are resolved through a component registry keyed by field kind; kinds without
// a registered control are skipped so a descriptor from a newer schema still
// renders its remaining fields.
package vanilla

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/schema"
)

type Option func(*Renderer)

// WithComponents replaces the component registry.
func WithComponents(components *ComponentRegistry) Option {
	return func(r *Renderer) {
		if components != nil {
			r.components = components
		}
	}
}

// WithPolicy replaces the sanitization policy applied to user-entered text
// before it is rendered back into the form.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}

type Renderer struct {
	components *ComponentRegistry
	policy     *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) *Renderer {
	renderer := &Renderer{
		components: NewDefaultComponentRegistry(),
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(renderer)
	}
	return renderer
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderForm walks the descriptor in declaration order and renders one
// labeled block per field, including instance controls for repeatable fields
// and field-scoped validation messages from options.Errors.
func (r *Renderer) RenderForm(_ context.Context, descriptor *schema.FormDescriptor, record *form.Record, options render.Options) ([]byte, error) {
	if descriptor == nil {
		return nil, fmt.Errorf("vanilla: descriptor is required")
	}
	if record == nil {
		record = form.NewRecord(descriptor)
	}

	var b strings.Builder
	b.WriteString(`<form class="report-form" data-form="`)
	b.WriteString(html.EscapeString(descriptor.Name()))
	b.WriteString(`" method="post" enctype="multipart/form-data">`)

	for _, field := range descriptor.Fields() {
		if err := r.renderField(&b, field, record, options); err != nil {
			return nil, fmt.Errorf("vanilla: field %q: %w", field.Name, err)
		}
	}

	b.WriteString(`<button type="submit" class="form-submit">Trimite raportul</button>`)
	b.WriteString(`</form>`)
	return []byte(b.String()), nil
}

func (r *Renderer) renderField(b *strings.Builder, field schema.NamedField, record *form.Record, options render.Options) error {
	control, ok := r.components.Get(field.Kind)
	if !ok {
		return nil
	}

	b.WriteString(`<div class="form-field" data-field="`)
	b.WriteString(html.EscapeString(field.Name))
	b.WriteString(`">`)

	if field.Label != "" {
		b.WriteString(`<label class="form-label" for="field-`)
		b.WriteString(html.EscapeString(field.Name))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(field.Label))
		b.WriteString(`</label>`)
	}

	if field.Repeatable {
		if err := r.renderInstances(b, field, record, control); err != nil {
			return err
		}
	} else if err := control(b, r.controlContext(field, record, -1)); err != nil {
		return err
	}

	for _, message := range options.Errors[field.Name] {
		b.WriteString(`<p class="field-error">`)
		b.WriteString(html.EscapeString(message))
		b.WriteString(`</p>`)
	}

	b.WriteString(`</div>`)
	return nil
}

// renderInstances renders one control row per instance. The remove affordance
// appears only while more than one instance exists, and the add affordance
// only while the record reports capacity for another.
func (r *Renderer) renderInstances(b *strings.Builder, field schema.NamedField, record *form.Record, control Control) error {
	count := instanceCount(field, record)

	b.WriteString(`<div class="field-instances">`)
	for index := 0; index < count; index++ {
		b.WriteString(`<div class="field-instance">`)
		if err := control(b, r.controlContext(field, record, index)); err != nil {
			return err
		}
		if count > 1 {
			b.WriteString(`<button type="button" class="instance-remove" data-field="`)
			b.WriteString(html.EscapeString(field.Name))
			b.WriteString(fmt.Sprintf(`" data-index="%d">Sterge</button>`, index))
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)

	if record.CanAdd(field.Name) {
		label := field.AddLabel
		if label == "" {
			label = "Adauga"
		}
		b.WriteString(`<button type="button" class="instance-add" data-field="`)
		b.WriteString(html.EscapeString(field.Name))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(label))
		b.WriteString(`</button>`)
	}
	return nil
}

func (r *Renderer) controlContext(field schema.NamedField, record *form.Record, index int) ControlContext {
	ctx := ControlContext{
		Name:       field.Name,
		Index:      index,
		Descriptor: field.FieldDescriptor,
	}

	switch {
	case field.Kind == schema.KindImage:
		ctx.Images = record.Images(field.Name)
	case field.Repeatable && field.Kind == schema.KindQuantityCombobox:
		if selections := record.Selections(field.Name); index >= 0 && index < len(selections) {
			ctx.Selection = selections[index]
		}
	case field.Repeatable:
		if values := record.Strings(field.Name); index >= 0 && index < len(values) {
			ctx.Value = r.plainText(values[index])
		}
	case field.Kind == schema.KindDate:
		if value := record.Date(field.Name); !value.IsZero() {
			ctx.Value = value.Format("2006-01-02")
		}
	case field.Kind == schema.KindSignature:
		ctx.Value = record.String(field.Name)
	default:
		ctx.Value = r.plainText(record.String(field.Name))
	}
	return ctx
}

// plainText strips any markup a user pasted into a free-text value, leaving
// plain text for the control to escape.
func (r *Renderer) plainText(value string) string {
	return html.UnescapeString(r.policy.Sanitize(value))
}

func instanceCount(field schema.NamedField, record *form.Record) int {
	if field.Kind == schema.KindQuantityCombobox {
		return len(record.Selections(field.Name))
	}
	return len(record.Strings(field.Name))
}
