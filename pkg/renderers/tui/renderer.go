// Package tui fills form records through terminal prompts. The prompt flow
// walks the descriptor in declaration order and applies the same instance
// mechanics as the other front ends, so repeatable bounds and defaults behave
// identically no matter where the form is filled.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/schema"
)

type Option func(*Renderer)

// WithDriver swaps the prompt driver. Tests use a scripted driver.
func WithDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithPageSize bounds how many choices a select shows at once.
func WithPageSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

type Renderer struct {
	driver   PromptDriver
	pageSize int
}

// New constructs a TUI renderer with the interactive survey driver.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:   NewSurveyDriver(),
		pageSize: 10,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// RenderForm prompts for every field in declaration order, mutating the
// record as it goes, and returns the collected values as JSON.
func (r *Renderer) RenderForm(ctx context.Context, descriptor *schema.FormDescriptor, record *form.Record, _ render.Options) ([]byte, error) {
	if descriptor == nil {
		return nil, errors.New("tui: descriptor is required")
	}
	if record == nil {
		record = form.NewRecord(descriptor)
	}
	if err := r.Fill(ctx, record); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(record.Values(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: serialize values: %w", err)
	}
	return out, nil
}

// Fill walks the record's descriptor and prompts for each field in place.
func (r *Renderer) Fill(ctx context.Context, record *form.Record) error {
	if record == nil {
		return errors.New("tui: record is required")
	}
	for _, field := range record.Descriptor().Fields() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.promptField(ctx, field, record); err != nil {
			return fmt.Errorf("tui: field %q: %w", field.Name, err)
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field schema.NamedField, record *form.Record) error {
	if field.Repeatable {
		return r.promptInstances(ctx, field, record)
	}

	switch field.Kind {
	case schema.KindText, schema.KindEmail, schema.KindNumber:
		value, err := r.driver.Input(ctx, InputConfig{
			Message:     field.Label,
			Default:     record.String(field.Name),
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return err
		}
		return record.Set(field.Name, value)
	case schema.KindTextArea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: field.Label,
			Default: record.String(field.Name),
		})
		if err != nil {
			return err
		}
		return record.Set(field.Name, value)
	case schema.KindDate:
		return r.promptDate(ctx, field, record)
	case schema.KindToggle:
		value, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label,
			Default: record.String(field.Name) == "true",
		})
		if err != nil {
			return err
		}
		return record.Set(field.Name, strconv.FormatBool(value))
	case schema.KindCombobox:
		value, err := r.promptChoice(ctx, field, record.String(field.Name))
		if err != nil {
			return err
		}
		return record.Set(field.Name, value)
	case schema.KindImage, schema.KindSignature:
		// capture controls need a pointer device; the terminal flow leaves
		// them untouched for a later session
		return r.driver.Info(ctx, field.Label+": nu este disponibil in terminal, pasul este omis")
	default:
		return nil
	}
}

func (r *Renderer) promptDate(ctx context.Context, field schema.NamedField, record *form.Record) error {
	current := ""
	if value := record.Date(field.Name); !value.IsZero() {
		current = value.Format("2006-01-02")
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message:     field.Label,
		Default:     current,
		Placeholder: "aaaa-ll-zz",
		Validator:   validDate,
	})
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return err
	}
	return record.Set(field.Name, value)
}

// promptInstances drives a repeatable field: one prompt per existing
// instance, then an add-another loop that stops when the user declines or
// the record reports the bound is reached.
func (r *Renderer) promptInstances(ctx context.Context, field schema.NamedField, record *form.Record) error {
	index := 0
	for {
		if err := r.promptInstance(ctx, field, record, index); err != nil {
			return err
		}
		index++
		if index < r.instanceCount(field, record) {
			continue
		}
		if !record.CanAdd(field.Name) {
			return nil
		}
		label := field.AddLabel
		if label == "" {
			label = "Adauga inca o valoare"
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label + "?"})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := record.AddInstance(field.Name); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptInstance(ctx context.Context, field schema.NamedField, record *form.Record, index int) error {
	message := fmt.Sprintf("%s #%d", field.Label, index+1)

	switch field.Kind {
	case schema.KindQuantityCombobox:
		selections := record.Selections(field.Name)
		current := ""
		if index < len(selections) {
			current = string(selections[index].Part)
		}
		part, err := r.promptChoice(ctx, field, current)
		if err != nil {
			return err
		}
		if err := record.UpdatePartAt(field.Name, index, refdata.ID(part)); err != nil {
			return err
		}

		quantity, err := r.driver.Input(ctx, InputConfig{
			Message:   message + " - cantitate",
			Default:   "1",
			Validator: validQuantity,
		})
		if err != nil {
			return err
		}
		parsed, err := strconv.Atoi(quantity)
		if err != nil {
			parsed = 1
		}
		return record.UpdateQuantityAt(field.Name, index, parsed)
	case schema.KindCombobox:
		values := record.Strings(field.Name)
		current := ""
		if index < len(values) {
			current = values[index]
		}
		value, err := r.promptChoice(ctx, field, current)
		if err != nil {
			return err
		}
		return record.UpdateInstance(field.Name, index, value)
	default:
		values := record.Strings(field.Name)
		current := ""
		if index < len(values) {
			current = values[index]
		}
		value, err := r.driver.Input(ctx, InputConfig{
			Message:     message,
			Default:     current,
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return err
		}
		return record.UpdateInstance(field.Name, index, value)
	}
}

// promptChoice shows the labels and maps the answer back to the stored value.
func (r *Renderer) promptChoice(ctx context.Context, field schema.NamedField, current string) (string, error) {
	labels := make([]string, 0, len(field.Choices))
	defaultIndex := 0
	for i, choice := range field.Choices {
		labels = append(labels, choice.Label)
		if current != "" && choice.Value == current {
			defaultIndex = i
		}
	}
	selected, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		PageSize:     r.pageSize,
	})
	if err != nil {
		return "", err
	}
	if selected < 0 || selected >= len(field.Choices) {
		return "", fmt.Errorf("tui: selection %d out of range", selected)
	}
	return field.Choices[selected].Value, nil
}

func (r *Renderer) instanceCount(field schema.NamedField, record *form.Record) int {
	if field.Kind == schema.KindQuantityCombobox {
		return len(record.Selections(field.Name))
	}
	return len(record.Strings(field.Name))
}

func validDate(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return errors.New("data trebuie sa fie in formatul aaaa-ll-zz")
	}
	return nil
}

func validQuantity(value string) error {
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return errors.New("cantitatea trebuie sa fie un numar intreg pozitiv")
	}
	return nil
}
