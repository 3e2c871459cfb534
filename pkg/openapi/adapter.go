// Package openapi derives form descriptors from OpenAPI 3 documents. Teams
// that already describe their management API can point the form engine at an
// operation's request schema instead of authoring a YAML descriptor by hand.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fieldservice/reportgen/pkg/schema"
)

// Extension keys recognized on property schemas.
const (
	extKind     = "x-field-kind"
	extLabel    = "x-label"
	extAddLabel = "x-add-label"
	extMaxFiles = "x-max-files"
)

type Option func(*Adapter)

// WithResolveReferences validates the document and resolves external refs
// before extraction.
func WithResolveReferences(resolve bool) Option {
	return func(a *Adapter) {
		a.resolveReferences = resolve
	}
}

// Adapter extracts form descriptors from OpenAPI documents.
type Adapter struct {
	resolveReferences bool
}

// New constructs an adapter with the given options.
func New(options ...Option) *Adapter {
	adapter := &Adapter{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(adapter)
	}
	return adapter
}

// FormFromData loads an OpenAPI document (JSON or YAML) and derives a form
// descriptor from the JSON request body of the operation with the given
// operationId. Properties are emitted in alphabetical order; OpenAPI object
// schemas carry no declaration order.
func (a *Adapter) FormFromData(ctx context.Context, data []byte, operationID string) (*schema.FormDescriptor, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: a.resolveReferences,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if a.resolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate document: %w", err)
		}
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	body := requestSchema(operation)
	if body == nil {
		return nil, fmt.Errorf("openapi: operation %q has no JSON request schema", operationID)
	}
	return a.formFromSchema(operationID, body)
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	media := operation.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return media.Schema.Value
}

func (a *Adapter) formFromSchema(name string, body *openapi3.Schema) (*schema.FormDescriptor, error) {
	if !body.Type.Is("object") {
		return nil, fmt.Errorf("openapi: request schema must be an object, got %v", body.Type)
	}

	names := make([]string, 0, len(body.Properties))
	for property := range body.Properties {
		names = append(names, property)
	}
	sort.Strings(names)

	descriptor := schema.NewFormDescriptor(name)
	for _, property := range names {
		ref := body.Properties[property]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := fieldFromProperty(property, ref.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", property, err)
		}
		if err := descriptor.Add(property, field); err != nil {
			return nil, err
		}
	}
	if descriptor.Len() == 0 {
		return nil, errors.New("openapi: request schema declares no usable properties")
	}
	return descriptor, nil
}

func fieldFromProperty(name string, prop *openapi3.Schema) (schema.FieldDescriptor, error) {
	field := schema.FieldDescriptor{
		Label:       stringExtension(prop, extLabel),
		Placeholder: prop.Description,
	}
	if field.Label == "" {
		field.Label = prop.Title
	}
	if field.Label == "" {
		field.Label = name
	}
	if value, ok := prop.Default.(string); ok {
		field.Default = value
	}

	item := prop
	if prop.Type.Is("array") {
		if prop.Items == nil || prop.Items.Value == nil {
			return field, errors.New("array property without items")
		}
		field.Repeatable = true
		field.AddLabel = stringExtension(prop, extAddLabel)
		if prop.MaxItems != nil {
			field.MaxInstances = int(*prop.MaxItems)
		}
		item = prop.Items.Value
	}

	field.Kind = kindForSchema(item)
	if field.Kind == schema.KindImage {
		// An array of binary items is an image set, not a repeatable field;
		// its bound lives in MaxFiles.
		field.Repeatable = false
		field.MaxInstances = 0
		field.AddLabel = ""
		if files := intExtension(prop, extMaxFiles); files > 0 {
			field.MaxFiles = files
		} else if prop.MaxItems != nil {
			field.MaxFiles = int(*prop.MaxItems)
		}
	}
	if field.Kind.Selection() {
		field.Choices = choicesForSchema(item)
	}

	if err := field.Validate(); err != nil {
		return field, err
	}
	return field, nil
}

func kindForSchema(prop *openapi3.Schema) schema.FieldKind {
	if kind := schema.FieldKind(stringExtension(prop, extKind)); kind.Valid() {
		return kind
	}
	switch {
	case prop.Type.Is("boolean"):
		return schema.KindToggle
	case prop.Type.Is("integer"), prop.Type.Is("number"):
		return schema.KindNumber
	case len(prop.Enum) > 0:
		return schema.KindCombobox
	case prop.Format == "email":
		return schema.KindEmail
	case prop.Format == "date", prop.Format == "date-time":
		return schema.KindDate
	case prop.Format == "byte", prop.Format == "binary":
		return schema.KindImage
	default:
		return schema.KindText
	}
}

func choicesForSchema(prop *openapi3.Schema) []schema.Option {
	if prop.Type.Is("boolean") {
		return []schema.Option{
			{Value: "true", Label: "Da"},
			{Value: "false", Label: "Nu"},
		}
	}
	choices := make([]schema.Option, 0, len(prop.Enum))
	for _, raw := range prop.Enum {
		value := fmt.Sprintf("%v", raw)
		choices = append(choices, schema.Option{Value: value, Label: value})
	}
	return choices
}

func stringExtension(prop *openapi3.Schema, key string) string {
	value, _ := prop.Extensions[key].(string)
	return value
}

func intExtension(prop *openapi3.Schema, key string) int {
	switch value := prop.Extensions[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}
