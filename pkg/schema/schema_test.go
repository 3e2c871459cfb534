package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fieldservice/reportgen/pkg/schema"
)

func TestFormDescriptorPreservesInsertionOrder(t *testing.T) {
	descriptor := schema.NewFormDescriptor("service-report").
		MustAdd("client", schema.FieldDescriptor{
			Kind:    schema.KindCombobox,
			Label:   "Client",
			Choices: []schema.Option{{Value: "c1", Label: "Client 1"}},
		}).
		MustAdd("representative", schema.FieldDescriptor{
			Kind:  schema.KindText,
			Label: "Reprezentant",
		}).
		MustAdd("problemDescription", schema.FieldDescriptor{
			Kind:  schema.KindTextArea,
			Label: "Descriere problema",
		})

	want := []string{"client", "representative", "problemDescription"}
	if diff := cmp.Diff(want, descriptor.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	fields := descriptor.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0].Name != "client" || fields[0].Kind != schema.KindCombobox {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}
}

func TestFormDescriptorRejectsDuplicates(t *testing.T) {
	descriptor := schema.NewFormDescriptor("test")
	if err := descriptor.Add("name", schema.FieldDescriptor{Kind: schema.KindText}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := descriptor.Add("name", schema.FieldDescriptor{Kind: schema.KindText}); err == nil {
		t.Fatal("expected duplicate field to be rejected")
	}
}

func TestFieldDescriptorValidate(t *testing.T) {
	cases := []struct {
		name    string
		field   schema.FieldDescriptor
		wantErr bool
	}{
		{
			name:  "plain text",
			field: schema.FieldDescriptor{Kind: schema.KindText},
		},
		{
			name:    "unknown kind",
			field:   schema.FieldDescriptor{Kind: "hologram"},
			wantErr: true,
		},
		{
			name:    "selection without choices",
			field:   schema.FieldDescriptor{Kind: schema.KindCombobox},
			wantErr: true,
		},
		{
			name: "selection with choices",
			field: schema.FieldDescriptor{
				Kind:    schema.KindToggle,
				Choices: []schema.Option{{Value: "da", Label: "Da"}},
			},
		},
		{
			name:    "max instances without repeatable",
			field:   schema.FieldDescriptor{Kind: schema.KindText, MaxInstances: 3},
			wantErr: true,
		},
		{
			name: "repeatable with bound",
			field: schema.FieldDescriptor{
				Kind:         schema.KindText,
				Repeatable:   true,
				MaxInstances: 5,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.field.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestChoiceLabelFallsBackToValue(t *testing.T) {
	field := schema.FieldDescriptor{
		Kind: schema.KindCombobox,
		Choices: []schema.Option{
			{Value: "p-100", Label: "Filtru de aer"},
		},
	}
	if got := field.ChoiceLabel("p-100"); got != "Filtru de aer" {
		t.Fatalf("label lookup: got %q", got)
	}
	if got := field.ChoiceLabel("p-999"); got != "p-999" {
		t.Fatalf("fallback: got %q", got)
	}
}
