package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/renderers/vanilla"
	"github.com/fieldservice/reportgen/pkg/report"
	"github.com/fieldservice/reportgen/pkg/schema"
)

func testDescriptor() *schema.FormDescriptor {
	return schema.NewFormDescriptor("test-form").
		MustAdd("client", schema.FieldDescriptor{
			Kind:        schema.KindCombobox,
			Label:       "Client",
			Placeholder: "Selectati clientul",
			Choices: []schema.Option{
				{Value: "c1", Label: "Acme SRL"},
				{Value: "c2", Label: "Beta SA"},
			},
		}).
		MustAdd("notes", schema.FieldDescriptor{
			Kind:        schema.KindTextArea,
			Label:       "Observatii",
			Placeholder: "Introduceti observatiile",
		}).
		MustAdd("procedures", schema.FieldDescriptor{
			Kind:         schema.KindText,
			Label:        "Proceduri",
			Repeatable:   true,
			MaxInstances: 2,
			AddLabel:     "Adauga procedura",
		}).
		MustAdd("parts", schema.FieldDescriptor{
			Kind:         schema.KindQuantityCombobox,
			Label:        "Piese",
			Repeatable:   true,
			MaxInstances: 3,
			AddLabel:     "Adauga piesa",
			Choices:      []schema.Option{{Value: "p1", Label: "Filter"}},
		}).
		MustAdd("photos", schema.FieldDescriptor{
			Kind:     schema.KindImage,
			Label:    "Poze",
			MaxFiles: 5,
		}).
		MustAdd("signature", schema.FieldDescriptor{
			Kind:  schema.KindSignature,
			Label: "Semnatura",
		})
}

func renderHTML(t *testing.T, record *form.Record, options render.Options) string {
	t.Helper()
	out, err := vanilla.New().RenderForm(context.Background(), record.Descriptor(), record, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderFormDeclarationOrder(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	html := renderHTML(t, record, render.Options{})

	last := -1
	for _, name := range []string{"client", "notes", "procedures", "parts", "photos", "signature"} {
		marker := `data-field="` + name + `"`
		pos := strings.Index(html, marker)
		if pos < 0 {
			t.Fatalf("missing field %q in output", name)
		}
		if pos < last {
			t.Fatalf("field %q rendered out of declaration order", name)
		}
		last = pos
	}
}

func TestRenderFormComboboxChoices(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	if err := record.Set("client", "c2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	html := renderHTML(t, record, render.Options{})

	if !strings.Contains(html, `<option value="c2" selected>Beta SA</option>`) {
		t.Fatalf("selected choice missing:\n%s", html)
	}
	if !strings.Contains(html, `<option value="">Selectati clientul</option>`) {
		t.Fatal("placeholder option missing")
	}
}

func TestRenderFormSingleInstanceHasNoRemove(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	html := renderHTML(t, record, render.Options{})

	if strings.Contains(html, `class="instance-remove" data-field="procedures"`) {
		t.Fatal("sole instance must not render a remove affordance")
	}
	if !strings.Contains(html, `class="instance-add" data-field="procedures">Adauga procedura<`) {
		t.Fatal("add affordance missing while below the bound")
	}
}

func TestRenderFormAddHiddenAtBound(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	if err := record.AddInstance("procedures"); err != nil {
		t.Fatalf("add: %v", err)
	}
	html := renderHTML(t, record, render.Options{})

	if !strings.Contains(html, `class="instance-remove" data-field="procedures"`) {
		t.Fatal("remove affordance missing with two instances")
	}
	if strings.Contains(html, `class="instance-add" data-field="procedures"`) {
		t.Fatal("add affordance must disappear at MaxInstances")
	}
}

func TestRenderFormQuantityComboboxPairsInputs(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	if err := record.Set("parts", []form.PartSelection{{Part: refdata.ID("p1"), Quantity: 3}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	html := renderHTML(t, record, render.Options{})

	if !strings.Contains(html, `<option value="p1" selected>Filter</option>`) {
		t.Fatal("part selection not rendered")
	}
	if !strings.Contains(html, `name="parts[0].quantity" value="3"`) {
		t.Fatalf("quantity input not rendered:\n%s", html)
	}
}

func TestRenderFormFieldErrors(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	html := renderHTML(t, record, render.Options{
		Errors: map[string][]string{"notes": {"Introduceti observatiile"}},
	})

	if !strings.Contains(html, `<p class="field-error">Introduceti observatiile</p>`) {
		t.Fatal("field error not rendered")
	}
}

func TestRenderFormUnregisteredKindSkipped(t *testing.T) {
	components := vanilla.NewComponentRegistry()
	components.MustRegister(schema.KindText, func(b *strings.Builder, ctx vanilla.ControlContext) error {
		b.WriteString(`<input type="text">`)
		return nil
	})

	descriptor := schema.NewFormDescriptor("partial").
		MustAdd("name", schema.FieldDescriptor{Kind: schema.KindText, Label: "Nume"}).
		MustAdd("signed", schema.FieldDescriptor{Kind: schema.KindSignature, Label: "Semnatura"})
	record := form.NewRecord(descriptor)

	out, err := vanilla.New(vanilla.WithComponents(components)).
		RenderForm(context.Background(), descriptor, record, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	if !strings.Contains(html, `data-field="name"`) {
		t.Fatal("registered kind missing")
	}
	if strings.Contains(html, `data-field="signed"`) {
		t.Fatal("unregistered kind must render nothing")
	}
}

func TestRenderFormStripsPastedMarkup(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	if err := record.Set("notes", `defect <script>alert(1)</script> motor`); err != nil {
		t.Fatalf("set: %v", err)
	}
	html := renderHTML(t, record, render.Options{})

	if strings.Contains(html, "<script>") {
		t.Fatal("markup must not survive rendering")
	}
	if !strings.Contains(html, "defect") || !strings.Contains(html, "motor") {
		t.Fatal("surrounding text must survive sanitization")
	}
}

func TestRenderFormImagesAndSignature(t *testing.T) {
	record := form.NewRecord(testDescriptor())
	if err := record.AttachImages("photos", "data:image/png;base64,AA=="); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := record.Set("signature", "data:image/png;base64,Qw=="); err != nil {
		t.Fatalf("set: %v", err)
	}
	html := renderHTML(t, record, render.Options{})

	if !strings.Contains(html, `data-max-files="5"`) {
		t.Fatal("image capacity attribute missing")
	}
	if !strings.Contains(html, `<img src="data:image/png;base64,AA==" alt="">`) {
		t.Fatal("attached image missing")
	}
	if !strings.Contains(html, `<img class="signature-preview" src="data:image/png;base64,Qw==" alt="">`) {
		t.Fatal("signature preview missing")
	}
}

func TestRenderFormServiceReportDescriptor(t *testing.T) {
	refs := refdata.Set{
		Clients:    refdata.NewCatalog([]refdata.Entry{{ID: "c1", Label: "Acme SRL"}}),
		Equipment:  refdata.NewCatalog([]refdata.Entry{{ID: "e1", Label: "Compresor AR-7500"}}),
		Parts:      refdata.NewCatalog([]refdata.Entry{{ID: "p1", Label: "Filter"}}),
		Suppliers:  refdata.NewCatalog(nil),
		Procedures: refdata.NewCatalog([]refdata.Entry{{ID: "proc1", Label: "Curatare filtre"}}),
	}
	descriptor := report.Descriptor(refs)
	record := form.NewRecord(descriptor)
	html := renderHTML(t, record, render.Options{})

	for _, want := range []string{
		`data-form="service-report"`,
		`>Client</label>`,
		`>Piese inlocuite</label>`,
		`>Semnatura inginer</label>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in service-report form", want)
		}
	}
}
