package schema_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fieldservice/reportgen/pkg/schema"
)

const descriptorDoc = `
form: service-report
fields:
  - name: client
    kind: combobox
    label: Client
    placeholder: Selectati clientul
    choices:
      - value: c1
        label: Client 1
      - value: c2
        label: Client 2
  - name: standardProcedures
    kind: combobox
    label: Proceduri standard
    repeatable: true
    maxInstances: 5
    addLabel: Adauga procedura standard
    choices:
      - value: proc1
        label: Procedura 1
  - name: beforePhotos
    kind: image
    label: Poze inainte de interventie
    maxFiles: 5
`

func TestParseDescriptorDocument(t *testing.T) {
	descriptor, err := schema.Parse([]byte(descriptorDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if descriptor.Name() != "service-report" {
		t.Fatalf("form name: got %q", descriptor.Name())
	}

	names := descriptor.Names()
	if len(names) != 3 || names[0] != "client" || names[1] != "standardProcedures" {
		t.Fatalf("file order not preserved: %v", names)
	}

	procedures, ok := descriptor.Field("standardProcedures")
	if !ok {
		t.Fatal("standardProcedures not declared")
	}
	if !procedures.Repeatable || procedures.MaxInstances != 5 {
		t.Fatalf("repetition bounds: %+v", procedures)
	}
	if procedures.AddLabel != "Adauga procedura standard" {
		t.Fatalf("add label: %q", procedures.AddLabel)
	}

	photos, _ := descriptor.Field("beforePhotos")
	if photos.MaxFiles != 5 {
		t.Fatalf("maxFiles: %d", photos.MaxFiles)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	doc := strings.ReplaceAll(descriptorDoc, "kind: image", "kind: hologram")
	if _, err := schema.Parse([]byte(doc)); err == nil {
		t.Fatal("expected unknown kind to fail the load")
	}
}

func TestParseRejectsMissingFormName(t *testing.T) {
	if _, err := schema.Parse([]byte("fields:\n  - name: a\n    kind: text\n")); err == nil {
		t.Fatal("expected missing form name to fail")
	}
}

func TestLoadFromFS(t *testing.T) {
	files := fstest.MapFS{
		"forms/service-report.yaml": &fstest.MapFile{Data: []byte(descriptorDoc)},
	}
	descriptor, err := schema.Load(files, "forms/service-report.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if descriptor.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", descriptor.Len())
	}
}
