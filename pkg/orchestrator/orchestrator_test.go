package orchestrator_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/orchestrator"
	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/report"
)

func testRefs() refdata.Set {
	return refdata.Set{
		Clients: refdata.NewCatalog([]refdata.Entry{
			{ID: "c1", Label: "Acme SRL", Meta: map[string]string{"contact": "office@acme.ro"}},
		}),
		Equipment: refdata.NewCatalog([]refdata.Entry{
			{ID: "e1", Label: "Compresor AR-7500", Meta: map[string]string{"serialNumber": "SN-0042"}},
		}),
		Parts: refdata.NewCatalog([]refdata.Entry{
			{ID: "p1", Label: "Filter", Meta: map[string]string{"partNumber": "P-100"}},
		}),
		Suppliers: refdata.NewCatalog(nil),
		Procedures: refdata.NewCatalog([]refdata.Entry{
			{ID: "proc1", Label: "Curatare filtre de aer"},
		}),
	}
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func fixedClock() time.Time {
	return time.Date(2025, 4, 28, 10, 15, 0, 0, time.UTC)
}

// stubDocumentRenderer keeps document assertions independent of PDF internals.
type stubDocumentRenderer struct {
	rendered *report.ServiceReportRecord
}

func (s *stubDocumentRenderer) Name() string        { return "stub" }
func (s *stubDocumentRenderer) ContentType() string { return "application/pdf" }

func (s *stubDocumentRenderer) RenderDocument(_ context.Context, record report.ServiceReportRecord, _ render.Options) ([]byte, error) {
	s.rendered = &record
	return []byte("%PDF-stub"), nil
}

func filledRecord(t *testing.T, o *orchestrator.Orchestrator) *form.Record {
	t.Helper()
	record, err := o.NewRecord(context.Background())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	set := func(name string, value any) {
		t.Helper()
		if err := record.Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	set("client", "c1")
	set("representative", "Ion Popescu")
	set("equipment", "e1")
	set("problemDescription", "Zgomot puternic in timpul functionarii")
	set("standardProcedures", []string{"proc1"})
	set("replacedParts", []form.PartSelection{{Part: "p1", Quantity: 2}})
	set("workHours", "2.5")
	set("conclusions", "Echipamentul functioneaza la parametri normali")
	set("clientSignature", "data:image/png;base64,Qw==")
	set("engineerSignature", "data:image/png;base64,RA==")
	return record
}

func TestRenderFormDefaultsToVanilla(t *testing.T) {
	o := orchestrator.New(
		orchestrator.WithReferenceData(testRefs()),
		orchestrator.WithLogger(quietLogger()),
	)

	result, err := o.RenderForm(context.Background(), orchestrator.FormRequest{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.ContentType != "text/html; charset=utf-8" {
		t.Fatalf("content type: %q", result.ContentType)
	}
	if !strings.Contains(string(result.Output), `data-form="service-report"`) {
		t.Fatal("service-report form missing from output")
	}
}

func TestSubmitReportRejectsInvalid(t *testing.T) {
	o := orchestrator.New(
		orchestrator.WithReferenceData(testRefs()),
		orchestrator.WithLogger(quietLogger()),
	)
	record, err := o.NewRecord(context.Background())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}

	result, err := o.SubmitReport(context.Background(), orchestrator.SubmitRequest{Record: record})
	if !errors.Is(err, orchestrator.ErrInvalidReport) {
		t.Fatalf("expected ErrInvalidReport, got %v", err)
	}
	if result.Validation.Valid || len(result.Validation.Fields) == 0 {
		t.Fatal("validation messages missing")
	}
	if result.Document != nil {
		t.Fatal("no document may be produced for an invalid record")
	}
}

func TestSubmitReportRendersDocument(t *testing.T) {
	stub := &stubDocumentRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(stub)

	o := orchestrator.New(
		orchestrator.WithReferenceData(testRefs()),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultDocumentRenderer("stub"),
		orchestrator.WithClock(fixedClock),
		orchestrator.WithLogger(quietLogger()),
	)

	result, err := o.SubmitReport(context.Background(), orchestrator.SubmitRequest{
		Record: filledRecord(t, o),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !bytes.Equal(result.Document, []byte("%PDF-stub")) {
		t.Fatal("document bytes missing")
	}
	if result.Filename != "service-report-Acme SRL-2025-04-28.pdf" {
		t.Fatalf("filename: %q", result.Filename)
	}
	if stub.rendered == nil {
		t.Fatal("document renderer was not invoked")
	}
	if stub.rendered.Client != "Acme SRL" {
		t.Fatalf("record must be enriched before rendering, got client %q", stub.rendered.Client)
	}
	if stub.rendered.SerialNumber != "SN-0042" {
		t.Fatalf("serial: %q", stub.rendered.SerialNumber)
	}
	if len(stub.rendered.ReplacedParts) != 1 || stub.rendered.ReplacedParts[0].PartNumber != "P-100" {
		t.Fatalf("parts: %+v", stub.rendered.ReplacedParts)
	}
}

func TestSubmitReportEndToEndPDF(t *testing.T) {
	o := orchestrator.New(
		orchestrator.WithReferenceData(testRefs()),
		orchestrator.WithClock(fixedClock),
		orchestrator.WithLogger(quietLogger()),
	)

	first, err := o.SubmitReport(context.Background(), orchestrator.SubmitRequest{Record: filledRecord(t, o)})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !bytes.HasPrefix(first.Document, []byte("%PDF-")) {
		t.Fatal("default renderer must produce a PDF")
	}
	if first.ContentType != "application/pdf" {
		t.Fatalf("content type: %q", first.ContentType)
	}
}

func TestReferencesRequireSource(t *testing.T) {
	o := orchestrator.New(orchestrator.WithLogger(quietLogger()))
	if _, err := o.References(context.Background()); err == nil {
		t.Fatal("missing source must error")
	}
}
