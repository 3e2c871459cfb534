package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/report"
)

func fixedClock() time.Time {
	return time.Date(2025, 4, 28, 10, 15, 0, 0, time.UTC)
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func fullRecord(t *testing.T) report.ServiceReportRecord {
	t.Helper()
	signature := pngDataURL(t)
	return report.ServiceReportRecord{
		Client:               "Acme SRL",
		Representative:       "Ion Popescu",
		Contact:              "office@acme.ro",
		Equipment:            "Compresor AR-7500",
		SerialNumber:         "SN-0042",
		ContractNumber:       "CTR-2025-17",
		ProblemDescription:   "Zgomot puternic in timpul functionarii",
		BeforePhotos:         []string{pngDataURL(t)},
		AfterPhotos:          []string{pngDataURL(t)},
		StandardProcedures:   []string{"Verificare conexiuni electrice", "Curatare filtre de aer"},
		AdditionalProcedures: []string{"Inlocuire garnitura capac"},
		ReplacedParts: []report.ReplacedPart{
			{PartNumber: "P-100", Description: "Filter", Quantity: 2},
		},
		WorkHours:         2.5,
		TravelDistance:    40,
		Conclusions:       "Echipamentul functioneaza la parametri normali",
		ClientSignature:   signature,
		EngineerSignature: signature,
		ReportID:          "SRV-20250428-abcd1234",
		ServiceDate:       fixedClock(),
		Status:            report.StatusSubmitted,
	}
}

func renderPlain(t *testing.T, record report.ServiceReportRecord) string {
	t.Helper()
	renderer := New(WithClock(fixedClock))
	renderer.compress = false
	out, err := renderer.RenderDocument(context.Background(), record, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderDocumentDeterministic(t *testing.T) {
	renderer := New(WithClock(fixedClock))
	record := fullRecord(t)

	first, err := renderer.RenderDocument(context.Background(), record, render.Options{})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.RenderDocument(context.Background(), record, render.Options{})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical record and clock must produce byte-identical output")
	}
}

func TestRenderDocumentSectionOrder(t *testing.T) {
	content := renderPlain(t, fullRecord(t))

	sections := []string{
		"RAPORT DE SERVICE",
		"INFORMATII GENERALE",
		"DESCRIEREA PROBLEMEI",
		"Zgomot puternic in timpul functionarii",
		"POZE INAINTE DE INTERVENTIE",
		"PROCEDURI DE MENTENANTA STANDARD EFECTUATE",
		"PROCEDURI DE MENTENANTA SUPLIMENTARE EFECTUATE",
		"PIESE DE SCHIMB UTILIZATE",
		"INFORMATII SUPLIMENTARE",
		"CONCLUZII",
		"Echipamentul functioneaza la parametri normali",
		"POZE DUPA INTERVENTIE",
		"Semnatura client",
	}
	last := -1
	for _, section := range sections {
		pos := strings.Index(content, section)
		if pos < 0 {
			t.Fatalf("missing section %q", section)
		}
		if pos < last {
			t.Fatalf("section %q out of order", section)
		}
		last = pos
	}
}

func TestRenderDocumentOmitsEmptySections(t *testing.T) {
	record := fullRecord(t)
	record.ReplacedParts = nil
	record.AdditionalProcedures = nil
	record.BeforePhotos = nil
	record.AfterPhotos = nil
	content := renderPlain(t, record)

	for _, absent := range []string{
		"PIESE DE SCHIMB UTILIZATE",
		"PROCEDURI DE MENTENANTA SUPLIMENTARE EFECTUATE",
		"POZE INAINTE DE INTERVENTIE",
		"POZE DUPA INTERVENTIE",
		"Nr. Bon de consum",
	} {
		if strings.Contains(content, absent) {
			t.Fatalf("empty section %q must be omitted", absent)
		}
	}
	if !strings.Contains(content, "INFORMATII GENERALE") {
		t.Fatal("populated sections must remain")
	}
}

func TestRenderDocumentPartsAndMetrics(t *testing.T) {
	content := renderPlain(t, fullRecord(t))

	// parentheses are escaped inside PDF string literals
	if !strings.Contains(content, `Filter \(2\)`) {
		t.Fatal("part row must read description followed by quantity")
	}
	if !strings.Contains(content, "P-100") {
		t.Fatal("part number column missing")
	}
	if !strings.Contains(content, "TIMP DE LUCRU: 2.5 ore") {
		t.Fatal("work hours line missing")
	}
	if !strings.Contains(content, "CHELTUIELI DE TRANSPORT/KM: 40") {
		t.Fatal("travel line missing")
	}
}

func TestRenderDocumentPartsNoteLine(t *testing.T) {
	content := renderPlain(t, fullRecord(t))
	if !strings.Contains(content, `Nr. Bon de consum \(daca este cazul\) :`) {
		t.Fatal("parts section must end with the consumption note line")
	}

	record := fullRecord(t)
	record.ConsumptionNote = "BC-1042"
	content = renderPlain(t, record)
	if !strings.Contains(content, `Nr. Bon de consum \(daca este cazul\) : BC-1042`) {
		t.Fatal("consumption note number must follow the label")
	}
}

func TestRenderDocumentZeroTravelOmitted(t *testing.T) {
	record := fullRecord(t)
	record.TravelDistance = 0
	content := renderPlain(t, record)

	if strings.Contains(content, "CHELTUIELI DE TRANSPORT") {
		t.Fatal("zero travel distance must not render a travel line")
	}
	if !strings.Contains(content, "TIMP DE LUCRU: 2.5 ore") {
		t.Fatal("work hours must render regardless")
	}
}

func TestRenderDocumentSkipsUndecodablePhotos(t *testing.T) {
	record := fullRecord(t)
	record.BeforePhotos = []string{"not-a-data-url"}
	content := renderPlain(t, record)

	if strings.Contains(content, "POZE INAINTE DE INTERVENTIE") {
		t.Fatal("a list with no decodable photos must omit the section")
	}
}

func TestDecodeDataURL(t *testing.T) {
	decoded, err := decodeDataURL(pngDataURL(t))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Format != "png" || len(decoded.Data) == 0 {
		t.Fatalf("unexpected image: format %q, %d bytes", decoded.Format, len(decoded.Data))
	}

	for _, bad := range []string{
		"",
		"plain text",
		"data:image/png;base64,%%%",
		"data:image/png;base64,AQ==",
		"data:image/tiff;base64,AQ==",
		"data:text/plain;base64,AQ==",
		"data:image/png,AQ==",
	} {
		if _, err := decodeDataURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
