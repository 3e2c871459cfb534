// Package pdf renders finalized service-report records as paginated A4
// documents. The layout is fixed: section order never varies, sections with
// nothing to say are omitted entirely, and blocks that must not split (table
// rows, the signature pair) are measured before they are placed. With the
// clock injected, the same record always produces byte-identical output.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/report"
)

const (
	lineHeight    = 6.0
	sectionGap    = 4.0
	photoHeight   = 45.0
	photoGap      = 3.0
	photosPerRow  = 3
	signatureLine = 30.0
)

type Option func(*Renderer)

// WithClock injects the clock used for the creation date and the printed
// service date fallback.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLetterhead sets the default header image (PNG bytes) stamped on the
// first page.
func WithLetterhead(png []byte) Option {
	return func(r *Renderer) {
		r.letterhead = png
	}
}

type Renderer struct {
	now        func() time.Time
	letterhead []byte
	compress   bool
}

// New constructs the PDF renderer applying any provided options.
func New(options ...Option) *Renderer {
	renderer := &Renderer{now: time.Now, compress: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(renderer)
	}
	return renderer
}

func (r *Renderer) Name() string {
	return "pdf"
}

func (r *Renderer) ContentType() string {
	return "application/pdf"
}

// RenderDocument lays out the service report in its fixed section order.
func (r *Renderer) RenderDocument(_ context.Context, record report.ServiceReportRecord, options render.Options) ([]byte, error) {
	now := r.now
	if options.Now != nil {
		now = options.Now
	}
	letterhead := r.letterhead
	if options.Letterhead != nil {
		letterhead = options.Letterhead
	}

	d := newDoc(now(), r.compress)
	d.letterhead(letterhead)
	d.title(record, now())
	d.generalInformation(record)
	d.problemDescription(record)
	d.procedures("PROCEDURI DE MENTENANTA STANDARD EFECTUATE", record.StandardProcedures)
	d.procedures("PROCEDURI DE MENTENANTA SUPLIMENTARE EFECTUATE", record.AdditionalProcedures)
	d.replacedParts(record)
	d.additionalInformation(record)
	d.conclusions(record)
	d.signatures(record)

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: write document: %w", err)
	}
	return buf.Bytes(), nil
}

// doc wraps the fpdf handle with the layout helpers for one document.
type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string

	contentWidth float64
	breakAt      float64
}

func newDoc(now time.Time, compress bool) *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	// Sort resource-dictionary keys; fpdf otherwise emits them in map
	// iteration order, breaking byte-identical output.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle("Raport de service", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()

	return &doc{
		pdf:          pdf,
		tr:           pdf.UnicodeTranslatorFromDescriptor(""),
		contentWidth: pageWidth - left - right,
		breakAt:      pageHeight - bottom,
	}
}

// ensureRoom starts a new page when the next block of the given height would
// cross the bottom margin. Callers measure their block first so it lands on
// one page as a unit.
func (d *doc) ensureRoom(height float64) {
	if d.pdf.GetY()+height > d.breakAt {
		d.pdf.AddPage()
	}
}

func (d *doc) letterhead(png []byte) {
	if len(png) == 0 {
		return
	}
	info := d.pdf.RegisterImageOptionsReader("letterhead",
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if d.pdf.Err() {
		return
	}
	height := d.contentWidth * info.Height() / info.Width()
	d.pdf.ImageOptions("letterhead", 15, d.pdf.GetY(), d.contentWidth, height,
		true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	d.pdf.Ln(sectionGap)
}

func (d *doc) title(record report.ServiceReportRecord, now time.Time) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(d.contentWidth, 10, d.tr("RAPORT DE SERVICE"), "", 1, "C", false, 0, "")

	d.pdf.SetFont("Helvetica", "", 9)
	serviceDate := record.ServiceDate
	if serviceDate.IsZero() {
		serviceDate = now
	}
	meta := "Data: " + serviceDate.Format("02.01.2006")
	if record.ReportID != "" {
		meta = "Nr. " + record.ReportID + "  |  " + meta
	}
	d.pdf.CellFormat(d.contentWidth, lineHeight, d.tr(meta), "", 1, "C", false, 0, "")
	d.pdf.Ln(sectionGap)
}

func (d *doc) sectionTitle(title string) {
	d.ensureRoom(lineHeight * 3)
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.CellFormat(d.contentWidth, lineHeight+1, d.tr(title), "", 1, "L", true, 0, "")
	d.pdf.Ln(1)
	d.pdf.SetFont("Helvetica", "", 10)
}

func (d *doc) keyValue(label, value string) {
	if value == "" {
		return
	}
	d.ensureRoom(lineHeight)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(50, lineHeight, d.tr(label+":"), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(d.contentWidth-50, lineHeight, d.tr(value), "", "L", false)
}

func (d *doc) generalInformation(record report.ServiceReportRecord) {
	d.sectionTitle("INFORMATII GENERALE")
	d.keyValue("Client", record.Client)
	d.keyValue("Reprezentant", record.Representative)
	d.keyValue("Contact", record.Contact)
	d.keyValue("Aparat", record.Equipment)
	d.keyValue("Serie (S/N)", record.SerialNumber)
	d.keyValue("Contract", record.ContractNumber)
	d.pdf.Ln(sectionGap)
}

// problemDescription carries the before-photo grid as its sub-section.
func (d *doc) problemDescription(record report.ServiceReportRecord) {
	if record.ProblemDescription == "" && len(record.BeforePhotos) == 0 {
		return
	}
	d.sectionTitle("DESCRIEREA PROBLEMEI")
	if record.ProblemDescription != "" {
		d.paragraph(record.ProblemDescription)
	}
	d.photos("POZE INAINTE DE INTERVENTIE", "before", record.BeforePhotos)
	d.pdf.Ln(sectionGap)
}

// procedures renders a numbered list; a list with nothing in it omits the
// whole section, heading included.
func (d *doc) procedures(title string, items []string) {
	if len(items) == 0 {
		return
	}
	d.sectionTitle(title)
	for i, item := range items {
		lines := d.pdf.SplitText(fmt.Sprintf("%d. %s", i+1, item), d.contentWidth)
		d.ensureRoom(float64(len(lines)) * lineHeight)
		d.pdf.MultiCell(d.contentWidth, lineHeight, d.tr(fmt.Sprintf("%d. %s", i+1, item)), "", "L", false)
	}
	d.pdf.Ln(sectionGap)
}

// replacedParts renders the consumption table. Each row is atomic: it is
// measured first and moved to the next page whole when it does not fit.
func (d *doc) replacedParts(record report.ServiceReportRecord) {
	if len(record.ReplacedParts) == 0 {
		return
	}
	d.sectionTitle("PIESE DE SCHIMB UTILIZATE")

	descriptionWidth := d.contentWidth - 50

	d.ensureRoom(lineHeight)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(descriptionWidth, lineHeight, d.tr("Denumire"), "B", 0, "L", false, 0, "")
	d.pdf.CellFormat(50, lineHeight, d.tr("Cod piesa"), "B", 1, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)

	for _, part := range record.ReplacedParts {
		description := fmt.Sprintf("%s (%d)", part.Description, part.Quantity)
		lines := d.pdf.SplitText(description, descriptionWidth)
		rowHeight := float64(len(lines)) * lineHeight
		d.ensureRoom(rowHeight)

		y := d.pdf.GetY()
		d.pdf.MultiCell(descriptionWidth, lineHeight, d.tr(description), "", "L", false)
		after := d.pdf.GetY()
		d.pdf.SetXY(15+descriptionWidth, y)
		d.pdf.CellFormat(50, lineHeight, d.tr(part.PartNumber), "", 0, "L", false, 0, "")
		d.pdf.SetY(after)
	}

	// The note line is part of the section whenever it renders; the bon
	// number is filled in by hand when absent.
	d.pdf.Ln(1)
	note := "Nr. Bon de consum (daca este cazul) :"
	if record.ConsumptionNote != "" {
		note += " " + record.ConsumptionNote
	}
	d.paragraph(note)
	d.pdf.Ln(sectionGap)
}

func (d *doc) additionalInformation(record report.ServiceReportRecord) {
	d.sectionTitle("INFORMATII SUPLIMENTARE")

	d.ensureRoom(lineHeight)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(d.contentWidth, lineHeight,
		d.tr("TIMP DE LUCRU: "+formatHours(record.WorkHours)+" ore"), "", 1, "L", false, 0, "")

	if record.TravelDistance > 0 {
		d.ensureRoom(lineHeight)
		d.pdf.CellFormat(d.contentWidth, lineHeight,
			d.tr("CHELTUIELI DE TRANSPORT/KM: "+strconv.Itoa(record.TravelDistance)), "", 1, "L", false, 0, "")
	}
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.Ln(sectionGap)
}

// photos lays the attached images out in fixed-height rows. Images that fail
// to decode are skipped; an all-invalid list still omits the section.
func (d *doc) photos(title, prefix string, refs []string) {
	images := make([]decodedImage, 0, len(refs))
	for _, ref := range refs {
		image, err := decodeDataURL(ref)
		if err != nil {
			continue
		}
		images = append(images, image)
	}
	if len(images) == 0 {
		return
	}

	d.sectionTitle(title)
	width := (d.contentWidth - photoGap*(photosPerRow-1)) / photosPerRow

	for i, image := range images {
		column := i % photosPerRow
		if column == 0 {
			d.ensureRoom(photoHeight + photoGap)
		}
		name := fmt.Sprintf("%s-%d", prefix, i)
		d.pdf.RegisterImageOptionsReader(name,
			fpdf.ImageOptions{ImageType: imageType(image.Format)}, bytes.NewReader(image.Data))
		if d.pdf.Err() {
			return
		}
		x := 15 + float64(column)*(width+photoGap)
		d.pdf.ImageOptions(name, x, d.pdf.GetY(), width, photoHeight,
			false, fpdf.ImageOptions{ImageType: imageType(image.Format)}, 0, "")
		if column == photosPerRow-1 || i == len(images)-1 {
			d.pdf.SetY(d.pdf.GetY() + photoHeight + photoGap)
		}
	}
	d.pdf.Ln(sectionGap - photoGap)
}

// conclusions carries the after-photo grid as its sub-section.
func (d *doc) conclusions(record report.ServiceReportRecord) {
	if record.Conclusions == "" && len(record.AfterPhotos) == 0 {
		return
	}
	d.sectionTitle("CONCLUZII")
	if record.Conclusions != "" {
		d.paragraph(record.Conclusions)
	}
	d.photos("POZE DUPA INTERVENTIE", "after", record.AfterPhotos)
	d.pdf.Ln(sectionGap)
}

// signatures renders both signature lines as one atomic block so the names
// and their strokes never separate across a page break.
func (d *doc) signatures(record report.ServiceReportRecord) {
	d.ensureRoom(signatureLine + lineHeight*2)

	columnWidth := d.contentWidth / 2
	y := d.pdf.GetY()

	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(columnWidth, lineHeight, d.tr("Semnatura client"), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(columnWidth, lineHeight, d.tr("Semnatura inginer"), "", 1, "L", false, 0, "")

	d.signatureImage("signature-client", record.ClientSignature, 15, y+lineHeight)
	d.signatureImage("signature-engineer", record.EngineerSignature, 15+columnWidth, y+lineHeight)

	d.pdf.SetY(y + lineHeight + signatureLine)
}

func (d *doc) signatureImage(name, ref string, x, y float64) {
	image, err := decodeDataURL(ref)
	if err != nil {
		return
	}
	d.pdf.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: imageType(image.Format)}, bytes.NewReader(image.Data))
	if d.pdf.Err() {
		return
	}
	d.pdf.ImageOptions(name, x, y, 60, signatureLine-5,
		false, fpdf.ImageOptions{ImageType: imageType(image.Format)}, 0, "")
}

func (d *doc) paragraph(text string) {
	lines := d.pdf.SplitText(text, d.contentWidth)
	d.ensureRoom(float64(len(lines)) * lineHeight)
	d.pdf.MultiCell(d.contentWidth, lineHeight, d.tr(text), "", "L", false)
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

func imageType(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}
