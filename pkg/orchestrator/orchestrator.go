// Package orchestrator coordinates the full pipeline: reference data in,
// rendered form out, and validated submission to finished document. It applies
// sensible defaults (vanilla form renderer, PDF document renderer) while
// remaining open to dependency injection for advanced callers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/refdata"
	"github.com/fieldservice/reportgen/pkg/render"
	"github.com/fieldservice/reportgen/pkg/renderers/pdf"
	"github.com/fieldservice/reportgen/pkg/renderers/vanilla"
	"github.com/fieldservice/reportgen/pkg/report"
	"github.com/fieldservice/reportgen/pkg/validation"
)

const (
	defaultFormRenderer     = "vanilla"
	defaultDocumentRenderer = "pdf"
)

// ErrInvalidReport signals a submission that did not pass validation. The
// accompanying SubmitResult carries the field messages.
var ErrInvalidReport = errors.New("orchestrator: report failed validation")

// ReferenceSource supplies the catalogs the form depends on. The API client
// implements it; tests inject fixtures through WithReferenceData.
type ReferenceSource interface {
	ReferenceData(ctx context.Context) (refdata.Set, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithReferenceSource injects the reference data source.
func WithReferenceSource(source ReferenceSource) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithReferenceData seeds the catalogs directly, bypassing any source.
func WithReferenceData(refs refdata.Set) Option {
	return func(o *Orchestrator) {
		o.refs = &refs
	}
}

// WithDefaultFormRenderer overrides the renderer used when a request omits an
// explicit renderer name.
func WithDefaultFormRenderer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.formRenderer = name
		}
	}
}

// WithDefaultDocumentRenderer overrides the document renderer default.
func WithDefaultDocumentRenderer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.documentRenderer = name
		}
	}
}

// WithClock injects the clock used for report identifiers, filenames and the
// document creation date.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLetterhead sets the header image stamped on rendered documents.
func WithLetterhead(png []byte) Option {
	return func(o *Orchestrator) {
		o.letterhead = png
	}
}

// WithLogger injects the structured logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator wires the form engine and the document renderer together.
type Orchestrator struct {
	registry         *render.Registry
	source           ReferenceSource
	formRenderer     string
	documentRenderer string
	now              func() time.Time
	letterhead       []byte
	logger           logrus.FieldLogger

	mu   sync.Mutex
	refs *refdata.Set
}

// New constructs an orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		formRenderer:     defaultFormRenderer,
		documentRenderer: defaultDocumentRenderer,
		now:              time.Now,
		logger:           logrus.StandardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(vanilla.New())
		o.registry.MustRegister(pdf.New(pdf.WithClock(o.now), pdf.WithLetterhead(o.letterhead)))
	}
	return o
}

// References returns the catalog set, fetching it from the source on first
// use and caching it for the rest of the orchestrator's life.
func (o *Orchestrator) References(ctx context.Context) (refdata.Set, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.refs != nil {
		return *o.refs, nil
	}
	if o.source == nil {
		return refdata.Set{}, errors.New("orchestrator: no reference data source configured")
	}
	refs, err := o.source.ReferenceData(ctx)
	if err != nil {
		return refdata.Set{}, err
	}
	o.refs = &refs
	return refs, nil
}

// NewRecord builds an empty service-report record seeded with defaults.
func (o *Orchestrator) NewRecord(ctx context.Context) (*form.Record, error) {
	refs, err := o.References(ctx)
	if err != nil {
		return nil, err
	}
	return form.NewRecord(report.Descriptor(refs)), nil
}

// FormRequest describes a form rendering request.
type FormRequest struct {
	// Renderer names the form renderer. Empty selects the default.
	Renderer string

	// Record holds the current values; nil renders a fresh record.
	Record *form.Record

	// Errors carries field messages from a failed submission.
	Errors map[string][]string
}

// RenderResult is rendered output plus its media type.
type RenderResult struct {
	Output      []byte
	ContentType string
}

// RenderForm renders the service-report form.
func (o *Orchestrator) RenderForm(ctx context.Context, req FormRequest) (*RenderResult, error) {
	name := req.Renderer
	if name == "" {
		name = o.formRenderer
	}
	renderer, err := o.registry.Form(name)
	if err != nil {
		return nil, err
	}

	record := req.Record
	if record == nil {
		record, err = o.NewRecord(ctx)
		if err != nil {
			return nil, err
		}
	}

	output, err := renderer.RenderForm(ctx, record.Descriptor(), record, render.Options{
		Errors: req.Errors,
		Now:    o.now,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render form: %w", err)
	}
	return &RenderResult{Output: output, ContentType: renderer.ContentType()}, nil
}

// SubmitRequest describes a submission to turn into a document.
type SubmitRequest struct {
	// Record holds the filled form values.
	Record *form.Record

	// Renderer names the document renderer. Empty selects the default.
	Renderer string
}

// SubmitResult carries the outcome of a submission. When validation fails,
// Validation holds the field messages and the document fields stay empty.
type SubmitResult struct {
	Validation validation.Result

	Record      report.ServiceReportRecord
	Document    []byte
	ContentType string
	Filename    string
}

// SubmitReport validates the record, decodes and enriches it, and renders the
// service-report document. A validation failure returns ErrInvalidReport with
// the messages in the result.
func (o *Orchestrator) SubmitReport(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.Record == nil {
		return nil, errors.New("orchestrator: record is required")
	}

	result := &SubmitResult{Validation: report.Schema().Validate(req.Record)}
	if !result.Validation.Valid {
		o.logger.WithField("fields", len(result.Validation.Fields)).Info("report submission rejected")
		return result, ErrInvalidReport
	}

	refs, err := o.References(ctx)
	if err != nil {
		return nil, err
	}

	now := o.now()
	decoded, err := report.Decode(req.Record, now)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: decode report: %w", err)
	}
	report.Enrich(&decoded, refs)

	name := req.Renderer
	if name == "" {
		name = o.documentRenderer
	}
	renderer, err := o.registry.Document(name)
	if err != nil {
		return nil, err
	}

	document, err := renderer.RenderDocument(ctx, decoded, render.Options{
		Now:        func() time.Time { return now },
		Letterhead: o.letterhead,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render document: %w", err)
	}

	result.Record = decoded
	result.Document = document
	result.ContentType = renderer.ContentType()
	result.Filename = report.Filename(decoded.Client, now)

	o.logger.WithFields(logrus.Fields{
		"report":   decoded.ReportID,
		"client":   decoded.Client,
		"filename": result.Filename,
	}).Info("report rendered")
	return result, nil
}
