// Package reportgen generates service-report forms and their finished PDF
// documents from a shared schema. The root package re-exports the
// orchestrator surface so most callers need a single import.
package reportgen

import (
	"context"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/orchestrator"
	"github.com/fieldservice/reportgen/pkg/refdata"
)

// Option configures the orchestrator.
type Option = orchestrator.Option

// FormRequest describes a form rendering request.
type FormRequest = orchestrator.FormRequest

// SubmitRequest describes a report submission.
type SubmitRequest = orchestrator.SubmitRequest

// RenderResult is rendered output plus its media type.
type RenderResult = orchestrator.RenderResult

// SubmitResult carries a submission outcome.
type SubmitResult = orchestrator.SubmitResult

// New exposes the orchestrator constructor from the top-level module.
func New(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateFormHTML renders the service-report form as HTML against the given
// catalogs. It is the simplest entry point for callers that just want markup.
func GenerateFormHTML(ctx context.Context, refs refdata.Set, options ...Option) ([]byte, error) {
	gen := orchestrator.New(append(options, orchestrator.WithReferenceData(refs))...)
	result, err := gen.RenderForm(ctx, orchestrator.FormRequest{})
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// GenerateReportPDF validates and renders a filled record into the final PDF,
// returning the document and its derived filename.
func GenerateReportPDF(ctx context.Context, record *form.Record, refs refdata.Set, options ...Option) ([]byte, string, error) {
	gen := orchestrator.New(append(options, orchestrator.WithReferenceData(refs))...)
	result, err := gen.SubmitReport(ctx, orchestrator.SubmitRequest{Record: record})
	if err != nil {
		return nil, "", err
	}
	return result.Document, result.Filename, nil
}
