package render

import (
	"context"
	"time"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/report"
	"github.com/fieldservice/reportgen/pkg/schema"
)

// Options carries cross-renderer knobs.
type Options struct {
	// Errors holds field-scoped validation messages to surface next to the
	// originating controls.
	Errors map[string][]string

	// Letterhead is the static header image embedded at the top of rendered
	// documents (PNG bytes).
	Letterhead []byte

	// Now supplies the rendered "current date". Injected so identical input
	// yields identical output; defaults to time.Now when nil.
	Now func() time.Time
}

// Clock resolves the effective clock.
func (o Options) Clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

// Renderer is the common surface every renderer exposes.
type Renderer interface {
	Name() string
	ContentType() string
}

// FormRenderer turns a descriptor plus the current record state into an
// interactive form representation.
type FormRenderer interface {
	Renderer
	RenderForm(ctx context.Context, descriptor *schema.FormDescriptor, record *form.Record, options Options) ([]byte, error)
}

// DocumentRenderer turns a finalized, enriched service-report record into a
// printable document. Callers must not invoke it before the record passes
// validation; that gate lives upstream.
type DocumentRenderer interface {
	Renderer
	RenderDocument(ctx context.Context, record report.ServiceReportRecord, options Options) ([]byte, error)
}
