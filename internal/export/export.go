package export

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
	"alcyxob/ifit-coach/internal/metrics"
)

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
)

var (
	ErrNotApproved   = errors.New("export: plan is not approved")
	ErrUnknownFormat = errors.New("export: unknown format")
)

// Document is a rendered export ready to be served or uploaded.
type Document struct {
	Format      Format
	ContentType string
	Filename    string
	Data        []byte
}

// Renderer turns a view into bytes of one format.
type Renderer interface {
	Render(v *View) ([]byte, error)
}

type Exporter struct {
	renderers map[Format]Renderer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewExporter wires the PDF and PNG renderers. scale is the raster scale factor.
func NewExporter(scale int, logger *zap.Logger, m *metrics.Metrics) *Exporter {
	return &Exporter{
		renderers: map[Format]Renderer{
			FormatPDF:   NewPDFRenderer(),
			FormatImage: NewPNGRenderer(scale),
		},
		logger:  logger,
		metrics: m,
	}
}

// Export renders plan in format. A plan that is not approved is refused before any
// rendering happens.
func (e *Exporter) Export(plan *domain.PendingWorkoutPlan, format Format) (*Document, error) {
	if plan == nil || !plan.Exportable() {
		e.metrics.Export(string(format), "refused")
		return nil, ErrNotApproved
	}
	r, ok := e.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	data, err := r.Render(BuildView(plan))
	if err != nil {
		e.metrics.Export(string(format), "error")
		e.logger.Error("export rendering failed",
			zap.String("plan_id", plan.ID),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	e.metrics.Export(string(format), "ok")

	doc := &Document{Format: format, Data: data}
	switch format {
	case FormatPDF:
		doc.ContentType = "application/pdf"
		doc.Filename = "workout-plan-" + plan.ID + ".pdf"
	case FormatImage:
		doc.ContentType = "image/png"
		doc.Filename = "workout-plan-" + plan.ID + ".png"
	}
	return doc, nil
}
