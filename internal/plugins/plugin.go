// Package plugins holds the print plugin contracts, the registry that tracks which
// plugins are installed and active, and the builtin label printers.
package plugins

import (
	"context"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// Plugin is the minimum every plugin implements.
type Plugin interface {
	Info() domain.PluginInfo
}

// LabelJob is everything a label printer needs to print one request.
type LabelJob struct {
	Output   *domain.DataOutput
	Template domain.Template
	Items    []domain.Item
	// Pages holds the rendered HTML of each item, in item order.
	Pages    [][]byte
	Options  any
	Settings map[string]any
	User     domain.User
	Media    ports.MediaStore

	// Render merges pages into one PDF laid out for the job's template.
	Render func(ctx context.Context, pages [][]byte) ([]byte, error)
	// Progress reports how many labels have been handled so far.
	Progress func(done int)
}

// LabelResult is what a printer hands back once it is done.
type LabelResult struct {
	// Output is the media URL of the generated file, empty when the printer
	// delivered the labels elsewhere.
	Output string
}

// LabelPrinter is implemented by plugins with the "labels" mixin.
type LabelPrinter interface {
	Plugin
	PrintLabels(ctx context.Context, job LabelJob) (LabelResult, error)
	// PrintingOptions describes the extra fields the print dialog shows for this plugin.
	PrintingOptions() domain.FieldSet
	// NewOptions returns a pointer to the struct printing options decode into.
	NewOptions() any
	// Blocking reports whether printing completes within the request.
	Blocking() bool
}

// ReportHook is implemented by plugins with the "report" mixin.
type ReportHook interface {
	Plugin
	// AddReportContext may add entries to the context of every rendered item.
	AddReportContext(ctx context.Context, tmpl domain.Template, item domain.Item, reportCtx map[string]any)
	// ReportCallback runs after a report output was generated.
	ReportCallback(ctx context.Context, tmpl domain.Template, items []domain.Item, output *domain.DataOutput)
}

func mixins(p Plugin) []string {
	var out []string
	if _, ok := p.(LabelPrinter); ok {
		out = append(out, domain.MixinLabels)
	}
	if _, ok := p.(ReportHook); ok {
		out = append(out, domain.MixinReport)
	}
	return out
}
