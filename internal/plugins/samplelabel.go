package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/printdesk/pkg/domain"
)

// KeySampleLabel is the key of the sample printer.
const KeySampleLabel = "samplelabelprinter"

// SampleOptions are the printing options of the sample printer.
type SampleOptions struct {
	Amount int `mapstructure:"amount"`
}

// SampleLabelPrinter prints every label on its own, writing the latest one to
// <dir>/label.pdf. It never produces a downloadable output.
type SampleLabelPrinter struct {
	dir      string
	blocking bool
}

// SampleOption configures the sample printer.
type SampleOption func(*SampleLabelPrinter)

// WithDir sets the directory label.pdf is written to. Empty disables writing.
func WithDir(dir string) SampleOption {
	return func(p *SampleLabelPrinter) { p.dir = dir }
}

// WithBlocking controls whether printing completes within the request.
func WithBlocking(b bool) SampleOption {
	return func(p *SampleLabelPrinter) { p.blocking = b }
}

// NewSampleLabelPrinter returns the sample printer.
func NewSampleLabelPrinter(opts ...SampleOption) *SampleLabelPrinter {
	p := &SampleLabelPrinter{blocking: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *SampleLabelPrinter) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Key:         KeySampleLabel,
		Name:        "SampleLabelPrinter",
		Title:       "Sample Label Printer",
		Description: "A sample plugin which provides a (fake) label printer interface",
		Version:     "0.3.0",
		Author:      "InvenTree contributors",
		Builtin:     true,
	}
}

func (p *SampleLabelPrinter) Blocking() bool { return p.blocking }

func (p *SampleLabelPrinter) NewOptions() any { return &SampleOptions{} }

func (p *SampleLabelPrinter) PrintingOptions() domain.FieldSet {
	return domain.FieldSet{
		"amount": {
			Name:     "amount",
			Label:    "Amount",
			HelpText: "Number of copies to print",
			Type:     domain.FieldInteger,
			Default:  1,
		},
	}
}

// PrintLabels renders each label separately, amount times.
func (p *SampleLabelPrinter) PrintLabels(ctx context.Context, job LabelJob) (LabelResult, error) {
	amount := 1
	if opts, ok := job.Options.(*SampleOptions); ok && opts.Amount > 0 {
		amount = opts.Amount
	}

	for i, page := range job.Pages {
		for n := 0; n < amount; n++ {
			if err := ctx.Err(); err != nil {
				return LabelResult{}, err
			}
			pdf, err := job.Render(ctx, [][]byte{page})
			if err != nil {
				return LabelResult{}, fmt.Errorf("label %d: %w", i, err)
			}
			if p.dir != "" {
				if err := os.MkdirAll(p.dir, 0o755); err != nil {
					return LabelResult{}, err
				}
				if err := os.WriteFile(filepath.Join(p.dir, "label.pdf"), pdf, 0o644); err != nil {
					return LabelResult{}, fmt.Errorf("failed to write label: %w", err)
				}
			}
		}
		if job.Progress != nil {
			job.Progress(i + 1)
		}
	}
	return LabelResult{}, nil
}
