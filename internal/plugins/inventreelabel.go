package plugins

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aretw0/printdesk/pkg/domain"
)

// KeyInvenTreeLabel is the key of the default label printer.
const KeyInvenTreeLabel = "inventreelabel"

// SettingDebug makes the builtin printer emit raw HTML instead of a PDF.
const SettingDebug = "DEBUG"

// OutputDir is the media directory generated labels and reports are written to.
const OutputDir = "data_output"

// InvenTreeLabel merges every label of a request into one document.
type InvenTreeLabel struct{}

// NewInvenTreeLabel returns the builtin label printer.
func NewInvenTreeLabel() *InvenTreeLabel { return &InvenTreeLabel{} }

func (p *InvenTreeLabel) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Key:         KeyInvenTreeLabel,
		Name:        "InvenTreeLabel",
		Title:       "InvenTree PDF label printer",
		Description: "Provides native support for printing PDF labels",
		Version:     "1.1.0",
		Author:      "InvenTree contributors",
		Builtin:     true,
	}
}

func (p *InvenTreeLabel) Blocking() bool { return true }

func (p *InvenTreeLabel) PrintingOptions() domain.FieldSet { return domain.FieldSet{} }

func (p *InvenTreeLabel) NewOptions() any { return nil }

// PrintLabels writes labels.pdf, or labels.html when the DEBUG setting is on.
func (p *InvenTreeLabel) PrintLabels(ctx context.Context, job LabelJob) (LabelResult, error) {
	if len(job.Pages) == 0 {
		return LabelResult{}, domain.ErrNoItems
	}

	if debug, _ := job.Settings[SettingDebug].(bool); debug {
		html := bytes.Join(job.Pages, []byte("\n<p class='pagebreak'></p>\n"))
		url, err := job.Media.Write(ctx, OutputDir, "labels.html", html)
		if err != nil {
			return LabelResult{}, fmt.Errorf("failed to store labels: %w", err)
		}
		return LabelResult{Output: url}, nil
	}

	pdf, err := job.Render(ctx, job.Pages)
	if err != nil {
		return LabelResult{}, err
	}
	if job.Progress != nil {
		job.Progress(len(job.Pages))
	}

	url, err := job.Media.Write(ctx, OutputDir, "labels.pdf", pdf)
	if err != nil {
		return LabelResult{}, fmt.Errorf("failed to store labels: %w", err)
	}
	return LabelResult{Output: url}, nil
}
