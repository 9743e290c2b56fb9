// Package trigger implements the print control shown next to a selection of
// inventory items: it discovers the print fields of the server, merges in the
// fixed overrides of the selection, submits one print request and reports the
// outcome.
package trigger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/pkg/domain"
)

// ErrUnavailable is returned when a dialog of a disabled kind is opened.
var ErrUnavailable = errors.New("printing is not available for this selection")

// API is the part of the print API used by the trigger. *client.Client implements it.
type API interface {
	Fields(ctx context.Context, kind domain.TemplateKind, pluginKey string) (domain.FieldSet, error)
	Print(ctx context.Context, kind domain.TemplateKind, req domain.PrintRequest) (*domain.DataOutput, error)
}

// Options describe the selection the trigger prints.
type Options struct {
	Items         []int64
	ModelType     domain.ModelType
	EnableLabels  bool
	EnableReports bool
	// Host is prefixed to output paths before they are opened.
	Host string
}

// Trigger is the print control of one selection.
type Trigger struct {
	api      API
	opts     Options
	notifier Notifier
	opener   Opener
	logger   *slog.Logger
}

// Option configures the Trigger.
type Option func(*Trigger)

// WithNotifier sets where notifications are shown.
func WithNotifier(n Notifier) Option {
	return func(t *Trigger) { t.notifier = n }
}

// WithOpener sets how generated files are opened.
func WithOpener(o Opener) Option {
	return func(t *Trigger) { t.opener = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trigger) { t.logger = l }
}

// New creates a trigger for the selection in opts.
func New(api API, opts Options, options ...Option) *Trigger {
	t := &Trigger{
		api:      api,
		opts:     opts,
		notifier: nopNotifier{},
		opener:   nopOpener{},
		logger:   logging.NewNop(),
	}
	t.opts.Items = append([]int64(nil), opts.Items...)
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Visible reports whether the control is shown at all. A hidden control is
// not an error; it simply renders nothing.
func (t *Trigger) Visible() bool {
	return len(t.opts.Items) > 0 &&
		t.opts.ModelType != "" &&
		(t.opts.EnableLabels || t.opts.EnableReports)
}

// Enabled reports whether the control accepts clicks.
func (t *Trigger) Enabled() bool {
	return len(t.opts.Items) >= 1
}

// Kinds lists the dialogs the control offers, labels first.
func (t *Trigger) Kinds() []domain.TemplateKind {
	if !t.Visible() {
		return nil
	}
	var kinds []domain.TemplateKind
	if t.opts.EnableLabels {
		kinds = append(kinds, domain.KindLabel)
	}
	if t.opts.EnableReports {
		kinds = append(kinds, domain.KindReport)
	}
	return kinds
}

// OpenLabels opens the label print dialog.
func (t *Trigger) OpenLabels(ctx context.Context) (*Dialog, error) {
	return t.Open(ctx, domain.KindLabel)
}

// OpenReports opens the report print dialog.
func (t *Trigger) OpenReports(ctx context.Context) (*Dialog, error) {
	return t.Open(ctx, domain.KindReport)
}

// Open opens the print dialog of kind and loads its fields.
func (t *Trigger) Open(ctx context.Context, kind domain.TemplateKind) (*Dialog, error) {
	if !t.Visible() || !t.Enabled() {
		return nil, ErrUnavailable
	}
	switch kind {
	case domain.KindLabel:
		if !t.opts.EnableLabels {
			return nil, ErrUnavailable
		}
	case domain.KindReport:
		if !t.opts.EnableReports {
			return nil, ErrUnavailable
		}
	default:
		return nil, ErrUnavailable
	}

	d := newDialog(t, kind)
	d.refresh(ctx, d.generation(), true)
	return d, nil
}

func failureTitle(kind domain.TemplateKind) string {
	if kind == domain.KindLabel {
		return "The label could not be generated"
	}
	return "The report could not be generated"
}

func successTitle(kind domain.TemplateKind) string {
	if kind == domain.KindLabel {
		return "Label printing completed successfully"
	}
	return "Report printing completed successfully"
}
