package trigger

import (
	"context"
	"sync"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/fields"
)

// Dialog is an open print dialog. Its field set depends on the selected
// plugin and is recomputed whenever the selection changes.
type Dialog struct {
	t    *Trigger
	kind domain.TemplateKind

	mu     sync.Mutex
	plugin string
	gen    uint64
	set    domain.FieldSet
	subs   map[int]func(domain.FieldSet)
	nextID int
	closed bool
}

func newDialog(t *Trigger, kind domain.TemplateKind) *Dialog {
	return &Dialog{
		t:    t,
		kind: kind,
		set:  fields.Merge(domain.FieldSet{}, fields.PrintOverrides(kind, t.opts.ModelType, t.opts.Items, "")),
		subs: make(map[int]func(domain.FieldSet)),
	}
}

// Kind returns the dialog kind.
func (d *Dialog) Kind() domain.TemplateKind { return d.kind }

// Plugin returns the selected plugin key; empty means the server default.
func (d *Dialog) Plugin() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plugin
}

// Fields returns a copy of the current field set.
func (d *Dialog) Fields() domain.FieldSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.set.Clone()
}

// Subscribe calls fn with every new field set until the returned function is called.
func (d *Dialog) Subscribe(fn func(domain.FieldSet)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// SelectPlugin changes the label plugin and reloads the fields scoped to it.
// Selecting the current plugin does nothing.
func (d *Dialog) SelectPlugin(ctx context.Context, key string) {
	d.mu.Lock()
	if d.closed || d.kind != domain.KindLabel || key == d.plugin {
		d.mu.Unlock()
		return
	}
	d.plugin = key
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	d.refresh(ctx, gen, true)
}

// resetPlugin returns to the default plugin after a submit. The reload is
// quiet: a failing fetch is logged but not notified.
func (d *Dialog) resetPlugin(ctx context.Context) {
	d.mu.Lock()
	if d.closed || d.plugin == "" {
		d.mu.Unlock()
		return
	}
	d.plugin = ""
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	d.refresh(ctx, gen, false)
}

// Close detaches the dialog. Fetches still in flight are discarded.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.gen++
	d.subs = make(map[int]func(domain.FieldSet))
}

func (d *Dialog) generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// refresh fetches the fields of the plugin selected at generation gen and
// publishes them unless the dialog moved on meanwhile.
func (d *Dialog) refresh(ctx context.Context, gen uint64, notify bool) {
	d.mu.Lock()
	plugin := d.plugin
	d.mu.Unlock()

	base, err := d.t.api.Fields(ctx, d.kind, plugin)
	if err != nil {
		d.t.logger.Warn("Failed to load print fields",
			"kind", d.kind,
			"plugin", plugin,
			"err", err,
		)
		base = domain.FieldSet{}
	}
	merged := fields.Merge(base, fields.PrintOverrides(d.kind, d.t.opts.ModelType, d.t.opts.Items, plugin))

	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.set = merged
	subs := make([]func(domain.FieldSet), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	if err != nil && notify {
		d.t.notifier.Notify(Notification{
			Level:   LevelWarning,
			Title:   "Print options could not be loaded",
			Message: err.Error(),
		})
	}
	for _, fn := range subs {
		fn(merged.Clone())
	}
}

// Submit sends one print request for the selection. There is no retry and no
// polling: an incomplete output is reported as a failure. The plugin selection
// resets afterwards.
func (d *Dialog) Submit(ctx context.Context, template int64, options map[string]any) (*domain.DataOutput, error) {
	plugin := d.Plugin()
	req := domain.PrintRequest{
		ModelType: d.t.opts.ModelType,
		Items:     append([]int64(nil), d.t.opts.Items...),
		Template:  template,
		Options:   options,
	}
	if d.kind == domain.KindLabel {
		req.Plugin = plugin
	}
	defer d.resetPlugin(ctx)

	out, err := d.t.api.Print(ctx, d.kind, req)
	if err != nil {
		d.t.logger.Warn("Print request failed", "kind", d.kind, "template", template, "err", err)
		d.t.notifier.Notify(Notification{Level: LevelError, Title: failureTitle(d.kind), Message: err.Error()})
		return nil, err
	}

	if !out.Complete {
		msg := ""
		if len(out.Errors) > 0 {
			msg = out.Errors[len(out.Errors)-1]
		}
		d.t.notifier.Notify(Notification{Level: LevelError, Title: failureTitle(d.kind), Message: msg})
		return out, nil
	}

	d.t.notifier.Notify(Notification{Level: LevelSuccess, Title: successTitle(d.kind)})
	if out.Output != "" {
		url := d.t.opts.Host + out.Output
		if err := d.t.opener.Open(url); err != nil {
			d.t.logger.Warn("Failed to open output", "url", url, "err", err)
		}
	}
	return out, nil
}
