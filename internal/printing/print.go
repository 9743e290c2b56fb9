package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"time"

	"github.com/aretw0/printdesk/internal/plugins"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// labelCall is a validated label print request.
type labelCall struct {
	tmpl    *domain.Template
	key     string
	printer plugins.LabelPrinter
	options any
}

// PrintLabels validates req and prints its items through a label plugin.
// Blocking plugins finish before PrintLabels returns; otherwise the returned
// output is incomplete and is updated in the background.
func (s *Service) PrintLabels(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error) {
	call, err := s.validateLabels(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, call.tmpl, req.Items)
	if err != nil {
		return nil, err
	}

	out := &domain.DataOutput{
		Kind:     domain.KindLabel,
		Template: call.tmpl.ID,
		Plugin:   call.key,
		User:     user.Username,
		Items:    len(items),
		Created:  s.now().UTC(),
	}
	if err := s.outputs.Create(ctx, out); err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	s.logger.Info("Printing labels",
		"output", out.ID,
		"template", call.tmpl.ID,
		"plugin", call.key,
		"items", len(items),
	)

	if call.printer.Blocking() {
		return s.runLabels(ctx, user, call, items, out)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// the request context ends with the response
		bg := context.WithoutCancel(ctx)
		_, _ = s.runLabels(bg, user, call, items, out)
	}()
	pending := *out
	return &pending, nil
}

func (s *Service) validateLabels(ctx context.Context, req domain.PrintRequest) (*labelCall, error) {
	verr := domain.NewValidationError()
	tmpl, err := s.validateCommon(ctx, domain.KindLabel, req, verr)
	if err != nil {
		return nil, err
	}

	call := &labelCall{tmpl: tmpl, key: req.Plugin}
	if call.key == "" {
		call.key = s.defaultPlugin
	}

	p, info, err := s.registry.Get(call.key)
	switch {
	case errors.Is(err, domain.ErrPluginNotFound):
		verr.Add("plugin", fmt.Sprintf("Invalid plugin %q - object does not exist.", call.key))
	case err != nil:
		return nil, err
	case !info.Active:
		verr.Add("plugin", "Plugin is not active")
	default:
		printer, ok := p.(plugins.LabelPrinter)
		if !ok {
			verr.Add("plugin", "Plugin does not support label printing")
			break
		}
		call.printer = printer
		opts, err := plugins.DecodeOptions(printer, req.Options)
		if v, ok := domain.IsValidation(err); ok {
			for field, msgs := range v.Fields {
				for _, m := range msgs {
					verr.Add(field, m)
				}
			}
		} else if err != nil {
			return nil, err
		}
		call.options = opts
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return call, nil
}

// validateCommon checks the template, items and model type of a request,
// recording problems in verr. The template is nil when it does not exist.
func (s *Service) validateCommon(ctx context.Context, kind domain.TemplateKind, req domain.PrintRequest, verr *domain.ValidationError) (*domain.Template, error) {
	tmpl, err := s.templates.Get(ctx, kind, req.Template)
	switch {
	case errors.Is(err, domain.ErrTemplateNotFound):
		verr.Add("template", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", req.Template))
		tmpl = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load template %d: %w", req.Template, err)
	}

	switch {
	case req.Items == nil:
		verr.Add("items", "This field may not be null.")
	case len(req.Items) == 0:
		verr.Add("items", "This list may not be empty.")
	}

	if req.ModelType != "" {
		if !req.ModelType.Valid() {
			verr.Add("model_type", fmt.Sprintf("%q is not a valid choice.", req.ModelType))
		} else if tmpl != nil && tmpl.ModelType != req.ModelType {
			verr.Add("model_type", fmt.Sprintf("Template model type %q does not match %q", tmpl.ModelType, req.ModelType))
		}
	}
	return tmpl, nil
}

func (s *Service) resolveItems(ctx context.Context, tmpl *domain.Template, ids []int64) ([]domain.Item, error) {
	items, err := s.items.Items(ctx, tmpl.ModelType, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve items: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.FieldError("non_field_errors", domain.ErrNoItems.Error())
	}
	return items, nil
}

func (s *Service) runLabels(ctx context.Context, user domain.User, call *labelCall, items []domain.Item, out *domain.DataOutput) (*domain.DataOutput, error) {
	start := s.now()
	event := &domain.PrintEvent{
		OutputID: out.ID,
		Kind:     domain.KindLabel,
		Template: call.tmpl.ID,
		Plugin:   call.key,
		Items:    len(items),
	}
	s.emitStart(ctx, event)

	pages, err := s.renderPages(ctx, *call.tmpl, user, items, nil)
	if err != nil {
		return nil, s.fail(ctx, out, event, start, err, true)
	}

	snapshot := *out
	job := plugins.LabelJob{
		Output:   &snapshot,
		Template: *call.tmpl,
		Items:    items,
		Pages:    pages,
		Options:  call.options,
		Settings: s.registry.Settings(call.key),
		User:     user,
		Media:    s.media,
		Render: func(ctx context.Context, pages [][]byte) ([]byte, error) {
			return s.renderPDF(ctx, pages, ports.PageOptions{
				PageSize: s.engine.PageSize(),
				Width:    call.tmpl.Width,
				Height:   call.tmpl.Height,
			})
		},
		Progress: func(done int) {
			_, err := s.outputs.Update(ctx, out.ID, func(o *domain.DataOutput) error {
				o.Progress = done
				return nil
			})
			if err != nil {
				s.logger.Warn("Failed to record progress", "output", out.ID, "err", err)
			}
		},
	}

	res, err := call.printer.PrintLabels(ctx, job)
	if err != nil {
		return nil, s.fail(ctx, out, event, start, fmt.Errorf("plugin %s: %w", call.key, err), true)
	}

	final, err := s.outputs.Update(ctx, out.ID, func(o *domain.DataOutput) error {
		o.Finish(res.Output)
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.Output = res.Output
	event.Duration = s.now().Sub(start)
	s.emitComplete(ctx, event)
	s.logger.Info("Labels printed", "output", out.ID, "url", res.Output, "duration", event.Duration)
	return final, nil
}

// PrintReports renders the template against every item and merges the pages
// into one document.
func (s *Service) PrintReports(ctx context.Context, user domain.User, req domain.PrintRequest) (*domain.DataOutput, error) {
	verr := domain.NewValidationError()
	tmpl, err := s.validateCommon(ctx, domain.KindReport, req, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, tmpl, req.Items)
	if err != nil {
		return nil, err
	}

	out := &domain.DataOutput{
		Kind:     domain.KindReport,
		Template: tmpl.ID,
		User:     user.Username,
		Items:    len(items),
		Created:  s.now().UTC(),
	}
	if err := s.outputs.Create(ctx, out); err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	start := s.now()
	event := &domain.PrintEvent{
		OutputID: out.ID,
		Kind:     domain.KindReport,
		Template: tmpl.ID,
		Items:    len(items),
	}
	s.emitStart(ctx, event)

	hooks := s.registry.ReportHooks()
	pages, err := s.renderPages(ctx, *tmpl, user, items, func(item domain.Item, itemCtx map[string]any) {
		for _, h := range hooks {
			h.AddReportContext(ctx, *tmpl, item, itemCtx)
		}
	})
	if err != nil {
		return nil, s.fail(ctx, out, event, start, err, s.logErrors)
	}

	ext := ".pdf"
	if s.reportDebug {
		ext = ".html"
	}
	name, err := s.engine.Filename(tmpl.Filename(), s.engine.BaseContext(*tmpl, user), ext)
	if err != nil {
		return nil, s.fail(ctx, out, event, start, err, s.logErrors)
	}

	var data []byte
	if s.reportDebug {
		data = bytes.Join(pages, []byte("\n"))
	} else {
		data, err = s.renderPDF(ctx, pages, ports.PageOptions{
			PageSize:  orDefault(tmpl.PageSize, s.engine.PageSize()),
			Landscape: tmpl.Landscape,
		})
		if err != nil {
			return nil, s.fail(ctx, out, event, start, err, s.logErrors)
		}
	}

	url, err := s.media.Write(ctx, plugins.OutputDir, name, data)
	if err != nil {
		return nil, s.fail(ctx, out, event, start, fmt.Errorf("failed to store report: %w", err), s.logErrors)
	}

	final, err := s.outputs.Update(ctx, out.ID, func(o *domain.DataOutput) error {
		o.Finish(url)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, h := range hooks {
		h.ReportCallback(ctx, *tmpl, items, final)
	}

	event.Output = url
	event.Bytes = len(data)
	event.Duration = s.now().Sub(start)
	s.emitComplete(ctx, event)
	s.logger.Info("Report generated", "output", out.ID, "url", url, "bytes", len(data))
	return final, nil
}

// renderPages renders one HTML page per item. extend may add to each item's
// context before rendering.
func (s *Service) renderPages(ctx context.Context, tmpl domain.Template, user domain.User, items []domain.Item, extend func(domain.Item, map[string]any)) ([][]byte, error) {
	compiled, err := s.compile(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	base := s.engine.BaseContext(tmpl, user)
	pages := make([][]byte, 0, len(items))
	for _, it := range items {
		data := s.engine.ItemContext(base, it)
		if extend != nil {
			extend(it, data)
		}
		page, err := s.engine.Render(ctx, compiled, data)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (s *Service) compile(ctx context.Context, tmpl domain.Template) (*htmltemplate.Template, error) {
	var snippets []domain.Snippet
	if s.snippets != nil {
		var err error
		snippets, err = s.snippets.Snippets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load snippets: %w", err)
		}
	}
	return s.engine.Compile(tmpl, snippets)
}

func (s *Service) renderPDF(ctx context.Context, pages [][]byte, opts ports.PageOptions) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	return s.renderer.RenderPDF(ctx, pages, opts)
}

// fail records err on the output, fires the error hook and returns err.
func (s *Service) fail(ctx context.Context, out *domain.DataOutput, event *domain.PrintEvent, start time.Time, err error, logIt bool) error {
	if _, uerr := s.outputs.Update(ctx, out.ID, func(o *domain.DataOutput) error {
		o.Fail(err)
		return nil
	}); uerr != nil {
		s.logger.Warn("Failed to record print error", "output", out.ID, "err", uerr)
	}

	event.Error = err.Error()
	event.Duration = s.now().Sub(start)
	s.emitError(ctx, event)

	if logIt {
		s.logger.Error("Printing failed", "output", out.ID, "kind", out.Kind, "template", out.Template, "err", err)
	} else {
		s.logger.Debug("Printing failed", "output", out.ID, "err", err)
	}
	return err
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
