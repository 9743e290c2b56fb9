package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/internal/sanitize"
	"github.com/aretw0/printdesk/pkg/domain"
)

const (
	maxUploadSize = 32 << 20
	maxSearchSize = 256
)

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if v, ok := domain.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, v.Fields)
		return
	}
	switch {
	case errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrOutputNotFound),
		errors.Is(err, domain.ErrSnippetNotFound),
		errors.Is(err, domain.ErrPluginNotFound):
		writeJSON(w, http.StatusNotFound, detail("Not found."))
	case errors.Is(err, domain.ErrReadOnly):
		writeJSON(w, http.StatusMethodNotAllowed, detail(err.Error()))
	default:
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"trace_id", TraceID(r.Context()),
			"err", err,
		)
		writeJSON(w, http.StatusInternalServerError, detail("A server error occurred."))
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.FieldError("non_field_errors", fmt.Sprintf("JSON parse error - %v", err))
	}
	return nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// parseIDs accepts repeated and comma separated values.
func parseIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseBool(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "printdesk-http",
		"version":     strings.TrimSpace(printdesk.Version),
		"api_version": apiVersion,
	})
}

// ListTemplates handles GET /api/{kind}/template/.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verr := domain.NewValidationError()

	var f printdesk.TemplateFilter
	if mt := q.Get("model_type"); mt != "" {
		parsed, err := domain.ParseModelType(mt)
		if err != nil {
			verr.Add("model_type", fmt.Sprintf("%q is not a valid choice.", mt))
		}
		f.ModelType = parsed
	}
	ids, err := parseIDs(q["items"])
	if err != nil {
		verr.Add("items", "A valid integer is required.")
	}
	f.Items = ids
	enabled, err := parseBool(q.Get("enabled"))
	if err != nil {
		verr.Add("enabled", "Must be a valid boolean.")
	}
	f.Enabled = enabled
	search, err := sanitize.Line(q.Get("search"), maxSearchSize)
	if err != nil {
		verr.Add("search", err.Error())
	}
	f.Search = search

	if err := verr.OrNil(); err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.Engine.Templates(r.Context(), kindOf(r), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Template{}
	}
	writeJSON(w, http.StatusOK, list)
}

// cleanTemplate strips control characters from the single-line template fields.
func cleanTemplate(t *domain.Template) error {
	verr := domain.NewValidationError()
	for field, v := range map[string]*string{
		"name":             &t.Name,
		"description":      &t.Description,
		"filename_pattern": &t.FilenamePattern,
	} {
		clean, err := sanitize.Line(*v, 0)
		if err != nil {
			verr.Add(field, err.Error())
			continue
		}
		*v = clean
	}
	return verr.OrNil()
}

// GetTemplate handles GET /api/{kind}/template/{id}/.
func (s *Server) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	t, err := s.Engine.Template(r.Context(), kindOf(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTemplate handles POST /api/{kind}/template/.
func (s *Server) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t domain.Template
	if err := decodeBody(r, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	t.Kind = kindOf(r)
	if err := cleanTemplate(&t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Engine.CreateTemplate(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Broadcast(TopicTemplates, fmt.Sprintf("%s:%d", t.Kind, t.ID))
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTemplate handles PUT /api/{kind}/template/{id}/.
func (s *Server) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	var t domain.Template
	if err := decodeBody(r, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	t.ID = id
	t.Kind = kindOf(r)
	if err := cleanTemplate(&t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Engine.UpdateTemplate(r.Context(), &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Broadcast(TopicTemplates, fmt.Sprintf("%s:%d", t.Kind, t.ID))
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /api/{kind}/template/{id}/.
func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	if err := s.Engine.DeleteTemplate(r.Context(), kindOf(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PrintFields handles OPTIONS /api/{kind}/print/: the print dialog metadata.
func (s *Server) PrintFields(w http.ResponseWriter, r *http.Request) {
	kind := kindOf(r)
	set, err := s.Engine.Fields(r.Context(), kind, r.URL.Query().Get("plugin"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Allow", "POST, OPTIONS")
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    kind.Title() + " Print",
		"actions": map[string]any{"POST": set},
	})
}

// Print handles POST /api/{kind}/print/.
func (s *Server) Print(w http.ResponseWriter, r *http.Request) {
	var req domain.PrintRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user := UserFrom(r.Context())
	var (
		out *domain.DataOutput
		err error
	)
	if kindOf(r) == domain.KindLabel {
		out, err = s.Engine.PrintLabels(r.Context(), user, req)
	} else {
		out, err = s.Engine.PrintReports(r.Context(), user, req)
	}
	if err != nil {
		// failed outputs are still recorded; the event stream reports them
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// ListOutputs handles GET /api/data-output/.
func (s *Server) ListOutputs(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.Outputs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.DataOutput{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetOutput handles GET /api/data-output/{id}/.
func (s *Server) GetOutput(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	out, err := s.Engine.Output(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListPlugins handles GET /api/plugins/.
func (s *Server) ListPlugins(w http.ResponseWriter, r *http.Request) {
	active, err := parseBool(r.URL.Query().Get("active"))
	if err != nil {
		s.writeError(w, r, domain.FieldError("active", "Must be a valid boolean."))
		return
	}
	list := s.Engine.Plugins(r.URL.Query().Get("mixin"), active)
	if list == nil {
		list = []domain.PluginInfo{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ListSnippets handles GET /api/report/snippet/.
func (s *Server) ListSnippets(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.Snippets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Snippet{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateSnippet handles POST /api/report/snippet/.
func (s *Server) CreateSnippet(w http.ResponseWriter, r *http.Request) {
	var sn domain.Snippet
	if err := decodeBody(r, &sn); err != nil {
		s.writeError(w, r, err)
		return
	}
	name, err := sanitize.Line(sn.Name, 0)
	if err != nil {
		s.writeError(w, r, domain.FieldError("snippet", err.Error()))
		return
	}
	sn.Name = name
	if err := s.Engine.CreateSnippet(r.Context(), &sn); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sn)
}

// DeleteSnippet handles DELETE /api/report/snippet/{id}/.
func (s *Server) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	if err := s.Engine.DeleteSnippet(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssets handles GET /api/report/asset/.
func (s *Server) ListAssets(w http.ResponseWriter, r *http.Request) {
	list, err := s.Engine.Assets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Asset{}
	}
	writeJSON(w, http.StatusOK, list)
}

// UploadAsset handles the multipart POST /api/report/asset/.
func (s *Server) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, r, domain.FieldError("asset", "No file was submitted."))
		return
	}
	file, header, err := r.FormFile("asset")
	if err != nil {
		s.writeError(w, r, domain.FieldError("asset", "No file was submitted."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	url, err := s.Engine.UploadAsset(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.Asset{
		Name:        header.Filename,
		Description: r.FormValue("description"),
		URL:         url,
		Size:        int64(len(data)),
	})
}

// SubscribeEvents handles the GET /api/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := TopicOutputs
	if v := r.URL.Query().Get("topic"); v != "" {
		topic = v
	}
	if v := r.URL.Query().Get("output"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, r, domain.FieldError("output", "A valid integer is required."))
			return
		}
		topic = OutputTopic(id)
	}

	var events <-chan string
	switch topic {
	case TopicTemplates:
		// template file changes from watchable stores, plus API edits
		ch, cancel := s.Streams.Subscribe(topic)
		defer cancel()
		watch, err := s.Engine.Watch(r.Context())
		if err != nil {
			s.logger.Debug("SSE: template store is not watchable", "err", err)
			events = ch
		} else {
			events = merge(r, ch, watch)
		}
	case TopicOutputs:
		ch, cancel := s.Streams.Subscribe(topic)
		defer cancel()
		events = ch
	default:
		if !strings.HasPrefix(topic, "output:") {
			s.writeError(w, r, domain.FieldError("topic", fmt.Sprintf("%q is not a valid choice.", topic)))
			return
		}
		ch, cancel := s.Streams.Subscribe(topic)
		defer cancel()
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing", "topic", topic, "trace_id", TraceID(r.Context()))
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// merge fans two event channels into one until the request ends.
func merge(r *http.Request, a, b <-chan string) <-chan string {
	out := make(chan string)
	forward := func(in <-chan string) {
		for {
			select {
			case <-r.Context().Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- msg:
				case <-r.Context().Done():
					return
				}
			}
		}
	}
	go forward(a)
	go forward(b)
	return out
}
