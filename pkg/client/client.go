// Package client is a Go client for the printdesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/printdesk/pkg/domain"
)

// DefaultTimeout bounds every request unless WithHTTPClient is given.
const DefaultTimeout = 30 * time.Second

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	// Fields holds per-field validation messages of 400 responses.
	Fields map[string][]string
	Detail string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
		}
		return fmt.Sprintf("api returned status %d: %s", e.Status, strings.Join(parts, ", "))
	}
	if e.Detail != "" {
		return fmt.Sprintf("api returned status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api returned status %d", e.Status)
}

// Info is the response of GET /info.
type Info struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
}

// Client talks to a printdesk server.
type Client struct {
	baseURL string
	user    string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUser forwards username as the authenticated user.
func WithUser(username string) Option {
	return func(c *Client) { c.user = username }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set("X-Remote-User", c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusBadRequest {
		var fields map[string][]string
		if json.Unmarshal(data, &fields) == nil && len(fields) > 0 {
			apiErr.Fields = fields
			return apiErr
		}
	}
	var d struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &d) == nil && d.Detail != "" {
		apiErr.Detail = d.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(data))
	}
	return apiErr
}

// Info returns the server version.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.do(ctx, http.MethodGet, "/info", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Fields returns the print fields of kind, scoped to a label plugin when
// pluginKey is set.
func (c *Client) Fields(ctx context.Context, kind domain.TemplateKind, pluginKey string) (domain.FieldSet, error) {
	var q url.Values
	if pluginKey != "" {
		q = url.Values{"plugin": {pluginKey}}
	}
	var resp struct {
		Actions struct {
			POST domain.FieldSet `json:"POST"`
		} `json:"actions"`
	}
	if err := c.do(ctx, http.MethodOptions, printPath(kind), q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Actions.POST == nil {
		return domain.FieldSet{}, nil
	}
	for name, f := range resp.Actions.POST {
		if f.Name == "" {
			f.Name = name
			resp.Actions.POST[name] = f
		}
	}
	return resp.Actions.POST, nil
}

// Print submits a print request of kind.
func (c *Client) Print(ctx context.Context, kind domain.TemplateKind, req domain.PrintRequest) (*domain.DataOutput, error) {
	var out domain.DataOutput
	if err := c.do(ctx, http.MethodPost, printPath(kind), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PrintLabels submits a label print request.
func (c *Client) PrintLabels(ctx context.Context, req domain.PrintRequest) (*domain.DataOutput, error) {
	return c.Print(ctx, domain.KindLabel, req)
}

// PrintReports submits a report print request.
func (c *Client) PrintReports(ctx context.Context, req domain.PrintRequest) (*domain.DataOutput, error) {
	return c.Print(ctx, domain.KindReport, req)
}

// TemplateQuery filters Templates.
type TemplateQuery struct {
	ModelType domain.ModelType
	Items     []int64
	Enabled   *bool
	Search    string
}

// Templates lists the templates of kind.
func (c *Client) Templates(ctx context.Context, kind domain.TemplateKind, q TemplateQuery) ([]domain.Template, error) {
	values := url.Values{}
	if q.ModelType != "" {
		values.Set("model_type", string(q.ModelType))
	}
	if len(q.Items) > 0 {
		ids := make([]string, len(q.Items))
		for i, id := range q.Items {
			ids[i] = strconv.FormatInt(id, 10)
		}
		values.Set("items", strings.Join(ids, ","))
	}
	if q.Enabled != nil {
		values.Set("enabled", strconv.FormatBool(*q.Enabled))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	var list []domain.Template
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/%s/template/", kind), values, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Plugins lists installed plugins, optionally narrowed to a mixin and active state.
func (c *Client) Plugins(ctx context.Context, mixin string, active *bool) ([]domain.PluginInfo, error) {
	values := url.Values{}
	if mixin != "" {
		values.Set("mixin", mixin)
	}
	if active != nil {
		values.Set("active", strconv.FormatBool(*active))
	}
	var list []domain.PluginInfo
	if err := c.do(ctx, http.MethodGet, "/api/plugins/", values, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Output returns one data output.
func (c *Client) Output(ctx context.Context, id int64) (*domain.DataOutput, error) {
	var out domain.DataOutput
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/data-output/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func printPath(kind domain.TemplateKind) string {
	return fmt.Sprintf("/api/%s/print/", kind)
}
