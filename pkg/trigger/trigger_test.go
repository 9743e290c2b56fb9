package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/domain"
)

type fakeAPI struct {
	mu        sync.Mutex
	fieldsErr error
	fields    map[string]domain.FieldSet // keyed by plugin
	calls     []string
	requests  []domain.PrintRequest
	out       *domain.DataOutput
	printErr  error
	// block, when set, is received from before a Fields call returns.
	block chan struct{}
}

func (f *fakeAPI) Fields(ctx context.Context, kind domain.TemplateKind, pluginKey string) (domain.FieldSet, error) {
	f.mu.Lock()
	f.calls = append(f.calls, string(kind)+":"+pluginKey)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	set := f.fields[pluginKey]
	if set == nil {
		set = domain.FieldSet{"template": {Name: "template", Type: domain.FieldRelated, Required: true}}
	}
	return set.Clone(), nil
}

func (f *fakeAPI) Print(ctx context.Context, kind domain.TemplateKind, req domain.PrintRequest) (*domain.DataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.printErr != nil {
		return nil, f.printErr
	}
	out := *f.out
	return &out, nil
}

type recorder struct {
	notes  []Notification
	opened []string
}

func (r *recorder) options() []Option {
	return []Option{
		WithNotifier(NotifierFunc(func(n Notification) { r.notes = append(r.notes, n) })),
		WithOpener(OpenerFunc(func(url string) error {
			r.opened = append(r.opened, url)
			return nil
		})),
	}
}

func selection() Options {
	return Options{
		Items:         []int64{3, 4},
		ModelType:     domain.ModelStockItem,
		EnableLabels:  true,
		EnableReports: true,
		Host:          "https://inventory.example.com",
	}
}

func TestVisibility(t *testing.T) {
	api := &fakeAPI{}

	hidden := []Options{
		{ModelType: domain.ModelPart, EnableLabels: true},
		{Items: []int64{}, ModelType: domain.ModelPart, EnableLabels: true, EnableReports: true},
		{Items: []int64{1}, EnableLabels: true},
		{Items: []int64{1}, ModelType: domain.ModelPart},
	}
	for _, opts := range hidden {
		tr := New(api, opts)
		assert.False(t, tr.Visible(), "%+v", opts)
		assert.Empty(t, tr.Kinds())
		_, err := tr.OpenLabels(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	tr := New(api, Options{Items: []int64{1}, ModelType: domain.ModelPart, EnableReports: true})
	assert.True(t, tr.Visible())
	assert.True(t, tr.Enabled())
	assert.Equal(t, []domain.TemplateKind{domain.KindReport}, tr.Kinds())
	_, err := tr.OpenLabels(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, []domain.TemplateKind{domain.KindLabel, domain.KindReport}, New(api, selection()).Kinds())
}

func TestOpenMergesOverrides(t *testing.T) {
	api := &fakeAPI{}
	tr := New(api, selection())

	d, err := tr.OpenLabels(context.Background())
	require.NoError(t, err)

	set := d.Fields()
	assert.True(t, set["template"].Required, "server attributes are kept")
	assert.Equal(t, "3,4", set["template"].Filters["items"])
	assert.Equal(t, "stockitem", set["template"].Filters["model_type"])
	assert.Equal(t, true, set["template"].Filters["enabled"])
	assert.True(t, set["items"].Hidden)
	assert.Equal(t, []int64{3, 4}, set["items"].Value)
	assert.Equal(t, domain.MixinLabels, set["plugin"].Filters["mixin"])
	assert.Equal(t, []string{"label:"}, api.calls)

	r, err := tr.OpenReports(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, r.Fields(), "plugin")
}

func TestSelectPluginRefetches(t *testing.T) {
	api := &fakeAPI{fields: map[string]domain.FieldSet{
		"sample": {"copies": {Name: "copies", Type: domain.FieldInteger}},
	}}
	tr := New(api, selection())
	d, err := tr.OpenLabels(context.Background())
	require.NoError(t, err)

	var got []domain.FieldSet
	unsubscribe := d.Subscribe(func(set domain.FieldSet) { got = append(got, set) })

	d.SelectPlugin(context.Background(), "sample")
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "copies")
	assert.Equal(t, "sample", got[0]["plugin"].Value)
	assert.Equal(t, "sample", d.Plugin())

	d.SelectPlugin(context.Background(), "sample")
	assert.Len(t, got, 1, "same plugin does not refetch")

	unsubscribe()
	d.SelectPlugin(context.Background(), "")
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"label:", "label:sample", "label:"}, api.calls)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	api := &fakeAPI{fields: map[string]domain.FieldSet{
		"slow": {"slow": {Name: "slow"}},
		"fast": {"fast": {Name: "fast"}},
	}}
	tr := New(api, selection())
	d, err := tr.OpenLabels(context.Background())
	require.NoError(t, err)

	api.mu.Lock()
	api.block = make(chan struct{})
	block := api.block
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.SelectPlugin(context.Background(), "slow")
	}()
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.calls) == 2
	}, time.Second, time.Millisecond)

	// a newer selection supersedes the pending one
	api.mu.Lock()
	api.block = nil
	api.mu.Unlock()
	d.SelectPlugin(context.Background(), "fast")
	close(block)
	<-done

	assert.Contains(t, d.Fields(), "fast")
	assert.NotContains(t, d.Fields(), "slow")
}

func TestFetchFailureDegradesAndWarns(t *testing.T) {
	api := &fakeAPI{fieldsErr: errors.New("connection refused")}
	rec := &recorder{}
	tr := New(api, selection(), rec.options()...)

	d, err := tr.OpenLabels(context.Background())
	require.NoError(t, err)

	set := d.Fields()
	assert.ElementsMatch(t, []string{"template", "items", "plugin"}, keys(set))
	require.Len(t, rec.notes, 1)
	assert.Equal(t, LevelWarning, rec.notes[0].Level)
	assert.Contains(t, rec.notes[0].Message, "connection refused")
}

func TestSubmitIncomplete(t *testing.T) {
	api := &fakeAPI{out: &domain.DataOutput{ID: 1, Complete: false, Output: "/media/x.pdf", Errors: []string{"printer offline"}}}
	rec := &recorder{}
	d, err := New(api, selection(), rec.options()...).OpenLabels(context.Background())
	require.NoError(t, err)

	out, err := d.Submit(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.False(t, out.Complete)

	require.Len(t, rec.notes, 1)
	assert.Equal(t, LevelError, rec.notes[0].Level)
	assert.Equal(t, "The label could not be generated", rec.notes[0].Title)
	assert.Equal(t, "printer offline", rec.notes[0].Message)
	assert.Empty(t, rec.opened)
}

func TestSubmitCompleteWithoutOutput(t *testing.T) {
	api := &fakeAPI{out: &domain.DataOutput{ID: 1, Complete: true}}
	rec := &recorder{}
	d, err := New(api, selection(), rec.options()...).OpenReports(context.Background())
	require.NoError(t, err)

	_, err = d.Submit(context.Background(), 7, nil)
	require.NoError(t, err)

	require.Len(t, rec.notes, 1)
	assert.Equal(t, LevelSuccess, rec.notes[0].Level)
	assert.Equal(t, "Report printing completed successfully", rec.notes[0].Title)
	assert.Empty(t, rec.opened)
}

func TestSubmitOpensOutputOnce(t *testing.T) {
	api := &fakeAPI{out: &domain.DataOutput{ID: 1, Complete: true, Output: "/media/data_output/labels.pdf"}}
	rec := &recorder{}
	d, err := New(api, selection(), rec.options()...).OpenLabels(context.Background())
	require.NoError(t, err)
	d.SelectPlugin(context.Background(), "sample")

	_, err = d.Submit(context.Background(), 7, map[string]any{"copies": 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://inventory.example.com/media/data_output/labels.pdf"}, rec.opened)
	require.Len(t, rec.notes, 1)
	assert.Equal(t, "Label printing completed successfully", rec.notes[0].Title)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, domain.ModelStockItem, req.ModelType)
	assert.Equal(t, []int64{3, 4}, req.Items)
	assert.Equal(t, int64(7), req.Template)
	assert.Equal(t, "sample", req.Plugin)
	assert.Empty(t, d.Plugin(), "plugin selection resets after submit")
}

func TestSubmitResetsPluginQuietly(t *testing.T) {
	api := &fakeAPI{
		out: &domain.DataOutput{ID: 1, Complete: true},
		fields: map[string]domain.FieldSet{
			"sample": {"copies": {Name: "copies", Type: domain.FieldInteger}},
		},
	}
	rec := &recorder{}
	d, err := New(api, selection(), rec.options()...).OpenLabels(context.Background())
	require.NoError(t, err)
	d.SelectPlugin(context.Background(), "sample")
	require.Empty(t, rec.notes)
	require.Contains(t, d.Fields(), "copies")

	api.mu.Lock()
	api.fieldsErr = errors.New("server went away")
	api.mu.Unlock()

	_, err = d.Submit(context.Background(), 7, nil)
	require.NoError(t, err)

	require.Len(t, rec.notes, 1, "only the submit outcome is notified")
	assert.Equal(t, LevelSuccess, rec.notes[0].Level)
	assert.Empty(t, d.Plugin())
	assert.Equal(t, []string{"label:", "label:sample", "label:"}, api.calls)
	assert.NotContains(t, d.Fields(), "copies")
}

func TestSubmitReportsHaveNoPlugin(t *testing.T) {
	api := &fakeAPI{out: &domain.DataOutput{Complete: true}}
	d, err := New(api, selection()).OpenReports(context.Background())
	require.NoError(t, err)
	d.SelectPlugin(context.Background(), "sample")

	_, err = d.Submit(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Empty(t, api.requests[0].Plugin)
}

func TestSubmitTransportError(t *testing.T) {
	api := &fakeAPI{printErr: errors.New("timeout")}
	rec := &recorder{}
	d, err := New(api, selection(), rec.options()...).OpenLabels(context.Background())
	require.NoError(t, err)

	_, err = d.Submit(context.Background(), 7, nil)
	require.Error(t, err)
	require.Len(t, rec.notes, 1)
	assert.Equal(t, LevelError, rec.notes[0].Level)
	assert.Empty(t, rec.opened)
	assert.Len(t, api.requests, 1, "no retry")
}

func TestClosedDialogIgnoresUpdates(t *testing.T) {
	api := &fakeAPI{}
	d, err := New(api, selection()).OpenLabels(context.Background())
	require.NoError(t, err)

	called := false
	d.Subscribe(func(domain.FieldSet) { called = true })
	d.Close()
	d.SelectPlugin(context.Background(), "sample")
	assert.False(t, called)
	assert.Len(t, api.calls, 1)
}

func keys(set domain.FieldSet) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
