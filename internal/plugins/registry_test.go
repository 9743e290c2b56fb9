package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/adapters/media"
	"github.com/aretw0/printdesk/pkg/domain"
)

type reportPlugin struct{ key string }

func (p reportPlugin) Info() domain.PluginInfo { return domain.PluginInfo{Key: p.key, Name: p.key} }
func (p reportPlugin) AddReportContext(ctx context.Context, tmpl domain.Template, item domain.Item, reportCtx map[string]any) {
	reportCtx["plugin"] = p.key
}
func (p reportPlugin) ReportCallback(ctx context.Context, tmpl domain.Template, items []domain.Item, output *domain.DataOutput) {
}

func newRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewInvenTreeLabel(), true)
	r.Register(NewSampleLabelPrinter(), false)
	r.Register(reportPlugin{key: "reportcontext"}, true)
	return r
}

func TestRegistry_WithMixin(t *testing.T) {
	r := newRegistry()

	labels := r.WithMixin(domain.MixinLabels, nil)
	require.Len(t, labels, 2)
	assert.Equal(t, KeyInvenTreeLabel, labels[0].Key)
	assert.True(t, labels[0].Blocking)

	active := true
	activeLabels := r.WithMixin(domain.MixinLabels, &active)
	require.Len(t, activeLabels, 1)
	assert.Equal(t, KeyInvenTreeLabel, activeLabels[0].Key)

	require.NoError(t, r.SetActive(KeySampleLabel, true))
	assert.Len(t, r.WithMixin(domain.MixinLabels, &active), 2)

	reports := r.WithMixin(domain.MixinReport, nil)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"report"}, reports[0].Mixins)
	assert.Len(t, r.ReportHooks(), 1)
	assert.Len(t, r.Infos(), 3)
}

func TestRegistry_Unknown(t *testing.T) {
	r := newRegistry()
	_, _, err := r.Get("nope")
	assert.ErrorIs(t, err, domain.ErrPluginNotFound)
	assert.ErrorIs(t, r.SetActive("nope", true), domain.ErrPluginNotFound)
	assert.ErrorIs(t, r.SetSetting("nope", SettingDebug, true), domain.ErrPluginNotFound)
}

func TestDecodeOptions(t *testing.T) {
	p := NewSampleLabelPrinter()

	opts, err := DecodeOptions(p, map[string]any{"amount": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.(*SampleOptions).Amount)

	opts, err = DecodeOptions(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, opts.(*SampleOptions).Amount, "default applies")

	_, err = DecodeOptions(p, map[string]any{"amount": "a"})
	v, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"A valid integer is required."}, v.Fields["amount"])

	_, err = DecodeOptions(p, map[string]any{"amount": 2.5})
	v, ok = domain.IsValidation(err)
	require.True(t, ok, "fractional amount is rejected, not truncated")
	assert.Equal(t, []string{"A valid integer is required."}, v.Fields["amount"])

	none, err := DecodeOptions(NewInvenTreeLabel(), map[string]any{"anything": 1})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func fakeRender(ctx context.Context, pages [][]byte) ([]byte, error) {
	var out []byte
	out = append(out, "%PDF"...)
	for _, p := range pages {
		out = append(out, p...)
	}
	return out, nil
}

func TestInvenTreeLabel_PDFAndDebug(t *testing.T) {
	store, err := media.New(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	job := LabelJob{
		Pages:    [][]byte{[]byte("<a/>"), []byte("<b/>")},
		Media:    store,
		Render:   fakeRender,
		Settings: map[string]any{},
	}

	res, err := NewInvenTreeLabel().PrintLabels(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, "/media/data_output/labels.pdf", res.Output)

	job.Settings[SettingDebug] = true
	res, err = NewInvenTreeLabel().PrintLabels(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, "/media/data_output/labels.html", res.Output)

	html, err := os.ReadFile(filepath.Join(store.Root(), "data_output", "labels.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<a/>")
	assert.Contains(t, string(html), "<b/>")
}

func TestSampleLabelPrinter_Amount(t *testing.T) {
	dir := t.TempDir()
	p := NewSampleLabelPrinter(WithDir(dir))

	renders := 0
	var progress []int
	res, err := p.PrintLabels(context.Background(), LabelJob{
		Pages:   [][]byte{[]byte("1"), []byte("2")},
		Options: &SampleOptions{Amount: 2},
		Render: func(ctx context.Context, pages [][]byte) ([]byte, error) {
			renders++
			return fakeRender(ctx, pages)
		},
		Progress: func(done int) { progress = append(progress, done) },
	})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Equal(t, 4, renders)
	assert.Equal(t, []int{1, 2}, progress)

	data, err := os.ReadFile(filepath.Join(dir, "label.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF2", string(data))
}
