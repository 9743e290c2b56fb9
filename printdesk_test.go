package printdesk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk"
	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

type pdfStub struct{}

func (pdfStub) RenderPDF(ctx context.Context, pages [][]byte, opts ports.PageOptions) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func TestEngine_PrintReportFromDefaults(t *testing.T) {
	items := memory.NewItemSource(domain.Item{ID: 7, ModelType: domain.ModelStockItem, Name: "Widget", Fields: map[string]any{"serial": "42"}})

	var completed []*domain.PrintEvent
	eng, err := printdesk.New(t.TempDir(),
		printdesk.WithItemSource(items),
		printdesk.WithRenderer(pdfStub{}),
		printdesk.WithLifecycleHooks(domain.LifecycleHooks{
			OnPrintComplete: func(ctx context.Context, e *domain.PrintEvent) { completed = append(completed, e) },
		}),
	)
	require.NoError(t, err)
	defer eng.Wait()

	ctx := context.Background()
	n, err := eng.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Positive(t, n)

	tmpls, err := eng.Templates(ctx, domain.KindReport, printdesk.TemplateFilter{ModelType: domain.ModelStockItem, Items: []int64{7}})
	require.NoError(t, err)
	require.Len(t, tmpls, 1)

	out, err := eng.PrintReports(ctx, domain.User{Username: "bob"}, domain.PrintRequest{Template: tmpls[0].ID, Items: []int64{7}})
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, "/media/data_output/report.pdf", out.Output)
	require.Len(t, completed, 1)
	assert.Equal(t, out.ID, completed[0].OutputID)
}

func TestEngine_RequiresMedia(t *testing.T) {
	_, err := printdesk.New("")
	require.Error(t, err)

	eng, err := printdesk.New("", printdesk.WithMediaStore(nopMedia{}))
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err, "memory store cannot be watched")
}

func TestEngine_UnknownPluginSetting(t *testing.T) {
	_, err := printdesk.New(t.TempDir(), printdesk.WithPluginSetting("nope", "DEBUG", true))
	assert.ErrorIs(t, err, domain.ErrPluginNotFound)
}

type nopMedia struct{}

func (nopMedia) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	return "/media/" + dir + "/" + name, nil
}
func (nopMedia) Remove(ctx context.Context, urlPath string) error { return nil }
func (nopMedia) List(ctx context.Context, dir string) ([]domain.Asset, error) {
	return nil, nil
}
