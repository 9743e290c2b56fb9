package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk"
	apihttp "github.com/aretw0/printdesk/pkg/adapters/http"
	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/client"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

type pdfStub struct{}

func (pdfStub) RenderPDF(ctx context.Context, pages [][]byte, opts ports.PageOptions) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func newServer(t *testing.T) (*client.Client, domain.Template) {
	t.Helper()
	eng, err := printdesk.New(t.TempDir(),
		printdesk.WithItemSource(memory.NewItemSource(
			domain.Item{ID: 1, ModelType: domain.ModelPart, Name: "Resistor"},
			domain.Item{ID: 2, ModelType: domain.ModelPart, Name: "Capacitor"},
		)),
		printdesk.WithRenderer(pdfStub{}),
	)
	require.NoError(t, err)
	t.Cleanup(eng.Wait)

	tmpl := domain.Template{Kind: domain.KindLabel, Name: "small", ModelType: domain.ModelPart, Template: "<p>{{.name}}</p>", Enabled: true, Width: 50, Height: 20}
	require.NoError(t, eng.CreateTemplate(context.Background(), &tmpl))

	srv := httptest.NewServer(apihttp.NewHandler(eng))
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/", client.WithUser("carol")), tmpl
}

func TestClient_Info(t *testing.T) {
	c, _ := newServer(t)
	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "printdesk-http", info.App)
	assert.NotEmpty(t, info.APIVersion)
}

func TestClient_FieldsAndPrint(t *testing.T) {
	c, tmpl := newServer(t)
	ctx := context.Background()

	set, err := c.Fields(ctx, domain.KindLabel, "")
	require.NoError(t, err)
	assert.Contains(t, set, "plugin")
	assert.Equal(t, "template", set["template"].Name)

	out, err := c.PrintLabels(ctx, domain.PrintRequest{ModelType: domain.ModelPart, Template: tmpl.ID, Items: []int64{1, 2}})
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, "carol", out.User)

	got, err := c.Output(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Output, got.Output)
}

func TestClient_ValidationError(t *testing.T) {
	c, tmpl := newServer(t)

	_, err := c.PrintReports(context.Background(), domain.PrintRequest{Template: tmpl.ID, Items: []int64{1}})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "template")
}

func TestClient_NotFound(t *testing.T) {
	c, _ := newServer(t)

	_, err := c.Output(context.Background(), 404)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Not found.", apiErr.Detail)
}

func TestClient_TemplatesAndPlugins(t *testing.T) {
	c, tmpl := newServer(t)
	ctx := context.Background()

	enabled := true
	list, err := c.Templates(ctx, domain.KindLabel, client.TemplateQuery{ModelType: domain.ModelPart, Items: []int64{1, 2}, Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tmpl.ID, list[0].ID)

	plugins, err := c.Plugins(ctx, domain.MixinLabels, &enabled)
	require.NoError(t, err)
	assert.NotEmpty(t, plugins)
}

func TestClient_TransportError(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	_, err := c.Fields(context.Background(), domain.KindLabel, "")
	require.Error(t, err)
	var apiErr *client.APIError
	assert.NotErrorAs(t, err, &apiErr)
}
