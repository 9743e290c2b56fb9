package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
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

func newServer(t *testing.T) (*Server, domain.Template) {
	t.Helper()
	eng, err := printdesk.New(t.TempDir(),
		printdesk.WithItemSource(memory.NewItemSource(
			domain.Item{ID: 1, ModelType: domain.ModelPart, Name: "Resistor"},
		)),
		printdesk.WithRenderer(pdfStub{}),
	)
	require.NoError(t, err)
	t.Cleanup(eng.Wait)

	tmpl := domain.Template{Kind: domain.KindLabel, Name: "small", ModelType: domain.ModelPart, Template: "<p>{{.name}}</p>", Enabled: true, Width: 50, Height: 20}
	require.NoError(t, eng.CreateTemplate(context.Background(), &tmpl))
	return NewServer(eng, WithUser(domain.User{Username: "agent"})), tmpl
}

func TestToolsAreRegistered(t *testing.T) {
	s, _ := newServer(t)

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var names []string
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_templates", "print_labels", "print_reports", "get_output"}, names)
}

func TestListTemplates(t *testing.T) {
	s, tmpl := newServer(t)
	ctx := context.Background()

	res, err := s.handleListTemplates(ctx, mcp.CallToolRequest{}, ListTemplatesArgs{Kind: "label", ModelType: "part", Items: []int64{1}})
	require.NoError(t, err)
	require.Len(t, res.Templates, 1)
	assert.Equal(t, tmpl.ID, res.Templates[0].ID)

	_, err = s.handleListTemplates(ctx, mcp.CallToolRequest{}, ListTemplatesArgs{Kind: "poster"})
	assert.Error(t, err)
}

func TestPrintLabelsAndGetOutput(t *testing.T) {
	s, tmpl := newServer(t)
	ctx := context.Background()

	out, err := s.handlePrintLabels(ctx, mcp.CallToolRequest{}, PrintArgs{Template: tmpl.ID, Items: []int64{1}})
	require.NoError(t, err)
	assert.True(t, out.Complete)
	assert.Equal(t, "agent", out.User)
	assert.NotEmpty(t, out.Output)

	got, err := s.handleGetOutput(ctx, mcp.CallToolRequest{}, OutputArgs{ID: out.ID})
	require.NoError(t, err)
	assert.Equal(t, out.Output, got.Output)

	_, err = s.handleGetOutput(ctx, mcp.CallToolRequest{}, OutputArgs{ID: 999})
	assert.ErrorIs(t, err, domain.ErrOutputNotFound)
}

func TestPrintReportsRejectsLabelTemplate(t *testing.T) {
	s, tmpl := newServer(t)

	_, err := s.handlePrintReports(context.Background(), mcp.CallToolRequest{}, PrintArgs{Template: tmpl.ID})
	v, ok := domain.IsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, v.Fields, "template")
	assert.Equal(t, []string{"This list may not be empty."}, v.Fields["items"])
}
