package loam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/internal/testutils"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

func TestStore_ListAndGet(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"label/part_qr.md": `---
id: 1
kind: label
name: Part QR
model_type: part
width: 24
height: 24
---
<img src="{{.qr}}">`,
		"report/build.md": `---
id: 1
kind: report
name: Build Order
model_type: build
page_size: Letter
enabled: false
---
<h1>{{.name}}</h1>`,
		"snippets/address.md": `---
kind: snippet
name: address
---
<p>HQ</p>`,
	})

	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	labels, err := store.List(ctx, ports.TemplateQuery{Kind: domain.KindLabel})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "Part QR", labels[0].Name)
	assert.Equal(t, 24.0, labels[0].Width)
	assert.True(t, labels[0].Enabled)
	assert.Equal(t, 1, labels[0].Revision)
	assert.Equal(t, `<img src="{{.qr}}">`, labels[0].Template)

	report, err := store.Get(ctx, domain.KindReport, 1)
	require.NoError(t, err)
	assert.False(t, report.Enabled)
	assert.Equal(t, "Letter", report.PageSize)

	_, err = store.Get(ctx, domain.KindReport, 2)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	snippets, err := store.Snippets(ctx)
	require.NoError(t, err)
	require.Len(t, snippets, 1)
	assert.Equal(t, "address", snippets[0].Name)
}

func TestStore_IsReadOnly(t *testing.T) {
	store, err := New(testutils.WriteTree(t, map[string]string{}))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, &domain.Template{}), domain.ErrReadOnly)
	assert.ErrorIs(t, store.Delete(ctx, domain.KindLabel, 1), domain.ErrReadOnly)
	assert.ErrorIs(t, store.SaveSnippet(ctx, &domain.Snippet{}), domain.ErrReadOnly)
}

func TestStore_DetectsCollisions(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"a.md": "---\nid: 3\nkind: label\nmodel_type: part\n---\nA",
		"b.md": "---\nid: 3\nkind: label\nmodel_type: part\n---\nB",
	})
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.List(context.Background(), ports.TemplateQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestStore_RejectsUnknownModel(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"bad.md": "---\nid: 1\nkind: report\nmodel_type: widget\n---\nX",
	})
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.List(context.Background(), ports.TemplateQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidModelType)
}

func TestStore_PageDefinitions(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"named.md": "---\nid: 1\nkind: report\nmodel_type: build\npage: A5\n---\nA",
		"inline.md": `---
id: 2
kind: report
model_type: build
page_size: A4
page:
  size: Legal
  landscape: true
  width: 216
  height: 356
---
B`,
	})
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	named, err := store.Get(ctx, domain.KindReport, 1)
	require.NoError(t, err)
	assert.Equal(t, "A5", named.PageSize)
	assert.False(t, named.Landscape)

	inline, err := store.Get(ctx, domain.KindReport, 2)
	require.NoError(t, err)
	assert.Equal(t, "Legal", inline.PageSize)
	assert.True(t, inline.Landscape)
	assert.Equal(t, 216.0, inline.Width)
	assert.Equal(t, 356.0, inline.Height)
}

func TestStore_RejectsBadPage(t *testing.T) {
	dir := testutils.WriteTree(t, map[string]string{
		"bad.md": "---\nid: 1\nkind: report\nmodel_type: build\npage:\n  width: wide\n---\nX",
	})
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.List(context.Background(), ports.TemplateQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode inline page")
}
