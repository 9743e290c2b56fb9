package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

func TestMemoryTemplateStore_Contract(t *testing.T) {
	ports.RunTemplateStoreContract(t, memory.NewTemplateStore())
}

func TestMemoryOutputStore_Contract(t *testing.T) {
	ports.RunOutputStoreContract(t, memory.NewOutputStore())
}

func TestMemoryOutputStore_Isolation(t *testing.T) {
	store := memory.NewOutputStore()
	ctx := context.Background()

	out := &domain.DataOutput{Kind: domain.KindLabel, Items: 1}
	require.NoError(t, store.Create(ctx, out))

	loaded, err := store.Get(ctx, out.ID)
	require.NoError(t, err)
	loaded.Errors = append(loaded.Errors, "mutated")
	loaded.Complete = true

	again, err := store.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.False(t, again.Complete)
	assert.Empty(t, again.Errors)
}

func TestMemorySnippets_UniqueName(t *testing.T) {
	store := memory.NewTemplateStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSnippet(ctx, &domain.Snippet{Name: "header", Content: "<h1/>"}))
	err := store.SaveSnippet(ctx, &domain.Snippet{Name: "header", Content: "dup"})
	_, ok := domain.IsValidation(err)
	assert.True(t, ok)

	list, err := store.Snippets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteSnippet(ctx, list[0].ID))
	assert.ErrorIs(t, store.DeleteSnippet(ctx, list[0].ID), domain.ErrSnippetNotFound)
}

func TestItemSource_YAML(t *testing.T) {
	src, err := memory.ParseItems([]byte(`
part:
  - id: 2
    name: Capacitor
  - id: 1
    name: Resistor
    fields:
      IPN: R-10K
stockitem:
  - id: 1
    name: Resistor stock
`))
	require.NoError(t, err)

	items, err := src.Items(context.Background(), domain.ModelPart, []int64{2, 1, 99, 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "R-10K", items[0].Fields["IPN"])
	assert.Equal(t, domain.ModelPart, items[0].ModelType)
	assert.Equal(t, int64(2), items[1].ID)

	_, err = memory.ParseItems([]byte("widget:\n  - id: 1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidModelType)
}
