package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/domain"
)

// RunOutputStoreContract runs a suite of tests to verify that an OutputStore
// implementation adheres to the defined interface contract.
func RunOutputStoreContract(t *testing.T, store OutputStore) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		out := &domain.DataOutput{Kind: domain.KindLabel, Template: 3, Plugin: "inventreelabel", Items: 2}
		require.NoError(t, store.Create(ctx, out))
		require.NotZero(t, out.ID, "Create should assign an ID")
		assert.False(t, out.Created.IsZero(), "Create should stamp Created")

		loaded, err := store.Get(ctx, out.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.KindLabel, loaded.Kind)
		assert.Equal(t, "inventreelabel", loaded.Plugin)
		assert.Equal(t, 2, loaded.Items)
		assert.False(t, loaded.Complete)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, 987654321)
		assert.ErrorIs(t, err, domain.ErrOutputNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		out := &domain.DataOutput{Kind: domain.KindReport, Template: 1, Items: 1}
		require.NoError(t, store.Create(ctx, out))

		out.Finish("/media/data_output/report.pdf")
		require.NoError(t, store.Update(ctx, out))

		loaded, err := store.Get(ctx, out.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Complete)
		assert.Equal(t, "/media/data_output/report.pdf", loaded.Output)
	})

	t.Run("List newest first", func(t *testing.T) {
		a := &domain.DataOutput{Kind: domain.KindReport, Items: 1}
		b := &domain.DataOutput{Kind: domain.KindReport, Items: 1}
		require.NoError(t, store.Create(ctx, a))
		require.NoError(t, store.Create(ctx, b))

		list, err := store.List(ctx)
		require.NoError(t, err)
		ids := make([]int64, 0, len(list))
		for _, o := range list {
			ids = append(ids, o.ID)
		}
		require.Contains(t, ids, a.ID)
		require.Contains(t, ids, b.ID)
		assert.Less(t, indexOf(ids, b.ID), indexOf(ids, a.ID))
	})

	t.Run("Prune", func(t *testing.T) {
		old := &domain.DataOutput{Kind: domain.KindLabel, Items: 1, Created: time.Now().Add(-10 * 24 * time.Hour)}
		require.NoError(t, store.Create(ctx, old))
		fresh := &domain.DataOutput{Kind: domain.KindLabel, Items: 1}
		require.NoError(t, store.Create(ctx, fresh))

		removed, err := store.Prune(ctx, time.Now().Add(-5*24*time.Hour))
		require.NoError(t, err)

		var removedIDs []int64
		for _, o := range removed {
			removedIDs = append(removedIDs, o.ID)
		}
		assert.Contains(t, removedIDs, old.ID)
		assert.NotContains(t, removedIDs, fresh.ID)

		_, err = store.Get(ctx, old.ID)
		assert.ErrorIs(t, err, domain.ErrOutputNotFound)
		_, err = store.Get(ctx, fresh.ID)
		assert.NoError(t, err)
	})
}

// RunTemplateStoreContract verifies a writable TemplateStore.
func RunTemplateStoreContract(t *testing.T, store TemplateStore) {
	ctx := context.Background()

	t.Run("Save assigns ID and revision", func(t *testing.T) {
		tmpl := &domain.Template{
			Kind:      domain.KindReport,
			Name:      "Contract Report",
			ModelType: domain.ModelBuild,
			Template:  "<h1>{{.name}}</h1>",
			Enabled:   true,
		}
		require.NoError(t, store.Save(ctx, tmpl))
		require.NotZero(t, tmpl.ID)
		assert.Equal(t, 1, tmpl.Revision)

		tmpl.Description = "updated"
		require.NoError(t, store.Save(ctx, tmpl))
		assert.Equal(t, 2, tmpl.Revision)

		loaded, err := store.Get(ctx, domain.KindReport, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", loaded.Description)
		assert.Equal(t, 2, loaded.Revision)
	})

	t.Run("Kinds are separate", func(t *testing.T) {
		tmpl := &domain.Template{Kind: domain.KindLabel, Name: "Contract Label", ModelType: domain.ModelPart, Template: "x", Enabled: true}
		require.NoError(t, store.Save(ctx, tmpl))

		_, err := store.Get(ctx, domain.KindReport, tmpl.ID)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

		loaded, err := store.Get(ctx, domain.KindLabel, tmpl.ID)
		require.NoError(t, err)
		assert.Equal(t, "Contract Label", loaded.Name)
	})

	t.Run("List filters", func(t *testing.T) {
		disabled := &domain.Template{Kind: domain.KindLabel, Name: "Disabled Stock", ModelType: domain.ModelStockItem, Template: "x"}
		require.NoError(t, store.Save(ctx, disabled))

		enabled := true
		list, err := store.List(ctx, TemplateQuery{Kind: domain.KindLabel, ModelType: domain.ModelStockItem, Enabled: &enabled})
		require.NoError(t, err)
		for _, tmpl := range list {
			assert.NotEqual(t, disabled.ID, tmpl.ID)
		}

		list, err = store.List(ctx, TemplateQuery{Kind: domain.KindLabel, Search: "disabled"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, disabled.ID, list[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		tmpl := &domain.Template{Kind: domain.KindReport, Name: "To Delete", ModelType: domain.ModelPart, Template: "x", Enabled: true}
		require.NoError(t, store.Save(ctx, tmpl))
		require.NoError(t, store.Delete(ctx, domain.KindReport, tmpl.ID))

		_, err := store.Get(ctx, domain.KindReport, tmpl.ID)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
		assert.ErrorIs(t, store.Delete(ctx, domain.KindReport, tmpl.ID), domain.ErrTemplateNotFound)
	})
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
