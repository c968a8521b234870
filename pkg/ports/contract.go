package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractWorkpad(id string) *domain.Workpad {
	parent := "group-1"
	page := domain.NewPage("page-1")
	page.Elements = []domain.Element{
		{
			ID:         "element-1",
			Expression: "demodata | render",
			Position:   domain.Position{Type: domain.PositionTypeElement, Left: 10, Top: 20, Width: 100, Height: 50},
			Extra:      map[string]any{"css": ".canvasRenderEl{}"},
		},
		{
			ID:       "element-2",
			Filter:   "time from=now-1d",
			Position: domain.Position{Type: domain.PositionTypeElement, Parent: &parent},
		},
	}
	page.Groups = []domain.Element{
		{ID: "group-1", Position: domain.Position{Type: domain.PositionTypeGroup, Width: 300, Height: 200}},
	}

	wp := domain.NewWorkpad(id, page, domain.NewPage("page-2"))
	wp.Name = "Contract " + id
	return wp
}

// RunWorkpadStoreContract runs a suite of tests to verify that a WorkpadStore
// implementation adheres to the defined interface contract.
func RunWorkpadStoreContract(t *testing.T, store WorkpadStore) {
	ctx := context.Background()
	workpadID := "contract-workpad-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		wp := contractWorkpad(workpadID)

		err := store.Save(ctx, wp)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workpadID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, wp.ID, loaded.ID)
		assert.Equal(t, wp.Name, loaded.Name)
		require.Len(t, loaded.Pages, 2)

		page := loaded.Pages[0]
		require.Len(t, page.Elements, 2)
		require.Len(t, page.Groups, 1)
		assert.Equal(t, "demodata | render", page.Elements[0].Expression)
		assert.Equal(t, 100.0, page.Elements[0].Position.Width)
		assert.Equal(t, ".canvasRenderEl{}", page.Elements[0].Extra["css"])
		assert.Equal(t, "time from=now-1d", page.Elements[1].Filter)
		require.NotNil(t, page.Elements[1].Position.Parent)
		assert.Equal(t, "group-1", *page.Elements[1].Position.Parent)
		assert.True(t, page.Groups[0].IsGroup())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		wp := contractWorkpad(workpadID)
		wp.Name = "Renamed"
		require.NoError(t, store.Save(ctx, wp))

		loaded, err := store.Load(ctx, workpadID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workpadID)
		assert.ErrorIs(t, err, domain.ErrWorkpadNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractWorkpad(workpadID)))

		err := store.Delete(ctx, workpadID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workpadID)
		assert.ErrorIs(t, err, domain.ErrWorkpadNotFound, "Load after Delete should return ErrWorkpadNotFound")

		assert.NoError(t, store.Delete(ctx, workpadID), "Delete of a missing workpad should succeed")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workpadID + "-1"
		id2 := workpadID + "-2"
		require.NoError(t, store.Save(ctx, contractWorkpad(id1)))
		require.NoError(t, store.Save(ctx, contractWorkpad(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
