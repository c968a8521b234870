package runtime_test

import (
	"context"
	"math"
	"testing"

	"github.com/aretw0/workpad/internal/runtime"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string) domain.Element {
	return domain.Element{ID: id, Position: domain.Position{Type: domain.PositionTypeElement}}
}

func group(id string) domain.Element {
	return domain.Element{ID: id, Position: domain.Position{Type: domain.PositionTypeGroup}}
}

// newWorkpad builds a two-page workpad; page-1 holds elements A..D and groups G1, G2.
func newWorkpad() *domain.Workpad {
	return &domain.Workpad{
		ID: "workpad-1",
		Pages: []domain.Page{
			{
				ID:       "page-1",
				Elements: []domain.Element{node("A"), node("B"), node("C"), node("D")},
				Groups:   []domain.Element{group("G1"), group("G2")},
			},
			{
				ID:       "page-2",
				Elements: []domain.Element{node("X")},
				Groups:   []domain.Element{},
			},
		},
	}
}

func ids(nodes []domain.Element) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestEngine_NoopOnMissingPage(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()

	commands := []domain.Command{
		domain.SetExpression{PageID: "ghost", ElementID: "A", Expression: "x"},
		domain.SetFilter{PageID: "ghost", ElementID: "A", Filter: "f"},
		domain.RemoveElements{PageID: "ghost", ElementIDs: []string{"A"}},
		domain.AddElement{PageID: "ghost", Element: node("Z")},
		domain.DuplicateElement{PageID: "ghost", Element: node("Z")},
		domain.ElementLayer{PageID: "ghost", ElementID: "A", Movement: 1},
		domain.SetMultiplePositions{RepositionedElements: []domain.ElementPosition{{PageID: "ghost", ElementID: "A"}}},
	}

	for _, cmd := range commands {
		t.Run(string(cmd.Kind()), func(t *testing.T) {
			wp := newWorkpad()
			snapshot := wp.Clone()

			next, err := engine.Apply(ctx, wp, cmd)
			require.NoError(t, err)
			assert.Same(t, wp, next)
			assert.Equal(t, snapshot, next)
		})
	}
}

func TestEngine_NoopOnMissingNode(t *testing.T) {
	engine := runtime.NewEngine()
	wp := newWorkpad()

	next, err := engine.Apply(context.Background(), wp, domain.SetExpression{PageID: "page-1", ElementID: "ghost", Expression: "x"})
	require.NoError(t, err)
	assert.Same(t, wp, next)

	next, err = engine.Apply(context.Background(), wp, domain.ElementLayer{PageID: "page-1", ElementID: "ghost", Movement: domain.MoveToFront})
	require.NoError(t, err)
	assert.Same(t, wp, next)
}

func TestEngine_SetExpressionStripsAST(t *testing.T) {
	wp := newWorkpad()
	wp.Pages[0].Elements[1].AST = map[string]any{"type": "expression"}
	wp.Pages[0].Elements[1].Filter = "keep-me"
	wp.Pages[0].Elements[1].Extra = map[string]any{"custom": 1}

	next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.SetExpression{
		PageID: "page-1", ElementID: "B", Expression: "demodata | table",
	})
	require.NoError(t, err)

	got := next.Pages[0].Elements[1]
	assert.Nil(t, got.AST)
	assert.Equal(t, "demodata | table", got.Expression)
	assert.Equal(t, "keep-me", got.Filter)
	assert.Equal(t, map[string]any{"custom": 1}, got.Extra)

	// Input untouched.
	assert.NotNil(t, wp.Pages[0].Elements[1].AST)
	assert.Empty(t, wp.Pages[0].Elements[1].Expression)
}

func TestEngine_PatchSharesUntouchedStructure(t *testing.T) {
	wp := newWorkpad()

	next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.SetFilter{
		PageID: "page-1", ElementID: "G2", Filter: "time=now",
	})
	require.NoError(t, err)

	assert.Equal(t, "time=now", next.Pages[0].Groups[1].Filter)
	assert.Empty(t, wp.Pages[0].Groups[1].Filter)

	// Other page and the untouched collection share backing arrays.
	assert.Same(t, &wp.Pages[1].Elements[0], &next.Pages[1].Elements[0])
	assert.Same(t, &wp.Pages[0].Elements[0], &next.Pages[0].Elements[0])
	assert.NotSame(t, &wp.Pages[0].Groups[0], &next.Pages[0].Groups[0])
}

func TestEngine_ElementLayer(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		movement domain.Movement
		want     []string
	}{
		{"Raise One", "B", domain.MoveForward, []string{"A", "C", "B", "D"}},
		{"Lower One", "C", domain.MoveBackward, []string{"A", "C", "B", "D"}},
		{"Send To Back", "B", domain.MoveToBack, []string{"B", "A", "C", "D"}},
		{"Bring To Front", "B", domain.MoveToFront, []string{"A", "C", "D", "B"}},
		{"Out Of Range Top", "D", domain.MoveForward, []string{"A", "B", "C", "D"}},
		{"Out Of Range Bottom", "A", -2, []string{"A", "B", "C", "D"}},
		{"Relative Two", "A", 2, []string{"B", "C", "A", "D"}},
		{"Zero", "C", 0, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := newWorkpad()
			next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.ElementLayer{
				PageID: "page-1", ElementID: tt.id, Movement: tt.movement,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(next.Pages[0].Elements))
			assert.Equal(t, []string{"A", "B", "C", "D"}, ids(wp.Pages[0].Elements), "input must not change")
		})
	}
}

func TestEngine_ElementLayerGroups(t *testing.T) {
	wp := newWorkpad()
	next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.ElementLayer{
		PageID: "page-1", ElementID: "G1", Movement: domain.MoveToFront,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"G2", "G1"}, ids(next.Pages[0].Groups))
	assert.Equal(t, ids(wp.Pages[0].Elements), ids(next.Pages[0].Elements))
}

func TestEngine_InvalidMovement(t *testing.T) {
	var failed []*domain.CommandEvent
	engine := runtime.NewEngine(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnCommandFailed: func(_ context.Context, e *domain.CommandEvent) { failed = append(failed, e) },
	}))

	for _, m := range []domain.Movement{domain.Movement(math.NaN()), 0.5} {
		wp := newWorkpad()
		snapshot := wp.Clone()

		next, err := engine.Apply(context.Background(), wp, domain.ElementLayer{
			PageID: "page-1", ElementID: "B", Movement: m,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidMovement)
		assert.Same(t, wp, next)
		assert.Equal(t, snapshot, wp)
	}

	require.Len(t, failed, 2)
	assert.Equal(t, domain.KindElementLayer, failed[0].Kind)
	assert.Equal(t, "workpad-1", failed[0].WorkpadID)
}

func TestEngine_RemoveElements(t *testing.T) {
	orders := [][]string{{"B", "D"}, {"D", "B"}}
	for _, order := range orders {
		wp := newWorkpad()
		next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.RemoveElements{
			PageID: "page-1", ElementIDs: order,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, ids(next.Pages[0].Elements), "order %v", order)
		assert.Equal(t, []string{"G1", "G2"}, ids(next.Pages[0].Groups))
		assert.Len(t, wp.Pages[0].Elements, 4, "input must not change")
	}
}

func TestEngine_RemoveElementsAcrossCollections(t *testing.T) {
	wp := newWorkpad()
	next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.RemoveElements{
		PageID: "page-1", ElementIDs: []string{"G1", "A", "ghost", "D", "A"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, ids(next.Pages[0].Elements))
	assert.Equal(t, []string{"G2"}, ids(next.Pages[0].Groups))
	assert.Equal(t, []string{"X"}, ids(next.Pages[1].Elements))
}

func TestEngine_RemoveOnlyMissing(t *testing.T) {
	wp := newWorkpad()
	next, err := runtime.NewEngine().Apply(context.Background(), wp, domain.RemoveElements{
		PageID: "page-1", ElementIDs: []string{"ghost"},
	})
	require.NoError(t, err)
	assert.Same(t, wp, next)
}

func TestEngine_AddAndDuplicateAreEquivalent(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()

	for _, payload := range []domain.Element{node("E"), group("G3")} {
		wp := newWorkpad()

		added, err := engine.Apply(ctx, wp, domain.AddElement{PageID: "page-1", Element: payload})
		require.NoError(t, err)
		duplicated, err := engine.Apply(ctx, wp, domain.DuplicateElement{PageID: "page-1", Element: payload})
		require.NoError(t, err)

		assert.Equal(t, added, duplicated)
		assert.Len(t, wp.Pages[0].Elements, 4, "input must not change")
		assert.Len(t, wp.Pages[0].Groups, 2, "input must not change")
	}

	wp := newWorkpad()
	next, err := engine.Apply(ctx, wp, domain.AddElement{PageID: "page-1", Element: group("G3")})
	require.NoError(t, err)
	assert.Equal(t, []string{"G1", "G2", "G3"}, ids(next.Pages[0].Groups))
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(next.Pages[0].Elements))
}

func TestEngine_AppendDoesNotAliasInput(t *testing.T) {
	wp := newWorkpad()
	// Spare capacity in the input must not be written through.
	elements := make([]domain.Element, 1, 8)
	elements[0] = node("A")
	wp.Pages[1].Elements = elements

	engine := runtime.NewEngine()
	first, err := engine.Apply(context.Background(), wp, domain.AddElement{PageID: "page-2", Element: node("B")})
	require.NoError(t, err)
	second, err := engine.Apply(context.Background(), wp, domain.AddElement{PageID: "page-2", Element: node("C")})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, ids(first.Pages[1].Elements))
	assert.Equal(t, []string{"A", "C"}, ids(second.Pages[1].Elements))
}

func TestEngine_SetMultiplePositions(t *testing.T) {
	posB := domain.Position{Type: domain.PositionTypeElement, Left: 10, Top: 20, Width: 30, Height: 40}
	posG := domain.Position{Type: domain.PositionTypeGroup, Left: 1, Top: 2, Width: 3, Height: 4, Angle: 90}

	entries := []domain.ElementPosition{
		{PageID: "page-1", ElementID: "B", Position: posB},
		{PageID: "page-1", ElementID: "G2", Position: posG},
		{PageID: "ghost", ElementID: "B", Position: domain.Position{}},
	}
	reversed := []domain.ElementPosition{entries[2], entries[1], entries[0]}

	engine := runtime.NewEngine()
	wp := newWorkpad()
	wp.Pages[0].Elements[1].AST = "stale"

	a, err := engine.Apply(context.Background(), wp, domain.SetMultiplePositions{RepositionedElements: entries})
	require.NoError(t, err)
	b, err := engine.Apply(context.Background(), wp, domain.SetMultiplePositions{RepositionedElements: reversed})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, posB, a.Pages[0].Elements[1].Position)
	assert.Equal(t, posG, a.Pages[0].Groups[1].Position)
	assert.Nil(t, a.Pages[0].Elements[1].AST)
	assert.Equal(t, domain.Position{Type: domain.PositionTypeElement}, wp.Pages[0].Elements[1].Position)
}

func TestEngine_UnknownCommand(t *testing.T) {
	wp := newWorkpad()
	next, err := runtime.NewEngine().Apply(context.Background(), wp, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownCommand)
	assert.Same(t, wp, next)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var applied []*domain.CommandEvent
	engine := runtime.NewEngine(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnCommandApplied: func(_ context.Context, e *domain.CommandEvent) { applied = append(applied, e) },
	}))

	wp := newWorkpad()
	_, err := engine.Apply(context.Background(), wp, domain.SetExpression{PageID: "page-1", ElementID: "A", Expression: "x"})
	require.NoError(t, err)
	_, err = engine.Apply(context.Background(), wp, domain.SetExpression{PageID: "ghost", ElementID: "A", Expression: "x"})
	require.NoError(t, err)

	require.Len(t, applied, 2)
	assert.False(t, applied[0].Noop)
	assert.True(t, applied[1].Noop)
	assert.Equal(t, domain.KindSetExpression, applied[1].Kind)
}

func TestEngine_ApplyAll(t *testing.T) {
	engine := runtime.NewEngine()
	wp := newWorkpad()

	next, err := engine.ApplyAll(context.Background(), wp,
		domain.AddElement{PageID: "page-2", Element: node("Y")},
		domain.ElementLayer{PageID: "page-2", ElementID: "Y", Movement: domain.MoveToBack},
		domain.SetExpression{PageID: "page-2", ElementID: "Y", Expression: "y"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, ids(next.Pages[1].Elements))
	assert.Equal(t, "y", next.Pages[1].Elements[0].Expression)

	partial, err := engine.ApplyAll(context.Background(), wp,
		domain.RemoveElements{PageID: "page-1", ElementIDs: []string{"A"}},
		domain.ElementLayer{PageID: "page-1", ElementID: "B", Movement: domain.Movement(math.NaN())},
		domain.RemoveElements{PageID: "page-1", ElementIDs: []string{"B"}},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Equal(t, []string{"B", "C", "D"}, ids(partial.Pages[0].Elements))
}
