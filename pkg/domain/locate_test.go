package domain_test

import (
	"testing"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func fixture() *domain.Workpad {
	return &domain.Workpad{
		ID: "wp",
		Pages: []domain.Page{
			{ID: "page-1", Elements: []domain.Element{{ID: "a"}, {ID: "b"}}, Groups: []domain.Element{{ID: "g", Position: domain.Position{Type: "group"}}}},
			{ID: "page-2", Elements: []domain.Element{}, Groups: []domain.Element{}},
			{ID: "page-1"},
		},
	}
}

func TestLocator_PageIndex(t *testing.T) {
	wp := fixture()
	assert.Equal(t, 0, wp.PageIndex("page-1"), "first match wins")
	assert.Equal(t, 1, wp.PageIndex("page-2"))
	assert.Equal(t, -1, wp.PageIndex("missing"))

	var nilWp *domain.Workpad
	assert.Equal(t, -1, nilWp.PageIndex("page-1"))
}

func TestLocator_LocationOf(t *testing.T) {
	wp := fixture()
	assert.Equal(t, domain.LocationGroups, wp.LocationOf("page-1", "g"))
	assert.Equal(t, domain.LocationElements, wp.LocationOf("page-1", "a"))

	// Unknown nodes and pages fall back to elements.
	assert.Equal(t, domain.LocationElements, wp.LocationOf("page-1", "ghost"))
	assert.Equal(t, domain.LocationElements, wp.LocationOf("missing", "g"))
}

func TestLocator_NodeIndex(t *testing.T) {
	page := fixture().Pages[0]
	assert.Equal(t, 1, page.NodeIndex("b", domain.LocationElements))
	assert.Equal(t, -1, page.NodeIndex("g", domain.LocationElements))
	assert.Equal(t, 0, page.NodeIndex("g", domain.LocationGroups))
}

func TestLocator_FindNode(t *testing.T) {
	wp := fixture()

	node, loc, ok := wp.FindNode("page-1", "g")
	assert.True(t, ok)
	assert.Equal(t, domain.LocationGroups, loc)
	assert.Equal(t, "g", node.ID)

	_, _, ok = wp.FindNode("page-1", "ghost")
	assert.False(t, ok)
	_, _, ok = wp.FindNode("missing", "a")
	assert.False(t, ok)
}

func TestLocationFor(t *testing.T) {
	assert.Equal(t, domain.LocationGroups, domain.LocationFor("group"))
	assert.Equal(t, domain.LocationElements, domain.LocationFor("element"))
	assert.Equal(t, domain.LocationElements, domain.LocationFor(""))
}

func TestWorkpad_WithPageSharesSiblings(t *testing.T) {
	wp := fixture()
	next := wp.WithPage(1, domain.NewPage("page-2b"))

	assert.Equal(t, "page-2", wp.Pages[1].ID, "input must not change")
	assert.Equal(t, "page-2b", next.Pages[1].ID)
	// Untouched collections keep the same backing array.
	assert.Same(t, &wp.Pages[0].Elements[0], &next.Pages[0].Elements[0])
}

func TestWorkpad_Clone(t *testing.T) {
	wp := fixture()
	c := wp.Clone()
	assert.Equal(t, wp, c)

	c.Pages[0].Elements[0].ID = "changed"
	assert.Equal(t, "a", wp.Pages[0].Elements[0].ID)

	e, g := wp.NodeCount()
	assert.Equal(t, 2, e)
	assert.Equal(t, 1, g)
}
