package gesture

import (
	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// Action is an entry of the occurrence context menu.
type Action string

const ActionToggleComplete Action = "toggle-complete"

// MenuState is an open context menu anchored at a screen position.
type MenuState struct {
	Occurrence model.Occurrence `json:"occurrence"`
	Anchor     grid.Point       `json:"anchor"`
	Bounds     grid.Rect        `json:"bounds"`
	Actions    []Action         `json:"actions"`
}

// DefaultMenuSize is the rendered size of the menu used for outside-click
// detection.
var DefaultMenuSize = grid.Point{X: 160, Y: 40}

// ContextMenuController owns the right-click menu.
type ContextMenuController struct {
	size  grid.Point
	state *MenuState
}

// NewContextMenuController returns a controller whose menu has the given
// rendered size; a zero size uses DefaultMenuSize.
func NewContextMenuController(size grid.Point) *ContextMenuController {
	if size.X <= 0 || size.Y <= 0 {
		size = DefaultMenuSize
	}
	return &ContextMenuController{size: size}
}

// Open shows the menu for o at pos. Recurring instances and tasks are not
// independently actionable, so the menu is suppressed for them.
func (c *ContextMenuController) Open(o model.Occurrence, pos grid.Point) (MenuState, bool) {
	c.state = nil
	if !o.ContextMenu {
		return MenuState{}, false
	}
	c.state = &MenuState{
		Occurrence: o,
		Anchor:     pos,
		Bounds:     grid.Rect{Min: pos, Max: grid.Point{X: pos.X + c.size.X, Y: pos.Y + c.size.Y}},
		Actions:    []Action{ActionToggleComplete},
	}
	return *c.state, true
}

// Action runs a menu entry and closes the menu.
func (c *ContextMenuController) Action(a Action) (ToggleIntent, bool) {
	if c.state == nil {
		return ToggleIntent{}, false
	}
	o := c.state.Occurrence
	c.state = nil

	if a != ActionToggleComplete {
		return ToggleIntent{}, false
	}
	return ToggleIntent{ID: o.SourceID, Completed: !o.Completed}, true
}

// Dismiss closes the menu.
func (c *ContextMenuController) Dismiss() {
	c.state = nil
}

// ClickAt closes the menu when p falls outside it and reports whether it
// did.
func (c *ContextMenuController) ClickAt(p grid.Point) bool {
	if c.state == nil || c.state.Bounds.Contains(p) {
		return false
	}
	c.state = nil
	return true
}

// State returns the open menu, if any.
func (c *ContextMenuController) State() (MenuState, bool) {
	if c.state == nil {
		return MenuState{}, false
	}
	return *c.state, true
}
