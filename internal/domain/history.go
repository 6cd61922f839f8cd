package domain

// RouteHistory tracks the points of a route being drawn together with a
// linear undo/redo history.
//
// Every edit stores a full snapshot of the previous point sequence, so undo
// and redo are O(n) in route length. Any new edit discards the redo path;
// there is no branching history.
//
// Operations whose precondition does not hold (undo with no history, redo
// after an edit, removing from an empty route) are silent no-ops.
//
// The zero value is an empty history ready to use. RouteHistory is not safe
// for concurrent use; the owner is responsible for synchronization.
type RouteHistory struct {
	points    []RoutePoint
	undoStack [][]RoutePoint
	redoStack [][]RoutePoint
}

func NewRouteHistory() *RouteHistory {
	return &RouteHistory{}
}

// Points returns a copy of the current point sequence.
func (h *RouteHistory) Points() []RoutePoint {
	return clonePoints(h.points)
}

// Len returns the number of points in the current sequence.
func (h *RouteHistory) Len() int { return len(h.points) }

// AddPoint appends p to the route.
func (h *RouteHistory) AddPoint(p RoutePoint) {
	h.undoStack = append(h.undoStack, clonePoints(h.points))
	next := clonePoints(h.points)
	h.points = append(next, p)
	h.redoStack = nil
}

// RemoveLastPoint drops the final point of the route.
func (h *RouteHistory) RemoveLastPoint() {
	if len(h.points) == 0 {
		return
	}

	h.undoStack = append(h.undoStack, clonePoints(h.points))
	h.points = clonePoints(h.points[:len(h.points)-1])
	h.redoStack = nil
}

// Undo restores the point sequence that preceded the last edit.
func (h *RouteHistory) Undo() {
	if len(h.undoStack) == 0 {
		return
	}

	h.redoStack = append(h.redoStack, clonePoints(h.points))
	last := len(h.undoStack) - 1
	h.points = h.undoStack[last]
	h.undoStack[last] = nil
	h.undoStack = h.undoStack[:last]
}

// Redo re-applies the most recently undone edit.
func (h *RouteHistory) Redo() {
	if len(h.redoStack) == 0 {
		return
	}

	h.undoStack = append(h.undoStack, clonePoints(h.points))
	last := len(h.redoStack) - 1
	h.points = h.redoStack[last]
	h.redoStack[last] = nil
	h.redoStack = h.redoStack[:last]
}

// SetPoints replaces the current sequence without recording history.
// Used for bulk loads (saved routes, drafts).
func (h *RouteHistory) SetPoints(points []RoutePoint) {
	h.points = clonePoints(points)
}

// ClearHistory resets points and both stacks. It cannot be undone.
func (h *RouteHistory) ClearHistory() {
	h.points = nil
	h.undoStack = nil
	h.redoStack = nil
}

func (h *RouteHistory) CanUndo() bool { return len(h.undoStack) > 0 }

func (h *RouteHistory) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoDepth reports how many undo steps are available.
func (h *RouteHistory) UndoDepth() int { return len(h.undoStack) }

// RedoDepth reports how many redo steps are available.
func (h *RouteHistory) RedoDepth() int { return len(h.redoStack) }
