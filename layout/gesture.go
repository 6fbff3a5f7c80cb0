package layout

import "time"

const (
	// DragThreshold is the Manhattan distance, in pixels, a press must
	// travel before it counts as a drag instead of a tap.
	DragThreshold = 6
	// TapSuppression is how long after a finished drag incoming taps are
	// swallowed, so the drop gesture never also fires the tile's action.
	TapSuppression = 350 * time.Millisecond
)

// Intent is one reorder request: place the dragged tile in the target
// tile's slot.
type Intent struct {
	DraggedID string
	TargetID  string
}

// DragDrop narrows raw drop notifications into reorder intents. It is the
// adapter for toolkits that deliver ready-made drag events; it only passes
// them through while reordering is enabled.
type DragDrop struct {
	Apply func(Intent) bool

	enabled bool
}

// SetEnabled gates reordering; dropping while disabled changes nothing.
func (d *DragDrop) SetEnabled(on bool) {
	d.enabled = on
}

// Enabled reports whether reordering is active.
func (d *DragDrop) Enabled() bool {
	return d.enabled
}

// Drop forwards one completed drag. Self-drops and drops naming an empty
// tile are discarded here so the order never sees them.
func (d *DragDrop) Drop(draggedID, targetID string) bool {
	if !d.enabled || draggedID == "" || targetID == "" || draggedID == targetID {
		return false
	}
	if d.Apply == nil {
		return false
	}
	return d.Apply(Intent{DraggedID: draggedID, TargetID: targetID})
}

// PointerTracker synthesizes taps and drags from raw pointer events for
// toolkits that only deliver press/move/release. A press becomes a drag once
// it moves past DragThreshold; otherwise releasing it is a tap.
type PointerTracker struct {
	// Tap fires for a press-release that never became a drag.
	Tap func(id string)
	// Hover reports the tile currently under a live drag, "" when none;
	// the grid uses it for the drop-target highlight.
	Hover func(targetID string)
	// Drop fires once per finished drag.
	Drop func(Intent)

	now func() time.Time

	active      bool
	dragging    bool
	pressedID   string
	pressX      float32
	pressY      float32
	lastDragEnd time.Time
}

// Press starts tracking a pointer that went down on the given tile.
func (t *PointerTracker) Press(id string, x, y float32) {
	t.active = true
	t.dragging = false
	t.pressedID = id
	t.pressX = x
	t.pressY = y
}

// Move feeds pointer motion. overID names the tile currently under the
// pointer, "" when over none.
func (t *PointerTracker) Move(x, y float32, overID string) {
	if !t.active {
		return
	}
	if !t.dragging {
		if manhattan(x-t.pressX, y-t.pressY) < DragThreshold {
			return
		}
		t.dragging = true
	}
	if t.Hover != nil {
		if overID == t.pressedID {
			overID = ""
		}
		t.Hover(overID)
	}
}

// Release finishes the gesture. A drag drops onto overID; a short press
// taps the pressed tile unless it landed inside the post-drag suppression
// window.
func (t *PointerTracker) Release(overID string) {
	if !t.active {
		return
	}
	t.active = false

	if t.dragging {
		t.dragging = false
		t.lastDragEnd = t.clock()
		if t.Hover != nil {
			t.Hover("")
		}
		if t.Drop != nil && overID != "" && overID != t.pressedID {
			t.Drop(Intent{DraggedID: t.pressedID, TargetID: overID})
		}
		return
	}

	if t.clock().Sub(t.lastDragEnd) < TapSuppression {
		return
	}
	if t.Tap != nil {
		t.Tap(t.pressedID)
	}
}

// Cancel abandons the gesture without a tap or a drop.
func (t *PointerTracker) Cancel() {
	if t.active && t.dragging && t.Hover != nil {
		t.Hover("")
	}
	t.active = false
	t.dragging = false
}

// Active reports whether a pressed pointer is being tracked. Callers
// translating per-event deltas must press once per gesture, keyed on this,
// so displacement accumulates from the original press point.
func (t *PointerTracker) Active() bool {
	return t.active
}

// Dragging reports whether a live drag is in progress.
func (t *PointerTracker) Dragging() bool {
	return t.active && t.dragging
}

func (t *PointerTracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func manhattan(dx, dy float32) float32 {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
